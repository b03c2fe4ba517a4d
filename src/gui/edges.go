package gui

import (
	"fmt"

	"screen-mirror/src/edge"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// EdgeStore is the part of the session the edge controls write to.
type EdgeStore interface {
	Edge() edge.Params
	SetLowerThreshold(int)
	SetUpperThreshold(int)
	SetApertureIndex(int)
	SetShowContours(bool)
}

func thresholdLabel(name string, v int) string {
	return fmt.Sprintf("%s threshold: %d", name, v)
}

func apertureLabel(index int) string {
	return fmt.Sprintf("Aperture: %d", edge.ApertureSize(index))
}

// NewEdgeControls builds the slider panel. Values reach the store as the
// sliders move and are picked up on the next tick.
func NewEdgeControls(store EdgeStore, onSelectArea func()) fyne.CanvasObject {
	p := store.Edge()

	lowerLabel := widget.NewLabel(thresholdLabel("Lower", p.Lower))
	lower := widget.NewSlider(0, 255)
	lower.Step = 1
	lower.SetValue(float64(p.Lower))
	lower.OnChanged = func(v float64) {
		store.SetLowerThreshold(int(v))
		lowerLabel.SetText(thresholdLabel("Lower", int(v)))
	}

	upperLabel := widget.NewLabel(thresholdLabel("Upper", p.Upper))
	upper := widget.NewSlider(0, 255)
	upper.Step = 1
	upper.SetValue(float64(p.Upper))
	upper.OnChanged = func(v float64) {
		store.SetUpperThreshold(int(v))
		upperLabel.SetText(thresholdLabel("Upper", int(v)))
	}

	// Three positions only, so the aperture is always 3, 5 or 7.
	apLabel := widget.NewLabel(apertureLabel(p.ApertureIndex))
	aperture := widget.NewSlider(0, 2)
	aperture.Step = 1
	aperture.SetValue(float64(p.ApertureIndex))
	aperture.OnChanged = func(v float64) {
		store.SetApertureIndex(int(v))
		apLabel.SetText(apertureLabel(int(v)))
	}

	contours := widget.NewCheck("Show contours", store.SetShowContours)
	contours.SetChecked(p.ShowContours)

	rows := []fyne.CanvasObject{
		container.NewBorder(nil, nil, lowerLabel, nil, lower),
		container.NewBorder(nil, nil, upperLabel, nil, upper),
		container.NewBorder(nil, nil, apLabel, nil, aperture),
	}
	bottom := []fyne.CanvasObject{contours}
	if onSelectArea != nil {
		bottom = append(bottom, widget.NewButton("Select area...", onSelectArea))
	}
	rows = append(rows, container.NewHBox(bottom...))
	return container.NewVBox(rows...)
}

package gui

import (
	"fmt"
	"image/color"
	"log"
	"strconv"
	"strings"

	"screen-mirror/src/cursor"
	"screen-mirror/src/eventloop"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

var styleLabels = []string{"circle", "cross"}

// cursorForm is the dialog's editable state before validation.
type cursorForm struct {
	Enabled   bool
	Style     string
	Size      string
	Thickness string
	Color     color.Color
}

func formFromSettings(s cursor.Settings) cursorForm {
	style := "circle"
	if s.Style == cursor.StyleCross {
		style = "cross"
	}
	return cursorForm{
		Enabled:   s.Enabled,
		Style:     style,
		Size:      strconv.Itoa(s.Size),
		Thickness: strconv.Itoa(s.Thickness),
		Color:     s.Color,
	}
}

func (f cursorForm) settings() (cursor.Settings, error) {
	style, err := cursor.ParseStyle(f.Style)
	if err != nil {
		return cursor.Settings{}, err
	}
	size, err := parseBounded("size", f.Size, cursor.MinSize, cursor.MaxSize)
	if err != nil {
		return cursor.Settings{}, err
	}
	thickness, err := parseBounded("thickness", f.Thickness, cursor.MinThickness, cursor.MaxThickness)
	if err != nil {
		return cursor.Settings{}, err
	}
	c := color.RGBA{R: 255, A: 255}
	if f.Color != nil {
		c = toRGBA(f.Color)
	}
	s := cursor.Settings{Enabled: f.Enabled, Style: style, Size: size, Thickness: thickness, Color: c}
	return s, s.Validate()
}

func parseBounded(name, text string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}

func boundedValidator(name string, lo, hi int) fyne.StringValidator {
	return func(s string) error {
		_, err := parseBounded(name, s, lo, hi)
		return err
	}
}

// showCursorDialog edits the marker settings. Nothing is stored until Apply;
// choosing a preset only refills the form.
func showCursorDialog(store eventloop.CursorStore, parent fyne.Window) {
	form := formFromSettings(store.Cursor())

	enabled := widget.NewCheck("Show cursor", nil)
	style := widget.NewSelect(styleLabels, nil)
	size := widget.NewEntry()
	size.Validator = boundedValidator("size", cursor.MinSize, cursor.MaxSize)
	thickness := widget.NewEntry()
	thickness.Validator = boundedValidator("thickness", cursor.MinThickness, cursor.MaxThickness)

	swatch := canvas.NewRectangle(form.Color)
	swatch.SetMinSize(fyne.NewSize(24, 24))
	pickColor := widget.NewButton("Choose...", func() {
		picker := dialog.NewColorPicker("Cursor color", "", func(c color.Color) {
			form.Color = c
			swatch.FillColor = c
			swatch.Refresh()
		}, parent)
		picker.Advanced = true
		picker.SetColor(form.Color)
		picker.Show()
	})

	load := func(f cursorForm) {
		enabled.SetChecked(f.Enabled)
		style.SetSelected(f.Style)
		size.SetText(f.Size)
		thickness.SetText(f.Thickness)
		form.Color = f.Color
		swatch.FillColor = f.Color
		swatch.Refresh()
	}
	load(form)

	presets := widget.NewSelect(cursor.PresetNames(), func(name string) {
		if s, ok := cursor.Preset(name); ok {
			load(formFromSettings(s))
		}
	})
	presets.PlaceHolder = "(custom)"

	items := []*widget.FormItem{
		widget.NewFormItem("Preset", presets),
		widget.NewFormItem("", enabled),
		widget.NewFormItem("Style", style),
		widget.NewFormItem("Size", size),
		widget.NewFormItem("Thickness", thickness),
		widget.NewFormItem("Color", container.NewHBox(swatch, pickColor)),
	}

	d := dialog.NewForm("Cursor settings", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		form.Enabled = enabled.Checked
		form.Style = style.Selected
		form.Size = size.Text
		form.Thickness = thickness.Text
		s, err := form.settings()
		if err == nil {
			err = store.SetCursor(s)
		}
		if err != nil {
			log.Printf("Cursor settings rejected: %v", err)
			dialog.ShowError(err, parent)
			return
		}
		log.Printf("Cursor settings applied: %+v", s)
	}, parent)
	d.Resize(fyne.NewSize(360, 320))
	d.Show()
}

package gui

import (
	"context"
	"image"
	"log"
	"time"

	"screen-mirror/src/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/nfnt/resize"
)

const (
	thumbWidth    = 240
	thumbHeight   = 135
	thumbTimeout  = 5 * time.Second
	pickerMaxCols = 3
)

type displayThumb struct {
	display screenshot.Display
	image   image.Image // nil when the capture failed
}

func captureThumbnails(src screenshot.Source, displays []screenshot.Display) []displayThumb {
	ctx, cancel := context.WithTimeout(context.Background(), thumbTimeout)
	defer cancel()

	out := make([]displayThumb, 0, len(displays))
	for _, d := range displays {
		t := displayThumb{display: d}
		if src != nil {
			frame, err := src.Capture(ctx, screenshot.MonitorTarget(d.Index))
			if err != nil {
				log.Printf("Thumbnail for %s failed: %v", d, err)
			} else {
				t.image = thumbnail(frame.Image)
			}
		}
		out = append(out, t)
	}
	return out
}

// thumbnail scales img down to fit the picker cell, keeping its aspect ratio.
func thumbnail(img image.Image) image.Image {
	return resize.Thumbnail(thumbWidth, thumbHeight, img, resize.Bilinear)
}

func pickerColumns(n int) int {
	if n < 1 {
		return 1
	}
	if n > pickerMaxCols {
		return pickerMaxCols
	}
	return n
}

func showDisplayPicker(parent fyne.Window, thumbs []displayThumb, onPick func(int)) {
	var d *dialog.CustomDialog
	cells := make([]fyne.CanvasObject, 0, len(thumbs))
	for _, t := range thumbs {
		index := t.display.Index
		var preview fyne.CanvasObject = widget.NewLabel("No preview")
		if t.image != nil {
			img := canvas.NewImageFromImage(t.image)
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(thumbWidth, thumbHeight))
			preview = img
		}
		button := widget.NewButton(t.display.String(), func() {
			d.Hide()
			onPick(index)
		})
		cells = append(cells, container.NewBorder(nil, button, nil, nil, preview))
	}

	grid := container.NewGridWithColumns(pickerColumns(len(cells)), cells...)
	d = dialog.NewCustom("Select display", "Cancel", grid, parent)
	d.Show()
}

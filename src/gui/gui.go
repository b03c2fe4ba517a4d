// Package gui holds the fyne windows and dialogs. Every exported method may be
// called from any goroutine; work is handed to the UI thread with fyne.Do.
package gui

import (
	"image"
	"image/color"
	"log"
	"sync/atomic"

	"screen-mirror/src/eventloop"
	"screen-mirror/src/render"
	"screen-mirror/src/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const AppID = "io.github.screen-mirror"

func NewApp() fyne.App {
	return app.NewWithID(AppID)
}

// ImageWindow shows the newest frame scaled to fit while keeping its aspect
// ratio. Closing the window hides it.
type ImageWindow struct {
	win   fyne.Window
	image *canvas.Image

	slot    render.Slot
	pending atomic.Bool
}

// NewImageWindow creates a hidden window. controls, if not nil, is placed
// under the image.
func NewImageWindow(a fyne.App, title string, size fyne.Size, controls fyne.CanvasObject) *ImageWindow {
	img := canvas.NewImageFromImage(placeholder())
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(160, 90))

	var content fyne.CanvasObject = img
	if controls != nil {
		content = container.NewBorder(nil, controls, nil, nil, img)
	}

	w := a.NewWindow(title)
	w.SetContent(content)
	w.Resize(size)
	w.SetPadded(false)
	w.SetCloseIntercept(w.Hide)
	return &ImageWindow{win: w, image: img}
}

// SetFrame implements render.Surface. Frames that arrive before the UI
// thread has drawn the previous one replace it.
func (w *ImageWindow) SetFrame(img image.Image) {
	w.slot.Put(img)
	if !w.pending.CompareAndSwap(false, true) {
		return
	}
	fyne.Do(w.flush)
}

func (w *ImageWindow) flush() {
	w.pending.Store(false)
	img, ok := w.slot.Take()
	if !ok {
		return
	}
	w.image.Image = img
	w.image.Refresh()
}

func (w *ImageWindow) Show() {
	fyne.Do(func() {
		w.win.Show()
		w.win.RequestFocus()
	})
}

func (w *ImageWindow) Window() fyne.Window { return w.win }

func placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// UI implements eventloop.UI on top of the mirror window.
type UI struct {
	app    fyne.App
	mirror *ImageWindow
	source screenshot.Source
}

// NewUI wires dialogs to the mirror window. source captures the display
// picker thumbnails.
func NewUI(a fyne.App, mirror *ImageWindow, source screenshot.Source) *UI {
	return &UI{app: a, mirror: mirror, source: source}
}

func (u *UI) ShowMirror() { u.mirror.Show() }

func (u *UI) PickDisplay(displays []screenshot.Display, onPick func(index int)) {
	go func() {
		thumbs := captureThumbnails(u.source, displays)
		fyne.Do(func() {
			u.mirror.win.Show()
			showDisplayPicker(u.mirror.win, thumbs, onPick)
		})
	}()
}

func (u *UI) EditCursor(store eventloop.CursorStore) {
	fyne.Do(func() {
		u.mirror.win.Show()
		showCursorDialog(store, u.mirror.win)
	})
}

func (u *UI) Quit() {
	log.Printf("Quitting UI")
	fyne.Do(u.app.Quit)
}

// toRGBA converts a picker color to straight (non-premultiplied) RGBA.
func toRGBA(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}

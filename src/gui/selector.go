package gui

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log"
	"math"
	"sync"

	"screen-mirror/src/overlay"
	"screen-mirror/src/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// AreaSelector freezes one display, shows it fullscreen and lets the user drag
// a rectangle over it. Escape or closing the window cancels.
type AreaSelector struct {
	App     fyne.App
	Source  screenshot.Source
	Monitor int
}

var _ overlay.Selector = (*AreaSelector)(nil)

// Select blocks until the user finishes. It must not be called from the UI
// thread.
func (s *AreaSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	frame, err := s.Source.Capture(ctx, screenshot.MonitorTarget(s.Monitor))
	if err != nil {
		return screenshot.Region{}, false, err
	}
	desktop := frame.Region.Rect()

	type result struct {
		region    screenshot.Region
		cancelled bool
	}
	done := make(chan result, 1)
	var once sync.Once
	var win fyne.Window
	finish := func(r result) {
		once.Do(func() {
			done <- r
			win.Close()
		})
	}

	fyne.DoAndWait(func() {
		win = s.App.NewWindow("Select area")
		bg := canvas.NewImageFromImage(frame.Image)
		bg.FillMode = canvas.ImageFillStretch
		area := newDragArea(func(sel image.Rectangle, view image.Point) {
			region, err := overlay.ToDesktop(sel, view, desktop)
			if err != nil {
				log.Printf("Selection ignored: %v", err)
				return
			}
			finish(result{region: region})
		})
		win.SetContent(container.NewStack(bg, area))
		win.SetPadded(false)
		win.SetFullScreen(true)
		win.SetCloseIntercept(func() { finish(result{cancelled: true}) })
		win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
			if ev.Name == fyne.KeyEscape {
				finish(result{cancelled: true})
			}
		})
		win.Show()
	})

	select {
	case r := <-done:
		return r.region, r.cancelled, nil
	case <-ctx.Done():
		fyne.Do(func() { finish(result{cancelled: true}) })
		return screenshot.Region{}, true, nil
	}
}

// dragArea draws the rubber band and reports the finished rectangle in its
// own coordinates together with its size.
type dragArea struct {
	widget.BaseWidget

	drag   overlay.Drag
	band   *canvas.Rectangle
	onDone func(sel image.Rectangle, view image.Point)
}

func newDragArea(onDone func(image.Rectangle, image.Point)) *dragArea {
	band := canvas.NewRectangle(color.NRGBA{R: 0, G: 120, B: 212, A: 48})
	band.StrokeColor = color.NRGBA{R: 0, G: 120, B: 212, A: 255}
	band.StrokeWidth = 2
	band.Hide()
	a := &dragArea{band: band, onDone: onDone}
	a.ExtendBaseWidget(a)
	return a
}

func (a *dragArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewWithoutLayout(a.band))
}

func (a *dragArea) Dragged(ev *fyne.DragEvent) {
	if !a.drag.Active() {
		a.drag.Begin(toPoint(fyne.NewPos(ev.Position.X-ev.Dragged.DX, ev.Position.Y-ev.Dragged.DY)))
	}
	a.drag.Move(toPoint(ev.Position))

	r := a.drag.Rect()
	a.band.Move(fyne.NewPos(float32(r.Min.X), float32(r.Min.Y)))
	a.band.Resize(fyne.NewSize(float32(r.Dx()), float32(r.Dy())))
	a.band.Show()
	a.band.Refresh()
}

func (a *dragArea) DragEnd() {
	sel, err := a.drag.End()
	a.band.Hide()
	if errors.Is(err, overlay.ErrEmptySelection) {
		return
	}
	size := a.Size()
	a.onDone(sel, toPoint(fyne.NewPos(size.Width, size.Height)))
}

func toPoint(p fyne.Position) image.Point {
	return image.Pt(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
}

package overlay

import (
	"context"
	"errors"
	"image"
	"math"

	"screen-mirror/src/screenshot"
)

// ErrEmptySelection is returned when a drag ends without covering any area.
var ErrEmptySelection = errors.New("empty selection")

// Selector defines a synchronous region-selection API.
// The call blocks until the user confirms or cancels.
// Returns (region, cancelled, error). If cancelled is true, region is undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (screenshot.Region, bool, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context) (screenshot.Region, bool, error)

func (f SelectorFunc) Select(ctx context.Context) (screenshot.Region, bool, error) { return f(ctx) }

// NormalizeRect returns the rectangle spanned by two drag points regardless
// of drag direction.
func NormalizeRect(a, b image.Point) image.Rectangle {
	return image.Rectangle{Min: a, Max: b}.Canon()
}

// Drag tracks a press-move-release gesture in view coordinates.
type Drag struct {
	start, end image.Point
	active     bool
}

func (d *Drag) Begin(p image.Point) {
	d.start, d.end, d.active = p, p, true
}

func (d *Drag) Move(p image.Point) {
	if d.active {
		d.end = p
	}
}

// Rect is the current selection, empty when no drag is in progress.
func (d *Drag) Rect() image.Rectangle {
	if !d.active {
		return image.Rectangle{}
	}
	return NormalizeRect(d.start, d.end)
}

func (d *Drag) Active() bool { return d.active }

// End finishes the drag and returns the selection. Zero-area selections
// return ErrEmptySelection.
func (d *Drag) End() (image.Rectangle, error) {
	r := d.Rect()
	d.active = false
	if r.Empty() {
		return image.Rectangle{}, ErrEmptySelection
	}
	return r, nil
}

func (d *Drag) Cancel() { d.active = false }

// ToDesktop maps sel, drawn over a view of size view showing the desktop
// rectangle desktop stretched to fill it, into a desktop region.
func ToDesktop(sel image.Rectangle, view image.Point, desktop image.Rectangle) (screenshot.Region, error) {
	if view.X <= 0 || view.Y <= 0 {
		return screenshot.Region{}, ErrEmptySelection
	}
	sx := float64(desktop.Dx()) / float64(view.X)
	sy := float64(desktop.Dy()) / float64(view.Y)

	sel = sel.Intersect(image.Rectangle{Max: view})
	r := image.Rect(
		desktop.Min.X+int(math.Floor(float64(sel.Min.X)*sx)),
		desktop.Min.Y+int(math.Floor(float64(sel.Min.Y)*sy)),
		desktop.Min.X+int(math.Ceil(float64(sel.Max.X)*sx)),
		desktop.Min.Y+int(math.Ceil(float64(sel.Max.Y)*sy)),
	).Intersect(desktop)

	region := screenshot.RegionFromRect(r)
	if err := region.Validate(); err != nil {
		return screenshot.Region{}, err
	}
	return region, nil
}

package screenshot

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Displays enumerates the currently connected displays.
type Displays interface {
	Count() int
	Bounds(i int) image.Rectangle
}

// ActiveDisplays queries the platform on every call; nothing is cached.
type ActiveDisplays struct{}

func (ActiveDisplays) Count() int { return screenshot.NumActiveDisplays() }

func (ActiveDisplays) Bounds(i int) image.Rectangle { return screenshot.GetDisplayBounds(i) }

// Display describes one connected display.
type Display struct {
	Index  int
	Bounds image.Rectangle
}

func (d Display) String() string {
	return fmt.Sprintf("Display %d (%dx%d at %d,%d)", d.Index+1, d.Bounds.Dx(), d.Bounds.Dy(), d.Bounds.Min.X, d.Bounds.Min.Y)
}

// List snapshots the display list.
func List(d Displays) []Display {
	n := d.Count()
	out := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Display{Index: i, Bounds: d.Bounds(i)})
	}
	return out
}

// PrimaryBounds returns the bounds of the primary display (display 0).
func PrimaryBounds(d Displays) (image.Rectangle, error) {
	if d.Count() == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: no active displays found", ErrCaptureUnavailable)
	}
	return d.Bounds(0), nil
}

// VirtualBounds returns the union of all display bounds.
func VirtualBounds(d Displays) (image.Rectangle, error) {
	n := d.Count()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("%w: no active displays found", ErrCaptureUnavailable)
	}
	union := d.Bounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(d.Bounds(i))
	}
	return union, nil
}

package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"
)

var (
	// ErrInvalidRegion reports a non-positive region or a monitor index outside
	// the live display list. Nothing is captured when it is returned.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrCaptureUnavailable reports that the capture mechanism produced no
	// usable image for this call. The render loop skips the tick on it.
	ErrCaptureUnavailable = errors.New("capture unavailable")

	// ErrExternalTool and ErrDecode are both capture-unavailable conditions.
	ErrExternalTool = fmt.Errorf("external screenshot tool failed: %w", ErrCaptureUnavailable)
	ErrDecode       = fmt.Errorf("captured image could not be decoded: %w", ErrCaptureUnavailable)
)

// Region represents a screen region to capture, in desktop coordinates.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RegionFromRect converts an image rectangle to a Region.
func RegionFromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Validate rejects zero-area and negative regions.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidRegion, r.Width, r.Height)
	}
	return nil
}

// Rect returns the region as an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Origin is the top-left corner of the region.
func (r Region) Origin() image.Point {
	return image.Pt(r.X, r.Y)
}

// Geometry formats the region the way grim's -g flag expects it: "X,Y WxH".
func (r Region) Geometry() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

func (r Region) String() string {
	return r.Geometry()
}

// Target is an explicit region, a monitor index or a named output. Monitor
// targets are resolved against the live display list on every capture.
type Target struct {
	Region  Region
	Monitor int
	// ByMonitor selects Monitor over Region.
	ByMonitor bool
	// Output names a compositor output (e.g. "DP-1"). Only the grim backend
	// can capture by name.
	Output string
}

func RegionTarget(r Region) Target { return Target{Region: r} }

func MonitorTarget(index int) Target { return Target{Monitor: index, ByMonitor: true} }

func OutputTarget(name string) Target { return Target{Output: name} }

func (t Target) String() string {
	switch {
	case t.Output != "":
		return "output " + t.Output
	case t.ByMonitor:
		return fmt.Sprintf("monitor %d", t.Monitor)
	default:
		return "region " + t.Region.String()
	}
}

// Resolve turns the target into a concrete region. Monitor indices are checked
// against d each call because displays can be attached or removed between ticks.
func (t Target) Resolve(d Displays) (Region, error) {
	if t.Output != "" {
		return Region{}, fmt.Errorf("%w: output %q cannot be resolved to a region", ErrInvalidRegion, t.Output)
	}
	if !t.ByMonitor {
		if err := t.Region.Validate(); err != nil {
			return Region{}, err
		}
		return t.Region, nil
	}

	n := d.Count()
	if n == 0 {
		return Region{}, fmt.Errorf("%w: no active displays found", ErrCaptureUnavailable)
	}
	if t.Monitor < 0 || t.Monitor >= n {
		return Region{}, fmt.Errorf("%w: monitor %d out of range (have %d displays)", ErrInvalidRegion, t.Monitor, n)
	}

	region := RegionFromRect(d.Bounds(t.Monitor))
	if err := region.Validate(); err != nil {
		return Region{}, err
	}
	return region, nil
}

// Frame is one captured bitmap. Frames are never reused between ticks.
type Frame struct {
	Image      *image.RGBA
	Region     Region
	CapturedAt time.Time
	// Detached is set when the desktop position of the captured area is
	// unknown. Region then only carries the size.
	Detached bool
}

func (f *Frame) Width() int  { return f.Image.Bounds().Dx() }
func (f *Frame) Height() int { return f.Image.Bounds().Dy() }

// Source captures frames. Implementations are chosen once at startup; see NewSource.
type Source interface {
	Name() string
	Capture(ctx context.Context, target Target) (*Frame, error)
}

// checkImage rejects nil and empty captures.
func checkImage(img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("%w: no image returned", ErrCaptureUnavailable)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrCaptureUnavailable, b.Dx(), b.Dy())
	}
	return nil
}

// normalize rebases img so its bounds start at (0,0).
func normalize(img *image.RGBA) *image.RGBA {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()*4], img.Pix[src:src+b.Dx()*4])
	}
	return out
}

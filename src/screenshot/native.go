package screenshot

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"
)

// GrabFunc captures a rectangle of the desktop.
type GrabFunc func(bounds image.Rectangle) (*image.RGBA, error)

// NativeSource captures in-process through the platform screenshot API.
type NativeSource struct {
	displays Displays
	grab     GrabFunc
}

// NewNativeSource returns a source backed by kbinani/screenshot.
func NewNativeSource(d Displays) *NativeSource {
	return &NativeSource{displays: d, grab: screenshot.CaptureRect}
}

// NewNativeSourceWithGrab is NewNativeSource with a custom grab function.
func NewNativeSourceWithGrab(d Displays, grab GrabFunc) *NativeSource {
	return &NativeSource{displays: d, grab: grab}
}

func (s *NativeSource) Name() string { return string(BackendNative) }

func (s *NativeSource) Capture(ctx context.Context, target Target) (*Frame, error) {
	region, err := target.Resolve(s.displays)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := s.grab(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to capture region %s: %v", ErrCaptureUnavailable, region, err)
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}

	return &Frame{Image: normalize(img), Region: region, CapturedAt: time.Now()}, nil
}

package render

import (
	"fmt"
	"image"
	"image/draw"
	"strings"
	"sync"

	"github.com/nfnt/resize"
)

// Bitmap converts img to an RGBA bitmap anchored at (0,0) with the same pixel
// dimensions. Already-anchored RGBA images are returned as is.
func Bitmap(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Slot is a single-slot, last-write-wins handoff between the capture worker
// and the UI thread.
type Slot struct {
	mu  sync.Mutex
	img image.Image
}

// Put replaces any pending image.
func (s *Slot) Put(img image.Image) {
	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
}

// Take returns and clears the pending image.
func (s *Slot) Take() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := s.img
	s.img = nil
	return img, img != nil
}

// Resolution presets name an output width; height follows the frame's aspect
// ratio.
var resolutionWidths = map[string]uint{
	"480p":  640,
	"720p":  1280,
	"1080p": 1920,
	"1440p": 2560,
	"2160p": 3840,
	"4320p": 7680,
}

const ResolutionCaptured = "captured"

// Resolutions lists the accepted preset names, "captured" first.
func Resolutions() []string {
	return []string{ResolutionCaptured, "480p", "720p", "1080p", "1440p", "2160p", "4320p"}
}

// ValidateResolution accepts "captured" and the named presets.
func ValidateResolution(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == ResolutionCaptured || name == "" {
		return nil
	}
	if _, ok := resolutionWidths[name]; ok {
		return nil
	}
	return fmt.Errorf("unknown resolution %q", name)
}

// ResolutionSize returns the target size for a preset at the given aspect
// ratio (width/height). ok is false for "captured" and unknown names.
func ResolutionSize(name string, aspect float64) (w, h uint, ok bool) {
	w, ok = resolutionWidths[strings.ToLower(strings.TrimSpace(name))]
	if !ok || aspect <= 0 {
		return 0, 0, false
	}
	h = uint(float64(w) / aspect)
	if h < 1 {
		h = 1
	}
	return w, h, true
}

// Resize scales img to the named preset. "captured" returns img unchanged.
func Resize(img image.Image, name string) image.Image {
	b := img.Bounds()
	if b.Dy() == 0 {
		return img
	}
	w, h, ok := ResolutionSize(name, float64(b.Dx())/float64(b.Dy()))
	if !ok || (int(w) == b.Dx() && int(h) == b.Dy()) {
		return img
	}
	return resize.Resize(w, h, img, resize.NearestNeighbor)
}

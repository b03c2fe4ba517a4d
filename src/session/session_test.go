package session

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"screen-mirror/src/cursor"
	"screen-mirror/src/edge"
	"screen-mirror/src/pointer"
	"screen-mirror/src/screenshot"
)

type fakeDisplays []image.Rectangle

func (f fakeDisplays) Count() int                   { return len(f) }
func (f fakeDisplays) Bounds(i int) image.Rectangle { return f[i] }

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(Options{
		Displays: fakeDisplays{image.Rect(0, 0, 800, 600), image.Rect(800, 0, 1600, 600)},
		Target:   screenshot.MonitorTarget(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func frame(x, y, w, h int) *screenshot.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}
	return &screenshot.Frame{
		Image:      img,
		Region:     screenshot.Region{X: x, Y: y, Width: w, Height: h},
		CapturedAt: time.Now(),
	}
}

func TestDisabledPresetAlwaysDisables(t *testing.T) {
	s := newSession(t)
	for _, prior := range cursor.PresetNames() {
		if _, err := s.ApplyPreset(prior); err != nil {
			t.Fatal(err)
		}
		c := s.Cursor()
		c.Enabled = true
		if err := s.SetCursor(c); err != nil {
			t.Fatal(err)
		}
		got, err := s.ApplyPreset("disabled")
		if err != nil {
			t.Fatal(err)
		}
		if got.Enabled || s.Cursor().Enabled {
			t.Fatalf("disabled preset left cursor enabled after %q", prior)
		}
	}
}

func TestApplyPresetOverwritesAllFields(t *testing.T) {
	s := newSession(t)
	custom := cursor.Settings{Enabled: true, Style: cursor.StyleDot, Size: 77, Thickness: 9, Color: color.RGBA{B: 200, A: 255}}
	if err := s.SetCursor(custom); err != nil {
		t.Fatal(err)
	}
	want, _ := cursor.Preset("bright cross")
	got, err := s.ApplyPreset("bright cross")
	if err != nil {
		t.Fatal(err)
	}
	if got != want || s.Cursor() != want {
		t.Fatalf("preset applied partially: %+v", s.Cursor())
	}
}

func TestApplyUnknownPreset(t *testing.T) {
	s := newSession(t)
	before := s.Cursor()
	if _, err := s.ApplyPreset("neon"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if s.Cursor() != before {
		t.Fatal("unknown preset changed settings")
	}
}

func TestSetCursorRejectsInvalid(t *testing.T) {
	s := newSession(t)
	before := s.Cursor()
	bad := before
	bad.Size = 0
	if err := s.SetCursor(bad); err == nil {
		t.Fatal("expected validation error")
	}
	if s.Cursor() != before {
		t.Fatal("invalid settings were stored")
	}
}

func TestSelectMonitor(t *testing.T) {
	s := newSession(t)
	if err := s.SelectMonitor(1); err != nil {
		t.Fatal(err)
	}
	if got := s.Target(); !got.ByMonitor || got.Monitor != 1 {
		t.Fatalf("target = %v", got)
	}
	if err := s.SelectMonitor(2); !errors.Is(err, screenshot.ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
	if s.Target().Monitor != 1 {
		t.Fatal("failed selection changed the target")
	}
}

func TestEdgeSettersClamp(t *testing.T) {
	s := newSession(t)
	s.SetLowerThreshold(-4)
	s.SetUpperThreshold(400)
	s.SetApertureIndex(9)
	s.SetShowContours(true)
	want := edge.Params{Lower: 0, Upper: 255, ApertureIndex: 2, ShowContours: true}
	if got := s.Edge(); got != want {
		t.Fatalf("Edge() = %+v, want %+v", got, want)
	}
}

func TestMirrorProcessDrawsCursorInRegion(t *testing.T) {
	s := newSession(t)
	process := s.MirrorProcess(pointer.Fixed{X: 110, Y: 220})

	f := frame(100, 200, 50, 50)
	out, err := process(f)
	if err != nil {
		t.Fatal(err)
	}
	rgba := out.(*image.RGBA)
	if got := rgba.RGBAAt(10, 20); got != s.Cursor().Color {
		t.Fatalf("marker not at local point, got %#v", got)
	}
}

func TestMirrorProcessOutputFrameUsesOutputOrigin(t *testing.T) {
	s := newSession(t)
	s.SetTarget(screenshot.OutputTarget("DP-2"))
	process := s.MirrorProcess(pointer.Fixed{X: 1930, Y: 15})

	f := frame(1920, 0, 64, 48)
	out, err := process(f)
	if err != nil {
		t.Fatal(err)
	}
	rgba := out.(*image.RGBA)
	if got := rgba.RGBAAt(10, 15); got != s.Cursor().Color {
		t.Fatalf("marker not at output-local point, got %#v", got)
	}
}

func TestMirrorProcessSkipsDetachedFrame(t *testing.T) {
	s := newSession(t)
	s.SetTarget(screenshot.OutputTarget("DP-2"))
	process := s.MirrorProcess(pointer.Fixed{X: 10, Y: 15})

	f := frame(0, 0, 64, 48)
	f.Detached = true
	out, err := process(f)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.(*image.RGBA).Pix, frame(0, 0, 64, 48).Image.Pix) {
		t.Fatal("marker drawn on a frame with unknown desktop position")
	}
}

func TestMirrorProcessCursorDisabledIsIdentity(t *testing.T) {
	s := newSession(t)
	if _, err := s.ApplyPreset("disabled"); err != nil {
		t.Fatal(err)
	}
	process := s.MirrorProcess(pointer.Fixed{X: 10, Y: 10})

	a, _ := process(frame(0, 0, 100, 100))
	b, _ := process(frame(0, 0, 100, 100))
	if !bytes.Equal(a.(*image.RGBA).Pix, b.(*image.RGBA).Pix) {
		t.Fatal("identical frames produced different output")
	}
	if !bytes.Equal(a.(*image.RGBA).Pix, frame(0, 0, 100, 100).Image.Pix) {
		t.Fatal("disabled cursor modified the frame")
	}
}

func TestMirrorProcessResolution(t *testing.T) {
	s := newSession(t)
	if err := s.SetResolution("480p"); err != nil {
		t.Fatal(err)
	}
	out, err := s.MirrorProcess(pointer.Fixed{})(frame(0, 0, 1280, 640))
	if err != nil {
		t.Fatal(err)
	}
	if b := out.Bounds(); b.Dx() != 640 || b.Dy() != 320 {
		t.Fatalf("resolution preset produced %v", b)
	}
	if err := s.SetResolution("8k"); err == nil {
		t.Fatal("unknown resolution accepted")
	}
}

func TestEdgeProcessUsesCurrentParams(t *testing.T) {
	s := newSession(t)
	process := s.EdgeProcess(edge.NewProcessor(0))

	out, err := process(frame(0, 0, 20, 20))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(*image.Gray); !ok {
		t.Fatalf("contours off: got %T", out)
	}
	s.SetShowContours(true)
	out, err = process(frame(0, 0, 20, 20))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(*image.RGBA); !ok {
		t.Fatalf("contours on: got %T", out)
	}
}

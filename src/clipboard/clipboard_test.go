package clipboard

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("encoded data is not PNG: %v", err)
	}
	if cfg.Width != 12 || cfg.Height != 7 {
		t.Fatalf("decoded size %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := EncodePNG(nil); err == nil {
		t.Fatal("expected error for nil image")
	}
}

func TestWriteImage(t *testing.T) {
	// Requires a clipboard; only checks that the call doesn't panic.
	if err := Init(); err != nil {
		t.Skipf("clipboard unavailable: %v", err)
	}
	if err := WriteImage(image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Logf("Failed to write image to clipboard: %v", err)
	}
}

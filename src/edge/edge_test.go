package edge

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

// densePolygon samples the outline of a polygon at unit steps.
func densePolygon(vertices []image.Point) []image.Point {
	var out []image.Point
	for i := range vertices {
		a, b := vertices[i], vertices[(i+1)%len(vertices)]
		steps := int(math.Max(math.Abs(float64(b.X-a.X)), math.Abs(float64(b.Y-a.Y))))
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			p := image.Pt(
				int(math.Round(float64(a.X)+t*float64(b.X-a.X))),
				int(math.Round(float64(a.Y)+t*float64(b.Y-a.Y))),
			)
			if len(out) == 0 || out[len(out)-1] != p {
				out = append(out, p)
			}
		}
	}
	return out
}

func regularPolygon(n int, cx, cy, r float64) []image.Point {
	pts := make([]image.Point, n)
	for i := range pts {
		a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		pts[i] = image.Pt(int(math.Round(cx+r*math.Cos(a))), int(math.Round(cy+r*math.Sin(a))))
	}
	return pts
}

func stepImage(w, h, col int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if x >= col {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func boxImage(w, h int, box image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 250, G: 250, B: 250, A: 255}
			if (image.Point{X: x, Y: y}).In(box) {
				c = color.RGBA{R: 20, G: 40, B: 60, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func discImage(w, h int, center image.Point, r int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 250, G: 250, B: 250, A: 255}
			dx, dy := x-center.X, y-center.Y
			if dx*dx+dy*dy <= r*r {
				c = color.RGBA{R: 20, G: 40, B: 60, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func greenPixels(img *image.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0 && img.Pix[i+1] == 255 && img.Pix[i+2] == 0 {
			n++
		}
	}
	return n
}

func pixels(img image.Image) []byte {
	switch v := img.(type) {
	case *image.Gray:
		return v.Pix
	case *image.RGBA:
		return v.Pix
	}
	return nil
}

func TestApertureSizeAlwaysOdd(t *testing.T) {
	want := map[int]int{-3: 3, 0: 3, 1: 5, 2: 7, 9: 7}
	for idx, size := range want {
		got := ApertureSize(idx)
		if got != size {
			t.Errorf("ApertureSize(%d) = %d, want %d", idx, got, size)
		}
		if got%2 != 1 {
			t.Errorf("ApertureSize(%d) = %d is even", idx, got)
		}
	}
}

func TestApertureGain(t *testing.T) {
	for k, want := range map[int]float32{3: 1, 5: 16, 7: 256} {
		if got := apertureGain(k); got != want {
			t.Errorf("apertureGain(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestProcessUniformFrameHasNoEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	p := NewProcessor(0)
	for idx := 0; idx <= 2; idx++ {
		out, err := p.Process(img, Params{Lower: 50, Upper: 150, ApertureIndex: idx})
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range pixels(out) {
			if v != 0 {
				t.Fatalf("aperture index %d: edge found in uniform frame", idx)
			}
		}
	}
}

func TestProcessVerticalStep(t *testing.T) {
	out, err := NewProcessor(0).Process(stepImage(20, 10, 10), Params{Lower: 50, Upper: 150})
	if err != nil {
		t.Fatal(err)
	}
	g := out.(*image.Gray)
	for y := 0; y < 10; y++ {
		found := false
		for x := 0; x < 20; x++ {
			v := g.GrayAt(x, y).Y
			if v == 0 {
				continue
			}
			if x != 9 && x != 10 {
				t.Fatalf("unexpected edge at (%d,%d)", x, y)
			}
			found = true
		}
		if !found {
			t.Fatalf("row %d has no edge", y)
		}
	}
}

func TestProcessOutputIsBinary(t *testing.T) {
	img := boxImage(40, 40, image.Rect(8, 12, 30, 33))
	p := NewProcessor(0)
	for idx := 0; idx <= 2; idx++ {
		out, err := p.Process(img, Params{Lower: 30, Upper: 90, ApertureIndex: idx})
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range pixels(out) {
			if v != 0 && v != 255 {
				t.Fatalf("aperture index %d: non-binary value %d", idx, v)
			}
		}
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	img := boxImage(64, 48, image.Rect(10, 8, 50, 40))
	p := NewProcessor(0)
	for _, show := range []bool{false, true} {
		params := Params{Lower: 40, Upper: 120, ApertureIndex: 1, ShowContours: show}
		a, err := p.Process(img, params)
		if err != nil {
			t.Fatal(err)
		}
		b, err := p.Process(img, params)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(pixels(a), pixels(b)) {
			t.Fatalf("ShowContours=%v: outputs differ", show)
		}
	}
}

func TestProcessOutputTypes(t *testing.T) {
	img := boxImage(64, 48, image.Rect(10, 8, 50, 40))
	p := NewProcessor(0)

	out, err := p.Process(img, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("contours off: got %T, want *image.Gray", out)
	}
	if g.Bounds().Dx() != 64 || g.Bounds().Dy() != 48 {
		t.Fatalf("edge map is %v", g.Bounds())
	}

	params := DefaultParams()
	params.ShowContours = true
	out, err = p.Process(img, params)
	if err != nil {
		t.Fatal(err)
	}
	rgba, ok := out.(*image.RGBA)
	if !ok {
		t.Fatalf("contours on: got %T, want *image.RGBA", out)
	}
	if rgba.Bounds().Dx() != 64 || rgba.Bounds().Dy() != 48 {
		t.Fatalf("overlay is %v", rgba.Bounds())
	}
}

func TestProcessEmptyFrame(t *testing.T) {
	if _, err := NewProcessor(0).Process(image.NewRGBA(image.Rect(0, 0, 0, 0)), DefaultParams()); err == nil {
		t.Fatal("expected error for empty frame")
	}
	if _, err := NewProcessor(0).Process(nil, DefaultParams()); err == nil {
		t.Fatal("expected error for nil frame")
	}
}

func TestProcessOutlinesRectangle(t *testing.T) {
	img := boxImage(80, 70, image.Rect(10, 10, 70, 60))
	p := NewProcessor(0)
	for idx := 0; idx <= 2; idx++ {
		out, err := p.Process(img, Params{Lower: 50, Upper: 150, ApertureIndex: idx, ShowContours: true})
		if err != nil {
			t.Fatal(err)
		}
		if n := greenPixels(out.(*image.RGBA)); n == 0 {
			t.Fatalf("aperture index %d: rectangle not outlined", idx)
		}
	}
}

func TestProcessIgnoresDisc(t *testing.T) {
	img := discImage(64, 64, image.Pt(32, 32), 20)
	params := DefaultParams()
	params.ShowContours = true
	out, err := NewProcessor(0).Process(img, params)
	if err != nil {
		t.Fatal(err)
	}
	if n := greenPixels(out.(*image.RGBA)); n != 0 {
		t.Fatalf("disc outlined with %d green pixels", n)
	}
}

func TestQuadBranches(t *testing.T) {
	p := NewProcessor(DefaultEpsilonRatio)
	tests := []struct {
		name    string
		contour []image.Point
		quad    bool
	}{
		{"triangle", densePolygon([]image.Point{{10, 60}, {70, 60}, {40, 10}}), false},
		{"square", densePolygon([]image.Point{{10, 10}, {50, 10}, {50, 50}, {10, 50}}), true},
		{"tilted quad", densePolygon([]image.Point{{30, 5}, {70, 30}, {45, 70}, {5, 45}}), true},
		{"pentagon", densePolygon(regularPolygon(5, 50, 50, 30)), false},
		{"hexagon", densePolygon(regularPolygon(6, 50, 50, 30)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contours := gocv.NewPointsVectorFromPoints([][]image.Point{tt.contour})
			defer contours.Close()
			quads := p.quads(contours)
			if tt.quad && len(quads) != 1 {
				t.Fatalf("expected one quad, got %d", len(quads))
			}
			if !tt.quad && len(quads) != 0 {
				t.Fatalf("expected no quad, got %d", len(quads))
			}
		})
	}
}

func TestQuadCornersOfSquare(t *testing.T) {
	contours := gocv.NewPointsVectorFromPoints([][]image.Point{
		densePolygon([]image.Point{{10, 10}, {50, 10}, {50, 50}, {10, 50}}),
	})
	defer contours.Close()

	quads := NewProcessor(0).quads(contours)
	if len(quads) != 1 {
		t.Fatalf("got %d quads", len(quads))
	}
	corners := map[image.Point]bool{{10, 10}: true, {50, 10}: true, {50, 50}: true, {10, 50}: true}
	for _, v := range quads[0] {
		if !corners[v] {
			t.Fatalf("vertex %v is not a corner", v)
		}
	}
}

// Package edge turns captured frames into inverted Canny edge maps and
// optionally outlines quadrilateral contours found in them.
package edge

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

const DefaultEpsilonRatio = 0.02

var ErrEmptyFrame = errors.New("edge: empty frame")

// Processor holds the fixed parts of the pipeline. Per-frame knobs live in
// Params.
type Processor struct {
	// EpsilonRatio scales the contour perimeter to get the approximation
	// tolerance.
	EpsilonRatio float64
	Color        color.RGBA
	Thickness    int
}

// NewProcessor returns a processor drawing 2px green outlines. A
// non-positive ratio selects DefaultEpsilonRatio.
func NewProcessor(epsilonRatio float64) *Processor {
	if epsilonRatio <= 0 {
		epsilonRatio = DefaultEpsilonRatio
	}
	return &Processor{
		EpsilonRatio: epsilonRatio,
		Color:        color.RGBA{G: 255, A: 255},
		Thickness:    2,
	}
}

// Process returns an *image.Gray edge map, or an *image.RGBA copy of it with
// quadrilaterals outlined when params.ShowContours is set.
func (p *Processor) Process(img *image.RGBA, params Params) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	params = params.Normalize()

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("edge: convert frame: %w", err)
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	detectEdges(src, &edges, params)

	if !params.ShowContours {
		g, err := toGray(edges)
		if err != nil {
			return nil, err
		}
		return g, nil
	}

	out := gocv.NewMat()
	defer out.Close()
	p.outline(edges, &out)
	rgba, err := toRGBA(out)
	if err != nil {
		return nil, err
	}
	return rgba, nil
}

// detectEdges writes the Canny edge map of the inverted grayscale of src.
func detectEdges(src gocv.Mat, dst *gocv.Mat, params Params) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	gocv.BitwiseNot(gray, &gray)

	lower, upper := float32(params.Lower), float32(params.Upper)
	input := gray
	if k := ApertureSize(params.ApertureIndex); k > 3 {
		// A k-tap Sobel is the 3-tap Sobel after a (k-2)-tap binomial blur,
		// scaled by apertureGain(k).
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.GaussianBlur(gray, &blurred, image.Pt(k-2, k-2), 0, 0, gocv.BorderDefault)
		gain := apertureGain(k)
		lower /= gain
		upper /= gain
		input = blurred
	}
	gocv.Canny(input, dst, lower, upper)
}

func apertureGain(k int) float32 {
	switch k {
	case 5:
		return 16
	case 7:
		return 256
	default:
		return 1
	}
}

// outline draws every quadrilateral among the external contours of edges over
// a colour copy of edges and reports how many were drawn.
func (p *Processor) outline(edges gocv.Mat, dst *gocv.Mat) int {
	gocv.CvtColor(edges, dst, gocv.ColorGrayToBGR)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	quads := p.quads(contours)
	if len(quads) == 0 {
		return 0
	}
	pv := gocv.NewPointsVectorFromPoints(quads)
	defer pv.Close()
	gocv.DrawContours(dst, pv, -1, p.Color, p.Thickness)
	return len(quads)
}

// quads approximates each contour and keeps the four-sided ones.
func (p *Processor) quads(contours gocv.PointsVector) [][]image.Point {
	var quads [][]image.Point
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		approx := gocv.ApproxPolyDP(c, p.EpsilonRatio*gocv.ArcLength(c, true), true)
		if approx.Size() == 4 {
			quads = append(quads, approx.ToPoints())
		}
		approx.Close()
	}
	return quads
}

func toGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("edge: convert edge map: %w", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("edge: edge map is %T, want *image.Gray", img)
	}
	return g, nil
}

func toRGBA(m gocv.Mat) (*image.RGBA, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("edge: convert overlay: %w", err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("edge: overlay is %T, want *image.RGBA", img)
	}
	return rgba, nil
}

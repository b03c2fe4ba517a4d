// Package raster draws solid shapes onto RGBA bitmaps. All primitives clip to
// the image bounds and never blend: covered pixels are overwritten.
package raster

import (
	"image"
	"image/color"
	"math"
)

// Set writes c at (x,y) if the point is inside img.
func Set(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return
	}
	img.SetRGBA(x, y, c)
}

// FillRect fills r clipped to img.
func FillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Canon().Intersect(img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// FillCircle fills every pixel whose centre lies within radius r of (cx,cy).
// A zero radius paints the single centre pixel.
func FillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	if r < 0 {
		return
	}
	r2 := r * r
	box := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1).Intersect(img.Rect)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		dy := y - cy
		for x := box.Min.X; x < box.Max.X; x++ {
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// Line draws a segment from (x1,y1) to (x2,y2). Widths of one or less use
// Bresenham; wider lines cover every pixel within width/2 of the segment,
// which gives them round caps.
func Line(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA, width int) {
	if width <= 1 {
		bresenham(img, x1, y1, x2, y2, c)
		return
	}

	halfW := float64(width) / 2
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	length := math.Hypot(dx, dy)
	if length < 0.5 {
		FillCircle(img, x1, y1, width/2, c)
		return
	}
	ux, uy := dx/length, dy/length

	margin := int(math.Ceil(halfW))
	box := image.Rect(min(x1, x2)-margin, min(y1, y2)-margin, max(x1, x2)+margin+1, max(y1, y2)+margin+1).Intersect(img.Rect)

	x1f, y1f := float64(x1), float64(y1)
	x2f, y2f := float64(x2), float64(y2)
	for py := box.Min.Y; py < box.Max.Y; py++ {
		for px := box.Min.X; px < box.Max.X; px++ {
			vx := float64(px) - x1f
			vy := float64(py) - y1f
			along := vx*ux + vy*uy

			var dist float64
			switch {
			case along <= 0:
				dist = math.Hypot(vx, vy)
			case along >= length:
				dist = math.Hypot(float64(px)-x2f, float64(py)-y2f)
			default:
				dist = math.Abs(vx*-uy + vy*ux)
			}
			if dist <= halfW {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// Polyline strokes consecutive points, joining the last back to the first
// when closed is set.
func Polyline(img *image.RGBA, pts []image.Point, closed bool, c color.RGBA, width int) {
	if len(pts) == 0 {
		return
	}
	if len(pts) == 1 {
		Line(img, pts[0].X, pts[0].Y, pts[0].X, pts[0].Y, c, width)
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		Line(img, pts[i].X, pts[i].Y, pts[i+1].X, pts[i+1].Y, c, width)
	}
	if closed {
		last := pts[len(pts)-1]
		Line(img, last.X, last.Y, pts[0].X, pts[0].Y, c, width)
	}
}

func bresenham(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	e := dx + dy
	for {
		Set(img, x1, y1, c)
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x1 += sx
		}
		if e2 <= dx {
			e += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

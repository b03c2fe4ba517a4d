// Package pointer reports the global mouse position.
package pointer

import (
	"image"

	"github.com/go-vgo/robotgo"
)

// Source returns the pointer position in desktop coordinates.
type Source interface {
	Position() image.Point
}

// Robot reads the position through robotgo.
type Robot struct{}

func (Robot) Position() image.Point {
	x, y := robotgo.GetMousePos()
	return image.Pt(x, y)
}

// Fixed always reports the same point.
type Fixed image.Point

func (f Fixed) Position() image.Point { return image.Point(f) }

// Func adapts a function to Source.
type Func func() image.Point

func (f Func) Position() image.Point { return f() }

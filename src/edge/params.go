package edge

// Params are the user-adjustable edge-detection settings.
type Params struct {
	Lower         int
	Upper         int
	ApertureIndex int
	ShowContours  bool
}

func DefaultParams() Params {
	return Params{Lower: 50, Upper: 150, ApertureIndex: 0}
}

// ApertureSize maps a slider index to a Sobel aperture. Indices outside
// [0,2] are clamped, so the result is always 3, 5 or 7.
func ApertureSize(index int) int {
	return 3 + 2*clamp(index, 0, 2)
}

// Normalize clamps thresholds to [0,255] and the aperture index to [0,2].
func (p Params) Normalize() Params {
	p.Lower = clamp(p.Lower, 0, 255)
	p.Upper = clamp(p.Upper, 0, 255)
	p.ApertureIndex = clamp(p.ApertureIndex, 0, 2)
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

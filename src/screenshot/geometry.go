package screenshot

import (
	"fmt"
	"regexp"
	"strconv"
)

var regionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(-?\d+)\s*,\s*(-?\d+)\s+(\d+)\s*x\s*(\d+)\s*$`),
	regexp.MustCompile(`^\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*$`),
}

// ParseRegion accepts grim's "X,Y WxH" geometry and the plain "X,Y,W,H" form.
// Mixed forms such as "X,Y W,H" are rejected.
func ParseRegion(s string) (Region, error) {
	var m []string
	for _, p := range regionPatterns {
		if m = p.FindStringSubmatch(s); m != nil {
			break
		}
	}
	if m == nil {
		return Region{}, fmt.Errorf("%w: %q, want \"X,Y WxH\" or \"X,Y,W,H\"", ErrInvalidRegion, s)
	}
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Region{}, fmt.Errorf("%w: %q: %v", ErrInvalidRegion, s, err)
		}
		v[i] = n
	}
	r := Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if err := r.Validate(); err != nil {
		return Region{}, err
	}
	return r, nil
}

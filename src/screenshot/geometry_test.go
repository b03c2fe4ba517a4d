package screenshot

import (
	"errors"
	"testing"
)

func TestParseRegion(t *testing.T) {
	valid := map[string]Region{
		"10,20 300x200":        {X: 10, Y: 20, Width: 300, Height: 200},
		"10,20,300,200":        {X: 10, Y: 20, Width: 300, Height: 200},
		" -1920, 0 1920x1080 ": {X: -1920, Y: 0, Width: 1920, Height: 1080},
	}
	for in, want := range valid {
		got, err := ParseRegion(in)
		if err != nil {
			t.Fatalf("ParseRegion(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseRegion(%q) = %+v, want %+v", in, got, want)
		}
	}

	invalid := []string{
		"", "10,20", "a,b cxd", "10,20 0x200", "10,20 300x0",
		"1,2 3,4", "1,2,3x4", "1,2x3,4", "1,2,3 4",
	}
	for _, in := range invalid {
		if _, err := ParseRegion(in); !errors.Is(err, ErrInvalidRegion) {
			t.Fatalf("ParseRegion(%q) = %v, want ErrInvalidRegion", in, err)
		}
	}
}

func TestParseRegionRoundTripsGeometry(t *testing.T) {
	r := Region{X: -5, Y: 7, Width: 640, Height: 480}
	got, err := ParseRegion(r.Geometry())
	if err != nil || got != r {
		t.Fatalf("ParseRegion(%q) = %+v, %v", r.Geometry(), got, err)
	}
}

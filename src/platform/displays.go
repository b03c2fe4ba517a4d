// Package platform holds process-level setup that has to happen before any
// window or capture exists.
package platform

import (
	"fmt"
	"log"

	"screen-mirror/src/screenshot"
)

// DescribeDisplays returns one line per connected display plus the virtual
// desktop bounds.
func DescribeDisplays(d screenshot.Displays) []string {
	list := screenshot.List(d)
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, fmt.Sprintf("MONITOR: Detected %d monitors", len(list)))
	for _, disp := range list {
		lines = append(lines, "MONITOR: "+disp.String())
	}
	if v, err := screenshot.VirtualBounds(d); err == nil {
		lines = append(lines, fmt.Sprintf("MONITOR: Virtual screen - x:%d y:%d w:%d h:%d", v.Min.X, v.Min.Y, v.Dx(), v.Dy()))
	}
	return lines
}

func LogDisplays(d screenshot.Displays) {
	for _, line := range DescribeDisplays(d) {
		log.Print(line)
	}
}

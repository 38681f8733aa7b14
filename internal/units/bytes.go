// Package units renders byte quantities with binary (1024) steps.
package units

import (
	"fmt"
	"strconv"
	"strings"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// HumanBytes formats n with two decimals and the largest unit that keeps the
// magnitude under 1024, e.g. 1048576 -> "1.00 MB".
func HumanBytes(n float64) string {
	size := n
	for _, unit := range byteUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f PB", size)
}

// ParseBytes reverses HumanBytes up to its two-decimal rounding.
func ParseBytes(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("units: malformed size %q", s)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("units: malformed size %q: %w", s, err)
	}

	scale := 1.0
	for _, unit := range append(byteUnits, "PB") {
		if fields[1] == unit {
			return v * scale, nil
		}
		scale *= 1024
	}
	return 0, fmt.Errorf("units: unknown unit %q", fields[1])
}

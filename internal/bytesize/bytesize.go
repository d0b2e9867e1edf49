// Package bytesize converts the human-readable sizes shown on tracker
// member pages ("12.5 GiB") into exact byte counts.
package bytesize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidUnit is returned when the unit token is not a recognized
// binary byte-scale unit.
var ErrInvalidUnit = errors.New("invalid size unit")

// rank maps each binary unit to its power of 1024.
var rank = map[string]int{
	"B":   0,
	"KiB": 1,
	"MiB": 2,
	"GiB": 3,
	"TiB": 4,
	"PiB": 5,
	"EiB": 6,
}

// Parse converts a numeric magnitude and a binary unit token into a byte
// count. The magnitude may carry a fractional part ("12.5", "GiB").
func Parse(magnitude string, unit string) (int64, error) {
	n, ok := rank[strings.TrimSpace(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(magnitude), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size magnitude %q: %w", magnitude, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative size magnitude %q", magnitude)
	}

	for i := 0; i < n; i++ {
		value *= 1024
	}
	return int64(value), nil
}

// ParseSize splits a "12.5 GiB" style string into magnitude and unit and
// converts it. Exactly one space must separate the two tokens.
func ParseSize(s string) (int64, error) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed size %q", s)
	}
	return Parse(parts[0], parts[1])
}

var units = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// Format renders a byte count with the largest unit that keeps the
// magnitude at or above one, with two decimals for scaled units.
func Format(n int64) string {
	if n < 0 {
		return "-" + Format(-n)
	}
	value := float64(n)
	rank := 0
	for value >= 1024 && rank < len(units)-1 {
		value /= 1024
		rank++
	}
	if rank == 0 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.2f %s", value, units[rank])
}

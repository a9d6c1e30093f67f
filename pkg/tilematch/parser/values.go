// Package parser reads source tables and streams the reference file.
package parser

import (
	"math"
	"strconv"
	"strings"
)

// maxExactInt is the largest integer a spreadsheet number holds exactly.
const maxExactInt = 1 << 53

// ParseValue types a source cell for export.
// Returns nil for blanks, int64 for integers, float64 for finite decimals,
// or the original string. Integers too large for a spreadsheet number stay
// strings so identifiers are not rounded.
func ParseValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if i > maxExactInt || i < -maxExactInt {
			return s
		}
		return i
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	// Return as string
	return s
}

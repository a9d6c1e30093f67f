// Package position parses tower positions from their textual encodings.
package position

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// wktPointRE matches a value starting with POINT (<lon> <lat>), keyword
// case-insensitive. Anything after the closing parenthesis is ignored.
var wktPointRE = regexp.MustCompile(`(?i)^\s*POINT\s*\(\s*([+-]?(?:\d+\.?\d*|\.\d+))\s+([+-]?(?:\d+\.?\d*|\.\d+))\s*\)`)

// ParseWKT extracts the point from a WKT value.
// Missing values and malformed geometry report ok=false.
func ParseWKT(s string) (orb.Point, bool) {
	if strings.TrimSpace(s) == "" {
		return orb.Point{}, false
	}

	m := wktPointRE.FindStringSubmatch(s)
	if m == nil {
		return orb.Point{}, false
	}

	lon, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return orb.Point{}, false
	}
	lat, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return orb.Point{}, false
	}

	return orb.Point{lon, lat}, true
}

// FromLatLon converts separate latitude and longitude columns into the
// equivalent WKT value. Both "." and "," are accepted as decimal separators.
func FromLatLon(lat, lon string) (string, bool) {
	latF, err := parseDecimal(lat)
	if err != nil {
		return "", false
	}
	lonF, err := parseDecimal(lon)
	if err != nil {
		return "", false
	}
	return FormatWKT(orb.Point{lonF, latF}), true
}

// FormatWKT renders p as POINT (<lon> <lat>).
func FormatWKT(p orb.Point) string {
	return "POINT (" + formatFloat(p.Lon()) + " " + formatFloat(p.Lat()) + ")"
}

func parseDecimal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

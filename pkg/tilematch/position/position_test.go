package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWKT(t *testing.T) {
	tests := []struct {
		input string
		lon   float64
		lat   float64
		ok    bool
	}{
		{"POINT (37.6 55.7)", 37.6, 55.7, true},
		{"point(37.6 55.7)", 37.6, 55.7, true},
		{"  POINT  (  -73.98   40.75  ) ", -73.98, 40.75, true},
		{"POINT (+1.5 -2)", 1.5, -2, true},
		{"POINT (.5 10.)", 0.5, 10, true},
		{"", 0, 0, false},
		{"   ", 0, 0, false},
		{"garbage", 0, 0, false},
		{"POINT (37.6)", 0, 0, false},
		{"POINT (37.6 55.7) trailing", 37.6, 55.7, true},
		{"POINT (37.6 55.7);", 37.6, 55.7, true},
		{"x POINT (37.6 55.7)", 0, 0, false},
		{"LINESTRING (1 2, 3 4)", 0, 0, false},
		{"POINT (nan nan)", 0, 0, false},
	}

	for _, tt := range tests {
		p, ok := ParseWKT(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseWKT(%q)", tt.input)
		if tt.ok {
			assert.InDelta(t, tt.lon, p.Lon(), 1e-12, "lon of %q", tt.input)
			assert.InDelta(t, tt.lat, p.Lat(), 1e-12, "lat of %q", tt.input)
		}
	}
}

func TestFromLatLon(t *testing.T) {
	tests := []struct {
		lat, lon string
		expected string
		ok       bool
	}{
		{"55,7", "37,6", "POINT (37.6 55.7)", true},
		{"55.7", "37.6", "POINT (37.6 55.7)", true},
		{" 55 ", "-37,25", "POINT (-37.25 55)", true},
		{"", "37.6", "", false},
		{"55.7", "abc", "", false},
		{"1,2,3", "37.6", "", false},
	}

	for _, tt := range tests {
		got, ok := FromLatLon(tt.lat, tt.lon)
		assert.Equal(t, tt.ok, ok, "FromLatLon(%q, %q)", tt.lat, tt.lon)
		assert.Equal(t, tt.expected, got)
	}
}

func TestFromLatLonReadsBack(t *testing.T) {
	wkt, ok := FromLatLon("55,7", "37,6")
	require.True(t, ok)

	p, ok := ParseWKT(wkt)
	require.True(t, ok)
	assert.Equal(t, 37.6, p.Lon())
	assert.Equal(t, 55.7, p.Lat())
}

func TestNonFiniteLatLonIsAbsent(t *testing.T) {
	wkt, ok := FromLatLon("NaN", "37.6")
	require.True(t, ok)

	_, ok = ParseWKT(wkt)
	assert.False(t, ok)
}

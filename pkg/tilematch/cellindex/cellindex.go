// Package cellindex maps geographic positions to level-13 S2 cells.
package cellindex

import (
	"math"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// Level is the S2 subdivision depth used as the join granularity.
const Level = 13

// CellID returns the decimal form of the level-13 cell containing (lat, lon).
// Non-finite or out-of-range coordinates report ok=false.
func CellID(lat, lon float64) (string, bool) {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return "", false
	}

	ll := s2.LatLngFromDegrees(lat, lon)
	if !ll.IsValid() {
		return "", false
	}

	id := s2.CellIDFromLatLng(ll).Parent(Level)
	if !id.IsValid() {
		return "", false
	}
	return strconv.FormatUint(uint64(id), 10), true
}

// FromPoint is CellID for an orb point (lon, lat order).
func FromPoint(p orb.Point) (string, bool) {
	return CellID(p.Lat(), p.Lon())
}

// Set is the deduplicated set of cell ids seen in a source table.
type Set struct {
	rb *roaring64.Bitmap
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{rb: roaring64.New()}
}

// Add inserts id and reports whether it was a valid cell id string.
func (s *Set) Add(id string) bool {
	v, ok := parseID(id)
	if !ok {
		return false
	}
	s.rb.Add(v)
	return true
}

// Contains reports whether id (after trimming) is a member.
func (s *Set) Contains(id string) bool {
	v, ok := parseID(id)
	if !ok {
		return false
	}
	return s.rb.Contains(v)
}

// Len returns the number of distinct ids.
func (s *Set) Len() int {
	return int(s.rb.GetCardinality())
}

// parseID accepts only the canonical decimal form, so set membership agrees
// with string equality on trimmed ids.
func parseID(id string) (uint64, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatUint(v, 10) != id {
		return 0, false
	}
	return v, true
}

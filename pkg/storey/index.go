// Package storey maps building storeys to vertical ranges and answers
// which storeys an element's bounding box occupies.
package storey

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/ifclint/pkg/core"
)

// DefaultCeiling is the height given to the top storey's range.
const DefaultCeiling = 10000.0

// Storey is the input to Build.
type Storey struct {
	ID        string // GlobalId
	Name      string
	Elevation float64 // metres; 0 when the model leaves it unset
}

// Range is a storey's vertical extent. Ranges of consecutive storeys
// share their boundary elevation.
type Range struct {
	ID   string
	Name string
	ZMin float64
	ZMax float64
}

// Height returns ZMax - ZMin.
func (r Range) Height() float64 { return r.ZMax - r.ZMin }

// Overlaps reports whether the closed interval [zMin, zMax] touches the range.
func (r Range) Overlaps(zMin, zMax float64) bool {
	return !(zMax < r.ZMin || zMin > r.ZMax)
}

// TieBreak chooses one storey when a box overlaps several.
type TieBreak string

// Tie-break policies.
const (
	// TieLowest picks the first overlapping storey in ascending elevation order.
	TieLowest TieBreak = "lowest"
	// TieMidpoint picks the storey containing the box's vertical midpoint.
	TieMidpoint TieBreak = "midpoint"
	// TieMaxOverlap picks the storey with the longest overlap.
	TieMaxOverlap TieBreak = "max_overlap"
)

// ParseTieBreak validates a policy name. The empty string means TieLowest.
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(s))); tb {
	case "":
		return TieLowest, nil
	case TieLowest, TieMidpoint, TieMaxOverlap:
		return tb, nil
	}
	return "", fmt.Errorf("invalid tie-break policy %q (must be lowest, midpoint or max_overlap)", s)
}

// Index is an immutable set of storey ranges sorted by elevation.
// It is safe for concurrent use.
type Index struct {
	ranges   []Range
	byID     map[string]int
	tieBreak TieBreak
}

// Build sorts storeys by elevation (stable) and derives their ranges. Each
// range ends at the next storey's elevation; the top range ends at
// ZMin + ceiling. A non-positive ceiling selects DefaultCeiling.
func Build(storeys []Storey, ceiling float64) *Index {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	sorted := make([]Storey, len(storeys))
	copy(sorted, storeys)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Elevation < sorted[j].Elevation })

	idx := &Index{
		ranges:   make([]Range, len(sorted)),
		byID:     make(map[string]int, len(sorted)),
		tieBreak: TieLowest,
	}
	for i, s := range sorted {
		zMax := s.Elevation + ceiling
		if i < len(sorted)-1 {
			zMax = sorted[i+1].Elevation
		}
		idx.ranges[i] = Range{ID: s.ID, Name: s.Name, ZMin: s.Elevation, ZMax: zMax}
		if _, dup := idx.byID[s.ID]; !dup {
			idx.byID[s.ID] = i
		}
	}
	return idx
}

// WithTieBreak returns a copy of the index using the given policy.
func (idx *Index) WithTieBreak(tb TieBreak) *Index {
	cp := *idx
	cp.tieBreak = tb
	return &cp
}

// TieBreak returns the active policy.
func (idx *Index) TieBreak() TieBreak { return idx.tieBreak }

// Len returns the number of storeys.
func (idx *Index) Len() int { return len(idx.ranges) }

// Ranges returns the ranges in ascending elevation order.
func (idx *Index) Ranges() []Range {
	out := make([]Range, len(idx.ranges))
	copy(out, idx.ranges)
	return out
}

// Lookup returns the range of the storey with the given GlobalId.
func (idx *Index) Lookup(id string) (Range, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return Range{}, false
	}
	return idx.ranges[i], true
}

// Occupied returns every storey whose range overlaps the box vertically,
// in ascending elevation order.
func (idx *Index) Occupied(box core.BoundingBox) []Range {
	var out []Range
	for _, r := range idx.ranges {
		if r.Overlaps(box.Min[core.Z], box.Max[core.Z]) {
			out = append(out, r)
		}
	}
	return out
}

// FindOccupied returns the storey the box occupies, resolving boxes that
// span several storeys with the index's tie-break policy.
func (idx *Index) FindOccupied(box core.BoundingBox) (string, bool) {
	hits := idx.Occupied(box)
	if len(hits) == 0 {
		return "", false
	}
	switch idx.tieBreak {
	case TieMidpoint:
		mid := box.MidZ()
		for _, r := range hits {
			if mid >= r.ZMin && mid <= r.ZMax {
				return r.ID, true
			}
		}
	case TieMaxOverlap:
		best, bestLen := hits[0], -1.0
		for _, r := range hits {
			l := min(box.Max[core.Z], r.ZMax) - max(box.Min[core.Z], r.ZMin)
			if l > bestLen {
				best, bestLen = r, l
			}
		}
		return best.ID, true
	}
	return hits[0].ID, true
}

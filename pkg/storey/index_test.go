package storey

import (
	"testing"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zbox(zMin, zMax float64) core.BoundingBox {
	return core.BoundingBox{Min: core.Vec3{0, 0, zMin}, Max: core.Vec3{1, 1, zMax}}
}

func threeStoreys() []Storey {
	// Deliberately unsorted.
	return []Storey{
		{ID: "L2", Name: "Level 2", Elevation: 6},
		{ID: "L0", Name: "Level 0", Elevation: 0},
		{ID: "L1", Name: "Level 1", Elevation: 3},
	}
}

func TestBuild(t *testing.T) {
	idx := Build(threeStoreys(), 0)

	assert.Equal(t, []Range{
		{ID: "L0", Name: "Level 0", ZMin: 0, ZMax: 3},
		{ID: "L1", Name: "Level 1", ZMin: 3, ZMax: 6},
		{ID: "L2", Name: "Level 2", ZMin: 6, ZMax: 6 + DefaultCeiling},
	}, idx.Ranges())
	assert.Equal(t, 3, idx.Len())

	r, ok := idx.Lookup("L1")
	require.True(t, ok)
	assert.Equal(t, 3.0, r.Height())
	_, ok = idx.Lookup("nope")
	assert.False(t, ok)
}

func TestBuild_StableOnEqualElevation(t *testing.T) {
	idx := Build([]Storey{
		{ID: "b", Elevation: 0},
		{ID: "a", Elevation: 0},
		{ID: "c", Elevation: 3},
	}, 100)
	rs := idx.Ranges()
	require.Len(t, rs, 3)
	assert.Equal(t, "b", rs[0].ID)
	assert.Equal(t, "a", rs[1].ID)
	// b's range collapses onto its twin's elevation.
	assert.Equal(t, 0.0, rs[0].ZMax)
	assert.Equal(t, 103.0, rs[2].ZMax)
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil, 0)
	_, ok := idx.FindOccupied(zbox(0, 1))
	assert.False(t, ok)
	assert.Empty(t, idx.Occupied(zbox(0, 1)))
}

func TestFindOccupied(t *testing.T) {
	tests := []struct {
		name   string
		tie    TieBreak
		box    core.BoundingBox
		want   string
		wantOK bool
	}{
		{"inside ground floor", TieLowest, zbox(0.5, 2.5), "L0", true},
		{"touching boundary counts", TieLowest, zbox(3, 3.2), "L0", true},
		{"spanning two picks lowest", TieLowest, zbox(2.9, 5.5), "L0", true},
		{"below everything", TieLowest, zbox(-5, -1), "", false},
		{"above top ceiling", TieLowest, zbox(20000, 20001), "", false},
		{"midpoint policy", TieMidpoint, zbox(2.9, 5.5), "L1", true},
		{"max overlap policy", TieMaxOverlap, zbox(2.0, 3.5), "L0", true},
		{"max overlap prefers longer upper", TieMaxOverlap, zbox(2.5, 5.0), "L1", true},
		{"midpoint falls back to lowest", TieMidpoint, zbox(-1, 0), "L0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Build(threeStoreys(), 0).WithTieBreak(tt.tie)
			got, ok := idx.FindOccupied(tt.box)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOccupied(t *testing.T) {
	idx := Build(threeStoreys(), 0)
	ids := func(rs []Range) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}
	assert.Equal(t, []string{"L0", "L1", "L2"}, ids(idx.Occupied(zbox(1, 7))))
	assert.Equal(t, []string{"L1", "L2"}, ids(idx.Occupied(zbox(6, 6))))
}

func TestParseTieBreak(t *testing.T) {
	tb, err := ParseTieBreak("")
	require.NoError(t, err)
	assert.Equal(t, TieLowest, tb)

	tb, err = ParseTieBreak(" MAX_OVERLAP ")
	require.NoError(t, err)
	assert.Equal(t, TieMaxOverlap, tb)

	_, err = ParseTieBreak("highest")
	assert.Error(t, err)
}

package reconcile

import (
	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/extract"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

// ReferenceFloors holds the lowest slab bottom per storey, measured in a
// reference (architectural) model. Lookups try the storey GlobalId first
// and then the storey name, since two models of one building rarely share
// storey GUIDs. A nil *ReferenceFloors is empty.
type ReferenceFloors struct {
	byID   map[string]float64
	byName map[string]float64
}

// NewReferenceFloors returns an empty table.
func NewReferenceFloors() *ReferenceFloors {
	return &ReferenceFloors{
		byID:   make(map[string]float64),
		byName: make(map[string]float64),
	}
}

// Add records z for the storey, keeping the lowest value seen.
func (rf *ReferenceFloors) Add(id, name string, z float64) {
	if prev, ok := rf.byID[id]; !ok || z < prev {
		rf.byID[id] = z
	}
	if name == "" {
		return
	}
	if prev, ok := rf.byName[name]; !ok || z < prev {
		rf.byName[name] = z
	}
}

// Lookup returns the reference floor Z for a storey.
func (rf *ReferenceFloors) Lookup(id, name string) (float64, bool) {
	if rf == nil {
		return 0, false
	}
	if z, ok := rf.byID[id]; ok {
		return z, true
	}
	if name == "" {
		return 0, false
	}
	z, ok := rf.byName[name]
	return z, ok
}

// Len returns the number of storeys with a reference floor.
func (rf *ReferenceFloors) Len() int {
	if rf == nil {
		return 0
	}
	return len(rf.byID)
}

// BuildReferenceFloors measures the lowest slab bottom per storey of a
// reference model. Each slab is attributed to its declared storey, or to
// the storey its geometry occupies when it has none. Non-slab items are
// ignored.
func BuildReferenceFloors(items []extract.Item, lookup AssignmentLookup, index *storey.Index) *ReferenceFloors {
	rf := NewReferenceFloors()
	for _, it := range items {
		if core.KindOf(it.Element.Category()) != core.KindSlab || it.Box.IsDegenerate() {
			continue
		}
		id, ok := "", false
		if lookup != nil {
			id, ok = lookup.StoreyOf(it.Element)
		}
		if !ok {
			id, ok = index.FindOccupied(it.Box)
		}
		if !ok {
			continue
		}
		var name string
		if rng, found := index.Lookup(id); found {
			name = rng.Name
		}
		rf.Add(id, name, it.Box.Min[core.Z])
	}
	return rf
}

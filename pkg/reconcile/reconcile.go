// Package reconcile compares each element's declared building storey with
// the storey its geometry actually occupies.
package reconcile

import (
	"log/slog"
	"math"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/extract"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

const (
	// minStoreyHeight is the storey height assumed when a range is empty.
	minStoreyHeight = 3.0
	// midpointSlack widens a storey range for the midpoint check.
	midpointSlack = 0.01
)

// AssignmentLookup resolves an element to the GlobalId of the storey it is
// declared on.
type AssignmentLookup interface {
	StoreyOf(el core.Element) (string, bool)
}

// LookupFunc adapts a function to AssignmentLookup.
type LookupFunc func(el core.Element) (string, bool)

// StoreyOf calls f(el).
func (f LookupFunc) StoreyOf(el core.Element) (string, bool) { return f(el) }

// Reconciler checks floor assignments against a storey index.
// With reference floors, a slab or beam is expected on the reference
// level of its assigned storey, matched by GUID and then by a reference
// storey with the same name. It is read-only after construction and
// safe for concurrent use.
type Reconciler struct {
	index  *storey.Index
	lookup AssignmentLookup
	refs   *ReferenceFloors
	logger *slog.Logger
}

// Config holds the collaborators of a Reconciler.
type Config struct {
	Index  *storey.Index
	Lookup AssignmentLookup
	// Reference is optional; without it slabs and beams are expected to
	// sit on their storey's base elevation.
	Reference *ReferenceFloors
	Logger    *slog.Logger
}

// New creates a reconciler.
func New(cfg Config) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	idx := cfg.Index
	if idx == nil {
		idx = storey.Build(nil, 0)
	}
	return &Reconciler{index: idx, lookup: cfg.Lookup, refs: cfg.Reference, logger: logger}
}

// Reconcile returns at most one finding per item, in input order.
// Items with a degenerate box are skipped.
func (r *Reconciler) Reconcile(items []extract.Item) []core.FloorFinding {
	var out []core.FloorFinding
	for _, it := range items {
		if f, ok := r.Check(it.Element, it.Box); ok {
			out = append(out, f)
		}
	}
	return out
}

// Check reconciles a single element.
func (r *Reconciler) Check(el core.Element, box core.BoundingBox) (core.FloorFinding, bool) {
	if box.IsDegenerate() {
		return core.FloorFinding{}, false
	}
	finding := func(issue core.FloorIssue, assigned, actual string) (core.FloorFinding, bool) {
		return core.FloorFinding{Issue: issue, Element: el, Assigned: assigned, Actual: actual, Box: box}, true
	}

	var assigned string
	var hasAssigned bool
	if r.lookup != nil {
		assigned, hasAssigned = r.lookup.StoreyOf(el)
	}
	actual, hasActual := r.index.FindOccupied(box)

	if !hasAssigned {
		return finding(core.Unassigned, "", actual)
	}
	if !hasActual {
		return finding(core.Floating, assigned, "")
	}
	rng, ok := r.index.Lookup(assigned)
	if !ok {
		r.logger.Debug("assigned storey not in index", "guid", el.GlobalID(), "storey", assigned)
		return finding(core.WrongFloor, assigned, actual)
	}

	switch core.KindOf(el.Category()) {
	case core.KindSlab, core.KindBeam:
		expected := rng.ZMin
		if z, ok := r.refs.Lookup(rng.ID, rng.Name); ok {
			expected = z
		}
		tol := Tolerance(rng, box)
		bottom := box.Min[core.Z]
		if bottom < expected-tol || bottom > expected+tol {
			return finding(core.WrongFloor, assigned, actual)
		}
	default:
		mid := box.MidZ()
		if mid < rng.ZMin-midpointSlack || mid > rng.ZMax+midpointSlack {
			return finding(core.Floating, assigned, "")
		}
	}
	return core.FloorFinding{}, false
}

// Tolerance is the allowed distance between a slab or beam bottom and the
// expected floor level: max(2% of the storey height, 20% of the element height).
func Tolerance(rng storey.Range, box core.BoundingBox) float64 {
	h := rng.Height()
	if h <= 0 {
		h = math.Max(minStoreyHeight, 0.1*math.Abs(rng.ZMax))
	}
	return math.Max(0.02*h, 0.2*box.Height())
}

// Package classify flags structural elements whose bounding-box
// proportions contradict their declared category.
//
// Rules in this package:
//   - SC01: Beam shaped like a slab
//   - SC02: Beam shaped like a wall
//   - SC03: Slab shaped like a beam
//   - SC04: Slab shaped like a column
//   - SC05: Column shaped like a slab
//   - SC06: Wall shaped like a beam
package classify

import "github.com/leapstack-labs/ifclint/pkg/core"

// Divisor names a dimension a rule divides by.
type Divisor int

// Divisors a rule may declare.
const (
	DivThickness Divisor = 1 << iota
	DivWidth
)

// RuleDef is a data-driven shape rule. Rules are stateless; Check
// receives the sorted dimensions of one element.
type RuleDef struct {
	ID          string    // e.g. "SC01"
	Name        string    // e.g. "beam.slab-like"
	Source      core.Kind // declared kind the rule applies to
	Suspected   core.Kind // kind the geometry suggests instead
	Description string
	Geometry    string // short phrase describing the offending shape
	Hint        string // human-readable formula
	DividesBy   Divisor
	Severity    core.Severity
	Check       CheckFunc
}

// CheckFunc reports whether the dimensions match the rule.
type CheckFunc func(d core.Dimensions) bool

// RuleInfo provides metadata about a rule for documentation and tooling.
type RuleInfo struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Source      core.Kind     `json:"source"`
	Suspected   core.Kind     `json:"suspected"`
	Description string        `json:"description"`
	Hint        string        `json:"hint"`
	Severity    core.Severity `json:"severity"`
}

// Info returns the rule's metadata.
func (r RuleDef) Info() RuleInfo {
	return RuleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Source:      r.Source,
		Suspected:   r.Suspected,
		Description: r.Description,
		Hint:        r.Hint,
		Severity:    r.Severity,
	}
}

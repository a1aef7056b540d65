package classify

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/ifclint/pkg/core"
)

// epsilon is the smallest dimension a rule may divide by.
const epsilon = 1e-9

// Classifier runs the registered shape rules over elements.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	disabled map[string]bool
}

// New creates a classifier with the given rule IDs disabled.
// Unknown IDs are an error.
func New(disabled []string) (*Classifier, error) {
	c := &Classifier{disabled: make(map[string]bool, len(disabled))}
	for _, id := range disabled {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := GetByID(id); !ok {
			return nil, fmt.Errorf("unknown shape rule %q", id)
		}
		c.disabled[id] = true
	}
	return c, nil
}

// IsDisabled reports whether a rule is switched off.
func (c *Classifier) IsDisabled(id string) bool {
	return c.disabled[id]
}

// Rules returns the enabled rules sorted by ID.
func (c *Classifier) Rules() []RuleDef {
	var out []RuleDef
	for _, r := range GetAll() {
		if !c.disabled[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Classify returns one finding per enabled rule that fires for the element.
// Degenerate boxes and elements outside the four structural kinds yield
// nothing.
func (c *Classifier) Classify(el core.Element, box core.BoundingBox) []core.ClassificationFinding {
	if box.IsDegenerate() {
		return nil
	}
	kind := core.KindOf(el.Category())
	if kind == core.KindOther {
		return nil
	}
	d := box.Dimensions()

	var out []core.ClassificationFinding
	for _, r := range GetBySource(kind) {
		if c.disabled[r.ID] || !divisible(r.DividesBy, d) {
			continue
		}
		if r.Check(d) {
			out = append(out, core.ClassificationFinding{
				Element:   el,
				RuleID:    r.ID,
				Source:    r.Source,
				Suspected: r.Suspected,
				Box:       box,
			})
		}
	}
	return out
}

func divisible(div Divisor, d core.Dimensions) bool {
	if div&DivThickness != 0 && d.Thickness <= epsilon {
		return false
	}
	if div&DivWidth != 0 && d.Width <= epsilon {
		return false
	}
	return true
}

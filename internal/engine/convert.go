package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/ifc"
)

// Conversion records one retyped element.
type Conversion struct {
	GlobalID string
	RuleID   string
	From     string
	To       string
}

// Convert retypes every element flagged by the given shape rules (all
// enabled rules when ruleIDs is empty) to its suspected category and
// writes the result to outPath. The structural model on disk is never
// modified; outPath must differ from it.
func (e *Engine) Convert(ctx context.Context, ruleIDs []string, outPath string) ([]Conversion, error) {
	want := make(map[string]bool, len(ruleIDs))
	for _, id := range ruleIDs {
		want[strings.ToUpper(strings.TrimSpace(id))] = true
	}

	// A private copy keeps the cached analysis model untouched.
	m, err := ifc.Open(e.modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open structural model: %w", err)
	}
	items, _, err := e.extract(ctx, m, e.targets(m))
	if err != nil {
		return nil, err
	}

	var out []Conversion
	done := make(map[string]bool)
	for _, it := range items {
		for _, f := range e.classifier.Classify(it.Element, it.Box) {
			if len(want) > 0 && !want[f.RuleID] {
				continue
			}
			if done[f.Element.GlobalID()] {
				continue
			}
			c, err := retype(m, f)
			if err != nil {
				return nil, err
			}
			done[c.GlobalID] = true
			out = append(out, c)
			e.logger.Info("converted element", "guid", c.GlobalID, "from", c.From, "to", c.To, "rule", c.RuleID)
		}
	}

	if err := m.WriteFile(outPath); err != nil {
		return nil, err
	}
	e.logger.Info("wrote converted model", "path", outPath, "converted", len(out))
	return out, nil
}

func retype(m *ifc.Model, f core.ClassificationFinding) (Conversion, error) {
	el, ok := f.Element.(ifc.Element)
	if !ok {
		return Conversion{}, fmt.Errorf("convert %s: not an IFC element", f.Element.GlobalID())
	}
	c := Conversion{GlobalID: el.GlobalID(), RuleID: f.RuleID, From: el.Category(), To: f.Suspected.IfcType()}
	if err := m.Retype(el, c.To); err != nil {
		return Conversion{}, fmt.Errorf("convert %s: %w", c.GlobalID, err)
	}
	return c, nil
}

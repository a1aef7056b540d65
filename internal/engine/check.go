package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/extract"
	"github.com/leapstack-labs/ifclint/pkg/ifc"
	"github.com/leapstack-labs/ifclint/pkg/ifc/geom"
	"github.com/leapstack-labs/ifclint/pkg/reconcile"
	"github.com/leapstack-labs/ifclint/pkg/report"
	"github.com/leapstack-labs/ifclint/pkg/storey"
)

// Result is the outcome of one check.
type Result struct {
	ProjectName string
	Schema      string
	// Elements is the number of target elements found; Dropped of those
	// had no usable geometry and were left out of the analysis.
	Elements int
	Dropped  int
	Storeys  []storey.Range
	// Reference reports whether the reference model contributed floor levels.
	Reference      bool
	Classification []core.ClassificationFinding
	Floor          []core.FloorFinding
	Report         *report.Report
	Duration       time.Duration
}

// HasFindings reports whether any issue was found.
func (r *Result) HasFindings() bool {
	return len(r.Classification) > 0 || len(r.Floor) > 0
}

// Check runs the full pipeline: extract boxes, classify shapes, reconcile
// storeys and build the report. Only an unreadable structural model or a
// cancelled context is an error; elements without geometry are dropped and
// an unusable reference model is logged and ignored.
func (e *Engine) Check(ctx context.Context) (*Result, error) {
	start := time.Now()
	e.logger.Info("starting check", "model", e.modelPath)

	m, err := e.Model()
	if err != nil {
		return nil, err
	}

	// The index is complete before any extraction worker starts.
	index := e.StoreyIndex(m)
	elements := e.targets(m)
	e.logger.Debug("collected elements", "count", len(elements), "storeys", index.Len())

	items, dropped, err := e.extract(ctx, m, elements)
	if err != nil {
		return nil, err
	}

	ref, refRanges := e.referenceFloors(ctx)

	var classFindings []core.ClassificationFinding
	for _, it := range items {
		classFindings = append(classFindings, e.classifier.Classify(it.Element, it.Box)...)
	}

	rec := reconcile.New(reconcile.Config{
		Index:     index,
		Lookup:    m,
		Reference: ref,
		Logger:    e.logger,
	})
	floorFindings := rec.Reconcile(items)

	res := &Result{
		ProjectName:    m.ProjectName(),
		Schema:         m.Schema(),
		Elements:       len(elements),
		Dropped:        dropped,
		Storeys:        index.Ranges(),
		Reference:      ref.Len() > 0,
		Classification: classFindings,
		Floor:          floorFindings,
	}
	res.Report = report.Build(report.Input{
		Project:          res.ProjectName,
		Author:           e.author,
		Classification:   classFindings,
		Floor:            floorFindings,
		Storeys:          res.Storeys,
		ReferenceStoreys: refRanges,
	})
	res.Duration = time.Since(start)

	e.logger.Info("check completed",
		"elements", res.Elements,
		"dropped", res.Dropped,
		"class_findings", len(classFindings),
		"floor_findings", len(floorFindings),
		"duration", res.Duration,
	)
	return res, nil
}

// targets returns the configured categories' elements, each once, in
// category then file order.
func (e *Engine) targets(m *ifc.Model) []core.Element {
	seen := make(map[int]bool)
	var out []core.Element
	for _, cat := range e.categories {
		for _, el := range m.ElementsByCategory(cat) {
			if seen[el.ID()] {
				continue
			}
			seen[el.ID()] = true
			out = append(out, el)
		}
	}
	return out
}

func (e *Engine) extract(ctx context.Context, m *ifc.Model, elements []core.Element) ([]extract.Item, int, error) {
	ev := geom.New(m, geom.Settings{WorldCoords: true})
	x := extract.New(ev, e.logger)
	items, dropped, err := x.ExtractAll(ctx, elements, e.workers)
	if err != nil {
		return nil, 0, fmt.Errorf("extracting geometry: %w", err)
	}
	if dropped > 0 {
		e.logger.Debug("elements without usable geometry", "dropped", dropped)
	}
	return items, dropped, nil
}

// referenceFloors measures the reference model's lowest slab per storey.
// Failures are logged and yield an empty table.
func (e *Engine) referenceFloors(ctx context.Context) (*reconcile.ReferenceFloors, []storey.Range) {
	if e.referencePath == "" {
		return nil, nil
	}
	ref, err := ifc.Open(e.referencePath)
	if err != nil {
		e.logger.Warn("reference model unavailable, using storey elevations", "path", e.referencePath, "error", err)
		return nil, nil
	}
	index := e.StoreyIndex(ref)

	var slabs []core.Element
	for _, el := range ref.ElementsByCategory("IfcSlab") {
		slabs = append(slabs, el)
	}
	items, _, err := e.extract(ctx, ref, slabs)
	if err != nil {
		e.logger.Warn("reference model geometry unavailable", "path", e.referencePath, "error", err)
		return nil, index.Ranges()
	}
	floors := reconcile.BuildReferenceFloors(items, ref, index)
	e.logger.Debug("reference floors", "path", e.referencePath, "storeys", floors.Len())
	return floors, index.Ranges()
}

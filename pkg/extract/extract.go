// Package extract computes world-space axis-aligned bounding boxes of
// building elements.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"golang.org/x/sync/errgroup"
)

// ErrExtractionFailed wraps every per-element extraction failure.
var ErrExtractionFailed = errors.New("bounding box extraction failed")

// VertexSource evaluates an element to a flat x,y,z vertex list in
// world coordinates.
type VertexSource interface {
	Vertices(el core.Element) ([]float64, error)
}

// Item is an element paired with its extracted box.
type Item struct {
	Element core.Element
	Box     core.BoundingBox
}

// Extractor computes bounding boxes through a VertexSource.
type Extractor struct {
	src    VertexSource
	logger *slog.Logger
}

// New creates an extractor. A nil logger discards output.
func New(src VertexSource, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{src: src, logger: logger}
}

// Extract returns the element's bounding box. On failure it returns the
// zero box and an error wrapping ErrExtractionFailed.
func (x *Extractor) Extract(el core.Element) (core.BoundingBox, error) {
	verts, err := x.src.Vertices(el)
	if err != nil {
		return core.BoundingBox{}, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, el.GlobalID(), err)
	}
	box, err := Bounds(verts)
	if err != nil {
		return core.BoundingBox{}, fmt.Errorf("%w: %s: %w", ErrExtractionFailed, el.GlobalID(), err)
	}
	if box.IsDegenerate() {
		return core.BoundingBox{}, fmt.Errorf("%w: %s: geometry collapses to the origin", ErrExtractionFailed, el.GlobalID())
	}
	return box, nil
}

// Bounds reduces a flat vertex list to its per-axis min and max.
func Bounds(verts []float64) (core.BoundingBox, error) {
	if len(verts) == 0 {
		return core.BoundingBox{}, errors.New("empty vertex list")
	}
	if len(verts)%3 != 0 {
		return core.BoundingBox{}, fmt.Errorf("vertex list length %d is not a multiple of 3", len(verts))
	}
	inf := math.Inf(1)
	box := core.BoundingBox{
		Min: core.Vec3{inf, inf, inf},
		Max: core.Vec3{-inf, -inf, -inf},
	}
	for i := 0; i < len(verts); i += 3 {
		for k := 0; k < 3; k++ {
			v := verts[i+k]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return core.BoundingBox{}, fmt.Errorf("non-finite coordinate at vertex %d", i/3)
			}
			box.Min[k] = math.Min(box.Min[k], v)
			box.Max[k] = math.Max(box.Max[k], v)
		}
	}
	return box, nil
}

// ExtractAll extracts boxes for elements using up to workers goroutines.
// Successful items are returned in input order; failed elements are
// logged at debug level and counted in dropped.
func (x *Extractor) ExtractAll(ctx context.Context, elements []core.Element, workers int) (items []Item, dropped int, err error) {
	if workers < 1 {
		workers = 1
	}
	boxes := make([]core.BoundingBox, len(elements))
	ok := make([]bool, len(elements))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, el := range elements {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			box, err := x.Extract(el)
			if err != nil {
				x.logger.Debug("dropping element", "guid", el.GlobalID(), "category", el.Category(), "error", err)
				return nil
			}
			boxes[i], ok[i] = box, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	items = make([]Item, 0, len(elements))
	for i, el := range elements {
		if !ok[i] {
			dropped++
			continue
		}
		items = append(items, Item{Element: el, Box: boxes[i]})
	}
	return items, dropped, nil
}

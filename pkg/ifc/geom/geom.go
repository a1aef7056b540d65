// Package geom evaluates the body geometry of IFC products into flat
// vertex lists.
//
// The evaluator is not a modelling kernel: it produces a vertex cloud
// whose axis-aligned extents match the element's body. Boolean
// differences keep the first operand, curved surfaces are sampled, and
// spline curves contribute their control points.
package geom

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/ifc"
	"github.com/leapstack-labs/ifclint/pkg/step"
)

var (
	// ErrNoGeometry is returned for elements without a usable body representation.
	ErrNoGeometry = errors.New("element has no body geometry")
	// ErrUnsupported is returned for geometry constructs the evaluator cannot handle.
	ErrUnsupported = errors.New("unsupported geometry")
)

const maxDepth = 32

// Settings controls evaluation.
type Settings struct {
	// WorldCoords applies the element's object placement chain. Without it
	// vertices are returned in the element's local coordinate system.
	WorldCoords bool
}

// Evaluator turns element representations into vertices in metres.
// It is safe for concurrent use.
type Evaluator struct {
	model    *ifc.Model
	file     *step.File
	settings Settings
	scale    float64
	angle    float64

	mu         sync.Mutex
	placements map[int]transform
}

// New returns an evaluator for elements of m.
func New(m *ifc.Model, settings Settings) *Evaluator {
	return &Evaluator{
		model:      m,
		file:       m.File(),
		settings:   settings,
		scale:      m.LengthScale(),
		angle:      m.AngleScale(),
		placements: make(map[int]transform),
	}
}

// Vertices returns the element's body as a flat x,y,z list in metres.
func (ev *Evaluator) Vertices(el core.Element) ([]float64, error) {
	ie, ok := el.(ifc.Element)
	if !ok || ie.Model() != ev.model {
		return nil, fmt.Errorf("%w: element %s does not belong to this model", ErrUnsupported, el.GlobalID())
	}
	items, err := ev.bodyItems(ie)
	if err != nil {
		return nil, err
	}
	t := identity
	if ev.settings.WorldCoords {
		if t, err = ev.placement(ie.Placement(), 0); err != nil {
			return nil, err
		}
	}
	var pts []core.Vec3
	for _, it := range items {
		if err := ev.item(it, t, &pts, 0); err != nil {
			return nil, err
		}
	}
	if len(pts) == 0 {
		return nil, ErrNoGeometry
	}
	out := make([]float64, 0, 3*len(pts))
	for _, p := range pts {
		out = append(out, p[0]*ev.scale, p[1]*ev.scale, p[2]*ev.scale)
	}
	return out, nil
}

var bodyIdentifiers = []string{"BODY", "FACETATION", "BOX"}

// bodyItems picks the items of the preferred shape representation.
func (ev *Evaluator) bodyItems(el ifc.Element) ([]*step.Entity, error) {
	pds, ok := ev.file.Resolve(el.Representation())
	if !ok {
		return nil, ErrNoGeometry
	}
	reps := ev.entities(pds.Attr(2))
	for _, id := range bodyIdentifiers {
		for _, rep := range reps {
			name, _ := rep.Attr(1).Text()
			if strings.ToUpper(name) != id {
				continue
			}
			if items := ev.entities(rep.Attr(3)); len(items) > 0 {
				return items, nil
			}
		}
	}
	// Unlabelled solid representations still count as the body.
	for _, rep := range reps {
		if _, ok := rep.Attr(1).Text(); ok {
			continue
		}
		kind, _ := rep.Attr(2).Text()
		switch strings.ToUpper(kind) {
		case "SWEPTSOLID", "BREP", "CSG", "CLIPPING", "TESSELLATION", "SURFACEMODEL", "MAPPEDREPRESENTATION", "ADVANCEDSWEPTSOLID":
			if items := ev.entities(rep.Attr(3)); len(items) > 0 {
				return items, nil
			}
		}
	}
	return nil, ErrNoGeometry
}

// entities resolves every reference of a list value.
func (ev *Evaluator) entities(v step.Value) []*step.Entity {
	items, _ := v.List()
	out := make([]*step.Entity, 0, len(items))
	for _, it := range items {
		if e, ok := ev.file.Resolve(it); ok {
			out = append(out, e)
		}
	}
	return out
}

func (ev *Evaluator) resolve(v step.Value, what string) (*step.Entity, error) {
	e, ok := ev.file.Resolve(v)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrUnsupported, what)
	}
	return e, nil
}

func floats(v step.Value) ([]float64, bool) {
	items, ok := v.List()
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, it := range items {
		f, ok := it.Float()
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func vec(fs []float64) core.Vec3 {
	var v core.Vec3
	copy(v[:], fs)
	return v
}

// point reads an IfcCartesianPoint; 2D points get z = 0.
func (ev *Evaluator) point(v step.Value) (core.Vec3, error) {
	e, err := ev.resolve(v, "point")
	if err != nil {
		return core.Vec3{}, err
	}
	if e.Type != "IFCCARTESIANPOINT" {
		return core.Vec3{}, fmt.Errorf("%w: %s as point", ErrUnsupported, e.Type)
	}
	fs, ok := floats(e.Attr(0))
	if !ok || len(fs) < 1 || len(fs) > 3 {
		return core.Vec3{}, fmt.Errorf("%w: malformed point #%d", ErrUnsupported, e.ID)
	}
	return vec(fs), nil
}

// direction reads an optional IfcDirection.
func (ev *Evaluator) direction(v step.Value) (*core.Vec3, error) {
	if v.IsNull() {
		return nil, nil
	}
	e, err := ev.resolve(v, "direction")
	if err != nil {
		return nil, err
	}
	fs, ok := floats(e.Attr(0))
	if !ok || len(fs) < 2 || len(fs) > 3 {
		return nil, fmt.Errorf("%w: malformed direction #%d", ErrUnsupported, e.ID)
	}
	d, ok := normalize(vec(fs))
	if !ok {
		return nil, fmt.Errorf("%w: zero direction #%d", ErrUnsupported, e.ID)
	}
	return &d, nil
}

// pointList reads IfcCartesianPointList2D/3D coordinates.
func (ev *Evaluator) pointList(v step.Value) ([]core.Vec3, error) {
	e, err := ev.resolve(v, "point list")
	if err != nil {
		return nil, err
	}
	rows, _ := e.Attr(0).List()
	out := make([]core.Vec3, 0, len(rows))
	for _, r := range rows {
		fs, ok := floats(r)
		if !ok || len(fs) < 2 || len(fs) > 3 {
			return nil, fmt.Errorf("%w: malformed point list #%d", ErrUnsupported, e.ID)
		}
		out = append(out, vec(fs))
	}
	return out, nil
}

// points reads a list of IfcCartesianPoint references.
func (ev *Evaluator) points(v step.Value) ([]core.Vec3, error) {
	items, _ := v.List()
	out := make([]core.Vec3, 0, len(items))
	for _, it := range items {
		p, err := ev.point(it)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// axis evaluates IfcAxis2Placement2D/3D. A null placement is the identity.
func (ev *Evaluator) axis(v step.Value) (transform, error) {
	if v.IsNull() {
		return identity, nil
	}
	e, err := ev.resolve(v, "placement")
	if err != nil {
		return identity, err
	}
	origin, err := ev.point(e.Attr(0))
	if err != nil {
		return identity, err
	}
	switch e.Type {
	case "IFCAXIS2PLACEMENT3D":
		z := core.Vec3{0, 0, 1}
		zd, err := ev.direction(e.Attr(1))
		if err != nil {
			return identity, err
		}
		if zd != nil {
			z = *zd
		}
		ref, err := ev.direction(e.Attr(2))
		if err != nil {
			return identity, err
		}
		x := firstProjAxis(z, ref)
		return fromAxes(x, cross(z, x), z, origin), nil
	case "IFCAXIS2PLACEMENT2D":
		x := core.Vec3{1, 0, 0}
		ref, err := ev.direction(e.Attr(1))
		if err != nil {
			return identity, err
		}
		if ref != nil {
			x, _ = normalize(core.Vec3{ref[0], ref[1], 0})
		}
		return fromAxes(x, core.Vec3{-x[1], x[0], 0}, core.Vec3{0, 0, 1}, origin), nil
	}
	return identity, fmt.Errorf("%w: %s", ErrUnsupported, e.Type)
}

// operator evaluates an IfcCartesianTransformationOperator (2D or 3D,
// uniform or non-uniform).
func (ev *Evaluator) operator(v step.Value) (transform, error) {
	if v.IsNull() {
		return identity, nil
	}
	e, err := ev.resolve(v, "transformation operator")
	if err != nil {
		return identity, err
	}
	if !strings.HasPrefix(e.Type, "IFCCARTESIANTRANSFORMATIONOPERATOR") {
		return identity, fmt.Errorf("%w: %s as operator", ErrUnsupported, e.Type)
	}
	axis1, err := ev.direction(e.Attr(0))
	if err != nil {
		return identity, err
	}
	axis2, err := ev.direction(e.Attr(1))
	if err != nil {
		return identity, err
	}
	origin, err := ev.point(e.Attr(2))
	if err != nil {
		return identity, err
	}
	s := 1.0
	if f, ok := e.Attr(3).Float(); ok {
		s = f
	}
	s1, s2, s3 := s, s, s

	var x, y, z core.Vec3
	if strings.Contains(e.Type, "2D") {
		x = core.Vec3{1, 0, 0}
		if axis1 != nil {
			x, _ = normalize(core.Vec3{axis1[0], axis1[1], 0})
		}
		y = core.Vec3{-x[1], x[0], 0}
		if axis2 != nil && dot(*axis2, y) < 0 {
			y = y.Scale(-1)
		}
		z = core.Vec3{0, 0, 1}
		if f, ok := e.Attr(4).Float(); ok {
			s2 = f
		}
	} else {
		z = core.Vec3{0, 0, 1}
		a3, err := ev.direction(e.Attr(4))
		if err != nil {
			return identity, err
		}
		if a3 != nil {
			z = *a3
		}
		x = firstProjAxis(z, axis1)
		yv := cross(z, x)
		if axis2 != nil {
			yv = *axis2
		}
		var ok bool
		if y, ok = normalize(yv.Sub(z.Scale(dot(yv, z))).Sub(x.Scale(dot(yv, x)))); !ok {
			y = cross(z, x)
		}
		if f, ok := e.Attr(5).Float(); ok {
			s2 = f
		}
		if f, ok := e.Attr(6).Float(); ok {
			s3 = f
		}
	}
	return fromAxes(x.Scale(s1), y.Scale(s2), z.Scale(s3), origin), nil
}

// placement evaluates an object placement chain to world coordinates.
func (ev *Evaluator) placement(v step.Value, depth int) (transform, error) {
	if v.IsNull() {
		return identity, nil
	}
	e, err := ev.resolve(v, "object placement")
	if err != nil {
		return identity, err
	}
	if depth > maxDepth {
		return identity, fmt.Errorf("%w: placement chain deeper than %d", ErrUnsupported, maxDepth)
	}
	ev.mu.Lock()
	t, ok := ev.placements[e.ID]
	ev.mu.Unlock()
	if ok {
		return t, nil
	}

	switch e.Type {
	case "IFCLOCALPLACEMENT":
		parent, err := ev.placement(e.Attr(0), depth+1)
		if err != nil {
			return identity, err
		}
		rel, err := ev.axis(e.Attr(1))
		if err != nil {
			return identity, err
		}
		t = parent.mul(rel)
	default:
		return identity, fmt.Errorf("%w: %s", ErrUnsupported, e.Type)
	}

	ev.mu.Lock()
	ev.placements[e.ID] = t
	ev.mu.Unlock()
	return t, nil
}

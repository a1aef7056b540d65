package geom

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/step"
)

// item appends the vertices of one representation item, transformed by t.
func (ev *Evaluator) item(e *step.Entity, t transform, out *[]core.Vec3, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: item nesting deeper than %d", ErrUnsupported, maxDepth)
	}
	emit := func(pts []core.Vec3, m transform) {
		for _, p := range pts {
			*out = append(*out, m.point(p))
		}
	}

	switch e.Type {
	case "IFCEXTRUDEDAREASOLID", "IFCEXTRUDEDAREASOLIDTAPERED":
		return ev.extrusion(e, t, out, depth)

	case "IFCREVOLVEDAREASOLID", "IFCREVOLVEDAREASOLIDTAPERED":
		return ev.revolution(e, t, out, depth)

	case "IFCFACETEDBREP", "IFCFACETEDBREPWITHVOIDS", "IFCADVANCEDBREP", "IFCADVANCEDBREPWITHVOIDS":
		shell, err := ev.resolve(e.Attr(0), "outer shell")
		if err != nil {
			return err
		}
		return ev.faces(shell, t, out)

	case "IFCSHELLBASEDSURFACEMODEL", "IFCFACEBASEDSURFACEMODEL":
		for _, shell := range ev.entities(e.Attr(0)) {
			if err := ev.faces(shell, t, out); err != nil {
				return err
			}
		}
		return nil

	case "IFCCLOSEDSHELL", "IFCOPENSHELL", "IFCCONNECTEDFACESET":
		return ev.faces(e, t, out)

	case "IFCTRIANGULATEDFACESET", "IFCPOLYGONALFACESET", "IFCTRIANGULATEDIRREGULARNETWORK":
		pts, err := ev.pointList(e.Attr(0))
		if err != nil {
			return err
		}
		emit(pts, t)
		return nil

	case "IFCBOOLEANRESULT", "IFCBOOLEANCLIPPINGRESULT":
		first, err := ev.resolve(e.Attr(1), "first operand")
		if err != nil {
			return err
		}
		if isHalfSpace(first) {
			return fmt.Errorf("%w: unbounded first operand %s", ErrUnsupported, first.Type)
		}
		if err := ev.item(first, t, out, depth+1); err != nil {
			return err
		}
		if e.Attr(0).Str != "UNION" {
			return nil
		}
		second, err := ev.resolve(e.Attr(2), "second operand")
		if err != nil {
			return err
		}
		if isHalfSpace(second) {
			return nil
		}
		return ev.item(second, t, out, depth+1)

	case "IFCCSGSOLID":
		root, err := ev.resolve(e.Attr(0), "csg root")
		if err != nil {
			return err
		}
		return ev.item(root, t, out, depth+1)

	case "IFCBLOCK":
		m, err := ev.local(t, e.Attr(0))
		if err != nil {
			return err
		}
		x, y, z, err := lengths(e, 1, 2, 3)
		if err != nil {
			return err
		}
		emit(corners(core.Vec3{}, core.Vec3{x, y, z}), m)
		return nil

	case "IFCRECTANGULARPYRAMID":
		m, err := ev.local(t, e.Attr(0))
		if err != nil {
			return err
		}
		x, y, h, err := lengths(e, 1, 2, 3)
		if err != nil {
			return err
		}
		emit([]core.Vec3{{0, 0, 0}, {x, 0, 0}, {0, y, 0}, {x, y, 0}, {x / 2, y / 2, h}}, m)
		return nil

	case "IFCRIGHTCIRCULARCYLINDER", "IFCRIGHTCIRCULARCONE":
		m, err := ev.local(t, e.Attr(0))
		if err != nil {
			return err
		}
		h, r, _, err := lengths(e, 1, 2, 2)
		if err != nil {
			return err
		}
		base := ellipse(r, r)
		emit(base, m)
		if e.Type == "IFCRIGHTCIRCULARCONE" {
			emit([]core.Vec3{{0, 0, h}}, m)
			return nil
		}
		emit(offset(base, core.Vec3{0, 0, h}), m)
		return nil

	case "IFCSPHERE":
		m, err := ev.local(t, e.Attr(0))
		if err != nil {
			return err
		}
		r, ok := e.Attr(1).Float()
		if !ok {
			return fmt.Errorf("%w: sphere #%d without radius", ErrUnsupported, e.ID)
		}
		c := m.point(core.Vec3{})
		r *= m.maxScale()
		*out = append(*out, corners(c.Sub(core.Vec3{r, r, r}), c.Add(core.Vec3{r, r, r}))...)
		return nil

	case "IFCMAPPEDITEM":
		src, err := ev.resolve(e.Attr(0), "mapping source")
		if err != nil {
			return err
		}
		origin, err := ev.axis(src.Attr(0))
		if err != nil {
			return err
		}
		target, err := ev.operator(e.Attr(1))
		if err != nil {
			return err
		}
		rep, err := ev.resolve(src.Attr(1), "mapped representation")
		if err != nil {
			return err
		}
		m := t.mul(target).mul(origin)
		for _, it := range ev.entities(rep.Attr(3)) {
			if err := ev.item(it, m, out, depth+1); err != nil {
				return err
			}
		}
		return nil

	case "IFCBOUNDINGBOX":
		c, err := ev.point(e.Attr(0))
		if err != nil {
			return err
		}
		x, y, z, err := lengths(e, 1, 2, 3)
		if err != nil {
			return err
		}
		emit(corners(c, c.Add(core.Vec3{x, y, z})), t)
		return nil

	case "IFCSWEPTDISKSOLID", "IFCSWEPTDISKSOLIDPOLYGONAL":
		path, err := ev.curve(e.Attr(0), depth+1)
		if err != nil {
			return err
		}
		r, ok := e.Attr(1).Float()
		if !ok {
			return fmt.Errorf("%w: swept disk #%d without radius", ErrUnsupported, e.ID)
		}
		for _, p := range path {
			emit([]core.Vec3{
				p.Add(core.Vec3{r, 0, 0}), p.Add(core.Vec3{-r, 0, 0}),
				p.Add(core.Vec3{0, r, 0}), p.Add(core.Vec3{0, -r, 0}),
				p.Add(core.Vec3{0, 0, r}), p.Add(core.Vec3{0, 0, -r}),
			}, t)
		}
		return nil

	case "IFCGEOMETRICSET", "IFCGEOMETRICCURVESET":
		for _, el := range ev.entities(e.Attr(0)) {
			if err := ev.item(el, t, out, depth+1); err != nil {
				return err
			}
		}
		return nil

	case "IFCCARTESIANPOINT":
		p, err := ev.point(step.NewRef(e.ID))
		if err != nil {
			return err
		}
		emit([]core.Vec3{p}, t)
		return nil
	}

	if isCurve(e.Type) {
		pts, err := ev.curve(step.NewRef(e.ID), depth+1)
		if err != nil {
			return err
		}
		emit(pts, t)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, e.Type)
}

// local composes t with an optional item position.
func (ev *Evaluator) local(t transform, pos step.Value) (transform, error) {
	p, err := ev.axis(pos)
	if err != nil {
		return identity, err
	}
	return t.mul(p), nil
}

func (ev *Evaluator) extrusion(e *step.Entity, t transform, out *[]core.Vec3, depth int) error {
	bottom, err := ev.profile(e.Attr(0), depth+1)
	if err != nil {
		return err
	}
	top := bottom
	if e.Type == "IFCEXTRUDEDAREASOLIDTAPERED" {
		if top, err = ev.profile(e.Attr(4), depth+1); err != nil {
			return err
		}
	}
	m, err := ev.local(t, e.Attr(1))
	if err != nil {
		return err
	}
	dir := core.Vec3{0, 0, 1}
	d, err := ev.direction(e.Attr(2))
	if err != nil {
		return err
	}
	if d != nil {
		dir = *d
	}
	length, ok := e.Attr(3).Float()
	if !ok {
		return fmt.Errorf("%w: extrusion #%d without depth", ErrUnsupported, e.ID)
	}
	shift := dir.Scale(length)
	for _, p := range bottom {
		*out = append(*out, m.point(p))
	}
	for _, p := range top {
		*out = append(*out, m.point(p.Add(shift)))
	}
	return nil
}

// revolution samples the profile rotated about the solid's axis.
func (ev *Evaluator) revolution(e *step.Entity, t transform, out *[]core.Vec3, depth int) error {
	prof, err := ev.profile(e.Attr(0), depth+1)
	if err != nil {
		return err
	}
	m, err := ev.local(t, e.Attr(1))
	if err != nil {
		return err
	}
	ax, err := ev.resolve(e.Attr(2), "revolution axis")
	if err != nil {
		return err
	}
	center, err := ev.point(ax.Attr(0))
	if err != nil {
		return err
	}
	k := core.Vec3{0, 0, 1}
	d, err := ev.direction(ax.Attr(1))
	if err != nil {
		return err
	}
	if d != nil {
		k = *d
	}
	angle, ok := e.Attr(3).Float()
	if !ok {
		return fmt.Errorf("%w: revolution #%d without angle", ErrUnsupported, e.ID)
	}
	angle *= ev.angle
	for _, a := range arcAngles(0, angle) {
		sin, cos := math.Sincos(a)
		for _, p := range prof {
			v := p.Sub(center)
			// Rodrigues rotation of v about k.
			r := v.Scale(cos).Add(cross(k, v).Scale(sin)).Add(k.Scale(dot(k, v) * (1 - cos)))
			*out = append(*out, m.point(r.Add(center)))
		}
	}
	return nil
}

// faces appends the loop vertices of every face of a shell.
func (ev *Evaluator) faces(shell *step.Entity, t transform, out *[]core.Vec3) error {
	for _, face := range ev.entities(shell.Attr(0)) {
		for _, bound := range ev.entities(face.Attr(0)) {
			loop, err := ev.resolve(bound.Attr(0), "face loop")
			if err != nil {
				return err
			}
			switch loop.Type {
			case "IFCPOLYLOOP":
				pts, err := ev.points(loop.Attr(0))
				if err != nil {
					return err
				}
				for _, p := range pts {
					*out = append(*out, t.point(p))
				}
			case "IFCVERTEXLOOP":
				p, err := ev.vertex(loop.Attr(0))
				if err != nil {
					return err
				}
				*out = append(*out, t.point(p))
			case "IFCEDGELOOP":
				for _, oe := range ev.entities(loop.Attr(0)) {
					edge, err := ev.resolve(oe.Attr(2), "edge")
					if err != nil {
						return err
					}
					for _, i := range []int{0, 1} {
						p, err := ev.vertex(edge.Attr(i))
						if err != nil {
							return err
						}
						*out = append(*out, t.point(p))
					}
				}
			default:
				return fmt.Errorf("%w: %s", ErrUnsupported, loop.Type)
			}
		}
	}
	return nil
}

func (ev *Evaluator) vertex(v step.Value) (core.Vec3, error) {
	vp, err := ev.resolve(v, "vertex")
	if err != nil {
		return core.Vec3{}, err
	}
	return ev.point(vp.Attr(0))
}

func isHalfSpace(e *step.Entity) bool {
	switch e.Type {
	case "IFCHALFSPACESOLID", "IFCPOLYGONALBOUNDEDHALFSPACE", "IFCBOXEDHALFSPACE":
		return true
	}
	return false
}

func lengths(e *step.Entity, i, j, k int) (float64, float64, float64, error) {
	a, ok1 := e.Attr(i).Float()
	b, ok2 := e.Attr(j).Float()
	c, ok3 := e.Attr(k).Float()
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, fmt.Errorf("%w: %s #%d missing dimensions", ErrUnsupported, e.Type, e.ID)
	}
	return a, b, c, nil
}

func corners(lo, hi core.Vec3) []core.Vec3 {
	out := make([]core.Vec3, 0, 8)
	for _, x := range []float64{lo[0], hi[0]} {
		for _, y := range []float64{lo[1], hi[1]} {
			for _, z := range []float64{lo[2], hi[2]} {
				out = append(out, core.Vec3{x, y, z})
			}
		}
	}
	return out
}

func offset(pts []core.Vec3, d core.Vec3) []core.Vec3 {
	out := make([]core.Vec3, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}

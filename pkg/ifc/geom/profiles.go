package geom

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/step"
)

// circleSegments is the polygon resolution of circles and ellipses.
const circleSegments = 32

// profileDims gives the attribute positions of (width, depth) for
// parameterised profiles. Each is centred on its position.
var profileDims = map[string][2]int{
	"IFCRECTANGLEPROFILEDEF":        {3, 4},
	"IFCROUNDEDRECTANGLEPROFILEDEF": {3, 4},
	"IFCRECTANGLEHOLLOWPROFILEDEF":  {3, 4},
	"IFCISHAPEPROFILEDEF":           {3, 4},
	"IFCASYMMETRICISHAPEPROFILEDEF": {3, 4},
	"IFCTSHAPEPROFILEDEF":           {4, 3},
	"IFCUSHAPEPROFILEDEF":           {4, 3},
	"IFCCSHAPEPROFILEDEF":           {4, 3},
	"IFCLSHAPEPROFILEDEF":           {4, 3},
	"IFCTRAPEZIUMPROFILEDEF":        {3, 6},
}

// profile returns the outline points of a profile definition in the
// coordinates of the swept solid (profile position applied).
func (ev *Evaluator) profile(v step.Value, depth int) ([]core.Vec3, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: profile nesting deeper than %d", ErrUnsupported, maxDepth)
	}
	p, err := ev.resolve(v, "profile")
	if err != nil {
		return nil, err
	}

	if idx, ok := profileDims[p.Type]; ok {
		w, wok := p.Attr(idx[0]).Float()
		d, dok := p.Attr(idx[1]).Float()
		switch p.Type {
		case "IFCLSHAPEPROFILEDEF":
			// Width is optional and defaults to the depth.
			if !wok && dok {
				w, wok = d, true
			}
		case "IFCASYMMETRICISHAPEPROFILEDEF":
			if top, ok := p.Attr(8).Float(); ok && top > w {
				w = top
			}
		case "IFCTRAPEZIUMPROFILEDEF":
			// BottomXDim(3) TopXDim(4) YDim(5) TopXOffset(6)
			top, _ := p.Attr(4).Float()
			off, _ := p.Attr(6).Float()
			d, dok = p.Attr(5).Float()
			w = math.Max(w, off+top) - math.Min(0, off)
		}
		if !wok || !dok {
			return nil, fmt.Errorf("%w: %s #%d missing dimensions", ErrUnsupported, p.Type, p.ID)
		}
		return ev.positioned(p, rect(w, d))
	}

	switch p.Type {
	case "IFCZSHAPEPROFILEDEF":
		d, dok := p.Attr(3).Float()
		fw, fok := p.Attr(4).Float()
		web, _ := p.Attr(5).Float()
		if !dok || !fok {
			return nil, fmt.Errorf("%w: %s #%d missing dimensions", ErrUnsupported, p.Type, p.ID)
		}
		return ev.positioned(p, rect(2*fw-web, d))

	case "IFCCIRCLEPROFILEDEF", "IFCCIRCLEHOLLOWPROFILEDEF":
		r, ok := p.Attr(3).Float()
		if !ok {
			return nil, fmt.Errorf("%w: circle profile #%d without radius", ErrUnsupported, p.ID)
		}
		return ev.positioned(p, ellipse(r, r))

	case "IFCELLIPSEPROFILEDEF":
		a, aok := p.Attr(3).Float()
		b, bok := p.Attr(4).Float()
		if !aok || !bok {
			return nil, fmt.Errorf("%w: ellipse profile #%d missing semi axes", ErrUnsupported, p.ID)
		}
		return ev.positioned(p, ellipse(a, b))

	case "IFCARBITRARYCLOSEDPROFILEDEF", "IFCARBITRARYPROFILEDEFWITHVOIDS", "IFCARBITRARYOPENPROFILEDEF":
		return ev.curve(p.Attr(2), depth+1)

	case "IFCCENTERLINEPROFILEDEF":
		pts, err := ev.curve(p.Attr(2), depth+1)
		if err != nil {
			return nil, err
		}
		th, _ := p.Attr(3).Float()
		h := th / 2
		out := make([]core.Vec3, 0, 4*len(pts))
		for _, q := range pts {
			out = append(out,
				q.Add(core.Vec3{h, 0, 0}), q.Add(core.Vec3{-h, 0, 0}),
				q.Add(core.Vec3{0, h, 0}), q.Add(core.Vec3{0, -h, 0}))
		}
		return out, nil

	case "IFCDERIVEDPROFILEDEF", "IFCMIRROREDPROFILEDEF":
		parent, err := ev.profile(p.Attr(2), depth+1)
		if err != nil {
			return nil, err
		}
		op := identity
		if p.Type == "IFCMIRROREDPROFILEDEF" {
			op = fromAxes(core.Vec3{-1, 0, 0}, core.Vec3{0, 1, 0}, core.Vec3{0, 0, 1}, core.Vec3{})
		} else if op, err = ev.operator(p.Attr(3)); err != nil {
			return nil, err
		}
		out := make([]core.Vec3, len(parent))
		for i, q := range parent {
			out[i] = op.point(q)
		}
		return out, nil

	case "IFCCOMPOSITEPROFILEDEF":
		var out []core.Vec3
		items, _ := p.Attr(2).List()
		for _, it := range items {
			pts, err := ev.profile(it, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, pts...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, p.Type)
}

// positioned applies the optional Position of a parameterised profile.
func (ev *Evaluator) positioned(p *step.Entity, pts []core.Vec3) ([]core.Vec3, error) {
	pos, err := ev.axis(p.Attr(2))
	if err != nil {
		return nil, err
	}
	for i, q := range pts {
		pts[i] = pos.point(q)
	}
	return pts, nil
}

func rect(w, d float64) []core.Vec3 {
	x, y := w/2, d/2
	return []core.Vec3{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}}
}

// ellipse returns a closed polygon through the axis extremes.
func ellipse(a, b float64) []core.Vec3 {
	out := make([]core.Vec3, circleSegments)
	for i := range out {
		sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
		out[i] = core.Vec3{a * cos, b * sin, 0}
	}
	return out
}

package geom

import (
	"fmt"
	"math"

	"github.com/leapstack-labs/ifclint/pkg/core"
	"github.com/leapstack-labs/ifclint/pkg/step"
)

func isCurve(typ string) bool {
	switch typ {
	case "IFCPOLYLINE", "IFCINDEXEDPOLYCURVE", "IFCCOMPOSITECURVE", "IFCCOMPOSITECURVEONSURFACE",
		"IFCTRIMMEDCURVE", "IFCCIRCLE", "IFCELLIPSE", "IFCBSPLINECURVEWITHKNOTS",
		"IFCRATIONALBSPLINECURVEWITHKNOTS", "IFCBEZIERCURVE", "IFCRATIONALBEZIERCURVE":
		return true
	}
	return false
}

// curve returns points whose extents cover the curve.
func (ev *Evaluator) curve(v step.Value, depth int) ([]core.Vec3, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: curve nesting deeper than %d", ErrUnsupported, maxDepth)
	}
	c, err := ev.resolve(v, "curve")
	if err != nil {
		return nil, err
	}
	switch c.Type {
	case "IFCPOLYLINE":
		return ev.points(c.Attr(0))

	case "IFCINDEXEDPOLYCURVE":
		return ev.pointList(c.Attr(0))

	case "IFCCOMPOSITECURVE", "IFCCOMPOSITECURVEONSURFACE":
		var out []core.Vec3
		for _, seg := range ev.entities(c.Attr(0)) {
			pts, err := ev.curve(seg.Attr(2), depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, pts...)
		}
		return out, nil

	case "IFCBSPLINECURVEWITHKNOTS", "IFCRATIONALBSPLINECURVEWITHKNOTS", "IFCBEZIERCURVE", "IFCRATIONALBEZIERCURVE":
		// Control polygons enclose the curve.
		return ev.points(c.Attr(1))

	case "IFCCIRCLE", "IFCELLIPSE":
		return ev.conic(c, 0, 2*math.Pi)

	case "IFCTRIMMEDCURVE":
		return ev.trimmed(c, depth)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.Type)
}

// conic samples a circle or ellipse between two angles (radians,
// counter-clockwise from a0 to a1).
func (ev *Evaluator) conic(c *step.Entity, a0, a1 float64) ([]core.Vec3, error) {
	pos, err := ev.axis(c.Attr(0))
	if err != nil {
		return nil, err
	}
	a, ok := c.Attr(1).Float()
	if !ok {
		return nil, fmt.Errorf("%w: %s #%d without radius", ErrUnsupported, c.Type, c.ID)
	}
	b := a
	if c.Type == "IFCELLIPSE" {
		if b, ok = c.Attr(2).Float(); !ok {
			return nil, fmt.Errorf("%w: ellipse #%d without second semi axis", ErrUnsupported, c.ID)
		}
	}
	angles := arcAngles(a0, a1)
	out := make([]core.Vec3, len(angles))
	for i, t := range angles {
		sin, cos := math.Sincos(t)
		out[i] = pos.point(core.Vec3{a * cos, b * sin, 0})
	}
	return out, nil
}

// arcAngles returns the end angles plus every multiple of the circle
// step in between, so axis extremes inside the arc are always included.
func arcAngles(a0, a1 float64) []float64 {
	if a1 < a0 {
		a0, a1 = a1, a0
	}
	inc := 2 * math.Pi / circleSegments
	out := []float64{a0}
	for k := math.Floor(a0/inc) + 1; k*inc < a1; k++ {
		out = append(out, k*inc)
	}
	return append(out, a1)
}

// trimmed evaluates an IfcTrimmedCurve over a line, circle or ellipse.
func (ev *Evaluator) trimmed(c *step.Entity, depth int) ([]core.Vec3, error) {
	basis, err := ev.resolve(c.Attr(0), "basis curve")
	if err != nil {
		return nil, err
	}
	p1, t1, err := ev.trimSelect(c.Attr(1))
	if err != nil {
		return nil, err
	}
	p2, t2, err := ev.trimSelect(c.Attr(2))
	if err != nil {
		return nil, err
	}
	sense := c.Attr(3).Str != "F"
	preferCartesian := c.Attr(4).Str == "CARTESIAN"

	switch basis.Type {
	case "IFCLINE":
		var out []core.Vec3
		for _, trim := range []struct {
			p *core.Vec3
			t *float64
		}{{p1, t1}, {p2, t2}} {
			switch {
			case trim.p != nil:
				out = append(out, *trim.p)
			case trim.t != nil:
				p, err := ev.linePoint(basis, *trim.t)
				if err != nil {
					return nil, err
				}
				out = append(out, p)
			}
		}
		if len(out) < 2 {
			return nil, fmt.Errorf("%w: line trim #%d needs two ends", ErrUnsupported, c.ID)
		}
		return out, nil

	case "IFCCIRCLE", "IFCELLIPSE":
		a0, ok0, err := ev.trimAngle(basis, p1, t1, preferCartesian)
		if err != nil {
			return nil, err
		}
		a1, ok1, err := ev.trimAngle(basis, p2, t2, preferCartesian)
		if err != nil {
			return nil, err
		}
		if !ok0 || !ok1 {
			return ev.conic(basis, 0, 2*math.Pi)
		}
		if !sense {
			a0, a1 = a1, a0
		}
		for a1 < a0 {
			a1 += 2 * math.Pi
		}
		return ev.conic(basis, a0, a1)
	}

	var out []core.Vec3
	for _, p := range []*core.Vec3{p1, p2} {
		if p != nil {
			out = append(out, *p)
		}
	}
	if len(out) == 2 {
		return out, nil
	}
	return ev.curve(c.Attr(0), depth+1)
}

// trimSelect reads a trimming select list: a point and/or a parameter.
func (ev *Evaluator) trimSelect(v step.Value) (*core.Vec3, *float64, error) {
	items, _ := v.List()
	var p *core.Vec3
	var t *float64
	for _, it := range items {
		switch it.Kind {
		case step.KindRef:
			q, err := ev.point(it)
			if err != nil {
				return nil, nil, err
			}
			p = &q
		case step.KindTyped, step.KindReal, step.KindInteger:
			if f, ok := it.Float(); ok {
				t = &f
			}
		}
	}
	return p, t, nil
}

func (ev *Evaluator) linePoint(line *step.Entity, t float64) (core.Vec3, error) {
	origin, err := ev.point(line.Attr(0))
	if err != nil {
		return core.Vec3{}, err
	}
	vecE, err := ev.resolve(line.Attr(1), "line vector")
	if err != nil {
		return core.Vec3{}, err
	}
	d, err := ev.direction(vecE.Attr(0))
	if err != nil {
		return core.Vec3{}, err
	}
	if d == nil {
		return core.Vec3{}, fmt.Errorf("%w: line #%d without direction", ErrUnsupported, line.ID)
	}
	mag, ok := vecE.Attr(1).Float()
	if !ok {
		mag = 1
	}
	return origin.Add(d.Scale(t * mag)), nil
}

// trimAngle converts a trim to a conic angle in radians.
func (ev *Evaluator) trimAngle(conic *step.Entity, p *core.Vec3, t *float64, preferCartesian bool) (float64, bool, error) {
	if p != nil && (preferCartesian || t == nil) {
		pos, err := ev.axis(conic.Attr(0))
		if err != nil {
			return 0, false, err
		}
		local := pos.inverseRigid().point(*p)
		a, _ := conic.Attr(1).Float()
		b := a
		if conic.Type == "IFCELLIPSE" {
			b, _ = conic.Attr(2).Float()
		}
		if a == 0 || b == 0 {
			return 0, false, nil
		}
		return math.Atan2(local[1]/b, local[0]/a), true, nil
	}
	if t != nil {
		return *t * ev.angle, true, nil
	}
	return 0, false, nil
}

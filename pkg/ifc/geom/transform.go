package geom

import (
	"math"

	"github.com/leapstack-labs/ifclint/pkg/core"
)

// transform is an affine 3x4 matrix; column 3 holds the translation.
type transform [3][4]float64

var identity = transform{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}

// fromAxes builds a transform whose columns are x, y, z and origin o.
func fromAxes(x, y, z, o core.Vec3) transform {
	var t transform
	for i := 0; i < 3; i++ {
		t[i][0], t[i][1], t[i][2], t[i][3] = x[i], y[i], z[i], o[i]
	}
	return t
}

// mul returns a∘b: b is applied first.
func (a transform) mul(b transform) transform {
	var r transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			v := a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j]
			if j == 3 {
				v += a[i][3]
			}
			r[i][j] = v
		}
	}
	return r
}

func (a transform) point(p core.Vec3) core.Vec3 {
	return core.Vec3{
		a[0][0]*p[0] + a[0][1]*p[1] + a[0][2]*p[2] + a[0][3],
		a[1][0]*p[0] + a[1][1]*p[1] + a[1][2]*p[2] + a[1][3],
		a[2][0]*p[0] + a[2][1]*p[1] + a[2][2]*p[2] + a[2][3],
	}
}

func (a transform) vector(v core.Vec3) core.Vec3 {
	return core.Vec3{
		a[0][0]*v[0] + a[0][1]*v[1] + a[0][2]*v[2],
		a[1][0]*v[0] + a[1][1]*v[1] + a[1][2]*v[2],
		a[2][0]*v[0] + a[2][1]*v[1] + a[2][2]*v[2],
	}
}

// inverseRigid inverts a transform with orthonormal axes.
func (a transform) inverseRigid() transform {
	var r transform
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[j][i]
		}
	}
	o := r.vector(core.Vec3{a[0][3], a[1][3], a[2][3]})
	r[0][3], r[1][3], r[2][3] = -o[0], -o[1], -o[2]
	return r
}

// maxScale returns the largest column length, the radius factor for
// spheres and disks under a possibly scaled transform.
func (a transform) maxScale() float64 {
	s := 0.0
	for j := 0; j < 3; j++ {
		s = math.Max(s, norm(core.Vec3{a[0][j], a[1][j], a[2][j]}))
	}
	return s
}

func dot(a, b core.Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func cross(a, b core.Vec3) core.Vec3 {
	return core.Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func norm(v core.Vec3) float64 { return math.Sqrt(dot(v, v)) }

func normalize(v core.Vec3) (core.Vec3, bool) {
	n := norm(v)
	if n < 1e-12 {
		return v, false
	}
	return v.Scale(1 / n), true
}

// firstProjAxis returns the X axis orthogonal to z, derived from the
// optional reference direction as the schema's first_proj_axis does.
func firstProjAxis(z core.Vec3, ref *core.Vec3) core.Vec3 {
	var v core.Vec3
	switch {
	case ref != nil:
		v = *ref
	case math.Abs(z[0]-1) > 1e-9 || math.Abs(z[1]) > 1e-9 || math.Abs(z[2]) > 1e-9:
		v = core.Vec3{1, 0, 0}
	default:
		v = core.Vec3{0, 0, 1}
	}
	x, ok := normalize(v.Sub(z.Scale(dot(v, z))))
	if !ok {
		// Reference parallel to z: pick any perpendicular.
		alt := core.Vec3{1, 0, 0}
		if math.Abs(z[0]) > 0.9 {
			alt = core.Vec3{0, 1, 0}
		}
		x, _ = normalize(alt.Sub(z.Scale(dot(alt, z))))
	}
	return x
}

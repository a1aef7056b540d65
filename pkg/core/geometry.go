package core

import (
	"fmt"
	"math"
	"sort"
)

// Vec3 is a point or vector in world coordinates (metres).
type Vec3 [3]float64

// Axis indices.
const (
	X = 0
	Y = 1
	Z = 2
)

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }

// BoundingBox is an axis-aligned box in world coordinates.
// Min[i] <= Max[i] holds for every axis of a box produced by the extractor.
// The all-zero box is the degenerate "unknown geometry" marker.
type BoundingBox struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// IsDegenerate reports whether the box is the all-zero failure marker.
func (b BoundingBox) IsDegenerate() bool {
	return b.Min == Vec3{} && b.Max == Vec3{}
}

// Valid reports whether Min <= Max on every axis and no coordinate is NaN.
func (b BoundingBox) Valid() bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(b.Min[i]) || math.IsNaN(b.Max[i]) || b.Min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Extents returns the absolute size along each axis.
func (b BoundingBox) Extents() Vec3 {
	return Vec3{
		math.Abs(b.Max[0] - b.Min[0]),
		math.Abs(b.Max[1] - b.Min[1]),
		math.Abs(b.Max[2] - b.Min[2]),
	}
}

// Center returns the box centre.
func (b BoundingBox) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Height returns the vertical extent.
func (b BoundingBox) Height() float64 {
	return math.Abs(b.Max[Z] - b.Min[Z])
}

// MidZ returns the vertical midpoint.
func (b BoundingBox) MidZ() float64 {
	return 0.5 * (b.Min[Z] + b.Max[Z])
}

// Dimensions returns the extents sorted ascending.
func (b BoundingBox) Dimensions() Dimensions {
	e := b.Extents()
	d := []float64{e[0], e[1], e[2]}
	sort.Float64s(d)
	return Dimensions{Thickness: d[0], Width: d[1], Length: d[2]}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[(%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)]",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

// Dimensions is the (thickness, width, length) triple of a box: its three
// extents sorted ascending. It is always derived from a BoundingBox.
type Dimensions struct {
	Thickness float64 `json:"thickness"`
	Width     float64 `json:"width"`
	Length    float64 `json:"length"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("t=%.3f w=%.3f L=%.3f", d.Thickness, d.Width, d.Length)
}

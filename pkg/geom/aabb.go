// Package geom provides bounding-volume and direction helpers on top of mgl32.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box.
// An invalid box has Min > Max on every axis and absorbs the first merge.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an invalidated box ready to be merged into.
func EmptyAABB() AABB {
	var b AABB
	b.Invalidate()
	return b
}

// NewAABB returns a box spanning the two corners, in any order.
func NewAABB(a, b mgl32.Vec3) AABB {
	box := EmptyAABB()
	box.AddPoint(a)
	box.AddPoint(b)
	return box
}

// Invalidate resets the box so that the next merge replaces it.
func (b *AABB) Invalidate() {
	inf := float32(math.Inf(1))
	b.Min = mgl32.Vec3{inf, inf, inf}
	b.Max = mgl32.Vec3{-inf, -inf, -inf}
}

// IsValid reports whether the box contains at least one point.
func (b AABB) IsValid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// AddPoint grows the box to contain p.
func (b *AABB) AddPoint(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Merge grows the box to contain other. Invalid boxes are ignored.
func (b *AABB) Merge(other AABB) {
	if !other.IsValid() {
		return
	}
	b.AddPoint(other.Min)
	b.AddPoint(other.Max)
}

// Center returns the midpoint of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the box containing b after applying m.
//
// Uses the Arvo method: each output axis accumulates the min/max of the
// matrix column scaled by the source extents, so the result is tight for
// affine m without transforming all eight corners.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if !b.IsValid() {
		return b
	}

	t := m.Col(3).Vec3()
	out := AABB{Min: t, Max: t}

	for col := 0; col < 3; col++ {
		axis := m.Col(col).Vec3()
		for row := 0; row < 3; row++ {
			e := axis[row] * b.Min[col]
			f := axis[row] * b.Max[col]
			if e < f {
				out.Min[row] += e
				out.Max[row] += f
			} else {
				out.Min[row] += f
				out.Max[row] += e
			}
		}
	}
	return out
}

// Corners returns the eight corners of the box, bottom face first.
func (b AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
	}
}

// Package geom provides the axis-aligned bounding box arithmetic shared
// by every BVH builder.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. The empty box has Min at +Inf
// and Max at -Inf on every axis; Fit/Union treat it as the identity of
// the union operation.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Empty returns the sentinel empty box.
func Empty() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// FromPoint returns the degenerate box containing exactly p.
func FromPoint(p mgl32.Vec3) AABB {
	return AABB{Min: p, Max: p}
}

// IsEmpty reports whether Min exceeds Max on any axis, as in the
// sentinel empty box. A box with zero extent (Min == Max) on an axis is
// not empty.
func (b AABB) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// FitPoint grows b to enclose p.
func (b AABB) FitPoint(p mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(b.Min.X(), p.X()), min32(b.Min.Y(), p.Y()), min32(b.Min.Z(), p.Z())},
		Max: mgl32.Vec3{max32(b.Max.X(), p.X()), max32(b.Max.Y(), p.Y()), max32(b.Max.Z(), p.Z())},
	}
}

// Union returns the box enclosing both b and other. An empty operand is
// the identity.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{min32(b.Min.X(), other.Min.X()), min32(b.Min.Y(), other.Min.Y()), min32(b.Min.Z(), other.Min.Z())},
		Max: mgl32.Vec3{max32(b.Max.X(), other.Max.X()), max32(b.Max.Y(), other.Max.Y()), max32(b.Max.Z(), other.Max.Z())},
	}
}

// Intersection returns the overlap of b and other, or an empty box when
// they are disjoint on any axis.
func (b AABB) Intersection(other AABB) AABB {
	result := AABB{
		Min: mgl32.Vec3{max32(b.Min.X(), other.Min.X()), max32(b.Min.Y(), other.Min.Y()), max32(b.Min.Z(), other.Min.Z())},
		Max: mgl32.Vec3{min32(b.Max.X(), other.Max.X()), min32(b.Max.Y(), other.Max.Y()), min32(b.Max.Z(), other.Max.Z())},
	}
	if result.IsEmpty() {
		return Empty()
	}
	return result
}

// Intersects reports whether b and other overlap on all three axes.
func (b AABB) Intersects(other AABB) bool {
	return b.Min.X() <= other.Max.X() && other.Min.X() <= b.Max.X() &&
		b.Min.Y() <= other.Max.Y() && other.Min.Y() <= b.Max.Y() &&
		b.Min.Z() <= other.Max.Z() && other.Min.Z() <= b.Max.Z()
}

// ContainsPoint reports inclusive containment of p.
func (b AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// ContainsBox reports whether b fully covers other.
func (b AABB) ContainsBox(other AABB) bool {
	return b.ContainsPoint(other.Min) && b.ContainsPoint(other.Max)
}

// Center returns the box's midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box's per-axis extent.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Axis returns the component of v named by axis (0=X, 1=Y, 2=Z).
func Axis(v mgl32.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X()
	case 1:
		return v.Y()
	default:
		return v.Z()
	}
}

// WithAxis returns a copy of v with component axis replaced by val.
func WithAxis(v mgl32.Vec3, axis int, val float32) mgl32.Vec3 {
	switch axis {
	case 0:
		v[0] = val
	case 1:
		v[1] = val
	default:
		v[2] = val
	}
	return v
}

// SurfaceArea computes 2*(dx*dy + dy*dz + dz*dx). Negative extents
// (from an empty box) are clamped to zero so an empty box reports zero
// area instead of a nonsensical negative value.
func (b AABB) SurfaceArea() float32 {
	size := b.Size()
	dx, dy, dz := max32(size.X(), 0), max32(size.Y(), 0), max32(size.Z(), 0)
	return 2 * (dx*dy + dy*dz + dz*dx)
}

// LongestAxis returns the axis (0, 1 or 2) with the greatest extent.
func (b AABB) LongestAxis() int {
	size := b.Size()
	axis := 0
	longest := size.X()
	if size.Y() > longest {
		axis, longest = 1, size.Y()
	}
	if size.Z() > longest {
		axis = 2
	}
	return axis
}

// Corners returns the 8 corners of the box, used by the top-level
// builder to transform a sub-BVH root's bounds into world space.
func (b AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

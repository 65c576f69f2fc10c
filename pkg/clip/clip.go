// Package clip implements Sutherland-Hodgman clipping of a triangle's
// convex hull against an axis-aligned box, used by the spatial-split
// builder to compute tight per-bin bounds.
package clip

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mathijsteam/bvhforge/pkg/geom"
)

// maxPolygonVerts bounds the clip polygon: it starts at 3 vertices and
// each of the 6 half-space passes can add at most one new vertex.
const maxPolygonVerts = 11

// polygon is a small inline vertex buffer, avoiding a heap allocation
// per triangle per bin during spatial binning.
type polygon struct {
	verts [maxPolygonVerts]mgl32.Vec3
	n     int
}

func (p *polygon) push(v mgl32.Vec3) {
	p.verts[p.n] = v
	p.n++
}

// Triangle clips the triangle (v1, v2, v3) against box and returns the
// tight AABB of the surviving convex polygon. ok is false when fewer
// than 3 vertices remain after clipping (the triangle does not
// intersect the box, or the clip degenerated numerically).
func Triangle(v1, v2, v3 mgl32.Vec3, box geom.AABB) (bounds geom.AABB, ok bool) {
	var cur polygon
	cur.push(v1)
	cur.push(v2)
	cur.push(v3)

	for axis := 0; axis < 3; axis++ {
		cur = clipHalfSpace(cur, axis, geom.Axis(box.Min, axis), true)
		if cur.n == 0 {
			return geom.Empty(), false
		}
		cur = clipHalfSpace(cur, axis, geom.Axis(box.Max, axis), false)
		if cur.n == 0 {
			return geom.Empty(), false
		}
	}

	if cur.n < 3 {
		return geom.Empty(), false
	}

	bounds = geom.Empty()
	for i := 0; i < cur.n; i++ {
		bounds = bounds.FitPoint(cur.verts[i])
	}
	return bounds, true
}

// clipHalfSpace clips poly against a single axis-aligned half-space:
// "coordinate >= planePos" when minSide, else "coordinate <= planePos".
// Each new edge-plane intersection point is snapped onto the plane to
// guard against numerical drift producing out-of-bounds coordinates.
func clipHalfSpace(poly polygon, axis int, planePos float32, minSide bool) polygon {
	var out polygon
	if poly.n == 0 {
		return out
	}

	inside := func(v mgl32.Vec3) bool {
		c := geom.Axis(v, axis)
		if minSide {
			return c >= planePos
		}
		return c <= planePos
	}

	for i := 0; i < poly.n; i++ {
		prev := poly.verts[(i+poly.n-1)%poly.n]
		curr := poly.verts[i]
		prevIn := inside(prev)
		currIn := inside(curr)

		if prevIn {
			out.push(prev)
		}
		if prevIn != currIn {
			if v, ok := planeIntersection(prev, curr, axis, planePos); ok {
				v = geom.WithAxis(v, axis, planePos)
				out.push(v)
			}
		}
	}

	return out
}

// planeIntersection solves for the point where edge (a -> b) crosses
// the axis-aligned plane coordinate[axis] == planePos. ok is false when
// the edge is parallel to the plane (no new vertex is contributed).
func planeIntersection(a, b mgl32.Vec3, axis int, planePos float32) (mgl32.Vec3, bool) {
	av, bv := geom.Axis(a, axis), geom.Axis(b, axis)
	denom := bv - av
	if denom == 0 {
		return mgl32.Vec3{}, false
	}
	t := (planePos - av) / denom
	if t < 0 || t > 1 {
		return mgl32.Vec3{}, false
	}
	return a.Add(b.Sub(a).Mul(t)), true
}

// Package prim builds the primitive reference set the BVH builders
// operate on: one bounds-and-index record per triangle, duplicated
// with tighter bounds wherever a spatial split chooses to split a
// reference instead of unsplitting it.
package prim

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// Ref is a single primitive reference: the index of the source
// triangle plus the bounds this particular reference contributes to
// the hierarchy. Object splits never change Bounds; spatial splits may
// clip it to a sub-box of the original triangle, and multiple Refs may
// share the same GlobalIndex.
type Ref struct {
	GlobalIndex uint32
	Bounds      geom.AABB
}

// Centroid returns the reference's centroid, used by both the object
// binner (to pick a bin) and the object partition step.
func (r Ref) Centroid() mgl32.Vec3 {
	return r.Bounds.Center()
}

// FromMesh builds one Ref per triangle in triangles, bounds computed
// from the triangle's three vertex positions. The returned slice is
// indexed identically to triangles; GlobalIndex records that original
// position so later reordering can still recover the source triangle.
func FromMesh(vertices []mesh.Vertex, triangles []mesh.Triangle) []Ref {
	refs := make([]Ref, len(triangles))
	for i, tri := range triangles {
		positions := tri.Positions(vertices)
		bounds := geom.Empty()
		for _, p := range positions {
			bounds = bounds.FitPoint(p)
		}
		refs[i] = Ref{GlobalIndex: uint32(i), Bounds: bounds}
	}
	return refs
}

// UnionBounds returns the union of refs[lo:hi]'s bounds, or an empty
// box when the range is empty. Builders call this to compute a node's
// bounds from its primitive range.
func UnionBounds(refs []Ref, lo, hi int) geom.AABB {
	bounds := geom.Empty()
	for i := lo; i < hi; i++ {
		bounds = bounds.Union(refs[i].Bounds)
	}
	return bounds
}

// CentroidBounds returns the union of refs[lo:hi]'s centroids. The
// builders in pkg/bvh do not call it: they pick bin placement from a
// node's full bounds.
func CentroidBounds(refs []Ref, lo, hi int) geom.AABB {
	bounds := geom.Empty()
	for i := lo; i < hi; i++ {
		bounds = bounds.FitPoint(refs[i].Centroid())
	}
	return bounds
}

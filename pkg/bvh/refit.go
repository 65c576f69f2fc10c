package bvh

import (
	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// RefitBVH recomputes every node's bounds in place after vertex
// positions have moved, without touching topology: child indices and
// leaf triangle ranges are left exactly as they are. Triangles must be
// the same reordered array the builder produced; this is the caller's
// contract to uphold (refit never re-sorts primitives).
func RefitBVH(nodes []SubBVHNode, rootIndex uint32, vertices []mesh.Vertex, triangles []mesh.Triangle) error {
	if int(rootIndex) >= len(nodes) {
		return errMalformedf("refit root index %d out of range for %d nodes", rootIndex, len(nodes))
	}
	refitRecurse(nodes, rootIndex, vertices, triangles)
	return nil
}

func refitRecurse(nodes []SubBVHNode, nodeIndex uint32, vertices []mesh.Vertex, triangles []mesh.Triangle) geom.AABB {
	node := nodes[nodeIndex]

	var bounds geom.AABB
	if node.IsLeaf() {
		bounds = geom.Empty()
		first := node.FirstTriangleIndex()
		for i := first; i < first+node.TriangleCount; i++ {
			for _, p := range triangles[i].Positions(vertices) {
				bounds = bounds.FitPoint(p)
			}
		}
	} else {
		leftBounds := refitRecurse(nodes, node.LeftChildIndex(), vertices, triangles)
		rightBounds := refitRecurse(nodes, node.RightChildIndex(), vertices, triangles)
		bounds = leftBounds.Union(rightBounds)
	}

	node.Bounds = bounds
	nodes[nodeIndex] = node
	return bounds
}

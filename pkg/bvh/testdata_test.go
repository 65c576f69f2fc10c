package bvh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// gridMesh builds n*n non-overlapping unit triangles laid out on a
// grid, spaced well apart so a binned builder has an unambiguous
// optimal split on every axis.
func gridMesh(n int) ([]mesh.Vertex, []mesh.Triangle) {
	var vertices []mesh.Vertex
	var triangles []mesh.Triangle
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := float32(i)*10, float32(j)*10
			base := uint32(len(vertices))
			vertices = append(vertices,
				mesh.Vertex{Position: mgl32.Vec3{x, y, 0}},
				mesh.Vertex{Position: mgl32.Vec3{x + 1, y, 0}},
				mesh.Vertex{Position: mgl32.Vec3{x, y + 1, 0}},
			)
			triangles = append(triangles, mesh.Triangle{Indices: [3]uint32{base, base + 1, base + 2}})
		}
	}
	return vertices, triangles
}

// straddlingMesh builds smallCount small triangles spread along X plus
// one long, thin triangle spanning the entire X extent at the same Y —
// spec.md §8 scenario S4's shape. The small triangles alone would
// split cleanly down the middle of X; sharing their Y range means that
// axis offers no cheaper escape, so the best object split still has to
// fall on X. Wherever it falls, the long triangle's full-width bounds
// get unioned into one side, and since that side's box then contains
// the other side's box on every axis but X, the two still overlap:
// the best object split's left/right boxes have real surface-area
// overlap, giving the spatial-split path something to do.
func straddlingMesh(smallCount int) ([]mesh.Vertex, []mesh.Triangle) {
	var vertices []mesh.Vertex
	var triangles []mesh.Triangle

	for i := 0; i < smallCount; i++ {
		x := float32(i) * 10
		base := uint32(len(vertices))
		vertices = append(vertices,
			mesh.Vertex{Position: mgl32.Vec3{x, 0, 0}},
			mesh.Vertex{Position: mgl32.Vec3{x + 1, 0, 0}},
			mesh.Vertex{Position: mgl32.Vec3{x, 1, 0}},
		)
		triangles = append(triangles, mesh.Triangle{Indices: [3]uint32{base, base + 1, base + 2}})
	}

	span := float32(smallCount) * 10
	base := uint32(len(vertices))
	vertices = append(vertices,
		mesh.Vertex{Position: mgl32.Vec3{-5, 0, 0}},
		mesh.Vertex{Position: mgl32.Vec3{span + 5, 0, 0}},
		mesh.Vertex{Position: mgl32.Vec3{span / 2, 1, 0}},
	)
	triangles = append(triangles, mesh.Triangle{Indices: [3]uint32{base, base + 1, base + 2}})

	return vertices, triangles
}

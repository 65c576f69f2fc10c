package bvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/geom"
)

func TestValidatePassesOnBinnedBuild(t *testing.T) {
	vertices, triangles := gridMesh(5)
	result, err := BuildBinnedBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := Validate(result.Nodes, result.RootIndex, vertices, result.Triangles)
	if err != nil {
		t.Fatalf("expected valid build, got %v", err)
	}
	if stats.LeafCount == 0 {
		t.Fatalf("expected at least one leaf")
	}
	if stats.NodeCount != len(result.Nodes) {
		t.Fatalf("expected stats to visit every allocated node: got %d want %d", stats.NodeCount, len(result.Nodes))
	}
}

func TestValidateCatchesShrunkenLeafBounds(t *testing.T) {
	vertices, triangles := gridMesh(1)
	result, err := BuildBinnedBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := result.Nodes[result.RootIndex]
	root.Bounds = geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{0, 0, 0}}
	result.Nodes[result.RootIndex] = root

	if _, err := Validate(result.Nodes, result.RootIndex, vertices, result.Triangles); err == nil {
		t.Fatalf("expected validation to catch bounds that no longer contain the leaf's triangles")
	}
}

func TestValidateCatchesBadChildOrdering(t *testing.T) {
	vertices, triangles := gridMesh(6)
	result, err := BuildBinnedBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := result.Nodes[result.RootIndex]
	if root.IsLeaf() {
		t.Skip("root did not split, nothing to corrupt")
	}
	root.IndexUnion = result.RootIndex // left child index no longer exceeds the node's own index
	result.Nodes[result.RootIndex] = root

	if _, err := Validate(result.Nodes, result.RootIndex, vertices, result.Triangles); err == nil {
		t.Fatalf("expected validation to reject a non-increasing child index")
	}
}

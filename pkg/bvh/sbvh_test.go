package bvh

import (
	"testing"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/prim"
)

func TestBuildSpatialSplitBVHCoversAllInputTriangles(t *testing.T) {
	vertices, triangles := gridMesh(6)
	result, err := BuildSpatialSplitBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := Validate(result.Nodes, result.RootIndex, vertices, result.Triangles)
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}
	if stats.TriangleCount != len(result.Triangles) {
		t.Fatalf("stats.TriangleCount (%d) should match output triangle count (%d)", stats.TriangleCount, len(result.Triangles))
	}
	// gridMesh's triangles are disjoint and spaced well apart, so every
	// object split's left/right boxes are disjoint too: overlapAlpha is
	// exactly 0 and the spatial path never fires, leaving no duplicates.
	if len(result.Triangles) != len(triangles) {
		t.Fatalf("disjoint input should produce no duplicated references, got %d output from %d input", len(result.Triangles), len(triangles))
	}
}

// TestSpatialSplitDuplicatesAStraddlingReference is spec.md §8
// scenario S4: a long triangle spanning many small ones forces the
// SBVH builder to duplicate at least one reference, while the
// object-split builder over the same input never duplicates anything.
func TestSpatialSplitDuplicatesAStraddlingReference(t *testing.T) {
	vertices, triangles := straddlingMesh(40)

	spatial, err := BuildSpatialSplitBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(spatial.Triangles) <= len(triangles) {
		t.Fatalf("expected the straddling triangle to force at least one duplicated reference: got %d output triangles from %d input, want strictly more", len(spatial.Triangles), len(triangles))
	}
	if _, err := Validate(spatial.Nodes, spatial.RootIndex, vertices, spatial.Triangles); err != nil {
		t.Fatalf("validation failed on a build with duplicated references: %v", err)
	}

	object, err := BuildBinnedBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(object.Triangles) != len(triangles) {
		t.Fatalf("object-split builder must never duplicate references, got %d output from %d input", len(object.Triangles), len(triangles))
	}
}

func TestOverlapAlphaOfDisjointBoxesIsZero(t *testing.T) {
	vertices, triangles := gridMesh(4)
	refs := prim.FromMesh(vertices, triangles)
	bounds := prim.UnionBounds(refs, 0, len(refs))

	split := findObjectSplit(bounds, refs, 0, len(refs), bvhforge.DefaultBuildConfig().ObjectBins, allAxes)
	if split == nil {
		t.Fatalf("expected a valid object split on a grid of disjoint triangles")
	}
	if alpha := overlapAlpha(split.leftBounds, split.rightBounds, bounds); alpha != 0 {
		t.Fatalf("expected disjoint left/right boxes to have zero overlap, got %f", alpha)
	}
}

func TestOverlapAlphaOfAStraddlingTriangleIsPositive(t *testing.T) {
	vertices, triangles := straddlingMesh(40)
	refs := prim.FromMesh(vertices, triangles)
	bounds := prim.UnionBounds(refs, 0, len(refs))

	split := findObjectSplit(bounds, refs, 0, len(refs), bvhforge.DefaultBuildConfig().ObjectBins, allAxes)
	if split == nil {
		t.Fatalf("expected a valid object split")
	}
	if alpha := overlapAlpha(split.leftBounds, split.rightBounds, bounds); alpha <= bvhforge.DefaultBuildConfig().Alpha {
		t.Fatalf("expected the straddling triangle to push overlapAlpha above the default threshold, got %f", alpha)
	}
}

// TestUnsplitReferencesCollapsesTheCheaperSide exercises reference
// unsplitting directly: a reference duplicated across left and right
// is collapsed entirely into whichever side is cheaper, rather than
// kept split, once collapsing lowers total SAH cost.
func TestUnsplitReferencesCollapsesTheCheaperSide(t *testing.T) {
	vertices, triangles := straddlingMesh(2)
	refs := prim.FromMesh(vertices, triangles)
	// refs[0], refs[1] are the two small triangles; refs[2] is the long
	// one straddling both.
	long := refs[2]

	left := []prim.Ref{refs[0], long}
	right := []prim.Ref{refs[1], long}

	newLeft, newRight := unsplitReferences(vertices, triangles, left, right)
	if len(newLeft)+len(newRight) != 3 {
		t.Fatalf("expected unsplitting to collapse the duplicate down to 3 total references, got %d", len(newLeft)+len(newRight))
	}

	leftHasLong, rightHasLong := false, false
	for _, r := range newLeft {
		if r.GlobalIndex == long.GlobalIndex {
			leftHasLong = true
		}
	}
	for _, r := range newRight {
		if r.GlobalIndex == long.GlobalIndex {
			rightHasLong = true
		}
	}
	if leftHasLong == rightHasLong {
		t.Fatalf("expected the straddling reference to end up on exactly one side, left=%v right=%v", leftHasLong, rightHasLong)
	}
}

func TestSpatialBuildOnSingleTriangleIsLeaf(t *testing.T) {
	vertices, triangles := gridMesh(1)
	result, err := BuildSpatialSplitBVH(vertices, triangles, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := result.Nodes[result.RootIndex]
	if !root.IsLeaf() {
		t.Fatalf("expected single-triangle mesh to produce a leaf root")
	}
}

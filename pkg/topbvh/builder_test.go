package topbvh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

func leafNode(bounds geom.AABB, meshID mesh.MeshID) *SceneNode {
	return &SceneNode{
		Transform:   NewTransform(),
		MeshID:      &meshID,
		LocalBounds: bounds,
	}
}

func TestSingleInstanceIdentityTransformPreservesBounds(t *testing.T) {
	bounds := geom.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	id := mesh.NewMeshID()
	root := leafNode(bounds, id)

	result, err := BuildTopBVH(root, map[mesh.MeshID]uint32{id: 0}, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Nodes) != 1 {
		t.Fatalf("expected exactly one node for a single instance, got %d", len(result.Nodes))
	}
	leaf := result.Nodes[result.RootIndex]
	if !leaf.IsLeaf() {
		t.Fatalf("expected the sole node to be a leaf")
	}
	if leaf.Bounds != bounds {
		t.Fatalf("expected identity transform to preserve bounds exactly: got %+v want %+v", leaf.Bounds, bounds)
	}
}

func TestMultipleInstancesMergeIntoATreeCoveringAllLeaves(t *testing.T) {
	idA, idB, idC := mesh.NewMeshID(), mesh.NewMeshID(), mesh.NewMeshID()
	root := &SceneNode{Transform: NewTransform()}
	root.AddChild(leafNode(geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}, idA))
	root.AddChild(leafNode(geom.AABB{Min: mgl32.Vec3{10, 10, 10}, Max: mgl32.Vec3{11, 11, 11}}, idB))
	root.AddChild(leafNode(geom.AABB{Min: mgl32.Vec3{20, 20, 20}, Max: mgl32.Vec3{21, 21, 21}}, idC))

	offsets := map[mesh.MeshID]uint32{idA: 0, idB: 100, idC: 200}
	result, err := BuildTopBVH(root, offsets, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Nodes) != 5 {
		t.Fatalf("expected 3 leaves + 2 interior merges, got %d nodes", len(result.Nodes))
	}

	top := result.Nodes[result.RootIndex]
	if top.IsLeaf() {
		t.Fatalf("expected the root of 3 instances to be an interior node")
	}
	want := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{21, 21, 21}}
	if top.Bounds != want {
		t.Fatalf("expected root bounds to cover every instance: got %+v want %+v", top.Bounds, want)
	}

	leafCount := 0
	for _, n := range result.Nodes {
		if n.IsLeaf() {
			leafCount++
		}
	}
	if leafCount != 3 {
		t.Fatalf("expected 3 leaves, got %d", leafCount)
	}
}

func TestInternalGroupingNodesAreSkipped(t *testing.T) {
	id := mesh.NewMeshID()
	root := &SceneNode{Transform: NewTransform()}
	group := root.AddChild(&SceneNode{Transform: NewTransform()})
	group.AddChild(leafNode(geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}, id))

	result, err := BuildTopBVH(root, map[mesh.MeshID]uint32{id: 0}, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Nodes) != 1 {
		t.Fatalf("expected grouping nodes with no mesh to contribute no node: got %d nodes", len(result.Nodes))
	}
}

func TestUnknownMeshIDIsRejected(t *testing.T) {
	root := leafNode(geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}, mesh.NewMeshID())

	if _, err := BuildTopBVH(root, map[mesh.MeshID]uint32{}, bvhforge.DefaultBuildConfig()); err == nil {
		t.Fatalf("expected an error when meshBvhOffsets has no entry for the instance's mesh")
	}
}

func TestEmptySceneProducesNoNodes(t *testing.T) {
	root := &SceneNode{Transform: NewTransform()}

	result, err := BuildTopBVH(root, map[mesh.MeshID]uint32{}, bvhforge.DefaultBuildConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Nodes) != 0 {
		t.Fatalf("expected no nodes for a scene with no mesh instances, got %d", len(result.Nodes))
	}
}

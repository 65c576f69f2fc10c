package topbvh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// Result bundles a finished top-level BVH: its node array and the
// index of the root, which the builder always leaves at the end of
// the array (the last merge produces it).
type Result struct {
	RootIndex uint32
	Nodes     []Node
}

// BuildTopBVH walks the instance scene graph rooted at root, creates
// one leaf per mesh instance (transforming that mesh's sub-BVH root
// bounds into world space), and merges the leaves bottom-up with a
// greedy agglomerative clustering pass (Walter et al., 2008).
func BuildTopBVH(root *SceneNode, meshBvhOffsets map[mesh.MeshID]uint32, cfg bvhforge.BuildConfig) (Result, error) {
	log := cfg.ResolveLogger()

	var nodes []Node
	var list []uint32

	type stackEntry struct {
		node         *SceneNode
		transform    mgl32.Mat4
		invTransform mgl32.Mat4
	}
	stack := []stackEntry{{node: root, transform: mgl32.Ident4(), invTransform: mgl32.Ident4()}}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		worldTransform := entry.transform.Mul4(entry.node.Transform.Matrix())
		// inv(parent*local) = inv(local) * inv(parent)
		invWorldTransform := entry.node.Transform.InverseMatrix().Mul4(entry.invTransform)
		for _, child := range entry.node.Children {
			stack = append(stack, stackEntry{node: child, transform: worldTransform, invTransform: invWorldTransform})
		}

		if entry.node.MeshID == nil {
			continue
		}

		offset, ok := meshBvhOffsets[*entry.node.MeshID]
		if !ok {
			return Result{}, bvhforge.ErrMalformedInput
		}

		nodeIndex := uint32(len(nodes))
		nodes = append(nodes, Node{
			Bounds:       transformAABB(entry.node.LocalBounds, worldTransform),
			InvTransform: invWorldTransform,
			IndexUnion:   entry.node.SubBvhRootID + offset,
			IsLeafFlag:   1,
		})
		list = append(list, nodeIndex)
	}

	if len(list) == 0 {
		return Result{}, nil
	}
	if len(list) == 1 {
		log.Debugf("top bvh build: single instance, no merge pass needed")
		return Result{RootIndex: list[0], Nodes: nodes}, nil
	}

	instanceCount := len(list)
	nodeA := list[len(list)-1]
	nodeB := findBestMatch(nodes, list, nodeA)
	for len(list) > 1 {
		nodeC := findBestMatch(nodes, list, nodeB)
		if nodeA == nodeC {
			list = removeValue(list, nodeA)
			list = removeValue(list, nodeB)

			mergedIndex := uint32(len(nodes))
			nodes = append(nodes, mergeNodes(nodeA, nodes[nodeA], nodeB, nodes[nodeB]))
			nodeA = mergedIndex

			list = append(list, nodeA)
			nodeB = findBestMatch(nodes, list, nodeA)
		} else {
			nodeA = nodeB
			nodeB = nodeC
		}
	}

	log.Debugf("top bvh build: %d instances, %d nodes", instanceCount, len(nodes))
	return Result{RootIndex: uint32(len(nodes) - 1), Nodes: nodes}, nil
}

// findBestMatch returns the member of candidates (excluding thisNode)
// that minimizes the combined-bounds surface-area proxy with
// allNodes[thisNode].
func findBestMatch(allNodes []Node, candidates []uint32, thisNode uint32) uint32 {
	best := candidates[0]
	bestArea := float32(-1)
	for _, candidate := range candidates {
		if candidate == thisNode {
			continue
		}
		area := combinedSurfaceArea(allNodes[thisNode], allNodes[candidate])
		if bestArea < 0 || area < bestArea {
			bestArea = area
			best = candidate
		}
	}
	return best
}

func mergeNodes(aIndex uint32, a Node, bIndex uint32, b Node) Node {
	return Node{
		Bounds:        a.Bounds.Union(b.Bounds),
		InvTransform:  mgl32.Ident4(),
		IndexUnion:    aIndex,
		RightChildIdx: bIndex,
		IsLeafFlag:    0,
	}
}

func removeValue(list []uint32, value uint32) []uint32 {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// transformAABB transforms bounds by enumerating its 8 corners and
// fitting a fresh AABB around their transformed positions, the
// standard technique for carrying an axis-aligned box through an
// arbitrary affine transform without over- or under-estimating it.
func transformAABB(bounds geom.AABB, transform mgl32.Mat4) geom.AABB {
	out := geom.Empty()
	for _, corner := range bounds.Corners() {
		transformed := transform.Mul4x1(corner.Vec4(1)).Vec3()
		out = out.FitPoint(transformed)
	}
	return out
}

package bvh

import (
	"math"

	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
	"github.com/mathijsteam/bvhforge/pkg/prim"
)

// Result bundles a finished sub-BVH build: the root node index, the
// triangle array reordered (or, for the SBVH builder, expanded with
// duplicates) to match each leaf's contiguous primitive range, and the
// node array itself.
type Result struct {
	RootIndex uint32
	Triangles []mesh.Triangle
	Nodes     []SubBVHNode
}

var allAxes = []int{0, 1, 2}

// BuildBinnedBVH constructs a sub-BVH using the binned object-split
// SAH heuristic, scanning all three axes at every interior node.
func BuildBinnedBVH(vertices []mesh.Vertex, triangles []mesh.Triangle, cfg bvhforge.BuildConfig) (Result, error) {
	return buildBinned(vertices, triangles, cfg, allAxes)
}

// BuildBinnedFastBVH is semantically identical to BuildBinnedBVH except
// it only considers each node's single widest axis, trading build
// quality for roughly a third of the binning work.
func BuildBinnedFastBVH(vertices []mesh.Vertex, triangles []mesh.Triangle, cfg bvhforge.BuildConfig) (Result, error) {
	return buildBinned(vertices, triangles, cfg, nil)
}

func buildBinned(vertices []mesh.Vertex, triangles []mesh.Triangle, cfg bvhforge.BuildConfig, fixedAxes []int) (Result, error) {
	if err := validateMeshInput(vertices, triangles); err != nil {
		return Result{}, err
	}
	log := cfg.ResolveLogger()

	refs := prim.FromMesh(vertices, triangles)
	arena := NewArena(2 * len(refs))
	maxDepth := depthCap(len(refs))

	rootIndex := arena.AllocatePair()
	bounds := prim.UnionBounds(refs, 0, len(refs))
	arena.Set(rootIndex, SubBVHNode{Bounds: bounds, IndexUnion: 0, TriangleCount: uint32(len(refs))})

	subdivideBinned(arena, refs, rootIndex, cfg, fixedAxes, 0, maxDepth)

	outTriangles := reorderTriangles(triangles, refs)
	log.Debugf("binned build: %d triangles, %d nodes", len(triangles), arena.Len())
	return Result{RootIndex: rootIndex, Triangles: outTriangles, Nodes: arena.Nodes()}, nil
}

// subdivideBinned recursively splits the primitive range owned by the
// node at nodeIndex, following spec.md's termination rules: too few
// primitives, no valid split, or the best split is no better than
// leaving a leaf.
func subdivideBinned(arena *Arena, refs []prim.Ref, nodeIndex uint32, cfg bvhforge.BuildConfig, fixedAxes []int, depth, maxDepth int) {
	node := arena.Get(nodeIndex)
	lo := int(node.FirstTriangleIndex())
	hi := lo + int(node.TriangleCount)

	if node.TriangleCount < uint32(cfg.MinLeafPrims) || depth >= maxDepth {
		return
	}

	axes := fixedAxes
	if axes == nil {
		axes = []int{node.Bounds.LongestAxis()}
	}

	split := findObjectSplit(node.Bounds, refs, lo, hi, cfg.ObjectBins, axes)
	if split == nil {
		return
	}

	leafCost := float32(node.TriangleCount) * node.Bounds.SurfaceArea()
	if split.sah >= leafCost {
		return
	}

	mid := partitionObjects(refs, lo, hi, split)
	if mid == lo || mid == hi {
		// Every centroid landed on one side despite a nominal split;
		// treat as no valid split rather than recursing forever.
		return
	}

	leftIndex := arena.AllocatePair()
	node = arena.Get(nodeIndex) // re-resolve: AllocatePair may have reallocated
	node.IndexUnion = leftIndex
	node.TriangleCount = 0
	arena.Set(nodeIndex, node)

	arena.Set(leftIndex, SubBVHNode{
		Bounds:        split.leftBounds,
		IndexUnion:    uint32(lo),
		TriangleCount: uint32(mid - lo),
	})
	arena.Set(leftIndex+1, SubBVHNode{
		Bounds:        split.rightBounds,
		IndexUnion:    uint32(mid),
		TriangleCount: uint32(hi - mid),
	})

	subdivideBinned(arena, refs, leftIndex, cfg, fixedAxes, depth+1, maxDepth)
	subdivideBinned(arena, refs, leftIndex+1, cfg, fixedAxes, depth+1, maxDepth)
}

// depthCap returns the safety-stop recursion depth: ceil(log2) of the
// primitive count plus two levels of headroom, or 1 for a single
// primitive.
func depthCap(primCount int) int {
	if primCount <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(primCount)))) + 2
}

// reorderTriangles returns a new triangle slice permuted to match the
// order refs now holds after partitioning (object builders never
// duplicate a reference, so this is a true permutation).
func reorderTriangles(triangles []mesh.Triangle, refs []prim.Ref) []mesh.Triangle {
	out := make([]mesh.Triangle, len(refs))
	for i, r := range refs {
		out[i] = triangles[r.GlobalIndex]
	}
	return out
}

func validateMeshInput(vertices []mesh.Vertex, triangles []mesh.Triangle) error {
	if len(triangles) == 0 {
		return errMalformedf("no triangles in input")
	}
	for i, t := range triangles {
		if !t.ValidIndices(len(vertices)) {
			return errMalformedf("triangle %d references an out-of-range vertex index", i)
		}
	}
	return nil
}

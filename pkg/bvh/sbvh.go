package bvh

import (
	"github.com/mathijsteam/bvhforge"
	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
	"github.com/mathijsteam/bvhforge/pkg/prim"
)

// BuildSpatialSplitBVH constructs a sub-BVH using the full SBVH
// algorithm: at every interior node, the best binned object split and
// the best binned spatial split both compete, with a surface-area
// overlap test deciding whether the spatial split is even considered,
// and reference unsplitting cleaning up unnecessary duplication
// afterwards.
func BuildSpatialSplitBVH(vertices []mesh.Vertex, triangles []mesh.Triangle, cfg bvhforge.BuildConfig) (Result, error) {
	if err := validateMeshInput(vertices, triangles); err != nil {
		return Result{}, err
	}
	log := cfg.ResolveLogger()

	refs := prim.FromMesh(vertices, triangles)
	arena := NewArena(2 * len(refs))
	maxDepth := depthCap(len(refs)) + 4 // spatial splits duplicate references, so allow a little extra headroom

	rootIndex := arena.AllocatePair()
	bounds := prim.UnionBounds(refs, 0, len(refs))
	arena.Set(rootIndex, SubBVHNode{Bounds: bounds, IndexUnion: 0, TriangleCount: uint32(len(refs))})

	b := &sbvhBuilder{
		vertices:  vertices,
		triangles: triangles,
		arena:     arena,
		cfg:       cfg,
	}
	b.subdivide(rootIndex, refs, 0, maxDepth)

	outTriangles := make([]mesh.Triangle, len(b.refs))
	for i, r := range b.refs {
		outTriangles[i] = triangles[r.GlobalIndex]
	}
	log.Debugf("sbvh build: %d input triangles, %d references, %d nodes", len(triangles), len(b.refs), arena.Len())

	return Result{RootIndex: rootIndex, Triangles: outTriangles, Nodes: arena.Nodes()}, nil
}

// sbvhBuilder threads the growing reference array through recursion.
// Unlike the binned builder, refs grows (spatial splits duplicate
// references), so it cannot be partitioned in place: refs holds every
// reference that has been placed into a node's contiguous output
// range so far.
type sbvhBuilder struct {
	vertices  []mesh.Vertex
	triangles []mesh.Triangle
	arena     *Arena
	cfg       bvhforge.BuildConfig
	refs      []prim.Ref
}

func (b *sbvhBuilder) subdivide(nodeIndex uint32, nodeRefs []prim.Ref, depth, maxDepth int) {
	node := b.arena.Get(nodeIndex)

	if len(nodeRefs) < b.cfg.MinLeafPrims || depth >= maxDepth {
		b.makeLeaf(nodeIndex, nodeRefs)
		return
	}

	objSplit := findObjectSplit(node.Bounds, nodeRefs, 0, len(nodeRefs), b.cfg.ObjectBins, allAxes)
	leafCost := b.cfg.CostIntersection * float32(len(nodeRefs)) * node.Bounds.SurfaceArea()

	useSpatial := false
	var spSplit *spatialSplit
	if objSplit != nil && overlapAlpha(objSplit.leftBounds, objSplit.rightBounds, node.Bounds) > b.cfg.Alpha {
		spSplit = findSpatialSplit(node.Bounds, b.vertices, b.triangles, nodeRefs, 0, len(nodeRefs), b.cfg.SpatialBins, allAxes)
	}

	var bestCost float32
	switch {
	case objSplit == nil && spSplit == nil:
		b.makeLeaf(nodeIndex, nodeRefs)
		return
	case objSplit == nil:
		useSpatial = true
		bestCost = spSplit.sah
	case spSplit == nil:
		bestCost = objSplit.sah
	case spSplit.sah < objSplit.sah:
		useSpatial = true
		bestCost = spSplit.sah
	default:
		bestCost = objSplit.sah
	}

	if b.cfg.CostTraversal+b.cfg.CostIntersection*bestCost >= leafCost {
		b.makeLeaf(nodeIndex, nodeRefs)
		return
	}

	var left, right []prim.Ref
	if useSpatial {
		left, right = partitionSpatial(b.vertices, b.triangles, nodeRefs, 0, len(nodeRefs), spSplit)
		left, right = unsplitReferences(b.vertices, b.triangles, left, right)
	} else {
		mid := partitionObjects(nodeRefs, 0, len(nodeRefs), objSplit)
		left = append([]prim.Ref(nil), nodeRefs[:mid]...)
		right = append([]prim.Ref(nil), nodeRefs[mid:]...)
	}

	if len(left) == 0 || len(right) == 0 {
		b.makeLeaf(nodeIndex, nodeRefs)
		return
	}

	leftIndex := b.arena.AllocatePair()
	node = b.arena.Get(nodeIndex)
	node.IndexUnion = leftIndex
	node.TriangleCount = 0
	b.arena.Set(nodeIndex, node)

	b.arena.Set(leftIndex, SubBVHNode{Bounds: prim.UnionBounds(left, 0, len(left))})
	b.arena.Set(leftIndex+1, SubBVHNode{Bounds: prim.UnionBounds(right, 0, len(right))})

	b.subdivide(leftIndex, left, depth+1, maxDepth)
	b.subdivide(leftIndex+1, right, depth+1, maxDepth)
}

// makeLeaf appends nodeRefs to the builder's flattened output range and
// records the leaf's (firstTriangleIndex, triangleCount) window.
func (b *sbvhBuilder) makeLeaf(nodeIndex uint32, nodeRefs []prim.Ref) {
	first := uint32(len(b.refs))
	b.refs = append(b.refs, nodeRefs...)

	node := b.arena.Get(nodeIndex)
	node.IndexUnion = first
	node.TriangleCount = uint32(len(nodeRefs))
	if node.Bounds.IsEmpty() {
		node.Bounds = prim.UnionBounds(nodeRefs, 0, len(nodeRefs))
	}
	b.arena.Set(nodeIndex, node)
}

// overlapAlpha computes SA(leftBounds ∩ rightBounds) / SA(rootBounds),
// the surface-area overlap test spec.md §4.4 uses to gate whether a
// spatial split is worth evaluating at all.
func overlapAlpha(left, right, root geom.AABB) float32 {
	rootSA := root.SurfaceArea()
	if rootSA == 0 {
		return 0
	}
	return left.Intersection(right).SurfaceArea() / rootSA
}

// unsplitReferences implements reference unsplitting: for every
// triangle duplicated across left and right, compare the cost of
// keeping the split against collapsing the duplicate entirely into
// whichever side is cheaper, and keep the minimum.
func unsplitReferences(vertices []mesh.Vertex, triangles []mesh.Triangle, left, right []prim.Ref) ([]prim.Ref, []prim.Ref) {
	leftBounds := prim.UnionBounds(left, 0, len(left))
	rightBounds := prim.UnionBounds(right, 0, len(right))

	rightIndex := make(map[uint32]int, len(right))
	for i, r := range right {
		rightIndex[r.GlobalIndex] = i
	}

	keepLeft := make([]bool, len(left))
	for i := range keepLeft {
		keepLeft[i] = true
	}
	keepRight := make([]bool, len(right))
	for i := range keepRight {
		keepRight[i] = true
	}

	for i, lref := range left {
		j, duplicated := rightIndex[lref.GlobalIndex]
		if !duplicated {
			continue
		}

		tri := triangles[lref.GlobalIndex]
		positions := tri.Positions(vertices)
		fullBounds := geom.Empty()
		for _, p := range positions {
			fullBounds = fullBounds.FitPoint(p)
		}

		// costUnsplitLeft keeps the whole reference in left (dropping it
		// from right, so right's count shrinks by one); costUnsplitRight
		// is the mirror image.
		leftCount, rightCount := float32(len(left)), float32(len(right))
		costSplit := rightBounds.SurfaceArea()*rightCount + leftBounds.SurfaceArea()*leftCount
		costUnsplitLeft := leftBounds.Union(fullBounds).SurfaceArea()*leftCount + rightBounds.SurfaceArea()*(rightCount-1)
		costUnsplitRight := rightBounds.Union(fullBounds).SurfaceArea()*rightCount + leftBounds.SurfaceArea()*(leftCount-1)

		switch {
		case costSplit <= costUnsplitLeft && costSplit <= costUnsplitRight:
			// keep the split as is
		case costUnsplitLeft < costUnsplitRight:
			keepRight[j] = false
			left[i] = prim.Ref{GlobalIndex: lref.GlobalIndex, Bounds: fullBounds}
			leftBounds = leftBounds.Union(fullBounds)
		default:
			keepLeft[i] = false
			right[j] = prim.Ref{GlobalIndex: lref.GlobalIndex, Bounds: fullBounds}
			rightBounds = rightBounds.Union(fullBounds)
		}
	}

	return filterRefs(left, keepLeft), filterRefs(right, keepRight)
}

func filterRefs(refs []prim.Ref, keep []bool) []prim.Ref {
	out := make([]prim.Ref, 0, len(refs))
	for i, r := range refs {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

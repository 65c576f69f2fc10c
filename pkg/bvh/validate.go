package bvh

import (
	"fmt"

	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// Stats carries build-quality diagnostics recovered from the original
// BvhTester's console report: node/leaf counts, recursion depth, and a
// triangle-per-leaf histogram. Diagnostic only — it never substitutes
// for Validate's correctness checks.
type Stats struct {
	NodeCount           int
	LeafCount           int
	MaxDepth            int
	TriangleCount       int
	MaxTrianglesPerLeaf int

	// LeafHistogram buckets leaf triangle counts into 10 inverse-square
	// steps (MaxTrianglesPerLeaf/i² for i = 1..10), matching the original
	// tool's quadratic bucket spacing ("< N: count").
	LeafHistogram []HistogramBucket
}

// HistogramBucket is a single "fewer than Threshold triangles" bucket.
type HistogramBucket struct {
	Threshold int
	Count     int
}

// Validate walks a built sub-BVH from rootIndex and returns the first
// violation found as an error: interior bounds that do not contain both
// children, leaf bounds that do not contain every vertex of their
// triangles, a child index that does not exceed its parent's, an
// out-of-range index, or a node reached twice. It does not check that
// the walk reaches every node in the array; Stats.NodeCount reports how
// many it reached. It also returns build diagnostics gathered during
// the same post-order walk.
func Validate(nodes []SubBVHNode, rootIndex uint32, vertices []mesh.Vertex, triangles []mesh.Triangle) (Stats, error) {
	v := &validator{nodes: nodes, vertices: vertices, triangles: triangles, visited: make(map[uint32]bool)}
	depth, err := v.walk(rootIndex, rootIndex)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		NodeCount:           len(v.visited),
		LeafCount:           v.leafCount,
		MaxDepth:            depth,
		TriangleCount:       v.triangleCount,
		MaxTrianglesPerLeaf: v.maxTrianglesPerLeaf,
		LeafHistogram:       buildHistogram(v.leafTriangleCounts, v.maxTrianglesPerLeaf),
	}
	return stats, nil
}

type validator struct {
	nodes     []SubBVHNode
	vertices  []mesh.Vertex
	triangles []mesh.Triangle
	visited   map[uint32]bool

	leafCount           int
	triangleCount       int
	maxTrianglesPerLeaf int
	leafTriangleCounts  []int
}

func (v *validator) walk(nodeIndex, parentIndex uint32) (int, error) {
	if int(nodeIndex) >= len(v.nodes) {
		return 0, fmt.Errorf("bvhforge: node index %d out of range (%d nodes)", nodeIndex, len(v.nodes))
	}
	if v.visited[nodeIndex] {
		return 0, fmt.Errorf("bvhforge: node %d visited more than once (cycle or aliasing)", nodeIndex)
	}
	v.visited[nodeIndex] = true

	node := v.nodes[nodeIndex]

	if node.IsLeaf() {
		first := node.FirstTriangleIndex()
		for i := first; i < first+node.TriangleCount; i++ {
			if int(i) >= len(v.triangles) {
				return 0, fmt.Errorf("bvhforge: leaf %d triangle range exceeds triangle array", nodeIndex)
			}
			for _, p := range v.triangles[i].Positions(v.vertices) {
				if !node.Bounds.ContainsPoint(p) {
					return 0, fmt.Errorf("bvhforge: leaf %d bounds do not contain triangle %d vertex", nodeIndex, i)
				}
			}
		}
		v.leafCount++
		v.triangleCount += int(node.TriangleCount)
		if int(node.TriangleCount) > v.maxTrianglesPerLeaf {
			v.maxTrianglesPerLeaf = int(node.TriangleCount)
		}
		v.leafTriangleCounts = append(v.leafTriangleCounts, int(node.TriangleCount))
		return 1, nil
	}

	left := node.LeftChildIndex()
	right := node.RightChildIndex()
	if left <= nodeIndex {
		return 0, fmt.Errorf("bvhforge: node %d left child index %d does not strictly increase", nodeIndex, left)
	}
	if right != left+1 {
		return 0, fmt.Errorf("bvhforge: node %d right child index %d is not leftChildIndex+1", nodeIndex, right)
	}
	if int(right) >= len(v.nodes) {
		return 0, fmt.Errorf("bvhforge: node %d right child index %d out of range", nodeIndex, right)
	}

	leftDepth, err := v.walk(left, nodeIndex)
	if err != nil {
		return 0, err
	}
	rightDepth, err := v.walk(right, nodeIndex)
	if err != nil {
		return 0, err
	}

	if !node.Bounds.ContainsBox(v.nodes[left].Bounds) || !node.Bounds.ContainsBox(v.nodes[right].Bounds) {
		return 0, fmt.Errorf("bvhforge: node %d bounds do not contain both children", nodeIndex)
	}

	depth := leftDepth
	if rightDepth > depth {
		depth = rightDepth
	}
	return depth + 1, nil
}

// buildHistogram reproduces the original tool's quadratic bucket
// spacing: 10 buckets, bucket i counts leaves with fewer than
// (max/i)^2/max = max/i² triangles, concentrating resolution near the low end
// where most leaves live.
func buildHistogram(leafCounts []int, max int) []HistogramBucket {
	if max == 0 {
		return nil
	}
	buckets := make([]HistogramBucket, 10)
	for i := 1; i <= 10; i++ {
		stepLin := float64(max) / float64(i)
		stepQuad := (stepLin / float64(max)) * (stepLin / float64(max)) * float64(max)
		threshold := int(stepQuad)

		count := 0
		for _, c := range leafCounts {
			if c < threshold {
				count++
			}
		}
		buckets[i-1] = HistogramBucket{Threshold: threshold, Count: count}
	}
	return buckets
}

// Package topbvh assembles a two-level hierarchy over a scene graph of
// mesh instances: each leaf refits a mesh's sub-BVH root bounds under
// its instance transform, and a greedy agglomerative pass merges
// leaves bottom-up into a single top-level tree.
package topbvh

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge/pkg/geom"
)

// nodeByteSize is the fixed layout size: 6 bounds floats + 16 matrix
// floats + 4 index/flag u32s, 4 bytes each.
const nodeByteSize = 6*4 + 16*4 + 4*4

// Node is a single top-level BVH node. Leaves carry the inverse
// instance transform the traversal kernel uses to bring a ray into
// mesh-local space, plus the offset of the instance's sub-BVH root in
// the shared sub-BVH node buffer. Interior nodes carry an identity
// transform and both child indices.
type Node struct {
	Bounds        geom.AABB
	InvTransform  mgl32.Mat4
	IndexUnion    uint32 // leftChildIndex, or subBvhNode when IsLeaf
	RightChildIdx uint32 // unused when IsLeaf
	IsLeafFlag    uint32
}

// IsLeaf reports whether n is a leaf.
func (n Node) IsLeaf() bool {
	return n.IsLeafFlag != 0
}

// SubBvhNode returns IndexUnion under the leaf interpretation: the
// index of this instance's sub-BVH root in the shared node buffer.
func (n Node) SubBvhNode() uint32 {
	return n.IndexUnion
}

// LeftChildIndex returns IndexUnion under the interior interpretation.
func (n Node) LeftChildIndex() uint32 {
	return n.IndexUnion
}

// ToBytes serializes n into the fixed GPU-consumable layout: bounds
// (6xf32), invTransform (16xf32), indexUnion (u32), rightChildIndex
// (u32), isLeaf (u32), padding (u32).
func (n Node) ToBytes() []byte {
	buf := make([]byte, nodeByteSize)
	off := 0
	putVec3(buf[off:], n.Bounds.Min)
	off += 12
	putVec3(buf[off:], n.Bounds.Max)
	off += 12
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(n.InvTransform.At(row, col)))
			off += 4
		}
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], n.IndexUnion)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], n.RightChildIdx)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], n.IsLeafFlag)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:off+4], 0)
	return buf
}

func putVec3(buf []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Z()))
}

// combinedSurfaceArea is the proxy spec.md §4.6 prescribes for
// findBestMatch: dx*dy + dy*dz + dz*dx of the union's extent, monotone
// in true surface area but without the factor of 2 (irrelevant to
// comparisons).
func combinedSurfaceArea(a, b Node) float32 {
	bounds := a.Bounds.Union(b.Bounds)
	extent := bounds.Size()
	return extent.X()*extent.Y() + extent.Y()*extent.Z() + extent.Z()*extent.X()
}

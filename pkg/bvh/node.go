// Package bvh implements the binned-SAH and spatial-split (SBVH)
// sub-BVH builders, their shared node arena, and the refit and
// validation passes that operate on a built sub-BVH.
package bvh

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge/pkg/geom"
)

// nodeByteSize is the fixed on-disk and in-memory size of a
// SubBVHNode: 6 bounds floats + 2 index/count u32s + 2 padding u32s,
// 4 bytes each (40 bytes), zero-filled to 48 to match the traversal
// kernel's expected layout.
const nodeByteSize = 48

// SubBVHNode is a single sub-BVH node. TriangleCount == 0 discriminates
// interior from leaf: a leaf has TriangleCount > 0 and IndexUnion holds
// FirstTriangleIndex; an interior node has TriangleCount == 0 and
// IndexUnion holds LeftChildIndex, with the right child mandatorily at
// LeftChildIndex+1.
type SubBVHNode struct {
	Bounds        geom.AABB
	IndexUnion    uint32
	TriangleCount uint32
	_padding      [2]uint32
}

// IsLeaf reports whether n is a leaf node.
func (n SubBVHNode) IsLeaf() bool {
	return n.TriangleCount > 0
}

// LeftChildIndex returns IndexUnion under the interior-node
// interpretation. Callers must check !IsLeaf() first.
func (n SubBVHNode) LeftChildIndex() uint32 {
	return n.IndexUnion
}

// RightChildIndex is always LeftChildIndex+1, the arena's mandatory
// sibling-pairing invariant.
func (n SubBVHNode) RightChildIndex() uint32 {
	return n.IndexUnion + 1
}

// FirstTriangleIndex returns IndexUnion under the leaf-node
// interpretation. Callers must check IsLeaf() first.
func (n SubBVHNode) FirstTriangleIndex() uint32 {
	return n.IndexUnion
}

// ToBytes serializes n into the 48-byte GPU-consumable layout:
// bounds (6xf32), indexUnion (u32), triangleCount (u32), padding (2xu32),
// followed by 8 zero bytes.
func (n SubBVHNode) ToBytes() []byte {
	buf := make([]byte, nodeByteSize)
	putVec3(buf[0:12], n.Bounds.Min)
	putVec3(buf[12:24], n.Bounds.Max)
	binary.LittleEndian.PutUint32(buf[24:28], n.IndexUnion)
	binary.LittleEndian.PutUint32(buf[28:32], n.TriangleCount)
	binary.LittleEndian.PutUint32(buf[32:36], 0)
	binary.LittleEndian.PutUint32(buf[36:40], 0)
	return buf
}

// NodeFromBytes deserializes a 48-byte buffer produced by ToBytes.
func NodeFromBytes(buf []byte) SubBVHNode {
	var n SubBVHNode
	n.Bounds.Min = getVec3(buf[0:12])
	n.Bounds.Max = getVec3(buf[12:24])
	n.IndexUnion = binary.LittleEndian.Uint32(buf[24:28])
	n.TriangleCount = binary.LittleEndian.Uint32(buf[28:32])
	return n
}

func putVec3(buf []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Z()))
}

func getVec3(buf []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
	}
}

// Package mesh holds the vertex/triangle payload types the BVH builders
// consume. Only Vertex.Position and Triangle.Indices matter for
// construction; the remaining fields are opaque cargo carried through
// unchanged.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Vertex is a single entry of an indexed vertex buffer.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Triangle indexes three vertices and carries a material reference.
// Only Indices participates in BVH construction.
type Triangle struct {
	Indices       [3]uint32
	MaterialIndex uint32
}

// MeshID names an imported mesh's triangle soup across builds and cache
// reloads.
type MeshID uuid.UUID

// NewMeshID returns a fresh random mesh identifier.
func NewMeshID() MeshID {
	return MeshID(uuid.New())
}

func (id MeshID) String() string {
	return uuid.UUID(id).String()
}

// Positions returns the triangle's three vertex positions in winding
// order.
func (t Triangle) Positions(vertices []Vertex) [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{
		vertices[t.Indices[0]].Position,
		vertices[t.Indices[1]].Position,
		vertices[t.Indices[2]].Position,
	}
}

// ValidIndices reports whether every index in t refers to a vertex
// within vertices.
func (t Triangle) ValidIndices(vertexCount int) bool {
	for _, idx := range t.Indices {
		if int(idx) >= vertexCount {
			return false
		}
	}
	return true
}

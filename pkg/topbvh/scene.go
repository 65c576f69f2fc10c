package topbvh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mathijsteam/bvhforge/pkg/geom"
	"github.com/mathijsteam/bvhforge/pkg/mesh"
)

// Transform is a position/rotation/scale instance transform, composed
// into a world matrix the same way as any other node in the scene
// graph this hierarchy sits under.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix composes t into a world matrix: M = T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

// InverseMatrix returns Matrix's inverse, built from the cheaply
// invertible T/R/S components (inv(M) = inv(S) * inv(R) * inv(T))
// rather than a general 4x4 inversion.
func (t Transform) InverseMatrix() mgl32.Mat4 {
	invScale := mgl32.Scale3D(1.0/t.Scale.X(), 1.0/t.Scale.Y(), 1.0/t.Scale.Z())
	invRotate := t.Rotation.Conjugate().Mat4()
	invTranslate := mgl32.Translate3D(-t.Position.X(), -t.Position.Y(), -t.Position.Z())
	return invScale.Mul4(invRotate).Mul4(invTranslate)
}

// SceneNode is one node of the instance scene graph BuildTopBVH walks.
// A node with a non-nil MeshID contributes a leaf; internal nodes
// (grouping nodes with no mesh) are skipped, matching spec.md §4.6.
type SceneNode struct {
	Transform    Transform
	MeshID       *mesh.MeshID
	SubBvhRootID uint32 // root node index within that mesh's sub-BVH, valid only when MeshID != nil
	LocalBounds  geom.AABB
	Children     []*SceneNode
}

// AddChild appends child to n's children and returns child, for
// convenient tree construction.
func (n *SceneNode) AddChild(child *SceneNode) *SceneNode {
	n.Children = append(n.Children, child)
	return child
}

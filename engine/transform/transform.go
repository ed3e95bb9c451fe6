// Package transform provides the value-type spatial transform attached to submitted quads and draws.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an object in the world: translation, Euler rotation in radians (applied Z, then Y, then X)
// and scale, optionally relative to a parent transform.
//
// Transform is a plain value; copies are independent. Parent is a borrowed pointer that must stay valid for as
// long as the child is used.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Parent   *Transform
}

// New creates a Transform at the origin with unit scale and applies the given options.
//
// Parameters:
//   - options: functional options to configure the transform
//
// Returns:
//   - Transform: the configured transform
func New(options ...TransformBuilderOption) Transform {
	t := Transform{Scale: mgl32.Vec3{1, 1, 1}}
	for _, opt := range options {
		opt(&t)
	}
	return t
}

// Identity returns a Transform whose Matrix is the identity matrix.
//
// Returns:
//   - Transform: the identity transform
func Identity() Transform {
	return New()
}

// LocalMatrix returns the transform's own model matrix, ignoring any parent: T * Rz * Ry * Rx * S.
//
// Returns:
//   - mgl32.Mat4: the local model matrix
func (t Transform) LocalMatrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	if t.Rotation != (mgl32.Vec3{}) {
		m = m.Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z())).
			Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
			Mul4(mgl32.HomogRotate3DX(t.Rotation.X()))
	}
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Matrix returns the model matrix resolved through the parent chain: parent.Matrix() * LocalMatrix().
//
// Returns:
//   - mgl32.Mat4: the world model matrix
func (t Transform) Matrix() mgl32.Mat4 {
	m := t.LocalMatrix()
	for p := t.Parent; p != nil; p = p.Parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the transform's origin in world space.
//
// Returns:
//   - mgl32.Vec3: the world-space position
func (t Transform) WorldPosition() mgl32.Vec3 {
	return t.Matrix().Col(3).Vec3()
}

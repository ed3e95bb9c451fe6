package transform

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestIdentity(t *testing.T) {
	if got := Identity().Matrix(); got != mgl32.Ident4() {
		t.Errorf("Identity().Matrix() = %v, want identity", got)
	}
}

func TestMatrixAppliesScaleThenTranslation(t *testing.T) {
	tr := New(WithPosition(10, 20, 0), WithScale(2, 3, 1))
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 1, 0, 1})
	want := mgl32.Vec4{12, 23, 0, 1}
	if !got.ApproxEqual(want) {
		t.Errorf("Matrix() * (1,1,0,1) = %v, want %v", got, want)
	}
}

func TestMatrixRotationZ(t *testing.T) {
	tr := New(WithRotation(0, 0, math.Pi/2))
	got := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	want := mgl32.Vec4{0, 1, 0, 1}
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > 1e-5 {
			t.Errorf("rotated point = %v, want %v", got, want)
			break
		}
	}
}

func TestMatrixResolvesParents(t *testing.T) {
	root := New(WithPosition(100, 0, 0))
	mid := New(WithPosition(0, 10, 0), WithScale(2, 2, 1), WithParent(&root))
	leaf := New(WithPosition(1, 1, 0), WithParent(&mid))

	want := mgl32.Vec3{102, 12, 0}
	if got := leaf.WorldPosition(); !got.ApproxEqual(want) {
		t.Errorf("WorldPosition() = %v, want %v", got, want)
	}

	// copies share the parent but not local state
	copied := leaf
	copied.Position = mgl32.Vec3{}
	if got := leaf.WorldPosition(); !got.ApproxEqual(want) {
		t.Errorf("original changed after editing copy: %v", got)
	}
}

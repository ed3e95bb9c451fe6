package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultCameraIsPixelOrthographic(t *testing.T) {
	c := NewCamera()
	if c.ProjectionType() != ProjectionOrthographic {
		t.Fatalf("ProjectionType() = %v, want orthographic", c.ProjectionType())
	}

	vp := c.ViewProjectionMatrix()
	tests := []struct {
		world mgl32.Vec4
		clip  mgl32.Vec2
	}{
		{mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec2{-1, -1}},
		{mgl32.Vec4{1280, 720, 0, 1}, mgl32.Vec2{1, 1}},
		{mgl32.Vec4{640, 360, 0, 1}, mgl32.Vec2{0, 0}},
	}
	for _, tt := range tests {
		got := vp.Mul4x1(tt.world)
		if !got.Vec2().ApproxEqualThreshold(tt.clip, 1e-5) {
			t.Errorf("clip(%v) = %v, want %v", tt.world, got.Vec2(), tt.clip)
		}
	}
}

func TestResize(t *testing.T) {
	c := NewCamera()
	c.Resize(800, 600)
	l, r, b, top := c.Viewport()
	if l != 0 || r != 800 || b != 0 || top != 600 {
		t.Errorf("Viewport() = (%v, %v, %v, %v), want (0, 800, 0, 600)", l, r, b, top)
	}

	p := NewCamera(WithPerspective(mgl32.DegToRad(45), 1))
	p.Resize(1000, 500)
	if p.Aspect() != 2 {
		t.Errorf("Aspect() = %v, want 2", p.Aspect())
	}
	if p.Near() <= 0 {
		t.Errorf("perspective Near() = %v, want positive default", p.Near())
	}

	c.Resize(0, 10)
	if _, r, _, _ := c.Viewport(); r != 800 {
		t.Errorf("Resize(0, 10) changed viewport right edge to %v", r)
	}
}

func TestSetPositionMovesView(t *testing.T) {
	c := NewCamera()
	c.SetPosition(100, 0, 1)
	c.SetTarget(100, 0, 0)
	got := c.ViewMatrix().Mul4x1(mgl32.Vec4{100, 0, 0, 1})
	if !got.Vec3().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("view-space target = %v, want (0, 0, -1)", got.Vec3())
	}
}

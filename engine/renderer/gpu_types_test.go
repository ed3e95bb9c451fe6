package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestViewUniformMarshal(t *testing.T) {
	v := ViewUniform{
		Model:      mgl32.Translate3D(1, 2, 3),
		Projection: mgl32.Ident4(),
		View:       mgl32.Scale3D(2, 2, 2),
	}
	buf := v.Marshal()
	if len(buf) != v.Size() {
		t.Fatalf("len(Marshal()) = %d, want %d", len(buf), v.Size())
	}
	at := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])) }

	// column-major: translation is elements 12..14 of the model matrix
	if at(12) != 1 || at(13) != 2 || at(14) != 3 {
		t.Errorf("model translation = (%v, %v, %v), want (1, 2, 3)", at(12), at(13), at(14))
	}
	if at(16) != 1 || at(16+15) != 1 {
		t.Errorf("projection diagonal = %v, %v; want 1, 1", at(16), at(31))
	}
	if at(32) != 2 {
		t.Errorf("view[0] = %v, want 2", at(32))
	}
}

func TestLightingUniformMarshal(t *testing.T) {
	l := DefaultLighting
	buf := l.Marshal()
	if len(buf) != LightingUniformSize {
		t.Fatalf("len(Marshal()) = %d, want %d", len(buf), LightingUniformSize)
	}
	if got := binary.LittleEndian.Uint32(buf[12:]); got != LightTypeDirectional {
		t.Errorf("light_type = %d, want %d", got, LightTypeDirectional)
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[32:])); got != 1 {
		t.Errorf("diffuse.r = %v, want 1", got)
	}
}

func TestMaterialUniformMarshal(t *testing.T) {
	m := MaterialUniform{DiffuseSlot: 2, SpecularSlot: 3, Shininess: 8}
	buf := m.Marshal()
	if binary.LittleEndian.Uint32(buf[0:]) != 2 || binary.LittleEndian.Uint32(buf[4:]) != 3 {
		t.Errorf("slots = %v, want 2 and 3", buf[:8])
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:])); got != 8 {
		t.Errorf("shininess = %v, want 8", got)
	}
}

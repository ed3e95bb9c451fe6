package renderer

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Byte sizes of the uniform blocks, WGSL uniform address space layout.
const (
	ViewUniformSize     = 192
	LightingUniformSize = 64
	MaterialUniformSize = 16
)

// ViewUniformSource is the canonical WGSL definition of the ViewUniform struct.
// Matches ViewUniform.Marshal exactly (192 bytes).
//
//go:embed assets/view.wgsl
var ViewUniformSource string

// ViewUniform is the per-draw transform block: model, projection and view matrices, column-major.
type ViewUniform struct {
	Model      mgl32.Mat4 // offset   0
	Projection mgl32.Mat4 // offset  64
	View       mgl32.Mat4 // offset 128
}

// Size returns the size of the ViewUniform block in bytes.
//
// Returns:
//   - int: the block size in bytes (192)
func (v *ViewUniform) Size() int {
	return ViewUniformSize
}

// Marshal serializes the ViewUniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 192-byte buffer ready for GPU upload
func (v *ViewUniform) Marshal() []byte {
	buf := make([]byte, ViewUniformSize)
	putMat4(buf[0:64], v.Model)
	putMat4(buf[64:128], v.Projection)
	putMat4(buf[128:192], v.View)
	return buf
}

// LightingUniformSource is the canonical WGSL definition of the LightingUniform struct.
// Matches LightingUniform.Marshal exactly (64 bytes, vec3 members aligned to 16).
//
//go:embed assets/lighting.wgsl
var LightingUniformSource string

// Light types understood by LightingUniform.LightType.
const (
	LightTypePoint       uint32 = 0
	LightTypeDirectional uint32 = 1
)

// LightingUniform carries the parameters of a single light. The batching layer does not light anything;
// it only uploads this block to shaders that declare it.
type LightingUniform struct {
	Direction [3]float32 // offset  0
	LightType uint32     // offset 12
	Ambient   [3]float32 // offset 16
	Diffuse   [3]float32 // offset 32
	Specular  [3]float32 // offset 48
}

// DefaultLighting is a white directional light with a dim ambient term.
var DefaultLighting = LightingUniform{
	Direction: [3]float32{-1, 0, 1},
	LightType: LightTypeDirectional,
	Ambient:   [3]float32{0.2, 0.2, 0.2},
	Diffuse:   [3]float32{1, 1, 1},
}

// Size returns the size of the LightingUniform block in bytes.
//
// Returns:
//   - int: the block size in bytes (64)
func (l *LightingUniform) Size() int {
	return LightingUniformSize
}

// Marshal serializes the LightingUniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (l *LightingUniform) Marshal() []byte {
	buf := make([]byte, LightingUniformSize)
	putFloat32s(buf[0:12], l.Direction[:]...)
	binary.LittleEndian.PutUint32(buf[12:16], l.LightType)
	putFloat32s(buf[16:28], l.Ambient[:]...)
	putFloat32s(buf[32:44], l.Diffuse[:]...)
	putFloat32s(buf[48:60], l.Specular[:]...)
	return buf
}

// MaterialUniformSource is the canonical WGSL definition of the MaterialUniform struct.
// Matches MaterialUniform.Marshal exactly (16 bytes).
//
//go:embed assets/material.wgsl
var MaterialUniformSource string

// MaterialUniform selects the texture slots used as diffuse and specular maps and the shininess exponent.
type MaterialUniform struct {
	DiffuseSlot  uint32  // offset 0
	SpecularSlot uint32  // offset 4
	Shininess    float32 // offset 8
}

// DefaultMaterial samples slot 0 for both maps with a shininess of 1.
var DefaultMaterial = MaterialUniform{Shininess: 1}

// Size returns the size of the MaterialUniform block in bytes.
//
// Returns:
//   - int: the block size in bytes (16)
func (m *MaterialUniform) Size() int {
	return MaterialUniformSize
}

// Marshal serializes the MaterialUniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (m *MaterialUniform) Marshal() []byte {
	buf := make([]byte, MaterialUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], m.DiffuseSlot)
	binary.LittleEndian.PutUint32(buf[4:8], m.SpecularSlot)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(m.Shininess))
	return buf
}

func putMat4(dst []byte, m mgl32.Mat4) {
	putFloat32s(dst, m[:]...)
}

func putFloat32s(dst []byte, vals ...float32) {
	for i, f := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

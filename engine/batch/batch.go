// Package batch accumulates the quads of one shader into a single interleaved vertex/index stream that can
// be drawn with one indexed draw call.
package batch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// VerticesPerQuad is the number of vertices each quad contributes.
	VerticesPerQuad = 4
	// IndicesPerQuad is the number of indices each quad contributes (two triangles).
	IndicesPerQuad = 6
	// IndexSize is the size in bytes of one index.
	IndexSize = 4

	defaultCapacity = 64
)

// quadIndices is the triangle pattern of one quad relative to its first vertex.
var quadIndices = [IndicesPerQuad]uint32{0, 1, 2, 0, 2, 3}

var (
	// ErrNilTexture is returned when a quad without a texture is added.
	ErrNilTexture = errors.New("batch: quad has no texture")

	// ErrTextureSlotsExhausted is returned when a quad would bring more distinct textures into a batch than
	// its shader has texture slots.
	ErrTextureSlotsExhausted = errors.New("batch: texture slots exhausted")

	// ErrInvalidSchema is returned when a vertex layout lacks an attribute the batch writes.
	ErrInvalidSchema = errors.New("batch: invalid vertex schema")
)

// Batch is the per-shader accumulator. Vertex positions, texture coordinates and texture slot indices are
// parallel sequences with one entry per vertex; textures holds each distinct texture once, in first-use
// order, and a vertex's slot index is the position of its texture in that sequence.
//
// The GPU geometry is created on the first Prepare and reused until Release. A Batch is not safe for
// concurrent use.
type Batch struct {
	shader   renderer.Program
	schema   renderer.VertexSchema
	label    string
	capacity int

	positionOffset int
	texCoordOffset int
	slotOffset     int

	vertices  []mgl32.Vec3
	texCoords []mgl32.Vec2
	slots     []uint32
	indices   []uint32
	textures  []texture.Texture
	slotOf    map[texture.Texture]int

	geometry  renderer.Geometry
	vertexBuf []byte
}

// New creates an empty Batch for the given shader. The shader is only borrowed; a nil shader is accepted so
// the draw pass can report it.
//
// Parameters:
//   - shader: the shader program the batch is drawn with
//   - options: a variadic list of BatchBuilderOption functions
//
// Returns:
//   - *Batch: the new batch
//   - error: ErrInvalidSchema if the vertex layout cannot hold the batch's attributes
func New(shader renderer.Program, options ...BatchBuilderOption) (*Batch, error) {
	b := &Batch{
		shader:   shader,
		schema:   renderer.SpriteVertexSchema,
		capacity: defaultCapacity,
	}
	for _, opt := range options {
		opt(b)
	}
	if err := b.resolveSchema(); err != nil {
		return nil, err
	}
	if b.label == "" {
		b.label = "batch"
		if shader != nil {
			b.label = "batch:" + shader.Key()
		}
	}

	b.vertices = make([]mgl32.Vec3, 0, b.capacity*VerticesPerQuad)
	b.texCoords = make([]mgl32.Vec2, 0, b.capacity*VerticesPerQuad)
	b.slots = make([]uint32, 0, b.capacity*VerticesPerQuad)
	b.indices = make([]uint32, 0, b.capacity*IndicesPerQuad)
	b.slotOf = make(map[texture.Texture]int)
	return b, nil
}

// ValidateSchema checks that a vertex layout declares the attributes a Batch writes with the expected formats.
//
// Parameters:
//   - schema: the vertex layout to check
//
// Returns:
//   - error: an error wrapping ErrInvalidSchema, or nil
func ValidateSchema(schema renderer.VertexSchema) error {
	required := []renderer.VertexField{
		{Name: renderer.AttributePosition, Format: renderer.VertexFormatFloat32x3},
		{Name: renderer.AttributeTexCoords, Format: renderer.VertexFormatFloat32x2},
		{Name: renderer.AttributeTextureIndex, Format: renderer.VertexFormatUint32},
	}
	for _, f := range required {
		a, ok := schema.Attribute(f.Name)
		if !ok {
			return fmt.Errorf("%w: missing attribute %q", ErrInvalidSchema, f.Name)
		}
		if a.Format != f.Format {
			return fmt.Errorf("%w: attribute %q is %v, want %v", ErrInvalidSchema, f.Name, a.Format, f.Format)
		}
	}
	return nil
}

func (b *Batch) resolveSchema() error {
	if err := ValidateSchema(b.schema); err != nil {
		return err
	}
	pos, _ := b.schema.Attribute(renderer.AttributePosition)
	uv, _ := b.schema.Attribute(renderer.AttributeTexCoords)
	slot, _ := b.schema.Attribute(renderer.AttributeTextureIndex)
	b.positionOffset = pos.Offset
	b.texCoordOffset = uv.Offset
	b.slotOffset = slot.Offset
	return nil
}

// AddQuad appends the four vertices and six indices of q and resolves its texture to a slot.
// If the quad's texture is new to the batch and the shader has no free texture slot left, the quad is
// rejected and the batch is left unchanged. A shader with zero slots samples no textures and rejects every
// quad.
//
// Parameters:
//   - q: the quad to add
//
// Returns:
//   - error: ErrNilTexture or ErrTextureSlotsExhausted (wrapped), or nil
func (b *Batch) AddQuad(q Quad) error {
	if q.Texture == nil {
		return ErrNilTexture
	}

	slot, known := b.slotOf[q.Texture]
	if !known {
		if b.shader != nil && len(b.textures) >= b.shader.TextureSlotCount() {
			return fmt.Errorf("%w: shader %q has %d slots, texture %q would be number %d",
				ErrTextureSlotsExhausted, b.shader.Key(), b.shader.TextureSlotCount(), q.Texture.Label(), len(b.textures)+1)
		}
		slot = len(b.textures)
		b.textures = append(b.textures, q.Texture)
		b.slotOf[q.Texture] = slot
	}

	base := uint32(len(b.vertices))
	corners, uvs := q.Corners(), q.CornerTexCoords()
	b.vertices = append(b.vertices, corners[:]...)
	b.texCoords = append(b.texCoords, uvs[:]...)
	for range VerticesPerQuad {
		b.slots = append(b.slots, uint32(slot))
	}
	for _, i := range quadIndices {
		b.indices = append(b.indices, base+i)
	}
	return nil
}

// Prepare packs the accumulated vertices into interleaved records per the batch's vertex layout and uploads
// them and the indices to the batch's geometry, creating the geometry on first use. An empty batch uploads
// nothing and is not an error. Calling Prepare again re-uploads the current contents.
//
// Parameters:
//   - backend: the backend owning the geometry
//
// Returns:
//   - renderer.Geometry: the geometry holding the uploaded data
//   - error: an error if the geometry could not be created or an upload failed
func (b *Batch) Prepare(backend renderer.Backend) (renderer.Geometry, error) {
	if b.geometry == nil {
		g, err := backend.CreateGeometryHandle(b.label, b.schema)
		if err != nil {
			return nil, fmt.Errorf("create geometry for %s: %w", b.label, err)
		}
		b.geometry = g
		logger.Logger().Debug("batch geometry created", "label", b.label)
	}

	stride := b.schema.Stride()
	b.vertexBuf = common.GrowBytes(b.vertexBuf, len(b.vertices)*stride)
	clear(b.vertexBuf)
	for i, v := range b.vertices {
		rec := b.vertexBuf[i*stride : (i+1)*stride]
		putFloat32s(rec[b.positionOffset:], v[:]...)
		putFloat32s(rec[b.texCoordOffset:], b.texCoords[i][:]...)
		binary.LittleEndian.PutUint32(rec[b.slotOffset:], b.slots[i])
	}

	if err := backend.UploadVertexData(b.geometry, b.vertexBuf, len(b.vertices)); err != nil {
		return nil, fmt.Errorf("upload vertices of %s: %w", b.label, err)
	}
	// a view of the index slice, so this assumes a little-endian host
	if err := backend.UploadIndexData(b.geometry, common.SliceToBytes(b.indices), len(b.indices)); err != nil {
		return nil, fmt.Errorf("upload indices of %s: %w", b.label, err)
	}
	return b.geometry, nil
}

func putFloat32s(dst []byte, vals ...float32) {
	for i, f := range vals {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// Clear empties every sequence while keeping their capacity and the geometry for the next frame.
func (b *Batch) Clear() {
	b.vertices = b.vertices[:0]
	b.texCoords = b.texCoords[:0]
	b.slots = b.slots[:0]
	b.indices = b.indices[:0]
	clear(b.textures)
	b.textures = b.textures[:0]
	clear(b.slotOf)
}

// Release frees the batch's geometry. The batch may still be used; the next Prepare creates a new geometry.
func (b *Batch) Release() {
	if b.geometry != nil {
		b.geometry.Release()
		b.geometry = nil
	}
}

// Shader returns the shader program the batch is grouped by.
func (b *Batch) Shader() renderer.Program {
	return b.shader
}

// Label returns the debug label of the batch's geometry.
func (b *Batch) Label() string {
	return b.label
}

// Schema returns the vertex layout the batch packs into.
func (b *Batch) Schema() renderer.VertexSchema {
	return b.schema
}

// Geometry returns the batch's geometry, or nil before the first Prepare.
func (b *Batch) Geometry() renderer.Geometry {
	return b.geometry
}

// Vertices returns the accumulated vertex positions. The slice must not be modified.
func (b *Batch) Vertices() []mgl32.Vec3 {
	return b.vertices
}

// TexCoords returns the accumulated per-vertex texture coordinates. The slice must not be modified.
func (b *Batch) TexCoords() []mgl32.Vec2 {
	return b.texCoords
}

// TextureSlots returns the accumulated per-vertex texture slot indices. The slice must not be modified.
func (b *Batch) TextureSlots() []uint32 {
	return b.slots
}

// Indices returns the accumulated triangle indices. The slice must not be modified.
func (b *Batch) Indices() []uint32 {
	return b.indices
}

// Textures returns the distinct textures of the batch in first-use order; the position of a texture is its
// slot index. The slice must not be modified.
func (b *Batch) Textures() []texture.Texture {
	return b.textures
}

// QuadCount returns the number of quads accumulated since the last Clear.
func (b *Batch) QuadCount() int {
	return len(b.vertices) / VerticesPerQuad
}

// VertexCount returns the number of accumulated vertices.
func (b *Batch) VertexCount() int {
	return len(b.vertices)
}

// IndexCount returns the number of accumulated indices.
func (b *Batch) IndexCount() int {
	return len(b.indices)
}

// Empty reports whether the batch holds no quads.
func (b *Batch) Empty() bool {
	return len(b.vertices) == 0
}

package renderer

import (
	"fmt"
)

// VertexFormat identifies the component type and count of a single vertex attribute.
type VertexFormat int

const (
	VertexFormatFloat32 VertexFormat = iota
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
	VertexFormatSint32
)

var vertexFormatSizes = map[VertexFormat]int{
	VertexFormatFloat32:   4,
	VertexFormatFloat32x2: 8,
	VertexFormatFloat32x3: 12,
	VertexFormatFloat32x4: 16,
	VertexFormatUint32:    4,
	VertexFormatSint32:    4,
}

var vertexFormatNames = map[VertexFormat]string{
	VertexFormatFloat32:   "float32",
	VertexFormatFloat32x2: "float32x2",
	VertexFormatFloat32x3: "float32x3",
	VertexFormatFloat32x4: "float32x4",
	VertexFormatUint32:    "uint32",
	VertexFormatSint32:    "sint32",
}

// Size returns the byte size of one attribute of this format, or 0 for an unknown format.
//
// Returns:
//   - int: the attribute size in bytes
func (f VertexFormat) Size() int {
	return vertexFormatSizes[f]
}

func (f VertexFormat) String() string {
	if name, ok := vertexFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("VertexFormat(%d)", int(f))
}

// Well-known attribute names of the sprite vertex layout.
const (
	AttributePosition     = "position"
	AttributeTexCoords    = "texCoords"
	AttributeTextureIndex = "textureIndex"
)

// VertexField declares one named attribute of a vertex layout, in declaration order.
type VertexField struct {
	Name   string
	Format VertexFormat
}

// VertexAttribute is a VertexField with its resolved byte offset and shader location.
type VertexAttribute struct {
	Name     string
	Format   VertexFormat
	Offset   int
	Location int
}

// VertexSchema is an interleaved vertex layout: ordered attributes with byte offsets resolved once at
// construction time and a per-vertex stride. Backends use it to describe vertex buffers and packers use the
// offsets to write records, so both sides always agree on the layout.
type VertexSchema struct {
	attributes []VertexAttribute
	byName     map[string]int
	stride     int
}

// NewVertexSchema resolves the offsets of the given fields, packed tightly in declaration order.
// Shader locations are assigned sequentially starting at 0.
//
// Parameters:
//   - fields: the attributes in declaration order
//
// Returns:
//   - VertexSchema: the resolved schema
//   - error: an error if a field has an empty or duplicate name or an unknown format
func NewVertexSchema(fields ...VertexField) (VertexSchema, error) {
	s := VertexSchema{
		attributes: make([]VertexAttribute, 0, len(fields)),
		byName:     make(map[string]int, len(fields)),
	}
	offset := 0
	for i, f := range fields {
		if f.Name == "" {
			return VertexSchema{}, fmt.Errorf("vertex field %d has no name", i)
		}
		if _, dup := s.byName[f.Name]; dup {
			return VertexSchema{}, fmt.Errorf("duplicate vertex field %q", f.Name)
		}
		size := f.Format.Size()
		if size == 0 {
			return VertexSchema{}, fmt.Errorf("vertex field %q has unknown format %v", f.Name, f.Format)
		}
		s.byName[f.Name] = len(s.attributes)
		s.attributes = append(s.attributes, VertexAttribute{
			Name:     f.Name,
			Format:   f.Format,
			Offset:   offset,
			Location: i,
		})
		offset += size
	}
	s.stride = offset
	return s, nil
}

// MustVertexSchema is like NewVertexSchema but panics on an invalid declaration.
// Intended for package-level layouts that are fixed at compile time.
//
// Parameters:
//   - fields: the attributes in declaration order
//
// Returns:
//   - VertexSchema: the resolved schema
func MustVertexSchema(fields ...VertexField) VertexSchema {
	s, err := NewVertexSchema(fields...)
	if err != nil {
		panic(fmt.Sprintf("renderer: invalid vertex schema: %v", err))
	}
	return s
}

// SpriteVertexSchema is the layout every batched quad vertex uses:
// position (float32x3, offset 0), texCoords (float32x2, offset 12), textureIndex (uint32, offset 20), stride 24.
var SpriteVertexSchema = MustVertexSchema(
	VertexField{Name: AttributePosition, Format: VertexFormatFloat32x3},
	VertexField{Name: AttributeTexCoords, Format: VertexFormatFloat32x2},
	VertexField{Name: AttributeTextureIndex, Format: VertexFormatUint32},
)

// Attributes returns the resolved attributes in declaration order. The slice must not be modified.
//
// Returns:
//   - []VertexAttribute: the attributes
func (s VertexSchema) Attributes() []VertexAttribute {
	return s.attributes
}

// Attribute looks up an attribute by name.
//
// Parameters:
//   - name: the attribute name
//
// Returns:
//   - VertexAttribute: the attribute, or the zero value if absent
//   - bool: true if the attribute exists
func (s VertexSchema) Attribute(name string) (VertexAttribute, bool) {
	i, ok := s.byName[name]
	if !ok {
		return VertexAttribute{}, false
	}
	return s.attributes[i], true
}

// Stride returns the size of one interleaved vertex record in bytes.
//
// Returns:
//   - int: the stride in bytes
func (s VertexSchema) Stride() int {
	return s.stride
}

// Len returns the number of attributes.
//
// Returns:
//   - int: the attribute count
func (s VertexSchema) Len() int {
	return len(s.attributes)
}

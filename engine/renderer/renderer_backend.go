package renderer

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

// Backend is the set of graphics-API primitives the batching layer needs. All calls happen on the GPU
// thread, between the frame begin and end of the concrete backend.
type Backend interface {
	// CreateGeometryHandle creates an empty, reusable vertex/index buffer pair for the given layout.
	//
	// Parameters:
	//   - label: a debug label for the geometry
	//   - schema: the vertex layout of the vertex buffer
	//
	// Returns:
	//   - Geometry: the new geometry handle
	//   - error: an error if the handle could not be created
	CreateGeometryHandle(label string, schema VertexSchema) (Geometry, error)

	// UploadVertexData replaces the contents of the geometry's vertex buffer. An empty upload leaves the
	// geometry with no populated vertex buffer.
	//
	// Parameters:
	//   - g: the geometry to update
	//   - data: interleaved vertex records laid out per the geometry's schema
	//   - vertexCount: the number of vertices in data
	//
	// Returns:
	//   - error: an error if the upload fails
	UploadVertexData(g Geometry, data []byte, vertexCount int) error

	// UploadIndexData replaces the contents of the geometry's index buffer with 32-bit indices.
	//
	// Parameters:
	//   - g: the geometry to update
	//   - data: little-endian uint32 indices
	//   - indexCount: the number of indices in data
	//
	// Returns:
	//   - error: an error if the upload fails
	UploadIndexData(g Geometry, data []byte, indexCount int) error

	// BindGeometry makes g the geometry used by the next draw.
	//
	// Parameters:
	//   - g: the geometry to bind
	//
	// Returns:
	//   - error: an error if g is nil or released
	BindGeometry(g Geometry) error

	// BindShaderProgram makes p the program used by subsequent uniform, texture and draw calls.
	//
	// Parameters:
	//   - p: the program to bind
	//
	// Returns:
	//   - error: an error if p is nil or its pipeline cannot be created
	BindShaderProgram(p Program) error

	// UploadUniformBlock writes a uniform block of the bound program.
	//
	// Parameters:
	//   - name: the uniform block name
	//   - data: the std140-compatible block contents
	//
	// Returns:
	//   - error: an error if no program is bound or the block is unknown
	UploadUniformBlock(name string, data []byte) error

	// BindTextureToSlot binds a texture to a texture unit of the bound program.
	//
	// Parameters:
	//   - unit: the texture unit, as returned by Program.TextureUnit
	//   - tex: the texture to bind
	//
	// Returns:
	//   - error: an error if no program is bound or the unit is not a texture unit of the program
	BindTextureToSlot(unit int, tex texture.Texture) error

	// IssueIndexedDraw draws indexCount indices of g as a triangle list with the bound program.
	//
	// Parameters:
	//   - g: the geometry to draw
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: an error if the draw could not be encoded
	IssueIndexedDraw(g Geometry, indexCount int) error
}

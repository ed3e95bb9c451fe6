// Package renderer defines the contract between the batching layer and a graphics-API binding.
// Nothing in this package talks to a GPU; backends such as wgpu_backend and recorder implement Backend.
package renderer

import (
	"errors"
)

// Uniform block names the draw submitter uploads when a shader declares them.
const (
	// UniformBlockView carries the model, projection and view matrices of a draw.
	UniformBlockView = "view"

	// UniformBlockLighting carries the directional light parameters of a draw.
	UniformBlockLighting = "lighting"

	// UniformBlockMaterial carries the material parameters of a draw.
	UniformBlockMaterial = "material"
)

var (
	// ErrNilGeometry is returned when an operation receives a nil geometry handle.
	ErrNilGeometry = errors.New("renderer: nil geometry")

	// ErrNilProgram is returned when BindShaderProgram receives a nil program.
	ErrNilProgram = errors.New("renderer: nil shader program")

	// ErrNoProgramBound is returned by uniform, texture and draw operations issued before any program is bound.
	ErrNoProgramBound = errors.New("renderer: no shader program bound")

	// ErrUnknownUniformBlock is returned when the bound program does not declare the named uniform block.
	ErrUnknownUniformBlock = errors.New("renderer: unknown uniform block")

	// ErrReleased is returned when a released geometry handle is used.
	ErrReleased = errors.New("renderer: geometry released")
)

// Program is a compiled shader program as seen by the batching layer. It is the grouping key of a batch,
// so implementations must be comparable pointer types.
type Program interface {
	// Key returns the unique identifier of the program, used for pipeline caching and logging.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// TextureSlotCount returns how many textures a single draw with this program can sample.
	// Zero means the program samples no textures.
	//
	// Returns:
	//   - int: the number of texture slots
	TextureSlotCount() int

	// TextureUnit maps a batch texture slot to the texture unit (binding) the program samples it from.
	//
	// Parameters:
	//   - slot: the zero-based batch texture slot
	//
	// Returns:
	//   - int: the texture unit for the slot
	//   - bool: false if the slot is out of range
	TextureUnit(slot int) (int, bool)

	// HasUniformBlock reports whether the program declares the named uniform block.
	//
	// Parameters:
	//   - name: the uniform block name, e.g. UniformBlockView
	//
	// Returns:
	//   - bool: true if the block is declared
	HasUniformBlock(name string) bool
}

// Geometry is a GPU-side vertex/index buffer pair created by a Backend. Buffers persist across frames and
// are refilled in place; a backend reallocates only when an upload outgrows the current capacity.
type Geometry interface {
	// Label returns the debug label the geometry was created with.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Schema returns the vertex layout of the geometry's vertex buffer.
	//
	// Returns:
	//   - VertexSchema: the vertex layout
	Schema() VertexSchema

	// VertexCount returns the number of vertices in the last vertex upload.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices in the last index upload.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// VertexBufferCount returns how many vertex buffers currently hold data. Zero means nothing has been
	// uploaded or the last upload was empty.
	//
	// Returns:
	//   - int: the number of populated vertex buffers
	VertexBufferCount() int

	// HasIndexBuffer reports whether an index buffer with data is attached.
	//
	// Returns:
	//   - bool: true if an index buffer holds data
	HasIndexBuffer() bool

	// Release frees the GPU buffers. The handle must not be used afterwards.
	Release()
}

package batch

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// BatchBuilderOption is a functional option used to configure a Batch during construction.
type BatchBuilderOption func(*Batch)

// WithVertexSchema sets the interleaved vertex layout used by Prepare. The schema must declare the position
// (float32x3), texCoords (float32x2) and textureIndex (uint32) attributes; extra attributes are zero-filled.
//
// Parameters:
//   - schema: the vertex layout
//
// Returns:
//   - BatchBuilderOption: a function that sets the vertex layout
func WithVertexSchema(schema renderer.VertexSchema) BatchBuilderOption {
	return func(b *Batch) {
		b.schema = schema
	}
}

// WithCapacity preallocates room for the given number of quads.
//
// Parameters:
//   - quads: the number of quads to reserve space for
//
// Returns:
//   - BatchBuilderOption: a function that sets the initial capacity
func WithCapacity(quads int) BatchBuilderOption {
	return func(b *Batch) {
		if quads > 0 {
			b.capacity = quads
		}
	}
}

// WithLabel sets the debug label of the batch's geometry.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - BatchBuilderOption: a function that sets the label
func WithLabel(label string) BatchBuilderOption {
	return func(b *Batch) {
		b.label = label
	}
}

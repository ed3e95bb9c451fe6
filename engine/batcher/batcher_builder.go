package batcher

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// BatcherBuilderOption is a functional option used to configure a Batcher during construction.
type BatcherBuilderOption func(*Batcher)

// WithVertexSchema sets the vertex layout of every batch the batcher creates.
//
// Parameters:
//   - schema: the vertex layout
//
// Returns:
//   - BatcherBuilderOption: a function that sets the vertex layout
func WithVertexSchema(schema renderer.VertexSchema) BatcherBuilderOption {
	return func(b *Batcher) {
		b.schema = schema
	}
}

// WithInitialCapacity sets how many quads a newly created batch reserves room for.
//
// Parameters:
//   - quads: the number of quads per new batch
//
// Returns:
//   - BatcherBuilderOption: a function that sets the initial batch capacity
func WithInitialCapacity(quads int) BatcherBuilderOption {
	return func(b *Batcher) {
		b.initialCapacity = quads
	}
}

// WithEvictAfter releases and removes a batch once it has stayed empty for the given number of consecutive
// frames. Zero keeps batches forever.
//
// Parameters:
//   - frames: the number of idle frames before eviction
//
// Returns:
//   - BatcherBuilderOption: a function that sets the eviction policy
func WithEvictAfter(frames int) BatcherBuilderOption {
	return func(b *Batcher) {
		if frames >= 0 {
			b.evictAfter = frames
		}
	}
}

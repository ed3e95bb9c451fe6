// Package batcher routes quads to one batch per shader and drives the per-frame batch lifecycle.
package batcher

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/camera"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
)

// ErrState is returned when an operation is not valid in the batcher's current frame state.
var ErrState = errors.New("batcher: invalid frame state")

// DrawDescriptor is everything needed to draw one prepared batch. Textures[i] is sampled through texture
// slot i, the slot index baked into the batch's vertices.
type DrawDescriptor struct {
	Geometry renderer.Geometry
	Shader   renderer.Program
	Textures []texture.Texture

	// Transform and Camera are the draw context of the last quad routed to the batch.
	Transform transform.Transform
	Camera    camera.Camera

	// Quads is the number of quads in the batch.
	Quads int
}

type entry struct {
	batch     *batch.Batch
	transform transform.Transform
	camera    camera.Camera
	idle      int
}

// Batcher owns one Batch per shader. Batches are created on the first quad for a shader and kept across
// frames so their GPU geometry is reused. A Batcher is meant to be owned by one render pass on the GPU thread
// and is not safe for concurrent use.
type Batcher struct {
	backend         renderer.Backend
	schema          renderer.VertexSchema
	initialCapacity int
	evictAfter      int

	batches map[renderer.Program]*entry
	order   []renderer.Program
	state   State

	transform transform.Transform
	camera    camera.Camera
}

// New creates a Batcher that prepares its batches on the given backend.
//
// Parameters:
//   - backend: the backend batches upload to
//   - options: a variadic list of BatcherBuilderOption functions
//
// Returns:
//   - *Batcher: the new batcher
//   - error: an error if the configured vertex layout is unusable
func New(backend renderer.Backend, options ...BatcherBuilderOption) (*Batcher, error) {
	b := &Batcher{
		backend:   backend,
		schema:    renderer.SpriteVertexSchema,
		batches:   make(map[renderer.Program]*entry),
		transform: transform.Identity(),
	}
	for _, opt := range options {
		opt(b)
	}
	if err := batch.ValidateSchema(b.schema); err != nil {
		return nil, err
	}
	return b, nil
}

// AddQuad routes q to the batch of shader, creating the batch if needed. The transform and camera become
// both the batcher's current context (last write wins) and the context of that batch.
//
// Parameters:
//   - q: the quad to add
//   - shader: the shader the quad is drawn with; nil is accepted and reported at draw time
//   - tr: the model transform of the quad
//   - cam: the camera of the quad
//
// Returns:
//   - error: ErrState after Prepare until Clear, or the batch's error if it rejected the quad
func (b *Batcher) AddQuad(q batch.Quad, shader renderer.Program, tr transform.Transform, cam camera.Camera) error {
	switch b.state {
	case StatePrepared, StateSubmitted:
		return fmt.Errorf("%w: AddQuad while %v", ErrState, b.state)
	}

	e, ok := b.batches[shader]
	if !ok {
		bt, err := batch.New(shader, batch.WithVertexSchema(b.schema), batch.WithCapacity(b.initialCapacity))
		if err != nil {
			return err
		}
		// the batch is only kept once it holds a quad
		if err := bt.AddQuad(q); err != nil {
			return err
		}
		e = &entry{batch: bt}
		b.batches[shader] = e
		b.order = append(b.order, shader)
		logger.Logger().Debug("batch created", "label", bt.Label(), "batches", len(b.batches))
	} else if err := e.batch.AddQuad(q); err != nil {
		return err
	}
	e.transform = tr
	e.camera = cam
	b.transform = tr
	b.camera = cam
	b.state = StateAccumulating
	return nil
}

// Prepare uploads every non-empty batch and returns one DrawDescriptor per batch. The order of the
// descriptors is unspecified. A batch that fails to upload is logged and left out; the others are still
// returned along with the joined errors.
//
// Returns:
//   - []DrawDescriptor: the descriptors of the uploaded batches
//   - error: ErrState if the frame was already prepared, or the joined upload errors
func (b *Batcher) Prepare() ([]DrawDescriptor, error) {
	switch b.state {
	case StatePrepared, StateSubmitted:
		return nil, fmt.Errorf("%w: Prepare while %v", ErrState, b.state)
	}

	descriptors := make([]DrawDescriptor, 0, len(b.batches))
	var errs []error
	for shader, e := range b.batches {
		if e.batch.Empty() {
			continue
		}
		g, err := e.batch.Prepare(b.backend)
		if err != nil {
			logger.Logger().Error("batch prepare failed, skipping", "label", e.batch.Label(), "error", err)
			errs = append(errs, err)
			continue
		}
		descriptors = append(descriptors, DrawDescriptor{
			Geometry:  g,
			Shader:    shader,
			Textures:  slices.Clone(e.batch.Textures()),
			Transform: e.transform,
			Camera:    e.camera,
			Quads:     e.batch.QuadCount(),
		})
	}
	b.state = StatePrepared
	return descriptors, errors.Join(errs...)
}

// MarkSubmitted records that the draw calls of the prepared descriptors were issued.
//
// Returns:
//   - error: ErrState unless the batcher is prepared
func (b *Batcher) MarkSubmitted() error {
	if b.state != StatePrepared {
		return fmt.Errorf("%w: MarkSubmitted while %v", ErrState, b.state)
	}
	b.state = StateSubmitted
	return nil
}

// Clear empties every batch for the next frame. Batch entries and their geometry are kept, except batches
// that have stayed empty for longer than the eviction window, which are released and removed.
func (b *Batcher) Clear() {
	b.state = StateCleared

	kept := b.order[:0]
	for _, shader := range b.order {
		e := b.batches[shader]
		if e.batch.Empty() {
			e.idle++
		} else {
			e.idle = 0
		}
		if b.evictAfter > 0 && e.idle >= b.evictAfter {
			e.batch.Release()
			delete(b.batches, shader)
			logger.Logger().Debug("batch evicted", "label", e.batch.Label(), "idle_frames", e.idle)
			continue
		}
		e.batch.Clear()
		kept = append(kept, shader)
	}
	clear(b.order[len(kept):])
	b.order = kept

	b.state = StateIdle
}

// Release frees the geometry of every batch and forgets all batches.
func (b *Batcher) Release() {
	for _, e := range b.batches {
		e.batch.Release()
	}
	clear(b.batches)
	b.order = b.order[:0]
	b.state = StateIdle
}

// Batch returns the batch of the given shader.
//
// Parameters:
//   - shader: the shader to look up
//
// Returns:
//   - *batch.Batch: the batch, or nil
//   - bool: true if a batch exists for the shader
func (b *Batcher) Batch(shader renderer.Program) (*batch.Batch, bool) {
	e, ok := b.batches[shader]
	if !ok {
		return nil, false
	}
	return e.batch, true
}

// Batches returns every batch in creation order.
func (b *Batcher) Batches() []*batch.Batch {
	out := make([]*batch.Batch, 0, len(b.order))
	for _, shader := range b.order {
		out = append(out, b.batches[shader].batch)
	}
	return out
}

// Len returns the number of batches, including empty ones.
func (b *Batcher) Len() int {
	return len(b.batches)
}

// State returns the current frame state.
func (b *Batcher) State() State {
	return b.state
}

// Camera returns the camera of the most recently added quad.
func (b *Batcher) Camera() camera.Camera {
	return b.camera
}

// Transform returns the transform of the most recently added quad.
func (b *Batcher) Transform() transform.Transform {
	return b.transform
}

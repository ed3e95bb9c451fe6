// Package renderpass is the entry point of the batching layer for drawing code. A RenderPass owns one Batcher;
// drawing code queues quads with SubmitQuad and friends, and FlushFrame prepares every batch, issues one draw
// call per batch and clears the batcher for the next frame.
package renderpass

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/batcher"
	"github.com/Carmen-Shannon/oxy-batch/engine/camera"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

// TextLayouter turns a string into glyph quads. text.Atlas implements it.
type TextLayouter interface {
	// Layout positions the glyphs of s starting at the transform's position, scaled by its scale.
	//
	// Parameters:
	//   - s: the text to lay out
	//   - tr: the origin and scale of the text
	//
	// Returns:
	//   - []batch.Quad: one quad per visible glyph
	//   - error: an error if the layouter cannot produce quads
	Layout(s string, tr transform.Transform) ([]batch.Quad, error)
}

// FrameStats summarizes one FlushFrame.
type FrameStats struct {
	// Batches is the number of draw descriptors prepared.
	Batches int
	// Quads is the number of quads in the prepared batches.
	Quads int
	// DrawCalls is the number of draw calls issued, degraded ones included.
	DrawCalls int
	// Skipped is the number of descriptors that issued no draw call.
	Skipped int
	// Degraded is the number of draw calls issued with an empty buffer.
	Degraded int
	// VertexBytes and IndexBytes are the bytes uploaded this frame.
	VertexBytes int
	IndexBytes  int
	// Err joins every error logged during the flush. It never needs handling by the caller.
	Err error
}

// RenderPass batches and draws the quads of one frame on a single backend.
// It is not safe for concurrent use; call it from the thread that owns the GPU context.
type RenderPass struct {
	backend        renderer.Backend
	batcher        *batcher.Batcher
	submitter      *Submitter
	batcherOptions []batcher.BatcherBuilderOption
}

// New creates a RenderPass and its Batcher.
//
// Parameters:
//   - backend: the backend batches upload to and draws are issued on
//   - options: a variadic list of RenderPassBuilderOption functions
//
// Returns:
//   - *RenderPass: the new render pass
//   - error: an error if the batcher cannot be created
func New(backend renderer.Backend, options ...RenderPassBuilderOption) (*RenderPass, error) {
	rp := &RenderPass{
		backend:   backend,
		submitter: NewSubmitter(backend),
	}
	for _, opt := range options {
		opt(rp)
	}
	b, err := batcher.New(backend, rp.batcherOptions...)
	if err != nil {
		return nil, err
	}
	rp.batcher = b
	return rp, nil
}

// SubmitQuad queues q for batched drawing with shader. The transform is the model transform of the quad's
// batch and cam provides its projection and view.
//
// Parameters:
//   - q: the quad to draw
//   - shader: the shader program to draw with
//   - tr: the model transform
//   - cam: the camera, or nil for identity projection and view
//
// Returns:
//   - error: an error if the quad was rejected
func (rp *RenderPass) SubmitQuad(q batch.Quad, shader renderer.Program, tr transform.Transform, cam camera.Camera) error {
	return rp.batcher.AddQuad(q, shader, tr, cam)
}

// SubmitSprite queues a quad whose bottom-left corner is the transform's position and whose size is the
// transform's X and Y scale. The quad is already in world space, so its batch is drawn with an unparented
// identity model transform.
//
// Parameters:
//   - tex: the sprite texture
//   - shader: the shader program to draw with
//   - tr: the sprite position and size
//   - cam: the camera, or nil
//   - texCoords: the texture rectangle (u0, v0, u1, v1)
//
// Returns:
//   - error: an error if the quad was rejected
func (rp *RenderPass) SubmitSprite(tex texture.Texture, shader renderer.Program, tr transform.Transform, cam camera.Camera, texCoords mgl32.Vec4) error {
	q := batch.Quad{
		Texture:   tex,
		Position:  tr.Position,
		Size:      mgl32.Vec2{tr.Scale.X(), tr.Scale.Y()},
		TexCoords: texCoords,
	}
	return rp.batcher.AddQuad(q, shader, transform.Identity(), cam)
}

// SubmitText queues one quad per glyph of s. Glyph positions are computed from tr, so the glyph batch is drawn
// with an unparented identity model transform. Queuing stops at the first rejected glyph.
//
// Parameters:
//   - s: the text to draw
//   - tr: the text origin (baseline start) and scale
//   - layouter: the glyph layouter, usually a *text.Atlas
//   - shader: the shader program to draw with
//   - cam: the camera, or nil
//
// Returns:
//   - error: an error if layout failed or a glyph was rejected
func (rp *RenderPass) SubmitText(s string, tr transform.Transform, layouter TextLayouter, shader renderer.Program, cam camera.Camera) error {
	quads, err := layouter.Layout(s, tr)
	if err != nil {
		return err
	}
	model := transform.Identity()
	for _, q := range quads {
		if err := rp.batcher.AddQuad(q, shader, model, cam); err != nil {
			return err
		}
	}
	return nil
}

// FlushFrame prepares every batch, issues one draw call per prepared batch and clears the batcher so the next
// SubmitQuad starts a new frame. Failures are logged and counted; one bad draw never prevents the others.
//
// Returns:
//   - FrameStats: what the flush uploaded and drew
func (rp *RenderPass) FlushFrame() FrameStats {
	var stats FrameStats
	var errs []error

	descriptors, err := rp.batcher.Prepare()
	if err != nil {
		errs = append(errs, err)
	}
	stats.Batches = len(descriptors)

	for _, d := range descriptors {
		stats.Quads += d.Quads
		if d.Geometry != nil {
			stats.VertexBytes += d.Geometry.VertexCount() * d.Geometry.Schema().Stride()
			stats.IndexBytes += d.Geometry.IndexCount() * batch.IndexSize
		}

		result, err := rp.submitter.Submit(d)
		switch result {
		case SubmitSkipped:
			stats.Skipped++
			errs = append(errs, err)
		case SubmitDegraded:
			stats.Degraded++
			stats.DrawCalls++
		default:
			stats.DrawCalls++
		}
	}

	if err := rp.batcher.MarkSubmitted(); err != nil {
		logger.Logger().Error("flush out of order", "error", err)
		errs = append(errs, err)
	}
	rp.batcher.Clear()

	stats.Err = errors.Join(errs...)
	return stats
}

// Batcher returns the render pass's batcher.
func (rp *RenderPass) Batcher() *batcher.Batcher {
	return rp.batcher
}

// Submitter returns the render pass's draw submitter.
func (rp *RenderPass) Submitter() *Submitter {
	return rp.submitter
}

// Release frees the GPU geometry of every batch.
func (rp *RenderPass) Release() {
	rp.batcher.Release()
}

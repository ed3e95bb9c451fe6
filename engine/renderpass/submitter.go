package renderpass

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/engine/batcher"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNilShader is returned when a draw descriptor has no shader. No GPU call is made for it.
	ErrNilShader = errors.New("renderpass: draw has no shader")

	// ErrNoGeometry is returned when a draw descriptor has no geometry.
	ErrNoGeometry = errors.New("renderpass: draw has no geometry")

	// ErrTooManyTextures is returned when a draw references more textures than its shader has slots.
	ErrTooManyTextures = errors.New("renderpass: more textures than shader texture slots")
)

// SubmitResult describes how one draw went.
type SubmitResult int

const (
	// SubmitDrawn means the draw call was issued.
	SubmitDrawn SubmitResult = iota
	// SubmitDegraded means the draw call was issued although the geometry had an empty buffer.
	SubmitDegraded
	// SubmitSkipped means no draw call was issued.
	SubmitSkipped
)

// Submitter issues the draw call of one DrawDescriptor: it binds the geometry and shader, uploads the
// per-draw uniform blocks, binds each texture to its slot's texture unit and draws the index buffer.
type Submitter struct {
	backend  renderer.Backend
	lighting renderer.LightingUniform
	material renderer.MaterialUniform
}

// NewSubmitter creates a Submitter with the default lighting and material blocks.
//
// Parameters:
//   - backend: the backend to issue calls on
//
// Returns:
//   - *Submitter: the new submitter
func NewSubmitter(backend renderer.Backend) *Submitter {
	return &Submitter{
		backend:  backend,
		lighting: renderer.DefaultLighting,
		material: renderer.DefaultMaterial,
	}
}

// Submit draws d. A descriptor without shader or geometry, or with more textures than the shader has slots,
// is skipped before any GPU call. An empty index buffer or a missing vertex buffer is logged and the draw is
// issued anyway.
//
// Parameters:
//   - d: the draw to issue
//
// Returns:
//   - SubmitResult: whether the draw was issued, issued degraded or skipped
//   - error: the reason a draw was skipped, or nil
func (s *Submitter) Submit(d batcher.DrawDescriptor) (SubmitResult, error) {
	log := logger.Logger()
	if d.Shader == nil {
		log.Error("draw skipped: nil shader", "quads", d.Quads)
		return SubmitSkipped, ErrNilShader
	}
	if d.Geometry == nil {
		log.Error("draw skipped: nil geometry", "shader", d.Shader.Key())
		return SubmitSkipped, ErrNoGeometry
	}
	if slots := d.Shader.TextureSlotCount(); len(d.Textures) > slots {
		err := fmt.Errorf("%w: shader %q has %d, draw uses %d", ErrTooManyTextures, d.Shader.Key(), slots, len(d.Textures))
		log.Error("draw skipped", "shader", d.Shader.Key(), "error", err)
		return SubmitSkipped, err
	}

	if err := s.backend.BindGeometry(d.Geometry); err != nil {
		return s.skip(d, "bind geometry", err)
	}
	if err := s.backend.BindShaderProgram(d.Shader); err != nil {
		return s.skip(d, "bind shader", err)
	}
	if err := s.uploadUniforms(d); err != nil {
		return s.skip(d, "upload uniforms", err)
	}
	for i, tex := range d.Textures {
		unit, ok := d.Shader.TextureUnit(i)
		if !ok {
			return s.skip(d, "bind texture", fmt.Errorf("%w: no texture unit for slot %d", ErrTooManyTextures, i))
		}
		if err := s.backend.BindTextureToSlot(unit, tex); err != nil {
			return s.skip(d, "bind texture", err)
		}
	}

	result := SubmitDrawn
	if !d.Geometry.HasIndexBuffer() || d.Geometry.VertexBufferCount() == 0 {
		log.Warn("drawing geometry with empty buffers",
			"geometry", d.Geometry.Label(),
			"shader", d.Shader.Key(),
			"index_buffer", d.Geometry.HasIndexBuffer(),
			"vertex_buffers", d.Geometry.VertexBufferCount())
		result = SubmitDegraded
	}

	if err := s.backend.IssueIndexedDraw(d.Geometry, d.Geometry.IndexCount()); err != nil {
		return s.skip(d, "draw", err)
	}
	return result, nil
}

func (s *Submitter) skip(d batcher.DrawDescriptor, stage string, err error) (SubmitResult, error) {
	logger.Logger().Error("draw skipped", "stage", stage, "shader", d.Shader.Key(), "geometry", d.Geometry.Label(), "error", err)
	return SubmitSkipped, fmt.Errorf("%s: %w", stage, err)
}

func (s *Submitter) uploadUniforms(d batcher.DrawDescriptor) error {
	if d.Shader.HasUniformBlock(renderer.UniformBlockView) {
		view := renderer.ViewUniform{
			Model:      d.Transform.Matrix(),
			Projection: mgl32.Ident4(),
			View:       mgl32.Ident4(),
		}
		if d.Camera != nil {
			view.Projection = d.Camera.ProjectionMatrix()
			view.View = d.Camera.ViewMatrix()
		}
		if err := s.backend.UploadUniformBlock(renderer.UniformBlockView, view.Marshal()); err != nil {
			return err
		}
	}
	if d.Shader.HasUniformBlock(renderer.UniformBlockLighting) {
		if err := s.backend.UploadUniformBlock(renderer.UniformBlockLighting, s.lighting.Marshal()); err != nil {
			return err
		}
	}
	if d.Shader.HasUniformBlock(renderer.UniformBlockMaterial) {
		if err := s.backend.UploadUniformBlock(renderer.UniformBlockMaterial, s.material.Marshal()); err != nil {
			return err
		}
	}
	return nil
}

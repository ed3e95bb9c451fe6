// Package pipeline describes the render pipeline of one shader program: its fixed-function state, the
// vertex buffer layout it consumes and the bind group layouts reflected from the shader.
package pipeline

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	// key is the unique identifier for this pipeline, used for caching and lookups
	key    string
	shader shader.Shader
	schema renderer.VertexSchema

	// renderPipeline and bindGroupLayouts are GPU objects created by the backend, nil until then
	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline holds the configuration and GPU objects of a render pipeline for a single shader program.
// The defaults suit batched 2D quads: alpha blending on, depth test and depth writes off, no culling.
type Pipeline interface {
	// Key returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Shader returns the program this pipeline runs.
	//
	// Returns:
	//   - shader.Shader: the program
	Shader() shader.Shader

	// Schema returns the vertex layout fed to the vertex stage.
	//
	// Returns:
	//   - renderer.VertexSchema: the vertex schema
	Schema() renderer.VertexSchema

	// RenderPipeline returns the GPU render pipeline, or nil if it has not been created yet.
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayout returns the GPU layout of a bind group, or nil if the group is not declared.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	BindGroupLayout(group int) *wgpu.BindGroupLayout

	// BindGroupLayouts returns the GPU bind group layouts indexed by group.
	BindGroupLayouts() []*wgpu.BindGroupLayout

	DepthTestEnabled() bool
	DepthWriteEnabled() bool
	BlendEnabled() bool
	CullMode() wgpu.CullMode
	Topology() wgpu.PrimitiveTopology
	FrontFace() wgpu.FrontFace
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the GPU objects the backend created for this pipeline.
	//
	// Parameters:
	//   - rp: the render pipeline
	//   - layouts: the bind group layouts indexed by group
	SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout)

	// Release frees the GPU render pipeline and bind group layouts.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates the pipeline description for a shader program. The program's key is the pipeline key.
//
// Parameters:
//   - s: the program the pipeline runs
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline with the provided configuration
func NewPipeline(s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               s.Key(),
		shader:            s,
		schema:            renderer.SpriteVertexSchema,
		depthTestEnabled:  false,
		depthWriteEnabled: false,
		blendEnabled:      true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Schema() renderer.VertexSchema {
	return p.schema
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayout(group int) *wgpu.BindGroupLayout {
	if group < 0 || group >= len(p.bindGroupLayouts) {
		return nil
	}
	return p.bindGroupLayouts[group]
}

func (p *pipeline) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout) {
	p.renderPipeline = rp
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	for i, l := range p.bindGroupLayouts {
		if l != nil {
			l.Release()
			p.bindGroupLayouts[i] = nil
		}
	}
	p.bindGroupLayouts = nil
}

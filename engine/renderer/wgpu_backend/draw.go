package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// binding is the state staged for the next draw. Uniform and texture data are applied to the drawn
// geometry's own providers when the draw is issued.
type binding struct {
	program  shader.Shader
	pipeline pipeline.Pipeline
	geometry *geometry
	uniforms map[string][]byte
	textures map[int]*Texture
}

func (b *Backend) state() *binding {
	if b.bound == nil {
		b.bound = &binding{
			uniforms: make(map[string][]byte),
			textures: make(map[int]*Texture),
		}
	}
	return b.bound
}

func (b *Backend) BindGeometry(g renderer.Geometry) error {
	geo, err := b.asGeometry(g)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state().geometry = geo
	return nil
}

// BindShaderProgram binds p, creating its render pipeline on first use.
func (b *Backend) BindShaderProgram(p renderer.Program) error {
	if p == nil {
		return renderer.ErrNilProgram
	}
	s, ok := p.(shader.Shader)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedProgram, p.Key())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	pl, ok := b.pipelines[p]
	if !ok {
		var err error
		pl, err = b.createPipeline(s)
		if err != nil {
			return fmt.Errorf("wgpu_backend: pipeline %q: %w", s.Key(), err)
		}
		b.pipelines[p] = pl
	}

	st := b.state()
	if st.program != s {
		clear(st.uniforms)
		clear(st.textures)
	}
	st.program = s
	st.pipeline = pl
	return nil
}

func (b *Backend) createPipeline(s shader.Shader) (pipeline.Pipeline, error) {
	if b.surfaceFormat == nil {
		return nil, ErrNotConfigured
	}
	p := pipeline.NewPipeline(s, b.pipelineOptions...)
	if err := s.Validate(p.Schema()); err != nil {
		return nil, err
	}
	vertexLayout, err := pipeline.VertexBufferLayout(p.Schema())
	if err != nil {
		return nil, err
	}
	descriptors, err := pipeline.BindGroupLayoutDescriptors(s)
	if err != nil {
		return nil, err
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	bindGroupLayouts := make([]*wgpu.BindGroupLayout, len(descriptors))
	for g := range descriptors {
		layout, layoutErr := b.device.CreateBindGroupLayout(&descriptors[g])
		if layoutErr != nil {
			for _, l := range bindGroupLayouts[:g] {
				l.Release()
			}
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}
	// the pipeline owns the layouts from here on, including on the error paths below
	p.SetRenderPipeline(nil, bindGroupLayouts)

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Key(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		p.Release()
		return nil, err
	}
	defer pipelineLayout.Release()

	colorTarget := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		colorTarget.Blend = p.BlendState()
	}
	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{colorTarget},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		p.Release()
		return nil, err
	}
	p.SetRenderPipeline(created, bindGroupLayouts)

	logger.Logger().Debug("pipeline created", "program", s.Key(), "groups", len(bindGroupLayouts))
	return p, nil
}

// UploadUniformBlock stages the block for the next draw. It is written to the drawn geometry's uniform buffer.
func (b *Backend) UploadUniformBlock(name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state()
	if st.program == nil {
		return renderer.ErrNoProgramBound
	}
	block, ok := st.program.UniformBlock(name)
	if !ok {
		return fmt.Errorf("%w: %q in %s", renderer.ErrUnknownUniformBlock, name, st.program.Key())
	}
	if limit := uniformBufferSize(block.Size); block.Size > 0 && uint64(len(data)) > limit {
		return fmt.Errorf("wgpu_backend: uniform block %q holds %d bytes, got %d", name, limit, len(data))
	}
	st.uniforms[name] = append(st.uniforms[name][:0], data...)
	return nil
}

// BindTextureToSlot stages tex for the texture binding unit of the bound program's texture group.
func (b *Backend) BindTextureToSlot(unit int, tex texture.Texture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.state()
	if st.program == nil {
		return renderer.ErrNoProgramBound
	}
	if !isTextureUnit(st.program, unit) {
		return fmt.Errorf("wgpu_backend: %d is not a texture unit of %s", unit, st.program.Key())
	}
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return fmt.Errorf("wgpu_backend: texture %T was not created by this backend", tex)
	}
	st.textures[unit] = t
	return nil
}

// uniformBufferSize rounds a binding's minimum size up to the 16-byte granularity of uniform buffers.
func uniformBufferSize(size uint64) uint64 {
	return max((size+15)&^15, 16)
}

func isTextureUnit(p renderer.Program, unit int) bool {
	for slot := 0; slot < p.TextureSlotCount(); slot++ {
		if u, ok := p.TextureUnit(slot); ok && u == unit {
			return true
		}
	}
	return false
}

// IssueIndexedDraw applies the staged uniforms and textures to g's bind groups and encodes the draw into the
// frame's render pass. Staged textures are cleared afterwards; staged uniforms stay until rebound.
func (b *Backend) IssueIndexedDraw(g renderer.Geometry, indexCount int) error {
	geo, err := b.asGeometry(g)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	st := b.state()
	if st.program == nil || st.pipeline == nil {
		return renderer.ErrNoProgramBound
	}
	if geo.schema.Stride() != st.pipeline.Schema().Stride() {
		return fmt.Errorf("wgpu_backend: geometry %q stride %d does not match pipeline %q stride %d",
			geo.label, geo.schema.Stride(), st.pipeline.Key(), st.pipeline.Schema().Stride())
	}
	if geo.VertexBufferCount() == 0 || !geo.HasIndexBuffer() || indexCount <= 0 {
		// nothing to rasterize; keep the call cheap
		logger.Logger().Debug("draw skipped, geometry empty", "geometry", geo.label)
		return nil
	}
	if indexCount > geo.IndexCount() {
		indexCount = geo.IndexCount()
	}

	providers, err := b.groupProviders(geo, st)
	if err != nil {
		return err
	}
	for _, p := range providers {
		if err := b.applyGroup(p, st); err != nil {
			return err
		}
	}
	clear(st.textures)

	b.framePass.SetPipeline(st.pipeline.RenderPipeline())
	for i, p := range providers {
		b.framePass.SetBindGroup(uint32(i), p.BindGroup(), nil)
	}
	b.framePass.SetVertexBuffer(0, geo.mesh.VertexBuffer(), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(geo.mesh.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(indexCount), 1, 0, 0, 0)
	return nil
}

// groupProviders returns the bind group providers of geo for the bound program, creating them on first use.
func (b *Backend) groupProviders(geo *geometry, st *binding) ([]bind_group_provider.BindGroupProvider, error) {
	if providers, ok := geo.groups[st.program]; ok {
		return providers, nil
	}
	layouts := st.pipeline.BindGroupLayouts()
	providers := make([]bind_group_provider.BindGroupProvider, len(layouts))
	for g, layout := range layouts {
		providers[g] = bind_group_provider.NewBindGroupProvider(
			fmt.Sprintf("%s %s group %d", geo.label, st.program.Key(), g),
			bind_group_provider.WithGroup(g),
			bind_group_provider.WithBindGroupLayout(layout),
		)
	}
	geo.groups[st.program] = providers
	return providers, nil
}

// applyGroup writes staged data into the provider's resources and rebuilds its bind group if anything changed.
func (b *Backend) applyGroup(p bind_group_provider.BindGroupProvider, st *binding) error {
	bindings := st.program.GroupBindings(p.Group())
	var writes []bind_group_provider.BufferWrite
	for _, bd := range bindings {
		switch bd.Kind {
		case shader.ResourceUniform, shader.ResourceStorage:
			buf := p.Buffer(bd.Binding)
			if buf == nil {
				usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				if bd.Kind == shader.ResourceStorage {
					usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				}
				size := uniformBufferSize(bd.Size)
				created, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: p.Label() + " " + bd.Name,
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return fmt.Errorf("wgpu_backend: create %s buffer %q: %w", bd.Kind, bd.Name, err)
				}
				p.SetBuffer(bd.Binding, created)
				buf = created
			}
			if data, ok := st.uniforms[bd.Name]; ok && bd.Kind == shader.ResourceUniform && len(data) > 0 {
				writes = append(writes, bind_group_provider.BufferWrite{Provider: p, Binding: bd.Binding, Data: data})
			}
		case shader.ResourceTexture:
			view, err := b.textureView(st, bd)
			if err != nil {
				return err
			}
			p.SetTextureView(bd.Binding, view)
		case shader.ResourceSampler:
			s, err := b.spriteSampler()
			if err != nil {
				return err
			}
			p.SetSampler(bd.Binding, s)
		default:
			return fmt.Errorf("wgpu_backend: %s binding %q is not supported", bd.Kind, bd.Name)
		}
	}

	for _, w := range writes {
		b.queue.WriteBuffer(w.Buffer(), w.Offset, w.Padded())
	}

	if !p.Dirty() {
		return nil
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(bindings))
	for _, bd := range bindings {
		entry := wgpu.BindGroupEntry{Binding: uint32(bd.Binding)}
		switch {
		case bd.IsBuffer():
			entry.Buffer = p.Buffer(bd.Binding)
			entry.Offset = 0
			entry.Size = wgpu.WholeSize
		case bd.Kind == shader.ResourceTexture:
			entry.TextureView = p.TextureView(bd.Binding)
		case bd.Kind == shader.ResourceSampler:
			entry.Sampler = p.Sampler(bd.Binding)
		}
		entries = append(entries, entry)
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.Label() + " Bind Group",
		Layout:  p.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		return err
	}
	p.SetBindGroup(bindGroup)
	return nil
}

// textureView returns the view staged for a texture binding, or the fallback view when no batch texture
// occupies it.
func (b *Backend) textureView(st *binding, bd shader.Binding) (*wgpu.TextureView, error) {
	if bd.Group == st.program.TextureGroup() {
		if t, ok := st.textures[bd.Binding]; ok {
			return t.View(), nil
		}
	}
	fallback, err := b.fallbackTexture()
	if err != nil {
		return nil, err
	}
	return fallback.View(), nil
}

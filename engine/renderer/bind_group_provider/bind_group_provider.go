// Package bind_group_provider holds the GPU resources the wgpu backend keeps per geometry: the vertex and
// index buffers of a batch and, per bind group of its program, the uniform buffers, texture views,
// sampler and the bind group built from them.
package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string
	// group is the bind group index this provider fills, -1 for a mesh-only provider.
	group int

	// bindGroupLayout is shared with the pipeline and is not released by the provider.
	bindGroupLayout *wgpu.BindGroupLayout
	bindGroup       *wgpu.BindGroup
	// dirty is set whenever a resource changes, so the bind group must be recreated before the next draw.
	dirty bool

	// buffers are owned by the provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textureViews and samplers are owned by their textures and the backend, keyed by binding index.
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler

	vertexBuffer   *wgpu.Buffer
	vertexCapacity uint64
	indexBuffer    *wgpu.Buffer
	indexCapacity  uint64
	indexCount     int
}

// BindGroupProvider holds the GPU resources of one bind group, or of one mesh when group is -1.
//
// Usage pattern:
//  1. The backend creates a provider per geometry and per bind group of the bound program
//  2. Buffers, texture views and samplers are set as the program's resources are uploaded
//  3. Before a draw the backend rebuilds the bind group if Dirty reports a change
//  4. The draw binds BindGroup, and the mesh provider's vertex and index buffers
type BindGroupProvider interface {
	// Release releases the buffers and the bind group owned by this provider.
	// Texture views, samplers and the layout belong to other owners and are only dropped.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Group returns the bind group index this provider fills, -1 for a mesh provider.
	Group() int

	// BindGroup returns the created bind group for shader binding.
	// Returns nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group is created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Dirty reports whether a resource changed since the bind group was last set.
	//
	// Returns:
	//   - bool: true if the bind group must be recreated
	Dirty() bool

	// Buffer returns the buffer at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the GPU texture view for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the texture view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for a specific binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	VertexBuffer() *wgpu.Buffer

	// VertexCapacity returns the byte size of the current vertex buffer.
	VertexCapacity() uint64

	// IndexBuffer returns the GPU index buffer, or nil if not initialized.
	IndexBuffer() *wgpu.Buffer

	// IndexCapacity returns the byte size of the current index buffer.
	IndexCapacity() uint64

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup stores a freshly created bind group, releasing the previous one and clearing Dirty.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout sets the layout the bind group is created against.
	//
	// Parameters:
	//   - bgl: the bind group layout
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores a buffer at a binding, releasing a different buffer previously stored there.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores a GPU texture view for a specific binding. Marks the provider dirty if the view changed.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores a GPU sampler for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// SetVertexBuffer replaces the vertex buffer, releasing the previous one.
	//
	// Parameters:
	//   - buf: the created vertex buffer
	//   - capacity: its size in bytes
	SetVertexBuffer(buf *wgpu.Buffer, capacity uint64)

	// SetIndexBuffer replaces the index buffer, releasing the previous one.
	//
	// Parameters:
	//   - buf: the created index buffer
	//   - capacity: its size in bytes
	SetIndexBuffer(buf *wgpu.Buffer, capacity uint64)

	// SetIndexCount sets the number of indices for draw calls.
	//
	// Parameters:
	//   - count: the index count
	SetIndexCount(count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label of the provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		group:        -1,
		dirty:        true,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() int {
	return p.group
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Dirty() bool {
	return p.dirty || p.bindGroup == nil
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) VertexCapacity() uint64 {
	return p.vertexCapacity
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCapacity() uint64 {
	return p.indexCapacity
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
	p.dirty = false
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	if p.bindGroupLayout != bgl {
		p.dirty = true
	}
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	if p.buffers[binding] != buf {
		p.dirty = true
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	if p.textureViews[binding] != tv {
		p.dirty = true
	}
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if p.samplers[binding] != s {
		p.dirty = true
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer, capacity uint64) {
	if p.vertexBuffer != nil && p.vertexBuffer != buf {
		p.vertexBuffer.Release()
	}
	p.vertexBuffer = buf
	p.vertexCapacity = capacity
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer, capacity uint64) {
	if p.indexBuffer != nil && p.indexBuffer != buf {
		p.indexBuffer.Release()
	}
	p.indexBuffer = buf
	p.indexCapacity = capacity
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.textureViews)
	clear(p.samplers)

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	p.bindGroupLayout = nil
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.vertexCapacity, p.indexCapacity, p.indexCount = 0, 0, 0
	p.dirty = true
}

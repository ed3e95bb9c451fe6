package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// geometry is a renderer.Geometry backed by a mesh provider. It also owns one set of bind group providers
// per program it has been drawn with, so uniforms written for this geometry never alias another draw.
type geometry struct {
	label  string
	schema renderer.VertexSchema

	mesh        bind_group_provider.BindGroupProvider
	vertexCount int
	released    bool

	groups map[renderer.Program][]bind_group_provider.BindGroupProvider
}

var _ renderer.Geometry = &geometry{}

func (g *geometry) Label() string {
	return g.label
}

func (g *geometry) Schema() renderer.VertexSchema {
	return g.schema
}

func (g *geometry) VertexCount() int {
	return g.vertexCount
}

func (g *geometry) IndexCount() int {
	return g.mesh.IndexCount()
}

func (g *geometry) VertexBufferCount() int {
	if g.mesh.VertexBuffer() == nil || g.vertexCount == 0 {
		return 0
	}
	return 1
}

func (g *geometry) HasIndexBuffer() bool {
	return g.mesh.IndexBuffer() != nil && g.mesh.IndexCount() > 0
}

func (g *geometry) Release() {
	if g.released {
		return
	}
	g.released = true
	for key, providers := range g.groups {
		for _, p := range providers {
			if p != nil {
				p.Release()
			}
		}
		delete(g.groups, key)
	}
	g.mesh.Release()
}

// growCapacity returns the buffer size to allocate for needed bytes when the current buffer holds current
// bytes. The result at least doubles the current size and is a multiple of 4, as buffer writes require.
func growCapacity(current, needed uint64) uint64 {
	if needed <= current {
		return current
	}
	c := current * 2
	if c < needed {
		c = needed
	}
	return (c + 3) &^ 3
}

// CreateGeometryHandle creates an empty geometry. Buffers are allocated on the first upload.
func (b *Backend) CreateGeometryHandle(label string, schema renderer.VertexSchema) (renderer.Geometry, error) {
	if schema.Len() == 0 {
		return nil, fmt.Errorf("wgpu_backend: geometry %q has an empty vertex schema", label)
	}
	b.mu.Lock()
	b.geometries++
	b.mu.Unlock()
	logger.Logger().Debug("geometry created", "label", label, "stride", schema.Stride())
	return &geometry{
		label:  label,
		schema: schema,
		mesh:   bind_group_provider.NewBindGroupProvider(label + " mesh"),
		groups: make(map[renderer.Program][]bind_group_provider.BindGroupProvider),
	}, nil
}

func (b *Backend) asGeometry(g renderer.Geometry) (*geometry, error) {
	if g == nil {
		return nil, renderer.ErrNilGeometry
	}
	geo, ok := g.(*geometry)
	if !ok {
		return nil, fmt.Errorf("wgpu_backend: geometry %q was not created by this backend", g.Label())
	}
	if geo.released {
		return nil, renderer.ErrReleased
	}
	return geo, nil
}

// UploadVertexData writes data into the geometry's vertex buffer, growing it when data does not fit.
func (b *Backend) UploadVertexData(g renderer.Geometry, data []byte, vertexCount int) error {
	geo, err := b.asGeometry(g)
	if err != nil {
		return err
	}
	if len(data) == 0 || vertexCount == 0 {
		geo.vertexCount = 0
		return nil
	}

	buf, size, err := b.ensureBuffer(geo.label+" vertices", geo.mesh.VertexBuffer(), geo.mesh.VertexCapacity(), uint64(len(data)),
		wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	if buf != geo.mesh.VertexBuffer() {
		geo.mesh.SetVertexBuffer(buf, size)
	}
	b.queue.WriteBuffer(buf, 0, padTo4(data))
	geo.vertexCount = vertexCount
	return nil
}

// UploadIndexData writes 32-bit indices into the geometry's index buffer, growing it when data does not fit.
func (b *Backend) UploadIndexData(g renderer.Geometry, data []byte, indexCount int) error {
	geo, err := b.asGeometry(g)
	if err != nil {
		return err
	}
	if len(data) == 0 || indexCount == 0 {
		geo.mesh.SetIndexCount(0)
		return nil
	}

	buf, size, err := b.ensureBuffer(geo.label+" indices", geo.mesh.IndexBuffer(), geo.mesh.IndexCapacity(), uint64(len(data)),
		wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	if buf != geo.mesh.IndexBuffer() {
		geo.mesh.SetIndexBuffer(buf, size)
	}
	b.queue.WriteBuffer(buf, 0, padTo4(data))
	geo.mesh.SetIndexCount(indexCount)
	return nil
}

// ensureBuffer returns current when it can hold needed bytes, otherwise a new buffer sized by growCapacity,
// along with the capacity of the returned buffer.
// The caller hands the new buffer to its provider, which releases the old one.
func (b *Backend) ensureBuffer(label string, current *wgpu.Buffer, capacity, needed uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64, error) {
	if current != nil && needed <= capacity {
		return current, capacity, nil
	}
	size := growCapacity(capacity, needed)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu_backend: create buffer %q: %w", label, err)
	}
	logger.Logger().Debug("buffer grown", "label", label, "from", capacity, "to", size)
	return buf, size, nil
}

// padTo4 pads data with zero bytes to a multiple of 4, which queue writes require.
func padTo4(data []byte) []byte {
	return bind_group_provider.BufferWrite{Data: data}.Padded()
}

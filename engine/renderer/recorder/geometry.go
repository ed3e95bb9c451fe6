package recorder

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// Geometry is the recorder's in-memory renderer.Geometry. The vertex and index storage behaves like a GPU
// buffer: it is reused across uploads and only reallocated when an upload outgrows its capacity.
type Geometry struct {
	owner  *Recorder
	label  string
	schema renderer.VertexSchema

	vertices    []byte
	indices     []byte
	vertexCount int
	indexCount  int

	allocations int
	released    bool
}

var _ renderer.Geometry = &Geometry{}

func (g *Geometry) Label() string {
	return g.label
}

func (g *Geometry) Schema() renderer.VertexSchema {
	return g.schema
}

func (g *Geometry) VertexCount() int {
	return g.vertexCount
}

func (g *Geometry) IndexCount() int {
	return g.indexCount
}

func (g *Geometry) VertexBufferCount() int {
	if len(g.vertices) == 0 {
		return 0
	}
	return 1
}

func (g *Geometry) HasIndexBuffer() bool {
	return len(g.indices) > 0
}

func (g *Geometry) Release() {
	if g.released {
		return
	}
	g.released = true
	g.vertices = nil
	g.indices = nil
	if g.owner != nil {
		g.owner.record(Command{Type: CmdReleaseGeometry, Name: g.label, Geometry: g})
	}
}

// Released reports whether Release was called.
func (g *Geometry) Released() bool {
	return g.released
}

// Allocations returns how many times the vertex or index storage had to grow.
//
// Returns:
//   - int: the number of storage reallocations since creation
func (g *Geometry) Allocations() int {
	return g.allocations
}

// VertexBytes returns the bytes of the last vertex upload.
func (g *Geometry) VertexBytes() []byte {
	return g.vertices
}

// IndexBytes returns the bytes of the last index upload.
func (g *Geometry) IndexBytes() []byte {
	return g.indices
}

func (g *Geometry) writeVertices(data []byte, count int) {
	if cap(g.vertices) < len(data) {
		g.allocations++
	}
	g.vertices = common.GrowBytes(g.vertices, len(data))
	copy(g.vertices, data)
	g.vertexCount = count
}

func (g *Geometry) writeIndices(data []byte, count int) {
	if cap(g.indices) < len(data) {
		g.allocations++
	}
	g.indices = common.GrowBytes(g.indices, len(data))
	copy(g.indices, data)
	g.indexCount = count
}

package recorder

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

// Recorder is a headless renderer.Backend and texture.Creator. It validates calls the way a GPU backend
// would (bound program, known uniform blocks, texture units) and records each one as a Command.
// A Recorder is not safe for concurrent use.
type Recorder struct {
	commands  []Command
	failures  map[CommandType]error
	copyBytes bool

	boundGeometry renderer.Geometry
	boundProgram  renderer.Program
	geometries    int
}

var _ renderer.Backend = &Recorder{}
var _ texture.Creator = &Recorder{}

// New creates a Recorder.
//
// Parameters:
//   - options: a variadic list of RecorderBuilderOption functions
//
// Returns:
//   - *Recorder: the new recorder
func New(options ...RecorderBuilderOption) *Recorder {
	r := &Recorder{
		failures:  make(map[CommandType]error),
		copyBytes: true,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Commands returns the recorded commands in call order. The slice must not be modified.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Count returns how many commands of the given type were recorded.
//
// Parameters:
//   - cmd: the command type to count
//
// Returns:
//   - int: the number of recorded commands of that type
func (r *Recorder) Count(cmd CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type == cmd {
			n++
		}
	}
	return n
}

// Filter returns the recorded commands of the given type in call order.
func (r *Recorder) Filter(cmd CommandType) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Type == cmd {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops every recorded command and the bound geometry and program. Geometries stay valid.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.boundGeometry = nil
	r.boundProgram = nil
}

// BoundProgram returns the program of the last successful BindShaderProgram.
func (r *Recorder) BoundProgram() renderer.Program {
	return r.boundProgram
}

func (r *Recorder) record(c Command) error {
	r.commands = append(r.commands, c)
	return r.failures[c.Type]
}

func (r *Recorder) bytes(data []byte) []byte {
	if !r.copyBytes || len(data) == 0 {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func (r *Recorder) geometry(g renderer.Geometry) (*Geometry, error) {
	if g == nil {
		return nil, renderer.ErrNilGeometry
	}
	rg, ok := g.(*Geometry)
	if !ok || rg.owner != r {
		return nil, fmt.Errorf("recorder: geometry %q was not created by this recorder", g.Label())
	}
	if rg.released {
		return nil, fmt.Errorf("geometry %q: %w", rg.label, renderer.ErrReleased)
	}
	return rg, nil
}

func (r *Recorder) CreateGeometryHandle(label string, schema renderer.VertexSchema) (renderer.Geometry, error) {
	if label == "" {
		label = fmt.Sprintf("geometry_%d", r.geometries)
	}
	g := &Geometry{owner: r, label: label, schema: schema}
	if err := r.record(Command{Type: CmdCreateGeometry, Name: label, Geometry: g}); err != nil {
		return nil, err
	}
	r.geometries++
	return g, nil
}

func (r *Recorder) UploadVertexData(g renderer.Geometry, data []byte, vertexCount int) error {
	rg, err := r.geometry(g)
	if err != nil {
		return err
	}
	if err := r.record(Command{Type: CmdUploadVertexData, Name: rg.label, Count: vertexCount, Bytes: r.bytes(data), Geometry: rg}); err != nil {
		return err
	}
	if stride := rg.schema.Stride(); stride > 0 && len(data) != vertexCount*stride {
		return fmt.Errorf("recorder: %d vertex bytes do not match %d vertices of stride %d", len(data), vertexCount, stride)
	}
	rg.writeVertices(data, vertexCount)
	return nil
}

func (r *Recorder) UploadIndexData(g renderer.Geometry, data []byte, indexCount int) error {
	rg, err := r.geometry(g)
	if err != nil {
		return err
	}
	if err := r.record(Command{Type: CmdUploadIndexData, Name: rg.label, Count: indexCount, Bytes: r.bytes(data), Geometry: rg}); err != nil {
		return err
	}
	if len(data) != indexCount*4 {
		return fmt.Errorf("recorder: %d index bytes do not match %d uint32 indices", len(data), indexCount)
	}
	rg.writeIndices(data, indexCount)
	return nil
}

func (r *Recorder) BindGeometry(g renderer.Geometry) error {
	rg, err := r.geometry(g)
	if err != nil {
		return err
	}
	if err := r.record(Command{Type: CmdBindGeometry, Name: rg.label, Geometry: rg}); err != nil {
		return err
	}
	r.boundGeometry = rg
	return nil
}

func (r *Recorder) BindShaderProgram(p renderer.Program) error {
	if p == nil {
		return renderer.ErrNilProgram
	}
	if err := r.record(Command{Type: CmdBindShaderProgram, Name: p.Key(), Program: p}); err != nil {
		return err
	}
	r.boundProgram = p
	return nil
}

func (r *Recorder) UploadUniformBlock(name string, data []byte) error {
	if r.boundProgram == nil {
		return renderer.ErrNoProgramBound
	}
	if !r.boundProgram.HasUniformBlock(name) {
		return fmt.Errorf("%q in program %q: %w", name, r.boundProgram.Key(), renderer.ErrUnknownUniformBlock)
	}
	return r.record(Command{Type: CmdUploadUniformBlock, Name: name, Bytes: r.bytes(data), Program: r.boundProgram})
}

func (r *Recorder) BindTextureToSlot(unit int, tex texture.Texture) error {
	if r.boundProgram == nil {
		return renderer.ErrNoProgramBound
	}
	if tex == nil {
		return fmt.Errorf("recorder: nil texture for unit %d", unit)
	}
	if !programHasUnit(r.boundProgram, unit) {
		return fmt.Errorf("recorder: program %q has no texture unit %d", r.boundProgram.Key(), unit)
	}
	return r.record(Command{Type: CmdBindTextureToSlot, Name: tex.Label(), Slot: unit, Texture: tex, Program: r.boundProgram})
}

func (r *Recorder) IssueIndexedDraw(g renderer.Geometry, indexCount int) error {
	rg, err := r.geometry(g)
	if err != nil {
		return err
	}
	if r.boundProgram == nil {
		return renderer.ErrNoProgramBound
	}
	return r.record(Command{Type: CmdIssueIndexedDraw, Name: rg.label, Count: indexCount, Geometry: rg, Program: r.boundProgram})
}

// CreateTexture implements texture.Creator by keeping the staging pixels in memory.
//
// Parameters:
//   - label: the texture label
//   - data: the RGBA8 staging data
//
// Returns:
//   - texture.Texture: the new *Texture
//   - error: an error if data is malformed
func (r *Recorder) CreateTexture(label string, data common.TextureStagingData) (texture.Texture, error) {
	if !data.Valid() {
		return nil, fmt.Errorf("recorder: texture %q: %d bytes for %dx%d RGBA8", label, len(data.Pixels), data.Width, data.Height)
	}
	t := newTextureFromStaging(label, data)
	if err := r.record(Command{Type: CmdCreateTexture, Name: label, Texture: t}); err != nil {
		return nil, err
	}
	return t, nil
}

func programHasUnit(p renderer.Program, unit int) bool {
	for slot := 0; slot < p.TextureSlotCount(); slot++ {
		if u, ok := p.TextureUnit(slot); ok && u == unit {
			return true
		}
	}
	return false
}

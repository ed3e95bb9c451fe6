package wgpu_backend

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestGrowCapacity(t *testing.T) {
	tests := []struct {
		name    string
		current uint64
		needed  uint64
		want    uint64
	}{
		{"fits", 256, 100, 256},
		{"exact", 256, 256, 256},
		{"from empty", 0, 96, 96},
		{"from empty unaligned", 0, 10, 12},
		{"doubles", 256, 300, 512},
		{"needed beyond double", 256, 1000, 1000},
		{"aligns after max", 100, 201, 204},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := growCapacity(tt.current, tt.needed)
			if got != tt.want {
				t.Errorf("growCapacity(%d, %d) = %d, want %d", tt.current, tt.needed, got, tt.want)
			}
			if got%4 != 0 && got != tt.current {
				t.Errorf("growCapacity(%d, %d) = %d is not 4-byte aligned", tt.current, tt.needed, got)
			}
		})
	}
}

func TestUniformBufferSize(t *testing.T) {
	for size, want := range map[uint64]uint64{0: 16, 12: 16, 16: 16, 64: 64, 100: 112, 192: 192} {
		if got := uniformBufferSize(size); got != want {
			t.Errorf("uniformBufferSize(%d) = %d, want %d", size, got, want)
		}
	}
}

func TestPadTo4(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	got := padTo4(data)
	if len(got) != 8 {
		t.Fatalf("len = %d, want 8", len(got))
	}
	if got[4] != 5 || got[5] != 0 || got[7] != 0 {
		t.Errorf("padTo4 = %v", got)
	}

	aligned := []byte{1, 2, 3, 4}
	if got := padTo4(aligned); &got[0] != &aligned[0] {
		t.Error("aligned input should be returned as is")
	}
}

func TestPresentMode(t *testing.T) {
	if got := wgpuPresentMode(PresentModeVSync); got != wgpu.PresentModeFifo {
		t.Errorf("vsync = %v, want Fifo", got)
	}
	if got := wgpuPresentMode(PresentModeUncapped); got != wgpu.PresentModeImmediate {
		t.Errorf("uncapped = %v, want Immediate", got)
	}
}

func TestBuilderOptions(t *testing.T) {
	b := &Backend{}
	for _, opt := range []BackendBuilderOption{
		WithForceFallbackAdapter(true),
		WithMSAA(0),
		WithPresentMode(PresentModeUncapped),
		WithClearColor(1, 0.5, 0.25, 1),
	} {
		opt(b)
	}
	if !b.forceFallbackAdapter {
		t.Error("forceFallbackAdapter not set")
	}
	if b.sampleCount != MSAAOff {
		t.Errorf("sampleCount = %d, want MSAAOff", b.sampleCount)
	}
	if b.presentMode != wgpu.PresentModeImmediate {
		t.Errorf("presentMode = %v", b.presentMode)
	}
	if b.clearColor != (wgpu.Color{R: 1, G: 0.5, B: 0.25, A: 1}) {
		t.Errorf("clearColor = %+v", b.clearColor)
	}
}

func TestIsTextureUnit(t *testing.T) {
	s := shader.NewSpriteShader()
	for slot := 0; slot < s.TextureSlotCount(); slot++ {
		unit, _ := s.TextureUnit(slot)
		if !isTextureUnit(s, unit) {
			t.Errorf("unit %d of slot %d not recognized", unit, slot)
		}
	}
	if isTextureUnit(s, 8) {
		t.Error("sampler binding 8 reported as a texture unit")
	}
}

type otherProgram struct{}

func (otherProgram) Key() string                 { return "other" }
func (otherProgram) TextureSlotCount() int       { return 0 }
func (otherProgram) TextureUnit(int) (int, bool) { return 0, false }
func (otherProgram) HasUniformBlock(string) bool { return false }

func newTestBackend() *Backend {
	return &Backend{pipelines: make(map[renderer.Program]pipeline.Pipeline)}
}

func TestBindShaderProgramErrors(t *testing.T) {
	b := newTestBackend()
	if err := b.BindShaderProgram(nil); !errors.Is(err, renderer.ErrNilProgram) {
		t.Errorf("nil program: err = %v", err)
	}
	if err := b.BindShaderProgram(&otherProgram{}); !errors.Is(err, ErrUnsupportedProgram) {
		t.Errorf("foreign program: err = %v", err)
	}
	if err := b.BindShaderProgram(shader.NewSpriteShader()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("unconfigured surface: err = %v", err)
	}
}

func TestStagingRequiresProgram(t *testing.T) {
	b := newTestBackend()
	if err := b.UploadUniformBlock(renderer.UniformBlockView, make([]byte, 192)); !errors.Is(err, renderer.ErrNoProgramBound) {
		t.Errorf("UploadUniformBlock err = %v", err)
	}
	if err := b.BindTextureToSlot(0, &Texture{}); !errors.Is(err, renderer.ErrNoProgramBound) {
		t.Errorf("BindTextureToSlot err = %v", err)
	}
}

func TestStagingValidation(t *testing.T) {
	b := newTestBackend()
	s := shader.NewSpriteShader()
	b.state().program = s

	if err := b.UploadUniformBlock("shadow", []byte{0}); !errors.Is(err, renderer.ErrUnknownUniformBlock) {
		t.Errorf("unknown block: err = %v", err)
	}
	if err := b.UploadUniformBlock(renderer.UniformBlockMaterial, make([]byte, 1024)); err == nil {
		t.Error("oversized block accepted")
	}
	if err := b.UploadUniformBlock(renderer.UniformBlockMaterial, make([]byte, renderer.MaterialUniformSize)); err != nil {
		t.Errorf("material block: %v", err)
	}
	if got := len(b.state().uniforms[renderer.UniformBlockMaterial]); got != 16 {
		t.Errorf("staged %d bytes, want 16", got)
	}

	if err := b.BindTextureToSlot(8, &Texture{}); err == nil {
		t.Error("sampler binding accepted as a texture unit")
	}
	unit, _ := s.TextureUnit(0)
	if err := b.BindTextureToSlot(unit, nil); err == nil {
		t.Error("nil texture accepted")
	}
	tex := &Texture{label: "atlas"}
	if err := b.BindTextureToSlot(unit, tex); err != nil {
		t.Fatalf("BindTextureToSlot: %v", err)
	}
	if b.state().textures[unit] != tex {
		t.Error("texture not staged")
	}
}

func TestGeometryLifecycleWithoutUploads(t *testing.T) {
	b := newTestBackend()
	if _, err := b.CreateGeometryHandle("empty", renderer.VertexSchema{}); err == nil {
		t.Error("empty schema accepted")
	}

	g, err := b.CreateGeometryHandle("sprites", renderer.SpriteVertexSchema)
	if err != nil {
		t.Fatalf("CreateGeometryHandle: %v", err)
	}
	if g.Label() != "sprites" || g.Schema().Stride() != renderer.SpriteVertexSchema.Stride() {
		t.Errorf("geometry = %q stride %d", g.Label(), g.Schema().Stride())
	}
	if err := b.UploadVertexData(g, nil, 0); err != nil {
		t.Fatalf("empty vertex upload: %v", err)
	}
	if err := b.UploadIndexData(g, nil, 0); err != nil {
		t.Fatalf("empty index upload: %v", err)
	}
	if g.VertexBufferCount() != 0 || g.HasIndexBuffer() {
		t.Errorf("empty geometry reports %d vertex buffers, index buffer %v", g.VertexBufferCount(), g.HasIndexBuffer())
	}
	if err := b.BindGeometry(g); err != nil {
		t.Fatalf("BindGeometry: %v", err)
	}
	if err := b.IssueIndexedDraw(g, 6); !errors.Is(err, ErrNoFrame) {
		t.Errorf("draw outside frame: err = %v", err)
	}

	g.Release()
	g.Release()
	if err := b.BindGeometry(g); !errors.Is(err, renderer.ErrReleased) {
		t.Errorf("released geometry: err = %v", err)
	}
	if err := b.BindGeometry(nil); !errors.Is(err, renderer.ErrNilGeometry) {
		t.Errorf("nil geometry: err = %v", err)
	}
}

package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	s := shader.NewSpriteShader()
	p := NewPipeline(s)

	if p.Key() != s.Key() {
		t.Errorf("Key() = %q, want %q", p.Key(), s.Key())
	}
	if p.DepthTestEnabled() || p.DepthWriteEnabled() {
		t.Error("depth test and depth writes should be off by default")
	}
	if !p.BlendEnabled() || p.BlendState() == nil {
		t.Error("blending should be on by default")
	}
	if p.Schema().Stride() != renderer.SpriteVertexSchema.Stride() {
		t.Errorf("Schema().Stride() = %d, want %d", p.Schema().Stride(), renderer.SpriteVertexSchema.Stride())
	}

	p = NewPipeline(s, WithBlendEnabled(false), WithDepthTestEnabled(true), WithCullMode(wgpu.CullModeBack))
	if p.BlendState() != nil {
		t.Error("BlendState() should be nil when blending is disabled")
	}
	if !p.DepthTestEnabled() || p.CullMode() != wgpu.CullModeBack {
		t.Error("builder options were not applied")
	}
	if p.BindGroupLayout(0) != nil || p.RenderPipeline() != nil {
		t.Error("GPU objects should be nil before the backend creates them")
	}
}

func TestVertexBufferLayout(t *testing.T) {
	layout, err := VertexBufferLayout(renderer.SpriteVertexSchema)
	if err != nil {
		t.Fatalf("VertexBufferLayout() error = %v", err)
	}
	if layout.ArrayStride != 24 {
		t.Errorf("ArrayStride = %d, want 24", layout.ArrayStride)
	}
	want := []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatUint32, Offset: 20, ShaderLocation: 2},
	}
	if len(layout.Attributes) != len(want) {
		t.Fatalf("len(Attributes) = %d, want %d", len(layout.Attributes), len(want))
	}
	for i, a := range layout.Attributes {
		if a != want[i] {
			t.Errorf("Attributes[%d] = %+v, want %+v", i, a, want[i])
		}
	}
}

func TestBindGroupLayoutDescriptors(t *testing.T) {
	descs, err := BindGroupLayoutDescriptors(shader.NewSpriteShader())
	if err != nil {
		t.Fatalf("BindGroupLayoutDescriptors() error = %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("len = %d, want 2", len(descs))
	}

	uniforms := descs[0].Entries
	if len(uniforms) != 3 {
		t.Fatalf("group 0 has %d entries, want 3", len(uniforms))
	}
	if uniforms[0].Buffer.Type != wgpu.BufferBindingTypeUniform || uniforms[0].Buffer.MinBindingSize != renderer.ViewUniformSize {
		t.Errorf("view entry = %+v", uniforms[0].Buffer)
	}
	if uniforms[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Errorf("view visibility = %v", uniforms[0].Visibility)
	}

	textures := descs[1].Entries
	if len(textures) != shader.SpriteTextureSlots+1 {
		t.Fatalf("group 1 has %d entries, want %d", len(textures), shader.SpriteTextureSlots+1)
	}
	if textures[0].Texture.SampleType != wgpu.TextureSampleTypeFloat || textures[0].Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("texture entry = %+v", textures[0].Texture)
	}
	if last := textures[len(textures)-1]; last.Sampler.Type != wgpu.SamplerBindingTypeFiltering || last.Binding != 8 {
		t.Errorf("sampler entry = %+v", last)
	}
}

func TestBindGroupLayoutDescriptorRejectsStorageTextures(t *testing.T) {
	_, err := BindGroupLayoutDescriptor("x", []shader.Binding{{Name: "out", Kind: shader.ResourceStorageTexture}})
	if err == nil {
		t.Error("expected an error for a storage texture binding")
	}
}

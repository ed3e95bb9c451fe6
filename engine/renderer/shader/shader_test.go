package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

func TestSpriteShaderReflection(t *testing.T) {
	s := NewSpriteShader()

	if s.Key() != "sprite" {
		t.Errorf("Key() = %q, want sprite", s.Key())
	}
	if s.VertexEntryPoint() != "vs_main" || s.FragmentEntryPoint() != "fs_main" {
		t.Errorf("entry points = %q/%q, want vs_main/fs_main", s.VertexEntryPoint(), s.FragmentEntryPoint())
	}
	if s.Stages() != StageVertex|StageFragment {
		t.Errorf("Stages() = %s, want vertex|fragment", s.Stages())
	}
	if s.TextureSlotCount() != SpriteTextureSlots {
		t.Fatalf("TextureSlotCount() = %d, want %d", s.TextureSlotCount(), SpriteTextureSlots)
	}
	if s.TextureGroup() != 1 {
		t.Errorf("TextureGroup() = %d, want 1", s.TextureGroup())
	}
	for slot := 0; slot < SpriteTextureSlots; slot++ {
		unit, ok := s.TextureUnit(slot)
		if !ok || unit != slot {
			t.Errorf("TextureUnit(%d) = %d, %v, want %d, true", slot, unit, ok, slot)
		}
	}
	if _, ok := s.TextureUnit(SpriteTextureSlots); ok {
		t.Errorf("TextureUnit(%d) ok = true, want false", SpriteTextureSlots)
	}

	for _, name := range []string{renderer.UniformBlockView, renderer.UniformBlockLighting, renderer.UniformBlockMaterial} {
		if !s.HasUniformBlock(name) {
			t.Errorf("HasUniformBlock(%q) = false", name)
		}
	}
	view, _ := s.UniformBlock(renderer.UniformBlockView)
	if view.Size != renderer.ViewUniformSize {
		t.Errorf("view block size = %d, want %d", view.Size, renderer.ViewUniformSize)
	}
	lighting, _ := s.UniformBlock(renderer.UniformBlockLighting)
	if lighting.Size != renderer.LightingUniformSize {
		t.Errorf("lighting block size = %d, want %d", lighting.Size, renderer.LightingUniformSize)
	}

	if got := s.Groups(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Groups() = %v, want [0 1]", got)
	}
	textures := s.GroupBindings(1)
	if len(textures) != SpriteTextureSlots+1 {
		t.Fatalf("GroupBindings(1) has %d bindings, want %d", len(textures), SpriteTextureSlots+1)
	}
	if last := textures[len(textures)-1]; last.Kind != ResourceSampler || last.Binding != 8 {
		t.Errorf("last group 1 binding = %s@%d, want sampler@8", last.Kind, last.Binding)
	}

	if err := s.Validate(renderer.SpriteVertexSchema); err != nil {
		t.Errorf("Validate(SpriteVertexSchema) error = %v", err)
	}
}

func TestSpriteShaderInstancesAreDistinct(t *testing.T) {
	var a, b renderer.Program = NewSpriteShader(), NewSpriteShader()
	if a == b {
		t.Error("two NewSpriteShader calls returned the same program")
	}
}

func TestValidateRejectsMismatchedSchema(t *testing.T) {
	s := NewSpriteShader()
	schema := renderer.MustVertexSchema(
		renderer.VertexField{Name: renderer.AttributePosition, Format: renderer.VertexFormatFloat32x2},
		renderer.VertexField{Name: renderer.AttributeTexCoords, Format: renderer.VertexFormatFloat32x2},
		renderer.VertexField{Name: renderer.AttributeTextureIndex, Format: renderer.VertexFormatUint32},
	)
	if err := s.Validate(schema); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Validate() error = %v, want ErrSchemaMismatch", err)
	}

	short := renderer.MustVertexSchema(
		renderer.VertexField{Name: renderer.AttributePosition, Format: renderer.VertexFormatFloat32x3},
	)
	if err := s.Validate(short); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Validate(short) error = %v, want ErrSchemaMismatch", err)
	}
}

const plainSource = `
struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@group(0) @binding(0) var<uniform> view: mat4x4<f32>;
@group(2) @binding(3) var second: texture_2d<f32>;
@group(2) @binding(1) var first: texture_2d<f32>;
@group(2) @binding(2) var samp: sampler;
@group(3) @binding(0) var other: texture_2d<f32>;

@vertex
fn vmain(@location(0) position: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOut {
    var out: VertexOut;
    out.pos = view * vec4<f32>(position, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fmain(in: VertexOut) -> @location(0) vec4<f32> {
    return textureSample(first, samp, in.uv) * textureSample(second, samp, in.uv);
}
`

func TestTextureSlotsWithoutAnnotations(t *testing.T) {
	s, err := NewShader("plain", plainSource)
	if err != nil {
		t.Fatalf("NewShader() error = %v", err)
	}
	if s.TextureSlotCount() != 2 {
		t.Fatalf("TextureSlotCount() = %d, want 2", s.TextureSlotCount())
	}
	if unit, _ := s.TextureUnit(0); unit != 1 {
		t.Errorf("TextureUnit(0) = %d, want 1", unit)
	}
	if unit, _ := s.TextureUnit(1); unit != 3 {
		t.Errorf("TextureUnit(1) = %d, want 3", unit)
	}
	if s.TextureGroup() != 2 {
		t.Errorf("TextureGroup() = %d, want 2", s.TextureGroup())
	}

	inputs := s.VertexInputs()
	if len(inputs) != 2 || inputs[0].Format != renderer.VertexFormatFloat32x3 || inputs[1].Format != renderer.VertexFormatFloat32x2 {
		t.Errorf("VertexInputs() = %+v", inputs)
	}
	if !s.HasUniformBlock("view") {
		t.Error("HasUniformBlock(view) = false")
	}
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{
			name:   "no fragment",
			source: "@vertex\nfn vmain() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }",
			want:   ErrMissingEntryPoint,
		},
		{
			name:   "no vertex",
			source: "@fragment\nfn fmain() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }",
			want:   ErrMissingEntryPoint,
		},
		{
			name: "slot on sampler",
			source: "//@oxy:slot 0 0 0\n@group(0) @binding(0) var s: sampler;\n" +
				"@vertex\nfn vmain() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }\n" +
				"@fragment\nfn fmain() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }",
			want: ErrTextureSlots,
		},
		{
			name: "slot gap",
			source: "//@oxy:slot 0 0 1\n@group(0) @binding(0) var t: texture_2d<f32>;\n" +
				"@vertex\nfn vmain() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }\n" +
				"@fragment\nfn fmain() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }",
			want: ErrTextureSlots,
		},
		{
			name: "slots span groups",
			source: "//@oxy:slot 0 0 0\n@group(0) @binding(0) var a: texture_2d<f32>;\n" +
				"//@oxy:slot 1 0 1\n@group(1) @binding(0) var b: texture_2d<f32>;\n" +
				"@vertex\nfn vmain() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }\n" +
				"@fragment\nfn fmain() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }",
			want: ErrTextureSlots,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewShader(tt.name, tt.source); !errors.Is(err, tt.want) {
				t.Errorf("NewShader() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPreProcessorExpandsAnnotations(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@oxy:include view\n//@oxy:include view\n//@oxy:group 0 0 storage_uniform view view\n//@oxy:slot 1 0 0")
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if strings.Count(out, "struct ViewUniform") != 1 {
		t.Errorf("ViewUniform injected %d times, want 1", strings.Count(out, "struct ViewUniform"))
	}
	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> view: ViewUniform;") {
		t.Errorf("generated declaration missing from:\n%s", out)
	}
	decls := pp.Declarations()
	if len(decls) != 2 || decls[0].Type != AnnotationTypeBindingGroup || decls[1].Type != AnnotationTypeSlot {
		t.Fatalf("Declarations() = %+v", decls)
	}
	if *decls[1].Group != 1 || *decls[1].Binding != 0 || decls[1].Slot != 0 {
		t.Errorf("slot declaration = group %d binding %d slot %d", *decls[1].Group, *decls[1].Binding, decls[1].Slot)
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	for _, line := range []string{
		"//@oxy:",
		"//@oxy:include",
		"//@oxy:include camera",
		"//@oxy:group 0 0 storage_uniform view",
		"//@oxy:group x 0 storage_uniform view view",
		"//@oxy:group 0 0 storage_private view view",
		"//@oxy:slot 0 0",
		"//@oxy:slot 0 0 -1",
		"//@oxy:provider 0 0 material",
	} {
		if _, err := parseAnnotation(line, 1); err == nil {
			t.Errorf("parseAnnotation(%q) error = nil", line)
		}
	}
	if a, err := parseAnnotation("var x: f32; // not an annotation", 1); a != nil || err != nil {
		t.Errorf("parseAnnotation(plain) = %v, %v", a, err)
	}
}

func TestStructLayouts(t *testing.T) {
	structs := parseStructBlocks(stripComments(renderer.LightingUniformSource + renderer.MaterialUniformSource))
	sizes := computeStructSizes(structs)
	if got := sizes["LightingUniform"]; got.size != 64 || got.align != 16 {
		t.Errorf("LightingUniform layout = %+v, want size 64 align 16", got)
	}
	if got := sizes["MaterialUniform"]; got.size != 12 || got.align != 4 {
		t.Errorf("MaterialUniform layout = %+v, want size 12 align 4", got)
	}
	if got := wgslPrimitiveLayoutMap["mat3x3<f32>"]; got.size != 48 || got.align != 16 {
		t.Errorf("mat3x3<f32> layout = %+v, want size 48 align 16", got)
	}
	if got := wgslPrimitiveLayoutMap["vec2h"]; got.size != 4 || got.align != 4 {
		t.Errorf("vec2h layout = %+v, want size 4 align 4", got)
	}
}

package shader

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// ResourceKind classifies a @group/@binding resource declaration.
type ResourceKind int

const (
	ResourceUnknown ResourceKind = iota
	// ResourceUniform is a var<uniform> buffer.
	ResourceUniform
	// ResourceStorage is a var<storage> buffer.
	ResourceStorage
	// ResourceTexture is a sampled texture (texture_2d<f32> and friends).
	ResourceTexture
	// ResourceDepthTexture is a texture_depth_* binding.
	ResourceDepthTexture
	// ResourceStorageTexture is a texture_storage_* binding.
	ResourceStorageTexture
	// ResourceSampler is a filtering sampler.
	ResourceSampler
	// ResourceComparisonSampler is a sampler_comparison.
	ResourceComparisonSampler
)

var resourceKindNames = [...]string{
	ResourceUnknown:           "unknown",
	ResourceUniform:           "uniform",
	ResourceStorage:           "storage",
	ResourceTexture:           "texture",
	ResourceDepthTexture:      "depth_texture",
	ResourceStorageTexture:    "storage_texture",
	ResourceSampler:           "sampler",
	ResourceComparisonSampler: "comparison_sampler",
}

func (k ResourceKind) String() string {
	if k >= 0 && int(k) < len(resourceKindNames) {
		return resourceKindNames[k]
	}
	return "unknown"
}

// Binding is one @group(G) @binding(B) declaration of a shader.
type Binding struct {
	Group   int
	Binding int
	// Name is the WGSL variable name. For uniform buffers it is also the uniform block name.
	Name string
	// Type is the WGSL type as written, e.g. "ViewUniform" or "texture_2d<f32>".
	Type string
	Kind ResourceKind
	// ReadOnly is set for var<storage, read> buffers.
	ReadOnly bool
	// Size is the minimum byte size of a buffer binding, 0 if unknown or not a buffer.
	Size uint64
	// ViewDimension is the texture view dimension ("1d", "2d", "2d_array", "3d", "cube", "cube_array").
	ViewDimension string
	// SampleType is the texture sample scalar ("f32", "i32", "u32") or "depth".
	SampleType   string
	Multisampled bool
	// Stages is the visibility of the binding: every stage the module has an entry point for.
	Stages Stage
}

// IsBuffer reports whether the binding is a uniform or storage buffer.
func (b Binding) IsBuffer() bool {
	return b.Kind == ResourceUniform || b.Kind == ResourceStorage
}

// VertexInput is one @location attribute of the vertex entry point's input struct.
type VertexInput struct {
	Name     string
	Location int
	Format   renderer.VertexFormat
}

// textureViewInfo holds the view dimension and multisampled flag for a sampled texture type
type textureViewInfo struct {
	viewDimension string
	multisampled  bool
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type per the WGSL specification.
// Used to compute the minimum size of buffer bindings.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField represents a single field extracted from a WGSL struct during parsing
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct represents a WGSL struct block extracted during parsing
type parsedStruct struct {
	name   string
	fields []parsedField
}

package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var vertexFormats = map[renderer.VertexFormat]wgpu.VertexFormat{
	renderer.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	renderer.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	renderer.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	renderer.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	renderer.VertexFormatUint32:    wgpu.VertexFormatUint32,
	renderer.VertexFormatSint32:    wgpu.VertexFormatSint32,
}

var viewDimensions = map[string]wgpu.TextureViewDimension{
	"1d":         wgpu.TextureViewDimension1D,
	"2d":         wgpu.TextureViewDimension2D,
	"2d_array":   wgpu.TextureViewDimension2DArray,
	"3d":         wgpu.TextureViewDimension3D,
	"cube":       wgpu.TextureViewDimensionCube,
	"cube_array": wgpu.TextureViewDimensionCubeArray,
}

var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32":   wgpu.TextureSampleTypeFloat,
	"i32":   wgpu.TextureSampleTypeSint,
	"u32":   wgpu.TextureSampleTypeUint,
	"depth": wgpu.TextureSampleTypeDepth,
}

// VertexBufferLayout translates a vertex schema into the layout of a single interleaved vertex buffer.
//
// Parameters:
//   - schema: the vertex schema
//
// Returns:
//   - wgpu.VertexBufferLayout: one attribute per schema attribute, at the schema's offsets and locations
//   - error: an error if an attribute format has no GPU equivalent
func VertexBufferLayout(schema renderer.VertexSchema) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, schema.Len())
	for _, a := range schema.Attributes() {
		format, ok := vertexFormats[a.Format]
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("pipeline: attribute %q has unsupported format %s", a.Name, a.Format)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(a.Offset),
			ShaderLocation: uint32(a.Location),
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(schema.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

// ShaderStage translates a reflected stage set into wgpu visibility flags.
func ShaderStage(s shader.Stage) wgpu.ShaderStage {
	var visibility wgpu.ShaderStage
	if s&shader.StageVertex != 0 {
		visibility |= wgpu.ShaderStageVertex
	}
	if s&shader.StageFragment != 0 {
		visibility |= wgpu.ShaderStageFragment
	}
	if s&shader.StageCompute != 0 {
		visibility |= wgpu.ShaderStageCompute
	}
	return visibility
}

// BindGroupLayoutDescriptor translates the reflected bindings of one bind group into a layout descriptor.
//
// Parameters:
//   - label: the debug label of the layout
//   - bindings: the bindings of the group, e.g. from shader.Shader.GroupBindings
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor, with no entries for an empty group
//   - error: an error if a binding kind is not supported
func BindGroupLayoutDescriptor(label string, bindings []shader.Binding) (wgpu.BindGroupLayoutDescriptor, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(bindings))
	for _, b := range bindings {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(b.Binding),
			Visibility: ShaderStage(b.Stages),
		}
		switch b.Kind {
		case shader.ResourceUniform:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
			entry.Buffer.MinBindingSize = b.Size
		case shader.ResourceStorage:
			entry.Buffer.Type = wgpu.BufferBindingTypeStorage
			if b.ReadOnly {
				entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
			}
			entry.Buffer.MinBindingSize = b.Size
		case shader.ResourceTexture, shader.ResourceDepthTexture:
			entry.Texture.SampleType = sampleTypes[b.SampleType]
			entry.Texture.ViewDimension = viewDimensions[b.ViewDimension]
			entry.Texture.Multisampled = b.Multisampled
		case shader.ResourceSampler:
			entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		case shader.ResourceComparisonSampler:
			entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
		default:
			return wgpu.BindGroupLayoutDescriptor{}, fmt.Errorf("pipeline: %s binding %q (group %d binding %d) is not supported", b.Kind, b.Name, b.Group, b.Binding)
		}
		entries = append(entries, entry)
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	}, nil
}

// BindGroupLayoutDescriptors builds one layout descriptor per group index from 0 to the highest group the
// program declares. Undeclared groups in between get an empty layout.
//
// Parameters:
//   - s: the program
//
// Returns:
//   - []wgpu.BindGroupLayoutDescriptor: descriptors indexed by group
//   - error: an error if any binding is not supported
func BindGroupLayoutDescriptors(s shader.Shader) ([]wgpu.BindGroupLayoutDescriptor, error) {
	groups := s.Groups()
	if len(groups) == 0 {
		return nil, nil
	}
	descriptors := make([]wgpu.BindGroupLayoutDescriptor, groups[len(groups)-1]+1)
	for g := range descriptors {
		desc, err := BindGroupLayoutDescriptor(fmt.Sprintf("%s group %d", s.Key(), g), s.GroupBindings(g))
		if err != nil {
			return nil, err
		}
		descriptors[g] = desc
	}
	return descriptors, nil
}

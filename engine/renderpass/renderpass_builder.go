package renderpass

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/batcher"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
)

// RenderPassBuilderOption is a functional option used to configure a RenderPass during construction.
type RenderPassBuilderOption func(*RenderPass)

// WithLighting sets the lighting block uploaded to shaders that declare one.
//
// Parameters:
//   - l: the lighting parameters
//
// Returns:
//   - RenderPassBuilderOption: a function that sets the lighting block
func WithLighting(l renderer.LightingUniform) RenderPassBuilderOption {
	return func(rp *RenderPass) {
		rp.submitter.lighting = l
	}
}

// WithMaterial sets the material block uploaded to shaders that declare one.
//
// Parameters:
//   - m: the material parameters
//
// Returns:
//   - RenderPassBuilderOption: a function that sets the material block
func WithMaterial(m renderer.MaterialUniform) RenderPassBuilderOption {
	return func(rp *RenderPass) {
		rp.submitter.material = m
	}
}

// WithBatcherOptions forwards options to the render pass's batcher.
//
// Parameters:
//   - opts: the batcher options
//
// Returns:
//   - RenderPassBuilderOption: a function that records the batcher options
func WithBatcherOptions(opts ...batcher.BatcherBuilderOption) RenderPassBuilderOption {
	return func(rp *RenderPass) {
		rp.batcherOptions = append(rp.batcherOptions, opts...)
	}
}

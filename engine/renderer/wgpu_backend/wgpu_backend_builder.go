package wgpu_backend

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// BackendBuilderOption is a function that configures a Backend during New.
type BackendBuilderOption func(*Backend)

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - BackendBuilderOption: a function that applies the option to a Backend
func WithForceFallbackAdapter(force bool) BackendBuilderOption {
	return func(b *Backend) {
		b.forceFallbackAdapter = force
	}
}

// WithMSAA sets the multisample count of the color and depth attachments. Defaults to MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - BackendBuilderOption: a function that applies the option to a Backend
func WithMSAA(count MSAASampleCount) BackendBuilderOption {
	return func(b *Backend) {
		if count == 0 {
			count = MSAAOff
		}
		b.sampleCount = count
	}
}

// WithPresentMode sets the initial present mode. Defaults to PresentModeVSync.
//
// Parameters:
//   - mode: the PresentMode to use
//
// Returns:
//   - BackendBuilderOption: a function that applies the option to a Backend
func WithPresentMode(mode PresentMode) BackendBuilderOption {
	return func(b *Backend) {
		b.presentMode = wgpuPresentMode(mode)
	}
}

// WithClearColor sets the color the render pass clears to.
//
// Parameters:
//   - r, g, b, a: the clear color components in [0, 1]
//
// Returns:
//   - BackendBuilderOption: a function that applies the option to a Backend
func WithClearColor(r, g, b, a float64) BackendBuilderOption {
	return func(be *Backend) {
		be.clearColor = wgpu.Color{R: r, G: g, B: b, A: a}
	}
}

// WithPipelineOptions sets the fixed-function options applied to every pipeline the backend creates.
//
// Parameters:
//   - options: the pipeline options
//
// Returns:
//   - BackendBuilderOption: a function that applies the option to a Backend
func WithPipelineOptions(options ...pipeline.PipelineBuilderOption) BackendBuilderOption {
	return func(b *Backend) {
		b.pipelineOptions = append(b.pipelineOptions, options...)
	}
}

package engine

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-batch/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics logging.
//
// Parameters:
//   - enabled: true to enable profiling on start
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the initial tick rate.
//
// Parameters:
//   - fps: ticks per second (defaults to 60 if <= 0)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetTickRate(fps)
	}
}

// WithWindow attaches the window the engine runs in. The window's resize events reconfigure the frame
// target's surface.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithFrameTarget sets the target each frame begins, ends and presents on, usually the WebGPU backend.
//
// Parameters:
//   - t: the frame target
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameTarget(t FrameTarget) EngineBuilderOption {
	return func(e *engine) {
		if t != nil {
			e.target = t
		}
	}
}

// WithRenderFrameLimit caps the render loop.
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetRenderFrameLimit(fps)
	}
}

// WithMaxFrames stops Run after n frames. Zero runs until stopped.
func WithMaxFrames(n int) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}

// WithRenderCallback sets the render callback.
func WithRenderCallback(callback RenderCallback) EngineBuilderOption {
	return func(e *engine) {
		e.renderCallback = callback
	}
}

// WithResizeCallback sets the resize callback, e.g. to keep a camera's viewport in sync.
func WithResizeCallback(callback func(width, height int)) EngineBuilderOption {
	return func(e *engine) {
		e.resizeCallback = callback
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

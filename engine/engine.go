// Package engine drives the frame loop: a fixed-rate tick goroutine for game logic and a render loop on the
// GPU thread that queues quads through a render pass, flushes the batches and presents.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/Carmen-Shannon/oxy-batch/engine/window"
	"golang.org/x/time/rate"
)

// ErrRunning is returned by Run when the engine is already running.
var ErrRunning = errors.New("engine: already running")

// FrameTarget is the presentation side of a frame. The WebGPU backend implements it; headless runs use a
// target that does nothing.
type FrameTarget interface {
	// BeginFrame starts recording a frame.
	BeginFrame() error
	// EndFrame finishes and submits the frame.
	EndFrame() error
	// Present shows the submitted frame.
	Present()
}

// surfaceConfigurer is implemented by targets whose surface must follow the window size.
type surfaceConfigurer interface {
	ConfigureSurface(width, height int) error
}

type headlessTarget struct{}

func (headlessTarget) BeginFrame() error { return nil }
func (headlessTarget) EndFrame() error   { return nil }
func (headlessTarget) Present()          {}

// RenderCallback queues the quads of one frame on the render pass.
type RenderCallback func(rp *renderpass.RenderPass, deltaTime float32)

// Engine is the main entry point of a sprite application.
type Engine interface {
	// RenderPass returns the render pass frames are flushed through.
	RenderPass() *renderpass.RenderPass

	// Window returns the window, nil when running headless.
	Window() window.Window

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// EnableProfiler enables per-interval frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// SetTickRate sets the tick callback rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each tick on the tick goroutine. It runs concurrently
	// with the render callback, so shared state needs synchronization.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function that queues each frame's quads.
	//
	// Parameters:
	//   - callback: function receiving the render pass and the delta time in seconds
	SetRenderCallback(callback RenderCallback)

	// SetResizeCallback registers the function called after the surface follows a window resize.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer size
	SetResizeCallback(callback func(width, height int))

	// SetRenderFrameLimit caps the render loop. Pass 0 to uncap it.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frame renders one frame: BeginFrame, the render callback, FlushFrame, EndFrame and Present.
	//
	// Parameters:
	//   - deltaTime: the seconds since the previous frame
	//
	// Returns:
	//   - renderpass.FrameStats: the flush statistics
	//   - error: an error if the frame could not begin or end
	Frame(deltaTime float32) (renderpass.FrameStats, error)

	// Run starts the tick goroutine and renders frames on the calling goroutine until the window closes,
	// ctx is done, Quit is called or the frame limit of a headless run is reached.
	//
	// Parameters:
	//   - ctx: stops the engine when done
	//
	// Returns:
	//   - error: ErrRunning if called twice, otherwise nil on a normal stop
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times and from any goroutine.
	Quit()
}

type engine struct {
	rp     *renderpass.RenderPass
	target FrameTarget
	window window.Window

	tickRateChannel chan time.Duration
	engineTickRate  time.Duration
	tickCallback    func(deltaTime float32)
	renderCallback  RenderCallback
	resizeCallback  func(width, height int)

	limiter   *rate.Limiter
	maxFrames int

	profiler         *profiler.Profiler
	profilingEnabled bool

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	quitOnce sync.Once
	quit     chan struct{}
	wg       sync.WaitGroup
}

var _ Engine = &engine{}

// NewEngine creates an Engine flushing frames through rp. Without WithFrameTarget or WithWindow frames are
// only flushed, which is what headless runs with the recorder backend want.
//
// Parameters:
//   - rp: the render pass to flush each frame
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: an error if rp is nil or the initial surface configuration fails
func NewEngine(rp *renderpass.RenderPass, options ...EngineBuilderOption) (Engine, error) {
	if rp == nil {
		return nil, fmt.Errorf("engine: nil render pass")
	}
	e := &engine{
		rp:              rp,
		target:          headlessTarget{},
		tickRateChannel: make(chan time.Duration, 1),
		engineTickRate:  time.Second / 60,
		profiler:        profiler.NewProfiler(),
		quit:            make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		if err := e.resize(e.window.Size()); err != nil {
			return nil, err
		}
		e.window.SetResizeCallback(func(width, height int) {
			if err := e.resize(width, height); err != nil {
				logger.Logger().Error("surface resize failed", "width", width, "height", height, "err", err)
			}
		})
	}
	return e, nil
}

func (e *engine) resize(width, height int) error {
	if sc, ok := e.target.(surfaceConfigurer); ok {
		if err := sc.ConfigureSurface(width, height); err != nil {
			return err
		}
	}
	if e.resizeCallback != nil {
		e.resizeCallback(width, height)
	}
	return nil
}

func (e *engine) RenderPass() *renderpass.RenderPass {
	return e.rp
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		e.engineTickRate = newRate
		return
	}
	// replace any pending update
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback RenderCallback) {
	e.renderCallback = callback
}

func (e *engine) SetResizeCallback(callback func(width, height int)) {
	e.resizeCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.limiter = nil
		return
	}
	e.limiter = rate.NewLimiter(rate.Limit(fps), 1)
}

func (e *engine) Frame(deltaTime float32) (renderpass.FrameStats, error) {
	if err := e.target.BeginFrame(); err != nil {
		// keep the batcher from carrying this frame's quads into the next
		e.rp.Batcher().Clear()
		return renderpass.FrameStats{}, fmt.Errorf("engine: begin frame: %w", err)
	}
	if e.renderCallback != nil {
		e.renderCallback(e.rp, deltaTime)
	}
	stats := e.rp.FlushFrame()
	if err := e.target.EndFrame(); err != nil {
		return stats, fmt.Errorf("engine: end frame: %w", err)
	}
	e.target.Present()

	if e.profilingEnabled {
		e.profiler.Record(stats)
		if r, ok := e.profiler.Tick(); ok && e.window != nil {
			e.window.SetTitle(r.String())
		}
	}
	return stats, nil
}

func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrRunning
	}
	e.running = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	defer func() {
		e.cancel()
		e.wg.Wait()
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	go func() {
		select {
		case <-e.quit:
			e.cancel()
		case <-ctx.Done():
		}
	}()

	e.wg.Add(1)
	go e.handleTicks(ctx)

	logger.Logger().Info("engine started", "headless", e.window == nil)
	lastRender := time.Now()
	frames := 0
	renderFrame := func() bool {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return false
			}
		}
		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if _, err := e.Frame(dt); err != nil {
			logger.Logger().Warn("frame dropped", "err", err)
		}
		frames++
		return e.maxFrames <= 0 || frames < e.maxFrames
	}

	if e.window != nil {
		e.window.SetFrameCallback(func() {
			if !renderFrame() {
				e.Quit()
			}
		})
		e.window.Run(ctx)
	} else {
		for ctx.Err() == nil && renderFrame() {
		}
	}
	logger.Logger().Info("engine stopped", "frames", frames)
	return nil
}

// handleTicks fires the tick callback at the configured rate until ctx is done. Rate changes arrive
// through tickRateChannel.
func (e *engine) handleTicks(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

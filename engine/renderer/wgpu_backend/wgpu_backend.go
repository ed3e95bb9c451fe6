// Package wgpu_backend implements renderer.Backend and texture.Creator on WebGPU. Geometry buffers, uniform
// buffers and bind groups live per geometry, so every batch of a frame keeps its own uniforms even though
// all draws are encoded into one render pass and submitted together.
package wgpu_backend

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode selects how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

var (
	// ErrNoFrame is returned by IssueIndexedDraw outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("wgpu_backend: no frame in progress")

	// ErrNotConfigured is returned when a pipeline is needed before ConfigureSurface was called.
	ErrNotConfigured = errors.New("wgpu_backend: surface not configured")

	// ErrUnsupportedProgram is returned when a program was not created by the shader package.
	ErrUnsupportedProgram = errors.New("wgpu_backend: program is not a shader.Shader")
)

// Backend is the WebGPU renderer.Backend. All methods must be called from the thread that created it.
type Backend struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	clearColor           wgpu.Color
	pipelineOptions      []pipeline.PipelineBuilderOption

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	pipelines map[renderer.Program]pipeline.Pipeline
	sampler   *wgpu.Sampler
	fallback  *Texture

	bound      *binding
	geometries int
}

var _ renderer.Backend = &Backend{}
var _ texture.Creator = &Backend{}

// New creates an instance, surface, adapter and device for the given surface descriptor. The calling
// goroutine is locked to its OS thread for the lifetime of the backend.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, e.g. from window.Window.SurfaceDescriptor
//   - options: a variadic list of BackendBuilderOption functions
//
// Returns:
//   - *Backend: the backend, ready for ConfigureSurface
//   - error: an error if no adapter or device could be acquired
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendBuilderOption) (*Backend, error) {
	runtime.LockOSThread()
	b := &Backend{
		presentMode: wgpu.PresentModeFifo,
		sampleCount: MSAA4x,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
		pipelines:   make(map[renderer.Program]pipeline.Pipeline),
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_backend: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_backend: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	logger.Logger().Info("wgpu backend ready", "msaa", uint32(b.sampleCount))
	return b, nil
}

// ConfigureSurface configures the swapchain and (re)creates the MSAA and depth attachments. It must be
// called before the first frame and whenever the window is resized.
//
// Parameters:
//   - width: the new width of the surface in pixels
//   - height: the new height of the surface in pixels
//
// Returns:
//   - error: an error if an attachment could not be created
func (b *Backend) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu_backend: invalid surface size %dx%d", width, height)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	format := capabilities.Formats[0]
	if b.surfaceFormat != nil && *b.surfaceFormat != format {
		// pipelines target the old color format
		b.releasePipelines()
	}
	b.surfaceFormat = &format
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	if msaaEnabled {
		// the render pass draws into the MSAA texture and resolves into the swapchain view
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			return err
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		return err
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	logger.Logger().Debug("surface configured", "width", width, "height", height, "format", format)
	return nil
}

// SetPresentMode changes the present mode. It takes effect on the next ConfigureSurface.
//
// Parameters:
//   - mode: the PresentMode to use
func (b *Backend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = wgpuPresentMode(mode)
}

func wgpuPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	default:
		return wgpu.PresentModeFifo
	}
}

// BeginFrame acquires the next swapchain texture, creates a command encoder, and begins the main render
// pass. Draws issued until EndFrame are encoded into this pass.
//
// Returns:
//   - error: an error if the surface is not configured or the swapchain texture could not be acquired
func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return ErrNotConfigured
	}
	if b.frameSurface != nil {
		return fmt.Errorf("wgpu_backend: previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

// EndFrame ends the render pass and submits the command buffer. Call Present afterwards.
//
// Returns:
//   - error: an error if the command buffer could not be finished
func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	b.framePass.End()
	b.framePass = nil
	b.bound = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

// Present presents the surface to the display and releases the swapchain texture.
func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *Backend) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// Release frees every pipeline and the shared GPU objects. Geometries and textures are released by their owners.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releasePipelines()
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.fallback != nil {
		b.fallback.Release()
		b.fallback = nil
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
}

func (b *Backend) releasePipelines() {
	for key, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, key)
	}
}

func (b *Backend) Device() *wgpu.Device {
	return b.device
}

func (b *Backend) Queue() *wgpu.Queue {
	return b.queue
}

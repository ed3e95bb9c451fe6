// Package window opens the desktop window the sprite renderer presents into and turns its input
// events into callbacks.
package window

import (
	"context"
	"errors"
	"runtime"

	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotOpen is returned when a closed or never opened window is used.
var ErrNotOpen = errors.New("window: not open")

// Key identifies a keyboard key. The named keys are the ones the engine reacts to; other keys are
// reported with their platform key code.
type Key int

// Window is a desktop window with a WebGPU-compatible surface.
type Window interface {
	// SetFrameCallback sets the function called once per loop iteration after events are processed.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetFrameCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called when a key is pressed, repeated or released.
	//
	// Parameters:
	//   - callback: function receiving the key and whether it is down
	SetKeyCallback(callback func(key Key, down bool))

	// SetCursorCallback sets the function called when the cursor moves. Coordinates are framebuffer
	// pixels with the origin at the top-left corner.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetCursorCallback(callback func(x, y float32))

	// SetTitle replaces the title bar text.
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for the window, or nil if it is not open.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Size returns the framebuffer size in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// IsRunning reports whether the window is open and has not been asked to close.
	IsRunning() bool

	// Run polls events and calls the frame callback until the window closes or ctx is done.
	//
	// Parameters:
	//   - ctx: cancels the loop
	Run(ctx context.Context)

	// Close destroys the window.
	//
	// Returns:
	//   - error: ErrNotOpen if the window is already closed
	Close() error
}

type window struct {
	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	resizable bool

	platform *glfwWindow

	onFrame  func()
	onResize func(width, height int)
	onKey    func(key Key, down bool)
	onCursor func(x, y float32)
}

var _ Window = &window{}

// NewWindow opens a window. The calling goroutine is locked to its OS thread, which must also be the
// thread that runs the loop and renders.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	runtime.LockOSThread()
	w := &window{
		title:     "oxy-batch",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 240,
		resizable: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := openPlatformWindow(w); err != nil {
		return nil, err
	}
	logger.Logger().Info("window opened", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func (w *window) SetFrameCallback(callback func()) {
	w.onFrame = callback
}

func (w *window) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *window) SetKeyCallback(callback func(key Key, down bool)) {
	w.onKey = callback
}

func (w *window) SetCursorCallback(callback func(x, y float32)) {
	w.onCursor = callback
}

func (w *window) SetTitle(title string) {
	w.title = title
	if w.platform != nil {
		w.platform.window.SetTitle(title)
	}
}

func (w *window) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *window) Size() (int, int) {
	return w.width, w.height
}

func (w *window) IsRunning() bool {
	return w.platform != nil && w.platform.running()
}

func (w *window) Run(ctx context.Context) {
	for w.IsRunning() {
		if ctx.Err() != nil {
			return
		}
		w.platform.pollEvents()
		if !w.IsRunning() {
			return
		}
		if w.onFrame != nil {
			w.onFrame()
		}
	}
}

func (w *window) Close() error {
	if w.platform == nil {
		return ErrNotOpen
	}
	w.platform.destroy()
	w.platform = nil
	logger.Logger().Info("window closed", "title", w.title)
	return nil
}

// resized records a new framebuffer size and forwards it. Minimized windows report 0x0, which is dropped.
func (w *window) resized(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *window) keyEvent(key Key, down bool) {
	if w.onKey != nil {
		w.onKey(key, down)
	}
}

func (w *window) cursorMoved(x, y float32) {
	if w.onCursor != nil {
		w.onCursor(x, y)
	}
}

package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Keys the engine binds.
const (
	KeyUnknown = Key(glfw.KeyUnknown)
	KeyEscape  = Key(glfw.KeyEscape)
	KeySpace   = Key(glfw.KeySpace)
	KeyP       = Key(glfw.KeyP)
	KeyV       = Key(glfw.KeyV)
	KeyUp      = Key(glfw.KeyUp)
	KeyDown    = Key(glfw.KeyDown)
	KeyLeft    = Key(glfw.KeyLeft)
	KeyRight   = Key(glfw.KeyRight)
)

// glfwWindow holds the GLFW window of an open window.
type glfwWindow struct {
	window  *glfw.Window
	closing bool
}

// openPlatformWindow initializes GLFW and creates a window without a client API, since WebGPU drives
// the surface.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func openPlatformWindow(w *window) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	resizable := glfw.False
	if w.resizable {
		resizable = glfw.True
	}
	glfw.WindowHint(glfw.Resizable, resizable)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("window: create GLFW window: %w", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)

	gw := &glfwWindow{window: win}
	w.platform = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.closing = true
			win.SetShouldClose(true)
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			w.keyEvent(Key(key), true)
		case glfw.Release:
			w.keyEvent(Key(key), false)
		}
	})

	// Cursor positions arrive in screen coordinates; scale them to framebuffer pixels so they line up
	// with the surface on high-DPI displays.
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		sx, sy := win.GetContentScale()
		w.cursorMoved(float32(xpos)*sx, float32(ypos)*sy)
	})

	// Framebuffer size rather than window size: the surface is configured in pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})

	w.width, w.height = win.GetFramebufferSize()
	return nil
}

// surfaceDescriptor builds the platform surface descriptor with the wgpuglfw bridge.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) running() bool {
	return !gw.closing && !gw.window.ShouldClose()
}

func (gw *glfwWindow) pollEvents() {
	glfw.PollEvents()
}

func (gw *glfwWindow) destroy() {
	gw.closing = true
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
}

package window

import (
	"context"
	"errors"
	"testing"
)

func TestResizedForwardsChanges(t *testing.T) {
	w := &window{width: 800, height: 600}
	var calls [][2]int
	w.SetResizeCallback(func(width, height int) {
		calls = append(calls, [2]int{width, height})
	})

	w.resized(800, 600)
	w.resized(0, 0)
	w.resized(1024, 768)
	w.resized(-1, 768)

	if len(calls) != 1 || calls[0] != [2]int{1024, 768} {
		t.Fatalf("resize calls = %v, want [[1024 768]]", calls)
	}
	if width, height := w.Size(); width != 1024 || height != 768 {
		t.Errorf("Size() = %dx%d, want 1024x768", width, height)
	}
}

func TestInputCallbacks(t *testing.T) {
	w := &window{}
	w.keyEvent(KeySpace, true)
	w.cursorMoved(1, 2)

	var gotKey Key
	var gotDown bool
	w.SetKeyCallback(func(key Key, down bool) {
		gotKey, gotDown = key, down
	})
	var gotX, gotY float32
	w.SetCursorCallback(func(x, y float32) {
		gotX, gotY = x, y
	})

	w.keyEvent(KeyV, true)
	w.cursorMoved(10, 20)
	if gotKey != KeyV || !gotDown {
		t.Errorf("key = %d down = %v", gotKey, gotDown)
	}
	if gotX != 10 || gotY != 20 {
		t.Errorf("cursor = %v,%v", gotX, gotY)
	}
}

func TestUnopenedWindow(t *testing.T) {
	w := &window{}
	if w.IsRunning() {
		t.Error("unopened window reports running")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("unopened window returned a surface descriptor")
	}
	if err := w.Close(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Close() err = %v", err)
	}
	frames := 0
	w.SetFrameCallback(func() { frames++ })
	w.Run(context.Background())
	if frames != 0 {
		t.Errorf("Run on unopened window ran %d frames", frames)
	}
	w.SetTitle("still works")
	if w.title != "still works" {
		t.Errorf("title = %q", w.title)
	}
}

func TestBuilderOptions(t *testing.T) {
	w := &window{width: 1, height: 1}
	for _, opt := range []WindowBuilderOption{
		WithTitle("sprites"),
		WithSize(640, 0),
		WithMinSize(100, 50),
		WithResizable(false),
	} {
		opt(w)
	}
	if w.title != "sprites" || w.width != 640 || w.height != 1 {
		t.Errorf("window = %+v", w)
	}
	if w.minWidth != 100 || w.minHeight != 50 || w.resizable {
		t.Errorf("limits = %d %d resizable %v", w.minWidth, w.minHeight, w.resizable)
	}
}

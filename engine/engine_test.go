package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/batcher"
	"github.com/Carmen-Shannon/oxy-batch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/recorder"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
	"github.com/Carmen-Shannon/oxy-batch/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

type fakeTarget struct {
	begins, ends, presents int
	beginErr               error
	sizes                  [][2]int
}

func (f *fakeTarget) BeginFrame() error {
	f.begins++
	return f.beginErr
}

func (f *fakeTarget) EndFrame() error {
	f.ends++
	return nil
}

func (f *fakeTarget) Present() {
	f.presents++
}

func (f *fakeTarget) ConfigureSurface(width, height int) error {
	f.sizes = append(f.sizes, [2]int{width, height})
	return nil
}

type fakeWindow struct {
	width, height int
	title         string
	onFrame       func()
	onResize      func(width, height int)
}

func (w *fakeWindow) SetFrameCallback(callback func())                   { w.onFrame = callback }
func (w *fakeWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *fakeWindow) SetKeyCallback(func(key window.Key, down bool))     {}
func (w *fakeWindow) SetCursorCallback(func(x, y float32))               {}
func (w *fakeWindow) SetTitle(title string)                              { w.title = title }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor         { return nil }
func (w *fakeWindow) Size() (int, int)                                   { return w.width, w.height }
func (w *fakeWindow) IsRunning() bool                                    { return true }
func (w *fakeWindow) Close() error                                       { return nil }

// Run calls the frame callback until ctx is done.
func (w *fakeWindow) Run(ctx context.Context) {
	for ctx.Err() == nil {
		w.onFrame()
	}
}

func newTestPass(t *testing.T) (*recorder.Recorder, *renderpass.RenderPass) {
	t.Helper()
	rec := recorder.New()
	rp, err := renderpass.New(rec)
	if err != nil {
		t.Fatalf("renderpass.New() error = %v", err)
	}
	return rec, rp
}

func queueSprite(prog *recorder.Program, tex *recorder.Texture) RenderCallback {
	return func(rp *renderpass.RenderPass, _ float32) {
		q := batch.Quad{Texture: tex, Size: mgl32.Vec2{8, 8}, TexCoords: batch.FullTexCoords}
		_ = rp.SubmitQuad(q, prog, transform.Identity(), nil)
	}
}

func TestNewEngineRequiresRenderPass(t *testing.T) {
	if _, err := NewEngine(nil); err == nil {
		t.Error("NewEngine(nil) error = nil, want error")
	}
}

func TestFrameOrder(t *testing.T) {
	rec, rp := newTestPass(t)
	target := &fakeTarget{}
	prog := recorder.NewProgram("S", 1)
	e, err := NewEngine(rp, WithFrameTarget(target), WithRenderCallback(queueSprite(prog, recorder.NewTexture("A", 1, 1))))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	stats, err := e.Frame(1.0 / 60)
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	if stats.DrawCalls != 1 || stats.Quads != 1 {
		t.Errorf("stats = %+v, want 1 draw of 1 quad", stats)
	}
	if target.begins != 1 || target.ends != 1 || target.presents != 1 {
		t.Errorf("target calls = %d/%d/%d, want 1/1/1", target.begins, target.ends, target.presents)
	}
	if rec.Count(recorder.CmdIssueIndexedDraw) != 1 {
		t.Error("quad queued by the render callback was not drawn")
	}
}

func TestFrameBeginErrorDropsQuads(t *testing.T) {
	rec, rp := newTestPass(t)
	boom := errors.New("surface lost")
	target := &fakeTarget{beginErr: boom}
	prog := recorder.NewProgram("S", 1)
	e, _ := NewEngine(rp, WithFrameTarget(target), WithRenderCallback(queueSprite(prog, recorder.NewTexture("A", 1, 1))))

	// quads queued outside the frame must not leak into the next one
	q := batch.Quad{Texture: recorder.NewTexture("B", 1, 1), Size: mgl32.Vec2{1, 1}}
	if err := rp.SubmitQuad(q, prog, transform.Identity(), nil); err != nil {
		t.Fatalf("SubmitQuad() error = %v", err)
	}
	if _, err := e.Frame(0); !errors.Is(err, boom) {
		t.Fatalf("Frame() error = %v, want %v", err, boom)
	}
	if target.ends != 0 || target.presents != 0 {
		t.Error("failed frame was ended or presented")
	}
	if rp.Batcher().State() != batcher.StateIdle {
		t.Errorf("batcher State() = %v, want Idle", rp.Batcher().State())
	}
	if rec.Count(recorder.CmdIssueIndexedDraw) != 0 {
		t.Error("draw issued for a frame that never began")
	}
}

func TestRunHeadlessStopsAtMaxFrames(t *testing.T) {
	rec, rp := newTestPass(t)
	prog := recorder.NewProgram("S", 1)
	e, _ := NewEngine(rp, WithMaxFrames(3), WithRenderCallback(queueSprite(prog, recorder.NewTexture("A", 1, 1))))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n := rec.Count(recorder.CmdIssueIndexedDraw); n != 3 {
		t.Errorf("draws = %d, want 3", n)
	}
	if n := rec.Count(recorder.CmdCreateGeometry); n != 1 {
		t.Errorf("geometries created = %d, want 1 reused across frames", n)
	}
}

func TestRunTicksAndQuits(t *testing.T) {
	_, rp := newTestPass(t)
	var ticks atomic.Int32
	e, _ := NewEngine(rp, WithTickRate(1000))
	e.SetTickCallback(func(float32) {
		ticks.Add(1)
	})
	e.SetRenderCallback(func(*renderpass.RenderPass, float32) {
		if ticks.Load() > 0 {
			e.Quit()
		}
	})
	e.SetRenderFrameLimit(2000)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run() stopped by timeout, not Quit")
	}
	if ticks.Load() == 0 {
		t.Error("tick callback never ran")
	}
	e.Quit()
}

func TestWindowResizeConfiguresSurface(t *testing.T) {
	_, rp := newTestPass(t)
	target := &fakeTarget{}
	w := &fakeWindow{width: 640, height: 480}
	var resized [2]int
	_, err := NewEngine(rp, WithWindow(w), WithFrameTarget(target), WithResizeCallback(func(width, height int) {
		resized = [2]int{width, height}
	}))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	w.onResize(800, 600)
	want := [][2]int{{640, 480}, {800, 600}}
	if len(target.sizes) != 2 || target.sizes[0] != want[0] || target.sizes[1] != want[1] {
		t.Errorf("surface sizes = %v, want %v", target.sizes, want)
	}
	if resized != want[1] {
		t.Errorf("resize callback got %v, want %v", resized, want[1])
	}
}

func TestRunWithWindowReportsToTitle(t *testing.T) {
	_, rp := newTestPass(t)
	w := &fakeWindow{width: 320, height: 240}
	now := time.Unix(0, 0)
	p := profiler.NewProfiler(
		profiler.WithUpdateInterval(time.Second),
		profiler.WithClock(func() time.Time {
			now = now.Add(600 * time.Millisecond)
			return now
		}),
	)
	e, _ := NewEngine(rp, WithWindow(w), WithProfiler(p), WithProfiling(true), WithMaxFrames(4))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if w.title == "" {
		t.Error("profiler report never reached the window title")
	}
	if p.Last().Frames == 0 {
		t.Error("profiler recorded no frames")
	}
}

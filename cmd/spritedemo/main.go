// Command spritedemo draws thousands of bouncing sprites and a text HUD through the batching render pass. With
// -headless it renders into the command recorder instead of a window and prints what the GPU would have been
// asked to do.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-batch/engine"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/recorder"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/Carmen-Shannon/oxy-batch/engine/window"
	"github.com/dustin/go-humanize"
)

const defaultHeadlessFrames = 120

func main() {
	configPath := flag.String("config", "", "YAML scene file (defaults to 1000 checker sprites)")
	headless := flag.Bool("headless", false, "render into the command recorder instead of a window")
	frames := flag.Int("frames", 0, "stop after this many frames (0 runs until closed; headless defaults to 120)")
	fps := flag.Float64("fps", -1, "frame rate cap, 0 for uncapped (overrides renderer.frame_limit)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (overrides log_level)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *fps >= 0 {
		cfg.Renderer.FrameLimit = *fps
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := cfg.level()
	if err != nil {
		log.Fatal(err)
	}
	logger.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *headless {
		n := *frames
		if n <= 0 {
			n = defaultHeadlessFrames
		}
		err = runHeadless(ctx, cfg, n)
	} else {
		err = runWindowed(ctx, cfg, *frames)
	}
	if err != nil {
		logger.Logger().Error("spritedemo failed", "err", err)
		os.Exit(1)
	}
}

// runHeadless renders frames into a recorder and prints a summary of the recorded commands. Frames are driven
// directly without the tick goroutine or a frame cap.
func runHeadless(ctx context.Context, cfg Config, frames int) error {
	rec := recorder.New(recorder.WithoutByteCopies())
	d, err := newDemo(ctx, cfg, rec, false)
	if err != nil {
		return err
	}
	rp, err := renderpass.New(rec)
	if err != nil {
		return err
	}
	defer rp.Release()

	var totals renderpass.FrameStats
	eng, err := engine.NewEngine(rp,
		engine.WithProfiling(true),
		engine.WithRenderCallback(func(rp *renderpass.RenderPass, dt float32) {
			// headless frames advance the world by one tick each so runs are reproducible
			d.world.step(1 / float32(cfg.TickRate))
			d.render(rp, dt)
		}),
	)
	if err != nil {
		return err
	}
	d.profiler = eng.Profiler()

	rendered := 0
	for ; rendered < frames && ctx.Err() == nil; rendered++ {
		stats, err := eng.Frame(0)
		if err != nil {
			return err
		}
		totals.Batches += stats.Batches
		totals.Quads += stats.Quads
		totals.DrawCalls += stats.DrawCalls
		totals.Skipped += stats.Skipped
		totals.VertexBytes += stats.VertexBytes
		totals.IndexBytes += stats.IndexBytes
	}

	fmt.Printf("frames:        %d\n", rendered)
	fmt.Printf("quads:         %s\n", humanize.Comma(int64(totals.Quads)))
	fmt.Printf("draw calls:    %s (%s skipped)\n", humanize.Comma(int64(totals.DrawCalls)), humanize.Comma(int64(totals.Skipped)))
	fmt.Printf("uploaded:      %s vertices, %s indices\n", humanize.Bytes(uint64(totals.VertexBytes)), humanize.Bytes(uint64(totals.IndexBytes)))
	fmt.Printf("geometries:    %d\n", rec.Count(recorder.CmdCreateGeometry))
	fmt.Printf("texture binds: %s\n", humanize.Comma(int64(rec.Count(recorder.CmdBindTextureToSlot))))
	return nil
}

// runWindowed opens a window, renders through the WebGPU backend and simulates on the tick goroutine.
func runWindowed(ctx context.Context, cfg Config, frames int) error {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode, _ := cfg.presentMode()
	msaa, _ := cfg.msaa()
	backend, err := wgpu_backend.New(win.SurfaceDescriptor(),
		wgpu_backend.WithPresentMode(presentMode),
		wgpu_backend.WithMSAA(msaa),
		wgpu_backend.WithClearColor(0.07, 0.08, 0.11, 1),
	)
	if err != nil {
		return err
	}
	defer backend.Release()

	d, err := newDemo(ctx, cfg, backend, true)
	if err != nil {
		return err
	}
	defer d.release()

	rp, err := renderpass.New(backend)
	if err != nil {
		return err
	}
	defer rp.Release()

	eng, err := engine.NewEngine(rp,
		engine.WithWindow(win),
		engine.WithFrameTarget(backend),
		engine.WithProfiling(true),
		engine.WithTickRate(cfg.TickRate),
		engine.WithRenderFrameLimit(cfg.Renderer.FrameLimit),
		engine.WithMaxFrames(frames),
		engine.WithResizeCallback(d.resize),
		engine.WithRenderCallback(d.render),
	)
	if err != nil {
		return err
	}
	d.profiler = eng.Profiler()
	eng.SetTickCallback(d.world.step)

	win.SetKeyCallback(func(key window.Key, down bool) {
		if !down {
			return
		}
		switch key {
		case window.KeyEscape:
			eng.Quit()
		case window.KeySpace:
			d.world.togglePause()
		}
	})
	return eng.Run(ctx)
}

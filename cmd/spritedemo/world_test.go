package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/recorder"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

func TestBounce(t *testing.T) {
	tests := []struct {
		pos, vel, limit float32
		wantPos, wantV  float32
	}{
		{5, 1, 10, 5, 1},
		{-2, -3, 10, 2, 3},
		{12, 3, 10, 8, -3},
		{3, 1, -5, 0, -1},
	}
	for _, tt := range tests {
		pos, vel := bounce(tt.pos, tt.vel, tt.limit)
		if pos != tt.wantPos || vel != tt.wantV {
			t.Errorf("bounce(%v, %v, %v) = %v, %v; want %v, %v", tt.pos, tt.vel, tt.limit, pos, vel, tt.wantPos, tt.wantV)
		}
	}
}

func TestWorldStepStaysInBounds(t *testing.T) {
	tex := recorder.NewTexture("t", 1, 1)
	rng := rand.New(rand.NewPCG(1, 2))
	w := newWorld(rng, 100, 50, []SpriteConfig{{Count: 50, Size: [2]float32{10, 10}, Speed: 400}}, []texture.Texture{tex})
	if w.len() != 50 {
		t.Fatalf("len() = %d, want 50", w.len())
	}
	for range 200 {
		w.step(1.0 / 60)
	}
	for i, s := range w.sprites {
		if s.pos.X() < 0 || s.pos.X() > 90 || s.pos.Y() < 0 || s.pos.Y() > 40 {
			t.Fatalf("sprite %d at %v left the world", i, s.pos)
		}
	}

	w.togglePause()
	before := w.sprites[0].pos
	w.step(1)
	if w.sprites[0].pos != before {
		t.Error("paused world moved")
	}
}

func TestDemoRendersOneDrawPerShader(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.White)
	f, err := os.Create(filepath.Join(dir, "ball.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := defaultConfig()
	cfg.dir = dir
	cfg.Sprites = []SpriteConfig{
		{Texture: "ball.png", Count: 10, Size: [2]float32{4, 4}, Speed: 10},
		{Count: 5, Size: [2]float32{8, 8}, Speed: 10},
	}
	rec := recorder.New()
	d, err := newDemo(context.Background(), cfg, rec, false)
	if err != nil {
		t.Fatalf("newDemo() error = %v", err)
	}
	// ball, checker and the font atlas
	if n := rec.Count(recorder.CmdCreateTexture); n != 3 {
		t.Errorf("textures created = %d, want 3", n)
	}

	rp, err := renderpass.New(rec)
	if err != nil {
		t.Fatal(err)
	}
	d.render(rp, 0)
	stats := rp.FlushFrame()
	if stats.Err != nil {
		t.Fatalf("FlushFrame() Err = %v", stats.Err)
	}
	// sprites and HUD glyphs share the sprite shader, so one batch draws everything
	if stats.DrawCalls != 1 || stats.Quads <= 15 {
		t.Errorf("stats = %+v, want 1 draw of the 15 sprites plus HUD glyphs", stats)
	}

	d.resize(640, 360)
	if _, right, _, top := d.cam.Viewport(); right != 640 || top != 360 {
		t.Errorf("viewport after resize = %v x %v, want 640 x 360", right, top)
	}
	if d.world.width != 640 || d.world.height != 360 {
		t.Errorf("world bounds = %v x %v", d.world.width, d.world.height)
	}
}

package loader

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/recorder"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestLoadTexturesFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"sprites/a.png": {Data: encodePNG(t, 4, 2)},
		"sprites/b.png": {Data: encodePNG(t, 8, 8)},
		"sprites/c.png": {Data: encodePNG(t, 1, 1)},
	}
	rec := recorder.New()
	var progress []int
	l := NewLoader(rec, WithFS(fsys), WithWorkers(2), WithProgress(func(done, total int, _ string) {
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		progress = append(progress, done)
	}))
	defer l.Close()

	textures, err := l.LoadTextures(context.Background(), "sprites/a.png", "sprites/b.png", "sprites/a.png", "sprites/c.png")
	if err != nil {
		t.Fatalf("LoadTextures: %v", err)
	}
	if len(textures) != 4 {
		t.Fatalf("got %d textures, want 4", len(textures))
	}
	if textures[0] != textures[2] {
		t.Error("duplicate path loaded twice")
	}
	if textures[0].Width() != 4 || textures[0].Height() != 2 {
		t.Errorf("a.png is %dx%d, want 4x2", textures[0].Width(), textures[0].Height())
	}
	if textures[1].Label() != "sprites/b.png" {
		t.Errorf("label = %q", textures[1].Label())
	}
	if got := rec.Count(recorder.CmdCreateTexture); got != 3 {
		t.Errorf("CreateTexture called %d times, want 3", got)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v, want [1 2 3]", progress)
	}

	again, err := l.LoadTexture("sprites/b.png")
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if again != textures[1] || rec.Count(recorder.CmdCreateTexture) != 3 {
		t.Error("cached texture was uploaded again")
	}
	if len(l.Textures()) != 3 || l.Get("sprites/c.png") != textures[3] {
		t.Errorf("cache = %v", l.Textures())
	}
}

func TestLoadTexturesPartialFailure(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.png":  {Data: encodePNG(t, 2, 2)},
		"bad.png": {Data: []byte("not an image")},
	}
	l := NewLoader(recorder.New(), WithFS(fsys))
	defer l.Close()

	textures, err := l.LoadTextures(context.Background(), "ok.png", "bad.png", "missing.png")
	if err == nil {
		t.Fatal("expected an error")
	}
	if textures[0] == nil {
		t.Error("ok.png not loaded")
	}
	if textures[1] != nil || textures[2] != nil {
		t.Errorf("failed paths returned textures: %v", textures[1:])
	}
	if l.Get("bad.png") != nil {
		t.Error("failed texture cached")
	}
}

func TestLoadTextureFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tile.png")
	if err := os.WriteFile(path, encodePNG(t, 16, 16), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(recorder.New(), WithWorkers(1))
	defer l.Close()

	tex, err := l.LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if tex.Width() != 16 {
		t.Errorf("width = %d", tex.Width())
	}
}

func TestLoadAfterClose(t *testing.T) {
	l := NewLoader(recorder.New())
	l.Close()
	l.Close()
	if _, err := l.LoadTextures(context.Background(), "x.png"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestLoadNoPaths(t *testing.T) {
	l := NewLoader(recorder.New(), WithFS(fstest.MapFS{}))
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	textures, err := l.LoadTextures(ctx)
	if err != nil || len(textures) != 0 {
		t.Errorf("LoadTextures() = %v, %v", textures, err)
	}
}

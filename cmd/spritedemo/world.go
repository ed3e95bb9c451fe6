package main

import (
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/camera"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
)

type sprite struct {
	tex  texture.Texture
	pos  mgl32.Vec2
	vel  mgl32.Vec2
	size mgl32.Vec2
}

// world is the bouncing sprite simulation. step runs on the tick goroutine and draw on the render thread.
type world struct {
	mu      sync.Mutex
	sprites []sprite
	width   float32
	height  float32
	paused  bool
}

// newWorld spawns the configured sprites at random positions and headings.
//
// Parameters:
//   - rng: the random source
//   - width, height: the world bounds
//   - sets: the sprite configurations, each with its texture in textures at the same index
//   - textures: one texture per sprite configuration
//
// Returns:
//   - *world: the populated world
func newWorld(rng *rand.Rand, width, height int, sets []SpriteConfig, textures []texture.Texture) *world {
	w := &world{width: float32(width), height: float32(height)}
	for i, set := range sets {
		size := mgl32.Vec2{set.Size[0], set.Size[1]}
		for range set.Count {
			angle := rng.Float64() * 2 * math.Pi
			speed := set.Speed * (0.5 + rng.Float32())
			w.sprites = append(w.sprites, sprite{
				tex: textures[i],
				pos: mgl32.Vec2{
					rng.Float32() * max(w.width-size.X(), 0),
					rng.Float32() * max(w.height-size.Y(), 0),
				},
				vel:  mgl32.Vec2{float32(math.Cos(angle)) * speed, float32(math.Sin(angle)) * speed},
				size: size,
			})
		}
	}
	return w
}

func (w *world) step(dt float32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused {
		return
	}
	for i := range w.sprites {
		s := &w.sprites[i]
		s.pos = s.pos.Add(s.vel.Mul(dt))
		s.pos[0], s.vel[0] = bounce(s.pos[0], s.vel[0], w.width-s.size[0])
		s.pos[1], s.vel[1] = bounce(s.pos[1], s.vel[1], w.height-s.size[1])
	}
}

// bounce reflects a coordinate that left [0, limit].
func bounce(pos, vel, limit float32) (float32, float32) {
	limit = max(limit, 0)
	switch {
	case pos < 0:
		return -pos, -vel
	case pos > limit:
		return max(2*limit-pos, 0), -vel
	}
	return pos, vel
}

func (w *world) resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = float32(width), float32(height)
}

func (w *world) togglePause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = !w.paused
}

func (w *world) len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sprites)
}

// draw queues every sprite. Rejected sprites are counted and the rest still queue.
//
// Returns:
//   - int: the number of sprites queued
//   - error: the joined rejection errors
func (w *world) draw(rp *renderpass.RenderPass, prog renderer.Program, cam camera.Camera) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	queued := 0
	for _, s := range w.sprites {
		tr := transform.New(
			transform.WithPosition(s.pos.X(), s.pos.Y(), 0),
			transform.WithScale(s.size.X(), s.size.Y(), 1),
		)
		if err := rp.SubmitSprite(s.tex, prog, tr, cam, batch.FullTexCoords); err != nil {
			errs = append(errs, err)
			continue
		}
		queued++
	}
	return queued, errors.Join(errs...)
}

// checkerImage is the texture for sprites configured without one.
func checkerImage(size, cell int, a, b color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

package main

import (
	"context"
	"fmt"
	"image/color"
	"math/rand/v2"
	"os"

	"github.com/Carmen-Shannon/oxy-batch/engine/camera"
	"github.com/Carmen-Shannon/oxy-batch/engine/loader"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/profiler"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-batch/engine/renderpass"
	"github.com/Carmen-Shannon/oxy-batch/engine/text"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// demo holds everything the frame callbacks draw: the sprite world, the HUD font and the camera.
type demo struct {
	prog     shader.Shader
	world    *world
	atlas    *text.Atlas
	cam      camera.Camera
	textures []texture.Texture
	profiler *profiler.Profiler
}

// newDemo compiles the shader, loads the textures and the HUD font through creator and spawns the world.
//
// Parameters:
//   - ctx: cancels texture loading
//   - cfg: the scene configuration
//   - creator: uploads textures, the GPU backend or the recorder
//   - showProgress: draw a progress bar while textures load
//
// Returns:
//   - *demo: the ready scene
//   - error: an error if the shader, a texture or the font failed to load
func newDemo(ctx context.Context, cfg Config, creator texture.Creator, showProgress bool) (*demo, error) {
	d := &demo{
		cam: camera.NewCamera(camera.WithOrthographic(0, float32(cfg.Window.Width), 0, float32(cfg.Window.Height))),
	}

	if cfg.Renderer.Shader != "" {
		prog, err := shader.NewShaderFromPath("custom_sprite", cfg.resolve(cfg.Renderer.Shader))
		if err != nil {
			return nil, err
		}
		d.prog = prog
	} else {
		d.prog = shader.NewSpriteShader()
	}

	perSprite, err := d.loadTextures(ctx, cfg, creator, showProgress)
	if err != nil {
		return nil, err
	}

	if cfg.HUD.Enabled {
		var font []byte
		if cfg.HUD.Font != "" {
			if font, err = os.ReadFile(cfg.resolve(cfg.HUD.Font)); err != nil {
				return nil, fmt.Errorf("read font: %w", err)
			}
		}
		atlas, err := text.NewAtlas(font, cfg.HUD.FontSize, text.WithLabel("hud_font"))
		if err != nil {
			return nil, err
		}
		tex, err := atlas.Upload(creator)
		if err != nil {
			return nil, err
		}
		d.textures = append(d.textures, tex)
		d.atlas = atlas
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	d.world = newWorld(rng, cfg.Window.Width, cfg.Window.Height, cfg.Sprites, perSprite)
	logger.Logger().Info("scene ready", "sprites", d.world.len(), "textures", len(d.textures), "shader", d.prog.Key())
	return d, nil
}

// loadTextures returns the texture of every sprite configuration, index aligned with cfg.Sprites.
func (d *demo) loadTextures(ctx context.Context, cfg Config, creator texture.Creator, showProgress bool) ([]texture.Texture, error) {
	byPath := make(map[string]texture.Texture)
	if paths := cfg.texturePaths(); len(paths) > 0 {
		var opts []loader.LoaderBuilderOption
		if showProgress {
			bar := progressbar.Default(int64(len(paths)), "loading textures")
			defer bar.Finish()
			opts = append(opts, loader.WithProgress(func(done, _ int, _ string) {
				_ = bar.Set(done)
			}))
		}
		l := loader.NewLoader(creator, opts...)
		defer l.Close()

		loaded, err := l.LoadTextures(ctx, paths...)
		if err != nil {
			return nil, err
		}
		for i, p := range paths {
			byPath[p] = loaded[i]
			d.textures = append(d.textures, loaded[i])
		}
	}

	var checker texture.Texture
	perSprite := make([]texture.Texture, len(cfg.Sprites))
	for i, s := range cfg.Sprites {
		if s.Texture != "" {
			perSprite[i] = byPath[cfg.resolve(s.Texture)]
			continue
		}
		if checker == nil {
			img := checkerImage(64, 8, color.RGBA{R: 0xe8, G: 0x6a, B: 0x17, A: 0xff}, color.RGBA{R: 0x1f, G: 0x2a, B: 0x44, A: 0xff})
			tex, err := creator.CreateTexture("checker", texture.FromImage(img))
			if err != nil {
				return nil, err
			}
			checker = tex
			d.textures = append(d.textures, tex)
		}
		perSprite[i] = checker
	}
	return perSprite, nil
}

// render queues the sprites and the HUD line.
func (d *demo) render(rp *renderpass.RenderPass, _ float32) {
	n, err := d.world.draw(rp, d.prog, d.cam)
	if err != nil {
		logger.Logger().Warn("sprites rejected", "queued", n, "err", err)
	}
	if d.atlas == nil {
		return
	}

	line := fmt.Sprintf("%s sprites", humanize.Comma(int64(n)))
	if d.profiler != nil {
		if r := d.profiler.Last(); r.Frames > 0 {
			line += fmt.Sprintf("  %.0f fps  %.1f draws  %s/s", r.FPS, r.DrawCalls, humanize.Bytes(uint64(r.UploadRate)))
		}
	}
	_, _, _, top := d.cam.Viewport()
	origin := transform.New(transform.WithPosition(10, top-d.atlas.Ascent()-10, 0))
	if err := rp.SubmitText(line, origin, d.atlas, d.prog, d.cam); err != nil {
		logger.Logger().Warn("hud text rejected", "err", err)
	}
}

func (d *demo) resize(width, height int) {
	d.cam.Resize(width, height)
	d.world.resize(width, height)
}

// release frees the demo's textures on backends that own GPU memory.
func (d *demo) release() {
	for _, tex := range d.textures {
		if r, ok := tex.(interface{ Release() }); ok {
			r.Release()
		}
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/wgpu_backend"
	"gopkg.in/yaml.v3"
)

// Config is the demo scene read from a YAML file. Fields missing from the file keep their defaults.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Renderer RendererConfig `yaml:"renderer"`
	HUD      HUDConfig      `yaml:"hud"`
	Sprites  []SpriteConfig `yaml:"sprites"`
	TickRate float64        `yaml:"tick_rate"`
	Seed     uint64         `yaml:"seed"`
	LogLevel string         `yaml:"log_level"`

	// dir resolves relative asset paths; it is the directory of the config file.
	dir string
}

type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type RendererConfig struct {
	PresentMode string  `yaml:"present_mode"`
	MSAA        int     `yaml:"msaa"`
	FrameLimit  float64 `yaml:"frame_limit"`
	// Shader is a WGSL file replacing the built-in sprite shader.
	Shader string `yaml:"shader"`
}

type HUDConfig struct {
	Enabled  bool    `yaml:"enabled"`
	FontSize float64 `yaml:"font_size"`
	// Font is a TTF/OTF file; empty uses Go Regular.
	Font string `yaml:"font"`
}

// SpriteConfig spawns Count bouncing sprites sharing one texture. An empty Texture uses a generated checker.
type SpriteConfig struct {
	Texture string     `yaml:"texture"`
	Count   int        `yaml:"count"`
	Size    [2]float32 `yaml:"size"`
	Speed   float32    `yaml:"speed"`
}

func defaultConfig() Config {
	return Config{
		Window: WindowConfig{Title: "oxy-batch sprites", Width: 1280, Height: 720},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        1,
		},
		HUD:      HUDConfig{Enabled: true, FontSize: 18},
		Sprites:  []SpriteConfig{{Count: 1000, Size: [2]float32{24, 24}, Speed: 150}},
		TickRate: 60,
		Seed:     1,
		LogLevel: "info",
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
//
// Parameters:
//   - path: the YAML file to read, or ""
//
// Returns:
//   - Config: the validated configuration
//   - error: an error if the file cannot be read, parsed or validated
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, cfg.validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, err := c.presentMode(); err != nil {
		return err
	}
	if _, err := c.msaa(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate %v must be positive", c.TickRate)
	}
	if c.Renderer.FrameLimit < 0 {
		return fmt.Errorf("frame_limit %v must not be negative", c.Renderer.FrameLimit)
	}
	if c.HUD.Enabled && c.HUD.FontSize <= 0 {
		return fmt.Errorf("hud font_size %v must be positive", c.HUD.FontSize)
	}
	for i, s := range c.Sprites {
		if s.Count < 0 {
			return fmt.Errorf("sprites[%d]: count %d must not be negative", i, s.Count)
		}
		if s.Size[0] <= 0 || s.Size[1] <= 0 {
			return fmt.Errorf("sprites[%d]: size %v must be positive", i, s.Size)
		}
	}
	return nil
}

func (c Config) presentMode() (wgpu_backend.PresentMode, error) {
	switch c.Renderer.PresentMode {
	case "", "vsync":
		return wgpu_backend.PresentModeVSync, nil
	case "uncapped":
		return wgpu_backend.PresentModeUncapped, nil
	}
	return 0, fmt.Errorf("unknown present_mode %q (want vsync or uncapped)", c.Renderer.PresentMode)
}

func (c Config) msaa() (wgpu_backend.MSAASampleCount, error) {
	switch c.Renderer.MSAA {
	case 0, 1:
		return wgpu_backend.MSAAOff, nil
	case 4:
		return wgpu_backend.MSAA4x, nil
	}
	return 0, fmt.Errorf("unsupported msaa %d (want 1 or 4)", c.Renderer.MSAA)
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// resolve makes an asset path relative to the config file's directory.
func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// texturePaths returns the distinct resolved texture files the sprites reference, in first-use order.
func (c Config) texturePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, s := range c.Sprites {
		p := c.resolve(s.Texture)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}

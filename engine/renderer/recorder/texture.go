package recorder

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
)

// Texture is an in-memory texture.Texture. It keeps the staging pixels so headless runs can inspect them.
type Texture struct {
	label  string
	width  uint32
	height uint32
	pixels []byte
}

var _ texture.Texture = &Texture{}

// NewTexture creates a Texture without pixel data, sized width x height.
//
// Parameters:
//   - label: the texture label
//   - width: the texture width in pixels
//   - height: the texture height in pixels
//
// Returns:
//   - *Texture: the new texture
func NewTexture(label string, width, height uint32) *Texture {
	return &Texture{label: label, width: width, height: height}
}

func newTextureFromStaging(label string, data common.TextureStagingData) *Texture {
	px := make([]byte, len(data.Pixels))
	copy(px, data.Pixels)
	return &Texture{label: label, width: data.Width, height: data.Height, pixels: px}
}

func (t *Texture) Label() string {
	return t.label
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

// Pixels returns the RGBA8 pixels the texture was created with, or nil.
func (t *Texture) Pixels() []byte {
	return t.pixels
}

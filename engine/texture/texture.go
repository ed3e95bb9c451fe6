// Package texture defines the borrowed texture handle used by the batching layer and the decoders that
// turn image files into staging data for upload.
package texture

import (
	"github.com/Carmen-Shannon/oxy-batch/common"
)

// Texture is a GPU texture handle owned by whoever created it (usually a backend or the loader).
// The batching layer only borrows textures for the duration of a frame and compares them by identity,
// so implementations must be pointer types.
type Texture interface {
	// Label returns a debug label for the texture.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Width returns the texture width in pixels.
	//
	// Returns:
	//   - uint32: the width in pixels
	Width() uint32

	// Height returns the texture height in pixels.
	//
	// Returns:
	//   - uint32: the height in pixels
	Height() uint32
}

// Creator uploads decoded staging data and returns a texture handle. Backends implement it.
type Creator interface {
	// CreateTexture uploads the staging data as a new RGBA texture.
	//
	// Parameters:
	//   - label: a debug label for the texture
	//   - data: the decoded RGBA pixels and dimensions
	//
	// Returns:
	//   - Texture: the created texture handle
	//   - error: an error if the staging data is invalid or the upload fails
	CreateTexture(label string, data common.TextureStagingData) (Texture, error)
}

// UV returns the texture-coordinate rectangle (u0, v0, u1, v1) covering the pixel rectangle (x, y, w, h) of a
// texture with the given dimensions. Texture space has v growing downward from the top row, while quads are
// built bottom-up, so v0 is the bottom edge of the region and v1 its top edge.
//
// Parameters:
//   - x, y: the top-left pixel of the region
//   - w, h: the region size in pixels
//   - texWidth, texHeight: the full texture size in pixels
//
// Returns:
//   - [4]float32: the rectangle as (u0, v0, u1, v1)
func UV(x, y, w, h, texWidth, texHeight int) [4]float32 {
	if texWidth <= 0 || texHeight <= 0 {
		return [4]float32{}
	}
	tw, th := float32(texWidth), float32(texHeight)
	return [4]float32{
		float32(x) / tw,
		float32(y+h) / th,
		float32(x+w) / tw,
		float32(y) / th,
	}
}

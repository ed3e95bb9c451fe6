package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-batch/common"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image stream to tightly packed RGBA pixel data.
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - common.TextureStagingData: the decoded pixels and dimensions
//   - string: the detected format name
//   - error: an error if the stream is not a supported image
func Decode(r io.Reader) (common.TextureStagingData, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return common.TextureStagingData{}, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), format, nil
}

// DecodeBytes decodes an in-memory encoded image. See Decode.
//
// Parameters:
//   - data: the encoded image bytes
//
// Returns:
//   - common.TextureStagingData: the decoded pixels and dimensions
//   - error: an error if the data is not a supported image
func DecodeBytes(data []byte) (common.TextureStagingData, error) {
	staging, _, err := Decode(bytes.NewReader(data))
	return staging, err
}

// DecodeFile opens and decodes an image file. See Decode.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - common.TextureStagingData: the decoded pixels and dimensions
//   - error: an error if the file cannot be read or decoded
func DecodeFile(path string) (common.TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("failed to open texture file %s: %w", path, err)
	}
	defer f.Close()

	staging, _, err := Decode(f)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("%s: %w", path, err)
	}
	return staging, nil
}

// FromImage converts any image to RGBA staging data, copying pixels when the image is not already a
// tightly packed *image.RGBA anchored at the origin.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - common.TextureStagingData: the RGBA pixels and dimensions
func FromImage(img image.Image) common.TextureStagingData {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if rgba, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) && rgba.Stride == w*4 {
		return common.TextureStagingData{Pixels: rgba.Pix, Width: uint32(w), Height: uint32(h)}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return common.TextureStagingData{Pixels: rgba.Pix, Width: uint32(w), Height: uint32(h)}
}

// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
// Decoders in the texture package produce it and backends consume it when creating a texture handle.
type TextureStagingData struct {
	// Pixels is the tightly packed RGBA8 pixel data, 4 bytes per pixel, row-major from the top-left corner.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// Valid reports whether the staging data describes a non-empty image whose pixel buffer matches its dimensions.
//
// Returns:
//   - bool: true if Width and Height are non-zero and len(Pixels) == Width*Height*4
func (t TextureStagingData) Valid() bool {
	if t.Width == 0 || t.Height == 0 {
		return false
	}
	return uint64(len(t.Pixels)) == uint64(t.Width)*uint64(t.Height)*4
}

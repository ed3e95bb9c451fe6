// Package text rasterizes a TrueType/OpenType font into a single RGBA glyph atlas and lays strings out as
// textured quads that batch with every other quad using the atlas texture.
package text

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrNotUploaded is returned by Layout before Upload has produced the atlas texture.
	ErrNotUploaded = errors.New("text: atlas not uploaded")

	// ErrAtlasFull is returned when the glyphs do not fit the maximum atlas height.
	ErrAtlasFull = errors.New("text: glyphs do not fit the atlas")
)

// Glyph is the atlas entry of one rune. Offsets are in pixels in a y-up space relative to the pen position
// on the baseline.
type Glyph struct {
	Rune rune
	// X, Y, Width, Height locate the glyph bitmap in the atlas, Y growing downward.
	X, Y, Width, Height int
	// BearingX is the horizontal offset from the pen to the left edge of the bitmap.
	BearingX float32
	// BearingY is the vertical offset from the baseline to the bottom edge of the bitmap.
	BearingY float32
	// Advance is how far the pen moves after the glyph.
	Advance float32
}

// Atlas is a rasterized font: a glyph table and the RGBA pixels of every glyph packed in rows. After Upload
// it implements renderpass.TextLayouter.
type Atlas struct {
	label    string
	size     float64
	dpi      float64
	padding  int
	width    int
	maxSize  int
	runes    []rune
	fallback rune
	fontData []byte

	face       font.Face
	glyphs     map[rune]Glyph
	pixels     *image.RGBA
	ascent     float32
	descent    float32
	lineHeight float32

	tex texture.Texture
}

// NewAtlas parses the font and rasterizes the atlas runes at the given pixel size.
//
// Parameters:
//   - fontData: a TrueType or OpenType font, nil for Go Regular
//   - size: the font size in points (pixels at the default 72 DPI)
//   - options: a variadic list of AtlasBuilderOption functions
//
// Returns:
//   - *Atlas: the rasterized atlas, not yet uploaded
//   - error: an error if the font cannot be parsed or the glyphs do not fit
func NewAtlas(fontData []byte, size float64, options ...AtlasBuilderOption) (*Atlas, error) {
	a := &Atlas{
		label:    "Font Atlas",
		size:     size,
		dpi:      72,
		padding:  1,
		width:    512,
		maxSize:  4096,
		fallback: '?',
		fontData: fontData,
	}
	for r := rune(0x20); r < 0x7f; r++ {
		a.runes = append(a.runes, r)
	}
	for _, opt := range options {
		opt(a)
	}
	if a.fontData == nil {
		a.fontData = goregular.TTF
	}
	if size <= 0 {
		return nil, fmt.Errorf("text: invalid font size %v", size)
	}

	parsed, err := opentype.Parse(a.fontData)
	if err != nil {
		return nil, fmt.Errorf("text: parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    a.size,
		DPI:     a.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("text: create face: %w", err)
	}
	a.face = face

	metrics := face.Metrics()
	a.ascent = fixedToFloat(metrics.Ascent)
	a.descent = fixedToFloat(metrics.Descent)
	a.lineHeight = fixedToFloat(metrics.Height)

	if err := a.rasterize(); err != nil {
		return nil, err
	}
	logger.Logger().Debug("font atlas built", "label", a.label, "glyphs", len(a.glyphs),
		"width", a.pixels.Bounds().Dx(), "height", a.pixels.Bounds().Dy())
	return a, nil
}

// rasterize packs every rune's bounds into shelves of the atlas width, then draws the glyph masks in white
// so the shader tint decides the final color.
func (a *Atlas) rasterize() error {
	runes := append([]rune(nil), a.runes...)
	if a.fallback != 0 {
		runes = append(runes, a.fallback)
	}
	runes = uniqueRunes(runes)
	a.glyphs = make(map[rune]Glyph, len(runes))

	type placed struct {
		glyph  Glyph
		bounds fixed.Rectangle26_6
	}
	var pending []placed

	x, y, rowHeight := a.padding, a.padding, 0
	for _, r := range runes {
		bounds, advance, ok := a.face.GlyphBounds(r)
		if !ok {
			continue
		}
		minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
		w, h := bounds.Max.X.Ceil()-minX, bounds.Max.Y.Ceil()-minY
		if w < 0 || h < 0 {
			w, h = 0, 0
		}
		if w+2*a.padding > a.width {
			return fmt.Errorf("%w: glyph %q is %dpx wide, atlas is %dpx", ErrAtlasFull, r, w, a.width)
		}
		if x+w+a.padding > a.width {
			x = a.padding
			y += rowHeight + a.padding
			rowHeight = 0
		}
		g := Glyph{
			Rune:     r,
			X:        x,
			Y:        y,
			Width:    w,
			Height:   h,
			BearingX: float32(minX),
			BearingY: -float32(bounds.Max.Y.Ceil()),
			Advance:  fixedToFloat(advance),
		}
		pending = append(pending, placed{glyph: g, bounds: bounds})
		x += w + a.padding
		rowHeight = max(rowHeight, h)
	}

	height := nextPowerOfTwo(y + rowHeight + a.padding)
	if height > a.maxSize {
		return fmt.Errorf("%w: need %dpx, limit is %dpx", ErrAtlasFull, height, a.maxSize)
	}
	a.pixels = image.NewRGBA(image.Rect(0, 0, a.width, height))

	white := image.NewUniform(color.White)
	for _, p := range pending {
		g := p.glyph
		a.glyphs[g.Rune] = g
		if g.Width == 0 || g.Height == 0 {
			continue
		}
		dot := fixed.P(g.X-p.bounds.Min.X.Floor(), g.Y-p.bounds.Min.Y.Floor())
		dr, mask, maskp, _, ok := a.face.Glyph(dot, g.Rune)
		if !ok {
			continue
		}
		draw.DrawMask(a.pixels, dr, white, image.Point{}, mask, maskp, draw.Over)
	}
	return nil
}

// Glyph returns the atlas entry of r.
//
// Parameters:
//   - r: the rune to look up
//
// Returns:
//   - Glyph: the glyph entry
//   - bool: false if r is not in the atlas
func (a *Atlas) Glyph(r rune) (Glyph, bool) {
	g, ok := a.glyphs[r]
	return g, ok
}

// LineHeight returns the distance between baselines in pixels.
func (a *Atlas) LineHeight() float32 {
	return a.lineHeight
}

// Ascent returns the distance from the baseline to the top of the tallest glyphs in pixels.
func (a *Atlas) Ascent() float32 {
	return a.ascent
}

// Size returns the atlas image size in pixels.
func (a *Atlas) Size() (int, int) {
	b := a.pixels.Bounds()
	return b.Dx(), b.Dy()
}

// StagingData returns the atlas pixels ready for a texture upload.
//
// Returns:
//   - common.TextureStagingData: the RGBA pixels and dimensions
func (a *Atlas) StagingData() common.TextureStagingData {
	w, h := a.Size()
	return common.TextureStagingData{
		Pixels: a.pixels.Pix,
		Width:  uint32(w),
		Height: uint32(h),
	}
}

// Upload creates the atlas texture with creator. Layout uses the texture from then on.
//
// Parameters:
//   - creator: the texture creator, usually the backend
//
// Returns:
//   - texture.Texture: the atlas texture
//   - error: an error if the upload failed
func (a *Atlas) Upload(creator texture.Creator) (texture.Texture, error) {
	tex, err := creator.CreateTexture(a.label, a.StagingData())
	if err != nil {
		return nil, fmt.Errorf("text: upload %s: %w", a.label, err)
	}
	a.tex = tex
	return tex, nil
}

// Texture returns the uploaded atlas texture, nil before Upload.
func (a *Atlas) Texture() texture.Texture {
	return a.tex
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

func nextPowerOfTwo(v int) int {
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

func uniqueRunes(runes []rune) []rune {
	seen := make(map[rune]struct{}, len(runes))
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

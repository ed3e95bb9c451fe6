package text

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-batch/engine/batch"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/unicode/norm"
)

// Layout lays s out as one quad per visible glyph. The first baseline starts at the transform's world
// position, lines advance downward, and the transform's X and Y scale multiply the pixel metrics. Input is
// NFC-normalized first so composed runes in the atlas match decomposed input.
//
// Parameters:
//   - s: the text to lay out, '\n' starts a new line
//   - tr: the origin and scale of the text
//
// Returns:
//   - []batch.Quad: the glyph quads, all sampling the atlas texture
//   - error: ErrNotUploaded before Upload
func (a *Atlas) Layout(s string, tr transform.Transform) ([]batch.Quad, error) {
	if a.tex == nil {
		return nil, ErrNotUploaded
	}
	origin := tr.WorldPosition()
	sx, sy := tr.Scale.X(), tr.Scale.Y()
	aw, ah := a.Size()

	quads := make([]batch.Quad, 0, len(s))
	a.walk(norm.NFC.String(s), func(g Glyph, penX, penY float32) {
		if g.Width == 0 || g.Height == 0 {
			return
		}
		quads = append(quads, batch.Quad{
			Texture: a.tex,
			Position: mgl32.Vec3{
				origin.X() + (penX+g.BearingX)*sx,
				origin.Y() + (penY+g.BearingY)*sy,
				origin.Z(),
			},
			Size:      mgl32.Vec2{float32(g.Width) * sx, float32(g.Height) * sy},
			TexCoords: mgl32.Vec4(texture.UV(g.X, g.Y, g.Width, g.Height, aw, ah)),
		})
	})
	return quads, nil
}

// Measure returns the unscaled size of the text block: the widest line's advance and the height from the
// top of the first line to the bottom of the last.
//
// Parameters:
//   - s: the text to measure
//
// Returns:
//   - float32: the width in pixels
//   - float32: the height in pixels
func (a *Atlas) Measure(s string) (float32, float32) {
	if s == "" {
		return 0, 0
	}
	s = norm.NFC.String(s)
	var width float32
	a.walk(s, func(g Glyph, penX, _ float32) {
		width = max(width, penX+g.Advance)
	})
	lines := strings.Count(s, "\n") + 1
	return width, a.ascent + a.descent + float32(lines-1)*a.lineHeight
}

// walk calls fn for every glyph with the pen position relative to the first baseline, applying kerning
// between neighbours. Runes missing from the atlas use the fallback glyph, or are skipped without one.
func (a *Atlas) walk(s string, fn func(g Glyph, penX, penY float32)) {
	var penX, penY float32
	prev := rune(-1)
	for _, r := range s {
		if r == '\n' {
			penX = 0
			penY -= a.lineHeight
			prev = -1
			continue
		}
		g, ok := a.lookup(r)
		if !ok {
			continue
		}
		if prev >= 0 {
			penX += fixedToFloat(a.face.Kern(prev, g.Rune))
		}
		fn(g, penX, penY)
		penX += g.Advance
		prev = g.Rune
	}
}

func (a *Atlas) lookup(r rune) (Glyph, bool) {
	if g, ok := a.glyphs[r]; ok {
		return g, true
	}
	if a.fallback == 0 {
		return Glyph{}, false
	}
	g, ok := a.glyphs[a.fallback]
	return g, ok
}

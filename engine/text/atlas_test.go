package text

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-batch/engine/renderer/recorder"
	"github.com/Carmen-Shannon/oxy-batch/engine/transform"
)

func newUploadedAtlas(t *testing.T, options ...AtlasBuilderOption) *Atlas {
	t.Helper()
	a, err := NewAtlas(nil, 24, options...)
	if err != nil {
		t.Fatalf("NewAtlas: %v", err)
	}
	if _, err := a.Upload(recorder.New()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return a
}

func TestNewAtlasRasterizesASCII(t *testing.T) {
	a, err := NewAtlas(nil, 24)
	if err != nil {
		t.Fatalf("NewAtlas: %v", err)
	}
	for r := rune(0x21); r < 0x7f; r++ {
		g, ok := a.Glyph(r)
		if !ok {
			t.Fatalf("glyph %q missing", r)
		}
		if g.Advance <= 0 {
			t.Errorf("glyph %q advance = %v", r, g.Advance)
		}
	}

	w, h := a.Size()
	if w != 512 || h&(h-1) != 0 {
		t.Errorf("atlas size = %dx%d, want width 512 and power-of-two height", w, h)
	}
	g, _ := a.Glyph('M')
	if g.Width == 0 || g.Height == 0 || g.X+g.Width > w || g.Y+g.Height > h {
		t.Errorf("glyph M placed at %+v outside %dx%d", g, w, h)
	}

	data := a.StagingData()
	if !data.Valid() {
		t.Fatal("staging data invalid")
	}
	var lit int
	for i := 3; i < len(data.Pixels); i += 4 {
		if data.Pixels[i] != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("atlas has no opaque pixels")
	}
	if a.LineHeight() <= 0 || a.Ascent() <= 0 {
		t.Errorf("metrics line height %v ascent %v", a.LineHeight(), a.Ascent())
	}
}

func TestNewAtlasErrors(t *testing.T) {
	if _, err := NewAtlas(nil, 0); err == nil {
		t.Error("zero size accepted")
	}
	if _, err := NewAtlas([]byte("not a font"), 12); err == nil {
		t.Error("garbage font accepted")
	}
	if _, err := NewAtlas(nil, 48, WithWidth(64), WithMaxSize(64)); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("tiny atlas: err = %v, want ErrAtlasFull", err)
	}
}

func TestLayoutBeforeUpload(t *testing.T) {
	a, err := NewAtlas(nil, 16)
	if err != nil {
		t.Fatalf("NewAtlas: %v", err)
	}
	if _, err := a.Layout("hi", transform.Identity()); !errors.Is(err, ErrNotUploaded) {
		t.Errorf("err = %v, want ErrNotUploaded", err)
	}
}

func TestLayoutAdvancesPen(t *testing.T) {
	a := newUploadedAtlas(t)
	quads, err := a.Layout("A V", transform.New(transform.WithPosition(100, 50, 0.5)))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(quads) != 2 {
		t.Fatalf("got %d quads, want 2 (space has no bitmap)", len(quads))
	}
	for i, q := range quads {
		if q.Texture != a.Texture() {
			t.Errorf("quad %d samples %v, want the atlas", i, q.Texture)
		}
		if q.Position.Z() != 0.5 {
			t.Errorf("quad %d z = %v", i, q.Position.Z())
		}
		for _, c := range q.TexCoords {
			if c < 0 || c > 1 {
				t.Errorf("quad %d tex coords %v out of range", i, q.TexCoords)
			}
		}
	}
	gA, _ := a.Glyph('A')
	gSpace, _ := a.Glyph(' ')
	if quads[1].Position.X() < 100+gA.Advance+gSpace.Advance-4 {
		t.Errorf("second glyph at x %v, expected past %v", quads[1].Position.X(), 100+gA.Advance+gSpace.Advance)
	}
	if quads[0].Position.X() < 95 || quads[0].Position.X() > 105 {
		t.Errorf("first glyph at x %v, want near the origin", quads[0].Position.X())
	}
}

func TestLayoutNewlineAndScale(t *testing.T) {
	a := newUploadedAtlas(t)
	one, err := a.Layout("H\nH", transform.Identity())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(one) != 2 {
		t.Fatalf("got %d quads, want 2", len(one))
	}
	if dy := one[0].Position.Y() - one[1].Position.Y(); dy != a.LineHeight() {
		t.Errorf("line step = %v, want %v", dy, a.LineHeight())
	}
	if one[0].Position.X() != one[1].Position.X() {
		t.Errorf("second line starts at x %v, want %v", one[1].Position.X(), one[0].Position.X())
	}

	two, err := a.Layout("H", transform.New(transform.WithScale(2, 3, 1)))
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if two[0].Size.X() != one[0].Size.X()*2 || two[0].Size.Y() != one[0].Size.Y()*3 {
		t.Errorf("scaled size = %v, unscaled %v", two[0].Size, one[0].Size)
	}
}

func TestLayoutFallbackAndNormalization(t *testing.T) {
	a := newUploadedAtlas(t, WithRunes("\u00e9"))

	composed, err := a.Layout("e\u0301", transform.Identity())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(composed) != 1 {
		t.Fatalf("decomposed é produced %d quads, want 1", len(composed))
	}
	gE, _ := a.Glyph('\u00e9')
	if composed[0].Size.X() != float32(gE.Width) {
		t.Errorf("quad width %v, want the é glyph width %d", composed[0].Size.X(), gE.Width)
	}

	missing, err := a.Layout("€", transform.Identity())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	gQ, _ := a.Glyph('?')
	if len(missing) != 1 || missing[0].Size.X() != float32(gQ.Width) {
		t.Errorf("missing rune quads = %+v, want one fallback glyph", missing)
	}

	strict := newUploadedAtlas(t, WithFallbackRune(0))
	skipped, err := strict.Layout("€", transform.Identity())
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("missing rune without fallback produced %d quads", len(skipped))
	}
}

func TestMeasure(t *testing.T) {
	a := newUploadedAtlas(t)
	if w, h := a.Measure(""); w != 0 || h != 0 {
		t.Errorf("Measure(\"\") = %v, %v", w, h)
	}
	w1, h1 := a.Measure("Hello")
	w2, h2 := a.Measure("Hello\nHi")
	if w2 != w1 {
		t.Errorf("widest line width = %v, want %v", w2, w1)
	}
	if h2-h1 != a.LineHeight() {
		t.Errorf("two lines are %v taller, want %v", h2-h1, a.LineHeight())
	}
}

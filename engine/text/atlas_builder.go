package text

// AtlasBuilderOption is a function that configures an Atlas during NewAtlas.
type AtlasBuilderOption func(*Atlas)

// WithLabel sets the debug label of the atlas texture.
func WithLabel(label string) AtlasBuilderOption {
	return func(a *Atlas) {
		a.label = label
	}
}

// WithRunes adds the runes of s to the atlas on top of printable ASCII.
//
// Parameters:
//   - s: a string holding every extra rune to rasterize
//
// Returns:
//   - AtlasBuilderOption: a function that applies the option to an Atlas
func WithRunes(s string) AtlasBuilderOption {
	return func(a *Atlas) {
		a.runes = append(a.runes, []rune(s)...)
	}
}

// WithDPI sets the resolution the font size is scaled by. Defaults to 72, where points equal pixels.
func WithDPI(dpi float64) AtlasBuilderOption {
	return func(a *Atlas) {
		if dpi > 0 {
			a.dpi = dpi
		}
	}
}

// WithPadding sets the empty pixels kept around every glyph so linear filtering never bleeds neighbours in.
func WithPadding(padding int) AtlasBuilderOption {
	return func(a *Atlas) {
		if padding >= 0 {
			a.padding = padding
		}
	}
}

// WithWidth sets the atlas width in pixels. The height is the smallest power of two that fits.
func WithWidth(width int) AtlasBuilderOption {
	return func(a *Atlas) {
		if width > 0 {
			a.width = width
		}
	}
}

// WithMaxSize limits the atlas height in pixels.
func WithMaxSize(size int) AtlasBuilderOption {
	return func(a *Atlas) {
		if size > 0 {
			a.maxSize = size
		}
	}
}

// WithFallbackRune sets the rune drawn for runes missing from the atlas. Use 0 to skip missing runes.
func WithFallbackRune(r rune) AtlasBuilderOption {
	return func(a *Atlas) {
		a.fallback = r
	}
}

package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func checkerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestDecodeFormats(t *testing.T) {
	src := checkerboard(3, 2)

	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
		format string
	}{
		{"png", func(b *bytes.Buffer) error { return png.Encode(b, src) }, "png"},
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }, "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatalf("encode: %v", err)
			}
			staging, format, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if format != tt.format {
				t.Errorf("Decode() format = %q, want %q", format, tt.format)
			}
			if staging.Width != 3 || staging.Height != 2 {
				t.Errorf("Decode() size = %dx%d, want 3x2", staging.Width, staging.Height)
			}
			if !staging.Valid() {
				t.Errorf("Decode() staging data invalid: %d bytes", len(staging.Pixels))
			}
			if got := staging.Pixels[0:4]; !bytes.Equal(got, []byte{255, 0, 0, 255}) {
				t.Errorf("first pixel = %v, want red", got)
			}
			if got := staging.Pixels[4:8]; !bytes.Equal(got, []byte{0, 0, 255, 255}) {
				t.Errorf("second pixel = %v, want blue", got)
			}
		})
	}
}

func TestDecodeBytesRejectsGarbage(t *testing.T) {
	if _, err := DecodeBytes([]byte("not an image")); err == nil {
		t.Error("DecodeBytes() error = nil, want error")
	}
}

func TestFromImageSubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.RGBA{G: 255, A: 255})
	sub := src.SubImage(image.Rect(2, 2, 4, 4))

	staging := FromImage(sub)
	if staging.Width != 2 || staging.Height != 2 {
		t.Fatalf("FromImage() size = %dx%d, want 2x2", staging.Width, staging.Height)
	}
	if got := staging.Pixels[0:4]; !bytes.Equal(got, []byte{0, 255, 0, 255}) {
		t.Errorf("FromImage() origin pixel = %v, want green", got)
	}
}

func TestUV(t *testing.T) {
	got := UV(16, 8, 16, 8, 64, 32)
	want := [4]float32{0.25, 0.5, 0.5, 0.25}
	if got != want {
		t.Errorf("UV() = %v, want %v", got, want)
	}
	if got := UV(0, 0, 1, 1, 0, 0); got != ([4]float32{}) {
		t.Errorf("UV() with empty texture = %v, want zero", got)
	}
}

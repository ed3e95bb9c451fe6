package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-batch/common"
	"github.com/Carmen-Shannon/oxy-batch/engine/logger"
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is a sampled RGBA texture created by the backend.
type Texture struct {
	label   string
	width   uint32
	height  uint32
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

var _ texture.Texture = &Texture{}

func (t *Texture) Label() string {
	return t.label
}

func (t *Texture) Width() uint32 {
	return t.width
}

func (t *Texture) Height() uint32 {
	return t.height
}

// View returns the texture view bound to shader texture slots.
func (t *Texture) View() *wgpu.TextureView {
	return t.view
}

// Release frees the view and the texture.
func (t *Texture) Release() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// CreateTexture uploads RGBA8 staging data into a new sRGB texture.
//
// Parameters:
//   - label: a debug label for the texture
//   - data: the decoded pixels and dimensions
//
// Returns:
//   - texture.Texture: the created *Texture
//   - error: an error if the staging data is invalid or the texture could not be created
func (b *Backend) CreateTexture(label string, data common.TextureStagingData) (texture.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.createTexture(label, data)
}

func (b *Backend) createTexture(label string, data common.TextureStagingData) (*Texture, error) {
	if !data.Valid() {
		return nil, fmt.Errorf("wgpu_backend: texture %q: invalid staging data %dx%d with %d bytes", label, data.Width, data.Height, len(data.Pixels))
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&wgpu.Extent3D{
			Width:              data.Width,
			Height:             data.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	logger.Logger().Debug("texture created", "label", label, "width", data.Width, "height", data.Height)
	return &Texture{
		label:   label,
		width:   data.Width,
		height:  data.Height,
		texture: tex,
		view:    view,
	}, nil
}

// fallbackTexture returns the 1x1 opaque white texture bound to slots no batch texture occupies.
func (b *Backend) fallbackTexture() (*Texture, error) {
	if b.fallback != nil {
		return b.fallback, nil
	}
	t, err := b.createTexture("Fallback Texture", common.TextureStagingData{
		Pixels: []byte{0xff, 0xff, 0xff, 0xff},
		Width:  1,
		Height: 1,
	})
	if err != nil {
		return nil, err
	}
	b.fallback = t
	return t, nil
}

// spriteSampler returns the sampler shared by every sampler binding.
func (b *Backend) spriteSampler() (*wgpu.Sampler, error) {
	if b.sampler != nil {
		return b.sampler, nil
	}
	s, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Sprite Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu_backend: create sampler: %w", err)
	}
	b.sampler = s
	return s, nil
}

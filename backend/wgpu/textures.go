package wgpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/flexbatch"
)

// Texture registry errors.
var (
	// ErrUnknownTexture is returned when a texture ID is not in the
	// registry, either never registered or already released.
	ErrUnknownTexture = errors.New("wgpu: unknown texture id")

	// ErrBadImageSize is returned when pixel data does not match the
	// declared dimensions.
	ErrBadImageSize = errors.New("wgpu: pixel data does not match dimensions")
)

// textureEntry is one registry slot. owned entries carry the texture the
// registry created and must destroy; borrowed entries carry only the view.
type textureEntry struct {
	tex   hal.Texture
	view  hal.TextureView
	owned bool

	width, height int
}

// Textures mints flexbatch.TextureID handles for HAL texture views and
// resolves them at draw time. IDs are non-owning: batchables and sorters
// hold only the integer, and releasing an ID never destroys a borrowed
// texture. Textures the registry itself uploaded are owned and destroyed
// on Release or Close.
//
// ID 0 is flexbatch.InvalidTextureID and is never minted.
//
// Textures is not safe for concurrent use; registration and draws share
// the frame thread.
type Textures struct {
	device hal.Device
	queue  hal.Queue

	next    uint64
	entries map[flexbatch.TextureID]textureEntry
}

// NewTextures creates a registry on the given device.
func NewTextures(dev *Device) *Textures {
	return &Textures{
		device:  dev.Hal(),
		queue:   dev.Queue(),
		entries: make(map[flexbatch.TextureID]textureEntry),
	}
}

// Register mints an ID for an externally owned texture view. The caller
// keeps ownership; Release only forgets the mapping.
func (t *Textures) Register(view hal.TextureView, width, height int) flexbatch.TextureID {
	id := t.mint()
	t.entries[id] = textureEntry{view: view, width: width, height: height}
	return id
}

// UploadRGBA creates a texture from 8-bit RGBA pixel data, uploads it, and
// returns a minted ID. The registry owns the texture and destroys it when
// the ID is released.
func (t *Textures) UploadRGBA(width, height int, data []byte) (flexbatch.TextureID, error) {
	if len(data) != width*height*4 {
		return flexbatch.InvalidTextureID, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrBadImageSize, width, height, width*height*4, len(data))
	}

	w := uint32(width)
	h := uint32(height)
	tex, err := t.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "flexbatch_texture",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return flexbatch.InvalidTextureID, fmt.Errorf("wgpu: create texture: %w", err)
	}

	view, err := t.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "flexbatch_texture_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.device.DestroyTexture(tex)
		return flexbatch.InvalidTextureID, fmt.Errorf("wgpu: create texture view: %w", err)
	}

	t.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  w * 4,
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	id := t.mint()
	t.entries[id] = textureEntry{tex: tex, view: view, owned: true, width: width, height: height}
	return id, nil
}

// UploadImage uploads an image, converting to tightly packed RGBA if
// needed, and returns a minted ID and a region covering the whole texture.
func (t *Textures) UploadImage(img image.Image) (flexbatch.TextureID, flexbatch.TextureRegion, error) {
	rgba := tightRGBA(img)
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	id, err := t.UploadRGBA(w, h, rgba.Pix)
	if err != nil {
		return flexbatch.InvalidTextureID, flexbatch.TextureRegion{}, err
	}
	return id, *flexbatch.WholeTexture(id, float32(w), float32(h)), nil
}

// tightRGBA returns img as an RGBA image with zero origin and a tightly
// packed Pix slice, copying only when the input does not already qualify.
func tightRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*4 && bounds.Min == image.Pt(0, 0) {
		return rgba
	}
	tight := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tight.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
		}
	}
	return tight
}

// View resolves an ID to its texture view.
func (t *Textures) View(id flexbatch.TextureID) (hal.TextureView, bool) {
	e, ok := t.entries[id]
	return e.view, ok
}

// Size returns the pixel dimensions recorded for an ID.
func (t *Textures) Size(id flexbatch.TextureID) (width, height int, ok bool) {
	e, ok := t.entries[id]
	return e.width, e.height, ok
}

// Release forgets an ID. Owned textures are destroyed; borrowed views are
// left untouched. Releasing an unknown ID is a no-op: stale handles are
// expected once a texture's owner has freed it.
func (t *Textures) Release(id flexbatch.TextureID) {
	e, ok := t.entries[id]
	if !ok {
		return
	}
	if e.owned {
		t.device.DestroyTextureView(e.view)
		t.device.DestroyTexture(e.tex)
	}
	delete(t.entries, id)
}

// Close releases every registered ID.
func (t *Textures) Close() {
	for id := range t.entries {
		t.Release(id)
	}
}

// Len returns the number of live registrations.
func (t *Textures) Len() int { return len(t.entries) }

func (t *Textures) mint() flexbatch.TextureID {
	t.next++
	return flexbatch.TextureID(t.next)
}

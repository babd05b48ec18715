package texture

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/flexbatch"
)

// Atlas errors.
var (
	// ErrAtlasFull is returned when no shelf can hold the image.
	ErrAtlasFull = errors.New("texture: atlas is full")

	// ErrNotUploaded is returned when minting regions before Upload.
	ErrNotUploaded = errors.New("texture: atlas has not been uploaded")

	// ErrNilUploader is returned when Upload receives nil.
	ErrNilUploader = errors.New("texture: nil uploader")
)

// Default atlas settings.
const (
	// DefaultPageSize is the default page dimension.
	DefaultPageSize = 1024

	// DefaultPadding is the pixel gap between packed images, keeping
	// linear sampling from bleeding across neighbors.
	DefaultPadding = 1
)

// Uploader turns RGBA pixel data into a GPU texture and mints its handle.
// backend/wgpu's texture registry implements it over the HAL;
// ContextUploader implements it over gpucontext.
type Uploader interface {
	UploadRGBA(width, height int, data []byte) (flexbatch.TextureID, error)
}

// Config holds atlas page settings.
type Config struct {
	// Width and Height are the page dimensions in pixels.
	// Default: 1024x1024
	Width, Height int

	// Padding is the pixel gap between packed images.
	// Default: 1
	Padding int
}

// DefaultConfig returns the default page settings.
func DefaultConfig() Config {
	return Config{
		Width:   DefaultPageSize,
		Height:  DefaultPageSize,
		Padding: DefaultPadding,
	}
}

// Placement records where an image landed on the page, in pixels.
type Placement struct {
	X, Y          int
	Width, Height int
}

// Atlas packs images into one RGBA page on the CPU and mints texture
// regions addressing them once the page is on the GPU. Typical use packs
// everything at load time, uploads once, and mints regions per sprite;
// images added later need a re-upload, which mints a fresh texture handle
// and leaves regions from earlier uploads stale.
type Atlas struct {
	page  *image.RGBA
	alloc *allocator

	id    flexbatch.TextureID
	dirty bool
}

// NewAtlas creates an empty atlas page.
func NewAtlas(cfg Config) *Atlas {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Padding < 0 {
		cfg.Padding = def.Padding
	}
	return &Atlas{
		page:  image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		alloc: newAllocator(cfg.Width, cfg.Height, cfg.Padding),
	}
}

// Add packs an image onto the page at its natural size.
func (a *Atlas) Add(img image.Image) (Placement, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	x, y, ok := a.alloc.allocate(w, h)
	if !ok {
		return Placement{}, fmt.Errorf("%w: %dx%d image", ErrAtlasFull, w, h)
	}
	dst := image.Rect(x, y, x+w, y+h)
	xdraw.Copy(a.page, dst.Min, img, b, xdraw.Src, nil)
	a.dirty = true
	return Placement{X: x, Y: y, Width: w, Height: h}, nil
}

// AddScaled packs an image resampled to w x h.
func (a *Atlas) AddScaled(img image.Image, w, h int) (Placement, error) {
	x, y, ok := a.alloc.allocate(w, h)
	if !ok {
		return Placement{}, fmt.Errorf("%w: %dx%d image", ErrAtlasFull, w, h)
	}
	dst := image.Rect(x, y, x+w, y+h)
	xdraw.ApproxBiLinear.Scale(a.page, dst, img, img.Bounds(), xdraw.Src, nil)
	a.dirty = true
	return Placement{X: x, Y: y, Width: w, Height: h}, nil
}

// Upload sends the page to the GPU and records the minted handle. A no-op
// when nothing changed since the last upload.
func (a *Atlas) Upload(up Uploader) error {
	if up == nil {
		return ErrNilUploader
	}
	if !a.dirty && a.id.Valid() {
		return nil
	}
	bounds := a.page.Bounds()
	id, err := up.UploadRGBA(bounds.Dx(), bounds.Dy(), a.page.Pix)
	if err != nil {
		return fmt.Errorf("texture: upload atlas page: %w", err)
	}
	a.id = id
	a.dirty = false
	return nil
}

// Region mints a texture region for a placement, with UVs normalized to
// the page.
func (a *Atlas) Region(p Placement) (flexbatch.TextureRegion, error) {
	if !a.id.Valid() {
		return flexbatch.TextureRegion{}, ErrNotUploaded
	}
	bounds := a.page.Bounds()
	pw := float32(bounds.Dx())
	ph := float32(bounds.Dy())
	return flexbatch.TextureRegion{
		Texture: a.id,
		U:       float32(p.X) / pw,
		V:       float32(p.Y) / ph,
		U2:      float32(p.X+p.Width) / pw,
		V2:      float32(p.Y+p.Height) / ph,
		Width:   float32(p.Width),
		Height:  float32(p.Height),
	}, nil
}

// ID returns the page's texture handle, or InvalidTextureID before the
// first upload.
func (a *Atlas) ID() flexbatch.TextureID { return a.id }

// Dirty reports whether the page has changes not yet uploaded.
func (a *Atlas) Dirty() bool { return a.dirty }

// Utilization returns the fraction of page area holding images.
func (a *Atlas) Utilization() float64 { return a.alloc.utilization() }

// Reset discards all placements and pending pixels. The uploaded handle is
// forgotten but not released; the caller owns the GPU texture's lifetime.
func (a *Atlas) Reset() {
	a.alloc.reset()
	for i := range a.page.Pix {
		a.page.Pix[i] = 0
	}
	a.id = flexbatch.InvalidTextureID
	a.dirty = false
}

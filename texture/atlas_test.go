package texture

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/flexbatch"
)

// fakeUploader records uploads and mints sequential handles.
type fakeUploader struct {
	uploads int
	width   int
	height  int
	data    []byte
	fail    error
}

func (u *fakeUploader) UploadRGBA(width, height int, data []byte) (flexbatch.TextureID, error) {
	if u.fail != nil {
		return flexbatch.InvalidTextureID, u.fail
	}
	u.uploads++
	u.width = width
	u.height = height
	u.data = data
	return flexbatch.TextureID(u.uploads), nil
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAllocatorPacksOnShelves(t *testing.T) {
	a := newAllocator(64, 64, 0)

	x, y, ok := a.allocate(32, 16)
	if !ok || x != 0 || y != 0 {
		t.Fatalf("first alloc = (%d,%d,%v), want (0,0,true)", x, y, ok)
	}
	x, y, ok = a.allocate(32, 16)
	if !ok || x != 32 || y != 0 {
		t.Fatalf("second alloc = (%d,%d,%v), want (32,0,true)", x, y, ok)
	}
	// Third does not fit on the shelf; a new one opens below.
	x, y, ok = a.allocate(32, 16)
	if !ok || x != 0 || y != 16 {
		t.Fatalf("third alloc = (%d,%d,%v), want (0,16,true)", x, y, ok)
	}
}

func TestAllocatorRejectsOversize(t *testing.T) {
	a := newAllocator(64, 64, 0)
	if _, _, ok := a.allocate(65, 10); ok {
		t.Error("wider than the page must fail")
	}
	if _, _, ok := a.allocate(0, 10); ok {
		t.Error("zero width must fail")
	}
}

func TestAllocatorFillsVertically(t *testing.T) {
	a := newAllocator(32, 32, 0)
	if _, _, ok := a.allocate(32, 20); !ok {
		t.Fatal("first alloc failed")
	}
	if _, _, ok := a.allocate(32, 20); ok {
		t.Error("no vertical space left, alloc must fail")
	}
	a.reset()
	if _, _, ok := a.allocate(32, 20); !ok {
		t.Error("alloc after reset failed")
	}
}

func TestAtlasAddAndRegion(t *testing.T) {
	atlas := NewAtlas(Config{Width: 64, Height: 64, Padding: 0})

	p, err := atlas.Add(solidImage(32, 16, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if p.Width != 32 || p.Height != 16 {
		t.Errorf("placement = %+v", p)
	}

	// Regions cannot be minted before upload.
	if _, err := atlas.Region(p); !errors.Is(err, ErrNotUploaded) {
		t.Errorf("Region before upload: err = %v, want ErrNotUploaded", err)
	}

	up := &fakeUploader{}
	if err := atlas.Upload(up); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if up.width != 64 || up.height != 64 {
		t.Errorf("uploaded %dx%d, want 64x64", up.width, up.height)
	}

	region, err := atlas.Region(p)
	if err != nil {
		t.Fatalf("Region: %v", err)
	}
	if region.Texture != atlas.ID() {
		t.Errorf("region texture = %d, want %d", region.Texture, atlas.ID())
	}
	if region.U != 0 || region.V != 0 || region.U2 != 0.5 || region.V2 != 0.25 {
		t.Errorf("UVs = (%v,%v)-(%v,%v), want (0,0)-(0.5,0.25)",
			region.U, region.V, region.U2, region.V2)
	}
	if region.Width != 32 || region.Height != 16 {
		t.Errorf("region size = %vx%v, want 32x16", region.Width, region.Height)
	}
}

func TestAtlasCompositesPixels(t *testing.T) {
	atlas := NewAtlas(Config{Width: 16, Height: 16, Padding: 0})
	red := color.RGBA{R: 255, A: 255}

	if _, err := atlas.Add(solidImage(4, 4, red)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	up := &fakeUploader{}
	if err := atlas.Upload(up); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	// Top-left pixel of the page carries the packed image.
	if up.data[0] != 255 || up.data[3] != 255 {
		t.Errorf("page pixel (0,0) = %v, want opaque red", up.data[:4])
	}
	// A pixel outside the placement stays clear.
	off := (5*16 + 5) * 4
	if up.data[off+3] != 0 {
		t.Errorf("page pixel (5,5) alpha = %d, want 0", up.data[off+3])
	}
}

func TestAtlasUploadIsIdempotent(t *testing.T) {
	atlas := NewAtlas(Config{Width: 16, Height: 16})
	if _, err := atlas.Add(solidImage(4, 4, color.RGBA{A: 255})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	up := &fakeUploader{}
	if err := atlas.Upload(up); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := atlas.Upload(up); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if up.uploads != 1 {
		t.Errorf("uploads = %d, want 1 for an unchanged page", up.uploads)
	}

	// New content re-uploads and mints a fresh handle.
	if _, err := atlas.Add(solidImage(4, 4, color.RGBA{A: 255})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := atlas.Upload(up); err != nil {
		t.Fatalf("third Upload: %v", err)
	}
	if up.uploads != 2 {
		t.Errorf("uploads = %d, want 2 after new content", up.uploads)
	}
	if atlas.ID() != 2 {
		t.Errorf("ID = %d, want the re-minted handle", atlas.ID())
	}
}

func TestAtlasFull(t *testing.T) {
	atlas := NewAtlas(Config{Width: 8, Height: 8, Padding: 0})
	if _, err := atlas.Add(solidImage(8, 8, color.RGBA{A: 255})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := atlas.Add(solidImage(1, 1, color.RGBA{A: 255})); !errors.Is(err, ErrAtlasFull) {
		t.Errorf("err = %v, want ErrAtlasFull", err)
	}
}

func TestAtlasScaledAdd(t *testing.T) {
	atlas := NewAtlas(Config{Width: 32, Height: 32, Padding: 0})
	p, err := atlas.AddScaled(solidImage(16, 16, color.RGBA{G: 255, A: 255}), 8, 8)
	if err != nil {
		t.Fatalf("AddScaled: %v", err)
	}
	if p.Width != 8 || p.Height != 8 {
		t.Errorf("placement = %+v, want 8x8", p)
	}
}

func TestAtlasReset(t *testing.T) {
	atlas := NewAtlas(Config{Width: 16, Height: 16})
	if _, err := atlas.Add(solidImage(4, 4, color.RGBA{A: 255})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := atlas.Upload(&fakeUploader{}); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	atlas.Reset()
	if atlas.ID().Valid() {
		t.Error("Reset must forget the uploaded handle")
	}
	if atlas.Dirty() {
		t.Error("Reset must clear the dirty flag")
	}
	if atlas.Utilization() != 0 {
		t.Error("Reset must discard placements")
	}
}

func TestAtlasUploadErrors(t *testing.T) {
	atlas := NewAtlas(Config{})
	if err := atlas.Upload(nil); !errors.Is(err, ErrNilUploader) {
		t.Errorf("err = %v, want ErrNilUploader", err)
	}

	if _, err := atlas.Add(solidImage(2, 2, color.RGBA{A: 255})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	failing := &fakeUploader{fail: errors.New("device lost")}
	if err := atlas.Upload(failing); err == nil {
		t.Error("Upload must surface the uploader error")
	}
}

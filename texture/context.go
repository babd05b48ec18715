package texture

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/flexbatch"
)

// ContextUploader errors.
var (
	// ErrNilCreator is returned when constructing without a creator.
	ErrNilCreator = errors.New("texture: nil texture creator")

	// ErrNotGPUTexture is returned when the creator's texture does not
	// implement gpucontext.Texture.
	ErrNotGPUTexture = errors.New("texture: created texture is not a gpucontext.Texture")
)

// ContextUploader adapts a gpucontext.TextureCreator to the Uploader
// interface, for flexbatch running inside a gogpu host application. It
// keeps the created gpucontext textures addressable by the handles it
// mints, so the host can draw or destroy them later.
type ContextUploader struct {
	creator gpucontext.TextureCreator

	next     uint64
	textures map[flexbatch.TextureID]gpucontext.Texture
}

// NewContextUploader wraps a texture creator, typically the host's
// renderer.
func NewContextUploader(creator gpucontext.TextureCreator) (*ContextUploader, error) {
	if creator == nil {
		return nil, ErrNilCreator
	}
	return &ContextUploader{
		creator:  creator,
		textures: make(map[flexbatch.TextureID]gpucontext.Texture),
	}, nil
}

// UploadRGBA implements Uploader.
func (u *ContextUploader) UploadRGBA(width, height int, data []byte) (flexbatch.TextureID, error) {
	tex, err := u.creator.NewTextureFromRGBA(width, height, data)
	if err != nil {
		return flexbatch.InvalidTextureID, fmt.Errorf("texture: NewTextureFromRGBA: %w", err)
	}
	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return flexbatch.InvalidTextureID, ErrNotGPUTexture
	}
	u.next++
	id := flexbatch.TextureID(u.next)
	u.textures[id] = gpuTex
	return id, nil
}

// Texture resolves a minted handle to its gpucontext texture.
func (u *ContextUploader) Texture(id flexbatch.TextureID) (gpucontext.Texture, bool) {
	tex, ok := u.textures[id]
	return tex, ok
}

// Forget drops the mapping for a handle without destroying the texture;
// handles are non-owning and the host controls texture lifetime.
func (u *ContextUploader) Forget(id flexbatch.TextureID) {
	delete(u.textures, id)
}

var _ Uploader = (*ContextUploader)(nil)

package flexbatch

// TextureID is an opaque, non-owning handle to a GPU texture resource.
//
// The handle indexes into an externally owned table (see the texture
// subpackage, or any backend's own registry); flexbatch never manages the
// lifetime of the resource behind it. Dropping the external owner while a
// Batchable still references the handle is a use-after-free the core does
// not guard against.
type TextureID uint64

// InvalidTextureID is the zero value, representing no texture.
const InvalidTextureID TextureID = 0

// Valid reports whether the handle refers to a texture.
func (id TextureID) Valid() bool { return id != InvalidTextureID }

// Package texture builds CPU-side texture atlases for flexbatch.
//
// An [Atlas] packs many small images into one RGBA page with a shelf
// allocator, so batchables that sample different source images still share
// one texture and never force a batch flush between them. After the page
// is uploaded through an [Uploader], the atlas mints
// flexbatch.TextureRegion values whose UV rectangles address the packed
// sub-images.
//
// Two uploaders ship with the module: backend/wgpu's texture registry
// uploads through the HAL, and [ContextUploader] adapts a
// gpucontext.TextureCreator for use inside a gogpu host application.
package texture

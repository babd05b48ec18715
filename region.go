package flexbatch

// TextureRegion is a rectangular window into an externally owned texture,
// expressed as normalized UV coordinates plus the region's intrinsic pixel
// size. The Texture handle is non-owning; see TextureID.
type TextureRegion struct {
	// Texture identifies the backing texture in its external table.
	Texture TextureID

	// U, V and U2, V2 are the normalized coordinates of the region's
	// opposite corners within the backing texture.
	U, V, U2, V2 float32

	// Width and Height are the region's intrinsic size in pixels; they are
	// the natural draw size of a batchable that has no size override.
	Width, Height float32
}

// WholeTexture returns a region spanning an entire texture of the given
// pixel size.
func WholeTexture(tex TextureID, width, height float32) *TextureRegion {
	return &TextureRegion{Texture: tex, U: 0, V: 0, U2: 1, V2: 1, Width: width, Height: height}
}

// PolygonRegion is a geometry source: a triangulated polygon mapped onto a
// texture region. The core reads its vertex, texture coordinate, and index
// data and never mutates it, so one PolygonRegion can back any number of
// batchables.
type PolygonRegion struct {
	// Region is the texture window the polygon is mapped onto.
	Region *TextureRegion

	// Vertices are the polygon's local coordinates as x,y pairs, in pixels
	// relative to the region's bottom-left corner.
	Vertices []float32

	// UVs are the per-vertex texture coordinates as u,v pairs, parallel to
	// Vertices.
	UVs []float32

	// Indices triangulate the polygon; each value indexes a vertex pair.
	Indices []uint16
}

// NewPolygonRegion builds a polygon region over a texture region,
// computing per-vertex UVs by mapping the local coordinates across the
// region's UV window. Vertices are x,y pairs in pixels relative to the
// region's bottom-left corner; indices triangulate them.
func NewPolygonRegion(region *TextureRegion, vertices []float32, indices []uint16) *PolygonRegion {
	uvs := make([]float32, len(vertices))
	if region != nil && region.Width > 0 && region.Height > 0 {
		uSpan := region.U2 - region.U
		vSpan := region.V2 - region.V
		for i := 0; i < len(vertices); i += 2 {
			uvs[i] = region.U + uSpan*(vertices[i]/region.Width)
			uvs[i+1] = region.V + vSpan*(1-vertices[i+1]/region.Height)
		}
	}
	return &PolygonRegion{
		Region:   region,
		Vertices: vertices,
		UVs:      uvs,
		Indices:  indices,
	}
}

// VertexCount returns the number of vertices in the polygon.
func (r *PolygonRegion) VertexCount() int { return len(r.Vertices) / 2 }

// IndexCount returns the number of triangle indices in the polygon.
func (r *PolygonRegion) IndexCount() int { return len(r.Indices) }

package flexbatch

// Poly is the shared state and write logic of the polygon-backed batchable
// variants. It carries one PolygonRegion geometry source, a 2D transform
// (position, origin offset, scale), a packed color, and an optional size
// override. Concrete variants ([Poly2D], [Poly3D]) decide the position
// layout and write the position data; Poly itself writes color and texture
// coordinates.
//
// Transform fields are exported for direct mutation in hot loops; the
// chainable setters exist for configuration-style call sites.
type Poly struct {
	region      *PolygonRegion
	numVertices int
	numIndices  int

	// X, Y is the world position of the polygon's local origin.
	X, Y float32

	// OriginX, OriginY offset the center point for scaling, relative to
	// the bottom-left corner of the region.
	OriginX, OriginY float32

	// ScaleX, ScaleY scale the polygon around the origin offset.
	ScaleX, ScaleY float32

	color PackedColor

	// width, height override the natural draw size when sizeSet is true.
	// Otherwise they are resolved from the region's intrinsic size at
	// write time, so an un-set size keeps tracking a region that changes.
	width, height float32
	sizeSet       bool
}

// newPoly returns the shared state with identity transform and opaque
// white color.
func newPoly() Poly {
	return Poly{ScaleX: 1, ScaleY: 1, color: White}
}

// SetRegion assigns the geometry source and recomputes the vertex and
// index counts from it. Transform and color state are untouched. The
// counts are derived state: they change only through SetRegion.
func (p *Poly) SetRegion(region *PolygonRegion) *Poly {
	p.region = region
	if region != nil {
		p.numVertices = region.VertexCount()
		p.numIndices = region.IndexCount()
	} else {
		p.numVertices = 0
		p.numIndices = 0
	}
	return p
}

// Region returns the assigned geometry source, or nil.
func (p *Poly) Region() *PolygonRegion { return p.region }

// SetSize overrides the natural draw size. If never called, the natural
// size defaults to the region's intrinsic size, read at write time.
func (p *Poly) SetSize(width, height float32) *Poly {
	p.width = width
	p.height = height
	p.sizeSet = true
	return p
}

// SetPosition sets the world position.
func (p *Poly) SetPosition(x, y float32) *Poly {
	p.X = x
	p.Y = y
	return p
}

// SetOrigin sets the center point for scaling, relative to the bottom-left
// corner of the region.
func (p *Poly) SetOrigin(originX, originY float32) *Poly {
	p.OriginX = originX
	p.OriginY = originY
	return p
}

// SetScale sets the scale factors applied around the origin offset.
func (p *Poly) SetScale(scaleX, scaleY float32) *Poly {
	p.ScaleX = scaleX
	p.ScaleY = scaleY
	return p
}

// SetColor sets the tint from a packed value.
func (p *Poly) SetColor(c PackedColor) *Poly {
	p.color = c
	return p
}

// SetColorRGBA sets the tint from channel values in [0, 1].
func (p *Poly) SetColorRGBA(r, g, b, a float64) *Poly {
	p.color = PackRGBA(r, g, b, a)
	return p
}

// Color returns the current packed tint.
func (p *Poly) Color() PackedColor { return p.color }

// VertexCount returns the vertex count derived from the geometry source.
func (p *Poly) VertexCount() int { return p.numVertices }

// IndexCount returns the index count derived from the geometry source.
func (p *Poly) IndexCount() int { return p.numIndices }

// Refresh clears transform, color, and size-override state. The texture
// reference is deliberately kept: an instance reused immediately with the
// same texture skips a redundant rebind.
func (p *Poly) Refresh() {
	p.X, p.Y = 0, 0
	p.OriginX, p.OriginY = 0, 0
	p.ScaleX, p.ScaleY = 1, 1
	p.color = White
	p.sizeSet = false
}

// Reset performs Refresh and drops the geometry reference, zeroing the
// vertex and index counts. This is the pool-return contract.
func (p *Poly) Reset() {
	p.Refresh()
	p.region = nil
	p.numVertices = 0
	p.numIndices = 0
}

// NeedsStateChange records the polygon's texture binding on state and
// reports whether the renderer must flush first: the texture differs from
// the committed binding, or the remaining capacity cannot hold this
// polygon's data.
func (p *Poly) NeedsStateChange(state RenderState, remainingVertices, remainingIndices int) bool {
	changed := false
	if p.region != nil && p.region.Region != nil {
		changed = state.BindTexture(0, p.region.Region.Texture)
	}
	return changed || remainingVertices < p.numVertices || remainingIndices < p.numIndices
}

// writeBase writes the packed color into every vertex's color slot and the
// texture coordinates verbatim from the geometry source, and resolves the
// natural draw size if no override was set. Position data is the concrete
// variant's responsibility.
func (p *Poly) writeBase(dst []float32, start int, offsets AttributeOffsets, stride int) error {
	if p.region == nil {
		return ErrNoGeometry
	}
	if start+p.numVertices*stride > len(dst) {
		return ErrShortBuffer
	}

	if !p.sizeSet && p.region.Region != nil {
		p.width = p.region.Region.Width
		p.height = p.region.Region.Height
	}

	c := p.color.Float()
	for i, v := 0, start+offsets.Color0; i < p.numVertices; i, v = i+1, v+stride {
		dst[v] = c
	}

	uvs := p.region.UVs
	for i, v := 0, start+offsets.TexCoord0; i < len(uvs); i, v = i+2, v+stride {
		dst[v] = uvs[i]
		dst[v+1] = uvs[i+1]
	}
	return nil
}

// WriteIndices writes the geometry source's index list into dst starting
// at start, rebasing every value by firstVertex. Returns the number of
// indices written.
func (p *Poly) WriteIndices(dst []uint16, start int, firstVertex uint16) (int, error) {
	if p.region == nil {
		return 0, ErrNoGeometry
	}
	if start+p.numIndices > len(dst) {
		return 0, ErrShortBuffer
	}
	for _, idx := range p.region.Indices {
		dst[start] = idx + firstVertex
		start++
	}
	return p.numIndices, nil
}

// drawScale returns the per-axis factors that map the region's local pixel
// coordinates to world units, folding the size override and the scale
// fields together.
func (p *Poly) drawScale() (sx, sy float32) {
	sx, sy = p.ScaleX, p.ScaleY
	if r := p.region.Region; r != nil {
		if r.Width > 0 {
			sx *= p.width / r.Width
		}
		if r.Height > 0 {
			sy *= p.height / r.Height
		}
	}
	return sx, sy
}

// Poly2D is a polygon batchable with 2D positions.
type Poly2D struct {
	Poly
}

// NewPoly2D returns a Poly2D with identity transform and white color.
func NewPoly2D() *Poly2D {
	return &Poly2D{Poly: newPoly()}
}

// Layout reports the per-type constant layout: one texture coordinate set,
// 2D positions. Safe to call on a nil receiver.
func (*Poly2D) Layout() LayoutSpec {
	return LayoutSpec{Textures: 1}
}

// WriteVertices writes color, texture coordinates, and transformed 2D
// positions into dst.
func (p *Poly2D) WriteVertices(dst []float32, start int, offsets AttributeOffsets, stride int) error {
	if err := p.writeBase(dst, start, offsets, stride); err != nil {
		return err
	}
	sx, sy := p.drawScale()
	verts := p.region.Vertices
	for i, v := 0, start+offsets.Position; i < len(verts); i, v = i+2, v+stride {
		dst[v] = p.X + (verts[i]-p.OriginX)*sx
		dst[v+1] = p.Y + (verts[i+1]-p.OriginY)*sy
	}
	return nil
}

// Poly3D is a polygon batchable positioned in 3D space. The polygon is
// billboarded on the XY plane at depth Z. Poly3D implements Sortable, so
// it can be queued on a BatchableSorter: translucent instances are drawn
// far-to-near from the camera, opaque ones are grouped by texture.
type Poly3D struct {
	Poly

	// Z is the depth of the polygon's plane.
	Z float32

	opaque bool
}

// NewPoly3D returns a Poly3D with identity transform and white color,
// marked translucent.
func NewPoly3D() *Poly3D {
	return &Poly3D{Poly: newPoly()}
}

// Layout reports the per-type constant layout: one texture coordinate set,
// 3D positions. Safe to call on a nil receiver.
func (*Poly3D) Layout() LayoutSpec {
	return LayoutSpec{Textures: 1, Position3D: true}
}

// SetPosition3 sets the world position including depth.
func (p *Poly3D) SetPosition3(x, y, z float32) *Poly3D {
	p.X, p.Y, p.Z = x, y, z
	return p
}

// SetOpaque marks whether this instance renders without blending, which
// decides its sorter queue: grouped by texture when opaque, sorted by
// distance when not.
func (p *Poly3D) SetOpaque(opaque bool) *Poly3D {
	p.opaque = opaque
	return p
}

// IsOpaque reports whether this instance renders without blending.
func (p *Poly3D) IsOpaque() bool { return p.opaque }

// Refresh clears the shared drawing state plus depth and the opaque flag,
// keeping the texture reference.
func (p *Poly3D) Refresh() {
	p.Poly.Refresh()
	p.Z = 0
	p.opaque = false
}

// Reset performs Refresh and drops the geometry reference.
func (p *Poly3D) Reset() {
	p.Poly.Reset()
	p.Z = 0
	p.opaque = false
}

// HasEquivalentTextures reports whether both polygons bind the same
// texture to the same unit. Two instances with no texture assigned are
// equivalent to each other.
func (p *Poly3D) HasEquivalentTextures(other *Poly3D) bool {
	return p.texture() == other.texture()
}

func (p *Poly3D) texture() TextureID {
	if p.region == nil || p.region.Region == nil {
		return InvalidTextureID
	}
	return p.region.Region.Texture
}

// DistanceSq returns the squared distance from the polygon's position to
// from.
func (p *Poly3D) DistanceSq(from Vec3) float32 {
	dx := p.X - from.X
	dy := p.Y - from.Y
	dz := p.Z - from.Z
	return dx*dx + dy*dy + dz*dz
}

// WriteVertices writes color, texture coordinates, and transformed 3D
// positions into dst. The Z component is constant across the polygon.
func (p *Poly3D) WriteVertices(dst []float32, start int, offsets AttributeOffsets, stride int) error {
	if err := p.writeBase(dst, start, offsets, stride); err != nil {
		return err
	}
	sx, sy := p.drawScale()
	verts := p.region.Vertices
	for i, v := 0, start+offsets.Position; i < len(verts); i, v = i+2, v+stride {
		dst[v] = p.X + (verts[i]-p.OriginX)*sx
		dst[v+1] = p.Y + (verts[i+1]-p.OriginY)*sy
		dst[v+2] = p.Z
	}
	return nil
}

// Compile-time interface checks.
var (
	_ Batchable         = (*Poly2D)(nil)
	_ Batchable         = (*Poly3D)(nil)
	_ Sortable[*Poly3D] = (*Poly3D)(nil)
)

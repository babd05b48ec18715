package flexbatch

// RenderState is the renderer-side accumulator of texture binding state.
// A batchable declares the bindings it needs through BindTexture; the
// renderer decides when the accumulated changes are committed to the GPU.
type RenderState interface {
	// BindTexture records that tex must be bound to the given texture unit
	// before this batchable can be drawn. It returns true if that differs
	// from the state already committed, meaning previously accumulated
	// geometry has to be flushed first.
	BindTexture(unit int, tex TextureID) bool
}

// Batchable is a reusable unit representing one drawable primitive's
// geometry, transform, color, and texture reference. It knows how to write
// itself into caller-supplied vertex/index arrays and whether the renderer
// must flush accumulated state before it can be drawn.
//
// Batchables are obtained from a pool. Refresh is the same-instance-reuse
// contract (clears transform, color, and size override but keeps the
// texture reference, avoiding a redundant rebind when the instance is
// immediately reused with the same texture); Reset is the pool-return
// contract (additionally drops the texture reference and zeroes the
// vertex/index counts).
type Batchable interface {
	// Layout reports the vertex layout capability flags for this variant.
	// The answer is a per-type constant: every instance of a concrete type
	// answers identically, and the method must be callable on a zero value
	// (including a nil pointer) so generic sessions can query it up front.
	Layout() LayoutSpec

	// VertexCount returns the number of vertices this batchable writes.
	// Derived solely from the assigned geometry source.
	VertexCount() int

	// IndexCount returns the number of indices this batchable writes.
	// Derived solely from the assigned geometry source.
	IndexCount() int

	// NeedsStateChange records this batchable's required texture bindings
	// on state and reports whether the renderer must flush before drawing
	// it: either a recorded binding differs from the committed state, or
	// the remaining buffer capacity cannot hold this batchable's vertex
	// and index data. This is the flush trigger the renderer must honor.
	NeedsStateChange(state RenderState, remainingVertices, remainingIndices int) bool

	// WriteVertices writes this batchable's vertex data into dst starting
	// at element offset start, using the given attribute offsets and
	// per-vertex element stride. Returns ErrNoGeometry if no geometry
	// source is assigned.
	WriteVertices(dst []float32, start int, offsets AttributeOffsets, stride int) error

	// WriteIndices writes this batchable's indices into dst starting at
	// offset start, rebasing each source index by firstVertex (the index
	// of this batchable's first vertex within the shared vertex buffer).
	// Returns the number of indices written.
	WriteIndices(dst []uint16, start int, firstVertex uint16) (int, error)

	// Refresh clears transform, color, and size-override state, keeping
	// the texture reference.
	Refresh()

	// Reset performs Refresh and additionally drops the texture reference
	// and zeroes the vertex/index counts, making the instance safe for
	// reuse by an unrelated drawable.
	Reset()
}

// Sortable is implemented by batchable variants that can be queued on a
// BatchableSorter. The type parameter is the concrete variant itself, so
// texture comparisons stay within one variant.
type Sortable[T any] interface {
	// IsOpaque reports whether the batchable renders without blending.
	// Opaque batchables are grouped by texture; translucent ones are
	// sorted by distance.
	IsOpaque() bool

	// HasEquivalentTextures reports whether this batchable and other would
	// bind the same texture resources to the same units. Used exclusively
	// for opaque grouping, never for blending correctness.
	HasEquivalentTextures(other T) bool

	// DistanceSq returns the squared Euclidean distance from this
	// batchable's world position to the given point. Used exclusively for
	// translucent sort ordering.
	DistanceSq(from Vec3) float32
}

// BatchDrawer is the renderer boundary the sorter replays into: one draw
// call per queued batchable, issued inside the renderer's own begin/end
// session. The renderer enforces the session ordering contract; the sorter
// does not.
type BatchDrawer[T Batchable] interface {
	Draw(b T) error
}

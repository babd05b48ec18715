package flexbatch

import "github.com/gogpu/gputypes"

// bytesPerFloat is the size of one interleaved vertex element.
const bytesPerFloat = 4

// LayoutSpec describes the capability flags that shape a vertex record:
// how many texture coordinate sets it carries, whether positions have a Z
// component, and whether texture coordinates have a third (array layer)
// component.
//
// A concrete Batchable type answers LayoutSpec as a per-type constant.
// A render session batches only instances whose spec is fixed at
// session-creation time; mixing instances with different specs under one
// session is rejected by the renderer.
type LayoutSpec struct {
	// Textures is the number of texture coordinate attribute sets.
	Textures int

	// Position3D indicates the position attribute has a Z component.
	Position3D bool

	// TexCoord3D indicates texture coordinates carry a third component
	// (the layer index for texture arrays).
	TexCoord3D bool
}

// positionSize returns the float element count of the position attribute.
func (s LayoutSpec) positionSize() int {
	if s.Position3D {
		return 3
	}
	return 2
}

// texCoordSize returns the float element count of one texture coordinate set.
func (s LayoutSpec) texCoordSize() int {
	if s.TexCoord3D {
		return 3
	}
	return 2
}

// AttributeOffsets locates each attribute within one interleaved vertex
// record, in float32 elements from the start of the record. Batchables
// write their data through these offsets and are otherwise layout-agnostic.
type AttributeOffsets struct {
	// Position is the offset of the position attribute.
	Position int

	// Color0 is the offset of the packed color slot (one float element
	// holding four 8-bit channels, see PackedColor).
	Color0 int

	// TexCoord0 is the offset of the first texture coordinate set.
	// Additional sets follow contiguously, each TexCoordSize elements wide.
	TexCoord0 int

	// TexCoordSize is the element width of one texture coordinate set.
	TexCoordSize int
}

// VertexLayout is the complete vertex layout description: the capability
// spec it was built from, the element offsets batchables write through,
// the per-vertex element stride, and the equivalent GPU-facing
// gputypes.VertexBufferLayout for pipeline creation.
type VertexLayout struct {
	Spec    LayoutSpec
	Offsets AttributeOffsets

	// Stride is the number of float32 elements per vertex record.
	Stride int

	// Buffer is the wgpu-compatible description of the same layout.
	Buffer gputypes.VertexBufferLayout
}

// NewVertexLayout builds the interleaved vertex layout for a capability
// spec. Attribute order is position, packed color, then texture coordinate
// sets; shader locations are assigned in the same order starting at 0.
//
// A Textures value below 1 is treated as 1: a textured batch always carries
// at least one coordinate set.
func NewVertexLayout(spec LayoutSpec) VertexLayout {
	if spec.Textures < 1 {
		spec.Textures = 1
	}

	posSize := spec.positionSize()
	tcSize := spec.texCoordSize()

	offsets := AttributeOffsets{
		Position:     0,
		Color0:       posSize,
		TexCoord0:    posSize + 1,
		TexCoordSize: tcSize,
	}
	stride := posSize + 1 + spec.Textures*tcSize

	posFormat := gputypes.VertexFormatFloat32x2
	if spec.Position3D {
		posFormat = gputypes.VertexFormatFloat32x3
	}
	tcFormat := gputypes.VertexFormatFloat32x2
	if spec.TexCoord3D {
		tcFormat = gputypes.VertexFormatFloat32x3
	}

	attrs := make([]gputypes.VertexAttribute, 0, 2+spec.Textures)
	attrs = append(attrs,
		gputypes.VertexAttribute{
			Format:         posFormat,
			Offset:         0,
			ShaderLocation: 0,
		},
		gputypes.VertexAttribute{
			// The packed color occupies one float element; the GPU reads
			// it as four normalized bytes.
			Format:         gputypes.VertexFormatUnorm8x4,
			Offset:         uint64(offsets.Color0 * bytesPerFloat),
			ShaderLocation: 1,
		},
	)
	for i := 0; i < spec.Textures; i++ {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         tcFormat,
			Offset:         uint64((offsets.TexCoord0 + i*tcSize) * bytesPerFloat),
			ShaderLocation: uint32(2 + i),
		})
	}

	return VertexLayout{
		Spec:    spec,
		Offsets: offsets,
		Stride:  stride,
		Buffer: gputypes.VertexBufferLayout{
			ArrayStride: uint64(stride * bytesPerFloat),
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  attrs,
		},
	}
}

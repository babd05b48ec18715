package flexbatch

import (
	"errors"
	"testing"
)

// recordingState is a RenderState fake tracking committed bindings.
type recordingState struct {
	bound map[int]TextureID
}

func newRecordingState() *recordingState {
	return &recordingState{bound: make(map[int]TextureID)}
}

func (s *recordingState) BindTexture(unit int, tex TextureID) bool {
	changed := s.bound[unit] != tex
	s.bound[unit] = tex
	return changed
}

func quadRegion(tex TextureID) *PolygonRegion {
	return NewPolygonRegion(WholeTexture(tex, 32, 32), quadVertices, quadIndices)
}

func TestPolySetRegionRecomputesCounts(t *testing.T) {
	p := NewPoly2D()
	if p.VertexCount() != 0 || p.IndexCount() != 0 {
		t.Fatalf("fresh counts = %d/%d, want 0/0", p.VertexCount(), p.IndexCount())
	}

	p.SetRegion(quadRegion(1))
	if p.VertexCount() != 4 || p.IndexCount() != 6 {
		t.Errorf("counts = %d/%d, want 4/6", p.VertexCount(), p.IndexCount())
	}

	tri := NewPolygonRegion(WholeTexture(1, 32, 32), quadVertices[:6], quadIndices[:3])
	p.SetRegion(tri)
	if p.VertexCount() != 3 || p.IndexCount() != 3 {
		t.Errorf("counts after reassign = %d/%d, want 3/3", p.VertexCount(), p.IndexCount())
	}

	p.SetRegion(nil)
	if p.VertexCount() != 0 || p.IndexCount() != 0 {
		t.Errorf("counts after nil = %d/%d, want 0/0", p.VertexCount(), p.IndexCount())
	}
}

func TestPolyNeedsStateChange(t *testing.T) {
	p := NewPoly2D()
	p.SetRegion(quadRegion(1))
	state := newRecordingState()

	if !p.NeedsStateChange(state, 100, 100) {
		t.Error("first draw with a fresh state must need a change")
	}
	if p.NeedsStateChange(state, 100, 100) {
		t.Error("same texture again must not need a change")
	}

	// Capacity shortfall triggers regardless of texture.
	if !p.NeedsStateChange(state, 3, 100) {
		t.Error("3 remaining vertices cannot hold 4")
	}
	if !p.NeedsStateChange(state, 100, 5) {
		t.Error("5 remaining indices cannot hold 6")
	}
	if p.NeedsStateChange(state, 4, 6) {
		t.Error("exact remaining capacity must fit")
	}

	// Texture switch triggers.
	q := NewPoly2D()
	q.SetRegion(quadRegion(2))
	if !q.NeedsStateChange(state, 100, 100) {
		t.Error("different texture must need a change")
	}
}

func TestPoly2DWriteVertices(t *testing.T) {
	layout := NewVertexLayout((*Poly2D)(nil).Layout())

	p := NewPoly2D()
	p.SetRegion(quadRegion(1))
	p.SetPosition(10, 20)

	dst := make([]float32, 4*layout.Stride)
	if err := p.WriteVertices(dst, 0, layout.Offsets, layout.Stride); err != nil {
		t.Fatalf("WriteVertices: %v", err)
	}

	// Vertex 2 is local (32, 32): translated to (42, 52).
	base := 2 * layout.Stride
	if dst[base] != 42 || dst[base+1] != 52 {
		t.Errorf("vertex 2 position = (%v,%v), want (42,52)", dst[base], dst[base+1])
	}

	// Every vertex carries the packed color.
	want := White.Float()
	for i := 0; i < 4; i++ {
		if got := dst[i*layout.Stride+layout.Offsets.Color0]; got != want {
			t.Errorf("vertex %d color = %v, want %v", i, got, want)
		}
	}

	// UVs come through verbatim from the geometry source.
	pr := p.Region()
	for i := 0; i < 4; i++ {
		u := dst[i*layout.Stride+layout.Offsets.TexCoord0]
		v := dst[i*layout.Stride+layout.Offsets.TexCoord0+1]
		if u != pr.UVs[i*2] || v != pr.UVs[i*2+1] {
			t.Errorf("vertex %d uv = (%v,%v), want (%v,%v)", i, u, v, pr.UVs[i*2], pr.UVs[i*2+1])
		}
	}
}

func TestPoly2DOriginAndScale(t *testing.T) {
	layout := NewVertexLayout((*Poly2D)(nil).Layout())

	p := NewPoly2D()
	p.SetRegion(quadRegion(1))
	p.SetOrigin(16, 16)
	p.SetScale(2, 2)

	dst := make([]float32, 4*layout.Stride)
	if err := p.WriteVertices(dst, 0, layout.Offsets, layout.Stride); err != nil {
		t.Fatalf("WriteVertices: %v", err)
	}

	// Local (0,0) with origin (16,16) and scale 2 lands at (-32,-32).
	if dst[0] != -32 || dst[1] != -32 {
		t.Errorf("vertex 0 = (%v,%v), want (-32,-32)", dst[0], dst[1])
	}
	// Local (32,32) lands at (32,32).
	base := 2 * layout.Stride
	if dst[base] != 32 || dst[base+1] != 32 {
		t.Errorf("vertex 2 = (%v,%v), want (32,32)", dst[base], dst[base+1])
	}
}

func TestPolySizeOverride(t *testing.T) {
	layout := NewVertexLayout((*Poly2D)(nil).Layout())

	// Without an override, the natural size tracks the region.
	p := NewPoly2D()
	p.SetRegion(quadRegion(1))
	dst := make([]float32, 4*layout.Stride)
	if err := p.WriteVertices(dst, 0, layout.Offsets, layout.Stride); err != nil {
		t.Fatalf("WriteVertices: %v", err)
	}
	base := 2 * layout.Stride
	if dst[base] != 32 {
		t.Errorf("natural-size vertex 2 x = %v, want 32", dst[base])
	}

	// An override stretches the same geometry.
	p.SetSize(64, 16)
	if err := p.WriteVertices(dst, 0, layout.Offsets, layout.Stride); err != nil {
		t.Fatalf("WriteVertices: %v", err)
	}
	if dst[base] != 64 || dst[base+1] != 16 {
		t.Errorf("sized vertex 2 = (%v,%v), want (64,16)", dst[base], dst[base+1])
	}
}

func TestPoly3DWriteVertices(t *testing.T) {
	layout := NewVertexLayout((*Poly3D)(nil).Layout())

	p := NewPoly3D()
	p.SetRegion(quadRegion(1))
	p.SetPosition3(1, 2, 9)

	dst := make([]float32, 4*layout.Stride)
	if err := p.WriteVertices(dst, 0, layout.Offsets, layout.Stride); err != nil {
		t.Fatalf("WriteVertices: %v", err)
	}

	for i := 0; i < 4; i++ {
		if got := dst[i*layout.Stride+2]; got != 9 {
			t.Errorf("vertex %d z = %v, want 9", i, got)
		}
	}
	if dst[0] != 1 || dst[1] != 2 {
		t.Errorf("vertex 0 = (%v,%v), want (1,2)", dst[0], dst[1])
	}
}

func TestWriteVerticesErrors(t *testing.T) {
	layout := NewVertexLayout((*Poly2D)(nil).Layout())

	p := NewPoly2D()
	dst := make([]float32, 4*layout.Stride)
	if err := p.WriteVertices(dst, 0, layout.Offsets, layout.Stride); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("no region: err = %v, want ErrNoGeometry", err)
	}

	p.SetRegion(quadRegion(1))
	short := make([]float32, 3*layout.Stride)
	if err := p.WriteVertices(short, 0, layout.Offsets, layout.Stride); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short buffer: err = %v, want ErrShortBuffer", err)
	}
}

func TestWriteIndicesRebases(t *testing.T) {
	p := NewPoly2D()
	p.SetRegion(quadRegion(1))

	dst := make([]uint16, 16)
	n, err := p.WriteIndices(dst, 0, 10)
	if err != nil {
		t.Fatalf("WriteIndices: %v", err)
	}
	if n != 6 {
		t.Fatalf("written = %d, want 6", n)
	}
	want := []uint16{10, 11, 12, 12, 13, 10}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("index %d = %d, want %d", i, dst[i], w)
		}
	}
}

func TestWriteIndicesErrors(t *testing.T) {
	p := NewPoly2D()
	if _, err := p.WriteIndices(make([]uint16, 16), 0, 0); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("no region: err = %v, want ErrNoGeometry", err)
	}
	p.SetRegion(quadRegion(1))
	if _, err := p.WriteIndices(make([]uint16, 4), 0, 0); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short buffer: err = %v, want ErrShortBuffer", err)
	}
}

func TestRefreshKeepsRegionResetDrops(t *testing.T) {
	p := NewPoly3D()
	p.SetRegion(quadRegion(1))
	p.SetPosition3(5, 6, 7)
	p.SetScale(2, 2)
	p.SetColor(PackRGBA(1, 0, 0, 1))
	p.SetSize(64, 64)

	p.Refresh()
	if p.Region() == nil {
		t.Error("Refresh must keep the geometry reference")
	}
	if p.VertexCount() != 4 || p.IndexCount() != 6 {
		t.Errorf("counts after Refresh = %d/%d, want 4/6", p.VertexCount(), p.IndexCount())
	}
	if p.X != 0 || p.Y != 0 || p.Z != 0 {
		t.Errorf("position after Refresh = (%v,%v,%v), want origin", p.X, p.Y, p.Z)
	}
	if p.ScaleX != 1 || p.ScaleY != 1 {
		t.Errorf("scale after Refresh = (%v,%v), want (1,1)", p.ScaleX, p.ScaleY)
	}
	if p.Color() != White {
		t.Errorf("color after Refresh = %#x, want White", uint32(p.Color()))
	}

	p.Reset()
	if p.Region() != nil {
		t.Error("Reset must drop the geometry reference")
	}
	if p.VertexCount() != 0 || p.IndexCount() != 0 {
		t.Errorf("counts after Reset = %d/%d, want 0/0", p.VertexCount(), p.IndexCount())
	}
}

func TestHasEquivalentTextures(t *testing.T) {
	a := NewPoly3D()
	a.SetRegion(quadRegion(1))
	b := NewPoly3D()
	b.SetRegion(quadRegion(1))
	c := NewPoly3D()
	c.SetRegion(quadRegion(2))

	if !a.HasEquivalentTextures(b) {
		t.Error("same texture must be equivalent")
	}
	if a.HasEquivalentTextures(c) {
		t.Error("different textures must not be equivalent")
	}

	// Both unassigned compare equal; one assigned, one not, do not.
	x, y := NewPoly3D(), NewPoly3D()
	if !x.HasEquivalentTextures(y) {
		t.Error("two unassigned instances must be equivalent")
	}
	if x.HasEquivalentTextures(a) {
		t.Error("unassigned vs assigned must not be equivalent")
	}
}

func TestPoly3DDistanceSq(t *testing.T) {
	p := NewPoly3D()
	p.SetPosition3(3, 4, 0)
	if got := p.DistanceSq(V3(0, 0, 0)); got != 25 {
		t.Errorf("DistanceSq = %v, want 25", got)
	}
}

func TestPoly3DOpaqueFlag(t *testing.T) {
	p := NewPoly3D()
	if p.IsOpaque() {
		t.Error("fresh Poly3D must be translucent")
	}
	p.SetOpaque(true)
	if !p.IsOpaque() {
		t.Error("SetOpaque(true) must stick")
	}
	p.Refresh()
	if p.IsOpaque() {
		t.Error("Refresh must clear the opaque flag")
	}
}

package flexbatch

import "testing"

func TestPoolGetPut(t *testing.T) {
	pool := NewPool(NewPoly3D)

	p := pool.Get()
	if p == nil {
		t.Fatal("Get returned nil")
	}
	p.SetRegion(quadRegion(1))
	p.SetPosition3(1, 2, 3)
	p.SetOpaque(true)

	pool.Put(p)

	// Put applies the full reset before pooling.
	if p.Region() != nil {
		t.Error("pooled instance must drop its geometry reference")
	}
	if p.X != 0 || p.Y != 0 || p.Z != 0 {
		t.Error("pooled instance must reset its transform")
	}
	if p.IsOpaque() {
		t.Error("pooled instance must reset the opaque flag")
	}
}

func TestPoolPutNil(t *testing.T) {
	pool := NewPool(NewPoly2D)
	// Must not panic.
	pool.Put(nil)
}

func TestPoolWarmup(t *testing.T) {
	pool := NewPool(NewPoly2D)
	pool.Warmup(8)

	p := pool.Get()
	if p == nil {
		t.Fatal("Get after Warmup returned nil")
	}
	if p.VertexCount() != 0 {
		t.Error("warmed instance must be reset")
	}
}

package flexbatch

import "sync"

// Pool manages reusable Batchable instances of one concrete variant.
// After warmup, per-frame allocation is eliminated by recycling instances.
//
// Usage:
//
//	pool := flexbatch.NewPool(flexbatch.NewPoly3D)
//	p := pool.Get()
//	defer pool.Put(p)
//	// configure and queue p...
//
// Put applies the full reset (Reset), the pool-return contract: the
// instance comes back with no texture reference and zero counts, safe for
// reuse by an unrelated drawable. For same-instance reuse within a frame,
// call Refresh on the instance directly instead of cycling it through the
// pool.
type Pool[T Batchable] struct {
	pool sync.Pool
}

// NewPool creates a pool that manufactures instances with newFn.
func NewPool[T Batchable](newFn func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return newFn()
			},
		},
	}
}

// Get retrieves an instance from the pool, allocating one if none is free.
// The instance is fully reset and ready for configuration.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put returns an instance to the pool, applying the full reset first.
func (p *Pool[T]) Put(b T) {
	var zero T
	if any(b) == any(zero) {
		return
	}
	b.Reset()
	p.pool.Put(b)
}

// Warmup pre-allocates instances so the first frames do not pay the
// allocation cost.
func (p *Pool[T]) Warmup(count int) {
	instances := make([]T, count)
	for i := 0; i < count; i++ {
		instances[i] = p.Get()
	}
	for i := 0; i < count; i++ {
		p.Put(instances[i])
	}
}

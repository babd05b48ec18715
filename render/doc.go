// Package render provides the batch renderer that owns the shared vertex
// and index buffers flexbatch batchables serialize into.
//
// A [Batch] is generic over one concrete Batchable variant, so the vertex
// layout is fixed when the batch is created and mixing incompatible
// variants is impossible by construction. Inside a Begin/End session the
// batch accumulates draw requests, honoring each batchable's own
// state-change contract as the flush trigger: when a draw needs a texture
// the committed state doesn't have, or the buffers cannot hold its data,
// the accumulated geometry is submitted through the [Queue] boundary
// first.
//
// The package performs no GPU work itself; backend/wgpu provides a Queue
// that does, and tests use in-memory fakes.
package render

// Package flexbatch is a render-queue engine for 2D/3D textured geometry.
//
// # Overview
//
// flexbatch accumulates many small draw requests per frame, reorders them to
// minimize GPU state changes, and packs their vertex and index data into
// shared buffers for efficient submission. It is aimed at real-time clients
// that draw large numbers of independent textured shapes per frame (sprites,
// polygons) and need both correctness (alpha blending order) and throughput
// (minimal texture switches, minimal buffer flushes).
//
// The two central pieces are:
//
//   - [Batchable]: a reusable, poolable unit describing one drawable
//     primitive's geometry, transform, and color, plus the logic to serialize
//     itself into shared vertex/index buffers. [Poly2D] and [Poly3D] are the
//     polygon-backed variants.
//
//   - [BatchableSorter]: a frame-scoped queue that partitions added
//     batchables into texture-equivalent opaque groups (drawn consecutively
//     to avoid redundant rebinding) and a translucent list sorted far-to-near
//     from the camera (so alpha blending composites correctly), then replays
//     them to a renderer in that order.
//
// # Quick Start
//
//	sorter := flexbatch.NewBatchableSorter[*flexbatch.Poly3D](camera)
//
//	// Each frame:
//	p := pool.Get()
//	p.SetRegion(region)
//	p.SetPosition3(x, y, z)
//	sorter.Add(p)
//	...
//	batch.Begin()
//	err := sorter.Flush(batch) // draws far-to-near, then clears the queue
//	batch.End()
//
// # Architecture
//
// The library is organized into:
//   - Root package: Batchable contract, polygon variants, the sorter, vertex
//     layout description, packed color, pooling
//   - render/: a batch renderer that owns the shared buffers and honors the
//     Batchable state-change contract
//   - backend/wgpu/: GPU submission via gogpu/wgpu, including the texture
//     registry that TextureID handles index into
//   - texture/: CPU-side atlas packing that mints texture regions
//
// # Ownership
//
// A Batchable never owns the texture or geometry source it references:
// [TextureID] is a non-owning handle into an external table, and dropping
// the owner while a Batchable still references it is a use-after-free the
// core does not guard against.
//
// # Concurrency
//
// The model is single-threaded and frame-synchronous. All queue mutation and
// draw replay happen on the thread driving the render frame; no operation
// blocks or spawns goroutines.
package flexbatch

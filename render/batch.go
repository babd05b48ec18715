package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/flexbatch"
)

// MaxBatchVertices is the largest vertex capacity a batch can address with
// 16-bit indices. Rebased index values run up to MaxVertices-1, so any
// larger capacity would wrap them silently.
const MaxBatchVertices = math.MaxUint16 + 1

// Session and capacity errors.
var (
	// ErrNotDrawing is returned when Draw or End is called outside a
	// Begin/End session.
	ErrNotDrawing = errors.New("render: batch is not between Begin and End")

	// ErrAlreadyDrawing is returned when Begin is called twice.
	ErrAlreadyDrawing = errors.New("render: Begin called inside an open session")

	// ErrNilQueue is returned when a batch is created without a queue.
	ErrNilQueue = errors.New("render: nil submission queue")

	// ErrBatchableTooLarge is returned when a single batchable exceeds the
	// batch's total buffer capacity, so no amount of flushing can fit it.
	ErrBatchableTooLarge = errors.New("render: batchable exceeds buffer capacity")

	// ErrTooManyVertices is returned when Config.MaxVertices exceeds
	// MaxBatchVertices, the range 16-bit indices can address.
	ErrTooManyVertices = errors.New("render: vertex capacity exceeds uint16 index range")
)

// Queue is the GPU submission boundary. Submit receives one flush worth of
// interleaved vertex data, rebased indices, and the texture bound to each
// unit while that geometry was accumulated. The slices are reused by the
// batch after Submit returns; implementations must copy what they keep.
type Queue interface {
	Submit(vertices []float32, indices []uint16, textures []flexbatch.TextureID) error
}

// Config holds buffer capacities for a Batch.
type Config struct {
	// MaxVertices is the vertex capacity of the shared buffer per flush.
	// Default: 4096
	MaxVertices int

	// MaxIndices is the index capacity of the shared buffer per flush.
	// Default: 6144
	MaxIndices int
}

// DefaultConfig returns the default buffer capacities.
func DefaultConfig() Config {
	return Config{
		MaxVertices: 4096,
		MaxIndices:  6144,
	}
}

// Batch accumulates batchables of one concrete variant into shared vertex
// and index buffers and submits them through a Queue. The type parameter
// fixes the vertex layout at construction, turning the "all instances in a
// session answer the layout question identically" invariant into a
// type-level guarantee.
//
// Batch implements flexbatch.BatchDrawer, so a BatchableSorter can replay
// straight into it.
//
// Batch is not safe for concurrent use; all calls must come from the
// thread driving the render frame.
type Batch[T flexbatch.Batchable] struct {
	layout flexbatch.VertexLayout
	queue  Queue
	state  *TextureState

	vertices []float32
	indices  []uint16

	vertexCount int
	indexCount  int

	drawing bool

	// flushes counts queue submissions since creation, for diagnostics.
	flushes uint64
}

// NewBatch creates a batch for the concrete variant T, deriving the vertex
// layout from T's per-type constant layout answer.
func NewBatch[T flexbatch.Batchable](queue Queue, cfg Config) (*Batch[T], error) {
	if queue == nil {
		return nil, ErrNilQueue
	}
	def := DefaultConfig()
	if cfg.MaxVertices <= 0 {
		cfg.MaxVertices = def.MaxVertices
	}
	if cfg.MaxVertices > MaxBatchVertices {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyVertices, cfg.MaxVertices, MaxBatchVertices)
	}
	if cfg.MaxIndices <= 0 {
		cfg.MaxIndices = def.MaxIndices
	}

	var zero T
	layout := flexbatch.NewVertexLayout(zero.Layout())

	return &Batch[T]{
		layout:   layout,
		queue:    queue,
		state:    NewTextureState(layout.Spec.Textures),
		vertices: make([]float32, cfg.MaxVertices*layout.Stride),
		indices:  make([]uint16, cfg.MaxIndices),
	}, nil
}

// Layout returns the vertex layout the batch was built for.
func (b *Batch[T]) Layout() flexbatch.VertexLayout { return b.layout }

// Begin opens a draw session. Texture state is invalidated, so the first
// draw always commits its bindings.
func (b *Batch[T]) Begin() error {
	if b.drawing {
		return ErrAlreadyDrawing
	}
	b.drawing = true
	b.state.invalidate()
	return nil
}

// End flushes any accumulated geometry and closes the session.
func (b *Batch[T]) End() error {
	if !b.drawing {
		return ErrNotDrawing
	}
	err := b.flush()
	b.drawing = false
	return err
}

// Draw accumulates one batchable. If the batchable reports a needed state
// change (texture switch or insufficient remaining capacity), the
// geometry accumulated so far is submitted first under the previous
// bindings, then the new bindings are committed. Must be called between
// Begin and End.
func (b *Batch[T]) Draw(item T) error {
	if !b.drawing {
		return ErrNotDrawing
	}

	stride := b.layout.Stride
	maxVertices := len(b.vertices) / stride
	if item.VertexCount() > maxVertices || item.IndexCount() > len(b.indices) {
		return fmt.Errorf("%w: %d vertices / %d indices into %d / %d",
			ErrBatchableTooLarge, item.VertexCount(), item.IndexCount(), maxVertices, len(b.indices))
	}

	remVertices := maxVertices - b.vertexCount
	remIndices := len(b.indices) - b.indexCount
	if item.NeedsStateChange(b.state, remVertices, remIndices) {
		if err := b.flush(); err != nil {
			return err
		}
		b.state.apply()
	}

	firstVertex := b.vertexCount
	if err := item.WriteVertices(b.vertices, firstVertex*stride, b.layout.Offsets, stride); err != nil {
		return err
	}
	written, err := item.WriteIndices(b.indices, b.indexCount, uint16(firstVertex))
	if err != nil {
		return err
	}
	b.vertexCount += item.VertexCount()
	b.indexCount += written
	return nil
}

// FlushCount returns the number of queue submissions since creation.
// Minimizing this is the point of sorting; it is exposed for diagnostics
// and tests.
func (b *Batch[T]) FlushCount() uint64 { return b.flushes }

// flush submits the accumulated geometry under the committed bindings and
// rewinds the buffers. A flush with nothing accumulated is a no-op.
func (b *Batch[T]) flush() error {
	if b.vertexCount == 0 {
		return nil
	}
	stride := b.layout.Stride
	err := b.queue.Submit(
		b.vertices[:b.vertexCount*stride],
		b.indices[:b.indexCount],
		b.state.Committed(),
	)
	if err != nil {
		return fmt.Errorf("render: submit failed: %w", err)
	}
	b.flushes++
	flexbatch.Logger().Debug("flexbatch: batch flushed",
		slog.Int("vertices", b.vertexCount),
		slog.Int("indices", b.indexCount))
	b.vertexCount = 0
	b.indexCount = 0
	return nil
}

var _ flexbatch.BatchDrawer[*flexbatch.Poly3D] = (*Batch[*flexbatch.Poly3D])(nil)

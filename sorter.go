package flexbatch

import "slices"

// SorterConfig holds capacity hints for a BatchableSorter.
type SorterConfig struct {
	// InitialGroups is the number of opaque group containers to
	// preallocate. One group forms per distinct texture configuration
	// queued in a frame, so this stays small.
	InitialGroups int

	// GroupCapacity is the initial member capacity of each opaque group.
	GroupCapacity int

	// BlendedCapacity is the initial capacity of the blended queue.
	BlendedCapacity int
}

// DefaultSorterConfig returns the default capacity hints.
func DefaultSorterConfig() SorterConfig {
	return SorterConfig{
		InitialGroups:   2,
		GroupCapacity:   1000,
		BlendedCapacity: 1000,
	}
}

// opaqueGroup collects batchables sharing texture-equivalent state. The
// representative is the first member queued; equivalence for later adds is
// always checked against it.
type opaqueGroup[T any] struct {
	repr    T
	members []T
}

// BatchableSorter is a frame-scoped queue that reorders batchables before
// they reach a renderer. Opaque batchables are grouped by texture
// configuration so each group draws consecutively with no rebinding;
// translucent ones are kept in a single queue and drawn far-to-near from
// the camera so alpha blending composites correctly.
//
// Queue contents persist across Draw calls and are discarded by Flush or
// Clear. Group containers are recycled through an internal arena indexed
// by a free-list, so steady-state frames allocate nothing.
//
// Add, Draw, and Flush assume the renderer session is open (the renderer's
// own begin/end contract); enforcing that ordering is the renderer's
// responsibility, not the sorter's.
type BatchableSorter[T interface {
	Batchable
	Sortable[T]
}] struct {
	cameraPos Vec3

	// arena holds every group container ever created; active indexes the
	// groups currently in use, free the reusable empties.
	arena  []opaqueGroup[T]
	active []int
	free   []int

	blended []T

	// needSort is set when a blended batchable is queued and cleared
	// after a sort pass, so an unchanged queue is never re-sorted.
	needSort bool

	groupCapacity int
}

// NewBatchableSorter creates a sorter with default capacities. The camera
// position seeds the distance reference for translucent ordering.
func NewBatchableSorter[T interface {
	Batchable
	Sortable[T]
}](cameraPos Vec3) *BatchableSorter[T] {
	return NewBatchableSorterWith[T](cameraPos, DefaultSorterConfig())
}

// NewBatchableSorterWith creates a sorter with explicit capacity hints.
func NewBatchableSorterWith[T interface {
	Batchable
	Sortable[T]
}](cameraPos Vec3, cfg SorterConfig) *BatchableSorter[T] {
	def := DefaultSorterConfig()
	if cfg.InitialGroups <= 0 {
		cfg.InitialGroups = def.InitialGroups
	}
	if cfg.GroupCapacity <= 0 {
		cfg.GroupCapacity = def.GroupCapacity
	}
	if cfg.BlendedCapacity <= 0 {
		cfg.BlendedCapacity = def.BlendedCapacity
	}

	s := &BatchableSorter[T]{
		cameraPos:     cameraPos,
		blended:       make([]T, 0, cfg.BlendedCapacity),
		groupCapacity: cfg.GroupCapacity,
	}
	// Seed the arena so the first frame draws from the free-list.
	for i := 0; i < cfg.InitialGroups; i++ {
		s.arena = append(s.arena, opaqueGroup[T]{
			members: make([]T, 0, cfg.GroupCapacity),
		})
		s.free = append(s.free, i)
	}
	return s
}

// SetCamera updates the reference point for distance comparisons. It does
// not retroactively re-sort an already-sorted queue; the new position
// takes effect on the next sort pass.
func (s *BatchableSorter[T]) SetCamera(pos Vec3) {
	s.cameraPos = pos
}

// Add queues a batchable. Opaque batchables join the group whose
// representative has equivalent textures, or start a new group; the scan
// is linear over the current group count, which stays small (one group per
// distinct texture configuration). The first matching group wins, and
// groups are never split or merged within one queue lifetime. Translucent
// batchables are appended to the blended queue and mark it for sorting.
func (s *BatchableSorter[T]) Add(b T) {
	if b.IsOpaque() {
		for _, gi := range s.active {
			if b.HasEquivalentTextures(s.arena[gi].repr) {
				s.arena[gi].members = append(s.arena[gi].members, b)
				return
			}
		}
		gi := s.acquireGroup()
		s.arena[gi].repr = b
		s.arena[gi].members = append(s.arena[gi].members, b)
		s.active = append(s.active, gi)
		return
	}
	s.blended = append(s.blended, b)
	s.needSort = true
}

// Draw sorts the blended queue if needed and replays the queued
// batchables to dst without clearing them: every opaque group first, each
// drawn contiguously, then the blended queue far-to-near. Must be called
// inside the renderer's session. Stops at the first draw error.
func (s *BatchableSorter[T]) Draw(dst BatchDrawer[T]) error {
	if s.needSort {
		s.sortBlended()
		s.needSort = false
	}
	for _, gi := range s.active {
		for _, b := range s.arena[gi].members {
			if err := dst.Draw(b); err != nil {
				return err
			}
		}
	}
	for _, b := range s.blended {
		if err := dst.Draw(b); err != nil {
			return err
		}
	}
	return nil
}

// Flush draws the queued batchables and then clears the queue. Must be
// called inside the renderer's session.
func (s *BatchableSorter[T]) Flush(dst BatchDrawer[T]) error {
	if err := s.Draw(dst); err != nil {
		return err
	}
	s.Clear()
	return nil
}

// Clear discards the queue without drawing: group containers return to the
// free-list and the blended queue empties. Batchable references are
// dropped so pooled instances are not pinned past the frame.
func (s *BatchableSorter[T]) Clear() {
	var zero T
	for _, gi := range s.active {
		g := &s.arena[gi]
		clear(g.members)
		g.members = g.members[:0]
		g.repr = zero
		s.free = append(s.free, gi)
	}
	s.active = s.active[:0]
	clear(s.blended)
	s.blended = s.blended[:0]
	s.needSort = false
}

// Len returns the number of queued batchables across both queues.
func (s *BatchableSorter[T]) Len() int {
	n := len(s.blended)
	for _, gi := range s.active {
		n += len(s.arena[gi].members)
	}
	return n
}

// acquireGroup pops a container index off the free-list, growing the
// arena when it is empty.
func (s *BatchableSorter[T]) acquireGroup() int {
	if n := len(s.free); n > 0 {
		gi := s.free[n-1]
		s.free = s.free[:n-1]
		return gi
	}
	s.arena = append(s.arena, opaqueGroup[T]{
		members: make([]T, 0, s.groupCapacity),
	})
	return len(s.arena) - 1
}

// sortBlended stable-sorts the blended queue by descending distance from
// the camera, so translucent geometry draws back to front. The comparator
// uses direct relational comparison of the squared distances; deriving an
// ordering from the sign of a float subtraction can violate transitivity
// for nearly equal values. Stability keeps insertion order for ties.
func (s *BatchableSorter[T]) sortBlended() {
	cam := s.cameraPos
	slices.SortStableFunc(s.blended, func(a, b T) int {
		da, db := a.DistanceSq(cam), b.DistanceSq(cam)
		switch {
		case da > db:
			return -1
		case da < db:
			return 1
		}
		return 0
	})
}

package render

import "github.com/gogpu/flexbatch"

// TextureState is the accumulator of texture binding state for one batch
// session. Batchables record the bindings they need through BindTexture;
// the batch commits them with apply after flushing geometry that was
// accumulated under the previous bindings.
//
// TextureState implements flexbatch.RenderState.
type TextureState struct {
	pending   []flexbatch.TextureID
	committed []flexbatch.TextureID
}

// NewTextureState creates state tracking for the given number of texture
// units.
func NewTextureState(units int) *TextureState {
	if units < 1 {
		units = 1
	}
	return &TextureState{
		pending:   make([]flexbatch.TextureID, units),
		committed: make([]flexbatch.TextureID, units),
	}
}

// BindTexture records that tex must be bound to unit and reports whether
// that differs from the committed binding.
func (s *TextureState) BindTexture(unit int, tex flexbatch.TextureID) bool {
	s.pending[unit] = tex
	return s.committed[unit] != tex
}

// apply commits the pending bindings.
func (s *TextureState) apply() {
	copy(s.committed, s.pending)
}

// invalidate forgets all bindings, forcing the next draw to rebind.
// Called at session start: the GPU-side state is unknown between sessions.
func (s *TextureState) invalidate() {
	for i := range s.committed {
		s.committed[i] = flexbatch.InvalidTextureID
		s.pending[i] = flexbatch.InvalidTextureID
	}
}

// Committed returns the currently committed bindings, one per unit. The
// returned slice is live; callers must not retain it across a flush.
func (s *TextureState) Committed() []flexbatch.TextureID {
	return s.committed
}

var _ flexbatch.RenderState = (*TextureState)(nil)

package texture

// shelf is one horizontal band of the page. Items are placed left to
// right; the band's height is fixed by its tallest item.
type shelf struct {
	y      int
	height int
	nextX  int
}

// allocator packs rectangles into a fixed-size area with the shelf
// algorithm: each rectangle goes onto the first shelf with room, or opens
// a new shelf below the last one. Frame-synchronous like the rest of the
// module, so no locking.
type allocator struct {
	width, height int
	padding       int

	shelves []shelf
	used    int
}

func newAllocator(width, height, padding int) *allocator {
	return &allocator{
		width:   width,
		height:  height,
		padding: padding,
	}
}

// allocate finds space for a w x h rectangle and returns its top-left
// corner. ok is false when no shelf can hold it.
func (a *allocator) allocate(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	pw := w + a.padding
	ph := h + a.padding
	if pw > a.width || ph > a.height {
		return 0, 0, false
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.width {
			continue
		}
		// A taller item cannot grow an occupied shelf.
		if ph > s.height && s.nextX > 0 {
			continue
		}
		x = s.nextX
		s.nextX += pw
		if ph > s.height {
			s.height = ph
		}
		a.used += w * h
		return x, s.y, true
	}

	newY := 0
	if n := len(a.shelves); n > 0 {
		last := a.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+ph > a.height {
		return 0, 0, false
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: ph, nextX: pw})
	a.used += w * h
	return 0, newY, true
}

// reset discards all placements.
func (a *allocator) reset() {
	a.shelves = a.shelves[:0]
	a.used = 0
}

// utilization returns the fraction of page area holding images.
func (a *allocator) utilization() float64 {
	total := a.width * a.height
	if total == 0 {
		return 0
	}
	return float64(a.used) / float64(total)
}

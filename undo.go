package jot

// UndoSnapshot is the transform of an element right before a gesture
// started to mutate it.
type UndoSnapshot struct {
	ElementID ElementID
	Transform Transform

	seq uint64
}

// UndoHistory is a single stack of snapshots shared by all elements of a
// container, so that undo always reverts the latest mutation regardless
// of which element it touched.
type UndoHistory struct {
	stack []UndoSnapshot
	open  map[ElementID]struct{}
	seq   uint64
}

// NewUndoHistory returns an empty history.
func NewUndoHistory() *UndoHistory {
	return &UndoHistory{open: make(map[ElementID]struct{})}
}

// Capture pushes a snapshot of t for the element id and opens a gesture
// session for it. While the session is open further captures for the
// same element are ignored and reported as false.
func (h *UndoHistory) Capture(id ElementID, t Transform) (UndoSnapshot, bool) {
	if _, ok := h.open[id]; ok {
		return UndoSnapshot{}, false
	}
	h.open[id] = struct{}{}
	h.seq++
	s := UndoSnapshot{ElementID: id, Transform: t, seq: h.seq}
	h.stack = append(h.stack, s)
	return s, true
}

// EndSession closes the gesture session of the element id.
func (h *UndoHistory) EndSession(id ElementID) {
	delete(h.open, id)
}

// InSession reports whether a gesture session is open for id.
func (h *UndoHistory) InSession(id ElementID) bool {
	_, ok := h.open[id]
	return ok
}

// Pop removes and returns the most recent snapshot.
func (h *UndoHistory) Pop() (UndoSnapshot, error) {
	if len(h.stack) == 0 {
		return UndoSnapshot{}, ErrUndoStackEmpty
	}
	s := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	return s, nil
}

// Peek returns the most recent snapshot without removing it.
func (h *UndoHistory) Peek() (UndoSnapshot, bool) {
	if len(h.stack) == 0 {
		return UndoSnapshot{}, false
	}
	return h.stack[len(h.stack)-1], true
}

// Discard drops every snapshot of the element id and closes its session.
// It returns the number of dropped snapshots.
func (h *UndoHistory) Discard(id ElementID) int {
	delete(h.open, id)
	kept := h.stack[:0]
	for _, s := range h.stack {
		if s.ElementID != id {
			kept = append(kept, s)
		}
	}
	n := len(h.stack) - len(kept)
	for i := len(kept); i < len(h.stack); i++ {
		h.stack[i] = UndoSnapshot{}
	}
	h.stack = kept
	return n
}

// Clear empties the stack and closes every session.
func (h *UndoHistory) Clear() {
	h.stack = nil
	h.open = make(map[ElementID]struct{})
}

// Len returns the number of snapshots on the stack.
func (h *UndoHistory) Len() int {
	return len(h.stack)
}

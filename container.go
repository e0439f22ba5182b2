package jot

import (
	"fmt"
	"image"
	"log/slog"
	"math"
)

// Container owns an ordered collection of elements. The order is the
// z-order: the last element is drawn on top and is hit-tested first.
// A Container is not safe for concurrent use; it is meant to be driven
// from the host's event loop.
type Container struct {
	opts     Options
	log      *slog.Logger
	elements []*Element

	selected *Element
	editing  *Element

	history *UndoHistory
	router  router
}

// NewContainer returns an empty container.
func NewContainer(opts Options) (*Container, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}
	c := &Container{
		opts:    opts,
		log:     opts.Logger,
		history: NewUndoHistory(),
	}
	c.router = router{c: c}
	c.router.reset()
	return c, nil
}

// SetObserver registers the callbacks notified by the container,
// replacing the previous ones.
func (c *Container) SetObserver(o Observer) {
	c.opts.Observer = o
}

// Options returns the effective options of the container.
func (c *Container) Options() Options {
	return c.opts
}

// Add appends a new unselected element on top of the z-order.
func (c *Container) Add(content Content, kind Kind) (*Element, error) {
	switch kind {
	case KindImage:
		if content.Image == nil {
			return nil, fmt.Errorf("%w: image element without image", ErrInvalidSize)
		}
	case KindText:
		if content.Style == (TextStyle{}) {
			content.Style = c.opts.TextStyle
		}
	default:
		return nil, fmt.Errorf("%w: element kind %v", ErrUnsupportedOperation, kind)
	}

	bounds, err := c.opts.Backend.Measure(kind, content)
	if err != nil {
		return nil, fmt.Errorf("measuring %s element: %w", kind, err)
	}
	if !bounds.Valid() {
		return nil, fmt.Errorf("%w: %s element measures %vx%v", ErrInvalidSize, kind, bounds.W, bounds.H)
	}

	center := bounds.Center()
	if c.opts.CanvasSize.Valid() {
		center = c.opts.CanvasSize.Center()
	}
	e := &Element{
		id:      ElementID(c.opts.NewID()),
		kind:    kind,
		content: content,
		bounds:  bounds,
		model: NewTransformModel(Transform{
			TranslationX: center.X,
			TranslationY: center.Y,
			Scale:        1,
		}, c.opts.ScaleLimits),
		owner: c,
	}
	c.elements = append(c.elements, e)
	c.log.Debug("element added",
		slog.String("id", string(e.id)),
		slog.String("kind", kind.String()),
		slog.Float64("width", bounds.W), slog.Float64("height", bounds.H))
	return e, nil
}

// AddImage adds an image element.
func (c *Container) AddImage(img image.Image) (*Element, error) {
	return c.Add(Content{Image: img}, KindImage)
}

// AddText adds a text element; a zero style selects the container's default text style.
func (c *Container) AddText(text string, style TextStyle) (*Element, error) {
	return c.Add(Content{Text: text, Style: style}, KindText)
}

// Element returns the element with the given id.
func (c *Container) Element(id ElementID) (*Element, error) {
	if e := c.find(id); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, id)
}

// Elements returns the elements in z-order, bottom first.
func (c *Container) Elements() []*Element {
	return append([]*Element(nil), c.elements...)
}

// Len returns the number of elements.
func (c *Container) Len() int {
	return len(c.elements)
}

// Count returns the number of elements of the given kind.
func (c *Container) Count(kind Kind) int {
	n := 0
	for _, e := range c.elements {
		if e.kind == kind {
			n++
		}
	}
	return n
}

// Selected returns the selected element, if any.
func (c *Container) Selected() *Element { return c.selected }

// Editing returns the element being edited, if any.
func (c *Container) Editing() *Element { return c.editing }

// State returns the state of the gesture router.
func (c *Container) State() RouterState { return c.router.state }

// IsMoving reports whether a gesture session is manipulating an element.
func (c *Container) IsMoving() bool { return c.router.state == StateManipulating }

// Active returns the element receiving the deltas of the current gesture session.
func (c *Container) Active() *Element { return c.router.active }

// HandleGesture routes a host gesture event.
func (c *Container) HandleGesture(ev GestureEvent) error {
	return c.router.handle(ev)
}

// CancelEditing aborts the running gesture session and clears the
// editing and selection flags. Undo snapshots are kept.
func (c *Container) CancelEditing() {
	c.router.cancel()
	c.setEditing(nil)
	c.setSelection(nil)
}

// Remove deletes an element and every undo snapshot referencing it.
func (c *Container) Remove(id ElementID) error {
	i := c.indexOfID(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	e := c.elements[i]
	c.elements = append(c.elements[:i], c.elements[i+1:]...)
	c.detach(e)
	return nil
}

// ClearAll removes every element and empties the undo stack.
func (c *Container) ClearAll() {
	removed := c.elements
	c.elements = nil
	for _, e := range removed {
		c.detach(e)
	}
	c.history.Clear()
	c.log.Debug("container cleared", slog.Int("removed", len(removed)))
}

// ClearKind removes every element of the given kind along with the undo
// snapshots referencing them.
func (c *Container) ClearKind(kind Kind) {
	kept := c.elements[:0]
	var removed []*Element
	for _, e := range c.elements {
		if e.kind == kind {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(c.elements); i++ {
		c.elements[i] = nil
	}
	c.elements = kept
	for _, e := range removed {
		c.detach(e)
	}
}

// BringToFront moves the element to the top of the z-order.
func (c *Container) BringToFront(id ElementID) error {
	i := c.indexOfID(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	e := c.elements[i]
	c.elements = append(append(c.elements[:i], c.elements[i+1:]...), e)
	return nil
}

// SendToBack moves the element to the bottom of the z-order.
func (c *Container) SendToBack(id ElementID) error {
	i := c.indexOfID(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	e := c.elements[i]
	copy(c.elements[1:i+1], c.elements[:i])
	c.elements[0] = e
	return nil
}

// CanUndo reports whether the undo stack holds a snapshot.
func (c *Container) CanUndo() bool {
	return c.history.Len() > 0
}

// Undo restores the element transform of the most recent snapshot.
// Snapshots of elements that no longer exist are skipped.
func (c *Container) Undo() error {
	for {
		s, err := c.history.Pop()
		if err != nil {
			return err
		}
		e := c.find(s.ElementID)
		if e == nil {
			c.log.Debug("undo snapshot discarded", slog.String("id", string(s.ElementID)))
			continue
		}
		if err := e.ApplyUndo(s); err != nil {
			return err
		}
		c.log.Debug("undo applied",
			slog.String("id", string(e.id)),
			slog.String("transform", s.Transform.String()))
		return nil
	}
}

func (c *Container) find(id ElementID) *Element {
	if i := c.indexOfID(id); i >= 0 {
		return c.elements[i]
	}
	return nil
}

func (c *Container) indexOfID(id ElementID) int {
	for i, e := range c.elements {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (c *Container) indexOf(e *Element) int {
	for i, el := range c.elements {
		if el == e {
			return i
		}
	}
	return -1
}

// hitTest returns the topmost element containing p.
func (c *Container) hitTest(p Point) *Element {
	for i := len(c.elements) - 1; i >= 0; i-- {
		if c.elements[i].Contains(p) {
			return c.elements[i]
		}
	}
	return nil
}

// detach invalidates an element that was taken out of c.elements.
func (c *Container) detach(e *Element) {
	if c.selected == e {
		c.setSelection(nil)
	}
	if c.editing == e {
		c.setEditing(nil)
	}
	c.router.forget(e)
	n := c.history.Discard(e.id)
	e.owner = nil
	e.selected, e.editing = false, false
	c.log.Debug("element removed",
		slog.String("id", string(e.id)),
		slog.Int("discarded_snapshots", n))
}

func (c *Container) setSelection(e *Element) {
	if c.selected == e {
		return
	}
	if c.selected != nil {
		c.selected.selected = false
	}
	c.selected = e
	id := NoElement
	if e != nil {
		e.selected = true
		id = e.id
	}
	if fn := c.opts.Observer.SelectionChanged; fn != nil {
		fn(id)
	}
}

func (c *Container) setEditing(e *Element) {
	if c.editing == e {
		return
	}
	if prev := c.editing; prev != nil {
		prev.editing = false
		c.editing = nil
		c.notifyText(prev, false)
	}
	if e != nil {
		e.editing = true
		c.editing = e
		c.notifyText(e, true)
	}
}

func (c *Container) notifyMove(e *Element, fn func(ElementID)) {
	if fn != nil {
		fn(e.id)
	}
}

func (c *Container) notifyText(e *Element, editing bool) {
	if fn := c.opts.Observer.EditingTextChanged; fn != nil {
		fn(e.id, e.content.Text, editing)
	}
}

func (c *Container) updateText(e *Element, text string) error {
	content := e.content
	content.Text = text
	return c.remeasure(e, content)
}

// remeasure replaces the content of the text element e and sizes its
// bounds to the new content.
func (c *Container) remeasure(e *Element, content Content) error {
	bounds, err := c.opts.Backend.Measure(KindText, content)
	if err != nil {
		return fmt.Errorf("measuring text element: %w", err)
	}
	if !bounds.Valid() {
		return fmt.Errorf("%w: text measures %vx%v", ErrInvalidSize, bounds.W, bounds.H)
	}
	e.content = content
	e.bounds = bounds
	if e.editing {
		c.notifyText(e, true)
	}
	return nil
}

// captureUndo pushes a snapshot of e. With oneShot the gesture session
// is closed right away so the next capture is recorded too.
func (c *Container) captureUndo(e *Element, oneShot bool) bool {
	s, ok := c.history.Capture(e.id, e.model.Transform())
	if oneShot {
		c.history.EndSession(e.id)
	}
	if !ok {
		return false
	}
	e.snapshot = &s
	c.log.Debug("undo snapshot captured",
		slog.String("id", string(e.id)),
		slog.Int("depth", c.history.Len()))
	if fn := c.opts.Observer.UndoSnapshotCaptured; fn != nil {
		fn(e.id)
	}
	return true
}

func (c *Container) canvasRect() Rect {
	return Rect{Max: Point{X: c.opts.CanvasSize.W, Y: c.opts.CanvasSize.H}}
}

func (c *Container) discardIfOffCanvas(e *Element) {
	if !c.opts.DiscardOffCanvas || e.owner != c {
		return
	}
	if e.Frame().Overlaps(c.canvasRect()) {
		return
	}
	c.log.Debug("element dragged off canvas", slog.String("id", string(e.id)))
	if err := c.Remove(e.id); err != nil {
		c.log.Warn("discarding off-canvas element", slog.String("error", err.Error()))
	}
}

// Render composes all elements in z-order into a new image. Selection
// chrome is never drawn.
func (c *Container) Render() (*image.NRGBA, error) {
	if c.opts.CanvasSize.Valid() {
		size := image.Pt(int(math.Ceil(c.opts.CanvasSize.W)), int(math.Ceil(c.opts.CanvasSize.H)))
		return c.render(size, Point{}, nil)
	}
	var frame Rect
	for _, e := range c.elements {
		frame = frame.Union(e.Frame())
	}
	r := frame.Image()
	return c.render(r.Size(), Pt(float64(-r.Min.X), float64(-r.Min.Y)), nil)
}

// RenderOnto composes all elements over base; the result has the size of base.
func (c *Container) RenderOnto(base image.Image) (*image.NRGBA, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base image", ErrInvalidSize)
	}
	return c.render(base.Bounds().Size(), Point{}, base)
}

func (c *Container) render(size image.Point, offset Point, base image.Image) (*image.NRGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return image.NewNRGBA(image.Rectangle{}), nil
	}
	layers := make([]Layer, 0, len(c.elements))
	for _, e := range c.elements {
		t := e.model.Transform()
		layer, err := c.opts.Backend.Rasterize(RasterRequest{
			ID:           e.id,
			Kind:         e.kind,
			Content:      e.content,
			Bounds:       e.bounds,
			TranslationX: t.TranslationX + offset.X,
			TranslationY: t.TranslationY + offset.Y,
			Scale:        t.Scale,
			Rotation:     t.Rotation,
		})
		if err != nil {
			return nil, fmt.Errorf("rasterizing element %s: %w", e.id, err)
		}
		layers = append(layers, layer)
	}
	out, err := c.opts.Backend.Compose(size, base, layers)
	if err != nil {
		return nil, fmt.Errorf("composing %d layers: %w", len(layers), err)
	}
	return out, nil
}

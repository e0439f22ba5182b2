package jot

import (
	"fmt"
	"image"
	"image/color"
)

// Kind is the closed set of element variants.
type Kind uint8

const (
	KindImage Kind = iota
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ElementID identifies an element inside its container.
type ElementID string

// NoElement is reported to observers when nothing is selected.
const NoElement ElementID = ""

// TextStyle describes how a text element is drawn.
type TextStyle struct {
	Color    color.NRGBA
	FontSize float64
	// Shadow is the blur radius of a drop shadow, 0 disables it.
	Shadow int
}

// DefaultTextStyle is used for text elements added with a zero style.
var DefaultTextStyle = TextStyle{
	Color:    color.NRGBA{A: 0xff},
	FontSize: 32,
}

// Content is what an element shows. Image is used by KindImage elements,
// Text and Style by KindText elements. Blend names an imop blend mode
// and Composite an imop Porter-Duff operation applied when the element is
// composed over the elements below it; empty values mean plain source-over.
type Content struct {
	Image     image.Image
	Text      string
	Style     TextStyle
	Blend     string
	Composite string
}

// Element is one movable overlay item. Elements are created and owned by
// a Container; an element removed from its container rejects every
// mutation with ErrElementNotFound.
type Element struct {
	id      ElementID
	kind    Kind
	content Content
	bounds  Size
	model   *TransformModel

	selected bool
	editing  bool

	// snapshot is the last undo snapshot captured for this element.
	snapshot *UndoSnapshot
	owner    *Container
}

func (e *Element) ID() ElementID { return e.id }
func (e *Element) Kind() Kind    { return e.kind }

// Content returns the element content.
func (e *Element) Content() Content { return e.content }

// Text returns the text of a text element, or "" for images.
func (e *Element) Text() string { return e.content.Text }

// Bounds returns the pre-transform size of the content.
func (e *Element) Bounds() Size { return e.bounds }

// Transform returns a copy of the element's current transform.
func (e *Element) Transform() Transform { return e.model.Transform() }

// Frame returns the canvas-space bounding box of the transformed element.
func (e *Element) Frame() Rect { return e.model.Transform().Frame(e.bounds) }

// Contains reports whether the canvas point p hits the element.
func (e *Element) Contains(p Point) bool {
	return e.model.Transform().Contains(e.bounds, p)
}

func (e *Element) IsSelected() bool { return e.selected }
func (e *Element) IsEditing() bool  { return e.editing }

// ZOrder returns the element's index in its container, 0 being the
// bottom, or -1 when the element has been removed.
func (e *Element) ZOrder() int {
	if e.owner == nil {
		return -1
	}
	return e.owner.indexOf(e)
}

// LastUndoSnapshot returns the most recent snapshot captured for the element.
func (e *Element) LastUndoSnapshot() (UndoSnapshot, bool) {
	if e.snapshot == nil {
		return UndoSnapshot{}, false
	}
	return *e.snapshot, true
}

func (e *Element) attached() error {
	if e.owner == nil {
		return fmt.Errorf("%w: %s", ErrElementNotFound, e.id)
	}
	return nil
}

// SetSelected selects or deselects the element. Selecting it deselects
// the element selected before.
func (e *Element) SetSelected(selected bool) error {
	if err := e.attached(); err != nil {
		return err
	}
	switch {
	case selected:
		e.owner.setSelection(e)
	case e.selected:
		e.owner.setSelection(nil)
	}
	return nil
}

// ResizeTo replaces the pre-transform bounds of the element.
func (e *Element) ResizeTo(size Size) error {
	if err := e.attached(); err != nil {
		return err
	}
	if !size.Valid() {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, size.W, size.H)
	}
	e.bounds = size
	return nil
}

// ResizeWithScale sets the absolute scale of the element, clamped to the
// container's scale limits.
func (e *Element) ResizeWithScale(scale float64) error {
	if err := e.attached(); err != nil {
		return err
	}
	if !validFactor(scale) {
		return fmt.Errorf("%w: %v", ErrInvalidScaleFactor, scale)
	}
	t := e.model.Transform()
	t.Scale = scale
	e.model.Set(t)
	return nil
}

// MoveCenterTo moves the element so that its center lies on p.
func (e *Element) MoveCenterTo(p Point) error {
	if err := e.attached(); err != nil {
		return err
	}
	if !p.finite() {
		return fmt.Errorf("%w: center %v", ErrInvalidTransform, p)
	}
	t := e.model.Transform()
	t.TranslationX, t.TranslationY = p.X, p.Y
	e.model.Set(t)
	return nil
}

// SetTransform replaces the whole transform; the scale is clamped to the
// container's scale limits.
func (e *Element) SetTransform(t Transform) error {
	if err := e.attached(); err != nil {
		return err
	}
	if !validFactor(t.Scale) {
		return fmt.Errorf("%w: %v", ErrInvalidScaleFactor, t.Scale)
	}
	if !t.finite() {
		return fmt.Errorf("%w: %v", ErrInvalidTransform, t)
	}
	e.model.Set(t)
	return nil
}

// Place sets the scale and the center of the element in one step.
func (e *Element) Place(scale float64, center Point) error {
	if !center.finite() {
		return fmt.Errorf("%w: center %v", ErrInvalidTransform, center)
	}
	if err := e.ResizeWithScale(scale); err != nil {
		return err
	}
	return e.MoveCenterTo(center)
}

// CaptureUndoSnapshot records the current transform on the container's
// undo stack. It reports false when a snapshot was already taken for the
// gesture currently manipulating the element.
func (e *Element) CaptureUndoSnapshot() (bool, error) {
	if err := e.attached(); err != nil {
		return false, err
	}
	return e.owner.captureUndo(e, e.owner.router.active != e), nil
}

// ApplyUndo restores the full transform held by s.
func (e *Element) ApplyUndo(s UndoSnapshot) error {
	if err := e.attached(); err != nil {
		return err
	}
	if s.ElementID != e.id {
		return fmt.Errorf("%w: snapshot of %s applied to %s", ErrElementNotFound, s.ElementID, e.id)
	}
	e.model.Set(s.Transform)
	e.owner.router.rebase(e)
	return nil
}

// EnableEditing starts or ends text editing. Only text elements can be
// edited; starting an edit ends the edit of any other element.
func (e *Element) EnableEditing(editing bool) error {
	if err := e.attached(); err != nil {
		return err
	}
	if e.kind != KindText {
		if editing {
			return fmt.Errorf("%w: editing %s element", ErrUnsupportedOperation, e.kind)
		}
		return nil
	}
	switch {
	case editing:
		e.owner.setEditing(e)
	case e.editing:
		e.owner.setEditing(nil)
	}
	return nil
}

// SetStyle replaces the style of a text element and re-measures its bounds.
func (e *Element) SetStyle(style TextStyle) error {
	if err := e.attached(); err != nil {
		return err
	}
	if e.kind != KindText {
		return fmt.Errorf("%w: setting style of %s element", ErrUnsupportedOperation, e.kind)
	}
	if !(style.FontSize > 0) || !finite(style.FontSize) || style.Shadow < 0 {
		return fmt.Errorf("%w: font size %v, shadow %d", ErrInvalidSize, style.FontSize, style.Shadow)
	}
	content := e.content
	content.Style = style
	return e.owner.remeasure(e, content)
}

// SetTextColor changes only the color of a text element.
func (e *Element) SetTextColor(col color.NRGBA) error {
	style := e.content.Style
	style.Color = col
	return e.SetStyle(style)
}

// SetText replaces the text of a text element and re-measures its bounds.
func (e *Element) SetText(text string) error {
	if err := e.attached(); err != nil {
		return err
	}
	if e.kind != KindText {
		return fmt.Errorf("%w: setting text of %s element", ErrUnsupportedOperation, e.kind)
	}
	return e.owner.updateText(e, text)
}

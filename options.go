package jot

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Observer receives notifications from a container. The container does
// not own the observer; nil callbacks are skipped. Callbacks run
// synchronously inside the call that triggered them.
type Observer struct {
	// UndoSnapshotCaptured fires after every snapshot pushed on the undo stack.
	UndoSnapshotCaptured func(id ElementID)
	// SelectionChanged fires with the newly selected element, or NoElement.
	SelectionChanged func(id ElementID)
	// EditingTextChanged fires when text editing begins or ends and when
	// the text of the edited element changes.
	EditingTextChanged func(id ElementID, text string, editing bool)

	// MoveBegan, Moved and MoveEnded bracket a gesture session on an
	// element. Moved fires after every accepted increment; MoveEnded also
	// fires when the session is cancelled or the element is removed.
	MoveBegan func(id ElementID)
	Moved     func(id ElementID)
	MoveEnded func(id ElementID)
}

// Options configures a Container.
type Options struct {
	// ScaleLimits clamps element scales; the zero value means DefaultScaleLimits.
	ScaleLimits ScaleLimits
	// CanvasSize is the size of the rendered canvas. The zero value leaves
	// the canvas unbounded and renders the union of all element frames.
	CanvasSize Size
	// DiscardOffCanvas removes an element whose frame no longer intersects
	// the canvas when the gesture moving it ends. Requires CanvasSize.
	DiscardOffCanvas bool
	// PinchAboutFocus pivots pinch and rotate gestures on the point where
	// the session began instead of the element center.
	PinchAboutFocus bool
	// TextStyle is used for text elements added with a zero style.
	TextStyle TextStyle

	Backend  Backend
	Observer Observer
	Logger   *slog.Logger
	// NewID generates element ids; defaults to UUIDv7 strings.
	NewID func() string
}

func (o *Options) setDefaults() error {
	if o.ScaleLimits == (ScaleLimits{}) {
		o.ScaleLimits = DefaultScaleLimits
	}
	if err := o.ScaleLimits.Validate(); err != nil {
		return err
	}
	if o.CanvasSize != (Size{}) && !o.CanvasSize.Valid() {
		return fmt.Errorf("%w: canvas size %vx%v", ErrInvalidOptions, o.CanvasSize.W, o.CanvasSize.H)
	}
	if o.DiscardOffCanvas && o.CanvasSize == (Size{}) {
		return fmt.Errorf("%w: off-canvas discard needs a canvas size", ErrInvalidOptions)
	}
	if o.TextStyle == (TextStyle{}) {
		o.TextStyle = DefaultTextStyle
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.NewID == nil {
		o.NewID = func() string {
			return uuid.Must(uuid.NewV7()).String()
		}
	}
	if o.Backend == nil {
		b, err := NewRasterBackend()
		if err != nil {
			return err
		}
		o.Backend = b
	}
	return nil
}

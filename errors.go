package jot

import "errors"

var (
	// ErrInvalidScaleFactor is returned when a scale factor is not a finite value greater than zero.
	ErrInvalidScaleFactor = errors.New("jot: invalid scale factor")
	// ErrUnsupportedOperation is returned when an operation does not apply to the element kind.
	ErrUnsupportedOperation = errors.New("jot: unsupported operation")
	// ErrUndoStackEmpty signals that there is nothing left to undo.
	ErrUndoStackEmpty = errors.New("jot: undo stack empty")
	// ErrElementNotFound is returned for ids of elements that are not (or no longer) in the container.
	ErrElementNotFound = errors.New("jot: element not found")
	// ErrInvalidSize is returned for non-positive element bounds.
	ErrInvalidSize = errors.New("jot: invalid size")
	// ErrInvalidTransform is returned for NaN or infinite translations and rotations.
	ErrInvalidTransform = errors.New("jot: invalid transform")
	// ErrInvalidOptions is returned by NewContainer for inconsistent options.
	ErrInvalidOptions = errors.New("jot: invalid options")
)

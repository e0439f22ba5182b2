package jot

import (
	"fmt"
	"log/slog"
)

// GestureKind names the recognizer that produced a gesture event.
type GestureKind uint8

const (
	GestureTap GestureKind = iota
	GestureLongPress
	GesturePan
	GesturePinch
	GestureRotate
)

func (k GestureKind) valid() bool {
	return k <= GestureRotate
}

func (k GestureKind) String() string {
	switch k {
	case GestureTap:
		return "tap"
	case GestureLongPress:
		return "long-press"
	case GesturePan:
		return "pan"
	case GesturePinch:
		return "pinch"
	case GestureRotate:
		return "rotate"
	}
	return fmt.Sprintf("GestureKind(%d)", uint8(k))
}

// Phase is the stage of a gesture session an event belongs to.
type Phase uint8

const (
	PhaseBegan Phase = iota
	PhaseChanged
	PhaseEnded
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseBegan:
		return "began"
	case PhaseChanged:
		return "changed"
	case PhaseEnded:
		return "ended"
	case PhaseCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// GestureEvent is one discrete event delivered by the host.
// Translation, Scale and Rotation are increments since the previous
// Changed event of the same recognizer: Translation is used by pan and
// long-press, Scale by pinch, Rotation (radians) by rotate.
type GestureEvent struct {
	Kind        GestureKind
	Phase       Phase
	Point       Point
	Translation Point
	Scale       float64
	Rotation    float64
}

// RouterState is the state of the gesture router.
type RouterState uint8

const (
	StateIdle RouterState = iota
	StateTargeting
	StateManipulating
)

func (s RouterState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTargeting:
		return "targeting"
	case StateManipulating:
		return "manipulating"
	}
	return fmt.Sprintf("RouterState(%d)", uint8(s))
}

// router correlates gesture events over time and keeps the active
// element exclusive for the duration of a session.
type router struct {
	c     *Container
	state RouterState

	candidate *Element
	active    *Element
	live      map[GestureKind]struct{}

	// base is the active element's transform at the start of the session
	// (or at the last undo applied to it); the cumulative increments below
	// are composed onto it.
	base        Transform
	anchor      Point
	scale       float64
	rotation    float64
	translation Point
}

func (r *router) handle(ev GestureEvent) error {
	if !ev.Kind.valid() {
		return fmt.Errorf("%w: unknown gesture kind %v", ErrUnsupportedOperation, ev.Kind)
	}
	if (ev.Kind == GestureTap || ev.Phase == PhaseBegan) && !ev.Point.finite() {
		return fmt.Errorf("%w: %s at %v", ErrInvalidTransform, ev.Kind, ev.Point)
	}
	if ev.Kind == GestureTap {
		r.tap(ev.Point)
		return nil
	}
	switch ev.Phase {
	case PhaseBegan:
		r.begin(ev)
		return nil
	case PhaseChanged:
		return r.change(ev)
	case PhaseEnded, PhaseCancelled:
		r.end(ev.Kind)
		return nil
	}
	return fmt.Errorf("jot: unknown gesture phase %v", ev.Phase)
}

func (r *router) tap(p Point) {
	if r.state == StateManipulating {
		return
	}
	hit := r.c.hitTest(p)
	r.candidate = hit
	r.c.setSelection(hit)
	if hit == nil {
		r.state = StateIdle
		return
	}
	r.state = StateTargeting
}

func (r *router) begin(ev GestureEvent) {
	if r.state == StateManipulating {
		// Simultaneous recognizers share the session of the active element.
		if _, ok := r.live[ev.Kind]; !ok {
			r.live[ev.Kind] = struct{}{}
		}
		return
	}

	target := r.c.hitTest(ev.Point)
	if target == nil && (ev.Kind == GesturePinch || ev.Kind == GestureRotate) {
		target = r.c.selected
	}
	if target == nil {
		r.c.log.Debug("gesture ignored, no element at point",
			slog.String("gesture", ev.Kind.String()),
			slog.Float64("x", ev.Point.X), slog.Float64("y", ev.Point.Y))
		return
	}

	r.state = StateManipulating
	r.candidate = target
	r.active = target
	r.live = map[GestureKind]struct{}{ev.Kind: {}}
	r.anchor = ev.Point
	r.rebase(target)

	r.c.captureUndo(target, false)
	r.c.setSelection(target)
	if ev.Kind == GestureLongPress && target.kind == KindText {
		r.c.setEditing(target)
	}
	r.c.notifyMove(target, r.c.opts.Observer.MoveBegan)
}

func (r *router) change(ev GestureEvent) error {
	if r.state != StateManipulating {
		return nil
	}
	if _, ok := r.live[ev.Kind]; !ok {
		return nil
	}

	// The running increments only move once the composed transform is accepted.
	scale, rotation, translation := r.scale, r.rotation, r.translation
	switch ev.Kind {
	case GesturePan, GestureLongPress:
		if !ev.Translation.finite() {
			return fmt.Errorf("%w: %s translation %v", ErrInvalidTransform, ev.Kind, ev.Translation)
		}
		translation = translation.Add(ev.Translation)
	case GesturePinch:
		if !validFactor(ev.Scale) {
			return fmt.Errorf("%w: pinch factor %v", ErrInvalidScaleFactor, ev.Scale)
		}
		scale *= ev.Scale
		if !validFactor(scale) {
			return fmt.Errorf("%w: pinch product %v", ErrInvalidScaleFactor, scale)
		}
	case GestureRotate:
		if !finite(ev.Rotation) {
			return fmt.Errorf("%w: rotation %v", ErrInvalidTransform, ev.Rotation)
		}
		rotation += ev.Rotation
	}

	m := r.active.model
	var err error
	if r.c.opts.PinchAboutFocus {
		err = m.ComposeAbout(r.base, r.anchor, scale, rotation, translation)
	} else {
		err = m.ComposeFrom(r.base, scale, rotation, translation)
	}
	if err != nil {
		return err
	}
	r.scale, r.rotation, r.translation = scale, rotation, translation
	r.c.notifyMove(r.active, r.c.opts.Observer.Moved)
	return nil
}

func (r *router) end(kind GestureKind) {
	if r.state != StateManipulating {
		return
	}
	if _, ok := r.live[kind]; !ok {
		return
	}
	delete(r.live, kind)
	if len(r.live) > 0 {
		return
	}

	e := r.active
	r.reset()
	r.c.history.EndSession(e.id)
	r.c.notifyMove(e, r.c.opts.Observer.MoveEnded)
	r.c.discardIfOffCanvas(e)
}

// rebase restarts the cumulative increments from e's current transform
// when e is the active element.
func (r *router) rebase(e *Element) {
	if r.active != e {
		return
	}
	r.base = e.model.Transform()
	r.scale = 1
	r.rotation = 0
	r.translation = Point{}
}

// cancel drops the running session without applying further increments.
func (r *router) cancel() {
	e := r.active
	r.reset()
	r.candidate = nil
	if e != nil {
		r.c.history.EndSession(e.id)
		r.c.notifyMove(e, r.c.opts.Observer.MoveEnded)
	}
}

// forget removes every reference to e after it left the container.
func (r *router) forget(e *Element) {
	if r.active == e {
		r.reset()
		r.c.notifyMove(e, r.c.opts.Observer.MoveEnded)
	}
	if r.candidate == e {
		r.candidate = nil
		if r.state == StateTargeting {
			r.state = StateIdle
		}
	}
}

func (r *router) reset() {
	r.state = StateIdle
	r.active = nil
	r.live = nil
	r.scale = 1
	r.rotation = 0
	r.translation = Point{}
}

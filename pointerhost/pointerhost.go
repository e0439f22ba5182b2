/*
Package pointerhost turns gio pointer events into jot gesture events.

One pointer produces taps, long-presses and pans; a second pointer turns
the session into a simultaneous pinch and rotation. With a mouse, the
wheel pinches while ctrl is held and rotates while shift is held.
*/
package pointerhost

import (
	"math"
	"time"

	"gioui.org/f32"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"github.com/stevestencil/jot"
)

// Defaults used by New.
const (
	DefaultSlop           = 8
	DefaultLongPressDelay = 500 * time.Millisecond
	DefaultWheelIdle      = 300 * time.Millisecond
	// DefaultWheelScale is the zoom per scrolled pixel.
	DefaultWheelScale = 0.005
	// DefaultWheelRotation is the rotation in radians per scrolled pixel.
	DefaultWheelRotation = math.Pi / 360
)

type mode uint8

const (
	// no session
	modeNone mode = iota
	// a pointer is down but has not moved past the slop yet
	modePending
	modePan
	modeLongPress
	// two pointers drive a pinch and a rotation
	modeTwoFinger
	// the remaining pointer of a two finger session, ignored until released
	modeDrained
	modeWheel
)

type track struct {
	id    pointer.ID
	start f32.Point
	pos   f32.Point
	at    time.Duration
}

// Translator keeps the pointer state of one gesture area. It is not safe
// for concurrent use.
type Translator struct {
	// Slop is the distance a pointer travels before a press becomes a pan.
	Slop float32
	// LongPressDelay is how long a pointer stays within the slop before
	// the press becomes a long-press.
	LongPressDelay time.Duration
	// WheelIdle closes a wheel session after this long without scrolling.
	WheelIdle     time.Duration
	WheelScale    float64
	WheelRotation float64

	mode    mode
	tracks  []*track
	last    f32.Point
	dist    float32
	angle   float64
	wheelAt time.Duration
	wheel   jot.GestureKind
}

// New returns a Translator using the default thresholds.
func New() *Translator {
	return &Translator{
		Slop:           DefaultSlop,
		LongPressDelay: DefaultLongPressDelay,
		WheelIdle:      DefaultWheelIdle,
		WheelScale:     DefaultWheelScale,
		WheelRotation:  DefaultWheelRotation,
	}
}

// Feed translates ev and hands the resulting gestures to c. It returns
// the first error reported by the container.
func (t *Translator) Feed(c *jot.Container, ev pointer.Event) error {
	for _, g := range t.Translate(ev) {
		if err := c.HandleGesture(g); err != nil {
			return err
		}
	}
	return nil
}

// Translate returns the gesture events produced by ev, in order.
func (t *Translator) Translate(ev pointer.Event) []jot.GestureEvent {
	var out []jot.GestureEvent
	if t.mode == modeWheel && (ev.Type != pointer.Scroll || ev.Time-t.wheelAt > t.WheelIdle) {
		out = t.endWheel(out)
	}

	switch ev.Type {
	case pointer.Press:
		out = t.press(out, ev)
	case pointer.Drag, pointer.Move:
		out = t.drag(out, ev)
	case pointer.Release:
		out = t.release(out, ev)
	case pointer.Cancel:
		out = t.cancel(out)
	case pointer.Scroll:
		out = t.scroll(out, ev)
	}
	return out
}

// Tick reports a long-press once the held pointer has waited long enough.
// Hosts call it from their frame loop since a still pointer sends no events.
func (t *Translator) Tick(now time.Duration) []jot.GestureEvent {
	var out []jot.GestureEvent
	if t.mode == modeWheel && now-t.wheelAt > t.WheelIdle {
		return t.endWheel(out)
	}
	if t.mode == modePending && now-t.tracks[0].at >= t.LongPressDelay {
		t.mode = modeLongPress
		out = append(out, event(jot.GestureLongPress, jot.PhaseBegan, t.tracks[0].start))
	}
	return out
}

func (t *Translator) press(out []jot.GestureEvent, ev pointer.Event) []jot.GestureEvent {
	if t.find(ev.PointerID) != nil {
		return out
	}
	tr := &track{id: ev.PointerID, start: ev.Position, pos: ev.Position, at: ev.Time}

	switch t.mode {
	case modeNone:
		t.tracks = []*track{tr}
		t.mode = modePending
	case modePending, modePan, modeLongPress:
		if ev.Source != pointer.Touch {
			return out
		}
		switch t.mode {
		case modePan:
			out = append(out, event(jot.GesturePan, jot.PhaseEnded, t.tracks[0].pos))
		case modeLongPress:
			out = append(out, event(jot.GestureLongPress, jot.PhaseEnded, t.tracks[0].pos))
		}
		t.tracks = append(t.tracks[:1], tr)
		t.mode = modeTwoFinger
		mid, dist, angle := t.span()
		t.dist, t.angle = dist, angle
		out = append(out,
			event(jot.GesturePinch, jot.PhaseBegan, mid),
			event(jot.GestureRotate, jot.PhaseBegan, mid),
		)
	}
	return out
}

func (t *Translator) drag(out []jot.GestureEvent, ev pointer.Event) []jot.GestureEvent {
	tr := t.find(ev.PointerID)
	if tr == nil {
		return out
	}
	prev := tr.pos
	tr.pos = ev.Position

	switch t.mode {
	case modePending:
		if d := tr.pos.Sub(tr.start); d.X*d.X+d.Y*d.Y <= t.Slop*t.Slop {
			if ev.Time-tr.at >= t.LongPressDelay {
				t.mode = modeLongPress
				out = append(out, event(jot.GestureLongPress, jot.PhaseBegan, tr.start))
			}
			return out
		}
		if ev.Time-tr.at >= t.LongPressDelay {
			t.mode = modeLongPress
			out = append(out, event(jot.GestureLongPress, jot.PhaseBegan, tr.start))
			return append(out, translated(jot.GestureLongPress, tr.pos, tr.pos.Sub(tr.start)))
		}
		t.mode = modePan
		out = append(out, event(jot.GesturePan, jot.PhaseBegan, tr.start))
		return append(out, translated(jot.GesturePan, tr.pos, tr.pos.Sub(tr.start)))
	case modePan:
		return append(out, translated(jot.GesturePan, tr.pos, tr.pos.Sub(prev)))
	case modeLongPress:
		return append(out, translated(jot.GestureLongPress, tr.pos, tr.pos.Sub(prev)))
	case modeTwoFinger:
		mid, dist, angle := t.span()
		if t.dist > 0 && dist > 0 {
			pinch := event(jot.GesturePinch, jot.PhaseChanged, mid)
			pinch.Scale = float64(dist / t.dist)
			out = append(out, pinch)
		}
		rot := event(jot.GestureRotate, jot.PhaseChanged, mid)
		rot.Rotation = wrapAngle(angle - t.angle)
		out = append(out, rot)
		t.dist, t.angle = dist, angle
	}
	return out
}

func (t *Translator) release(out []jot.GestureEvent, ev pointer.Event) []jot.GestureEvent {
	tr := t.find(ev.PointerID)
	if tr == nil {
		return out
	}
	tr.pos = ev.Position

	switch t.mode {
	case modePending:
		if ev.Time-tr.at >= t.LongPressDelay {
			out = append(out,
				event(jot.GestureLongPress, jot.PhaseBegan, tr.start),
				event(jot.GestureLongPress, jot.PhaseEnded, tr.pos),
			)
		} else {
			out = append(out, event(jot.GestureTap, jot.PhaseEnded, tr.pos))
		}
	case modePan:
		out = append(out, event(jot.GesturePan, jot.PhaseEnded, tr.pos))
	case modeLongPress:
		out = append(out, event(jot.GestureLongPress, jot.PhaseEnded, tr.pos))
	case modeTwoFinger:
		mid, _, _ := t.span()
		out = append(out,
			event(jot.GesturePinch, jot.PhaseEnded, mid),
			event(jot.GestureRotate, jot.PhaseEnded, mid),
		)
		t.remove(tr.id)
		t.mode = modeDrained
		return out
	}
	t.remove(tr.id)
	if len(t.tracks) == 0 {
		t.mode = modeNone
	}
	return out
}

func (t *Translator) cancel(out []jot.GestureEvent) []jot.GestureEvent {
	var p f32.Point
	if len(t.tracks) > 0 {
		p = t.tracks[0].pos
	}
	switch t.mode {
	case modePan:
		out = append(out, event(jot.GesturePan, jot.PhaseCancelled, p))
	case modeLongPress:
		out = append(out, event(jot.GestureLongPress, jot.PhaseCancelled, p))
	case modeTwoFinger:
		out = append(out,
			event(jot.GesturePinch, jot.PhaseCancelled, p),
			event(jot.GestureRotate, jot.PhaseCancelled, p),
		)
	}
	t.reset()
	return out
}

func (t *Translator) scroll(out []jot.GestureEvent, ev pointer.Event) []jot.GestureEvent {
	var kind jot.GestureKind
	switch {
	case ev.Modifiers.Contain(key.ModCtrl):
		kind = jot.GesturePinch
	case ev.Modifiers.Contain(key.ModShift):
		kind = jot.GestureRotate
	default:
		return out
	}
	if t.mode == modeWheel && t.wheel != kind {
		out = t.endWheel(out)
	}
	if t.mode != modeNone && t.mode != modeWheel {
		return out
	}
	if t.mode == modeNone {
		t.mode = modeWheel
		t.wheel = kind
		out = append(out, event(kind, jot.PhaseBegan, ev.Position))
	}
	t.wheelAt = ev.Time
	t.last = ev.Position

	// Scrolling up (negative Y) zooms in and rotates clockwise.
	amount := float64(ev.Scroll.Y)
	if amount == 0 {
		amount = float64(ev.Scroll.X)
	}
	g := event(kind, jot.PhaseChanged, ev.Position)
	if kind == jot.GesturePinch {
		g.Scale = math.Exp(-amount * t.WheelScale)
	} else {
		g.Rotation = -amount * t.WheelRotation
	}
	return append(out, g)
}

func (t *Translator) endWheel(out []jot.GestureEvent) []jot.GestureEvent {
	out = append(out, event(t.wheel, jot.PhaseEnded, t.last))
	t.mode = modeNone
	return out
}

// span returns the midpoint, distance and angle of the first two pointers.
func (t *Translator) span() (f32.Point, float32, float64) {
	a, b := t.tracks[0].pos, t.tracks[1].pos
	d := b.Sub(a)
	dist := float32(math.Hypot(float64(d.X), float64(d.Y)))
	return a.Add(b).Mul(0.5), dist, math.Atan2(float64(d.Y), float64(d.X))
}

func (t *Translator) find(id pointer.ID) *track {
	for _, tr := range t.tracks {
		if tr.id == id {
			return tr
		}
	}
	return nil
}

func (t *Translator) remove(id pointer.ID) {
	for i, tr := range t.tracks {
		if tr.id == id {
			t.tracks = append(t.tracks[:i], t.tracks[i+1:]...)
			return
		}
	}
}

func (t *Translator) reset() {
	t.mode = modeNone
	t.tracks = nil
}

func event(kind jot.GestureKind, phase jot.Phase, p f32.Point) jot.GestureEvent {
	return jot.GestureEvent{Kind: kind, Phase: phase, Point: point(p)}
}

func translated(kind jot.GestureKind, p, delta f32.Point) jot.GestureEvent {
	ev := event(kind, jot.PhaseChanged, p)
	ev.Translation = point(delta)
	return ev
}

func point(p f32.Point) jot.Point {
	return jot.Pt(float64(p.X), float64(p.Y))
}

// wrapAngle reduces a to (-π, π].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

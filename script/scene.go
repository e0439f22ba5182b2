package script

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/stevestencil/jot"
	"github.com/stevestencil/jot/utils"
)

// Scene is a script bound to a populated container.
type Scene struct {
	Container *jot.Container

	script *Script
	names  map[string]*jot.Element
	log    *slog.Logger
}

// Build creates a container from opts and adds the declared elements.
// A canvas declared by the script replaces opts.CanvasSize.
func (s *Script) Build(opts jot.Options) (*Scene, error) {
	if s.Canvas.Width > 0 && s.Canvas.Height > 0 {
		opts.CanvasSize = jot.Size{W: s.Canvas.Width, H: s.Canvas.Height}
	}
	c, err := jot.NewContainer(opts)
	if err != nil {
		return nil, err
	}
	sc := &Scene{
		Container: c,
		script:    s,
		names:     make(map[string]*jot.Element),
		log:       c.Options().Logger,
	}
	for i, decl := range s.Elements {
		e, err := sc.add(decl)
		if err != nil {
			return nil, fmt.Errorf("element %d (%s): %w", i, decl.Name, err)
		}
		if decl.Name != "" {
			sc.names[decl.Name] = e
		}
	}
	return sc, nil
}

func (sc *Scene) add(decl Element) (*jot.Element, error) {
	c := sc.Container
	content := jot.Content{Blend: decl.Blend, Composite: decl.Op}

	switch decl.Kind {
	case "image":
		img, err := sc.loadImage(decl.Source)
		if err != nil {
			return nil, err
		}
		content.Image = img
	case "text":
		style := c.Options().TextStyle
		if decl.Color != "" {
			col, err := utils.HexToRGBA(decl.Color)
			if err != nil {
				return nil, err
			}
			style.Color = col
		}
		if decl.FontSize > 0 {
			style.FontSize = decl.FontSize
		}
		if decl.Shadow > 0 {
			style.Shadow = decl.Shadow
		}
		content.Text = decl.Text
		content.Style = style
	}

	e, err := c.Add(content, parseKind(decl.Kind))
	if err != nil {
		return nil, err
	}
	t := e.Transform()
	if decl.At != nil {
		t.TranslationX, t.TranslationY = decl.At[0], decl.At[1]
	}
	if decl.Scale > 0 {
		t.Scale = decl.Scale
	}
	t.Rotation = decl.Degrees * math.Pi / 180
	if err := e.SetTransform(t); err != nil {
		return nil, err
	}
	return e, nil
}

// loadImage opens a local file, relative to the script, or downloads a URL.
func (sc *Scene) loadImage(src string) (image.Image, error) {
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(src)
		if err != nil {
			return nil, err
		}
		defer func() {
			f.Close()
			os.Remove(f.Name())
		}()
		img, err := imaging.Decode(f, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("could not decode %s: %w", src, err)
		}
		return img, nil
	}
	if !filepath.IsAbs(src) && sc.script.dir != "" {
		src = filepath.Join(sc.script.dir, src)
	}
	return jot.DecodeImage(src)
}

// Element returns the live element declared under name.
func (sc *Scene) Element(name string) (*jot.Element, error) {
	e, ok := sc.names[name]
	if !ok || e.ZOrder() < 0 {
		return nil, fmt.Errorf("%w: %q", jot.ErrElementNotFound, name)
	}
	return e, nil
}

// Play replays the script steps in order and stops at the first error.
func (sc *Scene) Play(ctx context.Context) error {
	for i, st := range sc.script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sc.step(st); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
		sc.log.Debug("step played", slog.Int("step", i), slog.String("action", st.Action))
	}
	return nil
}

// Render draws the scene onto base, or onto the script background when
// base is nil.
func (sc *Scene) Render(base image.Image) (*image.NRGBA, error) {
	if base != nil {
		return sc.Container.RenderOnto(base)
	}
	col, ok := sc.script.Background()
	size := sc.Container.Options().CanvasSize
	if !ok || !size.Valid() {
		return sc.Container.Render()
	}
	w, h := int(math.Ceil(size.W)), int(math.Ceil(size.H))
	return sc.Container.RenderOnto(imaging.New(w, h, col))
}

func (sc *Scene) point(st Step) (jot.Point, error) {
	if st.Target != "" {
		e, err := sc.Element(st.Target)
		if err != nil {
			return jot.Point{}, err
		}
		return e.Transform().Center(), nil
	}
	return jot.Pt(st.At[0], st.At[1]), nil
}

func (sc *Scene) step(st Step) error {
	c := sc.Container
	switch st.Action {
	case ActionTap:
		p, err := sc.point(st)
		if err != nil {
			return err
		}
		return c.HandleGesture(jot.GestureEvent{Kind: jot.GestureTap, Phase: jot.PhaseEnded, Point: p})
	case ActionLongPress, ActionPan, ActionPinch, ActionRotate, ActionPinchRotate:
		p, err := sc.point(st)
		if err != nil {
			return err
		}
		return sc.gesture(st, p)
	case ActionUndo:
		return c.Undo()
	case ActionCancel:
		c.CancelEditing()
		return nil
	case ActionClear:
		c.ClearAll()
		return nil
	case ActionClearKind:
		c.ClearKind(parseKind(st.Kind))
		return nil
	}

	e, err := sc.Element(st.Target)
	if err != nil {
		return err
	}
	switch st.Action {
	case ActionSelect:
		return e.SetSelected(true)
	case ActionEdit:
		if err := e.EnableEditing(true); err != nil {
			return err
		}
		if st.Text != "" {
			return e.SetText(st.Text)
		}
		return nil
	case ActionStyle:
		style := e.Content().Style
		if st.Color != "" {
			col, err := utils.HexToRGBA(st.Color)
			if err != nil {
				return err
			}
			style.Color = col
		}
		if st.FontSize > 0 {
			style.FontSize = st.FontSize
		}
		return e.SetStyle(style)
	case ActionRemove:
		return c.Remove(e.ID())
	case ActionFront:
		return c.BringToFront(e.ID())
	case ActionBack:
		return c.SendToBack(e.ID())
	}
	return fmt.Errorf("%w: action %q", jot.ErrUnsupportedOperation, st.Action)
}

// gesture plays a complete session: every recognizer begins, delivers
// one change, then ends.
func (sc *Scene) gesture(st Step, p jot.Point) error {
	var events []jot.GestureEvent
	add := func(kind jot.GestureKind) {
		ev := jot.GestureEvent{Kind: kind, Point: p}
		switch kind {
		case jot.GesturePan, jot.GestureLongPress:
			if st.By != nil {
				ev.Translation = jot.Pt(st.By[0], st.By[1])
			}
		case jot.GesturePinch:
			ev.Scale = st.Factor
		case jot.GestureRotate:
			ev.Rotation = st.Degrees * math.Pi / 180
		}
		events = append(events, ev)
	}
	switch st.Action {
	case ActionLongPress:
		add(jot.GestureLongPress)
	case ActionPan:
		add(jot.GesturePan)
	case ActionPinch:
		add(jot.GesturePinch)
	case ActionRotate:
		add(jot.GestureRotate)
	case ActionPinchRotate:
		add(jot.GesturePinch)
		add(jot.GestureRotate)
	}

	for _, phase := range []jot.Phase{jot.PhaseBegan, jot.PhaseChanged, jot.PhaseEnded} {
		for _, ev := range events {
			ev.Phase = phase
			if phase == jot.PhaseChanged && ev.Kind == jot.GestureLongPress && st.By == nil {
				continue
			}
			if err := sc.Container.HandleGesture(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Background returns the canvas background declared by the script, if any.
func (s *Script) Background() (color.NRGBA, bool) {
	if s.Canvas.Background == "" {
		return color.NRGBA{}, false
	}
	c, err := utils.HexToRGBA(s.Canvas.Background)
	return c, err == nil
}

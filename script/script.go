// Package script describes a jot scene in TOML: the canvas, the elements
// placed on it and a list of steps (gestures and edits) replayed against
// the container holding them.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/stevestencil/jot"
	"github.com/stevestencil/jot/imop"
	"github.com/stevestencil/jot/utils"
)

// Script is a parsed scene file.
type Script struct {
	Canvas   Canvas    `toml:"canvas"`
	Elements []Element `toml:"elements"`
	Steps    []Step    `toml:"steps"`

	// dir resolves relative image paths.
	dir string
}

type Canvas struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	Background string  `toml:"background"`
}

// Element declares one element; Source (a file path or URL) is used by
// images, Text and the style fields by text.
type Element struct {
	Name     string  `toml:"name"`
	Kind     string  `toml:"kind"`
	Source   string  `toml:"source"`
	Text     string  `toml:"text"`
	Color    string  `toml:"color"`
	FontSize float64 `toml:"font_size"`
	Shadow   int     `toml:"shadow"`
	Blend    string  `toml:"blend"`
	Op       string  `toml:"composite"`

	At      []float64 `toml:"at"`
	Scale   float64   `toml:"scale"`
	Degrees float64   `toml:"degrees"`
}

// Step is one action replayed against the scene. Gestures start on the
// center of Target, or on At when no target is given.
type Step struct {
	Action  string    `toml:"action"`
	Target  string    `toml:"target"`
	At      []float64 `toml:"at"`
	By      []float64 `toml:"by"`
	Factor  float64   `toml:"factor"`
	Degrees float64   `toml:"degrees"`
	Kind    string    `toml:"kind"`
	Text    string    `toml:"text"`

	// Color and FontSize restyle a text element in a style step; zero
	// values keep the current style.
	Color    string  `toml:"color"`
	FontSize float64 `toml:"font_size"`
}

const (
	ActionTap         = "tap"
	ActionLongPress   = "long_press"
	ActionPan         = "pan"
	ActionPinch       = "pinch"
	ActionRotate      = "rotate"
	ActionPinchRotate = "pinch_rotate"
	ActionUndo        = "undo"
	ActionCancel      = "cancel"
	ActionSelect      = "select"
	ActionEdit        = "edit"
	ActionRemove      = "remove"
	ActionClear       = "clear"
	ActionClearKind   = "clear_kind"
	ActionFront       = "front"
	ActionBack        = "back"
	ActionStyle       = "style"
)

var actions = []string{
	ActionTap, ActionLongPress, ActionPan, ActionPinch, ActionRotate, ActionPinchRotate,
	ActionUndo, ActionCancel, ActionSelect, ActionEdit, ActionRemove, ActionClear,
	ActionClearKind, ActionFront, ActionBack, ActionStyle,
}

// Parse decodes a scene; relative image paths are resolved against dir.
func Parse(data string, dir string) (*Script, error) {
	s := &Script{dir: dir}
	metadata, err := toml.Decode(data, s)
	if err != nil {
		return nil, err
	}
	if keys := metadata.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return nil, fmt.Errorf("unknown scene keys: %s", strings.Join(names, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads and parses the scene file at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(string(data), filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks the declarations without touching the file system.
func (s *Script) Validate() error {
	if s.Canvas.Width < 0 || s.Canvas.Height < 0 {
		return fmt.Errorf("%w: canvas %vx%v", jot.ErrInvalidOptions, s.Canvas.Width, s.Canvas.Height)
	}
	if s.Canvas.Background != "" {
		if _, err := utils.HexToRGBA(s.Canvas.Background); err != nil {
			return fmt.Errorf("canvas background: %w", err)
		}
	}

	names := make(map[string]struct{}, len(s.Elements))
	for i, e := range s.Elements {
		if e.Name != "" {
			if _, ok := names[e.Name]; ok {
				return fmt.Errorf("element %d: duplicate name %q", i, e.Name)
			}
			names[e.Name] = struct{}{}
		}
		if err := e.validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	for i, st := range s.Steps {
		if err := st.validate(names); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
	}
	return nil
}

func (e Element) validate() error {
	switch e.Kind {
	case "image":
		if e.Source == "" {
			return fmt.Errorf("image without source")
		}
	case "text":
		if e.Text == "" {
			return fmt.Errorf("text element without text")
		}
		if e.Color != "" {
			if _, err := utils.HexToRGBA(e.Color); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: element kind %q", jot.ErrUnsupportedOperation, e.Kind)
	}
	if e.At != nil && len(e.At) != 2 {
		return fmt.Errorf("at needs two coordinates, got %d", len(e.At))
	}
	if e.Blend != "" && !imop.IsBlendMode(e.Blend) {
		return fmt.Errorf("%w: blend mode %q", jot.ErrUnsupportedOperation, e.Blend)
	}
	if e.Op != "" && !imop.IsCompositeOp(e.Op) {
		return fmt.Errorf("%w: composite operation %q", jot.ErrUnsupportedOperation, e.Op)
	}
	if e.Scale < 0 {
		return fmt.Errorf("%w: %v", jot.ErrInvalidScaleFactor, e.Scale)
	}
	return nil
}

func (st Step) validate(names map[string]struct{}) error {
	if !utils.Contains(actions, st.Action) {
		return fmt.Errorf("unknown action")
	}
	if st.Target != "" {
		if _, ok := names[st.Target]; !ok {
			return fmt.Errorf("%w: %q", jot.ErrElementNotFound, st.Target)
		}
	}
	if st.At != nil && len(st.At) != 2 {
		return fmt.Errorf("at needs two coordinates, got %d", len(st.At))
	}
	if st.By != nil && len(st.By) != 2 {
		return fmt.Errorf("by needs two coordinates, got %d", len(st.By))
	}

	switch st.Action {
	case ActionTap, ActionLongPress, ActionPan, ActionPinch, ActionRotate, ActionPinchRotate:
		if st.Target == "" && st.At == nil {
			return fmt.Errorf("gesture needs a target or a point")
		}
	case ActionSelect, ActionEdit, ActionRemove, ActionFront, ActionBack:
		if st.Target == "" {
			return fmt.Errorf("missing target")
		}
	case ActionStyle:
		if st.Target == "" {
			return fmt.Errorf("missing target")
		}
		if st.Color != "" {
			if _, err := utils.HexToRGBA(st.Color); err != nil {
				return err
			}
		}
		if st.FontSize < 0 {
			return fmt.Errorf("%w: font size %v", jot.ErrInvalidSize, st.FontSize)
		}
	case ActionClearKind:
		if st.Kind != "image" && st.Kind != "text" {
			return fmt.Errorf("%w: element kind %q", jot.ErrUnsupportedOperation, st.Kind)
		}
	}
	if (st.Action == ActionPinch || st.Action == ActionPinchRotate) && st.Factor <= 0 {
		return fmt.Errorf("%w: %v", jot.ErrInvalidScaleFactor, st.Factor)
	}
	return nil
}

func parseKind(s string) jot.Kind {
	if s == "text" {
		return jot.KindText
	}
	return jot.KindImage
}

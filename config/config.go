// Package config loads the jot settings from TOML. The embedded defaults
// are always loaded first; a user file only overrides the keys it sets.
package config

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/stevestencil/jot"
	"github.com/stevestencil/jot/utils"
)

//go:embed default/config.toml
var configFS embed.FS

type Config struct {
	LogLevel string         `toml:"log_level"`
	Scale    ScaleConfig    `toml:"scale"`
	Canvas   CanvasConfig   `toml:"canvas"`
	Gestures GesturesConfig `toml:"gestures"`
	Text     TextConfig     `toml:"text"`
}

type ScaleConfig struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

type CanvasConfig struct {
	Width            float64 `toml:"width"`
	Height           float64 `toml:"height"`
	DiscardOffCanvas bool    `toml:"discard_off_canvas"`
}

type GesturesConfig struct {
	PinchAboutFocus bool `toml:"pinch_about_focus"`
}

type TextConfig struct {
	Color    string  `toml:"color"`
	FontSize float64 `toml:"font_size"`
	Shadow   int     `toml:"shadow"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	data, err := configFS.ReadFile("default/config.toml")
	if err != nil {
		return nil, fmt.Errorf("no embedded default config found: %w", err)
	}
	c := &Config{}
	if err := c.Load(string(data)); err != nil {
		return nil, fmt.Errorf("failed to load embedded default config: %w", err)
	}
	return c, nil
}

// Load decodes data over the current values and validates the result.
func (c *Config) Load(data string) error {
	metadata, err := toml.Decode(data, c)
	if err != nil {
		return err
	}
	if keys := metadata.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(names, ", "))
	}
	return c.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if err := (jot.ScaleLimits{Min: c.Scale.Min, Max: c.Scale.Max}).Validate(); err != nil {
		return err
	}
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		return fmt.Errorf("%w: canvas %vx%v", jot.ErrInvalidOptions, c.Canvas.Width, c.Canvas.Height)
	}
	if c.Text.FontSize <= 0 {
		return fmt.Errorf("%w: font size %v", jot.ErrInvalidOptions, c.Text.FontSize)
	}
	if c.Text.Shadow < 0 {
		return fmt.Errorf("%w: shadow radius %d", jot.ErrInvalidOptions, c.Text.Shadow)
	}
	if _, err := utils.HexToRGBA(c.Text.Color); err != nil {
		return fmt.Errorf("text color: %w", err)
	}
	return nil
}

// Level returns the slog level named by log_level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Options converts the configuration into container options.
func (c *Config) Options(logger *slog.Logger) (jot.Options, error) {
	if err := c.Validate(); err != nil {
		return jot.Options{}, err
	}
	col, _ := utils.HexToRGBA(c.Text.Color)
	opts := jot.Options{
		ScaleLimits:      jot.ScaleLimits{Min: c.Scale.Min, Max: c.Scale.Max},
		DiscardOffCanvas: c.Canvas.DiscardOffCanvas,
		PinchAboutFocus:  c.Gestures.PinchAboutFocus,
		TextStyle: jot.TextStyle{
			Color:    col,
			FontSize: c.Text.FontSize,
			Shadow:   c.Text.Shadow,
		},
		Logger: logger,
	}
	if c.Canvas.Width > 0 && c.Canvas.Height > 0 {
		opts.CanvasSize = jot.Size{W: c.Canvas.Width, H: c.Canvas.Height}
	}
	return opts, nil
}

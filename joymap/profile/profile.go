// Package profile reads YAML profiles and turns them into dispatch tables.
package profile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valerio/go-joymap/joymap/input/event"
)

var ErrInvalidProfile = errors.New("invalid profile")

const (
	configType = "yaml"

	configKeyStartupMode = "startup_mode"
	configKeyModes       = "modes"
	configKeyBindings    = "bindings"

	DefaultMode = "Default"
)

// Container kinds
const (
	Basic       = "basic"
	Tempo       = "tempo"
	Chain       = "chain"
	SmartToggle = "smart_toggle"
	DoubleTap   = "double_tap"
)

// Action types
const (
	Remap         = "remap"
	ResponseCurve = "response_curve"
	SplitAxis     = "split_axis"
	SwitchMode    = "switch_mode"
	PreviousMode  = "previous_mode"
	CycleModes    = "cycle_modes"
	Pause         = "pause"
	Resume        = "resume"
	TogglePause   = "toggle_pause"
	Tap           = "tap"
)

// DefaultTempoDuration separates short from long presses when a tempo binding sets no duration
const DefaultTempoDuration = 500 * time.Millisecond

type Profile struct {
	StartupMode string    `mapstructure:"startup_mode"`
	Modes       []Mode    `mapstructure:"modes"`
	Bindings    []Binding `mapstructure:"bindings"`
}

type Mode struct {
	Name    string `mapstructure:"name"`
	Inherit string `mapstructure:"inherit"`
}

// Binding attaches a container to one physical input in one mode
type Binding struct {
	Mode      string        `mapstructure:"mode"`
	Device    string        `mapstructure:"device"`
	Input     string        `mapstructure:"input"`
	ID        int           `mapstructure:"id"`
	Container string        `mapstructure:"container"`
	Duration  time.Duration `mapstructure:"duration"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Always    bool          `mapstructure:"always"`

	// Action is shorthand for a single set holding a single action
	Action *Action    `mapstructure:"action"`
	Sets   [][]Action `mapstructure:"sets"`

	VirtualButton *VirtualButton `mapstructure:"virtual_button"`
}

// VirtualButton turns an axis range or a set of hat directions into a button
type VirtualButton struct {
	Lower      float64  `mapstructure:"lower"`
	Upper      float64  `mapstructure:"upper"`
	Directions []string `mapstructure:"directions"`
}

type Action struct {
	Type string `mapstructure:"type"`

	// remap, tap
	To     string        `mapstructure:"to"`
	Device int           `mapstructure:"device"`
	ID     int           `mapstructure:"id"`
	Delay  time.Duration `mapstructure:"delay"`

	// response_curve
	Points   []Point   `mapstructure:"points"`
	Deadzone []float64 `mapstructure:"deadzone"`

	// split_axis
	Center  float64  `mapstructure:"center"`
	Outputs []Target `mapstructure:"outputs"`

	// switch_mode, cycle_modes
	Mode  string   `mapstructure:"mode"`
	Modes []string `mapstructure:"modes"`
}

type Point struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

type Target struct {
	Device int `mapstructure:"device"`
	ID     int `mapstructure:"id"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetDefault(configKeyStartupMode, DefaultMode)
	v.SetDefault(configKeyModes, []map[string]interface{}{})
	v.SetDefault(configKeyBindings, []map[string]interface{}{})
	return v
}

// Load reads and validates the profile at path
func Load(path string) (*Profile, error) {
	slog.Debug("Loading profile", "path", path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("profile not found: %w", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	return decode(v)
}

// Parse reads and validates a profile from r
func Parse(r io.Reader) (*Profile, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Profile, error) {
	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	slog.Info("Loaded profile", "modes", len(p.Modes), "bindings", len(p.Bindings), "startup", p.StartupMode)
	return &p, nil
}

// normalize fills in the implicit parts: the default mode, binding modes and
// single-action shorthand
func (p *Profile) normalize() {
	if len(p.Modes) == 0 {
		p.Modes = []Mode{{Name: p.StartupMode}}
	}
	for i := range p.Bindings {
		b := &p.Bindings[i]
		if b.Mode == "" {
			b.Mode = p.StartupMode
		}
		if b.Container == "" {
			b.Container = Basic
		}
		b.Container = strings.ToLower(b.Container)
		if b.Action != nil && len(b.Sets) == 0 {
			b.Sets = [][]Action{{*b.Action}}
			b.Action = nil
		}
	}
}

// ModeMap returns the modes as name to parent
func (p *Profile) ModeMap() map[string]string {
	out := make(map[string]string, len(p.Modes))
	for _, m := range p.Modes {
		out[m.Name] = m.Inherit
	}
	return out
}

func (b Binding) InputType() (event.InputType, error) {
	return event.ParseInputType(b.Input)
}

// Key identifies the physical input of the binding
func (b Binding) Key() (event.Key, error) {
	t, err := b.InputType()
	if err != nil {
		return event.Key{}, err
	}
	return event.Key{Device: b.Device, Type: t, ID: b.ID}, nil
}

// HandlerType is the input type the binding's containers observe, a
// virtual button turns axes and hats into buttons
func (b Binding) HandlerType() (event.InputType, error) {
	t, err := b.InputType()
	if err != nil {
		return t, err
	}
	if b.VirtualButton != nil {
		return event.JoystickButton, nil
	}
	return t, nil
}

// AlwaysExecute reports whether the binding must keep running while paused.
// Bindings able to resume processing always do.
func (b Binding) AlwaysExecute() bool {
	if b.Always {
		return true
	}
	for _, set := range b.Sets {
		for _, a := range set {
			if a.Type == Resume || a.Type == TogglePause {
				return true
			}
		}
	}
	return false
}

package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// Script is a recorded sequence of input events
type Script struct {
	// Start is the timestamp given to the first event, the zero value means now
	Start  time.Time    `yaml:"start"`
	Events []ScriptStep `yaml:"events"`
}

// ScriptStep is one event, At is relative to the start of the script
type ScriptStep struct {
	At      time.Duration `yaml:"at"`
	Device  string        `yaml:"device"`
	Input   string        `yaml:"input"`
	ID      int           `yaml:"id"`
	Pressed bool          `yaml:"pressed"`
	Axis    float64       `yaml:"axis"`
	Hat     string        `yaml:"hat"`
}

// ParseScript decodes a YAML replay script
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return &s, nil
}

func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScript(f)
}

// Event converts the step, start is the script start time
func (s ScriptStep) Event(start time.Time) (event.Event, error) {
	t, err := event.ParseInputType(s.Input)
	if err != nil {
		return event.Event{}, err
	}
	evt := event.Event{
		Type:      t,
		Device:    s.Device,
		ID:        s.ID,
		IsPressed: s.Pressed,
		Axis:      s.Axis,
		Time:      start.Add(s.At),
	}
	if t == event.JoystickHat {
		if evt.Hat, err = event.ParseDirection(s.Hat); err != nil {
			return event.Event{}, err
		}
	}
	return evt, nil
}

// Replay plays a script back as an input source
type Replay struct {
	script *Script
	// Realtime waits between events as recorded instead of emitting them at once
	Realtime bool
}

func NewReplay(script *Script, realtime bool) *Replay {
	return &Replay{script: script, Realtime: realtime}
}

func (r *Replay) Name() string {
	return "replay"
}

func (r *Replay) Run(ctx context.Context, out chan<- event.Event) error {
	start := r.script.Start
	if start.IsZero() {
		start = time.Now()
	}
	begin := time.Now()

	for i, step := range r.script.Events {
		evt, err := step.Event(start)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}

		if r.Realtime {
			if wait := step.At - time.Since(begin); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}

		if !send(ctx, out, evt) {
			return ctx.Err()
		}
	}
	return nil
}

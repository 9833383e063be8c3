// Package terminal is a tcell frontend: the keyboard acts as an input source
// and the screen monitors the virtual devices, the active mode and the log.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-joymap/joymap/device"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/logging"
	"github.com/valerio/go-joymap/joymap/timing"
)

// ErrQuit is returned by Run when the user asks to leave
var ErrQuit = errors.New("terminal: quit requested")

// Key expiry timeout - slightly longer than typical key repeat interval.
// Terminals only report presses, a key counts as released once it stops repeating.
const keyTimeout = 100 * time.Millisecond

const (
	DefaultDevice = "term"
	minTermWidth  = 40
	minTermHeight = 10
)

// Status reports what the monitor shows next to the devices
type Status interface {
	Current() string
	IsPaused() bool
}

type Config struct {
	// Device names the keyboard in emitted events, defaults to DefaultDevice
	Device string
	// Output, Status and Logs are optional, missing panels are left out
	Output  *device.Memory
	Status  Status
	Logs    *logging.Buffer
	Refresh time.Duration
}

// Frontend implements source.Source on top of a terminal screen.
// Key ids are the rune for printable keys and the tcell key code otherwise.
type Frontend struct {
	screen   tcell.Screen
	cfg      Config
	logLevel slog.Level

	keyStates map[int]time.Time // last time each key was seen
}

// New wraps screen, nil creates a screen for the controlling terminal
func New(screen tcell.Screen, cfg Config) (*Frontend, error) {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("failed to initialize terminal: %v", err)
		}
	}
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	return &Frontend{
		screen:    screen,
		cfg:       cfg,
		logLevel:  slog.LevelInfo,
		keyStates: make(map[int]time.Time),
	}, nil
}

func (f *Frontend) Name() string {
	return "terminal"
}

func (f *Frontend) Run(ctx context.Context, out chan<- event.Event) error {
	if err := f.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	defer func() {
		slog.Info("Cleaning up terminal frontend")
		f.screen.Fini()
	}()

	f.screen.SetStyle(tcell.StyleDefault)
	f.screen.Clear()
	slog.Info("Terminal frontend initialized")

	ticker := timing.NewTicker(f.cfg.Refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := time.Now()
		for f.screen.HasPendingEvent() {
			switch ev := f.screen.PollEvent().(type) {
			case *tcell.EventKey:
				evt, ok, err := f.processKey(ev, now)
				if err != nil {
					return err
				}
				if ok && !f.send(ctx, out, evt) {
					return ctx.Err()
				}
			case *tcell.EventResize:
				f.screen.Sync()
			}
		}

		for _, evt := range f.expire(now) {
			if !f.send(ctx, out, evt) {
				return ctx.Err()
			}
		}

		f.render()
		f.screen.Show()
	}
}

func (f *Frontend) send(ctx context.Context, out chan<- event.Event, evt event.Event) bool {
	select {
	case out <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

// processKey returns a press event for keys that were not already held
func (f *Frontend) processKey(ev *tcell.EventKey, now time.Time) (event.Event, bool, error) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		return event.Event{}, false, ErrQuit
	case tcell.KeyF9:
		f.changeLogLevel(-1)
		return event.Event{}, false, nil
	case tcell.KeyF10:
		f.changeLogLevel(1)
		return event.Event{}, false, nil
	}

	id := int(ev.Key())
	if ev.Key() == tcell.KeyRune {
		id = int(ev.Rune())
	}

	_, held := f.keyStates[id]
	f.keyStates[id] = now
	if held {
		return event.Event{}, false, nil
	}

	slog.Debug("Key press", "key", ev.Name(), "id", id)
	return event.Event{Type: event.Keyboard, Device: f.cfg.Device, ID: id, IsPressed: true, Time: now}, true, nil
}

// expire releases the keys that stopped repeating, in id order
func (f *Frontend) expire(now time.Time) []event.Event {
	var ids []int
	for id, last := range f.keyStates {
		if now.Sub(last) >= keyTimeout {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	events := make([]event.Event, 0, len(ids))
	for _, id := range ids {
		delete(f.keyStates, id)
		slog.Debug("Key release", "id", id)
		events = append(events, event.Event{Type: event.Keyboard, Device: f.cfg.Device, ID: id, Time: now})
	}
	return events
}

// changeLogLevel moves the log panel filter, direction 1 shows more
func (f *Frontend) changeLogLevel(direction int) {
	old := f.logLevel
	switch direction {
	case -1:
		switch f.logLevel {
		case slog.LevelDebug:
			f.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			f.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			f.logLevel = slog.LevelError
		}
	case 1:
		switch f.logLevel {
		case slog.LevelError:
			f.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			f.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			f.logLevel = slog.LevelDebug
		}
	}
	if old != f.logLevel {
		slog.Info("Log filter changed", "from", old, "to", f.logLevel)
	}
}

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	deviceStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	pausedStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	logStyles   = map[slog.Level]tcell.Style{
		slog.LevelDebug: tcell.StyleDefault.Foreground(tcell.ColorGray),
		slog.LevelInfo:  tcell.StyleDefault.Foreground(tcell.ColorWhite),
		slog.LevelWarn:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		slog.LevelError: tcell.StyleDefault.Foreground(tcell.ColorRed),
	}
)

func (f *Frontend) render() {
	w, h := f.screen.Size()
	f.screen.Clear()
	if w < minTermWidth || h < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		f.drawText(0, h/2, w, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	f.drawText(1, 0, w-1, " joymap ", titleStyle)
	if f.cfg.Status != nil {
		status := fmt.Sprintf(" mode: %s ", f.cfg.Status.Current())
		f.drawText(10, 0, w-10, status, titleStyle)
		if f.cfg.Status.IsPaused() {
			f.drawText(10+len(status), 0, w-10-len(status), " PAUSED ", pausedStyle)
		}
	}

	y := 1
	if f.cfg.Output != nil {
		for _, line := range deviceLines(f.cfg.Output.Snapshot()) {
			if y >= h/2 {
				break
			}
			f.drawText(1, y, w-1, line, deviceStyle)
			y++
		}
	}

	for x := 0; x < w; x++ {
		f.screen.SetContent(x, y, '─', nil, borderStyle)
	}
	f.drawText(2, y, w-2, fmt.Sprintf(" Logs [%s] (F9/F10 filter) ", f.logLevel), titleStyle)
	y++

	if f.cfg.Logs != nil {
		for _, entry := range f.cfg.Logs.Recent(0) {
			if y >= h-1 {
				break
			}
			if entry.Level < f.logLevel {
				continue
			}
			style, ok := logStyles[entry.Level]
			if !ok {
				style = borderStyle
			}
			f.drawText(1, y, w-1, entry.String(), style)
			y++
		}
	}

	f.drawText(0, h-1, w, " ESC/Ctrl-C=quit | keys are sent as input ", borderStyle)
}

func (f *Frontend) drawText(x, y, width int, s string, style tcell.Style) {
	i := 0
	for _, ch := range s {
		if i >= width {
			return
		}
		f.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

// deviceLines formats one line per virtual device, in id order
func deviceLines(snapshot map[int]device.State) []string {
	ids := make([]int, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		s := snapshot[id]
		var sb strings.Builder
		fmt.Fprintf(&sb, "vjoy %d  buttons:", id)
		for _, b := range s.PressedButtons() {
			fmt.Fprintf(&sb, " %d", b)
		}

		sb.WriteString("  axes:")
		for _, a := range sortedKeys(s.Axes) {
			fmt.Fprintf(&sb, " %d=%+.2f", a, s.Axes[a])
		}

		sb.WriteString("  hats:")
		for _, hat := range sortedKeys(s.Hats) {
			fmt.Fprintf(&sb, " %d=%s", hat, s.Hats[hat])
		}
		lines = append(lines, sb.String())
	}
	return lines
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-joymap/joymap"
	"github.com/valerio/go-joymap/joymap/action"
	"github.com/valerio/go-joymap/joymap/device"
	"github.com/valerio/go-joymap/joymap/input/event"
	"github.com/valerio/go-joymap/joymap/logging"
	"github.com/valerio/go-joymap/joymap/profile"
	"github.com/valerio/go-joymap/joymap/source"
	"github.com/valerio/go-joymap/joymap/terminal"
)

var logFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
		Value: "info",
	},
	cli.StringFlag{
		Name:  "log-format",
		Usage: "text, json or console",
		Value: logging.FormatText,
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "joymap"
	app.Description = "Remaps joystick and keyboard input onto virtual joysticks"
	app.Usage = "joymap <command> [options]"
	app.Version = "1.0.0"
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "Run a profile against live input",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "profile, p",
					Usage: "Path to the YAML profile",
				},
				cli.StringSliceFlag{
					Name:  "source, s",
					Usage: "Input source as kind[:arg], kind is js, evdev, sdl, terminal or replay (repeatable)",
				},
				cli.StringFlag{
					Name:  "output, o",
					Usage: "Output device: memory or uinput",
					Value: "memory",
				},
				cli.BoolFlag{
					Name:  "watch",
					Usage: "Reload the profile when the file changes",
				},
				cli.BoolFlag{
					Name:  "grab",
					Usage: "Grab evdev sources so other applications stop seeing them",
				},
			}, logFlags...),
			Action: runProfile,
		},
		{
			Name:  "replay",
			Usage: "Play a recorded script through a profile and print the resulting output state",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "profile, p",
					Usage: "Path to the YAML profile",
				},
				cli.StringFlag{
					Name:  "script",
					Usage: "Path to the YAML replay script",
				},
				cli.BoolFlag{
					Name:  "realtime",
					Usage: "Wait between events as recorded",
				},
			}, logFlags...),
			Action: replayScript,
		},
		{
			Name:   "devices",
			Usage:  "List joystick and event devices",
			Flags:  logFlags,
			Action: listDevices,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running joymap", "error", err)
		os.Exit(1)
	}
}

func setupLogging(c *cli.Context) (func() error, error) {
	level, err := logging.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}
	logger, sync, err := logging.New(logging.Options{Level: level, Format: c.String("log-format")})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return sync, nil
}

func loadProfile(c *cli.Context) (*profile.Profile, string, error) {
	path := c.String("profile")
	if path == "" {
		if c.NArg() == 0 {
			cli.ShowCommandHelp(c, c.Command.Name)
			return nil, "", errors.New("no profile path provided")
		}
		path = c.Args().Get(0)
	}
	p, err := profile.Load(path)
	return p, path, err
}

func runProfile(c *cli.Context) error {
	sync, err := setupLogging(c)
	if err != nil {
		return err
	}
	defer sync()

	p, path, err := loadProfile(c)
	if err != nil {
		return err
	}

	specs := c.StringSlice("source")
	if len(specs) == 0 {
		specs = []string{"terminal"}
	}

	// the memory device backs the terminal monitor even when writing to uinput
	memory := device.NewMemory()
	var output action.Device = memory
	switch c.String("output") {
	case "memory":
	case "uinput":
		u, err := device.NewUinput("joymap")
		if err != nil {
			return err
		}
		defer u.Close()
		output = device.Tee{u, memory}
	default:
		return fmt.Errorf("unknown output %q", c.String("output"))
	}

	engine, err := joymap.New(p, output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	var sources []source.Source
	for _, spec := range specs {
		kind, arg, _ := strings.Cut(spec, ":")
		switch kind {
		case "js":
			if arg == "" {
				arg = "/dev/input/js0"
			}
			sources = append(sources, source.NewJoystick(arg))
		case "evdev":
			if arg == "" {
				return errors.New("evdev source needs a device path, e.g. evdev:/dev/input/event3")
			}
			ev := source.NewEvdev(arg)
			ev.Grab = c.Bool("grab")
			sources = append(sources, ev)
		case "sdl":
			sources = append(sources, source.NewSDL())
		case "replay":
			script, err := source.LoadScript(arg)
			if err != nil {
				return err
			}
			sources = append(sources, source.NewReplay(script, true))
		case "terminal":
			// the screen is ours, logs go to the monitor instead
			logs := logging.NewBuffer(200)
			slog.SetDefault(slog.New(logging.NewBufferHandler(logs, slog.LevelDebug)))
			term, err := terminal.New(nil, terminal.Config{Output: memory, Status: engine.Modes(), Logs: logs})
			if err != nil {
				return err
			}
			sources = append(sources, term)
		default:
			return fmt.Errorf("unknown source %q", spec)
		}
	}

	if c.Bool("watch") {
		go func() {
			err := profile.Watch(ctx, path, func(p *profile.Profile) {
				if err := engine.Reload(p); err != nil {
					slog.Warn("Keeping previous profile", "error", err)
				}
			})
			if err != nil {
				slog.Warn("Profile watcher stopped", "error", err)
			}
		}()
	}

	slog.Info("Running profile", "path", path, "sources", len(sources), "output", c.String("output"))
	err = engine.Run(ctx, sources...)
	if errors.Is(err, terminal.ErrQuit) {
		return nil
	}
	return err
}

func replayScript(c *cli.Context) error {
	sync, err := setupLogging(c)
	if err != nil {
		return err
	}
	defer sync()

	p, _, err := loadProfile(c)
	if err != nil {
		return err
	}
	script, err := source.LoadScript(c.String("script"))
	if err != nil {
		return err
	}

	memory := device.NewMemory()
	engine, err := joymap.New(p, memory)
	if err != nil {
		return err
	}

	// drive the engine directly so the state can be printed before held buttons are released
	events := make(chan event.Event)
	replay := source.NewReplay(script, c.Bool("realtime"))
	errc := make(chan error, 1)
	go func() {
		errc <- replay.Run(context.Background(), events)
		close(events)
	}()
	for evt := range events {
		if err := engine.Dispatch(evt); err != nil {
			slog.Warn("Failed to handle event", "input", evt.Key(), "error", err)
		}
	}
	if err := <-errc; err != nil {
		return err
	}

	stats := engine.Stats()
	fmt.Printf("mode: %s paused: %v events: %d failed: %d\n", stats.Mode, stats.Paused, stats.Processed, stats.Failed)
	printState(memory.Snapshot())
	return nil
}

func printState(snapshot map[int]device.State) {
	ids := make([]int, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s := snapshot[id]
		fmt.Printf("vjoy %d buttons=%v axes=%v hats=%v\n", id, s.PressedButtons(), s.Axes, s.Hats)
	}
}

func listDevices(c *cli.Context) error {
	sync, err := setupLogging(c)
	if err != nil {
		return err
	}
	defer sync()

	for _, list := range []struct {
		kind string
		fn   func() ([]source.Device, error)
	}{
		{"js", source.ListJoysticks},
		{"evdev", source.ListEvdev},
	} {
		devices, err := list.fn()
		if err != nil {
			slog.Warn("Failed to list devices", "kind", list.kind, "error", err)
			continue
		}
		for _, d := range devices {
			fmt.Printf("%s:%s\t%s\n", list.kind, d.Path, d.Name)
		}
	}
	return nil
}

// Package source reads physical input devices and emits joymap events.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/valerio/go-joymap/joymap/input/event"
)

var ErrUnavailable = errors.New("source: not available on this platform")

// Source delivers input events until its context is done or the device fails
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- event.Event) error
}

// Merge runs every source and fans their events into one channel.
// The channel is closed once all sources have returned. The first source
// error is reported on the returned error channel and cancels the others.
func Merge(ctx context.Context, sources ...Source) (<-chan event.Event, <-chan error) {
	out := make(chan event.Event, 64)
	errc := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			slog.Info("Starting input source", "source", src.Name())
			err := src.Run(ctx, out)
			if err != nil && !errors.Is(err, context.Canceled) {
				select {
				case errc <- fmt.Errorf("%s: %w", src.Name(), err):
				default:
				}
				cancel()
				return
			}
			slog.Debug("Input source finished", "source", src.Name())
		}(src)
	}

	go func() {
		wg.Wait()
		cancel()
		close(out)
		close(errc)
	}()
	return out, errc
}

// send delivers evt unless ctx is done first
func send(ctx context.Context, out chan<- event.Event, evt event.Event) bool {
	select {
	case out <- evt:
		return true
	case <-ctx.Done():
		return false
	}
}

// normalize maps a raw reading in [min, max] onto [-1, 1]
func normalize(v, min, max int32) float64 {
	if max <= min {
		return 0
	}
	f := 2*float64(v-min)/float64(max-min) - 1
	switch {
	case f < -1:
		return -1
	case f > 1:
		return 1
	}
	return f
}

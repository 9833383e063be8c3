//go:build !sdl2

package source

import (
	"context"
	"fmt"

	"github.com/valerio/go-joymap/joymap/input/event"
)

// SDL stub for when SDL2 is not available
type SDL struct{}

func NewSDL() *SDL {
	return &SDL{}
}

func (s *SDL) Name() string {
	return "sdl"
}

// Run returns an error indicating SDL2 is not available
func (s *SDL) Run(ctx context.Context, out chan<- event.Event) error {
	return fmt.Errorf("%w: SDL2 source needs a build with -tags sdl2", ErrUnavailable)
}

// Package logging builds the slog handlers used by joymap.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Options struct {
	Level  slog.Level
	Format string
	// Writer defaults to stderr
	Writer io.Writer
}

// New returns a logger for opts and a function flushing any buffered output
func New(opts Options) (*slog.Logger, func() error, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level})
		return slog.New(h), func() error { return nil }, nil
	case FormatJSON:
		return newZap(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), w, opts.Level)
	case FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return newZap(zapcore.NewConsoleEncoder(cfg), w, opts.Level)
	}
	return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
}

func newZap(enc zapcore.Encoder, w io.Writer, level slog.Level) (*slog.Logger, func() error, error) {
	ws := zapcore.Lock(zapcore.AddSync(w))
	core := zapcore.NewCore(enc, ws, zap.NewAtomicLevelAt(zapLevel(level)))
	h := zapslog.NewHandler(core, zapslog.WithName("joymap"))
	return slog.New(h), core.Sync, nil
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

// ParseLevel accepts debug, info, warn and error
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

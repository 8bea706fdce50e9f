package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log output formats
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Logger wraps zerolog.Logger with the fields pull runs are tagged with
type Logger struct {
	zerolog.Logger
}

// LoggerOptions configures NewLogger. A nil Output writes to stderr.
type LoggerOptions struct {
	Level   string
	Format  string
	Output  io.Writer
	Verbose bool // forces debug
}

// NewLogger builds a timestamped logger. Pretty output goes through
// zerolog's console writer; anything else is emitted as JSON lines.
func NewLogger(opts LoggerOptions) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Format == FormatPretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return &Logger{Logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// ParseLevel maps a level name ("debug", "warn", "disabled", ...) to a
// zerolog level. Empty or unknown names give info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (l *Logger) with(key, value string) *Logger {
	return &Logger{Logger: l.Logger.With().Str(key, value).Logger()}
}

// WithComponent tags entries with the emitting package
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithSource tags entries with the provider and URL of a pull
func (l *Logger) WithSource(provider, url string) *Logger {
	return l.with("provider", provider).with("url", url)
}

// WithOrigin tags entries with a local origin path
func (l *Logger) WithOrigin(path string) *Logger {
	return l.with("origin", path)
}

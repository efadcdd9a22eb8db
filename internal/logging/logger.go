// Package logging provides the zerolog-backed implementation of the opaque
// logging capability the pipeline core attaches to a Context. The core
// itself never imports this package; consumers wire it in at construction
// time via pipeline.NewContext.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

// Logger adapts a zerolog.Logger to pipeline.Logger.
type Logger struct {
	base zerolog.Logger
}

var _ pipeline.Logger = (*Logger)(nil)

// Options configures a new Logger.
type Options struct {
	Writer io.Writer
	Level  string
	JSON   bool
}

// New builds a Logger from Options. An empty Level defaults to "info"; an
// unset Writer defaults to os.Stderr.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	if !opts.JSON {
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: false}
	}

	base := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &Logger{base: base}, nil
}

func (l *Logger) Debug(msg string, fields ...any) { l.event(l.base.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...any)  { l.event(l.base.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...any)  { l.event(l.base.Warn(), msg, fields) }

func (l *Logger) Error(err error, msg string, fields ...any) {
	ev := l.base.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.event(ev, msg, fields)
}

// With returns a derived Logger carrying the supplied key/value pairs on
// every subsequent entry. fields must alternate key (string), value.
func (l *Logger) With(fields ...any) pipeline.Logger {
	ctx := l.base.With()
	ctx = applyFields(ctx, fields)
	return &Logger{base: ctx.Logger()}
}

func (l *Logger) event(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}

func applyFields(ctx zerolog.Context, fields []any) zerolog.Context {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return ctx
}

// Package logging builds the zerolog-backed logger.Logger used by the SDK.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/linkforty/go-linkforty/pkg/config"
	"github.com/linkforty/go-linkforty/pkg/interfaces/logger"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Zerolog adapts a zerolog.Logger to logger.Logger.
type Zerolog struct {
	zl zerolog.Logger
}

var _ logger.Logger = (*Zerolog)(nil)

// Wrap adapts an existing zerolog logger.
func Wrap(zl zerolog.Logger) *Zerolog {
	return &Zerolog{zl: zl}
}

// New builds a logger from cfg: console or JSON on stderr, plus a rotating
// file when cfg.File is set.
func New(cfg config.LoggingConfig) (*Zerolog, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit console destination.
func NewWithWriter(cfg config.LoggingConfig, console io.Writer) (*Zerolog, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	writers := []io.Writer{consoleWriter(cfg.Format, console)}
	if cfg.File != "" {
		fw, err := fileWriter(cfg)
		if err != nil {
			return nil, err
		}
		writers = append(writers, fw)
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("sdk", "linkforty").
		Logger()
	return Wrap(zl), nil
}

// ParseLevel maps the configured level name to a zerolog level.
// An empty name means info.
func ParseLevel(name string) (zerolog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logging: invalid level %q: %w", name, err)
	}
	return level, nil
}

func consoleWriter(format string, out io.Writer) io.Writer {
	if format == "json" {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
}

func fileWriter(cfg config.LoggingConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
	if cfg.Format == "json" {
		return rotating, nil
	}
	return zerolog.ConsoleWriter{Out: rotating, NoColor: true, TimeFormat: "2006-01-02T15:04:05"}, nil
}

// Zerolog exposes the underlying logger for callers that need it directly.
func (l *Zerolog) Zerolog() zerolog.Logger { return l.zl }

func (l *Zerolog) With(fields ...logger.Field) logger.Logger {
	if len(fields) == 0 {
		return l
	}
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Zerolog{zl: ctx.Logger()}
}

func (l *Zerolog) Debug(msg string, fields ...logger.Field) { emit(l.zl.Debug(), msg, fields) }
func (l *Zerolog) Info(msg string, fields ...logger.Field)  { emit(l.zl.Info(), msg, fields) }
func (l *Zerolog) Warn(msg string, fields ...logger.Field)  { emit(l.zl.Warn(), msg, fields) }
func (l *Zerolog) Error(msg string, fields ...logger.Field) { emit(l.zl.Error(), msg, fields) }

func emit(evt *zerolog.Event, msg string, fields []logger.Field) {
	if evt == nil {
		return
	}
	for _, f := range fields {
		switch v := f.Value.(type) {
		case error:
			evt = evt.AnErr(f.Key, v)
		case string:
			evt = evt.Str(f.Key, v)
		case int:
			evt = evt.Int(f.Key, v)
		case bool:
			evt = evt.Bool(f.Key, v)
		default:
			evt = evt.Interface(f.Key, v)
		}
	}
	evt.Msg(msg)
}

// Package logging builds the process slog.Logger from LogConfig: JSON or
// text output, a mutable level for hot reload, and optional size-based file
// rotation.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/datapipeline/pipelinemanager/server/internal/config"
)

// Logger bundles the slog.Logger with the handles needed after startup.
type Logger struct {
	*slog.Logger

	// Level can be changed at runtime; the handler reads it on every record.
	Level *slog.LevelVar

	out io.Writer
}

// New builds a Logger. When cfg.File is empty, records go to stdout.
func New(cfg config.LogConfig) *Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		}
	}
	return newWithWriter(cfg, out)
}

func newWithWriter(cfg config.LogConfig, out io.Writer) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(cfg.SlogLevel())

	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	return &Logger{Logger: slog.New(h), Level: lv, out: out}
}

// Apply updates the runtime-adjustable settings from a reloaded config.
// Output format and destination need a restart.
func (l *Logger) Apply(cfg config.LogConfig) {
	if lvl := cfg.SlogLevel(); lvl != l.Level.Level() {
		l.Info("log level changed", "from", l.Level.Level().String(), "to", lvl.String())
		l.Level.Set(lvl)
	}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if lj, ok := l.out.(*lumberjack.Logger); ok {
		return lj.Close()
	}
	return nil
}

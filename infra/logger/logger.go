package logger

import (
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	corelogger "github.com/kilianp07/autosampler/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// Options configures the process-wide output of New.
type Options struct {
	// Level is the minimum level; empty means LOG_LEVEL, then debug.
	Level string
	// Console switches stdout to the human readable writer.
	Console bool
	// File additionally writes JSON lines to a rotated file when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu         sync.RWMutex
	configured bool
	output     io.Writer
	level      string
)

// Configure makes every later New write according to o. The returned closer
// releases the log file, if any.
func Configure(o Options) io.Closer {
	var stdout io.Writer = os.Stdout
	if o.Console {
		stdout = consoleWriter(os.Stdout)
	}
	var closer io.Closer = nopCloser{}
	w := stdout
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
		w = io.MultiWriter(stdout, lj)
		closer = lj
	}
	lvl := o.Level
	if lvl == "" {
		lvl = os.Getenv("LOG_LEVEL")
	}

	mu.Lock()
	configured, output, level = true, w, lvl
	mu.Unlock()
	return closer
}

// Reset restores the environment driven defaults.
func Reset() {
	mu.Lock()
	configured, output, level = false, nil, ""
	mu.Unlock()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a Logger for the given component. Until Configure is called the
// output format follows the APP_ENV variable and the minimum level follows
// LOG_LEVEL.
func New(component string) Logger {
	mu.RLock()
	ok, w, lvl := configured, output, level
	mu.RUnlock()
	if ok {
		return NewWithWriter(w, component, lvl)
	}
	return NewZerologLogger(component)
}

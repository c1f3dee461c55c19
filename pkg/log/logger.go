// Package log wraps go-logging with a shared leveled backend. All named
// loggers write through the same sink and level.
package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

type Level logging.Level

// Verbosity levels accepted by SetLevel, least severe first.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levelNames = map[string]Level{
	"debug":   Debug,
	"info":    Info,
	"notice":  Notice,
	"warning": Warning,
	"error":   Error,
}

var backendLevels = map[Level]logging.Level{
	Debug:   logging.DEBUG,
	Info:    logging.INFO,
	Notice:  logging.NOTICE,
	Warning: logging.WARNING,
	Error:   logging.ERROR,
}

var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	backend logging.LeveledBackend
	current = Notice
)

// Logger is the subset of the go-logging API used by the renderer.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns the logger of the named module.
func New(module string) Logger {
	return logging.MustGetLogger(module)
}

// SetSink redirects every logger to sink. The current level is kept.
func SetSink(sink io.Writer) {
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	backend.SetLevel(backendLevels[current], "")
	logging.SetBackend(backend)
}

// SetLevel sets the verbosity of every logger.
func SetLevel(level Level) {
	if _, ok := backendLevels[level]; !ok {
		return
	}
	current = level
	backend.SetLevel(backendLevels[level], "")
}

// CurrentLevel returns the verbosity set by the last SetLevel call.
func CurrentLevel() Level {
	return current
}

// ParseLevel maps a config or CLI level name to a Level. The empty name
// selects Notice.
func ParseLevel(name string) (Level, bool) {
	if name == "" {
		return Notice, true
	}
	level, ok := levelNames[name]
	if !ok {
		return Notice, false
	}
	return level, true
}

func init() {
	SetSink(os.Stderr)
}

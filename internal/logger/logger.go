package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a zerolog logger tagged with the component that owns it.
type Logger struct {
	zerolog.Logger
	component string
}

var levels = map[string]zerolog.Level{
	"debug": zerolog.DebugLevel,
	"info":  zerolog.InfoLevel,
	"warn":  zerolog.WarnLevel,
	"error": zerolog.ErrorLevel,
}

// New creates a console logger for a component. The level comes from LOG_LEVEL,
// falling back to debug outside production.
func New(component string) *Logger {
	return NewWithWriter(component, os.Stdout, levelFromEnv())
}

// NewWithWriter creates a logger writing to w at the given level.
func NewWithWriter(component string, w io.Writer, level zerolog.Level) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    w != io.Writer(os.Stdout) || os.Getenv("NO_COLOR") != "",
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("[%s] %v", component, i)
		},
	}
	l := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{Logger: l, component: component}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop(), component: "nop"}
}

// Component returns a child logger for a sub-component, e.g. "Pool/wanted".
func (l *Logger) Component(name string) *Logger {
	child := l.Logger.With().Str("component", name).Logger()
	return &Logger{Logger: child, component: l.component + "/" + name}
}

func levelFromEnv() zerolog.Level {
	if lvl, ok := levels[strings.ToLower(os.Getenv("LOG_LEVEL"))]; ok {
		return lvl
	}
	if os.Getenv("APP_ENV") == "production" {
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

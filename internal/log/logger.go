package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger bound to one component. The component attribute
// is attached once, so every record carries it exactly once.
type Logger struct {
	*slog.Logger
	base      *slog.Logger // without the component attribute
	component string
}

type Config struct {
	Level     slog.Level
	Component string
	Handler   slog.Handler // defaults to a text handler on stdout
}

func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo, Component: ComponentApp}
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return bind(slog.New(handler), config.Component)
}

func bind(base *slog.Logger, component string) *Logger {
	if component == "" {
		return &Logger{Logger: base, base: base}
	}
	return &Logger{Logger: base.With(FieldComponent, component), base: base, component: component}
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewForComponent builds a stdout text logger at the given LOG_LEVEL.
func NewForComponent(component, level string) *Logger {
	return New(Config{Level: ParseLevel(level), Component: component})
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), base: l.base.With(args...), component: l.component}
}

// WithComponent derives a logger for another component from the same
// handler. The parent's component attribute is not inherited.
func (l *Logger) WithComponent(component string) *Logger {
	return bind(l.base, component)
}

// SetDefault installs the logger's handler, without its component, as the
// slog default.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.base)
}

func (l *Logger) Component() string {
	return l.component
}

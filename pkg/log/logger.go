package log

import (
	"fmt"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level int

// Log levels, least to most severe.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a
// Level. Matching is case-insensitive; "warning" is accepted for "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// Fields is an ordered-independent map of structured field values.
type Fields map[string]interface{}

// Entry is a single log record handed to formatters and outputs.
type Entry struct {
	Level     Level
	Message   string
	Fields    Fields
	Timestamp time.Time
	Error     error
}

// Logger is the logging interface consumed by pipeline components.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a Logger carrying the additional fields on every entry.
	With(fields ...Field) Logger
	// WithComponent tags entries with a component name.
	WithComponent(component string) Logger
	// WithError attaches err to the next entries' Error slot.
	WithError(err error) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// LoggerOption configures a BaseLogger at construction.
type LoggerOption func(*BaseLogger)

// BaseLogger implements Logger over a Formatter and one or more Outputs.
type BaseLogger struct {
	level     Level
	fields    Fields
	err       error
	formatter Formatter
	outputs   []Output
	nowFn     func() time.Time
}

// NewLogger creates a logger. Without options it logs at InfoLevel in text
// form to the console.
func NewLogger(options ...LoggerOption) Logger {
	logger := &BaseLogger{
		level:     InfoLevel,
		fields:    Fields{},
		formatter: &TextFormatter{},
		nowFn:     time.Now,
	}
	for _, option := range options {
		option(logger)
	}
	if len(logger.outputs) == 0 {
		logger.outputs = append(logger.outputs, NewConsoleOutput())
	}
	return logger
}

// WithLevel sets the minimum level emitted.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level = level }
}

// WithFormatter sets the entry formatter.
func WithFormatter(formatter Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = formatter }
}

// WithOutput adds an output destination.
func WithOutput(output Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, output) }
}

func (l *BaseLogger) clone() *BaseLogger {
	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &BaseLogger{
		level:     l.level,
		fields:    fields,
		err:       l.err,
		formatter: l.formatter,
		outputs:   l.outputs,
		nowFn:     l.nowFn,
	}
}

// With returns a copy of the logger carrying the additional fields.
func (l *BaseLogger) With(fields ...Field) Logger {
	next := l.clone()
	for _, f := range fields {
		next.fields[f.Key] = f.Value
	}
	return next
}

// WithComponent tags entries with a component name.
func (l *BaseLogger) WithComponent(component string) Logger {
	return l.With(Component(component))
}

// WithError returns a copy of the logger that attaches err to entries.
func (l *BaseLogger) WithError(err error) Logger {
	next := l.clone()
	next.err = err
	return next
}

// SetLevel sets the minimum emitted level.
func (l *BaseLogger) SetLevel(level Level) { l.level = level }

// GetLevel returns the minimum emitted level.
func (l *BaseLogger) GetLevel() Level { return l.level }

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.emit(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.emit(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fields) }

func (l *BaseLogger) emit(level Level, msg string, extra []Field) {
	if level < l.level {
		return
	}

	fields := make(Fields, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	entryErr := l.err
	for _, f := range extra {
		if f.Key == errorFieldKey {
			if err, ok := f.Value.(error); ok {
				entryErr = err
				continue
			}
		}
		fields[f.Key] = f.Value
	}

	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    fields,
		Timestamp: l.nowFn(),
		Error:     entryErr,
	}

	formatted, err := l.formatter.Format(entry)
	if err != nil {
		return
	}
	for _, out := range l.outputs {
		_ = out.Write(entry, formatted)
	}
}

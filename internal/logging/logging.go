// Package logging provides the leveled, field-carrying logger shared by the
// session, the backends and the host.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log record.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name. Unknown names yield LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevel reports whether s names a level.
func ValidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// sink is the shared destination of a logger and all loggers derived from it.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	off    bool
	prefix string
	now    func() time.Time
}

// Logger writes leveled records with key/value fields. Loggers derived with
// With share level and output with their parent.
type Logger struct {
	sink   *sink
	fields []field
}

type field struct {
	key   string
	value any
}

// Options configures New.
type Options struct {
	// Level is the minimum level written.
	Level Level

	// Output defaults to os.Stderr.
	Output io.Writer

	// Prefix is written before every message.
	Prefix string
}

// New creates a logger.
func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return &Logger{sink: &sink{out: out, level: opts.Level, prefix: opts.Prefix, now: time.Now}}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sink: &sink{out: io.Discard, off: true, now: time.Now}}
}

// With returns a logger that adds key=value to every record.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	fields := make([]field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	return &Logger{sink: l.sink, fields: append(fields, field{key: key, value: value})}
}

// Component is shorthand for With("component", name).
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// SetLevel changes the minimum level for this logger and its relatives.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Enabled reports whether records at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return !l.sink.off && level >= l.sink.level
}

// Debug logs at LevelDebug. kv holds alternating keys and values.
func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, kv ...any) { l.log(LevelInfo, msg, kv) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, kv ...any) { l.log(LevelWarn, msg, kv) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, kv ...any) { l.log(LevelError, msg, kv) }

func (l *Logger) log(level Level, msg string, kv []any) {
	if !l.Enabled(level) {
		return
	}

	var b strings.Builder
	b.WriteString(l.sink.now().Format("2006-01-02T15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if l.sink.prefix != "" {
		b.WriteString(l.sink.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	fields := append([]field(nil), l.fields...)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		var value any = "MISSING"
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		fields = append(fields, field{key: key, value: value})
	}
	// Context fields keep their order; call-site fields sort after them.
	tail := fields[len(l.fields):]
	sort.SliceStable(tail, func(i, j int) bool { return tail[i].key < tail[j].key })
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, b.String())
}

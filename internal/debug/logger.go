// Package debug provides component-scoped logging for the synthesis engine.
package debug

import (
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

// Component identifies the subsystem a log entry originates from.
type Component int

const (
	ComponentSynth Component = iota
	ComponentLA32
	ComponentEnvelope
	ComponentVoice
	ComponentMemory
	ComponentMIDI
	ComponentReverb
	ComponentAnalog
	ComponentResample
	ComponentDisplay
	componentCount
)

func (c Component) String() string {
	switch c {
	case ComponentSynth:
		return "synth"
	case ComponentLA32:
		return "la32"
	case ComponentEnvelope:
		return "envelope"
	case ComponentVoice:
		return "voice"
	case ComponentMemory:
		return "memory"
	case ComponentMIDI:
		return "midi"
	case ComponentReverb:
		return "reverb"
	case ComponentAnalog:
		return "analog"
	case ComponentResample:
		return "resample"
	case ComponentDisplay:
		return "display"
	default:
		return "unknown"
	}
}

// LogLevel mirrors charmbracelet/log's level ordering so callers never
// need to import that package directly.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) toCharm() charmlog.Level {
	switch l {
	case LogLevelDebug:
		return charmlog.DebugLevel
	case LogLevelWarn:
		return charmlog.WarnLevel
	case LogLevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Entry is one ring-buffer slot. Kept separate from the charmbracelet/log
// sink so the report callback (spec §6) and Display LCD ring can consult
// recent entries without re-parsing formatted log lines.
type Entry struct {
	Component Component
	Level     LogLevel
	Message   string
}

// Logger gates per-component logging and mirrors accepted entries into a
// small ring buffer, while the actual formatted sink is charmbracelet/log.
type Logger struct {
	sink *charmlog.Logger

	mu               sync.RWMutex
	componentEnabled [componentCount]bool
	minLevel         LogLevel

	entriesMu  sync.Mutex
	entries    []Entry
	writeIndex int
	entryCount int
	maxEntries int
}

// New creates a Logger with all components enabled at Info level, writing
// structured output to stderr via charmbracelet/log.
func New(maxEntries int) *Logger {
	if maxEntries < 64 {
		maxEntries = 64
	}
	sink := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.InfoLevel,
	})
	l := &Logger{
		sink:       sink,
		minLevel:   LogLevelInfo,
		entries:    make([]Entry, maxEntries),
		maxEntries: maxEntries,
	}
	for c := Component(0); c < componentCount; c++ {
		l.componentEnabled[c] = true
	}
	return l
}

// Discard returns a Logger whose sink drops everything; useful for tests
// and for render() hot paths where the caller never wants log I/O.
func Discard() *Logger {
	l := New(64)
	l.sink.SetOutput(discardWriter{})
	return l
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// SetComponentEnabled toggles logging for one component.
func (l *Logger) SetComponentEnabled(c Component, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.componentEnabled[c] = enabled
}

// IsComponentEnabled reports whether a component currently logs.
func (l *Logger) IsComponentEnabled(c Component) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.componentEnabled[c]
}

// SetMinLevel sets the minimum level that reaches the sink.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
	l.sink.SetLevel(level.toCharm())
}

// Logf logs a formatted message for a component at a level, gated by both
// the component flag and the minimum level.
func (l *Logger) Logf(c Component, level LogLevel, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.RLock()
	enabled := l.componentEnabled[c] && level >= l.minLevel
	l.mu.RUnlock()
	if !enabled {
		return
	}

	msg := format
	if len(args) > 0 {
		msg = sprintf(format, args...)
	}
	l.record(Entry{Component: c, Level: level, Message: msg})

	entry := l.sink.With("component", c.String())
	switch level {
	case LogLevelDebug:
		entry.Debug(msg)
	case LogLevelWarn:
		entry.Warn(msg)
	case LogLevelError:
		entry.Error(msg)
	default:
		entry.Info(msg)
	}
}

func (l *Logger) record(e Entry) {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()
	l.entries[l.writeIndex] = e
	l.writeIndex = (l.writeIndex + 1) % l.maxEntries
	if l.entryCount < l.maxEntries {
		l.entryCount++
	}
}

// Recent returns up to n most recent entries, newest last.
func (l *Logger) Recent(n int) []Entry {
	l.entriesMu.Lock()
	defer l.entriesMu.Unlock()
	if n > l.entryCount {
		n = l.entryCount
	}
	out := make([]Entry, n)
	for i := 0; i < n; i++ {
		idx := (l.writeIndex - n + i + l.maxEntries) % l.maxEntries
		out[i] = l.entries[idx]
	}
	return out
}

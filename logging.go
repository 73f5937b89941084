package h2keepalive

import (
	"fmt"
	"os"
	"time"
)

// Level is the severity of a logged Event, mirroring the small fixed set
// this component actually needs (no Fatal/Panic — this package never exits
// the process).
type Level int32

const (
	LevelTrace Level = iota
	LevelDebug
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(l))
	}
}

// Event is a single structured log record. Fields is deliberately a loose
// map rather than a typed builder: the set of fields this component emits is
// small and fixed (§6), so the generality of a fluent field-by-field builder
// (as provided by heavier structured-logging frameworks) buys nothing here.
type Event struct {
	Level     Level
	Message   string
	Fields    map[string]any
	Err       error
	Timestamp time.Time
}

// Logger is the pluggable structured-logging sink. Calls come from the
// dispatcher goroutine, except the construction record New emits on its
// caller's goroutine before Run; a zero value must not panic.
type Logger interface {
	Log(e Event)
	Enabled(l Level) bool
}

// noopLogger discards everything; it's the default when no Logger option is
// supplied, keeping the hot idle-probe path allocation-free.
type noopLogger struct{}

func (noopLogger) Log(Event)          {}
func (noopLogger) Enabled(Level) bool { return false }

// NewNoOpLogger returns a Logger that discards everything.
func NewNoOpLogger() Logger { return noopLogger{} }

// WriterLogger is a minimal dependency-free Logger writing one line per
// event to an *os.File (os.Stderr by default). It exists for CLI/example
// use and tests; production embedders are expected to supply their own
// Logger adapting whatever structured-logging stack they already use.
type WriterLogger struct {
	Out      *os.File
	MinLevel Level
}

// NewWriterLogger creates a WriterLogger writing to os.Stderr at minLevel.
func NewWriterLogger(minLevel Level) *WriterLogger {
	return &WriterLogger{Out: os.Stderr, MinLevel: minLevel}
}

func (l *WriterLogger) Enabled(lvl Level) bool {
	return lvl >= l.MinLevel
}

func (l *WriterLogger) Log(e Event) {
	if !l.Enabled(e.Level) {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	fmt.Fprintf(l.Out, "%s %-5s %s", e.Timestamp.Format("15:04:05.000"), e.Level, e.Message)
	for k, v := range e.Fields {
		fmt.Fprintf(l.Out, " %s=%v", k, v)
	}
	if e.Err != nil {
		fmt.Fprintf(l.Out, " err=%v", e.Err)
	}
	fmt.Fprintln(l.Out)
}

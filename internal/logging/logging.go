// Package logging writes structured JSON log lines, one object per line.
package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Logger emits JSON log entries with "ts", "level" and "msg" fields plus caller fields.
// It is safe for concurrent use.
type Logger struct {
	mu        *sync.Mutex
	w         io.Writer
	loc       *time.Location
	component string
}

// New returns a Logger writing to w with timestamps in loc.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{mu: &sync.Mutex{}, w: w, loc: loc}
}

// Default returns a Logger writing to stdout in UTC.
func Default() *Logger {
	return New(os.Stdout, time.UTC)
}

// Location loads the named time zone, falling back to UTC.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// With returns a Logger that tags every entry with the given component.
func (l *Logger) With(component string) *Logger {
	c := *l
	c.component = component
	return &c
}

// Loc returns the time zone used for timestamps.
func (l *Logger) Loc() *time.Location {
	return l.loc
}

// Info logs an informational entry.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log("info", msg, fields)
}

// Error logs an error entry; err may be nil.
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Log("error", msg, fields)
}

// Log writes a single entry at the given level.
func (l *Logger) Log(level, msg string, fields map[string]any) {
	entry := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg
	if l.component != "" {
		entry["component"] = l.component
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(b)
}

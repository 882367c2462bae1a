// Package logging provides structured logging for the BizniWeb MCP server.
//
// The server speaks MCP over stdout, so every log line must go to another
// writer (stderr in production, a buffer in tests). The Logger interface is
// deliberately small: leveled methods with structured fields, plus With for
// request-scoped child loggers.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Logger is the minimal structured logging contract used across the server.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})

	// With returns a child logger whose output always carries the given fields.
	With(fields map[string]interface{}) Logger
}

// Level represents the logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// standardLogger writes structured log lines to a single writer.
// Safe for concurrent use.
type standardLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	json   bool
	fields map[string]interface{}
}

// NewJSONLogger creates a logger emitting one JSON object per line.
func NewJSONLogger(out io.Writer, level Level) Logger {
	return &standardLogger{mu: &sync.Mutex{}, out: out, level: level, json: true}
}

// NewTextLogger creates a logger emitting human-readable key=value lines.
func NewTextLogger(out io.Writer, level Level) Logger {
	return &standardLogger{mu: &sync.Mutex{}, out: out, level: level}
}

func (l *standardLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(DebugLevel, "DEBUG", msg, fields)
}

func (l *standardLogger) Info(msg string, fields map[string]interface{}) {
	l.log(InfoLevel, "INFO", msg, fields)
}

func (l *standardLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(WarnLevel, "WARN", msg, fields)
}

func (l *standardLogger) Error(msg string, fields map[string]interface{}) {
	l.log(ErrorLevel, "ERROR", msg, fields)
}

func (l *standardLogger) With(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &standardLogger{mu: l.mu, out: l.out, level: l.level, json: l.json, fields: merged}
}

func (l *standardLogger) log(level Level, name, msg string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		entry := make(map[string]interface{}, len(merged)+3)
		for k, v := range merged {
			entry[k] = sanitize(v)
		}
		entry["time"] = time.Now().UTC().Format(time.RFC3339)
		entry["level"] = name
		entry["msg"] = msg
		line, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, `{"level":"ERROR","msg":"log marshal failed","error":%q}`+"\n", err.Error())
			return
		}
		fmt.Fprintln(l.out, string(line))
		return
	}

	parts := []string{fmt.Sprintf("[%s]", name), msg}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
	}
	fmt.Fprintln(l.out, strings.Join(parts, " "))
}

// sanitize converts values json.Marshal cannot handle (errors, most notably)
// into strings.
func sanitize(v interface{}) interface{} {
	switch t := v.(type) {
	case error:
		return t.Error()
	default:
		return v
	}
}

// NoOpLogger discards everything. Useful as a default in tests.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
func (NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (NoOpLogger) With(fields map[string]interface{}) Logger       { return NoOpLogger{} }

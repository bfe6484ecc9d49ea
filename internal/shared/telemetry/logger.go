package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes one-line JSON log entries to a destination. It is configured
// once at process start and handed to handlers and workflows rather than
// looked up globally.
type Logger struct {
	mu  sync.Mutex
	out io.Writer
}

// New constructs a Logger writing to the given destination. A nil
// destination means the current os.Stdout, resolved at write time.
func New(out io.Writer) *Logger {
	return &Logger{out: out}
}

// Info writes an info-level log line with the given fields.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.write("info", msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func (l *Logger) Warn(msg string, fields map[string]any) {
	l.write("warn", msg, fields)
}

// Error writes an error-level log line with the given fields.
func (l *Logger) Error(msg string, fields map[string]any) {
	l.write("error", msg, fields)
}

func (l *Logger) write(level, msg string, fields map[string]any) {
	out := l.out
	if out == nil {
		out = os.Stdout
	}
	entry := make(map[string]any, len(fields)+3)
	entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level
	entry["msg"] = msg
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.mu.Lock()
		fmt.Fprintf(out, `{"ts":"%s","level":"error","msg":"logger marshal failed","err":%q}`+"\n", time.Now().UTC().Format(time.RFC3339), err.Error())
		l.mu.Unlock()
		return
	}
	l.mu.Lock()
	fmt.Fprintln(out, string(data))
	l.mu.Unlock()
}

var defaultLogger = New(nil)

// Default returns the process-wide logger used by middleware that has no
// injection point of its own.
func Default() *Logger { return defaultLogger }

// Info writes an info-level log line via the default logger.
func Info(msg string, fields map[string]any) {
	defaultLogger.Info(msg, fields)
}

// Error writes an error-level log line via the default logger.
func Error(msg string, fields map[string]any) {
	defaultLogger.Error(msg, fields)
}

package api

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// LogEntry represents a single activity log entry
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// LogBuffer keeps the most recent kiosk log lines for the activity page
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	cap     int
}

// NewLogBuffer creates a new log buffer with the given capacity
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = 500
	}
	return &LogBuffer{
		entries: make([]LogEntry, 0, capacity),
		cap:     capacity,
	}
}

// Add adds a log entry, dropping the oldest when full
func (lb *LogBuffer) Add(level, message string) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	}

	if len(lb.entries) >= lb.cap {
		copy(lb.entries, lb.entries[1:])
		lb.entries[len(lb.entries)-1] = entry
	} else {
		lb.entries = append(lb.entries, entry)
	}
}

// Entries returns all entries, optionally filtered by level
func (lb *LogBuffer) Entries(levels []string) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	if len(levels) == 0 {
		result := make([]LogEntry, len(lb.entries))
		copy(result, lb.entries)
		return result
	}

	levelSet := make(map[string]bool)
	for _, l := range levels {
		levelSet[strings.ToLower(l)] = true
	}

	result := make([]LogEntry, 0)
	for _, e := range lb.entries {
		if levelSet[e.Level] {
			result = append(result, e)
		}
	}
	return result
}

// Clear removes all entries
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = lb.entries[:0]
}

// logWriter feeds lines written through the log package into a LogBuffer
type logWriter struct {
	buf *LogBuffer
}

func (lw *logWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		level, msg := parseLogLine(line)
		if msg != "" {
			lw.buf.Add(level, msg)
		}
	}
	return len(p), nil
}

// parseLogLine strips the date/time prefix of the log package and infers a
// level. Explicit "WARN:" and "ERROR:" prefixes win over keyword guessing.
func parseLogLine(line string) (string, string) {
	msg := strings.TrimSpace(line)
	// "2006/01/02 15:04:05 "
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' {
		msg = msg[20:]
	}
	if msg == "" {
		return "", ""
	}

	switch {
	case strings.HasPrefix(msg, "ERROR: "):
		return "error", strings.TrimPrefix(msg, "ERROR: ")
	case strings.HasPrefix(msg, "WARN: "):
		return "warn", strings.TrimPrefix(msg, "WARN: ")
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "fail"):
		return "error", msg
	case strings.Contains(lower, "warn"):
		return "warn", msg
	}
	return "info", msg
}

// InstallLogCapture sends the log package's output to the LogBuffer as well
// as to its current writer
func InstallLogCapture(buf *LogBuffer) io.Writer {
	lw := &logWriter{buf: buf}
	multi := io.MultiWriter(lw, log.Writer())
	log.SetOutput(multi)
	log.SetFlags(log.LstdFlags)
	return multi
}

// LogInfo logs an info message
func (lb *LogBuffer) LogInfo(format string, args ...interface{}) {
	lb.Add("info", fmt.Sprintf(format, args...))
}

// LogWarn logs a warning message
func (lb *LogBuffer) LogWarn(format string, args ...interface{}) {
	lb.Add("warn", fmt.Sprintf(format, args...))
}

// LogError logs an error message
func (lb *LogBuffer) LogError(format string, args ...interface{}) {
	lb.Add("error", fmt.Sprintf(format, args...))
}

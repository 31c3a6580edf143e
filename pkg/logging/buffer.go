package logging

import (
	"strings"
	"sync"
)

// captureLines is how many recent lines LogCaptureWriter keeps.
const captureLines = 50

// LogCaptureWriter is a thread-safe writer that keeps the most recent lines.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// GlobalLogCapture is the singleton instance for capturing logs.
var GlobalLogCapture = NewLogCaptureWriter()

// NewLogCaptureWriter returns an empty capture buffer.
func NewLogCaptureWriter() *LogCaptureWriter {
	return &LogCaptureWriter{lines: make([]string, captureLines)}
}

// Write implements io.Writer. Each call is one line.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines[w.next] = strings.TrimRight(string(p), "\n")
	w.next = (w.next + 1) % len(w.lines)
	if w.next == 0 {
		w.full = true
	}
	return len(p), nil
}

// GetLastLine returns the most recent log line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.full && w.next == 0 {
		return ""
	}
	return w.lines[(w.next-1+len(w.lines))%len(w.lines)]
}

// Lines returns up to n recent lines, oldest first.
func (w *LogCaptureWriter) Lines(n int) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	count := w.next
	if w.full {
		count = len(w.lines)
	}
	n = min(max(n, 0), count)

	out := make([]string, 0, n)
	for i := count - n; i < count; i++ {
		start := 0
		if w.full {
			start = w.next
		}
		out = append(out, w.lines[(start+i)%len(w.lines)])
	}
	return out
}

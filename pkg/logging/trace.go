package logging

import "log/slog"

// EnableTrace turns on per-datagram debug logging. It is off by default and
// set from --trace or listener.trace.
var EnableTrace = false

// Trace logs a message at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}

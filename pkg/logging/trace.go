package logging

import "log/slog"

// EnableTrace turns on per-tick logs. Off by default: at 60 Hz they drown
// everything else.
var EnableTrace = false

// Trace logs a message at DEBUG level, but only if EnableTrace is true.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if EnableTrace {
		logger.Debug(msg, args...)
	}
}

package parg

import "log/slog"

var discardLogger = slog.New(slog.DiscardHandler)

// loggerOrDiscard keeps the library silent unless the host passes a logger.
func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return discardLogger
	}
	return logger
}

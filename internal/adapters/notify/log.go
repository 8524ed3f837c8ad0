// Package notify delivers user-visible notices.
package notify

import (
	"context"
	"log/slog"

	"leadkit/internal/core/domain"
)

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs n at a level matching its severity.
func (l *LogNotifier) Notify(ctx context.Context, n domain.Notice) {
	attrs := []any{"detail", n.Detail, "severity", string(n.Severity)}
	if n.Code != "" {
		attrs = append(attrs, "code", n.Code)
	}
	l.logger.Log(ctx, level(n.Severity), n.Title, attrs...)
}

func level(s domain.Severity) slog.Level {
	if s == domain.SeverityError {
		return slog.LevelError
	}
	return slog.LevelInfo
}

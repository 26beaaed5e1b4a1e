package cart

import (
	"context"

	"github.com/rs/zerolog"
)

// AuditLogger is an Observer that writes one structured log line per
// committed cart mutation.
type AuditLogger struct {
	logger zerolog.Logger
}

func NewAuditLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

func (a *AuditLogger) CartChanged(_ context.Context, event Event) {
	entry := a.logger.Info().
		Str("op", string(event.Op)).
		Str("user_id", event.UserID)
	if event.LineID != "" {
		entry = entry.Str("line_id", event.LineID)
	}
	if event.ProductID != "" {
		entry = entry.Str("product_id", event.ProductID)
	}
	if event.Op == OpClear {
		entry = entry.Int64("removed", event.Removed)
	} else if event.Quantity > 0 {
		entry = entry.Int("quantity", event.Quantity)
	}
	entry.Msg("cart mutated")
}

package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/shared"
)

// ActivityLogHandler records every domain event to the application log.
// It subscribes as a wildcard handler and gives operators a flat audit
// trail of quote and invoice activity without a dedicated audit table.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new activity log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

// EventTypes returns an empty slice so the handler receives all events
func (h *ActivityLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *ActivityLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// Ensure ActivityLogHandler implements EventHandler
var _ shared.EventHandler = (*ActivityLogHandler)(nil)

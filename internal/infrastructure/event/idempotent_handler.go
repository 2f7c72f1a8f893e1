package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/shared"
)

// IdempotencyMetrics counts how deliveries were resolved.
type IdempotencyMetrics struct {
	Processed  atomic.Int64
	Duplicates atomic.Int64
	Failures   atomic.Int64
}

// IdempotencyStats is a point-in-time copy of the counters.
type IdempotencyStats struct {
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Failures   int64 `json:"failures"`
}

func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed:  m.Processed.Load(),
		Duplicates: m.Duplicates.Load(),
		Failures:   m.Failures.Load(),
	}
}

// IdempotentHandler decorates an EventHandler so redelivered events,
// e.g. a billing event replayed after a bus restart, are handled once.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// IdempotentHandlerOption configures an IdempotentHandler.
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig overrides the default dedup configuration.
func WithIdempotencyConfig(config shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.config = config }
}

// WithIdempotencyMetrics shares a metrics collector across handlers.
func WithIdempotencyMetrics(metrics *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.metrics = metrics }
}

// NewIdempotentHandler wraps handler with event-ID deduplication backed
// by store.
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) *IdempotentHandler {
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  shared.DefaultIdempotencyConfig(),
		logger:  logger,
		metrics: &IdempotencyMetrics{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler's subscriptions.
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

func eventFields(event shared.DomainEvent, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
	}
	return append(fields, extra...)
}

// Handle runs the wrapped handler unless the event ID was already seen.
// A store outage degrades to at-least-once: losing the dedup check is
// better than dropping a payment or lifecycle event.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	fresh, err := h.store.MarkProcessed(ctx, event.EventID().String(), h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("dedup store unavailable, delivering anyway",
			eventFields(event, zap.Error(err))...)
	case !fresh:
		h.metrics.Duplicates.Add(1)
		h.logger.Debug("redelivered event skipped", eventFields(event)...)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.metrics.Failures.Add(1)
		h.logger.Error("event handler failed", eventFields(event, zap.Error(err))...)
		// The key stays marked until its TTL expires, which spaces out
		// retries of a failing handler.
		return err
	}

	h.metrics.Processed.Add(1)
	h.logger.Debug("event delivered", eventFields(event)...)
	return nil
}

// GetMetrics exposes the counters for this handler.
func (h *IdempotentHandler) GetMetrics() *IdempotencyMetrics {
	return h.metrics
}

// Unwrap returns the decorated handler.
func (h *IdempotentHandler) Unwrap() shared.EventHandler {
	return h.handler
}

// WrapHandlersWithIdempotency decorates every handler in the slice.
func WrapHandlersWithIdempotency(
	handlers []shared.EventHandler,
	store shared.IdempotencyStore,
	logger *zap.Logger,
	opts ...IdempotentHandlerOption,
) []shared.EventHandler {
	wrapped := make([]shared.EventHandler, len(handlers))
	for i, h := range handlers {
		wrapped[i] = NewIdempotentHandler(h, store, logger, opts...)
	}
	return wrapped
}

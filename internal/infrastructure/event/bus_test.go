package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/shared"
)

// billingEvent fabricates a domain event of the given type against a
// fresh invoice ID.
type billingEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

func newBillingEvent(eventType string) *billingEvent {
	return &billingEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New()),
		InvoiceNumber:   "INV-2026-0001",
	}
}

// recordingHandler collects everything it receives.
type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	received   []shared.DomainEvent
	fail       error
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.fail
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	t.Run("subscribed handler receives the event", func(t *testing.T) {
		handler := newRecordingHandler("invoice.paid")
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newBillingEvent("invoice.paid")))
		assert.Equal(t, 1, handler.count())
		bus.Unsubscribe(handler)
	})

	t.Run("a batch of events is delivered in order", func(t *testing.T) {
		handler := newRecordingHandler("quote.sent")
		bus.Subscribe(handler)

		first := newBillingEvent("quote.sent")
		second := newBillingEvent("quote.sent")
		require.NoError(t, bus.Publish(context.Background(), first, second))

		require.Equal(t, 2, handler.count())
		assert.Equal(t, first.EventID(), handler.received[0].EventID())
		bus.Unsubscribe(handler)
	})

	t.Run("unrelated event types are not delivered", func(t *testing.T) {
		handler := newRecordingHandler("quote.approved")
		bus.Subscribe(handler)

		require.NoError(t, bus.Publish(context.Background(), newBillingEvent("invoice.sent")))
		assert.Equal(t, 0, handler.count())
		bus.Unsubscribe(handler)
	})
}

func TestInMemoryEventBus_MultipleHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	ledger := newRecordingHandler("invoice.payment_recorded")
	notifier := newRecordingHandler("invoice.payment_recorded")
	bus.Subscribe(ledger)
	bus.Subscribe(notifier)

	require.NoError(t, bus.Publish(context.Background(), newBillingEvent("invoice.payment_recorded")))
	assert.Equal(t, 1, ledger.count())
	assert.Equal(t, 1, notifier.count())
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	audit := newRecordingHandler()
	bus.Subscribe(audit)

	require.NoError(t, bus.Publish(context.Background(),
		newBillingEvent("quote.created"),
		newBillingEvent("invoice.cancelled"),
	))
	assert.Equal(t, 2, audit.count())
}

func TestInMemoryEventBus_FailingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	broken := newRecordingHandler("invoice.paid")
	broken.fail = errors.New("notification gateway down")
	healthy := newRecordingHandler("invoice.paid")
	bus.Subscribe(broken)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newBillingEvent("invoice.paid")))
	assert.Equal(t, 1, broken.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler("quote.rejected")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newBillingEvent("quote.rejected"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newBillingEvent("quote.rejected"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))

	handler := newRecordingHandler("invoice.created")
	bus.Subscribe(handler)
	require.NoError(t, bus.Publish(context.Background(), newBillingEvent("invoice.created")))
	assert.Equal(t, 1, handler.count())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
}

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_TypedRegistration(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("quote.sent", "quote.approved")

	registry.Register(handler, "quote.sent", "quote.approved")

	assert.Len(t, registry.GetHandlers("quote.sent"), 1)
	assert.Len(t, registry.GetHandlers("quote.approved"), 1)
	assert.Empty(t, registry.GetHandlers("quote.rejected"))
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	audit := newRecordingHandler()

	registry.Register(audit)

	assert.Len(t, registry.GetHandlers("invoice.paid"), 1)
	assert.Len(t, registry.GetHandlers("anything.else"), 1)
}

func TestHandlerRegistry_TypedAndWildcardCombine(t *testing.T) {
	registry := NewHandlerRegistry()
	ledger := newRecordingHandler("invoice.payment_recorded")
	audit := newRecordingHandler()

	registry.Register(ledger, "invoice.payment_recorded")
	registry.Register(audit)

	// typed handler first, wildcard appended after
	handlers := registry.GetHandlers("invoice.payment_recorded")
	assert.Len(t, handlers, 2)
	assert.Equal(t, ledger, handlers[0])

	handlers = registry.GetHandlers("quote.expired")
	assert.Len(t, handlers, 1)
	assert.Equal(t, audit, handlers[0])
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	t.Run("typed handler", func(t *testing.T) {
		registry := NewHandlerRegistry()
		keep := newRecordingHandler("invoice.sent")
		drop := newRecordingHandler("invoice.sent")
		registry.Register(keep, "invoice.sent")
		registry.Register(drop, "invoice.sent")

		registry.Unregister(drop)

		handlers := registry.GetHandlers("invoice.sent")
		assert.Len(t, handlers, 1)
		assert.Equal(t, keep, handlers[0])
	})

	t.Run("wildcard handler", func(t *testing.T) {
		registry := NewHandlerRegistry()
		audit := newRecordingHandler()
		registry.Register(audit)

		registry.Unregister(audit)
		assert.Empty(t, registry.GetHandlers("invoice.sent"))
	})
}

func TestHandlerRegistry_GetAllHandlers(t *testing.T) {
	registry := NewHandlerRegistry()
	quotes := newRecordingHandler("quote.created")
	invoices := newRecordingHandler("invoice.created")
	audit := newRecordingHandler()

	registry.Register(quotes, "quote.created")
	registry.Register(invoices, "invoice.created")
	registry.Register(audit)

	assert.Len(t, registry.GetAllHandlers(), 3)
}

func TestHandlerRegistry_GetAllHandlers_Deduplicates(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newRecordingHandler("quote.sent", "quote.approved")

	registry.Register(handler, "quote.sent", "quote.approved")

	assert.Len(t, registry.GetAllHandlers(), 1)
}

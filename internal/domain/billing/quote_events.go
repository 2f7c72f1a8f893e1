package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// Aggregate type for quote events
const AggregateTypeQuote = "Quote"

// Quote event types
const (
	EventTypeQuoteCreated   = "quote.created"
	EventTypeQuoteSent      = "quote.sent"
	EventTypeQuoteApproved  = "quote.approved"
	EventTypeQuoteRejected  = "quote.rejected"
	EventTypeQuoteExpired   = "quote.expired"
	EventTypeQuoteConverted = "quote.converted"
)

// QuoteCreatedEvent is raised when a quote is created
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string    `json:"quote_number"`
	AccountID   uuid.UUID `json:"account_id"`
	AccountName string    `json:"account_name"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(quote *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		AccountID:       quote.AccountID,
		AccountName:     quote.AccountName,
	}
}

// QuoteSentEvent is raised when a quote is sent to the customer
type QuoteSentEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string          `json:"quote_number"`
	AccountID   uuid.UUID       `json:"account_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuoteSentEvent creates a new QuoteSentEvent
func NewQuoteSentEvent(quote *Quote) *QuoteSentEvent {
	return &QuoteSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSent, AggregateTypeQuote, quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		AccountID:       quote.AccountID,
		TotalAmount:     quote.TotalAmount,
	}
}

// QuoteApprovedEvent is raised when a customer approves a quote
type QuoteApprovedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string          `json:"quote_number"`
	AccountID   uuid.UUID       `json:"account_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuoteApprovedEvent creates a new QuoteApprovedEvent
func NewQuoteApprovedEvent(quote *Quote) *QuoteApprovedEvent {
	return &QuoteApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteApproved, AggregateTypeQuote, quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		AccountID:       quote.AccountID,
		TotalAmount:     quote.TotalAmount,
	}
}

// QuoteRejectedEvent is raised when a customer rejects a quote
type QuoteRejectedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string `json:"quote_number"`
	Reason      string `json:"reason,omitempty"`
}

// NewQuoteRejectedEvent creates a new QuoteRejectedEvent
func NewQuoteRejectedEvent(quote *Quote, reason string) *QuoteRejectedEvent {
	return &QuoteRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRejected, AggregateTypeQuote, quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		Reason:          reason,
	}
}

// QuoteExpiredEvent is raised when a quote passes its validity window
type QuoteExpiredEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string `json:"quote_number"`
}

// NewQuoteExpiredEvent creates a new QuoteExpiredEvent
func NewQuoteExpiredEvent(quote *Quote) *QuoteExpiredEvent {
	return &QuoteExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteExpired, AggregateTypeQuote, quote.ID),
		QuoteNumber:     quote.QuoteNumber,
	}
}

// QuoteConvertedEvent is raised when a quote becomes an invoice
type QuoteConvertedEvent struct {
	shared.BaseDomainEvent
	QuoteNumber string    `json:"quote_number"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
}

// NewQuoteConvertedEvent creates a new QuoteConvertedEvent
func NewQuoteConvertedEvent(quote *Quote, invoiceID uuid.UUID) *QuoteConvertedEvent {
	return &QuoteConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteConverted, AggregateTypeQuote, quote.ID),
		QuoteNumber:     quote.QuoteNumber,
		InvoiceID:       invoiceID,
	}
}

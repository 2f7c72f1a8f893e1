package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// Aggregate type for invoice events
const AggregateTypeInvoice = "Invoice"

// Invoice event types
const (
	EventTypeInvoiceCreated         = "invoice.created"
	EventTypeInvoiceSent            = "invoice.sent"
	EventTypeInvoicePaymentRecorded = "invoice.payment_recorded"
	EventTypeInvoicePaid            = "invoice.paid"
	EventTypeInvoicePaymentRefunded = "invoice.payment_refunded"
	EventTypeInvoiceOverdue         = "invoice.overdue"
	EventTypeInvoiceCancelled       = "invoice.cancelled"
)

// InvoiceCreatedEvent is raised when an invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string     `json:"invoice_number"`
	AccountID     uuid.UUID  `json:"account_id"`
	QuoteID       *uuid.UUID `json:"quote_id,omitempty"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(invoice *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		AccountID:       invoice.AccountID,
		QuoteID:         invoice.QuoteID,
	}
}

// InvoiceSentEvent is raised when an invoice is issued to the customer
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(invoice *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		AccountID:       invoice.AccountID,
		TotalAmount:     invoice.TotalAmount,
	}
}

// InvoicePaymentRecordedEvent is raised when a payment lands on the ledger
type InvoicePaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// NewInvoicePaymentRecordedEvent creates a new InvoicePaymentRecordedEvent
func NewInvoicePaymentRecordedEvent(invoice *Invoice, payment *Payment) *InvoicePaymentRecordedEvent {
	return &InvoicePaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRecorded, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		PaymentID:       payment.ID,
		PaymentNumber:   payment.PaymentNumber,
		Amount:          payment.Amount,
		Method:          payment.Method,
		AmountDue:       invoice.AmountDue,
	}
}

// InvoicePaidEvent is raised when an invoice becomes fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(invoice *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		AccountID:       invoice.AccountID,
		TotalAmount:     invoice.TotalAmount,
	}
}

// InvoicePaymentRefundedEvent is raised when a ledger entry is refunded
type InvoicePaymentRefundedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	PaymentID     uuid.UUID       `json:"payment_id"`
	Amount        decimal.Decimal `json:"amount"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// NewInvoicePaymentRefundedEvent creates a new InvoicePaymentRefundedEvent
func NewInvoicePaymentRefundedEvent(invoice *Invoice, payment *Payment) *InvoicePaymentRefundedEvent {
	return &InvoicePaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentRefunded, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		AmountDue:       invoice.AmountDue,
	}
}

// InvoiceOverdueEvent is raised when the sweep marks an invoice overdue
type InvoiceOverdueEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	AmountDue     decimal.Decimal `json:"amount_due"`
}

// NewInvoiceOverdueEvent creates a new InvoiceOverdueEvent
func NewInvoiceOverdueEvent(invoice *Invoice) *InvoiceOverdueEvent {
	return &InvoiceOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceOverdue, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
		AccountID:       invoice.AccountID,
		AmountDue:       invoice.AmountDue,
	}
}

// InvoiceCancelledEvent is raised when an invoice is voided
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(invoice *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, invoice.ID),
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}

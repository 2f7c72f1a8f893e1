package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodMpesa        PaymentMethod = "MPESA"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodPaypal       PaymentMethod = "PAYPAL"
	PaymentMethodStripe       PaymentMethod = "STRIPE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMpesa, PaymentMethodCheck, PaymentMethodCreditCard,
		PaymentMethodBankTransfer, PaymentMethodPaypal, PaymentMethodStripe, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the state of a single ledger entry
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsValid checks if the status is a known PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// Payment is a ledger entry on an invoice. Entries are append-only: a refund
// flips the status to REFUNDED, it never deletes or edits the amount.
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method        PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status        PaymentStatus   `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	Reference     string          `gorm:"type:varchar(200)"`
	ProcessedBy   *uuid.UUID      `gorm:"type:uuid"`
	PaidAt        time.Time       `gorm:"not null"`
	RefundedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a completed payment ledger entry
func NewPayment(invoiceID uuid.UUID, paymentNumber string, amount valueobject.Money, method PaymentMethod, reference string, processedBy *uuid.UUID, now time.Time) (*Payment, error) {
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("invalid payment method: " + string(method))
	}

	return &Payment{
		ID:            uuid.New(),
		InvoiceID:     invoiceID,
		PaymentNumber: paymentNumber,
		Amount:        amount.Amount(),
		Method:        method,
		Status:        PaymentStatusCompleted,
		Reference:     reference,
		ProcessedBy:   processedBy,
		PaidAt:        now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Refund flips a completed payment to refunded
func (p *Payment) Refund(now time.Time) error {
	if p.Status != PaymentStatusCompleted {
		return shared.NewInvalidStateTransitionError(p.Status.String(), "refund")
	}
	p.Status = PaymentStatusRefunded
	p.RefundedAt = &now
	p.UpdatedAt = now
	return nil
}

// Fail marks a pending payment as failed
func (p *Payment) Fail(now time.Time) error {
	if p.Status != PaymentStatusPending {
		return shared.NewInvalidStateTransitionError(p.Status.String(), "fail")
	}
	p.Status = PaymentStatusFailed
	p.UpdatedAt = now
	return nil
}

// IsCompleted reports whether the entry counts toward the paid amount
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentStatusCompleted
}

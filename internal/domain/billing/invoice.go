package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusUnpaid    InvoiceStatus = "UNPAID"
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanAcceptPayment reports whether payments may be recorded in this status
func (s InvoiceStatus) CanAcceptPayment() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusOverdue:
		return true
	}
	return false
}

// paymentEpsilon absorbs representation noise when deciding whether an
// invoice is fully settled.
var paymentEpsilon = decimal.NewFromFloat(0.01)

// InvoiceItem represents a line item on an invoice
type InvoiceItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Description     string          `gorm:"type:varchar(500);not null"`
	Quantity        int64           `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoiceItem creates a new invoice line item
func NewInvoiceItem(invoiceID, productID uuid.UUID, description string, quantity int64, unitPrice valueobject.Money, discountPercent decimal.Decimal) (*InvoiceItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}

	total, err := PriceLine(quantity, unitPrice, discountPercent)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &InvoiceItem{
		ID:              uuid.New(),
		InvoiceID:       invoiceID,
		ProductID:       productID,
		Description:     description,
		Quantity:        quantity,
		UnitPrice:       unitPrice.Amount(),
		DiscountPercent: discountPercent,
		Total:           total.Amount(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Invoice represents an invoice aggregate root.
// Besides the document itself it owns the payment ledger: every payment and
// refund is a ledger entry, and the paid amount is always re-derived from
// the entries instead of trusting a running counter.
type Invoice struct {
	shared.OwnedAggregateRoot
	InvoiceNumber  string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	AccountID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	AccountName    string               `gorm:"type:varchar(200);not null"`
	ContactID      *uuid.UUID           `gorm:"type:uuid"`
	QuoteID        *uuid.UUID           `gorm:"type:uuid;index"` // provenance when converted from a quote
	Status         InvoiceStatus        `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null;default:'KES'"`
	Items          []InvoiceItem        `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments       []Payment            `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	DiscountType   DiscountType         `gorm:"type:varchar(20);not null;default:'percentage'"`
	DiscountValue  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRatePercent decimal.Decimal      `gorm:"type:decimal(7,4);not null;default:0"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"` // derived, kept for queries
	AmountDue      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"` // derived, kept for queries
	IssueDate      time.Time            `gorm:"not null"`
	DueDate        time.Time            `gorm:"not null;index"`
	PaidAt         *time.Time
	SentAt         *time.Time
	CancelledAt    *time.Time
	Notes          string `gorm:"type:text"`
	Terms          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice in DRAFT status
func NewInvoice(ownerID uuid.UUID, invoiceNumber string, accountID uuid.UUID, accountName string, issueDate, dueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if accountName == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewValidationError("due date cannot be before issue date")
	}

	invoice := &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		InvoiceNumber:      invoiceNumber,
		AccountID:          accountID,
		AccountName:        accountName,
		Status:             InvoiceStatusDraft,
		Currency:           valueobject.DefaultCurrency,
		Items:              make([]InvoiceItem, 0),
		Payments:           make([]Payment, 0),
		DiscountType:       DiscountTypePercentage,
		DiscountValue:      decimal.Zero,
		TaxRatePercent:     decimal.Zero,
		Subtotal:           decimal.Zero,
		DiscountAmount:     decimal.Zero,
		TaxAmount:          decimal.Zero,
		TotalAmount:        decimal.Zero,
		AmountPaid:         decimal.Zero,
		AmountDue:          decimal.Zero,
		IssueDate:          issueDate,
		DueDate:            dueDate,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// AddItem adds a line item. Only allowed in DRAFT status.
func (inv *Invoice) AddItem(productID uuid.UUID, description string, quantity int64, unitPrice valueobject.Money, discountPercent decimal.Decimal) (*InvoiceItem, error) {
	if inv.Status != InvoiceStatusDraft {
		return nil, shared.NewInvalidStateTransitionError(inv.Status.String(), "editItems")
	}

	item, err := NewInvoiceItem(inv.ID, productID, description, quantity, unitPrice, discountPercent)
	if err != nil {
		return nil, err
	}

	inv.Items = append(inv.Items, *item)
	if err := inv.recalculateTotals(); err != nil {
		inv.Items = inv.Items[:len(inv.Items)-1]
		return nil, err
	}
	inv.UpdatedAt = time.Now()

	return item, nil
}

// RemoveItem removes a line item. Only allowed in DRAFT status.
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateTransitionError(inv.Status.String(), "editItems")
	}

	for idx, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			if err := inv.recalculateTotals(); err != nil {
				return err
			}
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// SetDiscount sets the document-level discount. Only allowed in DRAFT status.
func (inv *Invoice) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateTransitionError(inv.Status.String(), "updateDetails")
	}

	prevType, prevValue := inv.DiscountType, inv.DiscountValue
	inv.DiscountType = discountType
	inv.DiscountValue = value
	if err := inv.recalculateTotals(); err != nil {
		inv.DiscountType, inv.DiscountValue = prevType, prevValue
		return err
	}
	inv.UpdatedAt = time.Now()
	return nil
}

// SetTaxRate sets the tax rate percent. Only allowed in DRAFT status.
func (inv *Invoice) SetTaxRate(rate decimal.Decimal) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateTransitionError(inv.Status.String(), "updateDetails")
	}

	prev := inv.TaxRatePercent
	inv.TaxRatePercent = rate
	if err := inv.recalculateTotals(); err != nil {
		inv.TaxRatePercent = prev
		return err
	}
	inv.UpdatedAt = time.Now()
	return nil
}

// Send issues the invoice to the customer. A DRAFT invoice becomes SENT,
// or goes straight to OVERDUE when its due date has already passed.
func (inv *Invoice) Send(now time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewInvalidStateTransitionError(inv.Status.String(), "send")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot send an invoice without items")
	}

	if now.After(inv.DueDate) {
		inv.Status = InvoiceStatusOverdue
	} else {
		inv.Status = InvoiceStatusSent
	}
	inv.SentAt = &now
	inv.AmountDue = inv.TotalAmount
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// ComputeAmountPaid sums the completed payments in the ledger. Failed and
// refunded entries never count.
func (inv *Invoice) ComputeAmountPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range inv.Payments {
		if p.Status == PaymentStatusCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// ComputeAmountDue returns the outstanding amount, never below zero
func (inv *Invoice) ComputeAmountDue() decimal.Decimal {
	due := inv.TotalAmount.Sub(inv.ComputeAmountPaid())
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// RecordPayment appends a completed payment to the ledger.
// The overpayment guard compares against a freshly computed amount due, so a
// stale stored counter can never let an overpayment through.
func (inv *Invoice) RecordPayment(paymentNumber string, amount valueobject.Money, method PaymentMethod, reference string, processedBy *uuid.UUID, now time.Time) (*Payment, error) {
	if !inv.Status.CanAcceptPayment() {
		return nil, shared.NewInvalidStateTransitionError(inv.Status.String(), "recordPayment")
	}
	if amount.Currency() != inv.Currency {
		return nil, shared.NewValidationError("payment currency does not match invoice currency")
	}

	due := inv.ComputeAmountDue()
	if amount.Amount().GreaterThan(due) {
		return nil, shared.NewDomainError("OVERPAYMENT",
			"Payment amount exceeds the outstanding balance of "+due.StringFixed(2))
	}

	payment, err := NewPayment(inv.ID, paymentNumber, amount, method, reference, processedBy, now)
	if err != nil {
		return nil, err
	}

	inv.Payments = append(inv.Payments, *payment)
	inv.refreshPaymentState(now)
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, payment))
	if inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}

	return payment, nil
}

// RefundPayment flips a completed ledger entry to refunded and re-derives
// the invoice status. Refunds never delete entries.
func (inv *Invoice) RefundPayment(paymentID uuid.UUID, now time.Time) (*Payment, error) {
	for idx := range inv.Payments {
		if inv.Payments[idx].ID == paymentID {
			payment := &inv.Payments[idx]
			if err := payment.Refund(now); err != nil {
				return nil, err
			}
			inv.refreshPaymentState(now)
			inv.UpdatedAt = now

			inv.AddDomainEvent(NewInvoicePaymentRefundedEvent(inv, payment))
			return payment, nil
		}
	}

	return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found on this invoice")
}

// MarkOverdue moves an unsettled invoice past its due date to OVERDUE.
// Paid, cancelled and draft invoices are never marked.
func (inv *Invoice) MarkOverdue(now time.Time) error {
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial:
	default:
		return shared.NewInvalidStateTransitionError(inv.Status.String(), "markOverdue")
	}
	if !now.After(inv.DueDate) {
		return shared.NewDomainError("NOT_DUE", "Invoice due date has not passed")
	}

	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))

	return nil
}

// IsOverdueCandidate reports whether the sweep should mark this invoice
func (inv *Invoice) IsOverdueCandidate(now time.Time) bool {
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial:
		return now.After(inv.DueDate)
	}
	return false
}

// Cancel voids the invoice. Paid invoices and invoices with completed
// payments cannot be cancelled; refund the payments first.
func (inv *Invoice) Cancel(now time.Time) error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewInvalidStateTransitionError(inv.Status.String(), "cancel")
	}
	if inv.ComputeAmountPaid().GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel an invoice with completed payments")
	}

	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// refreshPaymentState re-derives AmountPaid, AmountDue, PaidAt and the
// status from the ledger entries.
func (inv *Invoice) refreshPaymentState(now time.Time) {
	paid := inv.ComputeAmountPaid()
	due := inv.TotalAmount.Sub(paid)
	if due.IsNegative() {
		due = decimal.Zero
	}
	inv.AmountPaid = paid
	inv.AmountDue = due

	switch {
	case due.LessThanOrEqual(paymentEpsilon) && inv.TotalAmount.GreaterThan(decimal.Zero):
		inv.Status = InvoiceStatusPaid
		if inv.PaidAt == nil {
			inv.PaidAt = &now
		}
	case paid.IsPositive():
		inv.Status = InvoiceStatusPartial
		inv.PaidAt = nil
	default:
		// Nothing effectively paid; fall back to the pre-payment state.
		inv.PaidAt = nil
		if now.After(inv.DueDate) {
			inv.Status = InvoiceStatusOverdue
		} else if inv.SentAt != nil {
			inv.Status = InvoiceStatusUnpaid
		}
	}
}

// recalculateTotals reprices the document from its line items
func (inv *Invoice) recalculateTotals() error {
	lineTotals := make([]valueobject.Money, 0, len(inv.Items))
	for _, item := range inv.Items {
		lt, err := valueobject.NewMoney(item.Total, inv.Currency)
		if err != nil {
			return err
		}
		lineTotals = append(lineTotals, lt)
	}

	totals, err := PriceDocument(lineTotals, inv.Currency, inv.DiscountType, inv.DiscountValue, inv.TaxRatePercent)
	if err != nil {
		return err
	}

	inv.Subtotal = totals.Subtotal.Amount()
	inv.DiscountAmount = totals.DiscountAmount.Amount()
	inv.TaxAmount = totals.TaxAmount.Amount()
	inv.TotalAmount = totals.TotalAmount.Amount()
	inv.AmountDue = inv.TotalAmount.Sub(inv.ComputeAmountPaid())
	return nil
}

// PaidPercentage returns how much of the invoice has been settled, 0-100
func (inv *Invoice) PaidPercentage() decimal.Decimal {
	if inv.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return inv.ComputeAmountPaid().Div(inv.TotalAmount).Mul(hundred).Round(2)
}

// IsPaid returns true if the invoice is fully settled
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// DaysOverdue returns how many whole days past due the invoice is, 0 if not
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !now.After(inv.DueDate) {
		return 0
	}
	return int(now.Sub(inv.DueDate).Hours() / 24)
}

package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusApproved  QuoteStatus = "APPROVED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved,
		QuoteStatusRejected, QuoteStatusExpired, QuoteStatusConverted:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// IsTerminal returns true for states from which no operation is allowed
func (s QuoteStatus) IsTerminal() bool {
	return len(quoteOperations[s]) == 0
}

// QuoteOperation is a named lifecycle operation on a quote
type QuoteOperation string

const (
	QuoteOpEditItems     QuoteOperation = "editItems"
	QuoteOpUpdateDetails QuoteOperation = "updateDetails"
	QuoteOpSend          QuoteOperation = "send"
	QuoteOpApprove       QuoteOperation = "approve"
	QuoteOpReject        QuoteOperation = "reject"
	QuoteOpExpire        QuoteOperation = "expire"
	QuoteOpConvert       QuoteOperation = "convertToInvoice"
	QuoteOpDelete        QuoteOperation = "delete"
)

// quoteOperations is the single source of truth for which operations each
// status permits. Guard checks and status consumers (UI action sets) both
// read this table, so they can never disagree.
var quoteOperations = map[QuoteStatus][]QuoteOperation{
	QuoteStatusDraft:     {QuoteOpEditItems, QuoteOpUpdateDetails, QuoteOpSend, QuoteOpDelete},
	QuoteStatusSent:      {QuoteOpApprove, QuoteOpReject, QuoteOpExpire, QuoteOpDelete},
	QuoteStatusApproved:  {QuoteOpConvert, QuoteOpExpire},
	QuoteStatusRejected:  {},
	QuoteStatusExpired:   {},
	QuoteStatusConverted: {},
}

// AllowedOperations returns the operations permitted in the given status
func AllowedOperations(s QuoteStatus) []QuoteOperation {
	ops := quoteOperations[s]
	out := make([]QuoteOperation, len(ops))
	copy(out, ops)
	return out
}

// Allows reports whether the status permits the given operation
func (s QuoteStatus) Allows(op QuoteOperation) bool {
	for _, allowed := range quoteOperations[s] {
		if allowed == op {
			return true
		}
	}
	return false
}

// QuoteItem represents a line item in a quote
type QuoteItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	QuoteID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Description     string          `gorm:"type:varchar(500);not null"`
	Quantity        int64           `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null"` // priced by PriceLine
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (QuoteItem) TableName() string {
	return "quote_items"
}

// NewQuoteItem creates a new quote line item. The unit price and description
// are snapshots taken at add time; later catalog changes do not affect them.
func NewQuoteItem(quoteID, productID uuid.UUID, description string, quantity int64, unitPrice valueobject.Money, discountPercent decimal.Decimal) (*QuoteItem, error) {
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
	return &QuoteItem{
		ID:              uuid.New(),
		QuoteID:         quoteID,
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

// Reprice recomputes the line total from the current fields
func (i *QuoteItem) Reprice(currency valueobject.Currency) error {
	unitPrice, err := valueobject.NewMoney(i.UnitPrice, currency)
	if err != nil {
		return err
	}
	total, err := PriceLine(i.Quantity, unitPrice, i.DiscountPercent)
	if err != nil {
		return err
	}
	i.Total = total.Amount()
	i.UpdatedAt = time.Now()
	return nil
}

// Quote represents a sales quote aggregate root.
// It manages the document from drafting through approval to conversion.
type Quote struct {
	shared.OwnedAggregateRoot
	QuoteNumber    string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	AccountID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	AccountName    string               `gorm:"type:varchar(200);not null"`
	ContactID      *uuid.UUID           `gorm:"type:uuid"`
	Status         QuoteStatus          `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null;default:'KES'"`
	Items          []QuoteItem          `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	DiscountType   DiscountType         `gorm:"type:varchar(20);not null;default:'percentage'"`
	DiscountValue  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRatePercent decimal.Decimal      `gorm:"type:decimal(7,4);not null;default:0"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ValidUntil     *time.Time
	Notes          string `gorm:"type:text"`
	Terms          string `gorm:"type:text"`
	SentAt         *time.Time
	ApprovedAt     *time.Time
	RejectedAt     *time.Time
	ExpiredAt      *time.Time
	ConvertedAt    *time.Time
	InvoiceID      *uuid.UUID `gorm:"type:uuid"` // set when converted
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a new quote in DRAFT status
func NewQuote(ownerID uuid.UUID, quoteNumber string, accountID uuid.UUID, accountName string) (*Quote, error) {
	if quoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_QUOTE_NUMBER", "Quote number cannot be empty")
	}
	if len(quoteNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_QUOTE_NUMBER", "Quote number cannot exceed 50 characters")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if accountName == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}

	quote := &Quote{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		QuoteNumber:        quoteNumber,
		AccountID:          accountID,
		AccountName:        accountName,
		Status:             QuoteStatusDraft,
		Currency:           valueobject.DefaultCurrency,
		Items:              make([]QuoteItem, 0),
		DiscountType:       DiscountTypePercentage,
		DiscountValue:      decimal.Zero,
		TaxRatePercent:     decimal.Zero,
		Subtotal:           decimal.Zero,
		DiscountAmount:     decimal.Zero,
		TaxAmount:          decimal.Zero,
		TotalAmount:        decimal.Zero,
	}

	quote.AddDomainEvent(NewQuoteCreatedEvent(quote))

	return quote, nil
}

// ensureAllowed returns an InvalidStateTransitionError when the current
// status does not permit the operation. There are no silent no-ops.
func (q *Quote) ensureAllowed(op QuoteOperation) error {
	if !q.Status.Allows(op) {
		return shared.NewInvalidStateTransitionError(q.Status.String(), string(op))
	}
	return nil
}

// AddItem adds a line item to the quote. Only allowed in DRAFT status.
func (q *Quote) AddItem(productID uuid.UUID, description string, quantity int64, unitPrice valueobject.Money, discountPercent decimal.Decimal) (*QuoteItem, error) {
	if err := q.ensureAllowed(QuoteOpEditItems); err != nil {
		return nil, err
	}

	item, err := NewQuoteItem(q.ID, productID, description, quantity, unitPrice, discountPercent)
	if err != nil {
		return nil, err
	}

	q.Items = append(q.Items, *item)
	if err := q.recalculateTotals(); err != nil {
		q.Items = q.Items[:len(q.Items)-1]
		return nil, err
	}
	q.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItem updates the quantity, price and discount of an existing item.
// Only allowed in DRAFT status.
func (q *Quote) UpdateItem(itemID uuid.UUID, quantity int64, unitPrice valueobject.Money, discountPercent decimal.Decimal) error {
	if err := q.ensureAllowed(QuoteOpEditItems); err != nil {
		return err
	}

	for idx := range q.Items {
		if q.Items[idx].ID == itemID {
			item := &q.Items[idx]
			prev := *item
			item.Quantity = quantity
			item.UnitPrice = unitPrice.Amount()
			item.DiscountPercent = discountPercent
			if err := item.Reprice(q.Currency); err != nil {
				*item = prev
				return err
			}
			if err := q.recalculateTotals(); err != nil {
				*item = prev
				return err
			}
			q.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Quote item not found")
}

// RemoveItem removes a line item. Only allowed in DRAFT status.
func (q *Quote) RemoveItem(itemID uuid.UUID) error {
	if err := q.ensureAllowed(QuoteOpEditItems); err != nil {
		return err
	}

	for idx, item := range q.Items {
		if item.ID == itemID {
			q.Items = append(q.Items[:idx], q.Items[idx+1:]...)
			if err := q.recalculateTotals(); err != nil {
				return err
			}
			q.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Quote item not found")
}

// ReplaceItems swaps the entire item list and recomputes totals.
// Only allowed in DRAFT status.
func (q *Quote) ReplaceItems(items []QuoteItem) error {
	if err := q.ensureAllowed(QuoteOpEditItems); err != nil {
		return err
	}

	prev := q.Items
	q.Items = items
	for idx := range q.Items {
		q.Items[idx].QuoteID = q.ID
		if err := q.Items[idx].Reprice(q.Currency); err != nil {
			q.Items = prev
			return err
		}
	}
	if err := q.recalculateTotals(); err != nil {
		q.Items = prev
		return err
	}
	q.UpdatedAt = time.Now()
	return nil
}

// SetDiscount sets the document-level discount. Only allowed in DRAFT status.
func (q *Quote) SetDiscount(discountType DiscountType, value decimal.Decimal) error {
	if err := q.ensureAllowed(QuoteOpUpdateDetails); err != nil {
		return err
	}

	prevType, prevValue := q.DiscountType, q.DiscountValue
	q.DiscountType = discountType
	q.DiscountValue = value
	if err := q.recalculateTotals(); err != nil {
		q.DiscountType, q.DiscountValue = prevType, prevValue
		return err
	}
	q.UpdatedAt = time.Now()
	return nil
}

// SetTaxRate sets the tax rate percent. Only allowed in DRAFT status.
func (q *Quote) SetTaxRate(rate decimal.Decimal) error {
	if err := q.ensureAllowed(QuoteOpUpdateDetails); err != nil {
		return err
	}

	prev := q.TaxRatePercent
	q.TaxRatePercent = rate
	if err := q.recalculateTotals(); err != nil {
		q.TaxRatePercent = prev
		return err
	}
	q.UpdatedAt = time.Now()
	return nil
}

// UpdateDetails updates the descriptive fields. Only allowed in DRAFT status.
func (q *Quote) UpdateDetails(contactID *uuid.UUID, validUntil *time.Time, notes, terms string) error {
	if err := q.ensureAllowed(QuoteOpUpdateDetails); err != nil {
		return err
	}

	q.ContactID = contactID
	q.ValidUntil = validUntil
	q.Notes = notes
	q.Terms = terms
	q.UpdatedAt = time.Now()
	return nil
}

// Send transitions the quote from DRAFT to SENT.
// A quote with no items cannot be sent.
func (q *Quote) Send() error {
	if err := q.ensureAllowed(QuoteOpSend); err != nil {
		return err
	}
	if len(q.Items) == 0 {
		return shared.NewDomainError("EMPTY_QUOTE", "Cannot send a quote without items")
	}

	now := time.Now()
	q.Status = QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteSentEvent(q))

	return nil
}

// Approve transitions the quote from SENT to APPROVED
func (q *Quote) Approve() error {
	if err := q.ensureAllowed(QuoteOpApprove); err != nil {
		return err
	}

	now := time.Now()
	q.Status = QuoteStatusApproved
	q.ApprovedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteApprovedEvent(q))

	return nil
}

// Reject transitions the quote from SENT to REJECTED
func (q *Quote) Reject(reason string) error {
	if err := q.ensureAllowed(QuoteOpReject); err != nil {
		return err
	}

	now := time.Now()
	q.Status = QuoteStatusRejected
	q.RejectedAt = &now
	if reason != "" {
		q.Notes = reason
	}
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteRejectedEvent(q, reason))

	return nil
}

// Expire marks the quote as expired. Expiry is an explicit transition
// driven by callers or the scheduler sweep; reads never mutate status.
func (q *Quote) Expire() error {
	if err := q.ensureAllowed(QuoteOpExpire); err != nil {
		return err
	}

	now := time.Now()
	q.Status = QuoteStatusExpired
	q.ExpiredAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteExpiredEvent(q))

	return nil
}

// IsStale reports whether the quote validity window has passed.
// It does not change the status; callers decide when to Expire.
func (q *Quote) IsStale(now time.Time) bool {
	return q.ValidUntil != nil && now.After(*q.ValidUntil) &&
		(q.Status == QuoteStatusSent || q.Status == QuoteStatusApproved)
}

// EnsureDeletable verifies the quote may be deleted in its current status
func (q *Quote) EnsureDeletable() error {
	return q.ensureAllowed(QuoteOpDelete)
}

// ConvertToInvoice converts an APPROVED quote into an invoice.
// The invoice items and financials are a snapshot of the quote; the quote
// moves to CONVERTED exactly once, a second call fails the state guard.
func (q *Quote) ConvertToInvoice(invoiceNumber string, issueDate, dueDate time.Time) (*Invoice, error) {
	if err := q.ensureAllowed(QuoteOpConvert); err != nil {
		return nil, err
	}

	ownerID := uuid.Nil
	if q.OwnerID != nil {
		ownerID = *q.OwnerID
	}

	invoice, err := NewInvoice(ownerID, invoiceNumber, q.AccountID, q.AccountName, issueDate, dueDate)
	if err != nil {
		return nil, err
	}

	invoice.Currency = q.Currency
	invoice.QuoteID = &q.ID
	invoice.ContactID = q.ContactID
	invoice.Notes = q.Notes
	invoice.Terms = q.Terms

	items := make([]InvoiceItem, 0, len(q.Items))
	for _, qi := range q.Items {
		items = append(items, InvoiceItem{
			ID:              uuid.New(),
			InvoiceID:       invoice.ID,
			ProductID:       qi.ProductID,
			Description:     qi.Description,
			Quantity:        qi.Quantity,
			UnitPrice:       qi.UnitPrice,
			DiscountPercent: qi.DiscountPercent,
			Total:           qi.Total,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		})
	}
	invoice.Items = items

	// Copy the financial snapshot verbatim rather than repricing, so the
	// invoice matches the approved quote even if catalog data moved on.
	invoice.DiscountType = q.DiscountType
	invoice.DiscountValue = q.DiscountValue
	invoice.TaxRatePercent = q.TaxRatePercent
	invoice.Subtotal = q.Subtotal
	invoice.DiscountAmount = q.DiscountAmount
	invoice.TaxAmount = q.TaxAmount
	invoice.TotalAmount = q.TotalAmount

	now := time.Now()
	q.Status = QuoteStatusConverted
	q.ConvertedAt = &now
	q.InvoiceID = &invoice.ID
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteConvertedEvent(q, invoice.ID))

	return invoice, nil
}

// recalculateTotals reprices the document from its line items
func (q *Quote) recalculateTotals() error {
	lineTotals := make([]valueobject.Money, 0, len(q.Items))
	for _, item := range q.Items {
		lt, err := valueobject.NewMoney(item.Total, q.Currency)
		if err != nil {
			return err
		}
		lineTotals = append(lineTotals, lt)
	}

	totals, err := PriceDocument(lineTotals, q.Currency, q.DiscountType, q.DiscountValue, q.TaxRatePercent)
	if err != nil {
		return err
	}

	q.Subtotal = totals.Subtotal.Amount()
	q.DiscountAmount = totals.DiscountAmount.Amount()
	q.TaxAmount = totals.TaxAmount.Amount()
	q.TotalAmount = totals.TotalAmount.Amount()
	return nil
}

// GetTotalMoney returns the total as a Money value object
func (q *Quote) GetTotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(q.TotalAmount, q.Currency)
	return m
}

// IsDraft returns true if the quote is in DRAFT status
func (q *Quote) IsDraft() bool {
	return q.Status == QuoteStatusDraft
}

// IsConverted returns true if the quote has been converted to an invoice
func (q *Quote) IsConverted() bool {
	return q.Status == QuoteStatusConverted
}

package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simbacrm/backend/internal/domain/billing"
)

// ==================== Quote DTOs ====================

// CreateQuoteRequest represents a request to create a quote
type CreateQuoteRequest struct {
	AccountID  uuid.UUID        `json:"account_id" binding:"required"`
	ContactID  *uuid.UUID       `json:"contact_id"`
	Items      []QuoteItemInput `json:"items"`
	Discount   *DiscountInput   `json:"discount"`
	TaxRate    *decimal.Decimal `json:"tax_rate"`
	ValidUntil *time.Time       `json:"valid_until"`
	Notes      string           `json:"notes"`
	Terms      string           `json:"terms"`
}

// QuoteItemInput represents a line item in quote requests
type QuoteItemInput struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	Description     string          `json:"description" binding:"required,min=1,max=500"`
	Quantity        int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// DiscountInput represents a document-level discount
type DiscountInput struct {
	Type  string          `json:"type" binding:"required,oneof=flat percentage"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

// UpdateQuoteRequest represents a request to update quote details (DRAFT only)
type UpdateQuoteRequest struct {
	ContactID  *uuid.UUID       `json:"contact_id"`
	Discount   *DiscountInput   `json:"discount"`
	TaxRate    *decimal.Decimal `json:"tax_rate"`
	ValidUntil *time.Time       `json:"valid_until"`
	Notes      *string          `json:"notes"`
	Terms      *string          `json:"terms"`
}

// UpdateQuoteItemsRequest replaces the full item list of a draft quote
type UpdateQuoteItemsRequest struct {
	Items []QuoteItemInput `json:"items" binding:"required,min=1"`
}

// RejectQuoteRequest represents a request to reject a quote
type RejectQuoteRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ConvertQuoteRequest represents a request to convert a quote to an invoice
type ConvertQuoteRequest struct {
	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`
}

// QuoteListFilter represents filter options for the quote list
type QuoteListFilter struct {
	Search    string               `form:"search"`
	AccountID *uuid.UUID           `form:"account_id"`
	Status    *billing.QuoteStatus `form:"status"`
	Page      int                  `form:"page" binding:"omitempty,min=1"`
	PageSize  int                  `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string               `form:"order_by"`
	OrderDir  string               `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID                uuid.UUID           `json:"id"`
	QuoteNumber       string              `json:"quote_number"`
	AccountID         uuid.UUID           `json:"account_id"`
	AccountName       string              `json:"account_name"`
	ContactID         *uuid.UUID          `json:"contact_id,omitempty"`
	Status            string              `json:"status"`
	AllowedOperations []string            `json:"allowed_operations"`
	Currency          string              `json:"currency"`
	Items             []QuoteItemResponse `json:"items"`
	DiscountType      string              `json:"discount_type"`
	DiscountValue     decimal.Decimal     `json:"discount_value"`
	TaxRatePercent    decimal.Decimal     `json:"tax_rate_percent"`
	Subtotal          decimal.Decimal     `json:"subtotal"`
	DiscountAmount    decimal.Decimal     `json:"discount_amount"`
	TaxAmount         decimal.Decimal     `json:"tax_amount"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	ValidUntil        *time.Time          `json:"valid_until,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	Terms             string              `json:"terms,omitempty"`
	SentAt            *time.Time          `json:"sent_at,omitempty"`
	ApprovedAt        *time.Time          `json:"approved_at,omitempty"`
	RejectedAt        *time.Time          `json:"rejected_at,omitempty"`
	ExpiredAt         *time.Time          `json:"expired_at,omitempty"`
	ConvertedAt       *time.Time          `json:"converted_at,omitempty"`
	InvoiceID         *uuid.UUID          `json:"invoice_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// QuoteItemResponse represents a quote line item in API responses
type QuoteItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Description     string          `json:"description"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
}

// QuoteListItemResponse represents a quote in list responses (less detail)
type QuoteListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	QuoteNumber string          `json:"quote_number"`
	AccountID   uuid.UUID       `json:"account_id"`
	AccountName string          `json:"account_name"`
	Status      string          `json:"status"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// QuoteStatusSummary represents quote counts by status
type QuoteStatusSummary struct {
	Draft     int64 `json:"draft"`
	Sent      int64 `json:"sent"`
	Approved  int64 `json:"approved"`
	Rejected  int64 `json:"rejected"`
	Expired   int64 `json:"expired"`
	Converted int64 `json:"converted"`
	Total     int64 `json:"total"`
}

// ToQuoteResponse converts a domain Quote to a response DTO
func ToQuoteResponse(quote *billing.Quote) QuoteResponse {
	items := make([]QuoteItemResponse, len(quote.Items))
	for i := range quote.Items {
		items[i] = ToQuoteItemResponse(&quote.Items[i])
	}

	allowed := billing.AllowedOperations(quote.Status)
	ops := make([]string, len(allowed))
	for i, op := range allowed {
		ops[i] = string(op)
	}

	return QuoteResponse{
		ID:                quote.ID,
		QuoteNumber:       quote.QuoteNumber,
		AccountID:         quote.AccountID,
		AccountName:       quote.AccountName,
		ContactID:         quote.ContactID,
		Status:            string(quote.Status),
		AllowedOperations: ops,
		Currency:          string(quote.Currency),
		Items:             items,
		DiscountType:      string(quote.DiscountType),
		DiscountValue:     quote.DiscountValue,
		TaxRatePercent:    quote.TaxRatePercent,
		Subtotal:          quote.Subtotal,
		DiscountAmount:    quote.DiscountAmount,
		TaxAmount:         quote.TaxAmount,
		TotalAmount:       quote.TotalAmount,
		ValidUntil:        quote.ValidUntil,
		Notes:             quote.Notes,
		Terms:             quote.Terms,
		SentAt:            quote.SentAt,
		ApprovedAt:        quote.ApprovedAt,
		RejectedAt:        quote.RejectedAt,
		ExpiredAt:         quote.ExpiredAt,
		ConvertedAt:       quote.ConvertedAt,
		InvoiceID:         quote.InvoiceID,
		CreatedAt:         quote.CreatedAt,
		UpdatedAt:         quote.UpdatedAt,
		Version:           quote.Version,
	}
}

// ToQuoteItemResponse converts a domain QuoteItem to a response DTO
func ToQuoteItemResponse(item *billing.QuoteItem) QuoteItemResponse {
	return QuoteItemResponse{
		ID:              item.ID,
		ProductID:       item.ProductID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		DiscountPercent: item.DiscountPercent,
		Total:           item.Total,
	}
}

// ToQuoteListItemResponse converts a domain Quote to a list response DTO
func ToQuoteListItemResponse(quote *billing.Quote) QuoteListItemResponse {
	return QuoteListItemResponse{
		ID:          quote.ID,
		QuoteNumber: quote.QuoteNumber,
		AccountID:   quote.AccountID,
		AccountName: quote.AccountName,
		Status:      string(quote.Status),
		ItemCount:   len(quote.Items),
		TotalAmount: quote.TotalAmount,
		ValidUntil:  quote.ValidUntil,
		CreatedAt:   quote.CreatedAt,
		UpdatedAt:   quote.UpdatedAt,
	}
}

// ToQuoteListItemResponses converts a slice of domain quotes to list responses
func ToQuoteListItemResponses(quotes []billing.Quote) []QuoteListItemResponse {
	responses := make([]QuoteListItemResponse, len(quotes))
	for i := range quotes {
		responses[i] = ToQuoteListItemResponse(&quotes[i])
	}
	return responses
}

// ==================== Invoice DTOs ====================

// CreateInvoiceRequest represents a request to create a standalone invoice
type CreateInvoiceRequest struct {
	AccountID uuid.UUID        `json:"account_id" binding:"required"`
	ContactID *uuid.UUID       `json:"contact_id"`
	Items     []QuoteItemInput `json:"items"`
	Discount  *DiscountInput   `json:"discount"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
	IssueDate *time.Time       `json:"issue_date"`
	DueDate   time.Time        `json:"due_date" binding:"required"`
	Notes     string           `json:"notes"`
	Terms     string           `json:"terms"`
}

// RecordPaymentRequest represents a request to record a payment against an invoice
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference" binding:"max=200"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search    string                 `form:"search"`
	AccountID *uuid.UUID             `form:"account_id"`
	Status    *billing.InvoiceStatus `form:"status"`
	Page      int                    `form:"page" binding:"omitempty,min=1"`
	PageSize  int                    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string                 `form:"order_by"`
	OrderDir  string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	AccountID      uuid.UUID             `json:"account_id"`
	AccountName    string                `json:"account_name"`
	ContactID      *uuid.UUID            `json:"contact_id,omitempty"`
	QuoteID        *uuid.UUID            `json:"quote_id,omitempty"`
	Status         string                `json:"status"`
	Currency       string                `json:"currency"`
	Items          []InvoiceItemResponse `json:"items"`
	Payments       []PaymentResponse     `json:"payments"`
	DiscountType   string                `json:"discount_type"`
	DiscountValue  decimal.Decimal       `json:"discount_value"`
	TaxRatePercent decimal.Decimal       `json:"tax_rate_percent"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	AmountPaid     decimal.Decimal       `json:"amount_paid"`
	AmountDue      decimal.Decimal       `json:"amount_due"`
	PaidPercentage decimal.Decimal       `json:"paid_percentage"`
	IssueDate      time.Time             `json:"issue_date"`
	DueDate        time.Time             `json:"due_date"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	Terms          string                `json:"terms,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// InvoiceItemResponse represents an invoice line item in API responses
type InvoiceItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Description     string          `json:"description"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
}

// PaymentResponse represents a payment ledger entry in API responses
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	ProcessedBy   *uuid.UUID      `json:"processed_by,omitempty"`
	PaidAt        time.Time       `json:"paid_at"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
}

// InvoiceListItemResponse represents an invoice in list responses (less detail)
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	AccountID     uuid.UUID       `json:"account_id"`
	AccountName   string          `json:"account_name"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToInvoiceResponse converts a domain Invoice to a response DTO
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(invoice.Items))
	for i := range invoice.Items {
		items[i] = ToInvoiceItemResponse(&invoice.Items[i])
	}
	payments := make([]PaymentResponse, len(invoice.Payments))
	for i := range invoice.Payments {
		payments[i] = ToPaymentResponse(&invoice.Payments[i])
	}

	return InvoiceResponse{
		ID:             invoice.ID,
		InvoiceNumber:  invoice.InvoiceNumber,
		AccountID:      invoice.AccountID,
		AccountName:    invoice.AccountName,
		ContactID:      invoice.ContactID,
		QuoteID:        invoice.QuoteID,
		Status:         string(invoice.Status),
		Currency:       string(invoice.Currency),
		Items:          items,
		Payments:       payments,
		DiscountType:   string(invoice.DiscountType),
		DiscountValue:  invoice.DiscountValue,
		TaxRatePercent: invoice.TaxRatePercent,
		Subtotal:       invoice.Subtotal,
		DiscountAmount: invoice.DiscountAmount,
		TaxAmount:      invoice.TaxAmount,
		TotalAmount:    invoice.TotalAmount,
		AmountPaid:     invoice.AmountPaid,
		AmountDue:      invoice.AmountDue,
		PaidPercentage: invoice.PaidPercentage(),
		IssueDate:      invoice.IssueDate,
		DueDate:        invoice.DueDate,
		PaidAt:         invoice.PaidAt,
		SentAt:         invoice.SentAt,
		CancelledAt:    invoice.CancelledAt,
		Notes:          invoice.Notes,
		Terms:          invoice.Terms,
		CreatedAt:      invoice.CreatedAt,
		UpdatedAt:      invoice.UpdatedAt,
		Version:        invoice.Version,
	}
}

// ToInvoiceItemResponse converts a domain InvoiceItem to a response DTO
func ToInvoiceItemResponse(item *billing.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:              item.ID,
		ProductID:       item.ProductID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		DiscountPercent: item.DiscountPercent,
		Total:           item.Total,
	}
}

// ToPaymentResponse converts a domain Payment to a response DTO
func ToPaymentResponse(payment *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID,
		PaymentNumber: payment.PaymentNumber,
		Amount:        payment.Amount,
		Method:        string(payment.Method),
		Status:        string(payment.Status),
		Reference:     payment.Reference,
		ProcessedBy:   payment.ProcessedBy,
		PaidAt:        payment.PaidAt,
		RefundedAt:    payment.RefundedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments to response DTOs
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// ToInvoiceListItemResponse converts a domain Invoice to a list response DTO
func ToInvoiceListItemResponse(invoice *billing.Invoice) InvoiceListItemResponse {
	return InvoiceListItemResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		AccountID:     invoice.AccountID,
		AccountName:   invoice.AccountName,
		Status:        string(invoice.Status),
		TotalAmount:   invoice.TotalAmount,
		AmountDue:     invoice.AmountDue,
		IssueDate:     invoice.IssueDate,
		DueDate:       invoice.DueDate,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

// ToInvoiceListItemResponses converts a slice of domain invoices to list responses
func ToInvoiceListItemResponses(invoices []billing.Invoice) []InvoiceListItemResponse {
	responses := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceListItemResponse(&invoices[i])
	}
	return responses
}

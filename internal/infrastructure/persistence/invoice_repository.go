package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simbacrm/backend/internal/domain/billing"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// unsettledStatuses are the invoice statuses that still carry an open balance
var unsettledStatuses = []billing.InvoiceStatus{
	billing.InvoiceStatusSent,
	billing.InvoiceStatusUnpaid,
	billing.InvoiceStatusPartial,
}

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID, including items and payments
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByInvoiceNumber finds an invoice by its document number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)

	if err := query.Preload("Items").Preload("Payments").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByAccount finds all invoices for an account
func (r *GormInvoiceRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).Where("account_id = ?", accountID),
		filter,
	)

	if err := query.Preload("Items").Preload("Payments").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByStatus finds all invoices in a given status
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, status billing.InvoiceStatus, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Invoice{}).Where("status = ?", status),
		filter,
	)

	if err := query.Preload("Items").Preload("Payments").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindByQuoteID finds the invoice a quote was converted into
func (r *GormInvoiceRepository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("quote_id = ?", quoteID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindOverdueCandidates finds unsettled invoices past their due date
func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, now time.Time, limit int) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Where("status IN ?", unsettledStatuses).
		Where("due_date < ?", now).
		Order("due_date ASC").
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindPayments returns the payment ledger of an invoice, oldest first
func (r *GormInvoiceRepository) FindPayments(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates an invoice together with its items and payments
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}
		return r.syncChildren(tx, invoice)
	})
}

// SaveWithLock saves an invoice with optimistic locking.
// Returns shared.ErrConcurrencyConflict when the stored version moved on.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&billing.Invoice{}).
			Where("id = ?", invoice.ID).
			Select("version").
			Scan(&currentVersion).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != invoice.Version {
			return shared.ErrConcurrencyConflict
		}

		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"invoice_number":   invoice.InvoiceNumber,
				"account_id":       invoice.AccountID,
				"account_name":     invoice.AccountName,
				"contact_id":       invoice.ContactID,
				"quote_id":         invoice.QuoteID,
				"status":           invoice.Status,
				"currency":         invoice.Currency,
				"discount_type":    invoice.DiscountType,
				"discount_value":   invoice.DiscountValue,
				"tax_rate_percent": invoice.TaxRatePercent,
				"subtotal":         invoice.Subtotal,
				"discount_amount":  invoice.DiscountAmount,
				"tax_amount":       invoice.TaxAmount,
				"total_amount":     invoice.TotalAmount,
				"amount_paid":      invoice.AmountPaid,
				"amount_due":       invoice.AmountDue,
				"issue_date":       invoice.IssueDate,
				"due_date":         invoice.DueDate,
				"paid_at":          invoice.PaidAt,
				"sent_at":          invoice.SentAt,
				"cancelled_at":     invoice.CancelledAt,
				"notes":            invoice.Notes,
				"terms":            invoice.Terms,
				"version":          invoice.Version,
				"updated_at":       invoice.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.syncChildren(tx, invoice)
	})
}

// syncChildren reconciles stored items and payments with the aggregate.
// Payments are append-only in the domain so they are only ever inserted.
func (r *GormInvoiceRepository) syncChildren(tx *gorm.DB, invoice *billing.Invoice) error {
	if invoice.ID == uuid.Nil {
		return nil
	}

	currentItemIDs := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, currentItemIDs).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}

	for i := range invoice.Payments {
		invoice.Payments[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Payments[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes an invoice with its items and payments
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&billing.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&billing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts invoices in a given status
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context, status billing.InvoiceStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByInvoiceNumber checks if an invoice number is already taken
func (r *GormInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateInvoiceNumber generates a unique invoice number.
// Format: INV-YYYY-NNNN (e.g., INV-2026-0001)
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("INV-%d-", time.Now().Year())

	var lastInvoice billing.Invoice
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		First(&lastInvoice).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextNum := nextSequenceNumber(lastInvoice.InvoiceNumber)
	invoiceNumber := fmt.Sprintf("%s%04d", prefix, nextNum)

	for i := 0; i < 100; i++ {
		exists, err := r.ExistsByInvoiceNumber(ctx, invoiceNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		nextNum++
		invoiceNumber = fmt.Sprintf("%s%04d", prefix, nextNum)
	}

	return invoiceNumber, nil
}

// GeneratePaymentNumber generates a unique payment number.
// Format: PAY-YYYY-NNNN (e.g., PAY-2026-0001)
func (r *GormInvoiceRepository) GeneratePaymentNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PAY-%d-", time.Now().Year())

	var lastPayment billing.Payment
	err := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Where("payment_number LIKE ?", prefix+"%").
		Order("payment_number DESC").
		First(&lastPayment).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextNum := nextSequenceNumber(lastPayment.PaymentNumber)
	paymentNumber := fmt.Sprintf("%s%04d", prefix, nextNum)

	for i := 0; i < 100; i++ {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&billing.Payment{}).
			Where("payment_number = ?", paymentNumber).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			break
		}
		nextNum++
		paymentNumber = fmt.Sprintf("%s%04d", prefix, nextNum)
	}

	return paymentNumber, nil
}

// applyFilter applies search, filters, pagination and ordering to a query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR account_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "account_id":
			query = query.Where("account_id = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "quote_id":
			query = query.Where("quote_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "due_before":
			if t, ok := value.(time.Time); ok {
				query = query.Where("due_date < ?", t)
			}
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)

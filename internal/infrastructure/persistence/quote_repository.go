package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simbacrm/backend/internal/domain/billing"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote by its ID, including line items
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	var quote billing.Quote
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindByQuoteNumber finds a quote by its document number
func (r *GormQuoteRepository) FindByQuoteNumber(ctx context.Context, quoteNumber string) (*billing.Quote, error) {
	var quote billing.Quote
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("quote_number = ?", quoteNumber).
		First(&quote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindAll finds all quotes matching the filter
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Quote, error) {
	var quotes []billing.Quote
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Quote{}), filter)

	if err := query.Preload("Items").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindByAccount finds all quotes for an account
func (r *GormQuoteRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]billing.Quote, error) {
	var quotes []billing.Quote
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Quote{}).Where("account_id = ?", accountID),
		filter,
	)

	if err := query.Preload("Items").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindByStatus finds all quotes in a given status
func (r *GormQuoteRepository) FindByStatus(ctx context.Context, status billing.QuoteStatus, filter shared.Filter) ([]billing.Quote, error) {
	var quotes []billing.Quote
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&billing.Quote{}).Where("status = ?", status),
		filter,
	)

	if err := query.Preload("Items").Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindStale finds sent or approved quotes whose validity window has passed
func (r *GormQuoteRepository) FindStale(ctx context.Context, now time.Time, limit int) ([]billing.Quote, error) {
	var quotes []billing.Quote
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", []billing.QuoteStatus{billing.QuoteStatusSent, billing.QuoteStatusApproved}).
		Where("valid_until IS NOT NULL AND valid_until < ?", now).
		Order("valid_until ASC").
		Limit(limit).
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Save creates or updates a quote together with its line items
func (r *GormQuoteRepository) Save(ctx context.Context, quote *billing.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(quote).Error; err != nil {
			return err
		}
		return r.syncItems(tx, quote)
	})
}

// SaveWithLock saves a quote with optimistic locking.
// Returns shared.ErrConcurrencyConflict when the stored version moved on.
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, quote *billing.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		err := tx.Model(&billing.Quote{}).
			Where("id = ?", quote.ID).
			Select("version").
			Scan(&currentVersion).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != quote.Version {
			return shared.ErrConcurrencyConflict
		}

		quote.Version++
		quote.UpdatedAt = time.Now()

		result := tx.Model(&billing.Quote{}).
			Where("id = ? AND version = ?", quote.ID, currentVersion).
			Updates(map[string]interface{}{
				"quote_number":     quote.QuoteNumber,
				"account_id":       quote.AccountID,
				"account_name":     quote.AccountName,
				"contact_id":       quote.ContactID,
				"status":           quote.Status,
				"currency":         quote.Currency,
				"discount_type":    quote.DiscountType,
				"discount_value":   quote.DiscountValue,
				"tax_rate_percent": quote.TaxRatePercent,
				"subtotal":         quote.Subtotal,
				"discount_amount":  quote.DiscountAmount,
				"tax_amount":       quote.TaxAmount,
				"total_amount":     quote.TotalAmount,
				"valid_until":      quote.ValidUntil,
				"notes":            quote.Notes,
				"terms":            quote.Terms,
				"sent_at":          quote.SentAt,
				"approved_at":      quote.ApprovedAt,
				"rejected_at":      quote.RejectedAt,
				"expired_at":       quote.ExpiredAt,
				"converted_at":     quote.ConvertedAt,
				"invoice_id":       quote.InvoiceID,
				"version":          quote.Version,
				"updated_at":       quote.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		return r.syncItems(tx, quote)
	})
}

// syncItems reconciles stored line items with the aggregate's current items
func (r *GormQuoteRepository) syncItems(tx *gorm.DB, quote *billing.Quote) error {
	if quote.ID == uuid.Nil {
		return nil
	}

	currentItemIDs := make([]uuid.UUID, len(quote.Items))
	for i, item := range quote.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("quote_id = ? AND id NOT IN ?", quote.ID, currentItemIDs).
			Delete(&billing.QuoteItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("quote_id = ?", quote.ID).
			Delete(&billing.QuoteItem{}).Error; err != nil {
			return err
		}
	}

	for i := range quote.Items {
		quote.Items[i].QuoteID = quote.ID
		if err := tx.Save(&quote.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a quote and its line items
func (r *GormQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&billing.QuoteItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&billing.Quote{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts quotes matching the filter
func (r *GormQuoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&billing.Quote{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts quotes in a given status
func (r *GormQuoteRepository) CountByStatus(ctx context.Context, status billing.QuoteStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Quote{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByQuoteNumber checks if a quote number is already taken
func (r *GormQuoteRepository) ExistsByQuoteNumber(ctx context.Context, quoteNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Quote{}).
		Where("quote_number = ?", quoteNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateQuoteNumber generates a unique quote number.
// Format: QT-YYYY-NNNN (e.g., QT-2026-0001)
func (r *GormQuoteRepository) GenerateQuoteNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("QT-%d-", time.Now().Year())

	var lastQuote billing.Quote
	err := r.db.WithContext(ctx).
		Model(&billing.Quote{}).
		Where("quote_number LIKE ?", prefix+"%").
		Order("quote_number DESC").
		First(&lastQuote).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	nextNum := nextSequenceNumber(lastQuote.QuoteNumber)
	quoteNumber := fmt.Sprintf("%s%04d", prefix, nextNum)

	// Walk forward on the rare collision with a concurrent writer
	for i := 0; i < 100; i++ {
		exists, err := r.ExistsByQuoteNumber(ctx, quoteNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		nextNum++
		quoteNumber = fmt.Sprintf("%s%04d", prefix, nextNum)
	}

	return quoteNumber, nil
}

// nextSequenceNumber parses the trailing sequence of a document number and
// returns the next value, starting at 1 when the number is absent or malformed.
func nextSequenceNumber(documentNumber string) int64 {
	var next int64 = 1
	if documentNumber == "" {
		return next
	}
	parts := strings.Split(documentNumber, "-")
	if len(parts) == 3 {
		var num int64
		if _, err := fmt.Sscanf(parts[2], "%d", &num); err == nil {
			next = num + 1
		}
	}
	return next
}

// applyFilter applies search, filters, pagination and ordering to a query
func (r *GormQuoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, QuoteSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormQuoteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("quote_number ILIKE ? OR account_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "account_id":
			query = query.Where("account_id = ?", value)
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
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

// Ensure GormQuoteRepository implements QuoteRepository
var _ billing.QuoteRepository = (*GormQuoteRepository)(nil)

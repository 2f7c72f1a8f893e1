package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simbacrm/backend/internal/domain/partner"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// GormContactRepository implements ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByID finds a contact by its ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Contact, error) {
	var contact partner.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindByAccountID lists the contacts of one account, primary first
func (r *GormContactRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) ([]partner.Contact, error) {
	var contacts []partner.Contact
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("is_primary DESC, last_name ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

// FindAll finds all contacts matching the filter, with pagination metadata
func (r *GormContactRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[partner.Contact], error) {
	query := r.applySearchAndFilters(r.db.WithContext(ctx).Model(&partner.Contact{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContactSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var contacts []partner.Contact
	if err := query.Order(orderBy + " " + orderDir).Find(&contacts).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(contacts, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *GormContactRepository) applySearchAndFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "owner_id":
			query = query.Where("owner_id = ?", value)
		case "account_id":
			query = query.Where("account_id = ?", value)
		}
	}

	return query
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *partner.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// SavePrimary saves the contact and demotes the account's previous
// primary contact in the same transaction.
func (r *GormContactRepository) SavePrimary(ctx context.Context, contact *partner.Contact) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&partner.Contact{}).
			Where("account_id = ? AND is_primary = ? AND id <> ?", contact.AccountID, true, contact.ID).
			Update("is_primary", false).Error
		if err != nil {
			return err
		}
		return tx.Save(contact).Error
	})
}

// Delete deletes a contact
func (r *GormContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Contact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormContactRepository implements ContactRepository
var _ partner.ContactRepository = (*GormContactRepository)(nil)

// Package partner holds the customer-facing aggregates. Accounts are the
// companies quotes and invoices are issued to.
package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// Account represents a customer organization
type Account struct {
	shared.OwnedAggregateRoot
	Name           string               `gorm:"type:varchar(200);not null;index"`
	Industry       string               `gorm:"type:varchar(100)"`
	Website        string               `gorm:"type:varchar(255)"`
	Phone          string               `gorm:"type:varchar(50)"`
	Email          string               `gorm:"type:varchar(255)"`
	BillingAddress *valueobject.Address `gorm:"type:jsonb"`
	Active         bool                 `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new active account
func NewAccount(ownerID uuid.UUID, name string) (*Account, error) {
	if err := validateAccountName(name); err != nil {
		return nil, err
	}

	account := &Account{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		Active:             true,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// Update replaces the account's descriptive fields
func (a *Account) Update(name, industry, website, phone, email string) error {
	if err := validateAccountName(name); err != nil {
		return err
	}

	a.Name = name
	a.Industry = industry
	a.Website = website
	a.Phone = phone
	a.Email = email
	a.UpdatedAt = time.Now()
	return nil
}

// SetBillingAddress sets the address used on quotes and invoices
func (a *Account) SetBillingAddress(address valueobject.Address) {
	a.BillingAddress = &address
	a.UpdatedAt = time.Now()
}

// Activate marks the account as active
func (a *Account) Activate() {
	a.Active = true
	a.UpdatedAt = time.Now()
}

// Deactivate marks the account as inactive. Existing documents keep
// referencing it; only new quote creation is blocked upstream.
func (a *Account) Deactivate() {
	a.Active = false
	a.UpdatedAt = time.Now()
}

func validateAccountName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 200 characters")
	}
	return nil
}

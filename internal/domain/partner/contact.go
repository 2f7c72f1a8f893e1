package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// Contact is a person at an account. Quotes and invoices may name a
// contact as the recipient; the account remains the billed party.
type Contact struct {
	shared.OwnedAggregateRoot
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FirstName  string    `gorm:"type:varchar(100);not null"`
	LastName   string    `gorm:"type:varchar(100);not null"`
	Email      string    `gorm:"type:varchar(255);not null;index"`
	Phone      string    `gorm:"type:varchar(50)"`
	JobTitle   string    `gorm:"type:varchar(100)"`
	Department string    `gorm:"type:varchar(100)"`
	Primary    bool      `gorm:"column:is_primary;not null;default:false"`
	Notes      string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a contact attached to an account
func NewContact(ownerID, accountID uuid.UUID, firstName, lastName, email string) (*Contact, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewValidationError("Contact requires an account")
	}
	if err := validateContactName(firstName, lastName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(email) == "" {
		return nil, shared.NewValidationError("Contact email cannot be empty")
	}

	contact := &Contact{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		AccountID:          accountID,
		FirstName:          firstName,
		LastName:           lastName,
		Email:              email,
	}

	contact.AddDomainEvent(NewContactCreatedEvent(contact))

	return contact, nil
}

// FullName joins the first and last name for display
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Update replaces the contact's descriptive fields
func (c *Contact) Update(firstName, lastName, email, phone, jobTitle, department, notes string) error {
	if err := validateContactName(firstName, lastName); err != nil {
		return err
	}
	if strings.TrimSpace(email) == "" {
		return shared.NewValidationError("Contact email cannot be empty")
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.Email = email
	c.Phone = phone
	c.JobTitle = jobTitle
	c.Department = department
	c.Notes = notes
	c.UpdatedAt = time.Now()
	return nil
}

// MarkPrimary flags this contact as the account's primary contact.
// Demoting the previous primary is the repository's job; the aggregate
// only knows its own flag.
func (c *Contact) MarkPrimary() {
	c.Primary = true
	c.UpdatedAt = time.Now()
}

// UnmarkPrimary clears the primary flag
func (c *Contact) UnmarkPrimary() {
	c.Primary = false
	c.UpdatedAt = time.Now()
}

func validateContactName(firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return shared.NewDomainError("INVALID_NAME", "Contact first and last name cannot be empty")
	}
	if len(firstName) > 100 || len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Contact name cannot exceed 100 characters")
	}
	return nil
}

package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/simbacrm/backend/internal/domain/partner"
)

// CreateAccountRequest represents a request to create an account
type CreateAccountRequest struct {
	Name           string        `json:"name" binding:"required,min=1,max=200"`
	Industry       string        `json:"industry" binding:"max=100"`
	Website        string        `json:"website" binding:"omitempty,url,max=255"`
	Phone          string        `json:"phone" binding:"max=50"`
	Email          string        `json:"email" binding:"omitempty,email,max=255"`
	BillingAddress *AddressInput `json:"billing_address"`
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Name           *string       `json:"name"`
	Industry       *string       `json:"industry"`
	Website        *string       `json:"website" binding:"omitempty,url"`
	Phone          *string       `json:"phone"`
	Email          *string       `json:"email" binding:"omitempty,email"`
	BillingAddress *AddressInput `json:"billing_address"`
}

// CreateContactRequest represents a request to create a contact
type CreateContactRequest struct {
	AccountID  uuid.UUID `json:"account_id" binding:"required"`
	FirstName  string    `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string    `json:"last_name" binding:"required,min=1,max=100"`
	Email      string    `json:"email" binding:"required,email,max=255"`
	Phone      string    `json:"phone" binding:"max=50"`
	JobTitle   string    `json:"job_title" binding:"max=100"`
	Department string    `json:"department" binding:"max=100"`
	Primary    bool      `json:"primary"`
	Notes      string    `json:"notes"`
}

// UpdateContactRequest represents a request to update a contact
type UpdateContactRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone"`
	JobTitle   *string `json:"job_title"`
	Department *string `json:"department"`
	Notes      *string `json:"notes"`
}

// ContactListFilter represents filter options for the contact list
type ContactListFilter struct {
	AccountID *uuid.UUID `form:"account_id"`
	Search    string     `form:"search"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID         uuid.UUID `json:"id"`
	AccountID  uuid.UUID `json:"account_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	JobTitle   string    `json:"job_title,omitempty"`
	Department string    `json:"department,omitempty"`
	Primary    bool      `json:"primary"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToContactResponse converts a domain Contact to a response DTO
func ToContactResponse(contact *partner.Contact) ContactResponse {
	return ContactResponse{
		ID:         contact.ID,
		AccountID:  contact.AccountID,
		FirstName:  contact.FirstName,
		LastName:   contact.LastName,
		FullName:   contact.FullName(),
		Email:      contact.Email,
		Phone:      contact.Phone,
		JobTitle:   contact.JobTitle,
		Department: contact.Department,
		Primary:    contact.Primary,
		Notes:      contact.Notes,
		CreatedAt:  contact.CreatedAt,
		UpdatedAt:  contact.UpdatedAt,
	}
}

// ToContactResponses converts a slice of domain contacts to response DTOs
func ToContactResponses(contacts []partner.Contact) []ContactResponse {
	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = ToContactResponse(&contacts[i])
	}
	return responses
}

// AddressInput represents an address in requests
type AddressInput struct {
	Street     string `json:"street" binding:"required,max=200"`
	City       string `json:"city" binding:"required,max=100"`
	Region     string `json:"region" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"required,max=100"`
}

// AccountListFilter represents filter options for the account list
type AccountListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AddressResponse represents an address in API responses
type AddressResponse struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Industry       string           `json:"industry,omitempty"`
	Website        string           `json:"website,omitempty"`
	Phone          string           `json:"phone,omitempty"`
	Email          string           `json:"email,omitempty"`
	BillingAddress *AddressResponse `json:"billing_address,omitempty"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToAccountResponse converts a domain Account to a response DTO
func ToAccountResponse(account *partner.Account) AccountResponse {
	response := AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Industry:  account.Industry,
		Website:   account.Website,
		Phone:     account.Phone,
		Email:     account.Email,
		Active:    account.Active,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	if account.BillingAddress != nil && !account.BillingAddress.IsZero() {
		response.BillingAddress = &AddressResponse{
			Street:     account.BillingAddress.Street(),
			City:       account.BillingAddress.City(),
			Region:     account.BillingAddress.Region(),
			PostalCode: account.BillingAddress.PostalCode(),
			Country:    account.BillingAddress.Country(),
		}
	}
	return response
}

// ToAccountResponses converts a slice of domain accounts to response DTOs
func ToAccountResponses(accounts []partner.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/partner"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// ContactService handles contact business operations
type ContactService struct {
	contactRepo partner.ContactRepository
	accountRepo partner.AccountRepository
	logger      *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo partner.ContactRepository, accountRepo partner.AccountRepository, logger *zap.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Create creates a contact under an existing account
func (s *ContactService) Create(ctx context.Context, ownerID uuid.UUID, req CreateContactRequest) (*ContactResponse, error) {
	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	contact, err := partner.NewContact(ownerID, req.AccountID, req.FirstName, req.LastName, req.Email)
	if err != nil {
		return nil, err
	}

	if err := contact.Update(req.FirstName, req.LastName, req.Email, req.Phone, req.JobTitle, req.Department, req.Notes); err != nil {
		return nil, err
	}

	save := s.contactRepo.Save
	if req.Primary {
		contact.MarkPrimary()
		save = s.contactRepo.SavePrimary
	}
	if err := save(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// GetByID retrieves a contact by ID
func (s *ContactService) GetByID(ctx context.Context, contactID uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	response := ToContactResponse(contact)
	return &response, nil
}

// List retrieves contacts with filtering and pagination
func (s *ContactService) List(ctx context.Context, filter ContactListFilter) ([]ContactResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.AccountID != nil {
		domainFilter.Filters = map[string]interface{}{"account_id": *filter.AccountID}
	}

	page, err := s.contactRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToContactResponses(page.Items), page.Total, nil
}

// ListByAccount lists all contacts of one account, primary first
func (s *ContactService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]ContactResponse, error) {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return nil, err
	}

	contacts, err := s.contactRepo.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return ToContactResponses(contacts), nil
}

// Update updates a contact's details
func (s *ContactService) Update(ctx context.Context, contactID uuid.UUID, req UpdateContactRequest) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	firstName := override(contact.FirstName, req.FirstName)
	lastName := override(contact.LastName, req.LastName)
	email := override(contact.Email, req.Email)
	phone := override(contact.Phone, req.Phone)
	jobTitle := override(contact.JobTitle, req.JobTitle)
	department := override(contact.Department, req.Department)
	notes := override(contact.Notes, req.Notes)

	if err := contact.Update(firstName, lastName, email, phone, jobTitle, department, notes); err != nil {
		return nil, err
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// MarkPrimary makes the contact its account's primary contact
func (s *ContactService) MarkPrimary(ctx context.Context, contactID uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	contact.MarkPrimary()
	if err := s.contactRepo.SavePrimary(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// Delete deletes a contact
func (s *ContactService) Delete(ctx context.Context, contactID uuid.UUID) error {
	if _, err := s.contactRepo.FindByID(ctx, contactID); err != nil {
		return err
	}
	return s.contactRepo.Delete(ctx, contactID)
}

func override(current string, replacement *string) string {
	if replacement != nil {
		return *replacement
	}
	return current
}

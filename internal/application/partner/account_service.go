package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/domain/partner"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// AccountService handles account business operations
type AccountService struct {
	accountRepo partner.AccountRepository
	logger      *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo partner.AccountRepository, logger *zap.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// Create creates a new account
func (s *AccountService) Create(ctx context.Context, ownerID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := partner.NewAccount(ownerID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := account.Update(req.Name, req.Industry, req.Website, req.Phone, req.Email); err != nil {
		return nil, err
	}

	if req.BillingAddress != nil {
		address, err := toAddress(req.BillingAddress)
		if err != nil {
			return nil, err
		}
		account.SetBillingAddress(address)
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	response := ToAccountResponse(account)
	return &response, nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	response := ToAccountResponse(account)
	return &response, nil
}

// List retrieves accounts with filtering and pagination
func (s *AccountService) List(ctx context.Context, filter AccountListFilter) ([]AccountResponse, int64, error) {
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

	page, err := s.accountRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAccountResponses(page.Items), page.Total, nil
}

// Update updates an account's details
func (s *AccountService) Update(ctx context.Context, accountID uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	name := account.Name
	if req.Name != nil {
		name = *req.Name
	}
	industry := account.Industry
	if req.Industry != nil {
		industry = *req.Industry
	}
	website := account.Website
	if req.Website != nil {
		website = *req.Website
	}
	phone := account.Phone
	if req.Phone != nil {
		phone = *req.Phone
	}
	email := account.Email
	if req.Email != nil {
		email = *req.Email
	}
	if err := account.Update(name, industry, website, phone, email); err != nil {
		return nil, err
	}

	if req.BillingAddress != nil {
		address, err := toAddress(req.BillingAddress)
		if err != nil {
			return nil, err
		}
		account.SetBillingAddress(address)
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	response := ToAccountResponse(account)
	return &response, nil
}

// Activate marks an account as active
func (s *AccountService) Activate(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	return s.setActive(ctx, accountID, true)
}

// Deactivate marks an account as inactive
func (s *AccountService) Deactivate(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	return s.setActive(ctx, accountID, false)
}

func (s *AccountService) setActive(ctx context.Context, accountID uuid.UUID, active bool) (*AccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if active {
		account.Activate()
	} else {
		account.Deactivate()
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	response := ToAccountResponse(account)
	return &response, nil
}

// Delete deletes an account
func (s *AccountService) Delete(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		return err
	}
	return s.accountRepo.Delete(ctx, accountID)
}

func toAddress(input *AddressInput) (valueobject.Address, error) {
	return valueobject.NewAddress(input.Street, input.City, input.Region, input.PostalCode, input.Country)
}

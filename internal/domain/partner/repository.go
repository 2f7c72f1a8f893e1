package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// AccountRepository defines the persistence contract for accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Account], error)
	Save(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ContactRepository defines the persistence contract for contacts
type ContactRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindByAccountID(ctx context.Context, accountID uuid.UUID) ([]Contact, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Contact], error)
	Save(ctx context.Context, contact *Contact) error

	// SavePrimary saves the contact and demotes the account's previous
	// primary contact in the same transaction.
	SavePrimary(ctx context.Context, contact *Contact) error

	Delete(ctx context.Context, id uuid.UUID) error
}

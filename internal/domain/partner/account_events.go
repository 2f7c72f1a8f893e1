package partner

import (
	"github.com/simbacrm/backend/internal/domain/shared"
)

// Aggregate type for account events
const AggregateTypeAccount = "Account"

// Account event types
const (
	EventTypeAccountCreated = "account.created"
)

// AccountCreatedEvent is raised when an account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, account.ID),
		Name:            account.Name,
	}
}

package partner

import (
	"github.com/google/uuid"
	"github.com/simbacrm/backend/internal/domain/shared"
)

// Aggregate type for contact events
const AggregateTypeContact = "Contact"

// Contact event types
const (
	EventTypeContactCreated = "contact.created"
)

// ContactCreatedEvent is raised when a contact is created
type ContactCreatedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID `json:"account_id"`
	FullName  string    `json:"full_name"`
}

// NewContactCreatedEvent creates a new ContactCreatedEvent
func NewContactCreatedEvent(contact *Contact) *ContactCreatedEvent {
	return &ContactCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContactCreated, AggregateTypeContact, contact.ID),
		AccountID:       contact.AccountID,
		FullName:        contact.FullName(),
	}
}

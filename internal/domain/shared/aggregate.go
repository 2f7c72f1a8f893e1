package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is an Entity that buffers domain events and carries an
// optimistic-lock version.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot embeds BaseEntity and adds the event buffer. The
// buffer is drained by the application layer after a successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version int           `gorm:"not null;default:1"`
	pending []DomainEvent `gorm:"-"`
}

func (r *BaseAggregateRoot) GetVersion() int { return r.Version }

func (r *BaseAggregateRoot) IncrementVersion() { r.Version++ }

// AddDomainEvent queues an event for publication after the aggregate
// is persisted.
func (r *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	r.pending = append(r.pending, event)
}

func (r *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return r.pending }

func (r *BaseAggregateRoot) ClearDomainEvents() { r.pending = nil }

// NewBaseAggregateRoot starts a fresh aggregate at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// OwnedAggregateRoot adds record ownership. Every CRM record belongs
// to the user who created it; ownership drives list filtering and
// assignment, not access control.
type OwnedAggregateRoot struct {
	BaseAggregateRoot
	OwnerID *uuid.UUID `gorm:"type:uuid;index"`
}

// NewOwnedAggregateRoot starts a fresh aggregate owned by ownerID.
func NewOwnedAggregateRoot(ownerID uuid.UUID) OwnedAggregateRoot {
	return OwnedAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		OwnerID:           &ownerID,
	}
}

// SetOwner reassigns the record to another user.
func (r *OwnedAggregateRoot) SetOwner(userID uuid.UUID) { r.OwnerID = &userID }

func (r *OwnedAggregateRoot) GetOwnerID() *uuid.UUID { return r.OwnerID }

package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent records a fact that happened inside an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent is embedded by every concrete event. The fields are
// exported for JSON serialization on the bus; consumers read them
// through the DomainEvent interface.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

func (ev *BaseDomainEvent) EventID() uuid.UUID     { return ev.ID }
func (ev *BaseDomainEvent) EventType() string      { return ev.Type }
func (ev *BaseDomainEvent) OccurredAt() time.Time  { return ev.Timestamp }
func (ev *BaseDomainEvent) AggregateID() uuid.UUID { return ev.AggID }
func (ev *BaseDomainEvent) AggregateType() string  { return ev.AggType }

// NewBaseDomainEvent stamps a new event with a fresh ID and the
// current time.
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}

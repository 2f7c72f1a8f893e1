package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is implemented by every persisted domain object.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries identity and audit timestamps. IDs are minted in
// the domain layer so a record is addressable before its first save.
type BaseEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (b *BaseEntity) GetID() uuid.UUID        { return b.ID }
func (b *BaseEntity) GetCreatedAt() time.Time { return b.CreatedAt }
func (b *BaseEntity) GetUpdatedAt() time.Time { return b.UpdatedAt }

// NewBaseEntity mints an ID and stamps both timestamps with the same
// instant, so CreatedAt == UpdatedAt until the first mutation.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

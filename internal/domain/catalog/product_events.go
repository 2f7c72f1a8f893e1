package catalog

import (
	"github.com/simbacrm/backend/internal/domain/shared"
)

// Aggregate type for product events
const AggregateTypeProduct = "Product"

// Product event types
const (
	EventTypeProductCreated = "product.created"
)

// ProductCreatedEvent is raised when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		SKU:             product.SKU,
		Name:            product.Name,
	}
}

package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// ProductType distinguishes physical goods from services
type ProductType string

const (
	ProductTypeProduct ProductType = "product"
	ProductTypeService ProductType = "service"
)

// IsValid checks if the product type is valid
func (t ProductType) IsValid() bool {
	return t == ProductTypeProduct || t == ProductTypeService
}

// Product represents a sellable product or service in the catalog.
// Quotes and invoices snapshot its price and description at add time, so
// later catalog changes never rewrite issued documents.
type Product struct {
	shared.OwnedAggregateRoot
	SKU         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Type        ProductType     `gorm:"type:varchar(20);not null;default:'product'"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Cost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(ownerID uuid.UUID, sku, name string, productType ProductType) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !productType.IsValid() {
		return nil, shared.NewValidationError("invalid product type: " + string(productType))
	}

	product := &Product{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		SKU:                strings.ToUpper(sku),
		Name:               name,
		Type:               productType,
		UnitPrice:          decimal.Zero,
		Cost:               decimal.Zero,
		Active:             true,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description string) error {
	if err := validateName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}

// SetPrices sets the selling price and cost
func (p *Product) SetPrices(unitPrice, cost valueobject.Money) error {
	if unitPrice.IsNegative() {
		return shared.NewValidationError("unit price cannot be negative")
	}
	if cost.IsNegative() {
		return shared.NewValidationError("cost cannot be negative")
	}

	p.UnitPrice = unitPrice.Amount()
	p.Cost = cost.Amount()
	p.UpdatedAt = time.Now()
	return nil
}

// Activate makes the product quotable again
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// Deactivate removes the product from the quotable catalog without
// touching documents that already reference it.
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// GetUnitPriceMoney returns the unit price as a Money value object
func (p *Product) GetUnitPriceMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(p.UnitPrice, valueobject.DefaultCurrency)
	return m
}

// Margin returns the per-unit margin (unit price minus cost)
func (p *Product) Margin() decimal.Decimal {
	return p.UnitPrice.Sub(p.Cost)
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simbacrm/backend/internal/domain/shared"
	"github.com/simbacrm/backend/internal/domain/shared/valueobject"
)

// DiscountType determines how a document-level discount value is interpreted
type DiscountType string

const (
	DiscountTypeFlat       DiscountType = "flat"
	DiscountTypePercentage DiscountType = "percentage"
)

// IsValid checks if the discount type is valid
func (d DiscountType) IsValid() bool {
	return d == DiscountTypeFlat || d == DiscountTypePercentage
}

// String returns the string representation
func (d DiscountType) String() string {
	return string(d)
}

var hundred = decimal.NewFromInt(100)

// PriceLine computes the total for a single line item:
// quantity × unitPrice × (1 − discountPercent/100), rounded half-up to
// 2 decimal places. Inputs are validated, never silently clamped.
func PriceLine(quantity int64, unitPrice valueobject.Money, discountPercent decimal.Decimal) (valueobject.Money, error) {
	if quantity < 1 {
		return valueobject.Money{}, shared.NewValidationError("quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return valueobject.Money{}, shared.NewValidationError("unit price cannot be negative")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return valueobject.Money{}, shared.NewValidationError("discount percent must be between 0 and 100")
	}

	total := unitPrice.MultiplyByInt(quantity).ApplyDiscount(discountPercent)
	return total.Round(2), nil
}

// DocumentTotals holds the computed financial summary of a quote or invoice.
// Every field is rounded at computation, so stored values always agree with
// a recomputation from the same inputs.
type DocumentTotals struct {
	Subtotal       valueobject.Money
	DiscountAmount valueobject.Money
	TaxAmount      valueobject.Money
	TotalAmount    valueobject.Money
}

// PriceDocument derives document totals from already-priced line totals.
//
// subtotal is the sum of the line totals. The header discount is either a
// percentage of the subtotal or a flat amount; a flat discount larger than
// the subtotal clamps to the subtotal so the document never prices negative.
// Tax applies to the post-discount amount.
func PriceDocument(lineTotals []valueobject.Money, currency valueobject.Currency, discountType DiscountType, discountValue, taxRatePercent decimal.Decimal) (DocumentTotals, error) {
	if !discountType.IsValid() {
		return DocumentTotals{}, shared.NewValidationError(fmt.Sprintf("invalid discount type: %s", discountType))
	}
	if discountValue.IsNegative() {
		return DocumentTotals{}, shared.NewValidationError("discount value cannot be negative")
	}
	if discountType == DiscountTypePercentage && discountValue.GreaterThan(hundred) {
		return DocumentTotals{}, shared.NewValidationError("percentage discount cannot exceed 100")
	}
	if taxRatePercent.IsNegative() {
		return DocumentTotals{}, shared.NewValidationError("tax rate cannot be negative")
	}

	subtotal := valueobject.Zero(currency)
	for _, lt := range lineTotals {
		var err error
		subtotal, err = subtotal.Add(lt)
		if err != nil {
			return DocumentTotals{}, err
		}
	}
	subtotal = subtotal.Round(2)

	var discountAmount valueobject.Money
	if discountType == DiscountTypePercentage {
		discountAmount = subtotal.CalculatePercentage(discountValue).Round(2)
	} else {
		flat, err := valueobject.NewMoney(discountValue, currency)
		if err != nil {
			return DocumentTotals{}, err
		}
		discountAmount = flat.Round(2)
		if exceeds, _ := discountAmount.GreaterThan(subtotal); exceeds {
			discountAmount = subtotal
		}
	}

	afterDiscount := subtotal.MustSubtract(discountAmount)
	taxAmount := afterDiscount.CalculatePercentage(taxRatePercent).Round(2)
	total := afterDiscount.MustAdd(taxAmount)

	return DocumentTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		TotalAmount:    total,
	}, nil
}

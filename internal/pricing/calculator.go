package pricing

import (
	"storefront/internal/money"

	"github.com/shopspring/decimal"
)

// Line is one priced cart line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals are the money fields stored on an order.
type Totals struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
	Currency    string
	Exponent    int32
}

// Calculate prices lines under the rules. Tax is rounded to the minor unit;
// shipping is waived when a positive threshold is reached.
func (r *Rules) Calculate(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = money.Round(subtotal, r.CurrencyExponent)

	tax := money.Round(subtotal.Mul(r.TaxRate), r.CurrencyExponent)

	shipping := r.ShippingFee
	if subtotal.IsZero() {
		shipping = decimal.Zero
	} else if r.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(r.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	shipping = money.Round(shipping, r.CurrencyExponent)

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shipping,
		Total:       subtotal.Add(tax).Add(shipping),
		Currency:    r.Currency,
		Exponent:    r.CurrencyExponent,
	}
}

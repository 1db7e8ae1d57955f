package domain

import "github.com/shopspring/decimal"

// OrderTotals holds the monetary breakdown computed at checkout.
type OrderTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals computes subtotal, tax and total for a set of priced
// line items. Amounts are rounded to cents.
func CalculateTotals(items []OrderItem, shippingCost, taxRate decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal())
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)

	return OrderTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shippingCost,
		Total:    subtotal.Add(tax).Add(shippingCost).Round(2),
	}
}

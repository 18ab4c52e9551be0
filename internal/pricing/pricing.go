// Package pricing computes order totals. It is the only place in the codebase
// allowed to derive subtotal/tax/service/total; stored totals are overwritten
// with its output on every line-item change.
package pricing

import "github.com/shopspring/decimal"

// VAT and service fee are process-wide rates, not per-order knobs.
var (
	VATRate        = decimal.RequireFromString("0.05")
	ServiceFeeRate = decimal.RequireFromString("0.05")
)

// LineItem is the minimal view of an order line the engine needs.
// Price is the snapshot captured when the item was added to the cart.
type LineItem struct {
	Price    decimal.Decimal
	Quantity int32
}

// Totals is the derived money breakdown of an order.
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

// ComputeTotals derives the full breakdown from line items. Pure and
// deterministic: subtotal = Σ price*qty, tax and service fee are flat rates
// on the subtotal rounded to cents, total is the sum of the three rounded
// values. Rounding here rather than at storage time keeps the stored total
// equal to the stored component sum even when a rate lands on a half cent.
func ComputeTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt32(it.Quantity)))
	}
	tax := subtotal.Mul(VATRate).Round(2)
	serviceFee := subtotal.Mul(ServiceFeeRate).Round(2)
	return Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		ServiceFee: serviceFee,
		Total:      subtotal.Add(tax).Add(serviceFee),
	}
}

package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals_Empty(t *testing.T) {
	got := ComputeTotals(nil)
	if !got.Subtotal.IsZero() || !got.Tax.IsZero() || !got.ServiceFee.IsZero() || !got.Total.IsZero() {
		t.Fatalf("empty items should produce all-zero totals, got %+v", got)
	}
}

func TestComputeTotals_ReferenceExample(t *testing.T) {
	// 2 x 25.00 + 1 x 40.00 at 5% VAT and 5% service.
	got := ComputeTotals([]LineItem{
		{Price: d("25"), Quantity: 2},
		{Price: d("40"), Quantity: 1},
	})

	if !got.Subtotal.Equal(d("90")) {
		t.Errorf("subtotal: got %s, want 90", got.Subtotal)
	}
	if !got.Tax.Equal(d("4.5")) {
		t.Errorf("tax: got %s, want 4.5", got.Tax)
	}
	if !got.ServiceFee.Equal(d("4.5")) {
		t.Errorf("service fee: got %s, want 4.5", got.ServiceFee)
	}
	if !got.Total.Equal(d("99")) {
		t.Errorf("total: got %s, want 99", got.Total)
	}
}

func TestComputeTotals_Reconciles(t *testing.T) {
	cases := [][]LineItem{
		{{Price: d("12.75"), Quantity: 3}},
		{{Price: d("0.01"), Quantity: 1}, {Price: d("99.99"), Quantity: 7}},
		{{Price: d("35.50"), Quantity: 2}, {Price: d("18.25"), Quantity: 4}, {Price: d("5"), Quantity: 10}},
	}

	for i, items := range cases {
		got := ComputeTotals(items)

		sum := decimal.Zero
		for _, it := range items {
			sum = sum.Add(it.Price.Mul(decimal.NewFromInt32(it.Quantity)))
		}
		if !got.Subtotal.Equal(sum) {
			t.Errorf("case %d: subtotal %s does not match item sum %s", i, got.Subtotal, sum)
		}
		if !got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.ServiceFee)) {
			t.Errorf("case %d: total %s != subtotal+tax+service", i, got.Total)
		}
	}
}

func TestComputeTotals_HalfCentRounding(t *testing.T) {
	// Subtotal 10.10 puts both rates on a half cent: 0.505 must round to 0.51
	// and the total must equal the sum of the rounded components.
	got := ComputeTotals([]LineItem{{Price: d("10.10"), Quantity: 1}})

	if !got.Tax.Equal(d("0.51")) {
		t.Errorf("tax: got %s, want 0.51", got.Tax)
	}
	if !got.ServiceFee.Equal(d("0.51")) {
		t.Errorf("service fee: got %s, want 0.51", got.ServiceFee)
	}
	if !got.Total.Equal(d("11.12")) {
		t.Errorf("total: got %s, want 11.12", got.Total)
	}
	if !got.Total.Equal(got.Subtotal.Add(got.Tax).Add(got.ServiceFee)) {
		t.Errorf("total %s != subtotal+tax+service after rounding", got.Total)
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	items := []LineItem{{Price: d("19.99"), Quantity: 5}}
	first := ComputeTotals(items)
	second := ComputeTotals(items)
	if !first.Total.Equal(second.Total) {
		t.Fatalf("same input produced different totals: %s vs %s", first.Total, second.Total)
	}
}

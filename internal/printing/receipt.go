// Package printing renders 80mm thermal receipts and dispatches them to the
// local print agent, with a PDF fallback when no printer is configured.
package printing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// receiptWidth is the character budget of an 80mm thermal roll in the font
// the agent prints with.
const receiptWidth = 42

// Line is one printed item row.
type Line struct {
	Name     string
	Quantity int32
	Price    decimal.Decimal
	Notes    string
}

// Receipt is everything needed to render one bill.
type Receipt struct {
	RestaurantName     string
	RestaurantLocation string
	OrderID            string
	TableName          string
	CreatedAt          time.Time
	Lines              []Line
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	ServiceFee         decimal.Decimal
	Total              decimal.Decimal
	PaymentMethod      string
	PaymentStatus      string
}

// Render lays the receipt out as fixed-width text, one string per printed
// line.
func (r Receipt) Render() []string {
	var out []string

	out = append(out, center(r.RestaurantName))
	if r.RestaurantLocation != "" {
		out = append(out, center(r.RestaurantLocation))
	}
	out = append(out, strings.Repeat("-", receiptWidth))
	out = append(out, leftRight("Table:", r.TableName))
	out = append(out, leftRight("Order:", shortID(r.OrderID)))
	out = append(out, leftRight("Date:", r.CreatedAt.Format("02 Jan 2006 15:04")))
	out = append(out, strings.Repeat("-", receiptWidth))

	for _, line := range r.Lines {
		qty := fmt.Sprintf("%dx ", line.Quantity)
		amount := line.Price.Mul(decimal.NewFromInt32(line.Quantity)).StringFixed(2)
		out = append(out, leftRight(qty+truncate(line.Name, receiptWidth-len(qty)-len(amount)-1), amount))
		if line.Notes != "" {
			out = append(out, "   "+truncate(line.Notes, receiptWidth-3))
		}
	}

	out = append(out, strings.Repeat("-", receiptWidth))
	out = append(out, leftRight("Subtotal", r.Subtotal.StringFixed(2)))
	out = append(out, leftRight("VAT (5%)", r.Tax.StringFixed(2)))
	out = append(out, leftRight("Service (5%)", r.ServiceFee.StringFixed(2)))
	out = append(out, leftRight("TOTAL", r.Total.StringFixed(2)))
	out = append(out, strings.Repeat("-", receiptWidth))
	out = append(out, leftRight("Payment", r.PaymentMethod+" / "+r.PaymentStatus))
	out = append(out, "")
	out = append(out, center("Thank you for dining with us!"))

	return out
}

func center(s string) string {
	s = truncate(s, receiptWidth)
	pad := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func leftRight(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		left = truncate(left, receiptWidth-len(right)-1)
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// shortID keeps the first UUID segment; the full id does not fit a roll and
// staff only need enough to tell orders apart.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return strings.ToUpper(id[:i])
	}
	return id
}

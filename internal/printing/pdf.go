package printing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderPDF produces a single-receipt PDF sized for an 80mm roll. Used when
// no thermal printer is configured or the agent is unreachable.
func RenderPDF(receipt Receipt) ([]byte, error) {
	pdf := newReceiptPDF()
	writeReceipt(pdf, receipt)
	return closePDF(pdf)
}

// RenderCombinedPDF renders several bills into one document with a summed
// footer, for settling a table that split across multiple orders.
func RenderCombinedPDF(receipts []Receipt) ([]byte, error) {
	if len(receipts) == 0 {
		return nil, fmt.Errorf("no receipts to render")
	}

	pdf := newReceiptPDF()
	for i, r := range receipts {
		if i > 0 {
			pdf.AddPage()
		}
		writeReceipt(pdf, r)
	}

	pdf.Ln(4)
	pdf.SetFont("Courier", "B", 9)
	for _, line := range combinedFooter(receipts) {
		pdf.CellFormat(0, 4.2, line, "", 1, "L", false, 0, "")
	}

	return closePDF(pdf)
}

// combinedFooter sums subtotal, VAT, service fee, and total across all bills
// and lays the breakdown out in the shared fixed-width format.
func combinedFooter(receipts []Receipt) []string {
	var subtotal, tax, serviceFee, total decimal.Decimal
	for _, r := range receipts {
		subtotal = subtotal.Add(r.Subtotal)
		tax = tax.Add(r.Tax)
		serviceFee = serviceFee.Add(r.ServiceFee)
		total = total.Add(r.Total)
	}
	return []string{
		strings.Repeat("=", receiptWidth),
		center(fmt.Sprintf("COMBINED BILL (%d orders)", len(receipts))),
		leftRight("Subtotal", subtotal.StringFixed(2)),
		leftRight("VAT (5%)", tax.StringFixed(2)),
		leftRight("Service (5%)", serviceFee.StringFixed(2)),
		leftRight("TOTAL DUE", total.StringFixed(2)),
	}
}

func newReceiptPDF() *gofpdf.Fpdf {
	// 80mm wide, tall enough for a long bill; Courier keeps the fixed-width
	// layout identical to the thermal output.
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: 80, Ht: 297},
	})
	pdf.SetMargins(4, 6, 4)
	pdf.SetAutoPageBreak(true, 6)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 8)
	return pdf
}

func writeReceipt(pdf *gofpdf.Fpdf, receipt Receipt) {
	for _, line := range receipt.Render() {
		pdf.CellFormat(0, 3.6, line, "", 1, "L", false, 0, "")
	}
}

func closePDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

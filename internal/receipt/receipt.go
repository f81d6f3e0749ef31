// Package receipt renders a one-page PDF receipt for a reservation, with a
// QR code carrying the reservation identifier.
package receipt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/pkordes/vereda-tours/internal/domain"
)

// Renderer produces receipts. The zero value is ready to use.
type Renderer struct {
	// Title heads the document; defaults to "Reservation receipt".
	Title string
}

// Render returns the PDF bytes for res. References that are not expanded
// are printed as identifiers.
func (r Renderer) Render(res domain.Reservation) ([]byte, error) {
	qr, err := qrcode.Encode(res.ID.String(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("receipt.Render: qr code: %w", err)
	}

	title := r.Title
	if title == "" {
		title = "Reservation receipt"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range [][2]string{
		{"Reservation", res.ID.String()},
		{"State", string(res.State)},
		{"Client", res.User.DisplayName(nil)},
		{"Plan", res.Plan.DisplayName(nil)},
		{"Guide", res.Guide.DisplayName(nil)},
		{"Date", domain.FormatDateTime(res.DateTime)},
		{"Participants", strconv.Itoa(res.Participants)},
		{"Meal", mealLabel(res.Meal)},
		{"Payment", paymentLabel(res.PaymentMethod)},
		{"Total", formatMoney(res.TotalPrice)},
	} {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(40, 8, line[0])
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, tr(line[1]))
		pdf.Ln(8)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt.Render: %w", err)
	}
	return buf.Bytes(), nil
}

func mealLabel(m domain.Meal) string {
	if m == domain.MealNone {
		return "none"
	}
	return string(m)
}

func paymentLabel(p domain.PaymentMethod) string {
	if p == "" {
		return "not selected"
	}
	return string(p)
}

// formatMoney renders whole currency units with thousands separators,
// e.g. "525.000 COP".
func formatMoney(m domain.Money) string {
	digits := strconv.FormatInt(m.Amount, 10)
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return strings.TrimSpace(out + " " + m.Currency)
}

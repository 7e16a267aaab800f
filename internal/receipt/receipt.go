// Package receipt renders an order as a printable PDF for the counter.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/codehasanali/rafine-web/internal/upstream"

	"github.com/phpdave11/gofpdf"
)

const shopName = "Rafine Coffee Shop"

// Render builds an A4 receipt for the given order using the
// server-supplied amounts as-is.
func Render(order upstream.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, shopName, "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order #%s", order.DisplayNumber()), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, orderTypeLabel(order.Type), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, string(order.Status), "", 1, "C", false, 0, "")
	if !order.CreatedAt.IsZero() {
		pdf.CellFormat(0, 5, "Placed: "+order.CreatedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	}
	if order.User.Name != "" {
		pdf.CellFormat(0, 5, order.User.Name, "", 1, "C", false, 0, "")
	}
	if order.User.Email != "" {
		pdf.CellFormat(0, 5, order.User.Email, "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, item := range order.Items {
		name := item.MenuItemName
		if name == "" {
			name = fmt.Sprintf("Item %d", item.MenuItemID)
		}
		pdf.CellFormat(120, 5, fmt.Sprintf("%dx %s", item.Quantity, name), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, money(item.FinalPrice), "", 1, "R", false, 0, "")

		for _, option := range item.Options {
			pdf.SetFont("Arial", "I", 8)
			pdf.CellFormat(120, 4, "  + "+option.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 4, money(option.Price), "", 1, "R", false, 0, "")
			pdf.SetFont("Arial", "", 9)
		}
		if item.Notes != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.MultiCell(0, 4, "  "+item.Notes, "", "L", false)
			pdf.SetFont("Arial", "", 9)
		}
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(120, 5, "Subtotal", "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 5, money(order.TotalAmount), "T", 1, "R", false, 0, "")
	if discount := order.TotalAmount - order.FinalAmount; discount > 0 {
		pdf.CellFormat(120, 5, "Discount", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, "-"+money(discount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, money(order.FinalAmount), "", 1, "R", false, 0, "")

	if order.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 8)
		pdf.MultiCell(0, 4, "Note: "+order.Notes, "", "L", false)
	}
	if order.EarnedPoints > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Loyalty points earned: %d", order.EarnedPoints), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orderTypeLabel(t upstream.OrderType) string {
	switch t {
	case upstream.OrderTypeDineIn:
		return "Dine In"
	case upstream.OrderTypeTakeaway:
		return "Takeaway"
	case upstream.OrderTypeDelivery:
		return "Delivery"
	default:
		return string(t)
	}
}

func money(v float64) string {
	return fmt.Sprintf("%.2f TL", v)
}

// Package mail renders order receipts and relays them over SMTP.
package mail

import (
	"time"

	"github.com/shopspring/decimal"

	"optika/internal/models"
)

var (
	freeShippingFrom = decimal.NewFromInt(50)
	flatShipping     = decimal.NewFromInt(5)
	vatRate          = decimal.NewFromFloat(0.2)
)

type ReceiptLine struct {
	Name      string
	Color     string
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Receipt is the priced view of an order used by the confirmation email.
// Total is the amount the order was placed for.
type Receipt struct {
	OrderID   string
	OrderDate string
	Customer  string
	Lines     []ReceiptLine
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Address   models.Shipping
}

func NewReceipt(order models.Order) Receipt {
	r := Receipt{
		OrderID:  order.ID.Hex(),
		Customer: order.Shipping.FullName(),
		Lines:    make([]ReceiptLine, 0, len(order.Items)),
		Total:    decimal.NewFromFloat(order.Total),
		Address:  order.Shipping,
	}

	created := order.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	r.OrderDate = created.Format("January 2, 2006")

	for _, item := range order.Items {
		unit := decimal.NewFromFloat(item.Price)
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		r.Lines = append(r.Lines, ReceiptLine{
			Name:      item.Name,
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: line,
		})
		r.Subtotal = r.Subtotal.Add(line)
	}

	if r.Subtotal.LessThan(freeShippingFrom) {
		r.Shipping = flatShipping
	}
	r.Tax = r.Subtotal.Mul(vatRate).Round(2)
	return r
}

// euro formats an amount the way the storefront prints prices.
func euro(d decimal.Decimal) string {
	return "€" + d.StringFixed(2)
}

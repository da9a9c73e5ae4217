package services

import (
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/shopspring/decimal"
)

// QuoteLine is the cost of one order within a transaction
type QuoteLine struct {
	OrderID   uint            `json:"order_id"`
	Service   string          `json:"service"`
	Shop      string          `json:"laundry_shop"`
	Pieces    int             `json:"pieces"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// Quote is the fee breakdown of a transaction
type Quote struct {
	Lines         []QuoteLine     `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
}

// QuoteOrders prices orders with their preloaded Price (and Service, LaundryShop when present).
// Orders without a loaded price contribute nothing.
func QuoteOrders(orders []models.Order, fees models.Fees) Quote {
	q := Quote{Lines: make([]QuoteLine, 0, len(orders)), Subtotal: decimal.Zero}
	for _, o := range orders {
		if o.Price == nil {
			continue
		}
		line := QuoteLine{
			OrderID:   o.ID,
			Pieces:    o.Pieces,
			UnitPrice: o.Price.Amount,
			Amount:    o.Price.Amount.Mul(decimal.NewFromInt(int64(o.Pieces))),
		}
		if o.Price.Service != nil {
			line.Service = o.Price.Service.Name
		}
		if o.Price.LaundryShop != nil {
			line.Shop = o.Price.LaundryShop.Name
		}
		q.Lines = append(q.Lines, line)
		q.Subtotal = q.Subtotal.Add(line.Amount)
	}

	q.Subtotal = q.Subtotal.Round(2)
	q.ServiceCharge = q.Subtotal.Mul(fees.ServiceCharge).Round(2)
	q.DeliveryFee = fees.DeliveryFee.Round(2)
	q.Total = q.Subtotal.Add(q.ServiceCharge).Add(q.DeliveryFee)
	return q
}

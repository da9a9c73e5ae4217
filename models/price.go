package models

import "github.com/shopspring/decimal"

const (
	PriceMaxDigits     = 10
	PriceDecimalPlaces = 2
)

// Price is the cost and duration of one service at one shop
type Price struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LaundryShopID uint            `gorm:"not null;index" json:"laundry_shop_id"`
	LaundryShop   *LaundryShop    `gorm:"foreignKey:LaundryShopID" json:"laundry_shop,omitempty"`
	ServiceID     uint            `gorm:"not null;index" json:"service_id"`
	Service       *Service        `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Amount        decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null;check:price >= 0" json:"price"`
	Duration      int             `gorm:"not null" json:"duration"`
	Orders        []Order         `gorm:"foreignKey:PriceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Price model
func (Price) TableName() string {
	return "prices"
}

package models

// Order is a line item binding a transaction to one shop price
type Order struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	PriceID       uint         `gorm:"not null;index" json:"price_id"`
	Price         *Price       `gorm:"foreignKey:PriceID" json:"price,omitempty"`
	TransactionID uint         `gorm:"not null;index" json:"transaction_id"`
	Transaction   *Transaction `gorm:"foreignKey:TransactionID" json:"-"`
	Pieces        int          `gorm:"not null;default:0;check:pieces >= 0" json:"pieces"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

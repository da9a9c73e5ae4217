package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LaundryShop is a business offering priced services
type LaundryShop struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null;index" json:"name"`
	Address
	ContactNumber string    `gorm:"size:30;not null" json:"contact_number"`
	Email         string    `gorm:"size:254" json:"email"`
	Website       string    `gorm:"size:200" json:"website"`
	HoursOpen     string    `gorm:"size:100;not null" json:"hours_open"`
	DaysOpen      string    `gorm:"size:100;not null" json:"days_open"`
	LogoKey       *string   `json:"logo_key"`                    // nullable, storage key of the uploaded logo
	LogoURL       *string   `gorm:"-" json:"logo_url,omitempty"` // computed, resolved from LogoKey
	CreatedAt     time.Time `gorm:"column:creation_date" json:"creation_date"`
	UpdatedAt     time.Time `json:"updated_at"`
	Prices        []Price   `gorm:"foreignKey:LaundryShopID;constraint:OnDelete:CASCADE" json:"prices,omitempty"`

	Location      string          `gorm:"-" json:"location"`
	AverageRating decimal.Decimal `gorm:"-" json:"average_rating"`
	Raters        int             `gorm:"-" json:"raters"`
}

// TableName specifies the table name for the LaundryShop model
func (LaundryShop) TableName() string {
	return "laundry_shops"
}

// AfterFind fills the derived location
func (s *LaundryShop) AfterFind(tx *gorm.DB) error {
	s.Location = s.Address.Location()
	return nil
}

package models

import "github.com/shopspring/decimal"

// Site identifies the deployment a fee configuration belongs to
type Site struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Domain string `gorm:"size:100;uniqueIndex;not null" json:"domain"`
	Name   string `gorm:"size:50" json:"name"`
}

// TableName specifies the table name for the Site model
func (Site) TableName() string {
	return "sites"
}

const (
	DeliveryFeeMaxDigits   = 4
	ServiceChargeMaxDigits = 3
	FeesDecimalPlaces      = 2
)

var (
	DefaultDeliveryFee   = decimal.NewFromInt(50)
	DefaultServiceCharge = decimal.RequireFromString("0.10")
)

// Fees is the per-site delivery fee and service charge configuration
type Fees struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(4,2);not null;default:50" json:"delivery_fee"`
	ServiceCharge decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0.1" json:"service_charge"`
	SiteID        uint            `gorm:"uniqueIndex;not null" json:"site_id"`
	Site          *Site           `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Fees model
func (Fees) TableName() string {
	return "fees"
}

// NewFees returns the default fee configuration for a site
func NewFees(siteID uint) Fees {
	return Fees{
		SiteID:        siteID,
		DeliveryFee:   DefaultDeliveryFee,
		ServiceCharge: DefaultServiceCharge,
	}
}

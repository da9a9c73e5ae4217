package models

// Service is a named laundry service offered by shops through prices
type Service struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Prices      []Price `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}

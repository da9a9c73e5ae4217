package models

import (
	"gorm.io/gorm"
)

// UserProfile carries the client's address and contact number
type UserProfile struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Address
	ContactNumber string `gorm:"size:30;not null" json:"contact_number"`
	Location      string `gorm:"-" json:"location"`
}

// TableName specifies the table name for the UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}

// AfterFind fills the derived location
func (p *UserProfile) AfterFind(tx *gorm.DB) error {
	p.Location = p.Address.Location()
	return nil
}

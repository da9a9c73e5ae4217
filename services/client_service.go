package services

import (
	"context"

	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"gorm.io/gorm"
)

// ClientOrder sorts clients by first then last name
const ClientOrder = "users.first_name ASC, users.last_name ASC"

// ClientService lists the profiles of laundry clients
type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// List returns one page of client profiles with their accounts.
// Scopes may filter on users.* and user_profiles.* columns.
func (s *ClientService) List(ctx context.Context, page utils.Page, scopes ...func(*gorm.DB) *gorm.DB) ([]models.UserProfile, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.UserProfile{}).
		Joins("JOIN users ON users.id = user_profiles.user_id").
		Scopes(scopes...).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.UserProfile
	err := query.
		Preload("User").
		Order(ClientOrder).
		Order("user_profiles.id ASC").
		Scopes(page.Scope).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

package services

import (
	"context"
	"errors"

	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"gorm.io/gorm"
)

// ServiceInput is the editable part of a laundry service
type ServiceInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"required"`
}

// CatalogService manages the laundry services shops can price
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// Get loads one service
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	if err := s.db.WithContext(ctx).First(&service, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &service, nil
}

// List returns one page of services
func (s *CatalogService) List(ctx context.Context, order string, page utils.Page, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Service, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Service{}).Scopes(scopes...).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Service
	if err := query.Order(order).Scopes(page.Scope).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Create adds a service; names are unique
func (s *CatalogService) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	if err := s.checkNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	service := models.Service{Name: in.Name, Description: in.Description}
	if err := s.db.WithContext(ctx).Create(&service).Error; err != nil {
		return nil, err
	}

	logger.Get().Info("service created", "service_id", service.ID, "name", service.Name)
	return &service, nil
}

// Update renames or redescribes a service
func (s *CatalogService) Update(ctx context.Context, id uint, in ServiceInput) (*models.Service, error) {
	service, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(service).Updates(map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
	}).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a service, every shop's price for it and the orders placed against those prices
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var service models.Service
		if err := tx.First(&service, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrServiceNotFound
			}
			return err
		}

		priceIDs := tx.Model(&models.Price{}).Select("id").Where("service_id = ?", id)
		if err := tx.Where("price_id IN (?)", priceIDs).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", id).Delete(&models.Price{}).Error; err != nil {
			return err
		}
		return tx.Delete(&service).Error
	})
	if err != nil {
		return err
	}

	logger.Get().Info("service deleted", "service_id", id)
	return nil
}

func (s *CatalogService) checkNameFree(ctx context.Context, name string, exceptID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Service{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrServiceExists
	}
	return nil
}

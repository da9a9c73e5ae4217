package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeesInput is the editable fee configuration
type FeesInput struct {
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
}

// FeesService reads and writes the fee configuration of the deployment's site
type FeesService struct {
	db     *gorm.DB
	domain string
}

func NewFeesService(db *gorm.DB, siteDomain string) *FeesService {
	return &FeesService{db: db, domain: siteDomain}
}

// Get returns the site's fees, creating the site and default fees on first use
func (s *FeesService) Get(ctx context.Context) (*models.Fees, error) {
	db := s.db.WithContext(ctx)

	site := models.Site{Domain: s.domain, Name: s.domain}
	if err := db.Where(models.Site{Domain: s.domain}).FirstOrCreate(&site).Error; err != nil {
		// a concurrent request may have created it first
		if err := db.Where("domain = ?", s.domain).First(&site).Error; err != nil {
			return nil, fmt.Errorf("failed to load site %s: %w", s.domain, err)
		}
	}

	var fees models.Fees
	err := db.Where("site_id = ?", site.ID).First(&fees).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fees = models.NewFees(site.ID)
		if err := db.Create(&fees).Error; err != nil {
			if err := db.Where("site_id = ?", site.ID).First(&fees).Error; err != nil {
				return nil, err
			}
		}
		return &fees, nil
	}
	if err != nil {
		return nil, err
	}
	return &fees, nil
}

// Update validates and stores new fee values
func (s *FeesService) Update(ctx context.Context, in FeesInput) (*models.Fees, error) {
	verr := &ValidationError{}
	if err := utils.ValidateAmount(in.DeliveryFee, models.DeliveryFeeMaxDigits, models.FeesDecimalPlaces); err != nil {
		verr.Add("delivery_fee", err.Error())
	}
	if err := utils.ValidateAmount(in.ServiceCharge, models.ServiceChargeMaxDigits, models.FeesDecimalPlaces); err != nil {
		verr.Add("service_charge", err.Error())
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	fees, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(fees).Updates(map[string]interface{}{
		"delivery_fee":   in.DeliveryFee,
		"service_charge": in.ServiceCharge,
	}).Error
	if err != nil {
		return nil, err
	}

	logger.Get().Info("fees updated",
		"delivery_fee", in.DeliveryFee.StringFixed(2), "service_charge", in.ServiceCharge.StringFixed(2))
	return s.Get(ctx)
}

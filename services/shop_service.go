package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/metrics"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PriceInput is one row of a shop's price set.
// Rows with an ID update that price, rows without create one, and rows with Delete remove it.
type PriceInput struct {
	ID        *uint           `json:"id"`
	ServiceID uint            `json:"service_id"`
	Price     decimal.Decimal `json:"price"`
	Duration  int             `json:"duration"`
	Delete    bool            `json:"delete"`
}

// ShopInput is the editable part of a laundry shop together with its price set
type ShopInput struct {
	Name          string       `json:"name" binding:"required,max=50"`
	Province      string       `json:"province" binding:"required,max=50"`
	City          string       `json:"city" binding:"max=50"`
	Barangay      string       `json:"barangay" binding:"required,max=50"`
	Street        string       `json:"street" binding:"max=50"`
	Building      string       `json:"building" binding:"max=50"`
	ContactNumber string       `json:"contact_number" binding:"required,contact_number"`
	Email         string       `json:"email" binding:"omitempty,email,max=254"`
	Website       string       `json:"website" binding:"omitempty,url,max=200"`
	HoursOpen     string       `json:"hours_open" binding:"required,max=100"`
	DaysOpen      string       `json:"days_open" binding:"required,max=100"`
	Prices        []PriceInput `json:"prices"`
}

func (in ShopInput) apply(shop *models.LaundryShop) {
	shop.Name = in.Name
	shop.Address = models.Address{
		Province: in.Province,
		City:     in.City,
		Barangay: in.Barangay,
		Street:   in.Street,
		Building: in.Building,
	}
	shop.ContactNumber = in.ContactNumber
	shop.Email = in.Email
	shop.Website = in.Website
	shop.HoursOpen = in.HoursOpen
	shop.DaysOpen = in.DaysOpen
}

// ShopService saves laundry shops and their price sets
type ShopService struct {
	db      *gorm.DB
	images  ImageService
	metrics *metrics.Registry
}

// NewShopService wires the shop service; images and reg may be nil
func NewShopService(db *gorm.DB, images ImageService, reg *metrics.Registry) *ShopService {
	return &ShopService{db: db, images: images, metrics: reg}
}

// Get loads a shop with its prices, services and rating
func (s *ShopService) Get(ctx context.Context, id uint) (*models.LaundryShop, error) {
	var shop models.LaundryShop
	err := s.db.WithContext(ctx).
		Preload("Prices", func(db *gorm.DB) *gorm.DB { return db.Order("prices.id") }).
		Preload("Prices.Service").
		First(&shop, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}

	if err := s.decorate(ctx, []*models.LaundryShop{&shop}); err != nil {
		return nil, err
	}
	return &shop, nil
}

// List returns one page of shops, each carrying its rating
func (s *ShopService) List(ctx context.Context, order string, page utils.Page, scopes ...func(*gorm.DB) *gorm.DB) ([]models.LaundryShop, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.LaundryShop{}).Scopes(scopes...).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shops []models.LaundryShop
	if err := query.Order(order).Scopes(page.Scope).Find(&shops).Error; err != nil {
		return nil, 0, err
	}

	ptrs := make([]*models.LaundryShop, len(shops))
	for i := range shops {
		ptrs[i] = &shops[i]
	}
	if err := s.decorate(ctx, ptrs); err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

// decorate fills the rating and logo URL of loaded shops
func (s *ShopService) decorate(ctx context.Context, shops []*models.LaundryShop) error {
	ids := make([]uint, len(shops))
	for i, shop := range shops {
		ids[i] = shop.ID
	}
	ratings, err := RatingsForShops(ctx, s.db, ids)
	if err != nil {
		return fmt.Errorf("failed to compute ratings: %w", err)
	}

	for _, shop := range shops {
		rating := ratings[shop.ID]
		shop.AverageRating = rating.Average
		shop.Raters = rating.Raters

		if s.images != nil && shop.LogoKey != nil && *shop.LogoKey != "" {
			url, err := s.images.GetImageURL(ctx, *shop.LogoKey)
			if err != nil {
				logger.Get().Warn("failed to resolve shop logo", "shop_id", shop.ID, "error", err)
				continue
			}
			shop.LogoURL = &url
		}
	}
	return nil
}

// Create saves a new shop and its price set in one database transaction
func (s *ShopService) Create(ctx context.Context, in ShopInput) (*models.LaundryShop, error) {
	if err := validatePriceSet(in.Prices, true); err != nil {
		s.countSave("rejected")
		return nil, err
	}

	var shop models.LaundryShop
	in.apply(&shop)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&shop).Error; err != nil {
			return err
		}
		return savePriceSet(tx, shop.ID, in.Prices)
	})
	if err != nil {
		s.countSave(saveOutcome(err))
		return nil, err
	}

	s.countSave("created")
	logger.Get().Info("laundry shop created", "shop_id", shop.ID, "prices", len(in.Prices))
	return s.Get(ctx, shop.ID)
}

// Update replaces a shop's fields and applies its price set changes in one database transaction
func (s *ShopService) Update(ctx context.Context, id uint, in ShopInput) (*models.LaundryShop, error) {
	if err := validatePriceSet(in.Prices, false); err != nil {
		s.countSave("rejected")
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shop models.LaundryShop
		if err := tx.First(&shop, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShopNotFound
			}
			return err
		}
		in.apply(&shop)
		if err := tx.Omit(clause.Associations).Save(&shop).Error; err != nil {
			return err
		}
		return savePriceSet(tx, shop.ID, in.Prices)
	})
	if err != nil {
		s.countSave(saveOutcome(err))
		return nil, err
	}

	s.countSave("updated")
	logger.Get().Info("laundry shop updated", "shop_id", id, "prices", len(in.Prices))
	return s.Get(ctx, id)
}

// Delete removes a shop, its prices and every order placed against those prices
func (s *ShopService) Delete(ctx context.Context, id uint) error {
	var logoKey *string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shop models.LaundryShop
		if err := tx.First(&shop, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrShopNotFound
			}
			return err
		}
		logoKey = shop.LogoKey

		priceIDs := tx.Model(&models.Price{}).Select("id").Where("laundry_shop_id = ?", id)
		if err := tx.Where("price_id IN (?)", priceIDs).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("laundry_shop_id = ?", id).Delete(&models.Price{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.LaundryShop{}, id).Error
	})
	if err != nil {
		return err
	}

	if s.images != nil && logoKey != nil {
		if err := s.images.DeleteImage(ctx, *logoKey); err != nil {
			logger.Get().Warn("failed to delete shop logo", "shop_id", id, "error", err)
		}
	}
	logger.Get().Info("laundry shop deleted", "shop_id", id)
	return nil
}

// SetLogo stores an uploaded logo and points the shop at it, removing the previous one
func (s *ShopService) SetLogo(ctx context.Context, id uint, fileHeader *multipart.FileHeader) (*models.LaundryShop, error) {
	if s.images == nil {
		return nil, ErrStorageUnavailable
	}

	var shop models.LaundryShop
	if err := s.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, err
	}

	var previous string
	if shop.LogoKey != nil {
		previous = *shop.LogoKey
	}

	key, err := s.images.UploadImage(ctx, fileHeader)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&shop).Update("logo_key", key).Error; err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			logger.Get().Warn("failed to clean up uploaded logo", "key", key, "error", delErr)
		}
		return nil, err
	}

	if previous != "" && previous != key {
		if err := s.images.DeleteImage(ctx, previous); err != nil {
			logger.Get().Warn("failed to delete previous shop logo", "shop_id", id, "error", err)
		}
	}
	return s.Get(ctx, id)
}

// validatePriceSet checks the rows that do not need the database
func validatePriceSet(rows []PriceInput, creating bool) error {
	verr := &ValidationError{}
	for i, row := range rows {
		field := func(name string) string { return fmt.Sprintf("prices[%d].%s", i, name) }
		if creating && row.ID != nil {
			verr.Add(field("id"), "a new shop has no existing prices")
			continue
		}
		if row.Delete {
			if row.ID == nil {
				verr.Add(field("id"), "only existing prices can be deleted")
			}
			continue
		}
		if row.ServiceID == 0 {
			verr.Add(field("service_id"), "this field is required")
		}
		if err := utils.ValidateAmount(row.Price, models.PriceMaxDigits, models.PriceDecimalPlaces); err != nil {
			verr.Add(field("price"), err.Error())
		}
		if row.Duration < 0 {
			verr.Add(field("duration"), "ensure this value is greater than or equal to 0")
		}
	}
	return verr.OrNil()
}

// savePriceSet applies the rows inside tx
func savePriceSet(tx *gorm.DB, shopID uint, rows []PriceInput) error {
	verr := &ValidationError{}
	for i, row := range rows {
		if !row.Delete {
			var count int64
			if err := tx.Model(&models.Service{}).Where("id = ?", row.ServiceID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				verr.Add(fmt.Sprintf("prices[%d].service_id", i), "service does not exist")
				continue
			}
		}

		if row.ID == nil {
			price := models.Price{
				LaundryShopID: shopID,
				ServiceID:     row.ServiceID,
				Amount:        row.Price,
				Duration:      row.Duration,
			}
			if err := tx.Omit(clause.Associations).Create(&price).Error; err != nil {
				return err
			}
			continue
		}

		var existing models.Price
		err := tx.Where("id = ? AND laundry_shop_id = ?", *row.ID, shopID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			verr.Add(fmt.Sprintf("prices[%d].id", i), "price does not belong to this shop")
			continue
		}
		if err != nil {
			return err
		}

		if row.Delete {
			if err := tx.Where("price_id = ?", existing.ID).Delete(&models.Order{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			continue
		}

		err = tx.Model(&existing).Updates(map[string]interface{}{
			"service_id": row.ServiceID,
			"price":      row.Price,
			"duration":   row.Duration,
		}).Error
		if err != nil {
			return err
		}
	}
	// any failed row rolls back the shop too
	return verr.OrNil()
}

func saveOutcome(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) || errors.Is(err, ErrShopNotFound) {
		return "rejected"
	}
	return "failed"
}

func (s *ShopService) countSave(outcome string) {
	if s.metrics != nil {
		s.metrics.ShopSaves.WithLabelValues(outcome).Inc()
	}
}

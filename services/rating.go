package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Rating is a shop's reputation derived from its rated transactions
type Rating struct {
	Average decimal.Decimal `json:"average_rating"`
	Raters  int             `json:"raters"`
}

// AverageRating is the mean of paws rounded half-up to two places, or 0 for no ratings
func AverageRating(paws []int) decimal.Decimal {
	if len(paws) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, p := range paws {
		sum = sum.Add(decimal.NewFromInt(int64(p)))
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(paws))), 2)
}

type ratedTransaction struct {
	LaundryShopID uint
	TransactionID uint
	Paws          int
}

// RatingsForShops computes ratings for many shops in one query.
// A transaction reached through several orders of the same shop counts once.
func RatingsForShops(ctx context.Context, db *gorm.DB, shopIDs []uint) (map[uint]Rating, error) {
	ratings := make(map[uint]Rating, len(shopIDs))
	if len(shopIDs) == 0 {
		return ratings, nil
	}

	var rows []ratedTransaction
	err := db.WithContext(ctx).
		Table("transactions").
		Select("DISTINCT prices.laundry_shop_id AS laundry_shop_id, transactions.id AS transaction_id, transactions.paws AS paws").
		Joins("JOIN orders ON orders.transaction_id = transactions.id").
		Joins("JOIN prices ON prices.id = orders.price_id").
		Where("prices.laundry_shop_id IN ?", shopIDs).
		Where("transactions.paws IS NOT NULL").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	paws := make(map[uint][]int, len(shopIDs))
	for _, r := range rows {
		paws[r.LaundryShopID] = append(paws[r.LaundryShopID], r.Paws)
	}
	for _, id := range shopIDs {
		ratings[id] = Rating{Average: AverageRating(paws[id]), Raters: len(paws[id])}
	}
	return ratings, nil
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSiteDomain = "laundrybear.test"

func TestFeesService_GetCreatesDefaults(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeesService(db, testSiteDomain)
	ctx := context.Background()

	fees, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "50.00", fees.DeliveryFee.StringFixed(2))
	assert.Equal(t, "0.10", fees.ServiceCharge.StringFixed(2))

	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, fees.ID, again.ID)

	var sites, rows int64
	db.Model(&models.Site{}).Count(&sites)
	db.Model(&models.Fees{}).Count(&rows)
	assert.Equal(t, int64(1), sites)
	assert.Equal(t, int64(1), rows)
}

func TestFeesService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeesService(db, testSiteDomain)
	ctx := context.Background()

	fees, err := svc.Update(ctx, FeesInput{
		DeliveryFee:   decimal.RequireFromString("75.50"),
		ServiceCharge: decimal.RequireFromString("0.15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "75.50", fees.DeliveryFee.StringFixed(2))
	assert.Equal(t, "0.15", fees.ServiceCharge.StringFixed(2))
}

func TestFeesService_UpdateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewFeesService(db, testSiteDomain)

	_, err := svc.Update(context.Background(), FeesInput{
		DeliveryFee:   decimal.RequireFromString("100.00"),
		ServiceCharge: decimal.RequireFromString("-0.5"),
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "delivery_fee")
	assert.Contains(t, verr.Fields, "service_charge")

	fees, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "50.00", fees.DeliveryFee.StringFixed(2), "rejected values are not saved")
}

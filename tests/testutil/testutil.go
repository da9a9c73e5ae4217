package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// It fails the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test for the rest of the test.
// Use this in suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "test")
	RequireTestEnvironment(t)
}

// SetupTestDB opens a migrated SQLite database in a temp dir and installs it, with in-memory
// token store, event publisher and image storage, as the process-wide instances.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "laundrybear.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, models.AutoMigrate(db), "Failed to migrate test database")

	config.SetDB(db)
	services.SetTokenStore(services.NewMemoryTokenStore())
	services.SetEventPublisher(services.NewMockEventPublisher())
	services.SetImageService(services.NewMockImageService())
	return db
}

// DefaultAddress is a Quezon City address used by fixtures that do not care where they are
var DefaultAddress = models.Address{Province: "Metro Manila", City: "Quezon City", Barangay: "Loyola Heights"}

// CreateAdmin stores an admin account with the given password
func CreateAdmin(t *testing.T, db *gorm.DB, username, password string) models.User {
	t.Helper()
	hash, err := services.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: hash, Role: models.RoleAdmin}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateClient stores a client account and its profile
func CreateClient(t *testing.T, db *gorm.DB, username, first, last string) models.UserProfile {
	t.Helper()
	user := models.User{Username: username, FirstName: first, LastName: last, PasswordHash: "x", Role: models.RoleClient}
	require.NoError(t, db.Create(&user).Error)
	profile := models.UserProfile{UserID: user.ID, Address: DefaultAddress, ContactNumber: "09171234567"}
	require.NoError(t, db.Create(&profile).Error)
	profile.User = &user
	return profile
}

// CreateShopWithPrice stores a shop offering one service at amount
func CreateShopWithPrice(t *testing.T, db *gorm.DB, shopName, serviceName, amount string) (models.LaundryShop, models.Price) {
	t.Helper()
	shop := models.LaundryShop{
		Name:          shopName,
		Address:       DefaultAddress,
		ContactNumber: "09171234567",
		HoursOpen:     "8AM-8PM",
		DaysOpen:      "Mon-Sat",
	}
	require.NoError(t, db.Create(&shop).Error)

	var service models.Service
	require.NoError(t, db.Where(models.Service{Name: serviceName}).
		Attrs(models.Service{Description: serviceName}).
		FirstOrCreate(&service).Error)

	price := models.Price{
		LaundryShopID: shop.ID,
		ServiceID:     service.ID,
		Amount:        decimal.RequireFromString(amount),
		Duration:      2,
	}
	require.NoError(t, db.Create(&price).Error)
	return shop, price
}

// CreatePendingTransaction stores a pending request with one order per price
func CreatePendingTransaction(t *testing.T, db *gorm.DB, client models.UserProfile, pieces int, prices ...models.Price) models.Transaction {
	t.Helper()
	txn := models.NewTransaction(client)
	require.NoError(t, db.Create(&txn).Error)
	for _, p := range prices {
		require.NoError(t, db.Create(&models.Order{PriceID: p.ID, TransactionID: txn.ID, Pieces: pieces}).Error)
	}
	return txn
}

// RateTransaction records the client's paws, as the client app does after delivery
func RateTransaction(t *testing.T, db *gorm.DB, id uint, paws int) {
	t.Helper()
	require.NoError(t, db.Model(&models.Transaction{}).Where("id = ?", id).Update("paws", paws).Error)
}

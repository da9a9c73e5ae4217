package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/controllers"
	"github.com/kendall-kelly/laundrybear-api/middleware"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/stretchr/testify/require"
)

// TestConfig is the configuration suites install with config.SetConfig
func TestConfig() *config.Config {
	return &config.Config{
		GoEnv:       "test",
		JWTSecret:   "suite-test-secret",
		JWTIssuer:   "laundrybear-admin",
		JWTAudience: "laundrybear-management",
		TokenTTL:    time.Hour,
		SiteDomain:  "laundrybear.test",
		UploadDir:   "./uploads",
	}
}

// IssueToken signs a real access token for user with cfg's secret
func IssueToken(t *testing.T, cfg *config.Config, user *models.User) *services.IssuedToken {
	t.Helper()
	token, err := services.NewAuthService(nil, cfg, nil).IssueToken(user)
	require.NoError(t, err)
	return token
}

// SignToken signs an admin-shaped token for user carrying only the given scope
func SignToken(t *testing.T, cfg *config.Config, user *models.User, scope string) string {
	t.Helper()
	now := time.Now()
	claims := services.Claims{
		Role:  user.Role,
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Audience:  jwt.ClaimStrings{cfg.JWTAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

// NewManagementRouter builds a router serving the management API behind the real token
// validation, management scope and admin role checks. Call it after SetupTestDB so it sees the test token store.
func NewManagementRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())
	config.SetConfig(cfg)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	controllers.RegisterManagementRoutes(router.Group("/api/v1/management"),
		middleware.EnsureValidToken(cfg, services.GetTokenStore()),
		middleware.RequireScope(services.ManagementScope),
		middleware.RequireRole(models.RoleAdmin),
	)
	return router
}

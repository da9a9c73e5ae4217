package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/middleware"
	"github.com/kendall-kelly/laundrybear-api/services"
)

// LoginRequest represents the request body for an admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func authService() *services.AuthService {
	return services.NewAuthService(config.GetDB(), config.GetConfig(), services.GetTokenStore())
}

// Login handles POST /api/v1/management/auth/login - issues a bearer token to an admin
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	token, user, err := authService().Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"token_type":   token.TokenType,
		"expires_in":   token.ExpiresIn,
		"expires_at":   token.ExpiresAt,
		"user":         user,
	})
}

// Logout handles POST /api/v1/management/auth/logout - revokes the caller's token
func Logout(c *gin.Context) {
	claims, err := middleware.GetClaims(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not retrieve token claims", nil)
		return
	}

	expiresAt := time.Unix(claims.RegisteredClaims.Expiry, 0)
	if err := authService().Logout(c.Request.Context(), claims.RegisteredClaims.ID, expiresAt); err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "Logged out"})
}

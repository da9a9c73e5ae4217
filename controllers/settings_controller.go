package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/shopspring/decimal"
)

// UsernameRequest represents a username change
type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// PasswordRequest represents a password change
type PasswordRequest struct {
	OldPassword  string `json:"old_password" binding:"required"`
	NewPassword1 string `json:"new_password1" binding:"required"`
	NewPassword2 string `json:"new_password2" binding:"required"`
}

// FeesRequest represents new fee values
type FeesRequest struct {
	DeliveryFee   *decimal.Decimal `json:"delivery_fee" binding:"required"`
	ServiceCharge *decimal.Decimal `json:"service_charge" binding:"required"`
}

func feesService() *services.FeesService {
	return services.NewFeesService(config.GetDB(), config.GetConfig().SiteDomain)
}

// GetSettings handles GET /api/v1/management/settings - the caller's username and the site fees
func GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := authService().GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	fees, err := feesService().Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"username": user.Username,
		"fees":     fees,
	})
}

// UpdateUsername handles PUT /api/v1/management/settings/username
func UpdateUsername(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := authService().ChangeUsername(c.Request.Context(), userID, req.Username)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}

// UpdatePassword handles PUT /api/v1/management/settings/password
func UpdatePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	err := authService().ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword1, req.NewPassword2)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "Password changed"})
}

// UpdateFees handles PUT /api/v1/management/settings/fees
func UpdateFees(c *gin.Context) {
	var req FeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	fees, err := feesService().Update(c.Request.Context(), services.FeesInput{
		DeliveryFee:   *req.DeliveryFee,
		ServiceCharge: *req.ServiceCharge,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, fees)
}

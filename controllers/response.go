package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/middleware"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
)

func respondError(c *gin.Context, status int, code, message string, details interface{}) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondList(c *gin.Context, data interface{}, pagination utils.Pagination, queryType string) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": pagination,
		"query_type": queryType,
	})
}

// bindFailed answers a request whose body could not be bound
func bindFailed(c *gin.Context, err error) {
	logger.Get().Warn("invalid request data", "route", c.FullPath(), "error", err)
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", err.Error())
}

// parseID reads a positive numeric path parameter, answering 400 when it is not one
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+param, nil)
		return 0, false
	}
	return uint(id), true
}

// currentUserID is the numeric subject of the caller's token
func currentUserID(c *gin.Context) (uint, bool) {
	subject, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return 0, false
	}
	id, err := strconv.ParseUint(subject, 10, 64)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information", nil)
		return 0, false
	}
	return uint(id), true
}

// actorID names the caller in logs and events; empty when unknown
func actorID(c *gin.Context) string {
	id, _ := middleware.GetUserID(c)
	return id
}

// handleServiceError maps service errors onto the response envelope
func handleServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var uploadErr *utils.FileUploadError
	switch {
	case errors.As(err, &verr):
		logger.Get().Warn("validation failed", "route", c.FullPath(), "fields", verr.Fields)
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", verr.Fields)
	case errors.As(err, &uploadErr):
		logger.Get().Warn("upload rejected", "route", c.FullPath(), "code", uploadErr.Code)
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message, nil)
	case errors.Is(err, services.ErrTransactionNotFound):
		respondError(c, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found", nil)
	case errors.Is(err, services.ErrShopNotFound):
		respondError(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Laundry shop not found", nil)
	case errors.Is(err, services.ErrServiceNotFound):
		respondError(c, http.StatusNotFound, "SERVICE_NOT_FOUND", "Service not found", nil)
	case errors.Is(err, services.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, services.ErrConcurrentModification):
		respondError(c, http.StatusConflict, "CONFLICT", "Transaction was modified by another request, reload and try again", nil)
	case errors.Is(err, services.ErrPriceLocked):
		respondError(c, http.StatusConflict, "PRICE_LOCKED", "Price can only be changed while a transaction is ongoing", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	case errors.Is(err, services.ErrUsernameExists):
		respondError(c, http.StatusConflict, "USERNAME_EXISTS", "A user with that username already exists", nil)
	case errors.Is(err, services.ErrServiceExists):
		respondError(c, http.StatusConflict, "SERVICE_EXISTS", "Service with this name already exists", nil)
	case errors.Is(err, services.ErrStorageUnavailable):
		respondError(c, http.StatusInternalServerError, "STORAGE_ERROR", "Image storage is not configured", nil)
	default:
		logger.Get().Error("request failed", "route", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Internal server error", nil)
	}
}

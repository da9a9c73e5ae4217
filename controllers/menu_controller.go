package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/config"
	"github.com/kendall-kelly/laundrybear-api/metrics"
	"github.com/kendall-kelly/laundrybear-api/services"
)

const menuPendingCount = 3

func transactionService() *services.TransactionService {
	return services.NewTransactionService(config.GetDB(), services.GetEventPublisher(), metrics.Default())
}

// GetMenu handles GET /api/v1/management/menu - the oldest pending transactions
func GetMenu(c *gin.Context) {
	pending, err := transactionService().OldestPending(c.Request.Context(), menuPendingCount)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"pending": pending})
}

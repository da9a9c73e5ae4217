package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReviewRequest represents the decision on a pending transaction
type ReviewRequest struct {
	Approve      *bool      `json:"approve" binding:"required"`
	DeliveryDate *time.Time `json:"delivery_date"`
	Version      *int       `json:"version"`
}

// DoneRequest optionally carries the version the caller saw
type DoneRequest struct {
	Version *int `json:"version"`
}

// PriceRequest represents a price edit on one ongoing transaction
type PriceRequest struct {
	Price   *decimal.Decimal `json:"price" binding:"required"`
	Version *int             `json:"version"`
}

// BulkPriceRequest represents price edits on several ongoing transactions
type BulkPriceRequest struct {
	Updates []services.PriceUpdate `json:"updates" binding:"required,min=1,dive"`
}

var transactionOrderFields = map[string]string{
	"id":            "transactions.id",
	"request_date":  "transactions.request_date",
	"delivery_date": "transactions.delivery_date",
}

// activeOrdering serves the pending and ongoing queues, oldest request first
var activeOrdering = utils.Ordering{
	Fields:  transactionOrderFields,
	Default: "transactions.request_date ASC, transactions.id ASC",
}

var historyOrdering = utils.Ordering{
	Fields:  transactionOrderFields,
	Default: "transactions.request_date DESC, transactions.id DESC",
}

// historyFilters follow a transaction to its client's names or to the shops of its orders
var historyFilters = []utils.Filter{
	{
		Param: "client_name",
		Apply: func(db *gorm.DB, value string) *gorm.DB {
			pattern := utils.ContainsPattern(value)
			return db.Where("transactions.client_id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Table("user_profiles").
					Select("user_profiles.id").
					Joins("JOIN users ON users.id = user_profiles.user_id").
					Where(utils.LikeClause("users.first_name")+" OR "+utils.LikeClause("users.last_name"), pattern, pattern))
		},
	},
	{
		Param: "laundry_shop",
		Apply: func(db *gorm.DB, value string) *gorm.DB {
			return db.Where("transactions.id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Table("orders").
					Select("orders.transaction_id").
					Joins("JOIN prices ON prices.id = orders.price_id").
					Joins("JOIN laundry_shops ON laundry_shops.id = prices.laundry_shop_id").
					Where(utils.LikeClause("laundry_shops.name"), utils.ContainsPattern(value)))
		},
	},
}

// ListPendingTransactions handles GET /api/v1/management/transactions/pending
func ListPendingTransactions(c *gin.Context) {
	page := utils.ParsePage(c)
	txns, total, err := transactionService().List(c.Request.Context(),
		[]models.TransactionStatus{models.StatusPending}, activeOrdering.Clause(c.Query("ordering")), page)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondList(c, txns, page.Paginate(total), "")
}

// ListOngoingTransactions handles GET /api/v1/management/transactions/ongoing.
// Every row carries the edit state of its price.
func ListOngoingTransactions(c *gin.Context) {
	respondOngoing(c, utils.ParsePage(c), nil, nil)
}

// UpdateOngoingPrices handles POST /api/v1/management/transactions/ongoing/prices.
// Rows are applied independently; the response lists each outcome and the refreshed page.
func UpdateOngoingPrices(c *gin.Context) {
	var req BulkPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	results := transactionService().BulkUpdatePrices(c.Request.Context(), req.Updates, actorID(c))
	errs := map[uint]map[string]string{}
	for _, r := range results {
		if r.Updated {
			continue
		}
		fields := r.Fields
		if fields == nil {
			fields = map[string]string{"non_field_errors": r.Error}
		}
		errs[r.TransactionID] = fields
	}
	if len(errs) > 0 {
		logger.Get().Warn("price edits rejected", "rejected", len(errs), "submitted", len(results))
	}

	respondOngoing(c, utils.ParsePage(c), errs, results)
}

func respondOngoing(c *gin.Context, page utils.Page, errs map[uint]map[string]string, results []services.PriceUpdateResult) {
	txns, total, err := transactionService().List(c.Request.Context(),
		[]models.TransactionStatus{models.StatusOngoing}, activeOrdering.Clause(c.Query("ordering")), page)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	body := gin.H{
		"success":    true,
		"data":       services.OngoingRows(txns, errs),
		"pagination": page.Paginate(total),
		"query_type": "",
	}
	if results != nil {
		body["results"] = results
	}
	c.JSON(http.StatusOK, body)
}

// ListTransactionHistory handles GET /api/v1/management/transactions/history - done and rejected, newest first
func ListTransactionHistory(c *gin.Context) {
	page := utils.ParsePage(c)
	scopes, queryType := utils.FilterScopes(c, historyFilters)

	txns, total, err := transactionService().List(c.Request.Context(),
		[]models.TransactionStatus{models.StatusDone, models.StatusRejected},
		historyOrdering.Clause(c.Query("ordering")), page, scopes...)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondList(c, txns, page.Paginate(total), queryType)
}

// GetTransaction handles GET /api/v1/management/transactions/:id - includes current fees and a price quote
func GetTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	txn, err := transactionService().Get(c.Request.Context(), id)
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
		"transaction": txn,
		"fees":        fees,
		"quote":       services.QuoteOrders(txn.Orders, *fees),
	})
}

// ReviewTransaction handles PUT /api/v1/management/transactions/:id/review - approve or reject a pending transaction
func ReviewTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	txn, err := transactionService().Review(c.Request.Context(), id, services.ReviewInput{
		Approve:      *req.Approve,
		DeliveryDate: req.DeliveryDate,
		Version:      req.Version,
		ActorID:      actorID(c),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, txn)
}

// MarkTransactionDone handles POST /api/v1/management/transactions/:id/done
func MarkTransactionDone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DoneRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindFailed(c, err)
			return
		}
	}

	txn, err := transactionService().MarkDone(c.Request.Context(), id, req.Version, actorID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, txn)
}

// UpdateTransactionPrice handles PUT /api/v1/management/transactions/:id/price
func UpdateTransactionPrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	txn, err := transactionService().UpdatePrice(c.Request.Context(), id, *req.Price, req.Version, actorID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, txn)
}

package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TransactionControllerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
	client models.UserProfile
	price  models.Price
}

func (s *TransactionControllerTestSuite) SetupTest() {
	t := s.T()
	s.db = setupTestDB(t)
	s.router = setupAdminRouter("1")
	s.router.GET("/menu", GetMenu)
	tx := s.router.Group("/transactions")
	tx.GET("/pending", ListPendingTransactions)
	tx.GET("/ongoing", ListOngoingTransactions)
	tx.POST("/ongoing/prices", UpdateOngoingPrices)
	tx.GET("/history", ListTransactionHistory)
	tx.GET("/:id", GetTransaction)
	tx.PUT("/:id/review", ReviewTransaction)
	tx.POST("/:id/done", MarkTransactionDone)
	tx.PUT("/:id/price", UpdateTransactionPrice)

	s.client = createClient(t, s.db, "juan", "Juan", "Dela Cruz", quezonCity)
	shop := createShop(t, s.db, "Bubbles", makati)
	s.price = createPrice(t, s.db, shop, createService(t, s.db, "Washing", "w"), "25.00")
}

func (s *TransactionControllerTestSuite) pending() models.Transaction {
	return createTransaction(s.T(), s.db, s.client, nil, 4, s.price)
}

func (s *TransactionControllerTestSuite) do(method, path string, body interface{}) map[string]interface{} {
	w := performRequest(s.router, method, path, body)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return decodeResponse(s.T(), w)
}

func (s *TransactionControllerTestSuite) TestReviewApproveThenDone() {
	txn := s.pending()

	data := s.do(http.MethodPut, fmt.Sprintf("/transactions/%d/review", txn.ID), gin.H{"approve": true})["data"].(map[string]interface{})
	s.Equal("Ongoing", data["status_name"])
	s.Equal(float64(models.StatusOngoing), data["status"])

	data = s.do(http.MethodPost, fmt.Sprintf("/transactions/%d/done", txn.ID), nil)["data"].(map[string]interface{})
	s.Equal("Done", data["status_name"])

	events := services.GetEventPublisher().(*services.MockEventPublisher).Events()
	s.Require().Len(events, 2)
	s.Equal("1", events[0].ActorID)
}

func (s *TransactionControllerTestSuite) TestReviewReject() {
	txn := s.pending()

	data := s.do(http.MethodPut, fmt.Sprintf("/transactions/%d/review", txn.ID), gin.H{"approve": false})["data"].(map[string]interface{})
	s.Equal("Rejected", data["status_name"])

	w := performRequest(s.router, http.MethodPost, fmt.Sprintf("/transactions/%d/done", txn.ID), nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_TRANSITION", errorCode(s.T(), w))
}

func (s *TransactionControllerTestSuite) TestReviewRequiresDecision() {
	txn := s.pending()

	w := performRequest(s.router, http.MethodPut, fmt.Sprintf("/transactions/%d/review", txn.ID), gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", errorCode(s.T(), w))
}

func (s *TransactionControllerTestSuite) TestPendingCannotBeDone() {
	txn := s.pending()

	w := performRequest(s.router, http.MethodPost, fmt.Sprintf("/transactions/%d/done", txn.ID), nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("INVALID_TRANSITION", errorCode(s.T(), w))
}

func (s *TransactionControllerTestSuite) TestStaleReviewConflicts() {
	txn := s.pending()

	s.do(http.MethodPut, fmt.Sprintf("/transactions/%d/review", txn.ID), gin.H{"approve": true, "version": txn.Version})

	w := performRequest(s.router, http.MethodPut, fmt.Sprintf("/transactions/%d/review", txn.ID),
		gin.H{"approve": false, "version": txn.Version})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("CONFLICT", errorCode(s.T(), w))
}

func (s *TransactionControllerTestSuite) TestReviewNotFound() {
	w := performRequest(s.router, http.MethodPut, "/transactions/999/review", gin.H{"approve": true})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("TRANSACTION_NOT_FOUND", errorCode(s.T(), w))
}

func (s *TransactionControllerTestSuite) TestPriceEdits() {
	txn := s.pending()

	w := performRequest(s.router, http.MethodPut, fmt.Sprintf("/transactions/%d/price", txn.ID), gin.H{"price": "100.00"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("PRICE_LOCKED", errorCode(s.T(), w))

	s.do(http.MethodPut, fmt.Sprintf("/transactions/%d/review", txn.ID), gin.H{"approve": true})

	data := s.do(http.MethodPut, fmt.Sprintf("/transactions/%d/price", txn.ID), gin.H{"price": "100.50"})["data"].(map[string]interface{})
	s.Equal("100.5", data["price"])

	w = performRequest(s.router, http.MethodPut, fmt.Sprintf("/transactions/%d/price", txn.ID), gin.H{"price": "1.999"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", errorCode(s.T(), w))

	w = performRequest(s.router, http.MethodPut, fmt.Sprintf("/transactions/%d/price", txn.ID), gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TransactionControllerTestSuite) TestOngoingRowsAndBulkPrices() {
	first := s.pending()
	second := s.pending()
	for _, id := range []uint{first.ID, second.ID} {
		s.do(http.MethodPut, fmt.Sprintf("/transactions/%d/review", id), gin.H{"approve": true})
	}

	response := s.do(http.MethodGet, "/transactions/ongoing", nil)
	rows := response["data"].([]interface{})
	s.Require().Len(rows, 2)
	form := rows[0].(map[string]interface{})["price_form"].(map[string]interface{})
	s.Equal(true, form["editable"])
	s.Equal(float64(1), form["version"])

	response = s.do(http.MethodPost, "/transactions/ongoing/prices", gin.H{"updates": []gin.H{
		{"transaction_id": first.ID, "price": "80.00"},
		{"transaction_id": second.ID, "price": "-3"},
	}})
	results := response["results"].([]interface{})
	s.Require().Len(results, 2)
	s.Equal(true, results[0].(map[string]interface{})["updated"])
	s.Equal(false, results[1].(map[string]interface{})["updated"])

	rows = response["data"].([]interface{})
	s.Require().Len(rows, 2)
	byID := map[float64]map[string]interface{}{}
	for _, r := range rows {
		row := r.(map[string]interface{})
		id := row["transaction"].(map[string]interface{})["id"].(float64)
		byID[id] = row["price_form"].(map[string]interface{})
	}
	s.Equal("80", byID[float64(first.ID)]["price"])
	s.Nil(byID[float64(first.ID)]["errors"])
	s.Contains(byID[float64(second.ID)]["errors"], "price")

	w := performRequest(s.router, http.MethodPost, "/transactions/ongoing/prices", gin.H{"updates": []gin.H{}})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *TransactionControllerTestSuite) TestPendingListAndMenu() {
	var ids []uint
	for i := 0; i < 4; i++ {
		ids = append(ids, s.pending().ID)
	}

	response := s.do(http.MethodGet, "/transactions/pending", nil)
	s.Len(response["data"], 4)

	menu := s.do(http.MethodGet, "/menu", nil)["data"].(map[string]interface{})
	pending := menu["pending"].([]interface{})
	s.Require().Len(pending, 3)
	s.Equal(float64(ids[0]), pending[0].(map[string]interface{})["id"])
}

func (s *TransactionControllerTestSuite) TestHistoryFilters() {
	t := s.T()
	maria := createClient(t, s.db, "maria", "Maria", "Santos", cebu)
	otherShop := createShop(t, s.db, "Suds", cebu)
	otherPrice := createPrice(t, s.db, otherShop, createService(t, s.db, "Ironing", "i"), "10.00")

	juanDone := s.pending()
	mariaRejected := createTransaction(t, s.db, maria, nil, 1, otherPrice)
	stillPending := s.pending()
	setTransactionStatus(t, s.db, juanDone.ID, models.StatusDone)
	setTransactionStatus(t, s.db, mariaRejected.ID, models.StatusRejected)

	ids := func(query string) []float64 {
		response := s.do(http.MethodGet, "/transactions/history"+query, nil)
		data, _ := response["data"].([]interface{})
		out := []float64{}
		for _, row := range data {
			out = append(out, row.(map[string]interface{})["id"].(float64))
		}
		return out
	}

	all := ids("")
	s.ElementsMatch([]float64{float64(juanDone.ID), float64(mariaRejected.ID)}, all)
	s.NotContains(all, float64(stillPending.ID))
	s.Equal([]float64{float64(mariaRejected.ID)}, ids("?client_name=SANTOS"))
	s.Equal([]float64{float64(juanDone.ID)}, ids("?laundry_shop=bubb"))
	s.Equal([]float64{float64(mariaRejected.ID)}, ids("?laundry_shop=bubb&client_name=maria"), "client name wins")
}

func (s *TransactionControllerTestSuite) rowIDs(path string) []uint {
	response := s.do(http.MethodGet, path, nil)
	data, _ := response["data"].([]interface{})
	out := []uint{}
	for _, row := range data {
		item := row.(map[string]interface{})
		if txn, ok := item["transaction"].(map[string]interface{}); ok {
			item = txn
		}
		out = append(out, uint(item["id"].(float64)))
	}
	return out
}

func (s *TransactionControllerTestSuite) TestListOrdering() {
	t := s.T()
	first, second, third := s.pending(), s.pending(), s.pending()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []uint{third.ID, first.ID, second.ID} {
		require.NoError(t, s.db.Model(&models.Transaction{}).Where("id = ?", id).
			Update("delivery_date", base.AddDate(0, 0, i)).Error)
	}

	s.Equal([]uint{third.ID, second.ID, first.ID}, s.rowIDs("/transactions/pending?ordering=-id"))
	s.Equal([]uint{third.ID, first.ID, second.ID}, s.rowIDs("/transactions/pending?ordering=delivery_date"))

	setTransactionStatus(t, s.db, first.ID, models.StatusOngoing)
	setTransactionStatus(t, s.db, second.ID, models.StatusOngoing)
	s.Equal([]uint{second.ID, first.ID}, s.rowIDs("/transactions/ongoing?ordering=-delivery_date"))

	setTransactionStatus(t, s.db, first.ID, models.StatusDone)
	setTransactionStatus(t, s.db, second.ID, models.StatusDone)
	s.Equal([]uint{first.ID, second.ID}, s.rowIDs("/transactions/history?ordering=id"))
	s.Equal([]uint{second.ID, first.ID}, s.rowIDs("/transactions/history?ordering=-id"))
}

func (s *TransactionControllerTestSuite) TestHistoryBlankFilterFallsThrough() {
	t := s.T()
	otherShop := createShop(t, s.db, "Suds", cebu)
	otherPrice := createPrice(t, s.db, otherShop, createService(t, s.db, "Ironing", "i"), "10.00")

	bubbles := s.pending()
	suds := createTransaction(t, s.db, s.client, nil, 1, otherPrice)
	setTransactionStatus(t, s.db, bubbles.ID, models.StatusDone)
	setTransactionStatus(t, s.db, suds.ID, models.StatusDone)

	response := s.do(http.MethodGet, "/transactions/history?client_name=&laundry_shop=suds", nil)
	s.Equal("laundry_shop", response["query_type"])
	s.Equal([]uint{suds.ID}, s.rowIDs("/transactions/history?client_name=&laundry_shop=suds"))
}

func (s *TransactionControllerTestSuite) TestGetWithQuote() {
	txn := s.pending()

	data := s.do(http.MethodGet, fmt.Sprintf("/transactions/%d", txn.ID), nil)["data"].(map[string]interface{})
	quote := data["quote"].(map[string]interface{})
	// 4 pieces at 25.00, 10% service charge, 50.00 delivery
	s.Equal("100", quote["subtotal"])
	s.Equal("10", quote["service_charge"])
	s.Equal("160", quote["total"])

	transaction := data["transaction"].(map[string]interface{})
	s.Equal("Pending", transaction["status_name"])
	s.Equal("Loyola Heights, Quezon City, Metro Manila", transaction["location"])
}

func TestTransactionControllerTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionControllerTestSuite))
}

func TestInvalidTransactionID(t *testing.T) {
	setupTestDB(t)
	router := setupAdminRouter("1")
	router.GET("/transactions/:id", GetTransaction)

	w := performRequest(router, http.MethodGet, "/transactions/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_ID", errorCode(t, w))
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/laundrybear-api/metrics"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	events  *MockEventPublisher
	metrics *metrics.Registry
	service *TransactionService
	client  models.UserProfile
	price   models.Price
	ctx     context.Context
}

func (s *TransactionServiceTestSuite) SetupTest() {
	t := s.T()
	s.db = setupTestDB(t)
	s.events = NewMockEventPublisher()
	s.metrics = metrics.NewRegistry()
	s.service = NewTransactionService(s.db, s.events, s.metrics)
	s.ctx = context.Background()

	s.client = createTestClient(t, s.db, "juan", "Juan", "Dela Cruz")
	shop := createTestShop(t, s.db, "Bubbles")
	washing := createTestService(t, s.db, "Washing")
	s.price = createTestPrice(t, s.db, shop, washing, "25.00")
}

func (s *TransactionServiceTestSuite) newPending() models.Transaction {
	return createTestTransaction(s.T(), s.db, s.client, nil, s.price)
}

func (s *TransactionServiceTestSuite) TestApprove() {
	txn := s.newPending()

	updated, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true, ActorID: "1"})
	s.Require().NoError(err)
	s.Equal(models.StatusOngoing, updated.Status)
	s.Equal("Ongoing", updated.StatusName)
	s.Equal(txn.Version+1, updated.Version)
	s.Require().Len(updated.Orders, 1)
	s.Equal("Washing", updated.Orders[0].Price.Service.Name)

	events := s.events.Events()
	s.Require().Len(events, 1)
	s.Equal(EventStatusChanged, events[0].Type)
	s.Equal("Pending", events[0].From)
	s.Equal("Ongoing", events[0].To)
	s.Equal(updated.Version, events[0].Version)

	s.Equal(float64(1), testutil.ToFloat64(s.metrics.TransactionTransition.WithLabelValues("Pending", "Ongoing")))
}

func (s *TransactionServiceTestSuite) TestReject() {
	txn := s.newPending()

	updated, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: false})
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, updated.Status)
}

func (s *TransactionServiceTestSuite) TestApproveWithDeliveryDate() {
	txn := s.newPending()
	when := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	updated, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true, DeliveryDate: &when})
	s.Require().NoError(err)
	s.True(updated.DeliveryDate.Equal(when))
	s.True(updated.RequestDate.Equal(txn.RequestDate), "request date never changes")
}

func (s *TransactionServiceTestSuite) TestMarkDone() {
	txn := s.newPending()
	_, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)

	done, err := s.service.MarkDone(s.ctx, txn.ID, nil, "1")
	s.Require().NoError(err)
	s.Equal(models.StatusDone, done.Status)
	s.Len(s.events.Events(), 2)
}

func (s *TransactionServiceTestSuite) TestPendingCannotJumpToDone() {
	txn := s.newPending()

	_, err := s.service.MarkDone(s.ctx, txn.ID, nil, "")
	s.ErrorIs(err, ErrInvalidTransition)

	reloaded, err := s.service.Get(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, reloaded.Status)
	s.Empty(s.events.Events())
}

func (s *TransactionServiceTestSuite) TestTerminalStatesStayPut() {
	for _, terminal := range []models.TransactionStatus{models.StatusDone, models.StatusRejected} {
		txn := s.newPending()
		setStatus(s.T(), s.db, txn.ID, terminal)

		_, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
		s.ErrorIs(err, ErrInvalidTransition)
		_, err = s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: false})
		s.ErrorIs(err, ErrInvalidTransition)
		_, err = s.service.MarkDone(s.ctx, txn.ID, nil, "")
		s.ErrorIs(err, ErrInvalidTransition)

		reloaded, err := s.service.Get(s.ctx, txn.ID)
		s.Require().NoError(err)
		s.Equal(terminal, reloaded.Status)
	}
}

func (s *TransactionServiceTestSuite) TestSecondReviewLoses() {
	txn := s.newPending()

	_, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)

	// a reviewer who loaded the pending transaction submits a reject afterwards
	_, err = s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: false, Version: intPtr(txn.Version)})
	s.ErrorIs(err, ErrConcurrentModification)

	reloaded, err := s.service.Get(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOngoing, reloaded.Status)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.TransactionConflicts))
}

func (s *TransactionServiceTestSuite) TestStaleConditionalUpdate() {
	txn := s.newPending()
	stale, err := s.service.load(s.ctx, txn.ID)
	s.Require().NoError(err)

	_, err = s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)

	err = s.service.conditionalUpdate(s.ctx, stale, map[string]interface{}{"status": models.StatusRejected})
	s.ErrorIs(err, ErrConcurrentModification)

	reloaded, err := s.service.Get(s.ctx, txn.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusOngoing, reloaded.Status)
}

func (s *TransactionServiceTestSuite) TestNotFound() {
	_, err := s.service.Review(s.ctx, 9999, ReviewInput{Approve: true})
	s.ErrorIs(err, ErrTransactionNotFound)
	_, err = s.service.Get(s.ctx, 9999)
	s.ErrorIs(err, ErrTransactionNotFound)
	_, err = s.service.UpdatePrice(s.ctx, 9999, decimal.NewFromInt(1), nil, "")
	s.ErrorIs(err, ErrTransactionNotFound)
}

func (s *TransactionServiceTestSuite) TestUpdatePrice() {
	txn := s.newPending()

	_, err := s.service.UpdatePrice(s.ctx, txn.ID, decimal.RequireFromString("120.50"), nil, "")
	s.ErrorIs(err, ErrPriceLocked, "pending transactions cannot be priced")

	ongoing, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)

	updated, err := s.service.UpdatePrice(s.ctx, txn.ID, decimal.RequireFromString("120.50"), intPtr(ongoing.Version), "1")
	s.Require().NoError(err)
	s.Equal("120.50", updated.Price.StringFixed(2))
	s.Equal(ongoing.Version+1, updated.Version)

	events := s.events.Events()
	s.Equal(EventPriceChanged, events[len(events)-1].Type)
	s.Equal("120.50", events[len(events)-1].Price)

	_, err = s.service.UpdatePrice(s.ctx, txn.ID, decimal.RequireFromString("1"), intPtr(ongoing.Version), "1")
	s.ErrorIs(err, ErrConcurrentModification)

	_, err = s.service.MarkDone(s.ctx, txn.ID, nil, "")
	s.Require().NoError(err)
	_, err = s.service.UpdatePrice(s.ctx, txn.ID, decimal.RequireFromString("1"), nil, "")
	s.ErrorIs(err, ErrPriceLocked)
}

func (s *TransactionServiceTestSuite) TestUpdatePriceValidation() {
	txn := s.newPending()
	_, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)

	for _, bad := range []string{"-1", "1.234", "1000000.00"} {
		_, err := s.service.UpdatePrice(s.ctx, txn.ID, decimal.RequireFromString(bad), nil, "")
		var verr *ValidationError
		s.True(errors.As(err, &verr), bad)
		s.Contains(verr.Fields, "price")
	}
}

func (s *TransactionServiceTestSuite) TestBulkUpdatePrices() {
	ongoing := s.newPending()
	_, err := s.service.Review(s.ctx, ongoing.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)
	pending := s.newPending()

	results := s.service.BulkUpdatePrices(s.ctx, []PriceUpdate{
		{TransactionID: ongoing.ID, Price: decimal.RequireFromString("99.00")},
		{TransactionID: pending.ID, Price: decimal.RequireFromString("10.00")},
		{TransactionID: ongoing.ID, Price: decimal.RequireFromString("-5")},
		{TransactionID: 4242, Price: decimal.RequireFromString("1")},
	}, "1")

	s.Require().Len(results, 4)
	s.True(results[0].Updated)
	s.Equal("99.00", results[0].Transaction.Price.StringFixed(2))
	s.False(results[1].Updated)
	s.Equal(ErrPriceLocked.Error(), results[1].Error)
	s.False(results[2].Updated)
	s.Contains(results[2].Fields, "price")
	s.False(results[3].Updated)
	s.Equal(ErrTransactionNotFound.Error(), results[3].Error)
}

func (s *TransactionServiceTestSuite) TestOngoingRows() {
	txn := s.newPending()
	ongoing, err := s.service.Review(s.ctx, txn.ID, ReviewInput{Approve: true})
	s.Require().NoError(err)

	rows := OngoingRows([]models.Transaction{*ongoing}, map[uint]map[string]string{
		ongoing.ID: {"price": "bad"},
	})
	s.Require().Len(rows, 1)
	s.True(rows[0].PriceForm.Editable)
	s.Equal(ongoing.Version, rows[0].PriceForm.Version)
	s.Equal("bad", rows[0].PriceForm.Errors["price"])
}

func (s *TransactionServiceTestSuite) TestListAndOldestPending() {
	var ids []uint
	for i := 0; i < 5; i++ {
		txn := s.newPending()
		ids = append(ids, txn.ID)
		// spread the request dates so ordering is deterministic
		s.Require().NoError(s.db.Exec("UPDATE transactions SET request_date = ? WHERE id = ?",
			time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC), txn.ID).Error)
	}
	setStatus(s.T(), s.db, ids[0], models.StatusDone)

	oldest, err := s.service.OldestPending(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(oldest, 3)
	s.Equal([]uint{ids[1], ids[2], ids[3]}, []uint{oldest[0].ID, oldest[1].ID, oldest[2].ID})

	page := utils.Page{Page: 1, Limit: 2}
	list, total, err := s.service.List(s.ctx, []models.TransactionStatus{models.StatusPending}, "request_date DESC", page)
	s.Require().NoError(err)
	s.Equal(int64(4), total)
	s.Require().Len(list, 2)
	s.Equal(ids[4], list[0].ID)
	s.NotNil(list[0].Client)
	s.NotNil(list[0].Client.User)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

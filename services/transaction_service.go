package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/laundrybear-api/logger"
	"github.com/kendall-kelly/laundrybear-api/metrics"
	"github.com/kendall-kelly/laundrybear-api/models"
	"github.com/kendall-kelly/laundrybear-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionService drives the transaction lifecycle.
// Every write is a conditional update on (id, status, version) so concurrent reviewers cannot both win.
type TransactionService struct {
	db      *gorm.DB
	events  EventPublisher
	metrics *metrics.Registry
	now     func() time.Time
}

// NewTransactionService wires the lifecycle service; events and reg may be nil
func NewTransactionService(db *gorm.DB, events EventPublisher, reg *metrics.Registry) *TransactionService {
	if events == nil {
		events = NoopEventPublisher{}
	}
	return &TransactionService{db: db, events: events, metrics: reg, now: time.Now}
}

// ReviewInput is the decision on a pending transaction
type ReviewInput struct {
	Approve      bool
	DeliveryDate *time.Time
	// Version, when set, must match the version the reviewer saw
	Version *int
	ActorID string
}

// PriceUpdate is one row of a bulk price edit
type PriceUpdate struct {
	TransactionID uint            `json:"transaction_id" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	Version       *int            `json:"version"`
}

// PriceUpdateResult reports the outcome of one row of a bulk price edit
type PriceUpdateResult struct {
	TransactionID uint                `json:"transaction_id"`
	Updated       bool                `json:"updated"`
	Transaction   *models.Transaction `json:"transaction,omitempty"`
	Error         string              `json:"error,omitempty"`
	Fields        map[string]string   `json:"fields,omitempty"`
}

// PriceForm is the edit state of an ongoing transaction's price
type PriceForm struct {
	Price    decimal.Decimal   `json:"price"`
	Version  int               `json:"version"`
	Editable bool              `json:"editable"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// OngoingRow pairs an ongoing transaction with its price form
type OngoingRow struct {
	Transaction models.Transaction `json:"transaction"`
	PriceForm   PriceForm          `json:"price_form"`
}

// OngoingRows builds one typed row per transaction; errs holds per-transaction field errors from a failed edit
func OngoingRows(txns []models.Transaction, errs map[uint]map[string]string) []OngoingRow {
	rows := make([]OngoingRow, len(txns))
	for i, t := range txns {
		rows[i] = OngoingRow{
			Transaction: t,
			PriceForm: PriceForm{
				Price:    t.Price,
				Version:  t.Version,
				Editable: t.Status == models.StatusOngoing,
				Errors:   errs[t.ID],
			},
		}
	}
	return rows
}

func (s *TransactionService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Client.User").
		Preload("Orders.Price.Service").
		Preload("Orders.Price.LaundryShop")
}

// Get loads a transaction with its client and orders
func (s *TransactionService) Get(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.preloaded(ctx).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// List returns one page of transactions in the given states
func (s *TransactionService) List(ctx context.Context, statuses []models.TransactionStatus, order string, page utils.Page, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("transactions.status IN ?", statuses).
		Scopes(scopes...).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.Transaction
	err := query.
		Preload("Client.User").
		Preload("Orders.Price.Service").
		Preload("Orders.Price.LaundryShop").
		Order(order).
		Scopes(page.Scope).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// OldestPending returns the n pending transactions requested earliest
func (s *TransactionService) OldestPending(ctx context.Context, n int) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.preloaded(ctx).
		Where("status = ?", models.StatusPending).
		Order("request_date ASC").
		Limit(n).
		Find(&txns).Error
	return txns, err
}

// Review approves (Pending to Ongoing) or rejects (Pending to Rejected) a transaction.
// An optional delivery date is saved with the decision.
func (s *TransactionService) Review(ctx context.Context, id uint, in ReviewInput) (*models.Transaction, error) {
	to := models.StatusRejected
	if in.Approve {
		to = models.StatusOngoing
	}
	extra := map[string]interface{}{}
	if in.DeliveryDate != nil {
		extra["delivery_date"] = *in.DeliveryDate
	}
	return s.transition(ctx, id, to, in.Version, extra, in.ActorID)
}

// MarkDone completes an ongoing transaction
func (s *TransactionService) MarkDone(ctx context.Context, id uint, version *int, actorID string) (*models.Transaction, error) {
	return s.transition(ctx, id, models.StatusDone, version, nil, actorID)
}

func (s *TransactionService) transition(ctx context.Context, id uint, to models.TransactionStatus, version *int, extra map[string]interface{}, actorID string) (*models.Transaction, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if version != nil && *version != current.Version {
		s.conflict()
		return nil, ErrConcurrentModification
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}

	updates := map[string]interface{}{
		"status":  to,
		"version": gorm.Expr("version + 1"),
	}
	for k, v := range extra {
		updates[k] = v
	}
	if err := s.conditionalUpdate(ctx, current, updates); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TransactionTransition.WithLabelValues(current.Status.String(), to.String()).Inc()
	}
	logger.Get().Info("transaction status changed",
		"transaction_id", id, "from", current.Status.String(), "to", to.String(), "actor_id", actorID)

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TransactionEvent{
		Type:          EventStatusChanged,
		TransactionID: id,
		From:          current.Status.String(),
		To:            to.String(),
		Version:       updated.Version,
		ActorID:       actorID,
		OccurredAt:    s.now(),
	})
	return updated, nil
}

// UpdatePrice sets the aggregate price of an ongoing transaction
func (s *TransactionService) UpdatePrice(ctx context.Context, id uint, price decimal.Decimal, version *int, actorID string) (*models.Transaction, error) {
	if err := utils.ValidateAmount(price, models.TransactionPriceMaxDigits, models.TransactionPriceDecimalPlaces); err != nil {
		return nil, NewValidationError("price", err.Error())
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusOngoing {
		return nil, ErrPriceLocked
	}
	if version != nil && *version != current.Version {
		s.conflict()
		return nil, ErrConcurrentModification
	}

	err = s.conditionalUpdate(ctx, current, map[string]interface{}{
		"price":   price,
		"version": gorm.Expr("version + 1"),
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("transaction price changed",
		"transaction_id", id, "price", price.StringFixed(2), "actor_id", actorID)

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, TransactionEvent{
		Type:          EventPriceChanged,
		TransactionID: id,
		Price:         price.StringFixed(2),
		Version:       updated.Version,
		ActorID:       actorID,
		OccurredAt:    s.now(),
	})
	return updated, nil
}

// BulkUpdatePrices applies each row independently; one failing row does not stop the others
func (s *TransactionService) BulkUpdatePrices(ctx context.Context, updates []PriceUpdate, actorID string) []PriceUpdateResult {
	results := make([]PriceUpdateResult, len(updates))
	for i, u := range updates {
		result := PriceUpdateResult{TransactionID: u.TransactionID}
		txn, err := s.UpdatePrice(ctx, u.TransactionID, u.Price, u.Version, actorID)
		var verr *ValidationError
		switch {
		case err == nil:
			result.Updated = true
			result.Transaction = txn
		case errors.As(err, &verr):
			result.Error = verr.Error()
			result.Fields = verr.Fields
		default:
			result.Error = err.Error()
		}
		results[i] = result
	}
	return results
}

func (s *TransactionService) load(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// conditionalUpdate writes only if the row still has the status and version that were read
func (s *TransactionService) conditionalUpdate(ctx context.Context, seen *models.Transaction, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ? AND version = ?", seen.ID, seen.Status, seen.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		s.conflict()
		if _, err := s.load(ctx, seen.ID); err != nil {
			return err
		}
		return ErrConcurrentModification
	}
	return nil
}

func (s *TransactionService) conflict() {
	if s.metrics != nil {
		s.metrics.TransactionConflicts.Inc()
	}
}

func (s *TransactionService) publish(ctx context.Context, event TransactionEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Get().Warn("failed to publish transaction event",
			"transaction_id", event.TransactionID, "type", event.Type, "error", err)
	}
}

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionStatus is the lifecycle state of a transaction
type TransactionStatus int

const (
	StatusPending  TransactionStatus = 1
	StatusOngoing  TransactionStatus = 2
	StatusDone     TransactionStatus = 3
	StatusRejected TransactionStatus = 4
)

// DefaultDeliveryDelay is added to the request date when no delivery date is given
const DefaultDeliveryDelay = 3 * 24 * time.Hour

const (
	TransactionPriceMaxDigits     = 8
	TransactionPriceDecimalPlaces = 2
)

var statusNames = map[TransactionStatus]string{
	StatusPending:  "Pending",
	StatusOngoing:  "Ongoing",
	StatusDone:     "Done",
	StatusRejected: "Rejected",
}

// allowed lists every legal transition; anything absent is refused
var allowed = map[TransactionStatus][]TransactionStatus{
	StatusPending: {StatusOngoing, StatusRejected},
	StatusOngoing: {StatusDone},
}

func (s TransactionStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// Terminal reports whether no transition leaves s
func (s TransactionStatus) Terminal() bool {
	return len(allowed[s]) == 0
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	for _, candidate := range allowed[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transaction is a customer's laundry request with its lifecycle status and rating
type Transaction struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ClientID    uint              `gorm:"not null;index" json:"client_id"`
	Client      *UserProfile      `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Paws        *int              `json:"paws"` // nullable, set when the client rates the transaction
	Status      TransactionStatus `gorm:"not null;default:1;index" json:"status"`
	StatusName  string            `gorm:"-" json:"status_name"`
	RequestDate time.Time         `gorm:"<-:create;not null;index" json:"request_date"`
	// DeliveryDate defaults to RequestDate + DefaultDeliveryDelay
	DeliveryDate time.Time `gorm:"not null" json:"delivery_date"`
	Address
	Location string          `gorm:"-" json:"location"`
	Price    decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"price"`
	Version  int             `gorm:"not null;default:0" json:"version"` // bumped on every status or price write
	Orders   []Order         `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"orders,omitempty"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction starts a pending transaction for a client, snapshotting the client's current address
func NewTransaction(client UserProfile) Transaction {
	return Transaction{
		ClientID: client.ID,
		Status:   StatusPending,
		Address:  client.Address,
	}
}

// BeforeCreate applies the creation-time defaults
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Status == 0 {
		t.Status = StatusPending
	}
	if t.Status != StatusPending {
		return fmt.Errorf("transactions must start as %s, got %s", StatusPending, t.Status)
	}
	if t.RequestDate.IsZero() {
		t.RequestDate = time.Now()
	}
	if t.DeliveryDate.IsZero() {
		t.DeliveryDate = t.RequestDate.Add(DefaultDeliveryDelay)
	}
	return nil
}

// AfterFind fills the derived fields
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.fillDerived()
	return nil
}

// AfterCreate fills the derived fields on freshly created rows
func (t *Transaction) AfterCreate(tx *gorm.DB) error {
	t.fillDerived()
	return nil
}

func (t *Transaction) fillDerived() {
	t.StatusName = t.Status.String()
	t.Location = t.Address.Location()
}

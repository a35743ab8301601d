package models

import (
	"cabins/src/types"
	"time"

	"github.com/google/uuid"
)

// Payment is one successful charge captured by the external processor.
// ExternalPaymentId carries the uniqueness that makes reconciliation
// idempotent under webhook redelivery.
type Payment struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	BookingID           uint       `json:"booking_id"`
	ExternalPaymentId   string     `gorm:"uniqueIndex" json:"external_payment_id"`
	Amount              int64      `json:"amount"`
	Currency            string     `json:"currency"`
	FeeAmount           int64      `json:"fee_amount,omitempty"`
	PaymentMethodId     *string    `json:"payment_method_id,omitempty"`
	LedgerTransactionID *uuid.UUID `gorm:"type:uuid" json:"ledger_transaction_id,omitempty"`
	PaidAt              time.Time  `json:"paid_at"`

	Booking *Booking `gorm:"foreignKey:booking_id" json:"-"`

	types.Timestamps
}

func (p *Payment) Total() types.Money {
	return types.Money{Amount: p.Amount, Currency: p.Currency}
}

func (p *Payment) Fee() types.Money {
	return types.Money{Amount: p.FeeAmount, Currency: p.Currency}
}

// PaymentMethod is secondary card metadata synced best-effort from the
// processor; losing it never blocks a booking confirmation.
type PaymentMethod struct {
	ID       string `gorm:"primarykey" json:"id"`
	UserID   uint   `json:"user_id,omitempty"`
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int64  `json:"exp_month,omitempty"`
	ExpYear  int64  `json:"exp_year,omitempty"`

	types.Timestamps
}

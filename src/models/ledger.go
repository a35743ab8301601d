package models

import (
	"cabins/src/types"

	"github.com/google/uuid"
)

// LedgerTransaction groups the balanced debit/credit entries posted for a
// payment or refund. Entries are append-only.
type LedgerTransaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	Description       string  `json:"description,omitempty"`
	EntityType        string  `json:"entity_type,omitempty"`
	EntityID          uint    `json:"entity_id,omitempty"`
	ExternalPaymentId *string `json:"external_payment_id,omitempty"`

	Entries []LedgerEntry `gorm:"foreignKey:transaction_id" json:"entries,omitempty"`

	types.Timestamps
}

type LedgerEntry struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid" json:"transaction_id"`
	Account       string    `json:"account"`
	Debit         int64     `json:"debit,omitempty"`
	Credit        int64     `json:"credit,omitempty"`
	Currency      string    `json:"currency"`
	BookingID     *uint     `json:"booking_id,omitempty"`
	PaymentID     *uint     `json:"payment_id,omitempty"`

	types.Timestamps
}

package models

import (
	"cabins/src/types"
	"time"

	"github.com/google/uuid"
)

// Refund is a processed reversal with its ledger transaction.
type Refund struct {
	ID                  uint       `gorm:"primarykey" json:"id"`
	BookingID           uint       `json:"booking_id"`
	PaymentID           uint       `json:"payment_id"`
	Amount              int64      `json:"amount"`
	Currency            string     `json:"currency"`
	RefundPercentage    int        `json:"refund_percentage"`
	RuleDescription     string     `json:"rule_description,omitempty"`
	LedgerTransactionID *uuid.UUID `gorm:"type:uuid" json:"ledger_transaction_id,omitempty"`
	ProcessedAt         time.Time  `json:"processed_at"`

	types.Timestamps
}

// PendingRefund parks a policy-computed refund for manual review. The
// approved amount may differ from the computed one; both are kept.
type PendingRefund struct {
	ID               uint                      `gorm:"primarykey" json:"id"`
	BookingID        uint                      `json:"booking_id"`
	PaymentID        uint                      `json:"payment_id"`
	ComputedAmount   int64                     `json:"computed_amount"`
	ApprovedAmount   *int64                    `json:"approved_amount,omitempty"`
	Currency         string                    `json:"currency"`
	RefundPercentage int                       `json:"refund_percentage"`
	RuleDescription  string                    `json:"rule_description,omitempty"`
	Reason           string                    `json:"reason,omitempty"`
	Status           types.PendingRefundStatus `gorm:"default:'pending'" json:"status"`
	RefundID         *uint                     `json:"refund_id,omitempty"`
	ResolvedBy       *uint                     `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time                `json:"resolved_at,omitempty"`

	Booking *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`

	types.Timestamps
}

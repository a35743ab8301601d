package models

import (
	"cabins/src/types"
	"time"
)

type Booking struct {
	ID            uint                  `gorm:"primarykey" json:"id"`
	ReferenceCode string                `gorm:"uniqueIndex" json:"reference_code"`
	UserID        uint                  `json:"user_id,omitempty"`
	Property      types.Property        `json:"property"`
	Mode          types.BookingMode     `json:"mode"`
	CheckinDate   time.Time             `json:"checkin_date"`
	CheckoutDate  time.Time             `json:"checkout_date"`
	GuestCount    uint                  `json:"guest_count,omitempty"`
	ChildCount    uint                  `json:"child_count,omitempty"`
	Status        types.BookingStatus   `gorm:"default:'hold'" json:"status"`
	HoldExpiresAt *time.Time            `json:"hold_expires_at,omitempty"`
	TotalAmount   int64                 `json:"total_amount"`
	Currency      string                `json:"currency"`
	Breakdown     *types.PriceBreakdown `gorm:"type:jsonb" json:"breakdown,omitempty"`
	// PaymentIntentId correlates the booking with the external processor.
	PaymentIntentId *string    `json:"payment_intent_id,omitempty"`
	CancelReason    *string    `json:"cancel_reason,omitempty"`
	CanceledAt      *time.Time `json:"canceled_at,omitempty"`

	Rooms []BookingRoom `json:"rooms,omitempty"`
	User  *User         `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}

// BookingRoom pins one room of a per-room booking for the overlap check.
type BookingRoom struct {
	BookingID uint   `gorm:"primaryKey" json:"booking_id"`
	RoomID    uint   `gorm:"primaryKey" json:"room_id"`
	RoomName  string `json:"room_name,omitempty"`
}

func (b *Booking) Total() types.Money {
	return types.Money{Amount: b.TotalAmount, Currency: b.Currency}
}

func (b *Booking) RoomIDs() []uint {
	ids := make([]uint, 0, len(b.Rooms))
	for _, r := range b.Rooms {
		ids = append(ids, r.RoomID)
	}
	return ids
}

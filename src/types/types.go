package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Property string

const (
	PROPERTY_A Property = "A"
	PROPERTY_B Property = "B"
)

type BookingMode string

const (
	MODE_BUYOUT    BookingMode = "buyout"
	MODE_PER_GUEST BookingMode = "per_guest_daily"
	MODE_PER_ROOM  BookingMode = "per_room"
)

type BookingStatus string

const (
	BOOKING_HOLD      BookingStatus = "hold"
	BOOKING_COMPLETED BookingStatus = "complete"
	BOOKING_CANCELED  BookingStatus = "canceled"
	BOOKING_REFUNDED  BookingStatus = "refunded"
)

type PendingRefundStatus string

const (
	PENDING_REFUND_OPEN      PendingRefundStatus = "pending"
	PENDING_REFUND_PROCESSED PendingRefundStatus = "processed"
)

// RoomCharge is one room's line in a per-room breakdown.
type RoomCharge struct {
	RoomID         uint   `json:"room_id"`
	RoomName       string `json:"room_name"`
	Nights         int    `json:"nights"`
	GuestCount     uint   `json:"guest_count"`
	ChildCount     uint   `json:"child_count"`
	NightlyRate    Money  `json:"nightly_rate"`
	ChildSurcharge Money  `json:"child_surcharge"`
	Subtotal       Money  `json:"subtotal"`
}

// PriceBreakdown is the structured, mode-dependent pricing detail stored
// alongside a booking for display and audit. Persisted as jsonb.
type PriceBreakdown struct {
	Mode                  BookingMode  `json:"mode"`
	Nights                int          `json:"nights"`
	GuestCount            uint         `json:"guest_count,omitempty"`
	PricePerNight         *Money       `json:"price_per_night,omitempty"`
	PricePerGuestPerNight *Money       `json:"price_per_guest_per_night,omitempty"`
	Rooms                 []RoomCharge `json:"rooms,omitempty"`
	Total                 Money        `json:"total"`
}

func (b PriceBreakdown) Value() (driver.Value, error) {
	valueString, err := json.Marshal(b)
	return string(valueString), err
}
func (b *PriceBreakdown) Scan(value any) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, b)
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type QuotePriceRequestBody struct {
	Property   string `json:"property" binding:"required,oneof=A B"`
	Mode       string `json:"mode" binding:"required,oneof=buyout per_guest_daily per_room"`
	Checkin    string `json:"checkin" binding:"required,staydate"`
	Checkout   string `json:"checkout" binding:"required,staydate"`
	RoomIDs    []uint `json:"room_ids,omitempty"`
	GuestCount uint   `json:"guest_count,omitempty"`
	ChildCount uint   `json:"child_count,omitempty"`
}

type CreateHoldRequestBody struct {
	Property   string `json:"property" binding:"required,oneof=A B"`
	Mode       string `json:"mode" binding:"required,oneof=buyout per_guest_daily per_room"`
	Checkin    string `json:"checkin" binding:"required,staydate"`
	Checkout   string `json:"checkout" binding:"required,staydate"`
	RoomIDs    []uint `json:"room_ids,omitempty"`
	GuestCount uint   `json:"guest_count" binding:"required,min=1"`
	ChildCount uint   `json:"child_count,omitempty"`
}

type CreatePaymentIntentRequestBody struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

type ConfirmPaymentRequestBody struct {
	BookingID uint `json:"booking_id" binding:"required"`
	// PaymentIntent accepts either a bare intent id or a client secret of
	// the form {intent_id}_secret_{nonce} coming back from a redirect.
	PaymentIntent  string `json:"payment_intent" binding:"required"`
	RedirectStatus string `json:"redirect_status,omitempty"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type ApprovePendingRefundRequestBody struct {
	// ApprovedAmount optionally overrides the policy-computed amount,
	// expressed in the currency's minor unit.
	ApprovedAmount *int64 `json:"approved_amount,omitempty"`
}

package models

import (
	"cabins/src/types"
	"time"
)

type User struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	Email            string     `gorm:"uniqueIndex" json:"email"`
	Name             string     `json:"name,omitempty"`
	Role             string     `gorm:"default:'member'" json:"role,omitempty"`
	StripeCustomerId *string    `json:"customer_id,omitempty"`
	MemberSince      *time.Time `json:"member_since,omitempty"`

	Bookings []*Booking `json:"bookings,omitempty"`

	types.Timestamps
}

// IsActiveMember gates the ability to place holds.
func (u *User) IsActiveMember() bool {
	return u.MemberSince != nil && !u.MemberSince.After(time.Now())
}

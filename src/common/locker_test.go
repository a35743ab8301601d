package common

import (
	"testing"
	"time"

	"cabins/src/models"
	"cabins/src/types"

	"github.com/stretchr/testify/assert"
)

func TestIsExpiredAt(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	hold := &models.Booking{Status: types.BOOKING_HOLD, HoldExpiresAt: &future}
	assert.False(t, IsExpiredAt(hold, now))

	hold.HoldExpiresAt = &past
	assert.True(t, IsExpiredAt(hold, now))

	// a hold with no expiry never expires
	hold.HoldExpiresAt = nil
	assert.False(t, IsExpiredAt(hold, now))

	// expiry boundary itself is still live
	hold.HoldExpiresAt = &now
	assert.False(t, IsExpiredAt(hold, now))
}

func TestIsExpiredAtNonHold(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)

	for _, status := range []types.BookingStatus{types.BOOKING_COMPLETED, types.BOOKING_CANCELED, types.BOOKING_REFUNDED} {
		b := &models.Booking{Status: status, HoldExpiresAt: &future}
		assert.True(t, IsExpiredAt(b, now), "status %s should not hold a window", status)
	}
}

func TestBookingRoomIDs(t *testing.T) {
	b := &models.Booking{
		Rooms: []models.BookingRoom{
			{RoomID: 1, RoomName: "Lakeside"},
			{RoomID: 2, RoomName: "Forest"},
		},
	}
	assert.Equal(t, []uint{1, 2}, b.RoomIDs())
}

package common

import (
	"testing"
	"time"

	"cabins/src/config"
	"cabins/src/types"

	"github.com/stretchr/testify/assert"
)

func testPricing() *config.Pricing {
	return &config.Pricing{
		Currency: "usd",
		Properties: map[string]config.PropertyRates{
			"A": {
				BuyoutNightly:   65000,
				PerGuestNightly: 4500,
				Rooms: []config.RoomRate{
					{ID: 1, Name: "Lakeside", NightlyRate: 10000, ChildSurcharge: 1500},
					{ID: 2, Name: "Forest", NightlyRate: 14000, ChildSurcharge: 1500},
				},
			},
		},
		RefundPolicies: []config.RefundPolicy{
			{
				Property: types.PROPERTY_A,
				Mode:     types.MODE_PER_GUEST,
				Rules: []config.RefundRule{
					{DaysBeforeCheckin: 14, RefundPercentage: 100, Description: "full refund"},
					{DaysBeforeCheckin: 7, RefundPercentage: 50, Description: "half refund"},
					{DaysBeforeCheckin: 0, RefundPercentage: 0, Description: "no refund"},
				},
			},
		},
		HoldTTLMinutes:        15,
		SweepIntervalSeconds:  30,
		RefundReviewThreshold: 50000,
	}
}

func date(s string) time.Time {
	d, _ := time.Parse(config.DATE_PARSE_FORMAT, s)
	return d
}

func TestNights(t *testing.T) {
	assert.Equal(t, 3, Nights(date("2026-06-01"), date("2026-06-04")))
	assert.Equal(t, 1, Nights(date("2026-06-01"), date("2026-06-02")))
	assert.Equal(t, 0, Nights(date("2026-06-01"), date("2026-06-01")))
	assert.Equal(t, -2, Nights(date("2026-06-03"), date("2026-06-01")))
}

func TestCalculatePricePerGuest(t *testing.T) {
	cfg := testPricing()

	// $45 per guest per night, 3 nights, 2 guests
	total, breakdown, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-04"), types.MODE_PER_GUEST, nil, 2, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(27000), total.Amount)
	assert.Equal(t, "usd", total.Currency)
	assert.Equal(t, 3, breakdown.Nights)
	assert.Equal(t, uint(2), breakdown.GuestCount)
	assert.NotNil(t, breakdown.PricePerGuestPerNight)
	assert.Equal(t, int64(4500), breakdown.PricePerGuestPerNight.Amount)
	assert.Equal(t, total, breakdown.Total)
}

func TestCalculatePriceBuyout(t *testing.T) {
	cfg := testPricing()

	total, breakdown, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-03"), types.MODE_BUYOUT, nil, 4, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(130000), total.Amount)
	assert.NotNil(t, breakdown.PricePerNight)
	assert.Equal(t, int64(65000), breakdown.PricePerNight.Amount)
}

func TestCalculatePricePerRoom(t *testing.T) {
	cfg := testPricing()

	// $100 and $140 rooms, one night, no children
	total, breakdown, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-02"), types.MODE_PER_ROOM, []uint{1, 2}, 2, 0)
	assert.Nil(t, err)
	assert.Equal(t, int64(24000), total.Amount)
	assert.Len(t, breakdown.Rooms, 2)
	assert.Equal(t, "Lakeside", breakdown.Rooms[0].RoomName)
	assert.Equal(t, int64(10000), breakdown.Rooms[0].Subtotal.Amount)
	assert.Equal(t, "Forest", breakdown.Rooms[1].RoomName)
	assert.Equal(t, int64(14000), breakdown.Rooms[1].Subtotal.Amount)
}

func TestCalculatePricePerRoomChildSurcharge(t *testing.T) {
	cfg := testPricing()

	// 2 nights, 1 child: (10000 + 1500) * 2
	total, breakdown, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-03"), types.MODE_PER_ROOM, []uint{1}, 2, 1)
	assert.Nil(t, err)
	assert.Equal(t, int64(23000), total.Amount)
	assert.Equal(t, uint(1), breakdown.Rooms[0].ChildCount)
}

func TestCalculatePriceRejectsInvalidRange(t *testing.T) {
	cfg := testPricing()

	_, _, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-04"), date("2026-06-04"), types.MODE_BUYOUT, nil, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, _, err = CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-04"), date("2026-06-01"), types.MODE_BUYOUT, nil, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCalculatePriceRequiresRooms(t *testing.T) {
	cfg := testPricing()

	_, _, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-02"), types.MODE_PER_ROOM, nil, 2, 0)
	assert.ErrorIs(t, err, ErrRoomRequired)

	_, _, err = CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-02"), types.MODE_PER_ROOM, []uint{99}, 2, 0)
	assert.ErrorIs(t, err, ErrUnknownRoom)
}

func TestCalculatePriceRejectsUnknownMode(t *testing.T) {
	cfg := testPricing()

	_, _, err := CalculatePrice(cfg, types.PROPERTY_A, date("2026-06-01"), date("2026-06-02"), types.BookingMode("hourly"), nil, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidBookingMode)
}

package common

import (
	"testing"

	"cabins/src/models"
	"cabins/src/types"

	"github.com/stretchr/testify/assert"
)

func perGuestBooking(checkin string) *models.Booking {
	return &models.Booking{
		Property:    types.PROPERTY_A,
		Mode:        types.MODE_PER_GUEST,
		CheckinDate: date(checkin),
	}
}

func TestCalculateRefundHalf(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	// 10 days out falls in the 7..13 band
	refund, rule, err := CalculateRefund(cfg, perGuestBooking("2026-06-11"), paid, date("2026-06-01"))
	assert.Nil(t, err)
	assert.NotNil(t, rule)
	assert.Equal(t, 50, rule.RefundPercentage)
	assert.Equal(t, int64(15000), refund.Amount)
}

func TestCalculateRefundFull(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	refund, rule, err := CalculateRefund(cfg, perGuestBooking("2026-06-20"), paid, date("2026-06-01"))
	assert.Nil(t, err)
	assert.NotNil(t, rule)
	assert.Equal(t, 100, rule.RefundPercentage)
	assert.Equal(t, int64(30000), refund.Amount)
}

func TestCalculateRefundNone(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	refund, rule, err := CalculateRefund(cfg, perGuestBooking("2026-06-04"), paid, date("2026-06-01"))
	assert.Nil(t, err)
	assert.NotNil(t, rule)
	assert.Equal(t, 0, rule.RefundPercentage)
	assert.Equal(t, int64(0), refund.Amount)
}

func TestCalculateRefundBandEdges(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	// exactly 14 days qualifies for the full band
	refund, rule, err := CalculateRefund(cfg, perGuestBooking("2026-06-15"), paid, date("2026-06-01"))
	assert.Nil(t, err)
	assert.Equal(t, 100, rule.RefundPercentage)
	assert.Equal(t, int64(30000), refund.Amount)

	// exactly 7 days drops to the half band
	refund, rule, err = CalculateRefund(cfg, perGuestBooking("2026-06-08"), paid, date("2026-06-01"))
	assert.Nil(t, err)
	assert.Equal(t, 50, rule.RefundPercentage)
	assert.Equal(t, int64(15000), refund.Amount)
}

func TestCalculateRefundAfterCheckin(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	// canceling mid-stay matches no rule at all
	refund, rule, err := CalculateRefund(cfg, perGuestBooking("2026-06-01"), paid, date("2026-06-03"))
	assert.Nil(t, err)
	assert.Nil(t, rule)
	assert.Equal(t, int64(0), refund.Amount)
}

func TestCalculateRefundNoPolicy(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	// no policy configured for buyout: refund in full
	booking := &models.Booking{
		Property:    types.PROPERTY_A,
		Mode:        types.MODE_BUYOUT,
		CheckinDate: date("2026-06-02"),
	}
	refund, rule, err := CalculateRefund(cfg, booking, paid, date("2026-06-01"))
	assert.Nil(t, err)
	assert.Nil(t, rule)
	assert.Equal(t, paid, refund)
}

func TestCalculateRefundMonotonic(t *testing.T) {
	cfg := testPricing()
	paid := types.NewMoney(30000, "usd")

	// earlier cancellations never refund less than later ones
	prev := int64(1 << 62)
	for days := 20; days >= 0; days-- {
		checkin := date("2026-06-01").AddDate(0, 0, days)
		booking := perGuestBooking(checkin.Format("2006-01-02"))
		refund, _, err := CalculateRefund(cfg, booking, paid, date("2026-06-01"))
		assert.Nil(t, err)
		assert.LessOrEqual(t, refund.Amount, prev)
		prev = refund.Amount
	}
}

func TestNeedsReview(t *testing.T) {
	cfg := testPricing()
	half := &cfg.RefundPolicies[0].Rules[1]
	full := &cfg.RefundPolicies[0].Rules[0]

	// partial rules always go to review
	assert.True(t, needsReview(cfg, types.NewMoney(100, "usd"), half))
	// full automatic refunds under the threshold post immediately
	assert.False(t, needsReview(cfg, types.NewMoney(30000, "usd"), full))
	// large amounts go to review even at 100%
	assert.True(t, needsReview(cfg, types.NewMoney(50000, "usd"), full))
	// no policy counts as full refund but still respects the threshold
	assert.False(t, needsReview(cfg, types.NewMoney(1000, "usd"), nil))
	assert.True(t, needsReview(cfg, types.NewMoney(90000, "usd"), nil))
}

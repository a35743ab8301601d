package common

import (
	"cabins/src/config"
	"cabins/src/models"
	"cabins/src/types"
	"sort"
	"time"
)

// DaysBeforeCheckin counts whole calendar days from asOf to checkin.
// Negative once the stay has started.
func DaysBeforeCheckin(checkin, asOf time.Time) int {
	return Nights(asOf, checkin)
}

// CalculateRefund evaluates the refund policy for a booking against the
// payment actually collected. A property/mode with no configured policy
// refunds in full; a policy where no rule matches refunds nothing. The
// returned rule is nil in both of those cases.
func CalculateRefund(cfg *config.Pricing, booking *models.Booking, payment types.Money, asOf time.Time) (types.Money, *config.RefundRule, error) {
	policy := cfg.RefundPolicyFor(booking.Property, booking.Mode)
	if policy == nil || len(policy.Rules) == 0 {
		return payment, nil, nil
	}

	days := DaysBeforeCheckin(booking.CheckinDate, asOf)

	rules := make([]config.RefundRule, len(policy.Rules))
	copy(rules, policy.Rules)
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].DaysBeforeCheckin > rules[j].DaysBeforeCheckin
	})
	for i := range rules {
		rule := rules[i]
		if rule.DaysBeforeCheckin <= days {
			return payment.Percent(rule.RefundPercentage), &rule, nil
		}
	}
	return types.ZeroMoney(payment.Currency), nil, nil
}

// needsReview parks a refund for manual approval when the applied rule is
// partial or the amount crosses the configured review threshold.
func needsReview(cfg *config.Pricing, refund types.Money, rule *config.RefundRule) bool {
	if rule != nil && rule.RefundPercentage < 100 {
		return true
	}
	return refund.Amount >= cfg.RefundReviewThreshold
}

package common

import "errors"

var (
	// ErrInvalidDateRange rejects bookings whose checkout does not fall
	// strictly after checkin.
	ErrInvalidDateRange = errors.New("checkout date must be after checkin date")

	// ErrRoomRequired rejects per-room bookings without room ids.
	ErrRoomRequired = errors.New("per-room bookings require at least one room")

	// ErrUnknownRoom rejects room ids not configured for the property.
	ErrUnknownRoom = errors.New("unknown room for property")

	ErrInvalidBookingMode = errors.New("invalid booking mode")

	// ErrResourceUnavailable means another live booking already blocks the
	// requested property/rooms/date window.
	ErrResourceUnavailable = errors.New("requested dates are no longer available")

	ErrMembershipRequired = errors.New("an active membership is required to book")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotInHoldState rejects hold-only transitions on a booking that has
	// already left the hold state.
	ErrNotInHoldState = errors.New("booking is not in hold state")

	// ErrAlreadyExpired rejects confirming a hold past its expiry, even when
	// the payment itself succeeded.
	ErrAlreadyExpired = errors.New("hold has already expired")

	ErrAlreadyCanceled = errors.New("booking is already canceled")

	// ErrPaymentVerificationFailed covers terminal retrieval failures at the
	// external processor. The caller may retry the whole confirmation.
	ErrPaymentVerificationFailed = errors.New("payment verification failed")

	// ErrPaymentNotSucceeded means the intent exists but is not in a
	// terminal-success state. No booking mutation happens.
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")

	// ErrBookingConfirmationFailed flags the inconsistent state where money
	// was collected and posted but the booking could not be confirmed.
	// Surfaced distinctly so operators can reconcile it by hand.
	ErrBookingConfirmationFailed = errors.New("payment recorded but booking confirmation failed")

	// ErrReconciliationTimeout means the payment intent never became
	// visible within the bounded retry window. Operators should check the
	// processor dashboard rather than chase an application bug.
	ErrReconciliationTimeout = errors.New("timed out waiting for payment to become visible")

	ErrPendingRefundResolved = errors.New("pending refund is already resolved")

	// ErrInvalidRefundAmount rejects approved amounts outside the range of
	// what the payment actually collected.
	ErrInvalidRefundAmount = errors.New("approved refund amount is out of range")

	ErrUnbalancedEntries = errors.New("ledger entries do not balance")
)

package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cabins/src/db"
	"cabins/src/lib"
	"cabins/src/models"
	"cabins/src/types"

	"github.com/stripe/stripe-go/v82"
)

const (
	retrieveAttempts = 5
	retrieveDelay    = 2 * time.Second
	retrieveDeadline = 20 * time.Second
)

// PaymentIdempotencyKey derives the processor-side idempotency key for a
// booking's payment intent. Retried create calls with the same key return
// the original intent instead of charging twice.
func PaymentIdempotencyKey(referenceCode string) string {
	return fmt.Sprintf("booking:%s:intent", referenceCode)
}

// CreatePaymentIntent opens a payment intent for a live hold. The booking's
// reference code keys the call idempotently, so a client retrying after a
// network failure gets the same intent back.
func CreatePaymentIntent(booking *models.Booking) (*stripe.PaymentIntent, error) {
	if booking.Status != types.BOOKING_HOLD {
		return nil, ErrNotInHoldState
	}
	if IsExpired(booking) {
		return nil, ErrAlreadyExpired
	}
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(booking.TotalAmount),
		Currency: stripe.String(booking.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"booking_id":     fmt.Sprint(booking.ID),
			"reference_code": booking.ReferenceCode,
		},
	}
	params.Params = stripe.Params{
		IdempotencyKey: stripe.String(PaymentIdempotencyKey(booking.ReferenceCode)),
	}
	sc := lib.GetStripeClient()
	pi, err := sc.V1PaymentIntents.Create(context.Background(), params)
	if err != nil {
		log.Printf("[stripe] Error creating PaymentIntent for booking %s: %s\n", booking.ReferenceCode, err.Error())
		return nil, err
	}
	conn := db.GetDb()
	if err := conn.Model(booking).Update("payment_intent_id", pi.ID).Error; err != nil {
		return nil, err
	}
	booking.PaymentIntentId = &pi.ID
	return pi, nil
}

// NormalizeIntentID reduces a client secret of the form
// {intent_id}_secret_{nonce} to the bare intent id. Bare ids pass through.
func NormalizeIntentID(ref string) string {
	if i := strings.Index(ref, "_secret_"); i > 0 {
		return ref[:i]
	}
	return ref
}

// retryableRetrieveErr classifies a retrieval failure. Propagation lag at
// the processor shows up as resource_missing right after a charge, and rate
// limits and server errors clear on their own; everything else is terminal.
func retryableRetrieveErr(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return true
		}
		if stripeErr.HTTPStatusCode == 429 || stripeErr.HTTPStatusCode >= 500 {
			return true
		}
		return false
	}
	// Transport failures without a processor response are worth retrying.
	return true
}

// retrieveIntent fetches a payment intent with the charge detail expanded,
// retrying over a bounded window to ride out propagation lag.
func retrieveIntent(ctx context.Context, intentId string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentRetrieveParams{}
	params.AddExpand("payment_method")
	params.AddExpand("latest_charge.balance_transaction")

	sc := lib.GetStripeClient()
	var lastErr error
	for attempt := 1; attempt <= retrieveAttempts; attempt++ {
		pi, err := sc.V1PaymentIntents.Retrieve(ctx, intentId, params)
		if err == nil {
			return pi, nil
		}
		lastErr = err
		if !retryableRetrieveErr(err) {
			log.Printf("[stripe] Terminal error retrieving %s: %s\n", intentId, err.Error())
			return nil, ErrPaymentVerificationFailed
		}
		log.Printf("[stripe] Retrieve %s attempt %d failed: %s\n", intentId, attempt, err.Error())
		select {
		case <-ctx.Done():
			return nil, ErrReconciliationTimeout
		case <-time.After(retrieveDelay):
		}
	}
	log.Printf("[stripe] Gave up retrieving %s after %d attempts: %s\n", intentId, retrieveAttempts, lastErr.Error())
	return nil, ErrReconciliationTimeout
}

// paymentInstrument digs the payment method id out of whichever shape the
// intent carries it in: the expanded intent-level object, or the bare id
// string on the latest charge.
func paymentInstrument(pi *stripe.PaymentIntent) *string {
	if pi.PaymentMethod != nil && pi.PaymentMethod.ID != "" {
		return &pi.PaymentMethod.ID
	}
	if pi.LatestCharge != nil && pi.LatestCharge.PaymentMethod != "" {
		id := pi.LatestCharge.PaymentMethod
		return &id
	}
	return nil
}

func processorFee(pi *stripe.PaymentIntent) int64 {
	if pi.LatestCharge != nil && pi.LatestCharge.BalanceTransaction != nil {
		return pi.LatestCharge.BalanceTransaction.Fee
	}
	return 0
}

// ProcessPaymentSuccess reconciles a reported payment success against the
// processor's record, posts it to the ledger and confirms the booking. The
// whole flow is safe to replay: posting is idempotent on the intent id and
// an already-confirmed booking reconciles to the same outcome.
func ProcessPaymentSuccess(booking *models.Booking, intentRef string) (*models.Payment, error) {
	intentId := NormalizeIntentID(intentRef)

	ctx, cancel := context.WithTimeout(context.Background(), retrieveDeadline)
	defer cancel()
	pi, err := retrieveIntent(ctx, intentId)
	if err != nil {
		return nil, err
	}

	if got, ok := pi.Metadata["booking_id"]; ok && got != fmt.Sprint(booking.ID) {
		log.Printf("[stripe] Intent %s belongs to booking %s, not %d\n", intentId, got, booking.ID)
		return nil, ErrPaymentVerificationFailed
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		log.Printf("[stripe] Intent %s is %s, not succeeded\n", intentId, pi.Status)
		return nil, ErrPaymentNotSucceeded
	}

	amount := types.NewMoney(pi.Amount, string(pi.Currency))
	fee := types.NewMoney(processorFee(pi), string(pi.Currency))
	instrument := paymentInstrument(pi)

	payment, err := PostPayment(&PostPaymentInput{
		Booking:           booking,
		ExternalPaymentId: pi.ID,
		Amount:            amount,
		Fee:               fee,
		PaymentMethodId:   instrument,
		PaidAt:            time.Now(),
	})
	if err != nil {
		return nil, err
	}

	syncPaymentMethod(booking.UserID, pi)

	if _, err := ConfirmBooking(booking.ID); err != nil {
		if errors.Is(err, ErrAlreadyExpired) {
			return nil, ErrAlreadyExpired
		}
		// The payment is posted either way. If a concurrent replay already
		// confirmed the booking this is a success; anything else needs an
		// operator.
		conn := db.GetDb()
		reloaded := &models.Booking{}
		if rerr := conn.First(reloaded, booking.ID).Error; rerr == nil && reloaded.Status == types.BOOKING_COMPLETED {
			return payment, nil
		}
		log.Printf("[booking] Payment %s posted but booking %s not confirmed: %s\n", pi.ID, booking.ReferenceCode, err.Error())
		return payment, ErrBookingConfirmationFailed
	}
	return payment, nil
}

// syncPaymentMethod stores the card metadata for display. Best effort only,
// a failure here never blocks the confirmation.
func syncPaymentMethod(userId uint, pi *stripe.PaymentIntent) {
	id := paymentInstrument(pi)
	if id == nil {
		return
	}
	record := &models.PaymentMethod{
		ID:     *id,
		UserID: userId,
	}
	if pm := pi.PaymentMethod; pm != nil && pm.Card != nil {
		record.Brand = string(pm.Card.Brand)
		record.Last4 = pm.Card.Last4
		record.ExpMonth = pm.Card.ExpMonth
		record.ExpYear = pm.Card.ExpYear
	}
	conn := db.GetDb()
	if err := conn.Save(record).Error; err != nil {
		log.Printf("[stripe] Error syncing payment method %s: %s\n", *id, err.Error())
	}
}

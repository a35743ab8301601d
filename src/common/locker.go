package common

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"cabins/src/config"
	"cabins/src/db"
	"cabins/src/models"
	"cabins/src/types"
	"cabins/src/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HoldRequest carries the validated parameters for a new hold.
type HoldRequest struct {
	UserID     uint
	Property   types.Property
	Mode       types.BookingMode
	Checkin    time.Time
	Checkout   time.Time
	RoomIDs    []uint
	GuestCount uint
	ChildCount uint
}

// CreateHold prices the stay and inserts a hold inside a serializable
// transaction, failing with ErrResourceUnavailable when any live booking
// already covers the same property, rooms and date window. Running the
// conflict scan and the insert at serializable isolation keeps two
// concurrent requests for the same window from both succeeding.
func CreateHold(cfg *config.Pricing, req *HoldRequest) (*models.Booking, error) {
	conn := db.GetDb()

	user := &models.User{}
	if err := conn.First(user, req.UserID).Error; err != nil {
		return nil, err
	}
	if !user.IsActiveMember() {
		return nil, ErrMembershipRequired
	}

	total, breakdown, err := CalculatePrice(cfg, req.Property, req.Checkin, req.Checkout, req.Mode, req.RoomIDs, req.GuestCount, req.ChildCount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(cfg.HoldTTL())
	booking := &models.Booking{
		ReferenceCode: utils.NewReferenceCode(),
		UserID:        req.UserID,
		Property:      req.Property,
		Mode:          req.Mode,
		CheckinDate:   req.Checkin,
		CheckoutDate:  req.Checkout,
		GuestCount:    req.GuestCount,
		ChildCount:    req.ChildCount,
		Status:        types.BOOKING_HOLD,
		HoldExpiresAt: &expiresAt,
		TotalAmount:   total.Amount,
		Currency:      total.Currency,
		Breakdown:     breakdown,
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		conflicts, err := conflictingBookings(tx, req, now)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrResourceUnavailable
		}
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		if req.Mode == types.MODE_PER_ROOM {
			rooms := make([]models.BookingRoom, 0, len(req.RoomIDs))
			for _, id := range req.RoomIDs {
				room, _ := cfg.Room(req.Property, id)
				rooms = append(rooms, models.BookingRoom{
					BookingID: booking.ID,
					RoomID:    id,
					RoomName:  room.Name,
				})
			}
			if err := tx.Create(&rooms).Error; err != nil {
				return err
			}
			booking.Rooms = rooms
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		if isWriteConflict(err) {
			// The losing side of a concurrent insert surfaces as a
			// serialization failure rather than a conflict count.
			return nil, ErrResourceUnavailable
		}
		return nil, err
	}
	log.Printf("[booking] Hold %s created for user %d, expires %s\n", booking.ReferenceCode, req.UserID, expiresAt.Format(time.RFC3339))
	return booking, nil
}

// isWriteConflict reports whether a transaction lost to a concurrent
// writer: a serialization failure (40001) or a unique violation (23505).
func isWriteConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "23505"
	}
	return false
}

// conflictingBookings counts live bookings that block the requested window.
// A booking is live when it is complete, or a hold that has not expired.
// Two stays conflict when their half-open date intervals overlap and either
// side books the whole property or they share at least one room.
func conflictingBookings(tx *gorm.DB, req *HoldRequest, now time.Time) (int64, error) {
	q := tx.Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("property = ?", req.Property).
		Where("checkin_date < ? AND checkout_date > ?", req.Checkout, req.Checkin).
		Where("(status = ? OR (status = ? AND (hold_expires_at IS NULL OR hold_expires_at > ?)))",
			types.BOOKING_COMPLETED, types.BOOKING_HOLD, now)
	if req.Mode == types.MODE_PER_ROOM {
		q = q.Where("(mode <> ? OR EXISTS (SELECT 1 FROM booking_rooms br WHERE br.booking_id = bookings.id AND br.room_id IN ?))",
			types.MODE_PER_ROOM, req.RoomIDs)
	}
	// FOR UPDATE does not combine with aggregates, so lock and collect ids.
	var ids []uint
	if err := q.Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// IsExpiredAt reports whether a booking no longer holds its window at the
// given instant. Non-hold statuses never hold a window; a hold with no
// expiry set never expires.
func IsExpiredAt(b *models.Booking, at time.Time) bool {
	if b.Status != types.BOOKING_HOLD {
		return true
	}
	if b.HoldExpiresAt == nil {
		return false
	}
	return at.After(*b.HoldExpiresAt)
}

func IsExpired(b *models.Booking) bool {
	return IsExpiredAt(b, time.Now())
}

// ReleaseHold moves a hold to canceled and clears its expiry. Releasing a
// booking that is already canceled or refunded is a no-op; releasing a
// completed booking is refused. The update carries the old status in its
// predicate so a concurrent confirm or sweep cannot be overwritten.
func ReleaseHold(id uint) (*models.Booking, error) {
	conn := db.GetDb()
	booking := &models.Booking{}
	if err := conn.Preload("Rooms").First(booking, id).Error; err != nil {
		return nil, ErrBookingNotFound
	}
	switch booking.Status {
	case types.BOOKING_CANCELED, types.BOOKING_REFUNDED:
		return booking, nil
	case types.BOOKING_COMPLETED:
		return nil, ErrNotInHoldState
	}
	now := time.Now()
	res := conn.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, types.BOOKING_HOLD).
		Updates(map[string]any{
			"status":          types.BOOKING_CANCELED,
			"hold_expires_at": nil,
			"canceled_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to another transition; re-read to name it.
		if err := conn.First(booking, id).Error; err != nil {
			return nil, ErrBookingNotFound
		}
		switch booking.Status {
		case types.BOOKING_CANCELED, types.BOOKING_REFUNDED:
			return booking, nil
		}
		return nil, ErrNotInHoldState
	}
	booking.Status = types.BOOKING_CANCELED
	booking.HoldExpiresAt = nil
	booking.CanceledAt = &now
	return booking, nil
}

// ConfirmBooking promotes a live hold to complete. An expired hold is
// refused even when payment already succeeded; the money stays posted and
// the caller surfaces the conflict. The update re-checks status and expiry
// in its predicate, so a hold that expired or was swept between the read
// and the write stays untouched.
func ConfirmBooking(id uint) (*models.Booking, error) {
	conn := db.GetDb()
	booking := &models.Booking{}
	if err := conn.First(booking, id).Error; err != nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status != types.BOOKING_HOLD {
		return nil, ErrNotInHoldState
	}
	if IsExpired(booking) {
		return nil, ErrAlreadyExpired
	}
	res := conn.Model(&models.Booking{}).
		Where("id = ? AND status = ? AND (hold_expires_at IS NULL OR hold_expires_at > ?)",
			id, types.BOOKING_HOLD, time.Now()).
		Updates(map[string]any{
			"status":          types.BOOKING_COMPLETED,
			"hold_expires_at": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if err := conn.First(booking, id).Error; err != nil {
			return nil, ErrBookingNotFound
		}
		if booking.Status != types.BOOKING_HOLD {
			return nil, ErrNotInHoldState
		}
		return nil, ErrAlreadyExpired
	}
	booking.Status = types.BOOKING_COMPLETED
	booking.HoldExpiresAt = nil
	return booking, nil
}

// CancelBooking cancels a booking and settles any refund due. Holds are
// simply released. A completed, paid booking gets its refund policy
// evaluated as of asOf: a zero refund just cancels, a full automatic refund
// posts immediately, and anything partial or above the review threshold is
// parked as a pending refund for manual approval.
func CancelBooking(cfg *config.Pricing, id uint, asOf time.Time, reason string, actorID uint) (*models.Booking, types.Money, *models.Refund, error) {
	conn := db.GetDb()
	booking := &models.Booking{}
	if err := conn.First(booking, id).Error; err != nil {
		return nil, types.Money{}, nil, ErrBookingNotFound
	}
	none := types.ZeroMoney(booking.Currency)

	switch booking.Status {
	case types.BOOKING_CANCELED, types.BOOKING_REFUNDED:
		return booking, none, nil, nil
	case types.BOOKING_HOLD:
		released, err := ReleaseHold(id)
		if err != nil {
			return nil, none, nil, err
		}
		if reason != "" {
			if err := conn.Model(released).Update("cancel_reason", reason).Error; err != nil {
				log.Printf("[booking] Error recording cancel reason for %s: %s\n", released.ReferenceCode, err.Error())
			} else {
				released.CancelReason = &reason
			}
		}
		return released, none, nil, nil
	}

	payment := &models.Payment{}
	err := conn.Where("booking_id = ?", booking.ID).First(payment).Error
	if err != nil {
		// A completed booking without a recorded payment cancels cleanly.
		booking, err = markCanceled(conn, booking, reason, asOf, types.BOOKING_COMPLETED, types.BOOKING_CANCELED)
		return booking, none, nil, err
	}

	refund, rule, err := CalculateRefund(cfg, booking, payment.Total(), asOf)
	if err != nil {
		return nil, none, nil, err
	}
	if refund.IsZero() {
		log.Printf("[booking] Cancel %s: no refund due\n", booking.ReferenceCode)
		booking, err = markCanceled(conn, booking, reason, asOf, types.BOOKING_COMPLETED, types.BOOKING_CANCELED)
		return booking, none, nil, err
	}

	pct := 100
	desc := "No policy configured, full refund"
	if rule != nil {
		pct = rule.RefundPercentage
		desc = rule.Description
	}

	if needsReview(cfg, refund, rule) {
		pending := &models.PendingRefund{
			BookingID:        booking.ID,
			PaymentID:        payment.ID,
			ComputedAmount:   refund.Amount,
			Currency:         refund.Currency,
			RefundPercentage: pct,
			RuleDescription:  desc,
			Reason:           reason,
			Status:           types.PENDING_REFUND_OPEN,
		}
		if err := conn.Create(pending).Error; err != nil {
			return nil, none, nil, err
		}
		log.Printf("[booking] Cancel %s: refund of %s parked for review (pending refund %d)\n", booking.ReferenceCode, refund.String(), pending.ID)
		booking, err = markCanceled(conn, booking, reason, asOf, types.BOOKING_COMPLETED, types.BOOKING_CANCELED)
		return booking, refund, nil, err
	}

	refundRecord, err := settleRefund(conn, booking, payment, refund, pct, desc, asOf)
	if err != nil {
		return nil, none, nil, err
	}
	booking, err = markCanceled(conn, booking, reason, asOf, types.BOOKING_COMPLETED, types.BOOKING_REFUNDED)
	return booking, refund, refundRecord, err
}

// markCanceled transitions from one known status to another, guarded by a
// status predicate so concurrent transitions never clobber each other. A
// race that already landed on the target status is an idempotent success.
func markCanceled(conn *gorm.DB, booking *models.Booking, reason string, asOf time.Time, from, to types.BookingStatus) (*models.Booking, error) {
	updates := map[string]any{
		"status":          to,
		"hold_expires_at": nil,
		"canceled_at":     asOf,
	}
	if reason != "" {
		updates["cancel_reason"] = reason
	}
	res := conn.Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if err := conn.First(booking, booking.ID).Error; err != nil {
			return nil, ErrBookingNotFound
		}
		if booking.Status == to {
			return booking, nil
		}
		return nil, ErrAlreadyCanceled
	}
	booking.Status = to
	booking.HoldExpiresAt = nil
	booking.CanceledAt = &asOf
	if reason != "" {
		booking.CancelReason = &reason
	}
	return booking, nil
}

// settleRefund posts the reversal to the ledger and records the refund row.
func settleRefund(conn *gorm.DB, booking *models.Booking, payment *models.Payment, amount types.Money, pct int, desc string, asOf time.Time) (*models.Refund, error) {
	txn, err := PostRefund(booking, payment, amount)
	if err != nil {
		return nil, err
	}
	refund := &models.Refund{
		BookingID:           booking.ID,
		PaymentID:           payment.ID,
		Amount:              amount.Amount,
		Currency:            amount.Currency,
		RefundPercentage:    pct,
		RuleDescription:     desc,
		LedgerTransactionID: &txn.ID,
		ProcessedAt:         asOf,
	}
	if err := conn.Create(refund).Error; err != nil {
		return nil, err
	}
	log.Printf("[booking] Refund of %s posted for booking %s (txn %s)\n", amount.String(), booking.ReferenceCode, txn.ID.String())
	return refund, nil
}

// ProcessPendingRefund resolves a parked refund. A nil approvedAmount
// accepts the policy-computed figure; resolving twice is refused.
func ProcessPendingRefund(pendingID uint, approvedAmount *int64, adminID uint) (*models.Refund, error) {
	conn := db.GetDb()
	pending := &models.PendingRefund{}
	if err := conn.First(pending, pendingID).Error; err != nil {
		return nil, err
	}
	if pending.Status != types.PENDING_REFUND_OPEN {
		return nil, ErrPendingRefundResolved
	}
	booking := &models.Booking{}
	if err := conn.First(booking, pending.BookingID).Error; err != nil {
		return nil, ErrBookingNotFound
	}
	payment := &models.Payment{}
	if err := conn.First(payment, pending.PaymentID).Error; err != nil {
		return nil, err
	}

	amount := types.NewMoney(pending.ComputedAmount, pending.Currency)
	if approvedAmount != nil {
		// An override may lower or zero the refund but never reverse more
		// than was collected.
		if *approvedAmount < 0 || *approvedAmount > payment.Amount {
			return nil, ErrInvalidRefundAmount
		}
		amount = types.NewMoney(*approvedAmount, pending.Currency)
	}

	now := time.Now()
	var refund *models.Refund
	if !amount.IsZero() {
		var err error
		refund, err = settleRefund(conn, booking, payment, amount, pending.RefundPercentage, pending.RuleDescription, now)
		if err != nil {
			return nil, err
		}
		if _, err := markCanceled(conn, booking, "", now, types.BOOKING_CANCELED, types.BOOKING_REFUNDED); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{
		"status":          types.PENDING_REFUND_PROCESSED,
		"approved_amount": amount.Amount,
		"resolved_by":     adminID,
		"resolved_at":     now,
	}
	if refund != nil {
		updates["refund_id"] = refund.ID
	}
	if err := conn.Model(pending).Updates(updates).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

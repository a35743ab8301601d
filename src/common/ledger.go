package common

import (
	"errors"
	"log"
	"time"

	"cabins/src/db"
	"cabins/src/models"
	"cabins/src/types"

	"gorm.io/gorm"
)

// Ledger account names. stripe_clearing carries the net cash expected from
// the processor; revenue and processing_fees split the gross charge.
const (
	ACCOUNT_CLEARING = "stripe_clearing"
	ACCOUNT_REVENUE  = "revenue"
	ACCOUNT_FEES     = "processing_fees"
)

type PostPaymentInput struct {
	Booking           *models.Booking
	ExternalPaymentId string
	Amount            types.Money
	Fee               types.Money
	PaymentMethodId   *string
	PaidAt            time.Time
}

// EntriesBalanced reports whether total debits equal total credits.
func EntriesBalanced(entries []models.LedgerEntry) bool {
	var debits, credits int64
	for _, e := range entries {
		debits += e.Debit
		credits += e.Credit
	}
	return debits == credits
}

// PostPayment records a successful charge as a payment row plus a balanced
// ledger transaction, atomically. Posting is idempotent on the external
// payment id: a redelivered event returns the already-recorded payment
// without touching the ledger again.
func PostPayment(in *PostPaymentInput) (*models.Payment, error) {
	conn := db.GetDb()

	existing := &models.Payment{}
	err := conn.Where("external_payment_id = ?", in.ExternalPaymentId).First(existing).Error
	if err == nil {
		log.Printf("[ledger] Payment %s already posted, skipping\n", in.ExternalPaymentId)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	net, err := in.Amount.Sub(in.Fee)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		BookingID:         in.Booking.ID,
		ExternalPaymentId: in.ExternalPaymentId,
		Amount:            in.Amount.Amount,
		Currency:          in.Amount.Currency,
		FeeAmount:         in.Fee.Amount,
		PaymentMethodId:   in.PaymentMethodId,
		PaidAt:            in.PaidAt,
	}

	err = conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		txn := &models.LedgerTransaction{
			Description:       "payment for booking " + in.Booking.ReferenceCode,
			EntityType:        "booking",
			EntityID:          in.Booking.ID,
			ExternalPaymentId: &in.ExternalPaymentId,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		entries := []models.LedgerEntry{
			{TransactionID: txn.ID, Account: ACCOUNT_CLEARING, Debit: net.Amount, Currency: net.Currency, BookingID: &in.Booking.ID, PaymentID: &payment.ID},
			{TransactionID: txn.ID, Account: ACCOUNT_FEES, Debit: in.Fee.Amount, Currency: in.Fee.Currency, BookingID: &in.Booking.ID, PaymentID: &payment.ID},
			{TransactionID: txn.ID, Account: ACCOUNT_REVENUE, Credit: in.Amount.Amount, Currency: in.Amount.Currency, BookingID: &in.Booking.ID, PaymentID: &payment.ID},
		}
		if !EntriesBalanced(entries) {
			return ErrUnbalancedEntries
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		return tx.Model(payment).Update("ledger_transaction_id", txn.ID).Error
	})
	if err != nil {
		// A concurrent post of the same external id loses the unique-index
		// race; re-read and return the winner's row.
		dup := &models.Payment{}
		if derr := conn.Where("external_payment_id = ?", in.ExternalPaymentId).First(dup).Error; derr == nil {
			return dup, nil
		}
		return nil, err
	}
	log.Printf("[ledger] Posted payment %s for booking %s: %s gross, %s fee\n", in.ExternalPaymentId, in.Booking.ReferenceCode, in.Amount.String(), in.Fee.String())
	return payment, nil
}

// PostRefund records a reversal against a posted payment. The refund debits
// revenue and credits the clearing account; fees are not refunded.
func PostRefund(booking *models.Booking, payment *models.Payment, amount types.Money) (*models.LedgerTransaction, error) {
	conn := db.GetDb()
	txn := &models.LedgerTransaction{
		Description:       "refund for booking " + booking.ReferenceCode,
		EntityType:        "booking",
		EntityID:          booking.ID,
		ExternalPaymentId: &payment.ExternalPaymentId,
	}
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		entries := []models.LedgerEntry{
			{TransactionID: txn.ID, Account: ACCOUNT_REVENUE, Debit: amount.Amount, Currency: amount.Currency, BookingID: &booking.ID, PaymentID: &payment.ID},
			{TransactionID: txn.ID, Account: ACCOUNT_CLEARING, Credit: amount.Amount, Currency: amount.Currency, BookingID: &booking.ID, PaymentID: &payment.ID},
		}
		if !EntriesBalanced(entries) {
			return ErrUnbalancedEntries
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

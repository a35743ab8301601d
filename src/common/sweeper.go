package common

import (
	"log"
	"time"

	"cabins/src/db"
	"cabins/src/lib"
	"cabins/src/models"
	"cabins/src/models/scopes"
)

// SweepExpiredHolds releases every hold past its expiry and returns how
// many were released. One bad row does not stop the sweep.
func SweepExpiredHolds() (int, error) {
	conn := db.GetDb()
	var expired []models.Booking
	if err := conn.Scopes(scopes.ExpiredHolds(time.Now())).Find(&expired).Error; err != nil {
		log.Printf("[sweeper] Error scanning for expired holds: %s\n", err.Error())
		return 0, err
	}
	released := 0
	for _, booking := range expired {
		if _, err := ReleaseHold(booking.ID); err != nil {
			log.Printf("[sweeper] Error releasing hold %s: %s\n", booking.ReferenceCode, err.Error())
			continue
		}
		log.Printf("[sweeper] Released expired hold %s\n", booking.ReferenceCode)
		released++
	}
	return released, nil
}

// StartHoldSweeper schedules the expiry sweep on a fixed interval. The
// sweep is a safety net; reads always re-check expiry themselves, so a
// missed tick only delays releasing the window.
func StartHoldSweeper(interval time.Duration) error {
	_, err := lib.CreateCronJob(func() {
		if _, err := SweepExpiredHolds(); err != nil {
			log.Printf("[sweeper] Sweep failed: %s\n", err.Error())
		}
	}, interval)
	return err
}

package scopes

import (
	"time"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// LiveHolds narrows to holds that still block availability.
func LiveHolds(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND hold_expires_at > ?", "hold", now)
	}
}

// ExpiredHolds narrows to holds past their expiry, the sweeper's target set.
func ExpiredHolds(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?", "hold", now)
	}
}

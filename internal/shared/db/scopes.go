package db

import (
	"time"

	"gorm.io/gorm"
)

// Paginate limits a query to one page. Page is 1-based.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// CreatedBetween restricts created_at to the closed interval [from, to].
// A zero bound is ignored.
func CreatedBetween(from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			db = db.Where("created_at >= ?", from)
		}
		if !to.IsZero() {
			db = db.Where("created_at <= ?", to)
		}
		return db
	}
}

// OnlyTrashed selects soft-deleted rows only.
func OnlyTrashed() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Unscoped().Where("deleted_at IS NOT NULL")
	}
}

package scope

import "gorm.io/gorm"

// NewestFirst orders rows of table by creation time, id breaking ties.
func NewestFirst(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at DESC").Order(table + ".id DESC")
	}
}

func OldestFirst(table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".created_at ASC").Order(table + ".id ASC")
	}
}

package database

import (
	"quickshow/internal/bookings"
	"quickshow/internal/shows"
	"quickshow/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&shows.Show{},
		&bookings.Booking{},
	)
}

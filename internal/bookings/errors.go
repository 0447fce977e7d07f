package bookings

import "errors"

var (
	// ErrSeatsUnavailable means a requested seat is already occupied;
	// the user can re-pick seats.
	ErrSeatsUnavailable = errors.New("selected seats are not available")

	// ErrUserNotFound means the authenticated user has no account record.
	ErrUserNotFound = errors.New("user not found")

	// ErrBookingNotFound means the reconciliation target is missing.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrShowNotFound means the booking references a show that does not exist.
	ErrShowNotFound = errors.New("show not found")

	// ErrInvalidAmount rejects a booking before the gateway is contacted.
	ErrInvalidAmount = errors.New("invalid booking amount")
)

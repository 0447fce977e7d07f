package notifications

import (
	"encoding/json"
	"time"
)

// BookingEventType identifies the lifecycle transition an event records.
type BookingEventType string

const (
	EventBookingCreated BookingEventType = "booking.created"
	EventBookingPaid    BookingEventType = "booking.paid"
	EventBookingFailed  BookingEventType = "booking.failed"
	EventRefundRequired BookingEventType = "booking.refund_required"
)

// BookingEvent is the message published for every booking transition.
// Refund-required events additionally land on the support queue topic.
type BookingEvent struct {
	Type       BookingEventType `json:"type"`
	BookingID  string           `json:"booking_id"`
	UserID     string           `json:"user_id"`
	ShowID     string           `json:"show_id"`
	Seats      []string         `json:"seats"`
	Amount     float64          `json:"amount"`
	Source     string           `json:"source,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all events of one booking to the same partition so
// consumers observe its transitions in order.
func (e *BookingEvent) PartitionKey() string {
	return e.BookingID
}

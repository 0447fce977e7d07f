package bookings

import "time"

type CreateBookingResponse struct {
	PaymentLink   string `json:"paymentLink"`
	TempBookingID string `json:"tempBookingId"`
}

// BookingSnapshot is the reconciliation-facing view of a booking returned
// by the verify endpoints.
type BookingSnapshot struct {
	ID            string    `json:"id"`
	IsPaid        bool      `json:"isPaid"`
	PaymentStatus string    `json:"paymentStatus"`
	Amount        float64   `json:"amount"`
	Seats         []string  `json:"seats"`
	PaymentLink   string    `json:"paymentLink,omitempty"`
	NeedsRefund   bool      `json:"needsRefund,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func snapshot(b *Booking) *BookingSnapshot {
	return &BookingSnapshot{
		ID:            b.ID.String(),
		IsPaid:        b.IsPaid,
		PaymentStatus: b.PaymentStatus.String(),
		Amount:        b.Amount,
		Seats:         b.BookedSeats,
		PaymentLink:   b.PaymentLink,
		NeedsRefund:   b.NeedsRefund,
		CreatedAt:     b.CreatedAt,
	}
}

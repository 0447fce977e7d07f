package bookings

type CreateBookingRequest struct {
	ShowID        string   `json:"showId" validate:"required,uuid"`
	SelectedSeats []string `json:"selectedSeats" validate:"required,min=1,dive,required"`
	Amount        float64  `json:"amount" validate:"required,gt=0"`
}

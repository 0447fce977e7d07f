package bookings

// PaymentStatus is the booking's payment lifecycle state. pending is the
// only non-terminal state; paid and failed are reached exactly once.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPaid    PaymentStatus = "paid"
	StatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed
}

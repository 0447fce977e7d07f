package bookings

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// orderIDPrefix correlates bookings with gateway orders. The booking id is
// recovered by stripping the fixed prefix, never by splitting on
// underscores (booking ids may contain none, future formats might).
const orderIDPrefix = "order_"

// OrderID derives the gateway correlation key for a booking.
func OrderID(bookingID uuid.UUID) string {
	return orderIDPrefix + bookingID.String()
}

// ParseOrderID recovers the booking id from an order identifier. Order ids
// missing the prefix are tolerated and treated as bare booking ids, which
// matches what the gateway has been seen sending.
func ParseOrderID(orderID string) (uuid.UUID, error) {
	raw := strings.TrimPrefix(orderID, orderIDPrefix)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid order id %q: %w", orderID, err)
	}
	return id, nil
}

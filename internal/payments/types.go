package payments

import (
	"errors"
	"fmt"
)

// ErrGateway marks any failure talking to the external payment gateway:
// network trouble, auth rejection, or a malformed response. Callers show a
// generic retry message; the raw response body is only ever logged.
var ErrGateway = errors.New("payment gateway error")

// GatewayError carries the upstream status code for logs without leaking
// the response body to callers.
type GatewayError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *GatewayError) Unwrap() error { return ErrGateway }

// Customer identifies the buyer to the gateway.
type Customer struct {
	ID    string `json:"customer_id"`
	Email string `json:"customer_email"`
	Phone string `json:"customer_phone"`
}

// OrderRequest is the order-creation call input.
type OrderRequest struct {
	OrderID   string
	Amount    float64
	Currency  string
	Customer  Customer
	ReturnURL string
	NotifyURL string
}

// OrderResultKind tags the two response shapes the gateway has been seen
// returning for the same call.
type OrderResultKind int

const (
	// ResultDirectLink means the gateway handed back a ready-made hosted
	// checkout URL.
	ResultDirectLink OrderResultKind = iota
	// ResultSessionToken means the gateway returned an opaque session
	// token from which the checkout URL must be constructed by template.
	ResultSessionToken
)

// OrderResult is the tagged variant normalized to a URL at exactly one
// boundary, Client.PaymentLink.
type OrderResult struct {
	Kind  OrderResultKind
	Link  string // set when Kind == ResultDirectLink
	Token string // set when Kind == ResultSessionToken
}

// Order payment states reported by the gateway status API.
const (
	OrderStatusActive     = "ACTIVE"
	OrderStatusPaid       = "PAID"
	OrderStatusExpired    = "EXPIRED"
	OrderStatusTerminated = "TERMINATED"
)

// OrderStatus is the gateway's authoritative view of an order.
type OrderStatus struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"order_status"`
	Amount  float64 `json:"order_amount"`
}

// IsPaid reports whether the gateway settled the order.
func (s OrderStatus) IsPaid() bool {
	return s.Status == OrderStatusPaid
}

// IsTerminal reports whether the order can no longer change state.
func (s OrderStatus) IsTerminal() bool {
	switch s.Status {
	case OrderStatusPaid, OrderStatusExpired, OrderStatusTerminated:
		return true
	}
	return false
}

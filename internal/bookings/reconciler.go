package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quickshow/internal/payments"
	"quickshow/internal/shows"
	"quickshow/pkg/logger"

	"github.com/google/uuid"
)

// Reconciliation sources, recorded in logs and published events so a paid
// transition can be traced back to the signal that caused it.
const (
	SourceWebhook = "webhook"
	SourcePolling = "polling"
	SourceManual  = "manual"
	SourceExpiry  = "expiry"
)

// Webhook transaction statuses the gateway is known to send.
const (
	TxStatusSuccess   = "SUCCESS"
	TxStatusFailed    = "FAILED"
	TxStatusCancelled = "CANCELLED"
)

// WebhookPayload is the gateway's server-to-server notification body.
type WebhookPayload struct {
	OrderID     string `json:"orderId"`
	TxStatus    string `json:"txStatus"`
	PaymentMode string `json:"paymentMode"`
	ReferenceID string `json:"referenceId"`
	TxMsg       string `json:"txMsg"`
	TxTime      string `json:"txTime"`
	Signature   string `json:"signature"`
}

// Reconciler converges a booking's local payment status with the gateway's.
// Three entry points (webhook, client verification, manual override) funnel
// into the same transition, which is idempotent: a booking already terminal
// is returned unchanged.
type Reconciler struct {
	repo     Repository
	shows    shows.Service
	gateway  payments.Gateway
	poller   *payments.Poller
	notifier Notifier
	log      *logger.Logger
}

func NewReconciler(repo Repository, showService shows.Service, gateway payments.Gateway, poller *payments.Poller, notifier Notifier) *Reconciler {
	return &Reconciler{
		repo:     repo,
		shows:    showService,
		gateway:  gateway,
		poller:   poller,
		notifier: notifier,
		log:      logger.GetDefault(),
	}
}

// HandleWebhook applies a gateway notification. The payload's transaction
// status is trusted as-is; the gateway signs and retries deliveries, and
// the independent verification path covers lost or forged-order cases.
func (r *Reconciler) HandleWebhook(ctx context.Context, payload WebhookPayload) (*Booking, error) {
	r.log.LogWebhookReceived(ctx, payload.OrderID, payload.TxStatus)

	bookingID, err := ParseOrderID(payload.OrderID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := r.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsPending() {
		return booking, nil
	}

	switch strings.ToUpper(payload.TxStatus) {
	case TxStatusSuccess:
		return r.confirm(ctx, booking, PaymentDetails{
			ReferenceID: payload.ReferenceID,
			PaymentMode: payload.PaymentMode,
			TxMsg:       payload.TxMsg,
			TxTime:      payload.TxTime,
			Signature:   payload.Signature,
		}, SourceWebhook)
	case TxStatusFailed, TxStatusCancelled:
		return r.fail(ctx, booking, "payment "+strings.ToLower(payload.TxStatus), false, SourceWebhook)
	default:
		// Non-terminal status; leave the booking pending.
		return booking, nil
	}
}

// VerifyOrder re-queries the gateway's order-status API, covering the case
// where the browser returns before the webhook lands. An unreachable
// gateway falls back to whatever local state already exists.
func (r *Reconciler) VerifyOrder(ctx context.Context, orderID string) (*Booking, error) {
	bookingID, err := ParseOrderID(orderID)
	if err != nil {
		return nil, ErrBookingNotFound
	}

	booking, err := r.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsPending() {
		return booking, nil
	}

	status, err := r.gateway.GetOrderStatus(ctx, orderID)
	if err != nil {
		r.log.Warn("gateway unreachable during verification, reporting local state",
			"booking_id", booking.ID.String(), "error", err.Error())
		return booking, nil
	}
	return r.applyGatewayStatus(ctx, booking, status, SourcePolling)
}

// ForceVerify marks a booking paid without contacting the gateway, for
// support recovery. The transition carries a manual-verification marker so
// the audit trail distinguishes it from gateway-confirmed payments.
func (r *Reconciler) ForceVerify(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := r.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsPending() {
		return booking, nil
	}

	now := time.Now()
	return r.confirm(ctx, booking, PaymentDetails{
		TxMsg:              "manually verified",
		ManualVerification: true,
		VerifiedAt:         &now,
	}, SourceManual)
}

// ResolvePending drives a pending booking to a definite state: it polls
// the gateway with bounded backoff, applies a terminal status if one is
// reached, and otherwise fails the booking. Run against stale pending
// bookings so none is left in limbo forever.
func (r *Reconciler) ResolvePending(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := r.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsPending() {
		return booking, nil
	}

	status, err := r.poller.WaitForTerminal(ctx, booking.OrderID())
	if err == nil && status != nil && status.IsTerminal() {
		return r.applyGatewayStatus(ctx, booking, status, SourceExpiry)
	}
	if err != nil {
		r.log.Warn("polling did not reach a terminal order status",
			"booking_id", booking.ID.String(), "error", err.Error())
	}
	return r.fail(ctx, booking, "pending booking expired", false, SourceExpiry)
}

func (r *Reconciler) applyGatewayStatus(ctx context.Context, booking *Booking, status *payments.OrderStatus, source string) (*Booking, error) {
	if status.IsPaid() {
		return r.confirm(ctx, booking, PaymentDetails{
			ReferenceID: status.OrderID,
			TxMsg:       "confirmed via order status query",
		}, source)
	}
	if status.IsTerminal() {
		return r.fail(ctx, booking, "gateway reported order "+strings.ToLower(status.Status), false, source)
	}
	return booking, nil
}

// confirm runs the paid transition. Seat availability is re-checked inside
// the repository transaction: a booking that lost the seat race while its
// payment settled is failed and flagged for refund instead of occupying an
// already-taken seat.
func (r *Reconciler) confirm(ctx context.Context, booking *Booking, details PaymentDetails, source string) (*Booking, error) {
	claims := make(map[string]string, len(booking.BookedSeats))
	for _, seat := range booking.BookedSeats {
		claims[seat] = booking.UserID.String()
	}

	applied, err := r.repo.MarkPaid(ctx, booking.ID, booking.ShowID, claims, details)
	if err != nil {
		if errors.Is(err, ErrSeatsUnavailable) {
			r.log.LogSeatConflict(ctx, booking.ID.String(), booking.BookedSeats)
			return r.lostSeatRace(ctx, booking, source)
		}
		return nil, fmt.Errorf("mark booking paid: %w", err)
	}

	if applied {
		r.shows.InvalidateSeatCache(ctx, booking.ShowID)
		r.log.LogPaymentReconciled(ctx, booking.ID.String(), string(StatusPaid), source)
	}

	updated, err := r.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if applied && r.notifier != nil {
		r.notifier.PublishBookingPaid(ctx, updated, source)
	}
	return updated, nil
}

func (r *Reconciler) lostSeatRace(ctx context.Context, booking *Booking, source string) (*Booking, error) {
	const reason = "seats claimed by another paid booking"

	applied, err := r.repo.MarkFailed(ctx, booking.ID, reason, true)
	if err != nil {
		return nil, fmt.Errorf("mark booking failed: %w", err)
	}

	updated, err := r.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if applied {
		r.log.LogPaymentReconciled(ctx, booking.ID.String(), string(StatusFailed), source)
		if r.notifier != nil {
			r.notifier.PublishRefundRequired(ctx, updated, reason)
		}
	}
	return updated, nil
}

func (r *Reconciler) fail(ctx context.Context, booking *Booking, reason string, needsRefund bool, source string) (*Booking, error) {
	applied, err := r.repo.MarkFailed(ctx, booking.ID, reason, needsRefund)
	if err != nil {
		return nil, fmt.Errorf("mark booking failed: %w", err)
	}

	updated, err := r.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if applied {
		r.log.LogPaymentReconciled(ctx, booking.ID.String(), string(StatusFailed), source)
		if r.notifier != nil {
			r.notifier.PublishBookingFailed(ctx, updated, reason)
		}
	}
	return updated, nil
}

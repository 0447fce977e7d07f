package bookings

import (
	"context"
	"testing"
	"time"

	"quickshow/internal/payments"
	"quickshow/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPendingBooking(t *testing.T, repo *fakeRepo, seats ...string) *Booking {
	t.Helper()
	booking := &Booking{
		UserID:        uuid.New(),
		ShowID:        uuid.New(),
		Amount:        250 * float64(len(seats)),
		BookedSeats:   SeatList(seats),
		PaymentStatus: StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	return booking
}

func newTestReconciler(repo *fakeRepo, showSvc *fakeShowService, gw *fakeGateway, notifier *recordingNotifier) *Reconciler {
	poller := payments.NewPoller(gw, config.PaymentConfig{
		PollInitialInterval: time.Millisecond,
		PollMaxInterval:     2 * time.Millisecond,
		PollMaxElapsed:      20 * time.Millisecond,
	})
	return NewReconciler(repo, showSvc, gw, poller, notifier)
}

func successPayload(orderID string) WebhookPayload {
	return WebhookPayload{
		OrderID:     orderID,
		TxStatus:    "SUCCESS",
		PaymentMode: "UPI",
		ReferenceID: "ref-001",
		TxMsg:       "Transaction successful",
		TxTime:      "2026-08-30 21:14:02",
		Signature:   "sig==",
	}
}

func TestHandleWebhookSuccessOccupiesSeats(t *testing.T) {
	repo := newFakeRepo()
	showSvc := newFakeShowService(250)
	notifier := &recordingNotifier{}
	rec := newTestReconciler(repo, showSvc, &fakeGateway{}, notifier)

	booking := seedPendingBooking(t, repo, "C3")

	updated, err := rec.HandleWebhook(context.Background(), successPayload(booking.OrderID()))
	require.NoError(t, err)

	assert.True(t, updated.IsPaid)
	assert.Equal(t, StatusPaid, updated.PaymentStatus)
	assert.Equal(t, "ref-001", updated.PaymentDetails.ReferenceID)
	assert.Equal(t, "UPI", updated.PaymentDetails.PaymentMode)
	assert.False(t, updated.PaymentDetails.ManualVerification)

	assert.Equal(t, booking.UserID.String(), repo.occupied[booking.ShowID]["C3"])
	assert.Equal(t, 1, showSvc.invalidated)
	assert.Equal(t, []uuid.UUID{booking.ID}, notifier.paid)
}

func TestHandleWebhookIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	showSvc := newFakeShowService(250)
	notifier := &recordingNotifier{}
	rec := newTestReconciler(repo, showSvc, &fakeGateway{}, notifier)

	booking := seedPendingBooking(t, repo, "C3")
	payload := successPayload(booking.OrderID())

	first, err := rec.HandleWebhook(context.Background(), payload)
	require.NoError(t, err)

	// Replayed delivery with a different reference must not re-apply
	payload.ReferenceID = "ref-replayed"
	second, err := rec.HandleWebhook(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.markPaidApplied, "paid transition applied exactly once")
	assert.Equal(t, first.PaymentDetails, second.PaymentDetails, "details unchanged after first application")
	assert.Len(t, notifier.paid, 1)
}

func TestHandleWebhookFailedStatus(t *testing.T) {
	repo := newFakeRepo()
	rec := newTestReconciler(repo, newFakeShowService(250), &fakeGateway{}, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	payload := successPayload(booking.OrderID())
	payload.TxStatus = "FAILED"

	updated, err := rec.HandleWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, updated.PaymentStatus)
	assert.False(t, updated.NeedsRefund)
	assert.Empty(t, repo.occupied[booking.ShowID])
}

func TestHandleWebhookNonTerminalStatusLeavesPending(t *testing.T) {
	repo := newFakeRepo()
	rec := newTestReconciler(repo, newFakeShowService(250), &fakeGateway{}, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	payload := successPayload(booking.OrderID())
	payload.TxStatus = "PENDING"

	updated, err := rec.HandleWebhook(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, updated.PaymentStatus)
}

func TestHandleWebhookUnknownBooking(t *testing.T) {
	rec := newTestReconciler(newFakeRepo(), newFakeShowService(250), &fakeGateway{}, &recordingNotifier{})

	_, err := rec.HandleWebhook(context.Background(), successPayload(OrderID(uuid.New())))
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = rec.HandleWebhook(context.Background(), successPayload("order_garbage"))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestLostSeatRaceFailsWithRefundFlag(t *testing.T) {
	repo := newFakeRepo()
	showSvc := newFakeShowService(250)
	notifier := &recordingNotifier{}
	rec := newTestReconciler(repo, showSvc, &fakeGateway{}, notifier)

	booking := seedPendingBooking(t, repo, "B2")
	// Another booking's payment settled first
	repo.occupied[booking.ShowID] = map[string]string{"B2": "other-user"}

	updated, err := rec.HandleWebhook(context.Background(), successPayload(booking.OrderID()))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, updated.PaymentStatus)
	assert.True(t, updated.NeedsRefund)
	assert.Equal(t, "other-user", repo.occupied[booking.ShowID]["B2"], "winner's seat untouched")
	assert.Equal(t, []uuid.UUID{booking.ID}, notifier.refunds)
	assert.Empty(t, notifier.paid)
}

func TestVerifyOrderReconcilesFromGatewayStatus(t *testing.T) {
	repo := newFakeRepo()
	showSvc := newFakeShowService(250)
	gw := &fakeGateway{status: &payments.OrderStatus{Status: payments.OrderStatusPaid, Amount: 250}}
	rec := newTestReconciler(repo, showSvc, gw, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	updated, err := rec.VerifyOrder(context.Background(), booking.OrderID())
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
	assert.Equal(t, booking.UserID.String(), repo.occupied[booking.ShowID]["C3"])
}

func TestVerifyOrderFallsBackToLocalStateWhenGatewayDown(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{statusErr: &payments.GatewayError{Operation: "order status"}}
	rec := newTestReconciler(repo, newFakeShowService(250), gw, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	updated, err := rec.VerifyOrder(context.Background(), booking.OrderID())
	require.NoError(t, err, "gateway outage must not surface as an error")
	assert.Equal(t, StatusPending, updated.PaymentStatus)
}

func TestVerifyOrderIsNoopOnTerminalBooking(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{status: &payments.OrderStatus{Status: payments.OrderStatusPaid}}
	rec := newTestReconciler(repo, newFakeShowService(250), gw, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")
	_, err := rec.VerifyOrder(context.Background(), booking.OrderID())
	require.NoError(t, err)

	before := repo.markPaidApplied
	_, err = rec.VerifyOrder(context.Background(), booking.OrderID())
	require.NoError(t, err)
	assert.Equal(t, before, repo.markPaidApplied)
}

func TestForceVerifyMarksManualVerification(t *testing.T) {
	repo := newFakeRepo()
	showSvc := newFakeShowService(250)
	rec := newTestReconciler(repo, showSvc, &fakeGateway{}, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	updated, err := rec.ForceVerify(context.Background(), booking.ID)
	require.NoError(t, err)

	assert.True(t, updated.IsPaid)
	assert.True(t, updated.PaymentDetails.ManualVerification)
	require.NotNil(t, updated.PaymentDetails.VerifiedAt)
	assert.WithinDuration(t, time.Now(), *updated.PaymentDetails.VerifiedAt, 10*time.Second)
	assert.Equal(t, booking.UserID.String(), repo.occupied[booking.ShowID]["C3"])
}

func TestResolvePendingExpiresWhenGatewayNeverSettles(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{status: &payments.OrderStatus{Status: payments.OrderStatusActive}}
	rec := newTestReconciler(repo, newFakeShowService(250), gw, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	updated, err := rec.ResolvePending(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, updated.PaymentStatus)
	assert.Equal(t, "pending booking expired", updated.FailureReason)
}

func TestResolvePendingAppliesTerminalGatewayStatus(t *testing.T) {
	repo := newFakeRepo()
	gw := &fakeGateway{status: &payments.OrderStatus{Status: payments.OrderStatusPaid}}
	rec := newTestReconciler(repo, newFakeShowService(250), gw, &recordingNotifier{})

	booking := seedPendingBooking(t, repo, "C3")

	updated, err := rec.ResolvePending(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
}

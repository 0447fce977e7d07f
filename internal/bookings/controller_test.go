package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookTestEnv struct {
	engine  *gin.Engine
	repo    *fakeRepo
	showSvc *fakeShowService
}

func newWebhookTestEnv(t *testing.T) *webhookTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newFakeRepo()
	showSvc := newFakeShowService(250)
	notifier := &recordingNotifier{}
	rec := newTestReconciler(repo, showSvc, &fakeGateway{}, notifier)
	svc := newTestService(repo, showSvc, &fakeUserRepo{}, &fakeGateway{}, notifier)

	controller := NewController(svc, rec, showSvc)

	engine := gin.New()
	api := engine.Group("/api")
	api.POST("/booking/webhook", controller.HandleWebhook)
	api.POST("/booking/callback", controller.HandleWebhook)
	api.GET("/booking/seats/:showId", controller.GetOccupiedSeats)
	api.GET("/booking/verify/:orderId", controller.VerifyOrder)

	return &webhookTestEnv{engine: engine, repo: repo, showSvc: showSvc}
}

func (e *webhookTestEnv) do(req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestWebhookAcknowledgesConnectivityProbe(t *testing.T) {
	env := newWebhookTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/booking/webhook", nil)
	req.Header.Set("x-webhook-source", "cashfree")

	w, body := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Webhook received successfully", body["message"])
}

func TestWebhookAcknowledgesTestOrder(t *testing.T) {
	env := newWebhookTestEnv(t)

	payload, _ := json.Marshal(WebhookPayload{OrderID: "order_test_1", TxStatus: "SUCCESS"})
	req := httptest.NewRequest(http.MethodPost, "/api/booking/callback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w, body := env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, env.repo.bookings, "probe must not mutate state")
}

func TestWebhookConfirmsBooking(t *testing.T) {
	env := newWebhookTestEnv(t)
	booking := seedPendingBooking(t, env.repo, "C3")

	payload, _ := json.Marshal(successPayload(booking.OrderID()))
	req := httptest.NewRequest(http.MethodPost, "/api/booking/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w, body := env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])

	stored, err := env.repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
}

func TestWebhookUnknownBookingReturnsStructuredNotFound(t *testing.T) {
	env := newWebhookTestEnv(t)

	payload, _ := json.Marshal(successPayload("order_e2b6e44f-8f1b-4a37-a4c8-9c5d2f1e0b3a"))
	req := httptest.NewRequest(http.MethodPost, "/api/booking/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w, body := env.do(req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Booking not found", body["message"])
}

func TestGetOccupiedSeatsEndpoint(t *testing.T) {
	env := newWebhookTestEnv(t)
	env.showSvc.occupied["A1"] = "u1"

	req := httptest.NewRequest(http.MethodGet, "/api/booking/seats/"+uuid.New().String(), nil)
	w, body := env.do(req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []interface{}{"A1"}, body["occupiedSeats"])
}

package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quickshow/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPaymentConfig(baseURL string) config.PaymentConfig {
	return config.PaymentConfig{
		AppID:             "test-app-id",
		SecretKey:         "test-secret-key",
		BaseURL:           baseURL,
		APIVersion:        "2023-08-01",
		PaymentsBaseURL:   "https://payments.cashfree.com/pay/",
		AllowedLinkPrefix: "https://payments.cashfree.com/",
		Currency:          "INR",
	}
}

func TestCreateOrderSendsCredentialsInHeaders(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"payment_session_id": "session_xyz"})
	}))
	defer srv.Close()

	client := NewClient(testPaymentConfig(srv.URL))
	result, err := client.CreateOrder(context.Background(), OrderRequest{
		OrderID:   "order_123",
		Amount:    500,
		Currency:  "INR",
		Customer:  Customer{ID: "u1", Email: "u1@example.com", Phone: "+911234567890"},
		ReturnURL: "https://client.example.com/my-bookings?orderId=order_123",
		NotifyURL: "https://server.example.com/api/booking/callback",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-app-id", gotHeaders.Get("x-client-id"))
	assert.Equal(t, "test-secret-key", gotHeaders.Get("x-client-secret"))
	assert.Equal(t, "2023-08-01", gotHeaders.Get("x-api-version"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))

	// Credentials never travel in the body
	assert.Equal(t, "order_123", gotBody["order_id"])
	assert.NotContains(t, gotBody, "x-client-id")
	assert.NotContains(t, gotBody, "client_secret")

	meta, ok := gotBody["order_meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://client.example.com/my-bookings?orderId=order_123", meta["return_url"])
	assert.Equal(t, "https://server.example.com/api/booking/callback", meta["notify_url"])

	assert.Equal(t, ResultSessionToken, result.Kind)
	assert.Equal(t, "session_xyz", result.Token)
}

func TestCreateOrderDirectLinkResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"payment_link": "https://payments.cashfree.com/order/abc",
		})
	}))
	defer srv.Close()

	client := NewClient(testPaymentConfig(srv.URL))
	result, err := client.CreateOrder(context.Background(), OrderRequest{OrderID: "order_1", Amount: 100, Currency: "INR"})
	require.NoError(t, err)
	assert.Equal(t, ResultDirectLink, result.Kind)
	assert.Equal(t, "https://payments.cashfree.com/order/abc", result.Link)
}

func TestCreateOrderErrorStatusIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"authentication failed"}`))
	}))
	defer srv.Close()

	client := NewClient(testPaymentConfig(srv.URL))
	_, err := client.CreateOrder(context.Background(), OrderRequest{OrderID: "order_1", Amount: 100, Currency: "INR"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGateway)

	var gerr *GatewayError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, http.StatusUnauthorized, gerr.StatusCode)
	// The raw response body must not leak through the error message
	assert.NotContains(t, gerr.Error(), "authentication failed")
}

func TestCreateOrderEmptyResponseIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(testPaymentConfig(srv.URL))
	_, err := client.CreateOrder(context.Background(), OrderRequest{OrderID: "order_1", Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrGateway)
}

func TestGetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/order_42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id":     "order_42",
			"order_status": "PAID",
			"order_amount": 750.0,
		})
	}))
	defer srv.Close()

	client := NewClient(testPaymentConfig(srv.URL))
	status, err := client.GetOrderStatus(context.Background(), "order_42")
	require.NoError(t, err)
	assert.True(t, status.IsPaid())
	assert.True(t, status.IsTerminal())
	assert.Equal(t, 750.0, status.Amount)
}

func TestPaymentLink(t *testing.T) {
	client := NewClient(testPaymentConfig("https://api.example.com"))

	t.Run("direct link passes through", func(t *testing.T) {
		link, err := client.PaymentLink(&OrderResult{Kind: ResultDirectLink, Link: "https://payments.cashfree.com/order/xyz"})
		require.NoError(t, err)
		assert.Equal(t, "https://payments.cashfree.com/order/xyz", link)
	})

	t.Run("session token is normalized before URL construction", func(t *testing.T) {
		link, err := client.PaymentLink(&OrderResult{Kind: ResultSessionToken, Token: "abc123paymentpayment"})
		require.NoError(t, err)
		assert.Equal(t, "https://payments.cashfree.com/pay/abc123", link)
	})

	t.Run("link outside allow-listed prefix is rejected", func(t *testing.T) {
		_, err := client.PaymentLink(&OrderResult{Kind: ResultDirectLink, Link: "https://evil.example.com/pay/abc"})
		assert.ErrorIs(t, err, ErrGateway)
	})
}

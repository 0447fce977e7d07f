package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quickshow/internal/shared/config"
	"quickshow/pkg/logger"
)

// Gateway is the adapter contract the booking flow depends on.
type Gateway interface {
	// CreateOrder registers an order with the gateway and returns either
	// a direct checkout link or a session token.
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)

	// GetOrderStatus queries the gateway's order-status API.
	GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error)

	// PaymentLink normalizes an order result to a validated checkout URL.
	PaymentLink(result *OrderResult) (string, error)
}

// Client talks to the Cashfree-style order API. Credentials travel in
// request headers, never in the body.
type Client struct {
	cfg config.PaymentConfig
	hc  *http.Client
	log *logger.Logger
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: 10 * time.Second},
		log: logger.GetDefault(),
	}
}

// orderResponse covers both response shapes the gateway has produced
// across API versions.
type orderResponse struct {
	OrderID          string `json:"order_id"`
	PaymentLink      string `json:"payment_link"`
	PaymentSessionID string `json:"payment_session_id"`
}

func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	payload := map[string]interface{}{
		"order_id":       req.OrderID,
		"order_amount":   req.Amount,
		"order_currency": req.Currency,
		"customer_details": map[string]string{
			"customer_id":    req.Customer.ID,
			"customer_email": req.Customer.Email,
			"customer_phone": req.Customer.Phone,
		},
		"order_meta": map[string]string{
			"return_url": req.ReturnURL,
			"notify_url": req.NotifyURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		gerr := &GatewayError{Operation: "create order", StatusCode: 0, Err: err}
		c.log.LogGatewayError(ctx, "create_order", 0, c.cfg.AppID, err)
		return nil, gerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Operation: "create order", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		c.log.LogGatewayError(ctx, "create_order", resp.StatusCode, c.cfg.AppID, fmt.Errorf("%s: %s", err, string(raw)))
		return nil, &GatewayError{Operation: "create order", StatusCode: resp.StatusCode, Err: err}
	}

	var parsed orderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.log.LogGatewayError(ctx, "create_order", resp.StatusCode, c.cfg.AppID, err)
		return nil, &GatewayError{Operation: "create order", StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}

	switch {
	case parsed.PaymentLink != "":
		return &OrderResult{Kind: ResultDirectLink, Link: parsed.PaymentLink}, nil
	case parsed.PaymentSessionID != "":
		return &OrderResult{Kind: ResultSessionToken, Token: parsed.PaymentSessionID}, nil
	default:
		err := fmt.Errorf("response carries neither payment_link nor payment_session_id")
		c.log.LogGatewayError(ctx, "create_order", resp.StatusCode, c.cfg.AppID, err)
		return nil, &GatewayError{Operation: "create order", StatusCode: resp.StatusCode, Err: err}
	}
}

func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/orders/"+orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		c.log.LogGatewayError(ctx, "order_status", 0, c.cfg.AppID, err)
		return nil, &GatewayError{Operation: "order status", StatusCode: 0, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Operation: "order status", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		c.log.LogGatewayError(ctx, "order_status", resp.StatusCode, c.cfg.AppID, fmt.Errorf("%s: %s", err, string(raw)))
		return nil, &GatewayError{Operation: "order status", StatusCode: resp.StatusCode, Err: err}
	}

	var status OrderStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, &GatewayError{Operation: "order status", StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return &status, nil
}

// PaymentLink is the single boundary where an order result becomes a URL.
// Session tokens are normalized first, and whatever comes out must match
// the allow-listed prefix before it is handed to a browser.
func (c *Client) PaymentLink(result *OrderResult) (string, error) {
	var link string
	switch result.Kind {
	case ResultDirectLink:
		link = result.Link
	case ResultSessionToken:
		link = c.cfg.PaymentsBaseURL + NormalizeSessionToken(result.Token)
	default:
		return "", &GatewayError{Operation: "payment link", Err: fmt.Errorf("unknown order result kind %d", result.Kind)}
	}

	if !strings.HasPrefix(link, c.cfg.AllowedLinkPrefix) {
		return "", &GatewayError{Operation: "payment link", Err: fmt.Errorf("link outside allow-listed prefix")}
	}
	return link, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-client-id", c.cfg.AppID)
	req.Header.Set("x-client-secret", c.cfg.SecretKey)
	req.Header.Set("x-api-version", c.cfg.APIVersion)
	req.Header.Set("Content-Type", "application/json")
}

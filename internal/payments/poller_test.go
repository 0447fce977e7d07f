package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"quickshow/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedGateway struct {
	statuses []OrderStatus
	errs     []error
	calls    int
}

func (g *scriptedGateway) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	return nil, errors.New("not implemented")
}

func (g *scriptedGateway) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	i := g.calls
	if i >= len(g.statuses) {
		i = len(g.statuses) - 1
	}
	g.calls++
	if g.errs != nil && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	status := g.statuses[i]
	return &status, nil
}

func (g *scriptedGateway) PaymentLink(result *OrderResult) (string, error) {
	return "", errors.New("not implemented")
}

func pollerConfig() config.PaymentConfig {
	return config.PaymentConfig{
		PollInitialInterval: time.Millisecond,
		PollMaxInterval:     5 * time.Millisecond,
		PollMaxElapsed:      200 * time.Millisecond,
	}
}

func TestWaitForTerminalStopsOnTerminalStatus(t *testing.T) {
	gw := &scriptedGateway{statuses: []OrderStatus{
		{OrderID: "order_1", Status: OrderStatusActive},
		{OrderID: "order_1", Status: OrderStatusActive},
		{OrderID: "order_1", Status: OrderStatusPaid},
	}}

	poller := NewPoller(gw, pollerConfig())
	status, err := poller.WaitForTerminal(context.Background(), "order_1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.IsPaid())
	assert.Equal(t, 3, gw.calls)
}

func TestWaitForTerminalRetriesThroughGatewayErrors(t *testing.T) {
	gw := &scriptedGateway{
		statuses: []OrderStatus{{}, {OrderID: "order_1", Status: OrderStatusExpired}},
		errs:     []error{errors.New("connection reset"), nil},
	}

	poller := NewPoller(gw, pollerConfig())
	status, err := poller.WaitForTerminal(context.Background(), "order_1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, OrderStatusExpired, status.Status)
}

func TestWaitForTerminalReturnsLastStatusAtCeiling(t *testing.T) {
	gw := &scriptedGateway{statuses: []OrderStatus{{OrderID: "order_1", Status: OrderStatusActive}}}

	cfg := pollerConfig()
	cfg.PollMaxElapsed = 10 * time.Millisecond
	poller := NewPoller(gw, cfg)

	status, err := poller.WaitForTerminal(context.Background(), "order_1")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.IsTerminal())
}

func TestWaitForTerminalCancellable(t *testing.T) {
	gw := &scriptedGateway{statuses: []OrderStatus{{OrderID: "order_1", Status: OrderStatusActive}}}

	cfg := pollerConfig()
	cfg.PollInitialInterval = time.Hour
	cfg.PollMaxInterval = time.Hour
	cfg.PollMaxElapsed = 2 * time.Hour
	poller := NewPoller(gw, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	go func() {
		_, err := poller.WaitForTerminal(ctx, "order_1")
		assert.ErrorIs(t, err, context.Canceled)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}

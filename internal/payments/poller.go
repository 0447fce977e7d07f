package payments

import (
	"context"
	"time"

	"quickshow/internal/shared/config"
)

// Poller re-queries the gateway's order status with exponential backoff
// until the order reaches a terminal state or the configured ceiling is
// hit. It replaces the overlapping ad hoc client timers the flow used to
// lean on: one routine, one hard ceiling, cancellable through the context.
type Poller struct {
	gateway         Gateway
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsed      time.Duration
}

func NewPoller(gateway Gateway, cfg config.PaymentConfig) *Poller {
	return &Poller{
		gateway:         gateway,
		initialInterval: cfg.PollInitialInterval,
		maxInterval:     cfg.PollMaxInterval,
		maxElapsed:      cfg.PollMaxElapsed,
	}
}

// WaitForTerminal polls until the order status is terminal. It returns the
// last status observed; callers decide what a non-terminal final answer
// means. Gateway errors during a poll round are retried until the ceiling.
func (p *Poller) WaitForTerminal(ctx context.Context, orderID string) (*OrderStatus, error) {
	deadline := time.Now().Add(p.maxElapsed)
	interval := p.initialInterval

	var last *OrderStatus
	for {
		status, err := p.gateway.GetOrderStatus(ctx, orderID)
		if err == nil {
			last = status
			if status.IsTerminal() {
				return status, nil
			}
		}

		if time.Now().Add(interval).After(deadline) {
			return last, ctx.Err()
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if interval > p.maxInterval {
			interval = p.maxInterval
		}
	}
}

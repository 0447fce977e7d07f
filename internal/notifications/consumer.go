package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quickshow/internal/shared/config"
	"quickshow/pkg/logger"

	"github.com/IBM/sarama"
)

// Dispatcher delivers a booking event to the user-facing channel (email,
// push). The default implementation only logs; wiring a real channel means
// implementing this interface.
type Dispatcher interface {
	Dispatch(ctx context.Context, event *BookingEvent) error
}

// LogDispatcher writes each event to the structured log.
type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{log: logger.GetDefault()}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, event *BookingEvent) error {
	d.log.InfoContext(ctx, "booking notification dispatched",
		"type", string(event.Type),
		"booking_id", event.BookingID,
		"user_id", event.UserID,
		"reason", event.Reason,
	)
	return nil
}

// Consumer reads booking events from Kafka and hands them to a Dispatcher.
type Consumer struct {
	group      sarama.ConsumerGroup
	topics     []string
	dispatcher Dispatcher
	log        *logger.Logger
	cancel     context.CancelFunc
}

func NewConsumer(cfg config.KafkaConfig, dispatcher Dispatcher) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:      group,
		topics:     []string{cfg.BookingTopic, cfg.SupportTopic},
		dispatcher: dispatcher,
		log:        logger.GetDefault(),
	}, nil
}

// Start runs the consume loop in the background until Stop or ctx cancel.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.group.Errors() {
			c.log.Error("consumer group error", "error", err.Error())
		}
	}()

	go func() {
		handler := &groupHandler{dispatcher: c.dispatcher, log: c.log}
		for {
			if ctx.Err() != nil {
				return
			}
			if err := c.group.Consume(ctx, c.topics, handler); err != nil {
				c.log.Error("error consuming booking events", "error", err.Error())
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
		}
	}()
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			var event BookingEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				h.log.Error("failed to unmarshal booking event",
					"topic", message.Topic, "offset", message.Offset, "error", err.Error())
				session.MarkMessage(message, "")
				continue
			}

			if err := h.dispatcher.Dispatch(session.Context(), &event); err != nil {
				h.log.Error("failed to dispatch booking event",
					"booking_id", event.BookingID, "error", err.Error())
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

package notifications

import (
	"context"
	"fmt"
	"time"

	"quickshow/internal/bookings"
	"quickshow/internal/shared/config"
	"quickshow/pkg/logger"

	"github.com/IBM/sarama"
)

// ProducerConfig contains configuration for the Kafka booking-event producer
type ProducerConfig struct {
	Brokers          []string
	BookingTopic     string
	SupportTopic     string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	IdempotentWrites bool
}

// ProducerConfigFrom builds the producer configuration from app config.
func ProducerConfigFrom(cfg config.KafkaConfig) *ProducerConfig {
	return &ProducerConfig{
		Brokers:          cfg.Brokers,
		BookingTopic:     cfg.BookingTopic,
		SupportTopic:     cfg.SupportTopic,
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		IdempotentWrites: true,
	}
}

// Producer publishes booking lifecycle events to Kafka. It implements
// bookings.Notifier; publish failures are logged and swallowed so event
// delivery trouble never fails a booking request.
type Producer struct {
	producer sarama.SyncProducer
	config   *ProducerConfig
	log      *logger.Logger
}

func NewProducer(config *ProducerConfig) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one booking's events on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

func (p *Producer) PublishBookingCreated(ctx context.Context, booking *bookings.Booking) {
	p.publish(ctx, p.config.BookingTopic, eventFrom(EventBookingCreated, booking, "", ""))
}

func (p *Producer) PublishBookingPaid(ctx context.Context, booking *bookings.Booking, source string) {
	p.publish(ctx, p.config.BookingTopic, eventFrom(EventBookingPaid, booking, source, ""))
}

func (p *Producer) PublishBookingFailed(ctx context.Context, booking *bookings.Booking, reason string) {
	p.publish(ctx, p.config.BookingTopic, eventFrom(EventBookingFailed, booking, "", reason))
}

func (p *Producer) PublishRefundRequired(ctx context.Context, booking *bookings.Booking, reason string) {
	event := eventFrom(EventRefundRequired, booking, "", reason)
	p.publish(ctx, p.config.BookingTopic, event)
	// Refunds also go to the support queue so an operator picks them up.
	p.publish(ctx, p.config.SupportTopic, event)
}

func (p *Producer) publish(ctx context.Context, topic string, event *BookingEvent) {
	value, err := event.ToJSON()
	if err != nil {
		p.log.Error("failed to marshal booking event",
			"type", string(event.Type), "booking_id", event.BookingID, "error", err.Error())
		return
	}

	message := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(value),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("booking_id"), Value: []byte(event.BookingID)},
			{Key: []byte("producer"), Value: []byte("quickshow-bookings")},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to publish booking event",
			"type", string(event.Type), "booking_id", event.BookingID,
			"topic", topic, "error", err.Error())
		return
	}

	p.log.DebugContext(ctx, "booking event published",
		"type", string(event.Type), "booking_id", event.BookingID,
		"topic", topic, "partition", partition, "offset", offset)
}

func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

func eventFrom(eventType BookingEventType, booking *bookings.Booking, source, reason string) *BookingEvent {
	return &BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID.String(),
		UserID:     booking.UserID.String(),
		ShowID:     booking.ShowID.String(),
		Seats:      booking.BookedSeats,
		Amount:     booking.Amount,
		Source:     source,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
}

// NoopNotifier is the Notifier used when Kafka is disabled; transitions
// are still logged through the regular logger.
type NoopNotifier struct{}

func (NoopNotifier) PublishBookingCreated(context.Context, *bookings.Booking)         {}
func (NoopNotifier) PublishBookingPaid(context.Context, *bookings.Booking, string)    {}
func (NoopNotifier) PublishBookingFailed(context.Context, *bookings.Booking, string)  {}
func (NoopNotifier) PublishRefundRequired(context.Context, *bookings.Booking, string) {}

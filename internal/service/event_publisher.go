package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/pkg/kafka"
)

// EventPublisher defines the interface for publishing lifecycle events
type EventPublisher interface {
	// PublishBookingCreated publishes a booking created event
	PublishBookingCreated(ctx context.Context, booking *domain.Booking) error

	// PublishBookingSettled publishes a payment-settled booking event
	PublishBookingSettled(ctx context.Context, booking *domain.Booking) error

	// PublishReviewCreated publishes a review created event
	PublishReviewCreated(ctx context.Context, review *domain.Review) error

	// PublishReviewDeleted publishes a review deleted event
	PublishReviewDeleted(ctx context.Context, review *domain.Review) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

var _ EventPublisher = (*KafkaEventPublisher)(nil)

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "booking-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pitchpulse"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "pitchpulse-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishBookingCreated publishes a booking created event
func (p *KafkaEventPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	eventID := uuid.New().String()
	event := domain.NewBookingEvent(domain.EventBookingCreated, booking, eventID)
	return p.publish(ctx, domain.EventBookingCreated, eventID, event.Key(), event)
}

// PublishBookingSettled publishes a payment-settled booking event
func (p *KafkaEventPublisher) PublishBookingSettled(ctx context.Context, booking *domain.Booking) error {
	eventID := uuid.New().String()
	event := domain.NewBookingEvent(domain.EventBookingSettled, booking, eventID)
	return p.publish(ctx, domain.EventBookingSettled, eventID, event.Key(), event)
}

// PublishReviewCreated publishes a review created event
func (p *KafkaEventPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	eventID := uuid.New().String()
	event := domain.NewReviewEvent(domain.EventReviewCreated, review, eventID)
	return p.publish(ctx, domain.EventReviewCreated, eventID, event.Key(), event)
}

// PublishReviewDeleted publishes a review deleted event
func (p *KafkaEventPublisher) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	eventID := uuid.New().String()
	event := domain.NewReviewEvent(domain.EventReviewDeleted, review, eventID)
	return p.publish(ctx, domain.EventReviewDeleted, eventID, event.Key(), event)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publish(ctx context.Context, eventType domain.EventType, eventID, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(key),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for
// environments without Kafka
type NoOpEventPublisher struct{}

var _ EventPublisher = (*NoOpEventPublisher)(nil)

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishBookingCreated is a no-op
func (p *NoOpEventPublisher) PublishBookingCreated(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishBookingSettled is a no-op
func (p *NoOpEventPublisher) PublishBookingSettled(ctx context.Context, booking *domain.Booking) error {
	return nil
}

// PublishReviewCreated is a no-op
func (p *NoOpEventPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return nil
}

// PublishReviewDeleted is a no-op
func (p *NoOpEventPublisher) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}

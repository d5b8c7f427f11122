package domain

import "time"

// EventType identifies a lifecycle event published to the event stream
type EventType string

const (
	EventBookingCreated EventType = "booking.created"
	EventBookingSettled EventType = "booking.settled"
	EventReviewCreated  EventType = "review.created"
	EventReviewDeleted  EventType = "review.deleted"
)

// BookingEvent is the payload published for booking lifecycle events.
// Events are partitioned by venue so per-venue ordering is preserved.
type BookingEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	VenueID    string    `json:"venue_id"`
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Price      float64   `json:"price"`
	PaymentRef string    `json:"payment_ref,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBookingEvent builds an event from a booking
func NewBookingEvent(eventType EventType, b *Booking, eventID string) *BookingEvent {
	return &BookingEvent{
		EventID:    eventID,
		Type:       eventType,
		VenueID:    b.VenueID,
		BookingID:  b.ID,
		UserID:     b.UserID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Price:      b.Price,
		PaymentRef: b.PaymentRef,
		OccurredAt: time.Now().UTC(),
	}
}

// Key returns the partition key for the event
func (e *BookingEvent) Key() string {
	return e.VenueID
}

// ReviewEvent is the payload published for review lifecycle events
type ReviewEvent struct {
	EventID    string    `json:"event_id"`
	Type       EventType `json:"type"`
	VenueID    string    `json:"venue_id"`
	ReviewID   string    `json:"review_id"`
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewReviewEvent builds an event from a review
func NewReviewEvent(eventType EventType, r *Review, eventID string) *ReviewEvent {
	return &ReviewEvent{
		EventID:    eventID,
		Type:       eventType,
		VenueID:    r.VenueID,
		ReviewID:   r.ID,
		BookingID:  r.BookingID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: time.Now().UTC(),
	}
}

// Key returns the partition key for the event
func (e *ReviewEvent) Key() string {
	return e.VenueID
}

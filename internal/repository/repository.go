package repository

import (
	"context"
	"time"

	"github.com/smane4123/PitchPulse/internal/domain"
)

// VenueRepository defines venue data access. The engine only reads venues
// and writes the rating aggregates.
type VenueRepository interface {
	// GetByID retrieves a venue by ID
	GetByID(ctx context.Context, id string) (*domain.Venue, error)

	// UpdateRating overwrites the venue's rating aggregates
	UpdateRating(ctx context.Context, venueID string, averageRating float64, numberOfReviews int) error
}

// BookingRepository defines booking data access
type BookingRepository interface {
	// Create inserts a booking. Returns domain.ErrSlotTaken when a confirmed
	// booking already occupies the same venue and start time.
	Create(ctx context.Context, booking *domain.Booking) error

	// CreateBatch inserts all bookings in a single transaction. Any slot
	// conflict rolls back the whole batch with domain.ErrSlotTaken.
	CreateBatch(ctx context.Context, bookings []*domain.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetByPaymentRef retrieves the booking materialized for a gateway
	// payment. Returns (nil, nil) when no such booking exists.
	GetByPaymentRef(ctx context.Context, paymentRef string) (*domain.Booking, error)

	// ListByUser retrieves a user's bookings, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)

	// ListConfirmedStarts returns start times of confirmed bookings on the
	// venue within [from, to)
	ListConfirmedStarts(ctx context.Context, venueID string, from, to time.Time) ([]time.Time, error)

	// AnyConfirmedOverlap reports whether any confirmed booking on the venue
	// overlaps the half-open interval [start, end)
	AnyConfirmedOverlap(ctx context.Context, venueID string, start, end time.Time) (bool, error)
}

// ReviewRepository defines review data access
type ReviewRepository interface {
	// Create inserts a review and flags its booking as reviewed in the same
	// transaction. Returns domain.ErrAlreadyReviewed when the booking
	// already has one.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ListByVenue retrieves a venue's reviews, newest first
	ListByVenue(ctx context.Context, venueID string) ([]*domain.Review, error)

	// Delete removes a review and clears its booking's reviewed flag in the
	// same transaction
	Delete(ctx context.Context, id string) error

	// AggregateByVenue scans all of the venue's reviews and returns the
	// unrounded average and count. Zero values when the venue has none.
	AggregateByVenue(ctx context.Context, venueID string) (average float64, count int, err error)
}

// SlotHoldRepository guards a slot while its payment is in flight. Holds
// are advisory and expire on their own; the bookings unique index remains
// the authoritative conflict signal.
type SlotHoldRepository interface {
	// Acquire places a hold on the slot. Returns false when another hold
	// already exists.
	Acquire(ctx context.Context, venueID string, start time.Time, token string, ttl time.Duration) (bool, error)

	// HeldBy returns the token holding the slot, or "" when unheld
	HeldBy(ctx context.Context, venueID string, start time.Time) (string, error)

	// Swap atomically replaces oldToken with newToken, keeping the TTL
	// window fresh. Returns false when the hold is gone or owned elsewhere.
	Swap(ctx context.Context, venueID string, start time.Time, oldToken, newToken string, ttl time.Duration) (bool, error)

	// Release removes the hold only if it still carries the token
	Release(ctx context.Context, venueID string, start time.Time, token string) error
}

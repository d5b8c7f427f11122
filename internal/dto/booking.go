package dto

import (
	"time"

	"github.com/smane4123/PitchPulse/internal/domain"
)

// CreateBookingRequest is the request body for booking a single slot
type CreateBookingRequest struct {
	VenueID       string    `json:"venue_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	DurationHours int       `json:"duration_hours"`
	// Price is optional; when omitted or non-positive the venue's hourly
	// rate times the duration is charged.
	Price float64 `json:"price"`
}

// BulkCreateBookingRequest is the request body for booking several slots
// on one venue atomically
type BulkCreateBookingRequest struct {
	VenueID    string      `json:"venue_id" binding:"required"`
	StartTimes []time.Time `json:"start_times" binding:"required"`
	Price      float64     `json:"price"`
}

// BookingResponse is the API representation of a booking
type BookingResponse struct {
	ID              string    `json:"id"`
	VenueID         string    `json:"venue_id"`
	UserID          string    `json:"user_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Price           float64   `json:"price"`
	Status          string    `json:"status"`
	PaymentRef      string    `json:"payment_ref,omitempty"`
	HasBeenReviewed bool      `json:"has_been_reviewed"`
	CreatedAt       time.Time `json:"created_at"`
}

// BookingListResponse wraps a list of bookings
type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
	Total    int                `json:"total"`
}

// BookingFromDomain maps a domain booking to its API shape
func BookingFromDomain(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:              b.ID,
		VenueID:         b.VenueID,
		UserID:          b.UserID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Price:           b.Price,
		Status:          b.Status.String(),
		PaymentRef:      b.PaymentRef,
		HasBeenReviewed: b.HasBeenReviewed,
		CreatedAt:       b.CreatedAt,
	}
}

// BookingsFromDomain maps a slice of domain bookings
func BookingsFromDomain(bookings []*domain.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingFromDomain(b))
	}
	return out
}

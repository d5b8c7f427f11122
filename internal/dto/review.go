package dto

import (
	"time"

	"github.com/smane4123/PitchPulse/internal/domain"
)

// CreateReviewRequest is the request body for reviewing a booking
type CreateReviewRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// ReviewResponse is the API representation of a review
type ReviewResponse struct {
	ID        string    `json:"id"`
	VenueID   string    `json:"venue_id"`
	UserID    string    `json:"user_id"`
	BookingID string    `json:"booking_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewListResponse wraps a venue's reviews with its current aggregates
type ReviewListResponse struct {
	Reviews       []*ReviewResponse `json:"reviews"`
	Total         int               `json:"total"`
	AverageRating float64           `json:"average_rating"`
}

// ReviewFromDomain maps a domain review to its API shape
func ReviewFromDomain(r *domain.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		VenueID:   r.VenueID,
		UserID:    r.UserID,
		BookingID: r.BookingID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// ReviewsFromDomain maps a slice of domain reviews
func ReviewsFromDomain(reviews []*domain.Review) []*ReviewResponse {
	out := make([]*ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewFromDomain(r))
	}
	return out
}

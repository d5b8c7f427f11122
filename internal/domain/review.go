package domain

import "time"

// MaxCommentLength caps review comments.
const MaxCommentLength = 500

// Review is a rating left against a completed booking. Exactly one review
// may exist per booking; the reviews.booking_id unique index is the
// authoritative guard.
type Review struct {
	ID        string
	VenueID   string
	UserID    string
	BookingID string
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
}

// BelongsToUser checks if the review was written by the given user
func (r *Review) BelongsToUser(userID string) bool {
	return r.UserID == userID
}

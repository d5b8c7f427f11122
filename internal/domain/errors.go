package domain

import "errors"

// Domain errors
var (
	// Not found errors
	ErrVenueNotFound   = errors.New("venue not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// Conflict errors
	ErrSlotTaken       = errors.New("time slot is no longer available")
	ErrSlotHeld        = errors.New("time slot is held by a pending payment")
	ErrAlreadyReviewed = errors.New("booking has already been reviewed")

	// Auth errors
	ErrNotBookingOwner = errors.New("booking does not belong to this user")
	ErrNotReviewOwner  = errors.New("review does not belong to this user")

	// Validation errors
	ErrInvalidVenueID   = errors.New("invalid venue id")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidBookingID = errors.New("invalid booking id")
	ErrInvalidStartTime = errors.New("start time must be a whole-hour UTC instant")
	ErrInvalidDuration  = errors.New("duration must be at least one hour")
	ErrInvalidPrice     = errors.New("price cannot be negative")
	ErrEmptySlotList    = errors.New("no slots provided")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong   = errors.New("comment exceeds maximum length")

	// Payment errors
	ErrSignatureMismatch  = errors.New("payment verification failed: signature mismatch")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrReviewNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidVenueID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidBookingID) ||
		errors.Is(err, ErrInvalidStartTime) ||
		errors.Is(err, ErrInvalidDuration) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrEmptySlotList) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrCommentTooLong)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrSlotTaken) ||
		errors.Is(err, ErrSlotHeld) ||
		errors.Is(err, ErrAlreadyReviewed)
}

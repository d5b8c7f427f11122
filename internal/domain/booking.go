package domain

import "time"

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// String returns the string representation of the status
func (s BookingStatus) String() string {
	return string(s)
}

// Booking is a reservation of a single one-hour slot on a venue. Only
// Confirmed bookings occupy a slot for conflict purposes.
type Booking struct {
	ID              string
	VenueID         string
	UserID          string
	StartTime       time.Time // UTC instant
	EndTime         time.Time // StartTime + duration
	Price           float64
	Status          BookingStatus
	PaymentRef      string // gateway payment id, empty for free bookings
	HasBeenReviewed bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BelongsToUser checks if the booking belongs to the given user
func (b *Booking) BelongsToUser(userID string) bool {
	return b.UserID == userID
}

// IsConfirmed checks if the booking occupies its slot
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// Overlaps reports whether the half-open interval [b.StartTime, b.EndTime)
// intersects [start, end). Adjacent bookings never overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && start.Before(b.EndTime)
}

package domain

import "time"

// Default operating hours applied when a venue's stored hours are malformed
// or inverted (opening >= closing).
const (
	DefaultOpeningHour = 6
	DefaultClosingHour = 23
)

// Venue is a bookable pitch. The engine reads venues and only ever writes
// the two rating aggregate fields; everything else belongs to the listing
// service.
type Venue struct {
	ID              string
	OwnerID         string
	Name            string
	PricePerHour    float64
	OpeningTime     string // "HH:MM"
	ClosingTime     string // "HH:MM"
	Latitude        float64
	Longitude       float64
	AverageRating   float64
	NumberOfReviews int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OperatingHours returns the venue's opening and closing hour as integers.
// Malformed or inverted hours fall back to 06:00-23:00.
func (v *Venue) OperatingHours() (open, close int) {
	open = parseHour(v.OpeningTime)
	close = parseHour(v.ClosingTime)
	if open < 0 || close < 0 || open >= close {
		return DefaultOpeningHour, DefaultClosingHour
	}
	return open, close
}

// parseHour extracts the hour from an "HH:MM" string, returning -1 when the
// value cannot be parsed or is out of range.
func parseHour(s string) int {
	if len(s) < 2 {
		return -1
	}
	h := 0
	for i := 0; i < 2; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return -1
		}
		h = h*10 + int(c-'0')
	}
	if h > 23 {
		return -1
	}
	return h
}

// Slot is a derived one-hour window on a venue's calendar. Slots are
// computed from operating hours and confirmed bookings; they are never
// persisted.
type Slot struct {
	Time        string `json:"time"` // "HH:00"
	IsAvailable bool   `json:"is_available"`
}

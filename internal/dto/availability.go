package dto

import "github.com/smane4123/PitchPulse/internal/domain"

// AvailabilityResponse is the slot grid for one venue on one date
type AvailabilityResponse struct {
	VenueID string        `json:"venue_id"`
	Date    string        `json:"date"` // YYYY-MM-DD
	Slots   []domain.Slot `json:"slots"`
}

// AvailabilityDay is one date's grid inside a week response
type AvailabilityDay struct {
	Date  string        `json:"date"` // YYYY-MM-DD
	Slots []domain.Slot `json:"slots"`
}

// WeekAvailabilityResponse is the slot grid for 7 consecutive days
type WeekAvailabilityResponse struct {
	VenueID string            `json:"venue_id"`
	WeekOf  string            `json:"week_of"` // YYYY-MM-DD of the first day
	Days    []AvailabilityDay `json:"days"`
}

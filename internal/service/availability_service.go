package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/internal/dto"
	"github.com/smane4123/PitchPulse/internal/repository"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// AvailabilityService computes the hour-granular slot grid for a venue
type AvailabilityService interface {
	// GetAvailability returns every operating-hours slot on the date with
	// its availability derived from confirmed bookings
	GetAvailability(ctx context.Context, venueID string, date time.Time) (*dto.AvailabilityResponse, error)

	// GetWeekAvailability returns the grids for 7 consecutive days starting
	// at weekStart
	GetWeekAvailability(ctx context.Context, venueID string, weekStart time.Time) (*dto.WeekAvailabilityResponse, error)
}

// availabilityService implements AvailabilityService
type availabilityService struct {
	venueRepo   repository.VenueRepository
	bookingRepo repository.BookingRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	venueRepo repository.VenueRepository,
	bookingRepo repository.BookingRepository,
) AvailabilityService {
	return &availabilityService{
		venueRepo:   venueRepo,
		bookingRepo: bookingRepo,
	}
}

// GetAvailability returns the venue's slot grid for one date. Slots are
// one hour wide, aligned to whole UTC hours, and only confirmed bookings
// mark a slot taken.
func (s *availabilityService) GetAvailability(ctx context.Context, venueID string, date time.Time) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.get")
	defer span.End()

	if venueID == "" {
		span.SetStatus(codes.Error, "invalid venue_id")
		return nil, domain.ErrInvalidVenueID
	}

	span.SetAttributes(
		attribute.String("venue_id", venueID),
		attribute.String("date", date.Format("2006-01-02")),
	)

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	open, close := venue.OperatingHours()

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	from := dayStart.Add(time.Duration(open) * time.Hour)
	to := dayStart.Add(time.Duration(close) * time.Hour)

	taken, err := s.confirmedStarts(ctx, venueID, from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	slots := buildDayGrid(dayStart, open, close, taken)

	span.SetAttributes(attribute.Int("slot_count", len(slots)))
	span.SetStatus(codes.Ok, "")

	return &dto.AvailabilityResponse{
		VenueID: venueID,
		Date:    dayStart.Format("2006-01-02"),
		Slots:   slots,
	}, nil
}

// GetWeekAvailability returns 7 consecutive daily grids starting at
// weekStart, backed by a single range query.
func (s *availabilityService) GetWeekAvailability(ctx context.Context, venueID string, weekStart time.Time) (*dto.WeekAvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.availability.get_week")
	defer span.End()

	if venueID == "" {
		span.SetStatus(codes.Error, "invalid venue_id")
		return nil, domain.ErrInvalidVenueID
	}

	span.SetAttributes(
		attribute.String("venue_id", venueID),
		attribute.String("week_of", weekStart.Format("2006-01-02")),
	)

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	open, close := venue.OperatingHours()

	firstDay := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, time.UTC)
	taken, err := s.confirmedStarts(ctx, venueID, firstDay, firstDay.AddDate(0, 0, 7))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	days := make([]dto.AvailabilityDay, 0, 7)
	for d := 0; d < 7; d++ {
		dayStart := firstDay.AddDate(0, 0, d)
		days = append(days, dto.AvailabilityDay{
			Date:  dayStart.Format("2006-01-02"),
			Slots: buildDayGrid(dayStart, open, close, taken),
		})
	}

	span.SetStatus(codes.Ok, "")

	return &dto.WeekAvailabilityResponse{
		VenueID: venueID,
		WeekOf:  firstDay.Format("2006-01-02"),
		Days:    days,
	}, nil
}

// confirmedStarts loads confirmed booking starts in [from, to) keyed by instant
func (s *availabilityService) confirmedStarts(ctx context.Context, venueID string, from, to time.Time) (map[time.Time]bool, error) {
	starts, err := s.bookingRepo.ListConfirmedStarts(ctx, venueID, from, to)
	if err != nil {
		return nil, err
	}

	taken := make(map[time.Time]bool, len(starts))
	for _, start := range starts {
		taken[start.UTC()] = true
	}
	return taken, nil
}

// buildDayGrid generates the [open, close) hour slots for one UTC date
func buildDayGrid(dayStart time.Time, open, close int, taken map[time.Time]bool) []domain.Slot {
	slots := make([]domain.Slot, 0, close-open)
	for h := open; h < close; h++ {
		slotStart := dayStart.Add(time.Duration(h) * time.Hour)
		slots = append(slots, domain.Slot{
			Time:        fmt.Sprintf("%02d:00", h),
			IsAvailable: !taken[slotStart],
		})
	}
	return slots
}

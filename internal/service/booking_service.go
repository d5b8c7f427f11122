package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/internal/dto"
	"github.com/smane4123/PitchPulse/internal/repository"
	"github.com/smane4123/PitchPulse/pkg/logger"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// BookingService defines the interface for booking business logic
type BookingService interface {
	// CreateBooking books a single slot for the user
	CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)

	// CreateBulkBooking books several slots on one venue atomically; a
	// conflict on any slot fails the whole request
	CreateBulkBooking(ctx context.Context, userID string, req *dto.BulkCreateBookingRequest) (*dto.BookingListResponse, error)

	// GetBooking retrieves one of the user's bookings
	GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error)

	// GetUserBookings retrieves all of the user's bookings
	GetUserBookings(ctx context.Context, userID string) (*dto.BookingListResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	bookingRepo    repository.BookingRepository
	venueRepo      repository.VenueRepository
	holdRepo       repository.SlotHoldRepository
	eventPublisher EventPublisher
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo repository.BookingRepository,
	venueRepo repository.VenueRepository,
	holdRepo repository.SlotHoldRepository,
	eventPublisher EventPublisher,
) BookingService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		bookingRepo:    bookingRepo,
		venueRepo:      venueRepo,
		holdRepo:       holdRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateBooking books a single slot for the user
func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.VenueID == "" {
		span.SetStatus(codes.Error, "invalid venue_id")
		return nil, domain.ErrInvalidVenueID
	}

	hours := req.DurationHours
	if hours == 0 {
		hours = 1
	}
	start, end, err := validateSlotWindow(req.StartTime, hours)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.Price < 0 {
		span.SetStatus(codes.Error, "invalid price")
		return nil, domain.ErrInvalidPrice
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("venue_id", req.VenueID),
		attribute.String("start_time", start.Format(time.RFC3339)),
		attribute.Int("duration_hours", hours),
	)

	venue, err := s.venueRepo.GetByID(ctx, req.VenueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	price := req.Price
	if price <= 0 {
		price = venue.PricePerHour * float64(hours)
	}

	if err := s.checkHolds(ctx, req.VenueID, start, end); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	taken, err := s.bookingRepo.AnyConfirmedOverlap(ctx, req.VenueID, start, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if taken {
		span.SetStatus(codes.Error, "slot taken")
		return nil, domain.ErrSlotTaken
	}

	booking := newConfirmedBooking(req.VenueID, userID, start, end, price)

	// The unique index is the authoritative conflict signal; the overlap
	// precheck above only rejects early
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.eventPublisher.PublishBookingCreated(ctx, booking); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish booking created event",
			"booking_id", booking.ID, "error", err)
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// CreateBulkBooking books several slots atomically
func (s *bookingService) CreateBulkBooking(ctx context.Context, userID string, req *dto.BulkCreateBookingRequest) (*dto.BookingListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create_bulk")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.VenueID == "" {
		span.SetStatus(codes.Error, "invalid venue_id")
		return nil, domain.ErrInvalidVenueID
	}
	if len(req.StartTimes) == 0 {
		span.SetStatus(codes.Error, "empty slot list")
		return nil, domain.ErrEmptySlotList
	}
	if req.Price < 0 {
		span.SetStatus(codes.Error, "invalid price")
		return nil, domain.ErrInvalidPrice
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("venue_id", req.VenueID),
		attribute.Int("slot_count", len(req.StartTimes)),
	)

	venue, err := s.venueRepo.GetByID(ctx, req.VenueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	price := req.Price
	if price <= 0 {
		price = venue.PricePerHour
	}

	seen := make(map[time.Time]bool, len(req.StartTimes))
	bookings := make([]*domain.Booking, 0, len(req.StartTimes))
	for _, startTime := range req.StartTimes {
		start, end, err := validateSlotWindow(startTime, 1)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if seen[start] {
			span.SetStatus(codes.Error, "duplicate slot")
			return nil, domain.ErrSlotTaken
		}
		seen[start] = true

		if err := s.checkHolds(ctx, req.VenueID, start, end); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		bookings = append(bookings, newConfirmedBooking(req.VenueID, userID, start, end, price))
	}

	// One transaction; any conflicting slot rolls back every insert
	if err := s.bookingRepo.CreateBatch(ctx, bookings); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	for _, booking := range bookings {
		if err := s.eventPublisher.PublishBookingCreated(ctx, booking); err != nil {
			logger.Get().WarnContext(ctx, "failed to publish booking created event",
				"booking_id", booking.ID, "error", err)
		}
	}

	span.SetStatus(codes.Ok, "")
	return &dto.BookingListResponse{
		Bookings: dto.BookingsFromDomain(bookings),
		Total:    len(bookings),
	}, nil
}

// GetBooking retrieves one of the user's bookings
func (s *bookingService) GetBooking(ctx context.Context, bookingID, userID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get")
	defer span.End()

	if bookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}
	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("booking_id", bookingID),
		attribute.String("user_id", userID),
	)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotBookingOwner
	}

	span.SetStatus(codes.Ok, "")
	return dto.BookingFromDomain(booking), nil
}

// GetUserBookings retrieves all of the user's bookings
func (s *bookingService) GetUserBookings(ctx context.Context, userID string) (*dto.BookingListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_by_user")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(attribute.String("user_id", userID))

	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.BookingListResponse{
		Bookings: dto.BookingsFromDomain(bookings),
		Total:    len(bookings),
	}, nil
}

// checkHolds rejects slots held by an in-flight payment. Hold reads fail
// open: holds are advisory and the unique index still guards the insert.
func (s *bookingService) checkHolds(ctx context.Context, venueID string, start, end time.Time) error {
	if s.holdRepo == nil {
		return nil
	}

	for slot := start; slot.Before(end); slot = slot.Add(time.Hour) {
		token, err := s.holdRepo.HeldBy(ctx, venueID, slot)
		if err != nil {
			logger.Get().WarnContext(ctx, "slot hold check failed",
				"venue_id", venueID, "error", err)
			return nil
		}
		if token != "" {
			return domain.ErrSlotHeld
		}
	}

	return nil
}

// validateSlotWindow normalizes a slot request into a whole-hour UTC
// half-open interval
func validateSlotWindow(start time.Time, hours int) (time.Time, time.Time, error) {
	if hours < 1 {
		return time.Time{}, time.Time{}, domain.ErrInvalidDuration
	}

	start = start.UTC()
	if start.IsZero() || !start.Truncate(time.Hour).Equal(start) {
		return time.Time{}, time.Time{}, domain.ErrInvalidStartTime
	}

	return start, start.Add(time.Duration(hours) * time.Hour), nil
}

// newConfirmedBooking builds a confirmed booking for the slot window
func newConfirmedBooking(venueID, userID string, start, end time.Time, price float64) *domain.Booking {
	now := time.Now().UTC()
	return &domain.Booking{
		ID:        uuid.New().String(),
		VenueID:   venueID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Price:     price,
		Status:    domain.BookingStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

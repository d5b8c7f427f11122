package service

import (
	"context"
	"math"
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

// ReviewService defines review business logic and rating aggregation
type ReviewService interface {
	// CreateReview reviews one of the user's confirmed bookings
	CreateReview(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)

	// DeleteReview removes one of the user's reviews
	DeleteReview(ctx context.Context, reviewID, userID string) error

	// GetVenueReviews retrieves a venue's reviews
	GetVenueReviews(ctx context.Context, venueID string) (*dto.ReviewListResponse, error)
}

// reviewService implements ReviewService
type reviewService struct {
	reviewRepo     repository.ReviewRepository
	bookingRepo    repository.BookingRepository
	venueRepo      repository.VenueRepository
	eventPublisher EventPublisher
}

// NewReviewService creates a new review service
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	bookingRepo repository.BookingRepository,
	venueRepo repository.VenueRepository,
	eventPublisher EventPublisher,
) ReviewService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &reviewService{
		reviewRepo:     reviewRepo,
		bookingRepo:    bookingRepo,
		venueRepo:      venueRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateReview reviews one of the user's confirmed bookings
func (s *reviewService) CreateReview(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.create")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req == nil || req.BookingID == "" {
		span.SetStatus(codes.Error, "invalid booking_id")
		return nil, domain.ErrInvalidBookingID
	}
	if req.Rating < 1 || req.Rating > 5 {
		span.SetStatus(codes.Error, "invalid rating")
		return nil, domain.ErrInvalidRating
	}
	if len(req.Comment) > domain.MaxCommentLength {
		span.SetStatus(codes.Error, "comment too long")
		return nil, domain.ErrCommentTooLong
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("booking_id", req.BookingID),
		attribute.Int("rating", req.Rating),
	)

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !booking.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotBookingOwner
	}
	if booking.HasBeenReviewed {
		span.SetStatus(codes.Error, "already reviewed")
		return nil, domain.ErrAlreadyReviewed
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		VenueID:   booking.VenueID,
		UserID:    userID,
		BookingID: booking.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	// The unique index on booking_id is the authoritative duplicate guard;
	// the flag check above only rejects early. Create also flags the booking
	// as reviewed in the same transaction.
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.recomputeRating(ctx, booking.VenueID)

	if err := s.eventPublisher.PublishReviewCreated(ctx, review); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish review created event",
			"review_id", review.ID, "error", err)
	}

	span.SetStatus(codes.Ok, "")
	return dto.ReviewFromDomain(review), nil
}

// DeleteReview removes one of the user's reviews
func (s *reviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.review.delete")
	defer span.End()

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("review_id", reviewID),
		attribute.String("user_id", userID),
	)

	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if !review.BelongsToUser(userID) {
		span.SetStatus(codes.Error, "not owner")
		return domain.ErrNotReviewOwner
	}

	// Delete clears the booking's reviewed flag in the same transaction
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.recomputeRating(ctx, review.VenueID)

	if err := s.eventPublisher.PublishReviewDeleted(ctx, review); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish review deleted event",
			"review_id", review.ID, "error", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetVenueReviews retrieves a venue's reviews
func (s *reviewService) GetVenueReviews(ctx context.Context, venueID string) (*dto.ReviewListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.list_by_venue")
	defer span.End()

	if venueID == "" {
		span.SetStatus(codes.Error, "invalid venue_id")
		return nil, domain.ErrInvalidVenueID
	}

	span.SetAttributes(attribute.String("venue_id", venueID))

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByVenue(ctx, venueID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.ReviewListResponse{
		Reviews:       dto.ReviewsFromDomain(reviews),
		Total:         len(reviews),
		AverageRating: venue.AverageRating,
	}, nil
}

// recomputeRating recalculates the venue's aggregates from a full scan of
// its reviews. A venue with no reviews resets to zero. Failures are logged
// but never fail the review operation that triggered them; the next
// recompute self-heals.
func (s *reviewService) recomputeRating(ctx context.Context, venueID string) {
	ctx, span := telemetry.StartSpan(ctx, "service.review.recompute_rating")
	defer span.End()

	span.SetAttributes(attribute.String("venue_id", venueID))

	average, count, err := s.reviewRepo.AggregateByVenue(ctx, venueID)
	if err != nil {
		logger.Get().ErrorContext(ctx, "failed to aggregate venue reviews",
			"venue_id", venueID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	rounded := 0.0
	if count > 0 {
		rounded = math.Round(average*10) / 10
	}

	if err := s.venueRepo.UpdateRating(ctx, venueID, rounded, count); err != nil {
		logger.Get().ErrorContext(ctx, "failed to update venue rating",
			"venue_id", venueID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(
		attribute.Float64("average_rating", rounded),
		attribute.Int("review_count", count),
	)
	span.SetStatus(codes.Ok, "")
}

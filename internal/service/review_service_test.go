package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/internal/dto"
)

// MockReviewRepository is a mock implementation of ReviewRepository
type MockReviewRepository struct {
	CreateFunc           func(ctx context.Context, review *domain.Review) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Review, error)
	ListByVenueFunc      func(ctx context.Context, venueID string) ([]*domain.Review, error)
	DeleteFunc           func(ctx context.Context, id string) error
	AggregateByVenueFunc func(ctx context.Context, venueID string) (float64, int, error)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, review)
	}
	return nil
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrReviewNotFound
}

func (m *MockReviewRepository) ListByVenue(ctx context.Context, venueID string) ([]*domain.Review, error) {
	if m.ListByVenueFunc != nil {
		return m.ListByVenueFunc(ctx, venueID)
	}
	return []*domain.Review{}, nil
}

func (m *MockReviewRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockReviewRepository) AggregateByVenue(ctx context.Context, venueID string) (float64, int, error) {
	if m.AggregateByVenueFunc != nil {
		return m.AggregateByVenueFunc(ctx, venueID)
	}
	return 0, 0, nil
}

func reviewableBooking() *domain.Booking {
	return &domain.Booking{
		ID:        "booking-123",
		VenueID:   "venue-001",
		UserID:    "user-001",
		StartTime: slotStart,
		EndTime:   slotStart.Add(time.Hour),
		Status:    domain.BookingStatusConfirmed,
	}
}

func TestReviewService_CreateReview(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		req        *dto.CreateReviewRequest
		setupMocks func(*MockReviewRepository, *MockBookingRepository, *MockVenueRepository)
		wantErr    error
	}{
		{
			name:   "successful review",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    4,
				Comment:   "great pitch",
			},
			setupMocks: func(rr *MockReviewRepository, br *MockBookingRepository, vr *MockVenueRepository) {
				br.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return reviewableBooking(), nil
				}
			},
			wantErr: nil,
		},
		{
			name:   "rating too low",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    0,
			},
			wantErr: domain.ErrInvalidRating,
		},
		{
			name:   "rating too high",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    6,
			},
			wantErr: domain.ErrInvalidRating,
		},
		{
			name:   "comment too long",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    4,
				Comment:   strings.Repeat("a", domain.MaxCommentLength+1),
			},
			wantErr: domain.ErrCommentTooLong,
		},
		{
			name:   "booking not found",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "nonexistent",
				Rating:    4,
			},
			wantErr: domain.ErrBookingNotFound,
		},
		{
			name:   "not the booking owner",
			userID: "user-002",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    4,
			},
			setupMocks: func(rr *MockReviewRepository, br *MockBookingRepository, vr *MockVenueRepository) {
				br.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return reviewableBooking(), nil
				}
			},
			wantErr: domain.ErrNotBookingOwner,
		},
		{
			name:   "already reviewed flag rejects early",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    4,
			},
			setupMocks: func(rr *MockReviewRepository, br *MockBookingRepository, vr *MockVenueRepository) {
				br.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					booking := reviewableBooking()
					booking.HasBeenReviewed = true
					return booking, nil
				}
			},
			wantErr: domain.ErrAlreadyReviewed,
		},
		{
			name:   "duplicate insert loses to unique index",
			userID: "user-001",
			req: &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    4,
			},
			setupMocks: func(rr *MockReviewRepository, br *MockBookingRepository, vr *MockVenueRepository) {
				br.GetByIDFunc = func(ctx context.Context, id string) (*domain.Booking, error) {
					return reviewableBooking(), nil
				}
				rr.CreateFunc = func(ctx context.Context, review *domain.Review) error {
					return domain.ErrAlreadyReviewed
				}
			},
			wantErr: domain.ErrAlreadyReviewed,
		},
		{
			name:    "missing booking ID",
			userID:  "user-001",
			req:     &dto.CreateReviewRequest{Rating: 4},
			wantErr: domain.ErrInvalidBookingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewRepo := &MockReviewRepository{}
			bookingRepo := &MockBookingRepository{}
			venueRepo := &MockVenueRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(reviewRepo, bookingRepo, venueRepo)
			}

			svc := NewReviewService(reviewRepo, bookingRepo, venueRepo, nil)

			resp, err := svc.CreateReview(context.Background(), tt.userID, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateReview() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("CreateReview() unexpected error = %v", err)
				return
			}

			if resp.VenueID != "venue-001" {
				t.Errorf("CreateReview() venue = %v, want venue-001", resp.VenueID)
			}
			if resp.Rating != tt.req.Rating {
				t.Errorf("CreateReview() rating = %d, want %d", resp.Rating, tt.req.Rating)
			}
		})
	}
}

func TestReviewService_CreateReview_RecomputesRating(t *testing.T) {
	tests := []struct {
		name        string
		average     float64
		count       int
		wantRounded float64
	}{
		{"rounds to one decimal", 4.4666, 3, 4.5},
		{"rounds down", 4.44, 5, 4.4},
		{"exact average unchanged", 4.0, 2, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRating float64
			var gotCount int

			reviewRepo := &MockReviewRepository{
				AggregateByVenueFunc: func(ctx context.Context, venueID string) (float64, int, error) {
					return tt.average, tt.count, nil
				},
			}
			bookingRepo := &MockBookingRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
					return reviewableBooking(), nil
				},
			}
			venueRepo := &MockVenueRepository{
				UpdateRatingFunc: func(ctx context.Context, venueID string, averageRating float64, numberOfReviews int) error {
					gotRating = averageRating
					gotCount = numberOfReviews
					return nil
				},
			}

			svc := NewReviewService(reviewRepo, bookingRepo, venueRepo, nil)

			_, err := svc.CreateReview(context.Background(), "user-001", &dto.CreateReviewRequest{
				BookingID: "booking-123",
				Rating:    5,
			})
			if err != nil {
				t.Fatalf("CreateReview() unexpected error = %v", err)
			}

			if gotRating != tt.wantRounded {
				t.Errorf("UpdateRating average = %v, want %v", gotRating, tt.wantRounded)
			}
			if gotCount != tt.count {
				t.Errorf("UpdateRating count = %d, want %d", gotCount, tt.count)
			}
		})
	}
}

func TestReviewService_CreateReview_RecomputeFailureDoesNotFail(t *testing.T) {
	reviewRepo := &MockReviewRepository{
		AggregateByVenueFunc: func(ctx context.Context, venueID string) (float64, int, error) {
			return 0, 0, errors.New("db down")
		},
	}
	bookingRepo := &MockBookingRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Booking, error) {
			return reviewableBooking(), nil
		},
	}

	svc := NewReviewService(reviewRepo, bookingRepo, &MockVenueRepository{}, nil)

	if _, err := svc.CreateReview(context.Background(), "user-001", &dto.CreateReviewRequest{
		BookingID: "booking-123",
		Rating:    5,
	}); err != nil {
		t.Errorf("CreateReview() should not fail on recompute error, got %v", err)
	}
}

func TestReviewService_DeleteReview(t *testing.T) {
	tests := []struct {
		name       string
		reviewID   string
		userID     string
		setupMocks func(*MockReviewRepository, *MockBookingRepository, *MockVenueRepository)
		wantErr    error
	}{
		{
			name:     "successful delete",
			reviewID: "review-123",
			userID:   "user-001",
			setupMocks: func(rr *MockReviewRepository, br *MockBookingRepository, vr *MockVenueRepository) {
				rr.GetByIDFunc = func(ctx context.Context, id string) (*domain.Review, error) {
					return &domain.Review{
						ID:        id,
						VenueID:   "venue-001",
						UserID:    "user-001",
						BookingID: "booking-123",
						Rating:    4,
					}, nil
				}
			},
			wantErr: nil,
		},
		{
			name:     "review not found",
			reviewID: "nonexistent",
			userID:   "user-001",
			wantErr:  domain.ErrReviewNotFound,
		},
		{
			name:     "not the review owner",
			reviewID: "review-123",
			userID:   "user-002",
			setupMocks: func(rr *MockReviewRepository, br *MockBookingRepository, vr *MockVenueRepository) {
				rr.GetByIDFunc = func(ctx context.Context, id string) (*domain.Review, error) {
					return &domain.Review{
						ID:     id,
						UserID: "user-001",
					}, nil
				}
			},
			wantErr: domain.ErrNotReviewOwner,
		},
		{
			name:     "missing user ID",
			reviewID: "review-123",
			userID:   "",
			wantErr:  domain.ErrInvalidUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewRepo := &MockReviewRepository{}
			bookingRepo := &MockBookingRepository{}
			venueRepo := &MockVenueRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(reviewRepo, bookingRepo, venueRepo)
			}

			svc := NewReviewService(reviewRepo, bookingRepo, venueRepo, nil)

			err := svc.DeleteReview(context.Background(), tt.reviewID, tt.userID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("DeleteReview() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("DeleteReview() unexpected error = %v", err)
			}
		})
	}
}

func TestReviewService_DeleteReview_ResetsRatingWhenLastReviewGone(t *testing.T) {
	var gotRating float64
	var gotCount int
	deleted := false

	reviewRepo := &MockReviewRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*domain.Review, error) {
			return &domain.Review{
				ID:        id,
				VenueID:   "venue-001",
				UserID:    "user-001",
				BookingID: "booking-123",
			}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
		AggregateByVenueFunc: func(ctx context.Context, venueID string) (float64, int, error) {
			return 0, 0, nil
		},
	}
	venueRepo := &MockVenueRepository{
		UpdateRatingFunc: func(ctx context.Context, venueID string, averageRating float64, numberOfReviews int) error {
			gotRating = averageRating
			gotCount = numberOfReviews
			return nil
		},
	}

	svc := NewReviewService(reviewRepo, &MockBookingRepository{}, venueRepo, nil)

	if err := svc.DeleteReview(context.Background(), "review-123", "user-001"); err != nil {
		t.Fatalf("DeleteReview() unexpected error = %v", err)
	}

	if !deleted {
		t.Error("expected review to be deleted")
	}
	if gotRating != 0 || gotCount != 0 {
		t.Errorf("UpdateRating = (%v, %d), want (0, 0)", gotRating, gotCount)
	}
}

func TestReviewService_GetVenueReviews(t *testing.T) {
	tests := []struct {
		name       string
		venueID    string
		setupMocks func(*MockReviewRepository, *MockVenueRepository)
		wantErr    error
		wantCount  int
		wantAvg    float64
	}{
		{
			name:    "successful list",
			venueID: "venue-001",
			setupMocks: func(rr *MockReviewRepository, vr *MockVenueRepository) {
				vr.GetByIDFunc = func(ctx context.Context, id string) (*domain.Venue, error) {
					venue := testVenue()
					venue.AverageRating = 4.5
					return venue, nil
				}
				rr.ListByVenueFunc = func(ctx context.Context, venueID string) ([]*domain.Review, error) {
					return []*domain.Review{
						{ID: "review-1", VenueID: venueID, Rating: 5},
						{ID: "review-2", VenueID: venueID, Rating: 4},
					}, nil
				}
			},
			wantCount: 2,
			wantAvg:   4.5,
		},
		{
			name:    "venue not found",
			venueID: "missing",
			wantErr: domain.ErrVenueNotFound,
		},
		{
			name:    "missing venue ID",
			venueID: "",
			wantErr: domain.ErrInvalidVenueID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviewRepo := &MockReviewRepository{}
			venueRepo := &MockVenueRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(reviewRepo, venueRepo)
			}

			svc := NewReviewService(reviewRepo, &MockBookingRepository{}, venueRepo, nil)

			resp, err := svc.GetVenueReviews(context.Background(), tt.venueID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetVenueReviews() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("GetVenueReviews() unexpected error = %v", err)
				return
			}

			if resp.Total != tt.wantCount {
				t.Errorf("GetVenueReviews() total = %d, want %d", resp.Total, tt.wantCount)
			}
			if resp.AverageRating != tt.wantAvg {
				t.Errorf("GetVenueReviews() average = %v, want %v", resp.AverageRating, tt.wantAvg)
			}
		})
	}
}

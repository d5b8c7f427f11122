package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/internal/dto"
)

// MockReviewService is a mock implementation of ReviewService for testing
type MockReviewService struct {
	CreateReviewFunc    func(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	DeleteReviewFunc    func(ctx context.Context, reviewID, userID string) error
	GetVenueReviewsFunc func(ctx context.Context, venueID string) (*dto.ReviewListResponse, error)
}

func (m *MockReviewService) CreateReview(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if m.CreateReviewFunc != nil {
		return m.CreateReviewFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockReviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	if m.DeleteReviewFunc != nil {
		return m.DeleteReviewFunc(ctx, reviewID, userID)
	}
	return nil
}

func (m *MockReviewService) GetVenueReviews(ctx context.Context, venueID string) (*dto.ReviewListResponse, error) {
	if m.GetVenueReviewsFunc != nil {
		return m.GetVenueReviewsFunc(ctx, venueID)
	}
	return nil, nil
}

func setupReviewRouter(handler *ReviewHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}

	reviews := router.Group("/reviews")
	{
		reviews.POST("", handler.CreateReview)
		reviews.DELETE("/:id", handler.DeleteReview)
		reviews.GET("/venue/:id", handler.GetVenueReviews)
	}

	return router
}

func TestReviewHandler_CreateReview(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockFunc       func(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
		expectedStatus int
	}{
		{
			name: "successful review",
			body: dto.CreateReviewRequest{BookingID: "booking-123", Rating: 4, Comment: "nice"},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
				return &dto.ReviewResponse{ID: "review-123", Rating: req.Rating}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid rating",
			body: dto.CreateReviewRequest{BookingID: "booking-123", Rating: 9},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
				return nil, domain.ErrInvalidRating
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "already reviewed returns conflict",
			body: dto.CreateReviewRequest{BookingID: "booking-123", Rating: 4},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
				return nil, domain.ErrAlreadyReviewed
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "not the booking owner",
			body: dto.CreateReviewRequest{BookingID: "booking-123", Rating: 4},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
				return nil, domain.ErrNotBookingOwner
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockReviewService{CreateReviewFunc: tt.mockFunc}
			router := setupReviewRouter(NewReviewHandler(svc), "user-001")

			var body bytes.Buffer
			if err := json.NewEncoder(&body).Encode(tt.body); err != nil {
				t.Fatalf("failed to encode body: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/reviews", &body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestReviewHandler_DeleteReview(t *testing.T) {
	tests := []struct {
		name           string
		reviewID       string
		mockFunc       func(ctx context.Context, reviewID, userID string) error
		expectedStatus int
	}{
		{
			name:           "successful delete",
			reviewID:       "review-123",
			expectedStatus: http.StatusOK,
		},
		{
			name:     "review not found",
			reviewID: "nonexistent",
			mockFunc: func(ctx context.Context, reviewID, userID string) error {
				return domain.ErrReviewNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:     "not the owner",
			reviewID: "review-123",
			mockFunc: func(ctx context.Context, reviewID, userID string) error {
				return domain.ErrNotReviewOwner
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockReviewService{DeleteReviewFunc: tt.mockFunc}
			router := setupReviewRouter(NewReviewHandler(svc), "user-001")

			req := httptest.NewRequest(http.MethodDelete, "/reviews/"+tt.reviewID, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestReviewHandler_GetVenueReviews(t *testing.T) {
	svc := &MockReviewService{
		GetVenueReviewsFunc: func(ctx context.Context, venueID string) (*dto.ReviewListResponse, error) {
			return &dto.ReviewListResponse{
				Reviews:       []*dto.ReviewResponse{{ID: "review-1", Rating: 5}},
				Total:         1,
				AverageRating: 5.0,
			}, nil
		},
	}
	router := setupReviewRouter(NewReviewHandler(svc), "")

	req := httptest.NewRequest(http.MethodGet, "/reviews/venue/venue-001", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	var data dto.ReviewListResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.Total != 1 || data.AverageRating != 5.0 {
		t.Errorf("unexpected payload: %+v", data)
	}
}

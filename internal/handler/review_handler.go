package handler

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/dto"
	"github.com/smane4123/PitchPulse/internal/service"
	"github.com/smane4123/PitchPulse/pkg/middleware"
	"github.com/smane4123/PitchPulse/pkg/response"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.MustGetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("booking_id", req.BookingID),
		attribute.Int("rating", req.Rating),
	)

	result, err := h.reviewService.CreateReview(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("review_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// DeleteReview handles DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.MustGetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	reviewID := c.Param("id")
	if reviewID == "" {
		span.SetStatus(codes.Error, "review id required")
		response.BadRequest(c, "review id required")
		return
	}

	span.SetAttributes(
		attribute.String("review_id", reviewID),
		attribute.String("user_id", userID),
	)

	if err := h.reviewService.DeleteReview(ctx, reviewID, userID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"deleted": true})
}

// GetVenueReviews handles GET /reviews/venue/:id
func (h *ReviewHandler) GetVenueReviews(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.review.list_by_venue")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	venueID := c.Param("id")
	if venueID == "" {
		span.SetStatus(codes.Error, "venue id required")
		response.BadRequest(c, "venue id required")
		return
	}

	span.SetAttributes(attribute.String("venue_id", venueID))

	result, err := h.reviewService.GetVenueReviews(ctx, venueID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

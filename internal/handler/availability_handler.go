package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/service"
	"github.com/smane4123/PitchPulse/pkg/response"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// AvailabilityHandler handles slot availability HTTP requests
type AvailabilityHandler struct {
	availabilityService service.AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(availabilityService service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// GetAvailability handles GET /availability?venue_id=...&date=YYYY-MM-DD.
// Passing week_of=YYYY-MM-DD instead of date returns grids for 7
// consecutive days starting there.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.availability.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	venueID := c.Query("venue_id")
	if venueID == "" {
		span.SetStatus(codes.Error, "venue_id required")
		response.BadRequest(c, "venue_id is required")
		return
	}
	span.SetAttributes(attribute.String("venue_id", venueID))

	if w := c.Query("week_of"); w != "" {
		weekStart, err := time.Parse("2006-01-02", w)
		if err != nil {
			span.SetStatus(codes.Error, "invalid week_of")
			response.BadRequest(c, "week_of must be YYYY-MM-DD")
			return
		}
		span.SetAttributes(attribute.String("week_of", w))

		result, err := h.availabilityService.GetWeekAvailability(ctx, venueID, weekStart)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			handleError(c, err)
			return
		}

		span.SetStatus(codes.Ok, "")
		response.Success(c, result)
		return
	}

	date := time.Now().UTC()
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			span.SetStatus(codes.Error, "invalid date")
			response.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}
	span.SetAttributes(attribute.String("date", date.Format("2006-01-02")))

	result, err := h.availabilityService.GetAvailability(ctx, venueID, date)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

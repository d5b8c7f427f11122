package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/pkg/response"
)

// handleError maps domain errors onto the HTTP error taxonomy shared by
// every handler
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrNotBookingOwner),
		errors.Is(err, domain.ErrNotReviewOwner):
		response.Forbidden(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrSignatureMismatch):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrGatewayUnavailable):
		response.Error(c, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "Payment gateway unavailable", err.Error())
	default:
		response.InternalError(c, err)
	}
}

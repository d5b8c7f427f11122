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

// PaymentHandler handles payment settlement HTTP requests
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateOrder handles POST /payment/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.create_order")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := middleware.MustGetUserID(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("venue_id", req.VenueID),
	)

	result, err := h.paymentService.CreateOrder(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("order_id", result.OrderID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// VerifyPayment handles POST /payment/verify-payment
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.payment.verify")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("payment_id", req.PaymentID),
	)

	result, err := h.paymentService.VerifyPayment(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("already_processed", result.AlreadyProcessed))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetKey handles GET /payment/key
func (h *PaymentHandler) GetKey(c *gin.Context) {
	response.Success(c, h.paymentService.Key())
}

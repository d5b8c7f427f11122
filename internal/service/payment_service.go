package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/internal/dto"
	"github.com/smane4123/PitchPulse/internal/gateway"
	"github.com/smane4123/PitchPulse/internal/repository"
	"github.com/smane4123/PitchPulse/pkg/logger"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// Keys for the booking details attached to a gateway order. The re-fetched
// order is the source of truth at settlement; nothing client-supplied is
// trusted beyond the order and payment IDs.
const (
	noteVenueID   = "venue_id"
	noteUserID    = "user_id"
	noteStartTime = "start_time"
	noteEndTime   = "end_time"
	notePrice     = "price"
)

// PaymentService defines the payment settlement flow
type PaymentService interface {
	// CreateOrder opens a gateway order for a slot and places a short-lived
	// hold on it while the client completes payment
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)

	// VerifyPayment checks the gateway signature, confirms the payment
	// exists at the gateway, and materializes the booking from the
	// re-fetched order. Idempotent by payment ID.
	VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)

	// Key returns the publishable gateway key for client checkout
	Key() *dto.PaymentKeyResponse
}

// paymentService implements PaymentService
type paymentService struct {
	gateway        gateway.PaymentGateway
	bookingRepo    repository.BookingRepository
	venueRepo      repository.VenueRepository
	holdRepo       repository.SlotHoldRepository
	eventPublisher EventPublisher
	keyID          string
	keySecret      string
	currency       string
	holdTTL        time.Duration
}

// PaymentServiceConfig contains configuration for the payment service
type PaymentServiceConfig struct {
	KeyID     string
	KeySecret string
	Currency  string
	HoldTTL   time.Duration
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	gw gateway.PaymentGateway,
	bookingRepo repository.BookingRepository,
	venueRepo repository.VenueRepository,
	holdRepo repository.SlotHoldRepository,
	eventPublisher EventPublisher,
	cfg *PaymentServiceConfig,
) PaymentService {
	currency := "INR"
	holdTTL := 10 * time.Minute
	keyID, keySecret := "", ""
	if cfg != nil {
		if cfg.Currency != "" {
			currency = cfg.Currency
		}
		if cfg.HoldTTL > 0 {
			holdTTL = cfg.HoldTTL
		}
		keyID = cfg.KeyID
		keySecret = cfg.KeySecret
	}
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &paymentService{
		gateway:        gw,
		bookingRepo:    bookingRepo,
		venueRepo:      venueRepo,
		holdRepo:       holdRepo,
		eventPublisher: eventPublisher,
		keyID:          keyID,
		keySecret:      keySecret,
		currency:       currency,
		holdTTL:        holdTTL,
	}
}

// CreateOrder opens a gateway order for a slot
func (s *paymentService) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.create_order")
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

	price := venue.PricePerHour * float64(hours)

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

	// Hold the slot while the client pays. The hold expires on its own; a
	// completed payment still settles because the unique index, not the
	// hold, decides conflicts.
	receipt := "rcpt_" + uuid.New().String()
	held, err := s.acquireHolds(ctx, req.VenueID, start, end, receipt)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, &gateway.CreateOrderRequest{
		Amount:   toSubunits(price),
		Currency: s.currency,
		Receipt:  receipt,
		Notes: map[string]string{
			noteVenueID:   req.VenueID,
			noteUserID:    userID,
			noteStartTime: start.Format(time.RFC3339),
			noteEndTime:   end.Format(time.RFC3339),
			notePrice:     strconv.FormatFloat(price, 'f', -1, 64),
		},
	})
	if err != nil {
		s.releaseHolds(ctx, req.VenueID, held, receipt)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Re-key the holds to the order so settlement can release them
	for _, slot := range held {
		if ok, err := s.holdRepo.Swap(ctx, req.VenueID, slot, receipt, order.ID, s.holdTTL); err != nil || !ok {
			logger.Get().WarnContext(ctx, "failed to re-key slot hold",
				"venue_id", req.VenueID, "order_id", order.ID, "error", err)
		}
	}

	span.SetAttributes(attribute.String("order_id", order.ID))
	span.SetStatus(codes.Ok, "")

	return &dto.CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    s.keyID,
	}, nil
}

// VerifyPayment settles a completed payment into a confirmed booking
func (s *paymentService) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.verify")
	defer span.End()

	if req == nil || req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		span.SetStatus(codes.Error, "signature mismatch")
		return nil, domain.ErrSignatureMismatch
	}

	span.SetAttributes(
		attribute.String("order_id", req.OrderID),
		attribute.String("payment_id", req.PaymentID),
	)

	if !s.signatureValid(req.OrderID, req.PaymentID, req.Signature) {
		span.SetStatus(codes.Error, "signature mismatch")
		return nil, domain.ErrSignatureMismatch
	}

	// Idempotency probe: a payment settles at most one booking
	existing, err := s.bookingRepo.GetByPaymentRef(ctx, req.PaymentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetAttributes(attribute.Bool("already_processed", true))
		span.SetStatus(codes.Ok, "")
		return &dto.VerifyPaymentResponse{
			Booking:          dto.BookingFromDomain(existing),
			AlreadyProcessed: true,
		}, nil
	}

	// The payment must exist at the gateway and belong to this order; a
	// valid signature alone does not prove the payment happened
	payment, err := s.gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if payment.OrderID != "" && payment.OrderID != req.OrderID {
		span.SetStatus(codes.Error, "payment bound to different order")
		return nil, domain.ErrSignatureMismatch
	}

	// Booking details come from the re-fetched order, never the client
	order, err := s.gateway.FetchOrder(ctx, req.OrderID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	booking, err := bookingFromOrder(order, req.PaymentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			// Either a concurrent verify of the same payment won, or the
			// slot went to someone else while payment was in flight
			if winner, probeErr := s.bookingRepo.GetByPaymentRef(ctx, req.PaymentID); probeErr == nil && winner != nil {
				span.SetAttributes(attribute.Bool("already_processed", true))
				span.SetStatus(codes.Ok, "")
				return &dto.VerifyPaymentResponse{
					Booking:          dto.BookingFromDomain(winner),
					AlreadyProcessed: true,
				}, nil
			}
			s.releaseHoldWindow(ctx, booking, req.OrderID)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.releaseHoldWindow(ctx, booking, req.OrderID)

	if err := s.eventPublisher.PublishBookingSettled(ctx, booking); err != nil {
		logger.Get().WarnContext(ctx, "failed to publish booking settled event",
			"booking_id", booking.ID, "error", err)
	}

	span.SetStatus(codes.Ok, "")
	return &dto.VerifyPaymentResponse{
		Booking: dto.BookingFromDomain(booking),
	}, nil
}

// Key returns the publishable gateway key
func (s *paymentService) Key() *dto.PaymentKeyResponse {
	return &dto.PaymentKeyResponse{KeyID: s.keyID}
}

// signatureValid checks the gateway callback signature:
// HMAC-SHA256(orderID + "|" + paymentID) under the key secret, hex-encoded
func (s *paymentService) signatureValid(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// acquireHolds holds every hour slot in [start, end); on any failure the
// slots already held are released
func (s *paymentService) acquireHolds(ctx context.Context, venueID string, start, end time.Time, token string) ([]time.Time, error) {
	if s.holdRepo == nil {
		return nil, nil
	}

	var held []time.Time
	for slot := start; slot.Before(end); slot = slot.Add(time.Hour) {
		ok, err := s.holdRepo.Acquire(ctx, venueID, slot, token, s.holdTTL)
		if err != nil {
			// Holds are advisory; a Redis failure must not block payments
			logger.Get().WarnContext(ctx, "slot hold acquire failed",
				"venue_id", venueID, "error", err)
			continue
		}
		if !ok {
			s.releaseHolds(ctx, venueID, held, token)
			return nil, domain.ErrSlotHeld
		}
		held = append(held, slot)
	}

	return held, nil
}

func (s *paymentService) releaseHolds(ctx context.Context, venueID string, slots []time.Time, token string) {
	for _, slot := range slots {
		if err := s.holdRepo.Release(ctx, venueID, slot, token); err != nil {
			logger.Get().WarnContext(ctx, "slot hold release failed",
				"venue_id", venueID, "error", err)
		}
	}
}

// releaseHoldWindow releases the order's holds across the booking window
func (s *paymentService) releaseHoldWindow(ctx context.Context, booking *domain.Booking, orderID string) {
	if s.holdRepo == nil {
		return
	}
	var slots []time.Time
	for slot := booking.StartTime; slot.Before(booking.EndTime); slot = slot.Add(time.Hour) {
		slots = append(slots, slot)
	}
	s.releaseHolds(ctx, booking.VenueID, slots, orderID)
}

// bookingFromOrder materializes a confirmed booking from the order notes
func bookingFromOrder(order *gateway.Order, paymentID string) (*domain.Booking, error) {
	venueID := order.Notes[noteVenueID]
	userID := order.Notes[noteUserID]
	if venueID == "" || userID == "" {
		return nil, fmt.Errorf("order %s has incomplete notes", order.ID)
	}

	start, err := time.Parse(time.RFC3339, order.Notes[noteStartTime])
	if err != nil {
		return nil, fmt.Errorf("order %s has invalid start time: %w", order.ID, err)
	}
	end, err := time.Parse(time.RFC3339, order.Notes[noteEndTime])
	if err != nil {
		return nil, fmt.Errorf("order %s has invalid end time: %w", order.ID, err)
	}

	price, err := strconv.ParseFloat(order.Notes[notePrice], 64)
	if err != nil {
		// Fall back to the order amount when the note is unusable
		price = float64(order.Amount) / 100
	}

	now := time.Now().UTC()
	return &domain.Booking{
		ID:         uuid.New().String(),
		VenueID:    venueID,
		UserID:     userID,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Price:      price,
		Status:     domain.BookingStatusConfirmed,
		PaymentRef: paymentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// toSubunits converts a price to the currency's smallest subunit
func toSubunits(price float64) int64 {
	return int64(math.Round(price * 100))
}

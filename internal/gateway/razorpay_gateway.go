package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/pkg/retry"
	"github.com/smane4123/PitchPulse/pkg/telemetry"
)

// RazorpayGateway implements PaymentGateway using Razorpay
type RazorpayGateway struct {
	client  *razorpay.Client
	config  *RazorpayGatewayConfig
	retrier *retry.Retrier
}

// RazorpayGatewayConfig holds configuration for the Razorpay gateway
type RazorpayGatewayConfig struct {
	KeyID     string
	KeySecret string
}

var _ PaymentGateway = (*RazorpayGateway)(nil)

// NewRazorpayGateway creates a new Razorpay gateway
func NewRazorpayGateway(config *RazorpayGatewayConfig) (*RazorpayGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("razorpay config is required")
	}
	if config.KeyID == "" || config.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are required")
	}

	return &RazorpayGateway{
		client:  razorpay.NewClient(config.KeyID, config.KeySecret),
		config:  config,
		retrier: retry.New(retry.DefaultConfig()),
	}, nil
}

// CreateOrder opens a new order at Razorpay
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "gateway.razorpay.create_order")
	defer span.End()

	if req == nil {
		return nil, fmt.Errorf("create order request is required")
	}

	span.SetAttributes(
		attribute.Int64("amount", req.Amount),
		attribute.String("currency", req.Currency),
	)

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	var body map[string]interface{}
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		var createErr error
		body, createErr = g.client.Order.Create(data, nil)
		return createErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	order := orderFromBody(body)
	span.SetAttributes(attribute.String("order_id", order.ID))
	span.SetStatus(codes.Ok, "")
	return order, nil
}

// FetchOrder retrieves an order by its Razorpay ID
func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "gateway.razorpay.fetch_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	var body map[string]interface{}
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		body, fetchErr = g.client.Order.Fetch(orderID, nil, nil)
		if fetchErr != nil && isUnknownID(fetchErr) {
			// An unknown ID will not become known by asking again.
			return retry.Permanent(domain.ErrOrderNotFound)
		}
		return fetchErr
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrOrderNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrOrderNotFound
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return orderFromBody(body), nil
}

// FetchPayment retrieves a payment by its Razorpay ID
func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "gateway.razorpay.fetch_payment")
	defer span.End()

	span.SetAttributes(attribute.String("payment_id", paymentID))

	var body map[string]interface{}
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		var fetchErr error
		body, fetchErr = g.client.Payment.Fetch(paymentID, nil, nil)
		if fetchErr != nil && isUnknownID(fetchErr) {
			return retry.Permanent(domain.ErrPaymentNotFound)
		}
		return fetchErr
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrPaymentNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPaymentNotFound
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	span.SetStatus(codes.Ok, "")
	return paymentFromBody(body), nil
}

// Name returns the gateway name
func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

// isUnknownID reports whether the gateway rejected the entity ID itself
func isUnknownID(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "is not a valid id")
}

// orderFromBody maps the gateway response into an Order
func orderFromBody(body map[string]interface{}) *Order {
	order := &Order{
		ID:       asString(body["id"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Receipt:  asString(body["receipt"]),
		Status:   asString(body["status"]),
		Notes:    map[string]string{},
	}

	if notes, ok := body["notes"].(map[string]interface{}); ok {
		for k, v := range notes {
			order.Notes[k] = asString(v)
		}
	}

	return order
}

// paymentFromBody maps the gateway response into a Payment
func paymentFromBody(body map[string]interface{}) *Payment {
	return &Payment{
		ID:       asString(body["id"]),
		OrderID:  asString(body["order_id"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Status:   asString(body["status"]),
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return fmt.Sprintf("%v", s)
	default:
		return ""
	}
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

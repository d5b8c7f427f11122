package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/smane4123/PitchPulse/internal/domain"
)

// SandboxGateway is an in-memory PaymentGateway for local development and
// tests. Orders and payments live only for the process lifetime.
type SandboxGateway struct {
	mu       sync.RWMutex
	orders   map[string]*Order
	payments map[string]*Payment
}

var _ PaymentGateway = (*SandboxGateway)(nil)

// NewSandboxGateway creates a new SandboxGateway
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{
		orders:   make(map[string]*Order),
		payments: make(map[string]*Payment),
	}
}

// CreateOrder fabricates an order with a sandbox ID
func (g *SandboxGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error) {
	notes := make(map[string]string, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}

	order := &Order{
		ID:       "order_sbx_" + uuid.New().String(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    notes,
	}

	g.mu.Lock()
	g.orders[order.ID] = order
	g.mu.Unlock()

	return order, nil
}

// FetchOrder returns a previously created sandbox order
func (g *SandboxGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	g.mu.RLock()
	order, ok := g.orders[orderID]
	g.mu.RUnlock()

	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// FetchPayment returns a previously captured sandbox payment
func (g *SandboxGateway) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	g.mu.RLock()
	payment, ok := g.payments[paymentID]
	g.mu.RUnlock()

	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// CapturePayment simulates a checkout: it marks the order paid and records
// a payment against it. Returns domain.ErrOrderNotFound for unknown orders.
func (g *SandboxGateway) CapturePayment(orderID, paymentID string) (*Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	order.Status = "paid"
	payment := &Payment{
		ID:       paymentID,
		OrderID:  orderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Status:   "captured",
	}
	g.payments[paymentID] = payment
	return payment, nil
}

// Name returns the gateway name
func (g *SandboxGateway) Name() string {
	return "sandbox"
}

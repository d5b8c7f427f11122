package gateway

import "context"

// Order is a payment order at the gateway. Amount is in the currency's
// smallest subunit.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	Notes    map[string]string
}

// Payment is a captured (or attempted) payment at the gateway. Amount is
// in the currency's smallest subunit.
type Payment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
}

// CreateOrderRequest carries everything the gateway needs to open an order
type CreateOrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// PaymentGateway defines the payment provider operations the settlement
// flow depends on. Orders are the source of truth for booking details
// during settlement; notes attached at creation come back on fetch.
type PaymentGateway interface {
	// CreateOrder opens a new order at the gateway
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*Order, error)

	// FetchOrder retrieves an order by its gateway ID. Returns
	// domain.ErrOrderNotFound when the gateway does not know the order.
	FetchOrder(ctx context.Context, orderID string) (*Order, error)

	// FetchPayment retrieves a payment by its gateway ID. Returns
	// domain.ErrPaymentNotFound when the gateway does not know the payment.
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)

	// Name returns the gateway name
	Name() string
}

package dto

import "time"

// CreateOrderRequest is the request body for opening a payment order
type CreateOrderRequest struct {
	VenueID       string    `json:"venue_id" binding:"required"`
	StartTime     time.Time `json:"start_time" binding:"required"`
	DurationHours int       `json:"duration_hours"`
}

// CreateOrderResponse carries the gateway order the client pays against
type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // smallest currency subunit
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// VerifyPaymentRequest is the callback body after the client completes
// payment at the gateway
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPaymentResponse is the settled booking
type VerifyPaymentResponse struct {
	Booking          *BookingResponse `json:"booking"`
	AlreadyProcessed bool             `json:"already_processed"`
}

// PaymentKeyResponse exposes the publishable gateway key
type PaymentKeyResponse struct {
	KeyID string `json:"key_id"`
}

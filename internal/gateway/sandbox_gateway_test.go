package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/smane4123/PitchPulse/internal/domain"
)

func TestSandboxGateway_CreateAndFetch(t *testing.T) {
	gw := NewSandboxGateway()

	order, err := gw.CreateOrder(context.Background(), &CreateOrderRequest{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "rcpt_test",
		Notes:    map[string]string{"venue_id": "venue-001"},
	})
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}
	if order.ID == "" {
		t.Fatal("CreateOrder() returned empty order ID")
	}
	if order.Status != "created" {
		t.Errorf("status = %v, want created", order.Status)
	}

	fetched, err := gw.FetchOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("FetchOrder() unexpected error = %v", err)
	}
	if fetched.Amount != 50000 || fetched.Currency != "INR" {
		t.Errorf("fetched order = %+v", fetched)
	}
	if fetched.Notes["venue_id"] != "venue-001" {
		t.Errorf("notes did not round-trip: %v", fetched.Notes)
	}
}

func TestSandboxGateway_FetchUnknownOrder(t *testing.T) {
	gw := NewSandboxGateway()

	if _, err := gw.FetchOrder(context.Background(), "order_sbx_missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("FetchOrder() error = %v, want ErrOrderNotFound", err)
	}
}

func TestSandboxGateway_CaptureAndFetchPayment(t *testing.T) {
	gw := NewSandboxGateway()

	order, err := gw.CreateOrder(context.Background(), &CreateOrderRequest{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "rcpt_test",
	})
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}

	if _, err := gw.CapturePayment(order.ID, "pay_sbx_001"); err != nil {
		t.Fatalf("CapturePayment() unexpected error = %v", err)
	}

	payment, err := gw.FetchPayment(context.Background(), "pay_sbx_001")
	if err != nil {
		t.Fatalf("FetchPayment() unexpected error = %v", err)
	}
	if payment.OrderID != order.ID {
		t.Errorf("payment order = %v, want %v", payment.OrderID, order.ID)
	}
	if payment.Amount != 50000 || payment.Status != "captured" {
		t.Errorf("payment = %+v", payment)
	}

	refetched, err := gw.FetchOrder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("FetchOrder() unexpected error = %v", err)
	}
	if refetched.Status != "paid" {
		t.Errorf("order status after capture = %v, want paid", refetched.Status)
	}
}

func TestSandboxGateway_FetchUnknownPayment(t *testing.T) {
	gw := NewSandboxGateway()

	if _, err := gw.FetchPayment(context.Background(), "pay_sbx_missing"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Errorf("FetchPayment() error = %v, want ErrPaymentNotFound", err)
	}
}

func TestSandboxGateway_CapturePaymentUnknownOrder(t *testing.T) {
	gw := NewSandboxGateway()

	if _, err := gw.CapturePayment("order_sbx_missing", "pay_sbx_001"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("CapturePayment() error = %v, want ErrOrderNotFound", err)
	}
}

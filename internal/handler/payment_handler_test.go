package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/smane4123/PitchPulse/internal/domain"
	"github.com/smane4123/PitchPulse/internal/dto"
)

// MockPaymentService is a mock implementation of PaymentService for testing
type MockPaymentService struct {
	CreateOrderFunc   func(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPaymentFunc func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
	KeyFunc           func() *dto.PaymentKeyResponse
}

func (m *MockPaymentService) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockPaymentService) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockPaymentService) Key() *dto.PaymentKeyResponse {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return &dto.PaymentKeyResponse{KeyID: "rzp_test_key"}
}

func setupPaymentRouter(handler *PaymentHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	payment := router.Group("/payment")
	{
		payment.GET("/key", handler.GetKey)
		payment.POST("/verify-payment", handler.VerifyPayment)
		payment.POST("/create-order", func(c *gin.Context) {
			if userID != "" {
				c.Set("user_id", userID)
			}
			c.Next()
		}, handler.CreateOrder)
	}

	return router
}

func TestPaymentHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           interface{}
		mockFunc       func(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
		expectedStatus int
	}{
		{
			name:   "successful order",
			userID: "user-001",
			body: dto.CreateOrderRequest{
				VenueID:   "venue-001",
				StartTime: testStart,
			},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
				return &dto.CreateOrderResponse{
					OrderID:  "order_001",
					Amount:   50000,
					Currency: "INR",
					KeyID:    "rzp_test_key",
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "slot held returns conflict",
			userID: "user-001",
			body: dto.CreateOrderRequest{
				VenueID:   "venue-001",
				StartTime: testStart,
			},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
				return nil, domain.ErrSlotHeld
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "gateway unavailable returns bad gateway",
			userID: "user-001",
			body: dto.CreateOrderRequest{
				VenueID:   "venue-001",
				StartTime: testStart,
			},
			mockFunc: func(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
				return nil, domain.ErrGatewayUnavailable
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:   "unauthenticated",
			userID: "",
			body: dto.CreateOrderRequest{
				VenueID:   "venue-001",
				StartTime: testStart,
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockPaymentService{CreateOrderFunc: tt.mockFunc}
			router := setupPaymentRouter(NewPaymentHandler(svc), tt.userID)

			var body bytes.Buffer
			if err := json.NewEncoder(&body).Encode(tt.body); err != nil {
				t.Fatalf("failed to encode body: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/payment/create-order", &body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
		})
	}
}

func TestPaymentHandler_VerifyPayment(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockFunc       func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error)
		expectedStatus int
		wantReplay     bool
	}{
		{
			name: "successful settlement",
			body: dto.VerifyPaymentRequest{
				OrderID:   "order_001",
				PaymentID: "pay_001",
				Signature: "sig",
			},
			mockFunc: func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
				return &dto.VerifyPaymentResponse{
					Booking: &dto.BookingResponse{ID: "booking-123", PaymentRef: req.PaymentID},
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "replayed payment",
			body: dto.VerifyPaymentRequest{
				OrderID:   "order_001",
				PaymentID: "pay_001",
				Signature: "sig",
			},
			mockFunc: func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
				return &dto.VerifyPaymentResponse{
					Booking:          &dto.BookingResponse{ID: "booking-123", PaymentRef: req.PaymentID},
					AlreadyProcessed: true,
				}, nil
			},
			expectedStatus: http.StatusOK,
			wantReplay:     true,
		},
		{
			name: "signature mismatch",
			body: dto.VerifyPaymentRequest{
				OrderID:   "order_001",
				PaymentID: "pay_001",
				Signature: "bad",
			},
			mockFunc: func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
				return nil, domain.ErrSignatureMismatch
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "slot lost returns conflict",
			body: dto.VerifyPaymentRequest{
				OrderID:   "order_001",
				PaymentID: "pay_001",
				Signature: "sig",
			},
			mockFunc: func(ctx context.Context, req *dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
				return nil, domain.ErrSlotTaken
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "missing fields rejected by binding",
			body:           dto.VerifyPaymentRequest{OrderID: "order_001"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockPaymentService{VerifyPaymentFunc: tt.mockFunc}
			router := setupPaymentRouter(NewPaymentHandler(svc), "")

			var body bytes.Buffer
			if err := json.NewEncoder(&body).Encode(tt.body); err != nil {
				t.Fatalf("failed to encode body: %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/payment/verify-payment", &body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var resp envelope
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				var data dto.VerifyPaymentResponse
				if err := json.Unmarshal(resp.Data, &data); err != nil {
					t.Fatalf("failed to decode data: %v", err)
				}
				if data.AlreadyProcessed != tt.wantReplay {
					t.Errorf("already_processed = %v, want %v", data.AlreadyProcessed, tt.wantReplay)
				}
			}
		})
	}
}

func TestPaymentHandler_GetKey(t *testing.T) {
	router := setupPaymentRouter(NewPaymentHandler(&MockPaymentService{}), "")

	req := httptest.NewRequest(http.MethodGet, "/payment/key", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	var data dto.PaymentKeyResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.KeyID != "rzp_test_key" {
		t.Errorf("key_id = %v, want rzp_test_key", data.KeyID)
	}
}

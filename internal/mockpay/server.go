// Package mockpay is an in-process stand-in for both external collaborators:
// the payments backend and the gateway. It implements just enough behavior to
// run a full checkout locally and to drive the integration tests; real
// business rules live in the real backend.
package mockpay

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"storefront-checkout/internal/payment"

	"github.com/google/uuid"
)

const contentType = "application/json"

// Card numbers that trigger failure paths, sandbox style.
const (
	declineTokenizeSuffix  = "0002"
	declineAuthorizeSuffix = "0003"
)

type record struct {
	id           int64
	orderID      string
	accessID     string
	amount       int64
	status       payment.Status
	refundable   int64
	createdAt    time.Time
	updatedAt    time.Time
	authorizedAt *time.Time
	capturedAt   *time.Time
	refunds      []payment.Refund
}

// Server holds the shared in-memory state behind both collaborators' routes.
type Server struct {
	mu        sync.Mutex
	publicKey string
	nextID    int64
	payments  map[string]*record
}

func New(publicKey string) *Server {
	return &Server{
		publicKey: publicKey,
		payments:  map[string]*record{},
	}
}

// Handler serves both path spaces: the backend under /api/v1 and the gateway
// under /v1.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// backend
	mux.HandleFunc("POST /api/v1/payments/register", s.registerHandler)
	mux.HandleFunc("POST /api/v1/payments/{id}/capture", s.captureHandler)
	mux.HandleFunc("POST /api/v1/payments/{id}/cancel", s.cancelHandler)
	mux.HandleFunc("POST /api/v1/payments/{id}/refund", s.refundHandler)
	mux.HandleFunc("GET /api/v1/payments", s.listHandler)
	mux.HandleFunc("GET /api/v1/payments/{id}", s.getHandler)
	mux.HandleFunc("GET /api/v1/products/{id}", s.productHandler)
	mux.HandleFunc("GET /api/v1/magic_links/verify", s.verifyHandler)

	// gateway
	mux.HandleFunc("POST /v1/tokens", s.tokensHandler)
	mux.HandleFunc("POST /v1/payments", s.gatewayPaymentsHandler)

	return mux
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Invalid amount"})
		return
	}

	s.mu.Lock()
	s.nextID++
	rec := &record{
		id:         s.nextID,
		orderID:    "o_" + uuid.New().String(),
		accessID:   "a_" + uuid.New().String(),
		amount:     req.Amount,
		status:     payment.StatusPending,
		refundable: req.Amount,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	s.payments[rec.orderID] = rec
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":   rec.orderID,
		"access_id":  rec.accessID,
		"amount":     rec.amount,
		"public_key": s.publicKey,
	})
}

func (s *Server) captureHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Unknown transaction"})
		return
	}
	if rec.status != payment.StatusAuthorized {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Payment is not authorized"})
		return
	}

	now := time.Now()
	rec.status = payment.StatusCaptured
	rec.capturedAt = &now
	rec.updatedAt = now
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) cancelHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment not found"})
		return
	}
	if rec.status != payment.StatusAuthorized {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Only authorized payments can be cancelled"})
		return
	}

	rec.status = payment.StatusCancelled
	rec.updatedAt = time.Now()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) refundHandler(w http.ResponseWriter, r *http.Request) {
	var req payment.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Invalid request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment not found"})
		return
	}
	if !payment.CanRefund(rec.status) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Payment cannot be refunded"})
		return
	}

	amount := rec.refundable
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 || amount > rec.refundable {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Amount exceeds refundable amount"})
		return
	}

	now := time.Now()
	rec.refundable -= amount
	rec.refunds = append(rec.refunds, payment.Refund{
		ID:          int64(len(rec.refunds) + 1),
		Amount:      amount,
		Reason:      req.Reason,
		Status:      "processed",
		ProcessedAt: now,
	})
	if rec.refundable == 0 {
		rec.status = payment.StatusRefunded
	} else {
		rec.status = payment.StatusPartiallyRefunded
	}
	rec.updatedAt = now
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) listHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	payments := make([]payment.Payment, 0, len(s.payments))
	for _, rec := range s.payments {
		payments = append(payments, rec.toPayment())
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment": rec.toPayment()})
}

func (s *Server) productHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      jsonNumber(r.PathValue("id")),
		"user_id": 42,
		"price":   "2500",
	})
}

func (s *Server) verifyHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	email := r.URL.Query().Get("email")
	if token == "" || email == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid or expired token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": "tok_" + uuid.New().String(),
		"user": map[string]any{
			"id":           1,
			"email":        email,
			"display_name": strings.Split(email, "@")[0],
		},
	})
}

func (s *Server) tokensHandler(w http.ResponseWriter, r *http.Request) {
	var card struct {
		Number string `json:"card_no"`
	}
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil || card.Number == "" {
		writeJSON(w, http.StatusBadRequest, gatewayError("Invalid card data"))
		return
	}
	if strings.HasSuffix(card.Number, declineTokenizeSuffix) {
		writeJSON(w, http.StatusBadRequest, gatewayError("Card declined"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": "tok_" + uuid.New().String()})
}

func (s *Server) gatewayPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Token  string `json:"token"`
		Number string `json:"card_no"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, gatewayError("Missing token"))
		return
	}
	if strings.HasSuffix(req.Number, declineAuthorizeSuffix) {
		writeJSON(w, http.StatusBadRequest, gatewayError("Authorization declined"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.payments[req.ID]
	if !ok {
		writeJSON(w, http.StatusBadRequest, gatewayError("Payment not found"))
		return
	}

	now := time.Now()
	rec.status = payment.StatusAuthorized
	rec.authorizedAt = &now
	rec.updatedAt = now
	writeJSON(w, http.StatusOK, map[string]string{"status": "AUTHORIZED"})
}

func (r *record) toPayment() payment.Payment {
	refundable := r.refundable
	return payment.Payment{
		ID:               r.id,
		AccessID:         r.accessID,
		GatewayOrderID:   r.orderID,
		Amount:           r.amount,
		Status:           r.status,
		RefundableAmount: &refundable,
		AuthorizedAt:     r.authorizedAt,
		CapturedAt:       r.capturedAt,
		CreatedAt:        r.createdAt,
		UpdatedAt:        r.updatedAt,
		Refunds:          r.refunds,
		User:             payment.User{ID: 1, Email: "buyer@example.com", DisplayName: "buyer"},
	}
}

func gatewayError(message string) map[string]any {
	return map[string]any{
		"errors": []map[string]string{{"message": message}},
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func jsonNumber(raw string) any {
	n := json.Number(raw)
	if _, err := n.Int64(); err != nil {
		return raw
	}
	return n
}

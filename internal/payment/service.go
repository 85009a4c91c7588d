package payment

import (
	"context"
	"log/slog"
)

// API is the slice of the backend client the listing views need.
type API interface {
	ListPayments(ctx context.Context) ([]Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	CancelPayment(ctx context.Context, gatewayOrderID string) error
}

// Service backs the payment history views: listing, detail, and the cancel
// action with a refreshed list afterwards.
type Service struct {
	api    API
	logger *slog.Logger
}

func NewService(api API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.api.ListPayments(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Payment, error) {
	return s.api.GetPayment(ctx, id)
}

// Cancel voids an authorized payment and returns the refreshed listing.
func (s *Service) Cancel(ctx context.Context, gatewayOrderID string) ([]Payment, error) {
	s.logger.InfoContext(ctx, "Cancelling payment", "orderId", gatewayOrderID)

	if err := s.api.CancelPayment(ctx, gatewayOrderID); err != nil {
		s.logger.ErrorContext(ctx, "Error cancelling payment", "error", err)
		return nil, err
	}

	return s.api.ListPayments(ctx)
}

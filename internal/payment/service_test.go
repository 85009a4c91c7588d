package payment

import (
	"context"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	payments     []Payment
	listErr      error
	listCalls    int
	cancelErr    error
	lastCancelID string
}

func (s *stubAPI) ListPayments(_ context.Context) ([]Payment, error) {
	s.listCalls++
	return s.payments, s.listErr
}

func (s *stubAPI) GetPayment(_ context.Context, _ string) (*Payment, error) {
	if len(s.payments) == 0 {
		return nil, errors.New("not found")
	}
	return &s.payments[0], nil
}

func (s *stubAPI) CancelPayment(_ context.Context, gatewayOrderID string) error {
	s.lastCancelID = gatewayOrderID
	return s.cancelErr
}

func TestService_Cancel_RefreshesListing(t *testing.T) {
	api := &stubAPI{payments: []Payment{{ID: 1, Status: StatusCancelled}}}
	svc := NewService(api, slog.Default())

	payments, err := svc.Cancel(context.Background(), "o_123")

	require.NoError(t, err)
	assert.Equal(t, "o_123", api.lastCancelID)
	assert.Equal(t, 1, api.listCalls)
	assert.Len(t, payments, 1)
}

func TestService_Cancel_Error(t *testing.T) {
	api := &stubAPI{cancelErr: errors.New("cannot cancel")}
	svc := NewService(api, slog.Default())

	_, err := svc.Cancel(context.Background(), "o_123")

	assert.Error(t, err)
	assert.Equal(t, 0, api.listCalls)
}

package payment

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefundRequest_Full(t *testing.T) {
	req, err := NewRefundRequest(RefundFull, "", "damaged item", 5000)

	require.NoError(t, err)
	assert.Equal(t, "damaged item", req.Reason)
	assert.Nil(t, req.Amount)
}

func TestNewRefundRequest_Partial(t *testing.T) {
	req, err := NewRefundRequest(RefundPartial, "1500", "partial return", 5000)

	require.NoError(t, err)
	require.NotNil(t, req.Amount)
	assert.Equal(t, int64(1500), *req.Amount)
}

func TestNewRefundRequest_PartialInvalidAmount(t *testing.T) {
	tests := []string{"", "abc", "0", "-10"}

	for _, amount := range tests {
		_, err := NewRefundRequest(RefundPartial, amount, "reason", 5000)
		assert.ErrorIs(t, err, ErrInvalidRefundAmount, "amount %q", amount)
	}
}

func TestNewRefundRequest_PartialExceedsRefundable(t *testing.T) {
	_, err := NewRefundRequest(RefundPartial, "6000", "too much", 5000)

	assert.True(t, errors.Is(err, ErrExceedsRefundable))
}

package payment

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type RefundKind string

const (
	RefundFull    RefundKind = "full"
	RefundPartial RefundKind = "partial"
)

var (
	ErrInvalidRefundAmount = errors.New("please enter a valid amount")
	ErrExceedsRefundable   = errors.New("amount cannot exceed the refundable amount")
)

// RefundRequest is the payload for the backend refund endpoint. A full refund
// omits the amount; the backend refunds whatever remains refundable.
type RefundRequest struct {
	Reason string `json:"reason"`
	Amount *int64 `json:"amount,omitempty"`
}

// NewRefundRequest validates the raw form input locally before anything is
// sent over the wire. Partial refunds must carry a positive amount no larger
// than the refundable remainder.
func NewRefundRequest(kind RefundKind, amount, reason string, refundableAmount int64) (RefundRequest, error) {
	req := RefundRequest{Reason: reason}
	if kind != RefundPartial {
		return req, nil
	}

	parsed, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
	if err != nil || parsed <= 0 {
		return RefundRequest{}, ErrInvalidRefundAmount
	}
	if parsed > refundableAmount {
		return RefundRequest{}, errors.Wrapf(ErrExceedsRefundable, "refundable: %d", refundableAmount)
	}

	req.Amount = &parsed
	return req, nil
}

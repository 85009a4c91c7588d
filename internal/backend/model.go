package backend

import (
	"strconv"

	"storefront-checkout/internal/auth"

	"github.com/pkg/errors"
)

// RegisteredPayment is what the backend's register call hands back: the
// correlation identifiers for the in-progress transaction and the public key
// to construct the gateway client with. Used exactly once per checkout
// attempt.
type RegisteredPayment struct {
	OrderID   string `json:"order_id"`
	AccessID  string `json:"access_id"`
	Amount    int64  `json:"amount"`
	PublicKey string `json:"public_key"`
}

type Product struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Price  string `json:"price"`
}

// Amount parses the backend's decimal price string into the smallest
// currency unit.
func (p Product) Amount() (int64, error) {
	f, err := strconv.ParseFloat(p.Price, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing price %q", p.Price)
	}
	return int64(f), nil
}

// VerifiedLogin is the result of a successful magic-link verification.
type VerifiedLogin struct {
	AccessToken string    `json:"access_token"`
	User        auth.User `json:"user"`
}

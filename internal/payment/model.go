package payment

import "time"

// Status is the backend-owned lifecycle state of a payment.
type Status string

const (
	StatusPending           Status = "pending"
	StatusAuthorized        Status = "authorized"
	StatusCaptured          Status = "captured"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
	StatusPartiallyRefunded Status = "partially_refunded"
	StatusRefunded          Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

type Refund struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
}

type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type OrderProduct struct {
	ID    int64  `json:"id"`
	Price string `json:"price"`
}

type Order struct {
	ID          int64        `json:"id"`
	Number      string       `json:"number"`
	TotalAmount int64        `json:"total_amount"`
	Quantity    int          `json:"quantity"`
	Product     OrderProduct `json:"product"`
}

// Payment is read-only on this side; the backend owns it.
type Payment struct {
	ID               int64      `json:"id"`
	AccessID         string     `json:"access_id"`
	PublicKey        string     `json:"public_key"`
	GatewayOrderID   string     `json:"fincode_order_id"`
	Amount           int64      `json:"amount"`
	Status           Status     `json:"status"`
	RefundableAmount *int64     `json:"refundable_amount,omitempty"`
	AuthorizedAt     *time.Time `json:"authorized_at"`
	CapturedAt       *time.Time `json:"captured_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Refunds          []Refund   `json:"refunds,omitempty"`
	User             User       `json:"user"`
	Order            *Order     `json:"order"`
}

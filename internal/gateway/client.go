package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"storefront-checkout/internal/config"

	"github.com/pkg/errors"
)

const (
	defaultTimeoutMs = 10_000

	tokensPath   = "/v1/tokens"
	paymentsPath = "/v1/payments"
)

const (
	fallbackTokenize  = "Tokenization failed"
	fallbackAuthorize = "Execute failed"
	fallbackTransport = "Communication error"
)

// Card is the wire shape of tokenizable card data: digits-only number and
// YYMM expiry.
type Card struct {
	Number       string `json:"card_no"`
	Expire       string `json:"expire"`
	HolderName   string `json:"holder_name"`
	SecurityCode string `json:"security_code"`
}

// Payment is the authorization request addressed by the identifiers the
// backend registered. The gateway requires the card details alongside the
// token.
type Payment struct {
	ID       string `json:"id"`
	PayType  string `json:"pay_type"`
	AccessID string `json:"access_id"`
	Token    string `json:"token"`
	Method   string `json:"method"`
	Card
}

// Client talks to the payment gateway's tokenization and authorization
// endpoints. It is constructed per checkout attempt with the public key the
// backend registered.
type Client struct {
	baseURL   string
	publicKey string
	client    *http.Client
	logger    *slog.Logger
}

func New(cfg config.Gateway, publicKey string, logger *slog.Logger) (*Client, error) {
	if err := ValidatePublicKey(publicKey, "gateway client construction"); err != nil {
		return nil, err
	}

	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = config.GetInt("GATEWAY_TIMEOUT_MS", defaultTimeoutMs)
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		publicKey: publicKey,
		client:    &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		logger:    logger,
	}, nil
}

type tokenResponse struct {
	ID string `json:"id"`
}

// CreateToken converts card data into a one-time token. 200 and 201 are
// success; anything else is a tokenization rejection carrying the gateway's
// message.
func (c *Client) CreateToken(ctx context.Context, card Card) (string, error) {
	status, body, err := c.post(ctx, tokensPath, card)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error calling token endpoint", "error", err)
		return "", newError(KindCommunication, fallbackTransport)
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return "", newError(KindTokenization, errorMessage(body, fallbackTokenize))
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID == "" {
		return "", newError(KindTokenization, fallbackTokenize)
	}

	c.logger.InfoContext(ctx, "Card tokenized", "token", resp.ID)
	return resp.ID, nil
}

// ExecutePayment authorizes the payment with the token. Only 200 is success.
func (c *Client) ExecutePayment(ctx context.Context, p Payment) error {
	status, body, err := c.post(ctx, paymentsPath, p)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error calling payment endpoint", "error", err)
		return newError(KindCommunication, fallbackTransport)
	}

	if status != http.StatusOK {
		return newError(KindAuthorization, errorMessage(body, fallbackAuthorize))
	}

	c.logger.InfoContext(ctx, "Payment authorized", "orderId", p.ID)
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return 0, nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.publicKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "reading response body")
	}

	return resp.StatusCode, body, nil
}

type gatewayError struct {
	Errors []struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"error_message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// errorMessage extracts the most specific message the gateway supplied.
func errorMessage(body []byte, fallback string) string {
	var parsed gatewayError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallback
	}

	if len(parsed.Errors) > 0 {
		if parsed.Errors[0].Message != "" {
			return parsed.Errors[0].Message
		}
		if parsed.Errors[0].ErrorMessage != "" {
			return parsed.Errors[0].ErrorMessage
		}
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	return fallback
}

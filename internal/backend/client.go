// Package backend is the REST client for the storefront's payment backend.
// All business rules (amount validation, refund eligibility, capture) live
// behind these endpoints; this client only transports and classifies.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"storefront-checkout/internal/auth"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/payment"

	"github.com/pkg/errors"
)

const defaultTimeoutMs = 10_000

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New builds a client whose every request carries the session's bearer token
// via the shared auth transport.
func New(cfg config.Backend, session *auth.Session, logger *slog.Logger) *Client {
	timeoutMs := cfg.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = config.GetInt("BACKEND_TIMEOUT_MS", defaultTimeoutMs)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout:   time.Duration(timeoutMs) * time.Millisecond,
			Transport: &auth.Transport{Session: session, Logger: logger},
		},
		logger: logger,
	}
}

// RegisterPayment opens a payment for the given total and returns the gateway
// session identifiers.
func (c *Client) RegisterPayment(ctx context.Context, amount int64) (*RegisteredPayment, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/api/v1/payments/register", map[string]int64{"amount": amount})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, errors.New(apiErrorMessage(body, "Failed to initialize payment"))
	}

	var registered RegisteredPayment
	if err := json.Unmarshal(body, &registered); err != nil {
		return nil, errors.Wrap(err, "parsing register response")
	}
	return &registered, nil
}

type actionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CapturePayment finalizes an authorized payment. The backend reports
// failures through a success flag as well as HTTP status.
func (c *Client) CapturePayment(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/api/v1/payments/%s/capture", url.PathEscape(orderID))
	status, body, err := c.do(ctx, http.MethodPost, path, map[string]string{"transaction_id": orderID})
	if err != nil {
		return err
	}
	if status >= 400 {
		return errors.New(apiErrorMessage(body, "Capture failed"))
	}

	var resp actionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return errors.Wrap(err, "parsing capture response")
	}
	if !resp.Success {
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		return errors.New("Capture failed")
	}
	return nil
}

// CancelPayment voids an authorized payment.
func (c *Client) CancelPayment(ctx context.Context, gatewayOrderID string) error {
	path := fmt.Sprintf("/api/v1/payments/%s/cancel", url.PathEscape(gatewayOrderID))
	status, body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return errors.New(apiErrorMessage(body, "Failed to cancel payment"))
	}
	return nil
}

// RefundPayment submits an already locally-validated refund request.
func (c *Client) RefundPayment(ctx context.Context, gatewayOrderID string, req payment.RefundRequest) error {
	path := fmt.Sprintf("/api/v1/payments/%s/refund", url.PathEscape(gatewayOrderID))
	status, body, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return err
	}
	if status >= 400 {
		return errors.New(apiErrorMessage(body, "Refund failed"))
	}

	var resp actionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return errors.Wrap(err, "parsing refund response")
	}
	if !resp.Success {
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		return errors.New("Refund failed")
	}
	return nil
}

func (c *Client) ListPayments(ctx context.Context) ([]payment.Payment, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/payments", nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, errors.New(apiErrorMessage(body, "Failed to load payments"))
	}

	var payments []payment.Payment
	if err := json.Unmarshal(body, &payments); err != nil {
		return nil, errors.Wrap(err, "parsing payments")
	}
	return payments, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, errors.New(apiErrorMessage(body, "Failed to load payments"))
	}

	var resp struct {
		Payment payment.Payment `json:"payment"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "parsing payment")
	}
	return &resp.Payment, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, errors.New(apiErrorMessage(body, "Failed to load product"))
	}

	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, errors.Wrap(err, "parsing product")
	}
	return &product, nil
}

// VerifyMagicLink exchanges a magic-link token for an access token and user
// profile. Callers store the result in the auth session.
func (c *Client) VerifyMagicLink(ctx context.Context, token, email string) (*VerifiedLogin, error) {
	q := url.Values{"token": {token}, "email": {email}}
	status, body, err := c.do(ctx, http.MethodGet, "/api/v1/magic_links/verify?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, errors.New(verifyErrorMessage(body))
	}

	var verified VerifiedLogin
	if err := json.Unmarshal(body, &verified); err != nil {
		return nil, errors.Wrap(err, "parsing verify response")
	}
	return &verified, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, errors.Wrap(err, "marshalling request")
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, errors.Wrap(err, "creating request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			return 0, nil, auth.ErrSessionExpired
		}
		return 0, nil, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "reading response body")
	}

	c.logger.DebugContext(ctx, "Backend response", "method", method, "path", path, "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}

// apiErrorMessage extracts the backend's error field, falling back to a
// generic message.
func apiErrorMessage(body []byte, fallback string) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return fallback
}

func verifyErrorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return "Failed to verify magic link. The link may be expired or invalid."
}

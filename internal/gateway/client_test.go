package gateway

import (
	"context"
	"log/slog"
	"testing"

	"storefront-checkout/internal/config"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPublicKey = "p_test_abcdef123456"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(config.Gateway{BaseURL: "http://gateway.test", TimeoutMs: 1000}, testPublicKey, slog.Default())
	require.NoError(t, err)
	return client
}

func TestNew_RejectsBadKey(t *testing.T) {
	_, err := New(config.Gateway{BaseURL: "http://gateway.test"}, "s_live_abc1234567", slog.Default())

	require.Error(t, err)
	assert.Equal(t, KindConfiguration, KindOf(err))
}

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name          string
		mockResponse  func()
		expectedToken string
		expectedKind  ErrorKind
		expectedMsg   string
	}{
		{
			name: "Success 200",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					MatchHeader("Authorization", "Bearer "+testPublicKey).
					Reply(200).
					JSON(map[string]string{"id": "tok_abc"})
			},
			expectedToken: "tok_abc",
		},
		{
			name: "Success 201",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					Reply(201).
					JSON(map[string]string{"id": "tok_def"})
			},
			expectedToken: "tok_def",
		},
		{
			name: "Declined with detailed message",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					Reply(400).
					JSON(map[string]any{"errors": []map[string]string{{"message": "Card number is invalid"}}})
			},
			expectedKind: KindTokenization,
			expectedMsg:  "Card number is invalid",
		},
		{
			name: "Declined with error_message only",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					Reply(400).
					JSON(map[string]any{"errors": []map[string]string{{"error_message": "Expired card"}}})
			},
			expectedKind: KindTokenization,
			expectedMsg:  "Expired card",
		},
		{
			name: "Declined with top-level message",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					Reply(400).
					JSON(map[string]string{"message": "Bad request"})
			},
			expectedKind: KindTokenization,
			expectedMsg:  "Bad request",
		},
		{
			name: "Declined with unparseable body",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					Reply(500).
					BodyString("<html>oops</html>")
			},
			expectedKind: KindTokenization,
			expectedMsg:  "Tokenization failed",
		},
		{
			name: "Transport error",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/tokens").
					ReplyError(assert.AnError)
			},
			expectedKind: KindCommunication,
			expectedMsg:  "Communication error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.mockResponse()

			client := newTestClient(t)
			token, err := client.CreateToken(context.Background(), Card{
				Number:       "4111111111111111",
				Expire:       "3012",
				HolderName:   "TARO YAMADA",
				SecurityCode: "123",
			})

			if tt.expectedToken != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, KindOf(err))
				assert.Equal(t, tt.expectedMsg, err.Error())
			}
			assert.True(t, gock.IsDone())
		})
	}
}

func TestExecutePayment(t *testing.T) {
	payment := Payment{
		ID:       "o_123",
		PayType:  "Card",
		AccessID: "a_456",
		Token:    "tok_abc",
		Method:   "1",
		Card: Card{
			Number:       "4111111111111111",
			Expire:       "3012",
			HolderName:   "TARO YAMADA",
			SecurityCode: "123",
		},
	}

	tests := []struct {
		name         string
		mockResponse func()
		expectedKind ErrorKind
		expectedMsg  string
	}{
		{
			name: "Success",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/payments").
					MatchHeader("Authorization", "Bearer "+testPublicKey).
					JSON(map[string]string{
						"id":            "o_123",
						"pay_type":      "Card",
						"access_id":     "a_456",
						"token":         "tok_abc",
						"method":        "1",
						"card_no":       "4111111111111111",
						"expire":        "3012",
						"holder_name":   "TARO YAMADA",
						"security_code": "123",
					}).
					Reply(200).
					JSON(map[string]string{"status": "AUTHORIZED"})
			},
		},
		{
			// a created-but-not-authorized reply is not success here
			name: "Non-200 success code",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/payments").
					Reply(201).
					JSON(map[string]string{"status": "AUTHORIZED"})
			},
			expectedKind: KindAuthorization,
			expectedMsg:  "Execute failed",
		},
		{
			name: "Declined",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/payments").
					Reply(400).
					JSON(map[string]any{"errors": []map[string]string{{"error_message": "Insufficient funds"}}})
			},
			expectedKind: KindAuthorization,
			expectedMsg:  "Insufficient funds",
		},
		{
			name: "Transport error",
			mockResponse: func() {
				gock.New("http://gateway.test").
					Post("/v1/payments").
					ReplyError(assert.AnError)
			},
			expectedKind: KindCommunication,
			expectedMsg:  "Communication error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer gock.Off()
			tt.mockResponse()

			client := newTestClient(t)
			err := client.ExecutePayment(context.Background(), payment)

			if tt.expectedMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.expectedKind, KindOf(err))
				assert.Equal(t, tt.expectedMsg, err.Error())
			}
			assert.True(t, gock.IsDone())
		})
	}
}

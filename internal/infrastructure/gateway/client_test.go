package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sankofatravel/booking-engine/internal/config"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/gateway"
)

func newTestPayment(t *testing.T, method domain.PaymentMethod) *domain.Payment {
	payment, err := domain.NewPayment(
		decimal.NewFromFloat(25.50), "GHS", method, nil, "Kakum National Park tour")
	require.NoError(t, err)
	return payment
}

func newClient(baseURL, secretKey string) *gateway.HTTPGatewayClient {
	return gateway.NewGatewayClient(config.GatewayConfig{
		BaseURL:     baseURL,
		SecretKey:   secretKey,
		ConnTimeout: 5 * time.Second,
		CallbackURL: "https://booking.example/api/webhooks/gateway",
	}).(*gateway.HTTPGatewayClient)
}

func TestInitialize(t *testing.T) {
	t.Run("mobile money carries provider and subunit amount", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer sk_live_abc", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":true,"message":"ok","data":{
				"authorization_url":"https://checkout.example/x",
				"access_code":"ac_123","reference":"ref","test_mode":true}}`))
		}))
		defer server.Close()

		client := newClient(server.URL, "sk_live_abc")
		payment := newTestPayment(t, domain.MethodVodafoneCash)

		resp, err := client.Initialize(context.Background(), payment, "ama@example.com", "+233201234567")

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/x", resp.AuthorizationURL)
		assert.Equal(t, "ac_123", resp.AccessCode)
		assert.True(t, resp.TestMode)

		assert.Equal(t, float64(2550), captured["amount"])
		assert.Equal(t, []any{"mobile_money"}, captured["channels"])
		mm, ok := captured["mobile_money"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "vod", mm["provider"])
		assert.Equal(t, "+233201234567", mm["phone"])
	})

	t.Run("card payments use the card channel", func(t *testing.T) {
		var captured map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			w.Write([]byte(`{"status":true,"data":{"authorization_url":"u","access_code":"a","reference":"r"}}`))
		}))
		defer server.Close()

		client := newClient(server.URL, "sk_live_abc")
		payment := newTestPayment(t, domain.MethodCard)

		_, err := client.Initialize(context.Background(), payment, "ama@example.com", "")

		require.NoError(t, err)
		assert.Equal(t, []any{"card"}, captured["channels"])
		assert.Nil(t, captured["mobile_money"])
	})

	t.Run("test secret key forces test mode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":true,"data":{"authorization_url":"u","access_code":"a","reference":"r","test_mode":false}}`))
		}))
		defer server.Close()

		client := newClient(server.URL, "sk_test_abc")
		payment := newTestPayment(t, domain.MethodMTNMomo)

		resp, err := client.Initialize(context.Background(), payment, "ama@example.com", "+233201234567")

		require.NoError(t, err)
		assert.True(t, resp.TestMode)
	})

	t.Run("gateway error surfaces code and message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":false,"message":"Invalid key","code":"invalid_key"}`))
		}))
		defer server.Close()

		client := newClient(server.URL, "sk_live_bad")
		payment := newTestPayment(t, domain.MethodMTNMomo)

		_, err := client.Initialize(context.Background(), payment, "ama@example.com", "+233201234567")

		require.Error(t, err)
		gwErr, ok := gateway.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_key", gwErr.Code)
		assert.Equal(t, "Invalid key", gwErr.Message)
		assert.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	})
}

func TestVerify(t *testing.T) {
	t.Run("passes the raw status through", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/PAY-X", r.URL.Path)
			w.Write([]byte(`{"status":true,"data":{"status":"abandoned","amount":2550,"currency":"GHS"}}`))
		}))
		defer server.Close()

		client := newClient(server.URL, "sk_live_abc")

		resp, err := client.Verify(context.Background(), "PAY-X")

		require.NoError(t, err)
		assert.Equal(t, "abandoned", resp.RawGatewayStatus)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.True(t, decimal.NewFromFloat(25.50).Equal(resp.AmountConfirmed))
	})
}

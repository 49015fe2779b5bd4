// Package gateway adapts the external payment gateway's HTTP API to the
// engine's GatewayClient port.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/config"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/shopspring/decimal"
)

var subunitFactor = decimal.NewFromInt(100)

type HTTPGatewayClient struct {
	baseURL     string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
}

func NewGatewayClient(cfg config.GatewayConfig) application.GatewayClient {
	return &HTTPGatewayClient{
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// Initialize opens a gateway transaction for the payment and returns the
// authorization handle. Mobile-money payments carry the provider channel;
// the test_mode flag in the response decides whether the completion
// simulator may drive this payment.
func (c *HTTPGatewayClient) Initialize(ctx context.Context, payment *domain.Payment, email, phoneNumber string) (*application.InitializeResponse, error) {
	req := initializeRequest{
		// Gateway wants amounts in currency subunits.
		Amount:      payment.Amount.Mul(subunitFactor).IntPart(),
		Email:       email,
		Currency:    payment.Currency,
		Reference:   payment.Reference,
		CallbackURL: c.callbackURL,
		Metadata:    payment.Metadata,
	}

	if payment.Method.MobileMoney() {
		req.Channels = []string{"mobile_money"}
		req.MobileMoney = &mobileMoney{
			Phone:    phoneNumber,
			Provider: providerCode(payment.Method),
		}
	} else {
		req.Channels = []string{"card"}
	}

	url := fmt.Sprintf("%s/transaction/initialize", c.baseURL)
	resp, err := sendRequest[initializeRequest, initializeResponse](c, ctx, http.MethodPost, url, &req)
	if err != nil {
		return nil, err
	}

	return &application.InitializeResponse{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
		TestMode:         resp.Data.TestMode || strings.HasPrefix(c.secretKey, "sk_test_"),
	}, nil
}

// Verify polls the gateway for a transaction's current status. The raw
// gateway status is passed through untouched; mapping onto the payment
// vocabulary happens in the domain.
func (c *HTTPGatewayClient) Verify(ctx context.Context, reference string) (*application.VerifyResponse, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, reference)
	resp, err := sendRequest[struct{}, verifyResponse](c, ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return &application.VerifyResponse{
		Status:           string(domain.MapGatewayStatus(resp.Data.Status)),
		RawGatewayStatus: resp.Data.Status,
		AmountConfirmed:  decimal.NewFromInt(resp.Data.Amount).Div(subunitFactor),
	}, nil
}

// providerCode maps our payment methods onto gateway channel codes.
func providerCode(m domain.PaymentMethod) string {
	switch m {
	case domain.MethodMTNMomo:
		return "mtn"
	case domain.MethodVodafoneCash:
		return "vod"
	case domain.MethodAirtelTigoMoney:
		return "atl"
	default:
		return "mtn"
	}
}

func sendRequest[Req any, Resp any](c *HTTPGatewayClient, ctx context.Context, method, url string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var gwErrResp errorResponse
		if err := json.Unmarshal(body, &gwErrResp); err != nil {
			return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, &GatewayError{
			Code:       gwErrResp.Code,
			Message:    gwErrResp.Message,
			StatusCode: resp.StatusCode,
		}
	}

	var gwResp Resp
	if err := json.NewDecoder(resp.Body).Decode(&gwResp); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &gwResp, nil
}

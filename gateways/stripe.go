package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"booth/constants"
	"booth/errors"
)

// StripeGateway gọi Stripe qua REST API (PaymentIntents)
type StripeGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeGateway() *StripeGateway {
	baseURL := os.Getenv("STRIPE_API_URL")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeGateway{
		secretKey: os.Getenv("STRIPE_SECRET_KEY"),
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *StripeGateway) Provider() string {
	return constants.ProviderStripe
}

type stripePaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
	Created      int64  `json:"created"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreatePayment tạo PaymentIntent, trả về link trang thanh toán của frontend
func (g *StripeGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResult, error) {
	form := url.Values{}
	// Stripe tính amount theo đơn vị nhỏ nhất của currency
	form.Set("amount", strconv.FormatInt(int64(math.Round(req.Amount*100)), 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("description", req.Description)
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	intent, err := g.do(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	paymentURL := fmt.Sprintf("%s/pay/%s", os.Getenv("PAYMENT_PAGE_URL"), intent.ClientSecret)
	return &CreatePaymentResult{
		Success:     true,
		ExternalRef: intent.ID,
		PaymentURL:  paymentURL,
	}, nil
}

// GetStatus lấy trạng thái hiện tại của PaymentIntent
func (g *StripeGateway) GetStatus(ctx context.Context, externalRef string) (*StatusResult, error) {
	intent, err := g.do(ctx, http.MethodGet, "/v1/payment_intents/"+externalRef, nil)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		NativeStatus: intent.Status,
		Amount:       float64(intent.Amount) / 100,
	}
	if intent.Status == "succeeded" {
		completedAt := time.Unix(intent.Created, 0)
		result.CompletedAt = &completedAt
	}
	return result, nil
}

// VerifyPayment đối chiếu trạng thái và số tiền với Stripe
func (g *StripeGateway) VerifyPayment(ctx context.Context, externalRef string, expectedAmount float64) (bool, error) {
	status, err := g.GetStatus(ctx, externalRef)
	if err != nil {
		return false, err
	}
	if status.NativeStatus != "succeeded" {
		return false, nil
	}
	return math.Abs(status.Amount-expectedAmount) < 0.01, nil
}

func (g *StripeGateway) do(ctx context.Context, method, path string, body *strings.Reader) (*stripePaymentIntent, error) {
	var httpReq *http.Request
	var err error
	if body != nil {
		httpReq, err = http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, method, g.baseURL+path, nil)
	}
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không tạo được request tới Stripe", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	if method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "gọi Stripe thất bại", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var stripeErr stripeError
		_ = json.NewDecoder(resp.Body).Decode(&stripeErr)
		return nil, errors.NewAppError(errors.ErrCodeGatewayError,
			fmt.Sprintf("Stripe trả về status %d: %s", resp.StatusCode, stripeErr.Error.Message), nil)
	}

	var intent stripePaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không parse được response từ Stripe", err)
	}
	return &intent, nil
}

package gateways

import (
	"bytes"
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

// PayUGateway gọi PayU qua REST API v2.1
type PayUGateway struct {
	posID        string
	clientID     string
	clientSecret string
	baseURL      string
	client       *http.Client
}

func NewPayUGateway() *PayUGateway {
	baseURL := os.Getenv("PAYU_API_URL")
	if baseURL == "" {
		baseURL = "https://secure.payu.com"
	}
	return &PayUGateway{
		posID:        os.Getenv("PAYU_POS_ID"),
		clientID:     os.Getenv("PAYU_CLIENT_ID"),
		clientSecret: os.Getenv("PAYU_CLIENT_SECRET"),
		baseURL:      baseURL,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PayUGateway) Provider() string {
	return constants.ProviderPayU
}

type payuOrder struct {
	OrderID      string `json:"orderId"`
	Status       string `json:"status"`
	TotalAmount  string `json:"totalAmount"`
	CurrencyCode string `json:"currencyCode"`
}

type payuOrderResponse struct {
	Orders []payuOrder `json:"orders"`
	Status struct {
		StatusCode string `json:"statusCode"`
	} `json:"status"`
}

type payuCreateResponse struct {
	OrderID     string `json:"orderId"`
	RedirectURI string `json:"redirectUri"`
	Status      struct {
		StatusCode string `json:"statusCode"`
	} `json:"status"`
}

// getToken lấy access token theo client_credentials
func (g *PayUGateway) getToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", g.clientID)
	form.Set("client_secret", g.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/pl/standard/user/oauth/authorize", strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.NewAppError(errors.ErrCodeGatewayError, "không tạo được request token PayU", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.NewAppError(errors.ErrCodeGatewayError, "lấy token PayU thất bại", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewAppError(errors.ErrCodeGatewayError,
			fmt.Sprintf("PayU token trả về status %d", resp.StatusCode), nil)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", errors.NewAppError(errors.ErrCodeGatewayError, "không parse được token PayU", err)
	}
	return tokenResp.AccessToken, nil
}

// CreatePayment tạo order trên PayU, PayU trả về redirectUri để khách thanh toán
func (g *PayUGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResult, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		return nil, err
	}

	// PayU tính totalAmount theo đơn vị nhỏ nhất (grosze)
	payload := map[string]interface{}{
		"merchantPosId": g.posID,
		"description":   req.Description,
		"currencyCode":  req.Currency,
		"totalAmount":   strconv.FormatInt(int64(math.Round(req.Amount*100)), 10),
		"continueUrl":   req.ReturnURL,
		"customerIp":    "127.0.0.1",
		"extOrderId":    req.Metadata["extOrderId"],
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không marshal được order PayU", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/api/v2_1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không tạo được request PayU", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "gọi PayU thất bại", err)
	}
	defer resp.Body.Close()

	// PayU trả 302 khi tạo order thành công kèm redirectUri trong body
	if resp.StatusCode >= 400 {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError,
			fmt.Sprintf("PayU trả về status %d", resp.StatusCode), nil)
	}

	var createResp payuCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không parse được response từ PayU", err)
	}

	return &CreatePaymentResult{
		Success:     createResp.Status.StatusCode == "SUCCESS",
		ExternalRef: createResp.OrderID,
		PaymentURL:  createResp.RedirectURI,
	}, nil
}

// GetStatus lấy trạng thái order hiện tại từ PayU
func (g *PayUGateway) GetStatus(ctx context.Context, externalRef string) (*StatusResult, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/api/v2_1/orders/"+externalRef, nil)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không tạo được request PayU", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "gọi PayU thất bại", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError,
			fmt.Sprintf("PayU trả về status %d", resp.StatusCode), nil)
	}

	var orderResp payuOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "không parse được response từ PayU", err)
	}
	if len(orderResp.Orders) == 0 {
		return nil, errors.NewAppError(errors.ErrCodeGatewayError, "PayU không trả về order nào", nil)
	}

	order := orderResp.Orders[0]
	amount, _ := strconv.ParseFloat(order.TotalAmount, 64)
	result := &StatusResult{
		NativeStatus: order.Status,
		Amount:       amount / 100,
	}
	if order.Status == "COMPLETED" {
		now := time.Now()
		result.CompletedAt = &now
	}
	return result, nil
}

// VerifyPayment đối chiếu trạng thái và số tiền với PayU
func (g *PayUGateway) VerifyPayment(ctx context.Context, externalRef string, expectedAmount float64) (bool, error) {
	status, err := g.GetStatus(ctx, externalRef)
	if err != nil {
		return false, err
	}
	if status.NativeStatus != "COMPLETED" {
		return false, nil
	}
	return math.Abs(status.Amount-expectedAmount) < 0.01, nil
}

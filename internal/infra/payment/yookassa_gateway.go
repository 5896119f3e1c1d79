package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"telegram-vpn-shop/internal/domain"
	"telegram-vpn-shop/internal/domain/model"
	"telegram-vpn-shop/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*YooKassaGateway)(nil)

const defaultBaseURL = "https://api.yookassa.ru/v3"

// YooKassaGateway implements adapter.PaymentGateway against the
// YooKassa REST v3 API. Creation uses an Idempotence-Key header so a
// retried request cannot double-charge.
type YooKassaGateway struct {
	shopID    string
	secretKey string
	returnURL string
	baseURL   string
	client    *http.Client
}

func NewYooKassaGateway(shopID, secretKey, returnURL string) (*YooKassaGateway, error) {
	if shopID == "" || secretKey == "" {
		return nil, errors.New("yookassa credentials empty")
	}
	return &YooKassaGateway{
		shopID:    shopID,
		secretKey: secretKey,
		returnURL: returnURL,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// SetBaseURL points the gateway at a different endpoint (tests).
func (y *YooKassaGateway) SetBaseURL(u string) { y.baseURL = u }

func (y *YooKassaGateway) Name() string { return "yookassa" }

// CreatePayment calls POST /payments and returns (paymentID, confirmationURL).
func (y *YooKassaGateway) CreatePayment(ctx context.Context, amountRUB int64, description string, meta map[string]string) (string, string, error) {
	payload := map[string]any{
		"amount": map[string]string{
			"value":    strconv.FormatInt(amountRUB, 10) + ".00",
			"currency": "RUB",
		},
		"capture": true,
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": y.returnURL,
		},
		"description": description,
	}
	if meta != nil {
		payload["metadata"] = meta
	}
	b, _ := json.Marshal(payload)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+"/payments", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.NewString())
	req.SetBasicAuth(y.shopID, y.secretKey)

	resp, err := y.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrGatewayRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("%w: http %d", domain.ErrGatewayRequest, resp.StatusCode)
	}
	var out struct {
		ID           string `json:"id"`
		Status       string `json:"status"`
		Confirmation struct {
			ConfirmationURL string `json:"confirmation_url"`
		} `json:"confirmation"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("%w: decode: %v", domain.ErrGatewayRequest, err)
	}
	if out.ID == "" || out.Confirmation.ConfirmationURL == "" {
		return "", "", fmt.Errorf("%w: incomplete response", domain.ErrGatewayRequest)
	}
	return out.ID, out.Confirmation.ConfirmationURL, nil
}

// QueryStatus calls GET /payments/{id}. Unknown ids map to
// IntentStatusNotFound, never to an error.
func (y *YooKassaGateway) QueryStatus(ctx context.Context, paymentID string) (model.IntentStatus, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/payments/"+paymentID, nil)
	req.SetBasicAuth(y.shopID, y.secretKey)

	resp, err := y.client.Do(req)
	if err != nil {
		return model.IntentStatusNotFound, fmt.Errorf("%w: %v", domain.ErrGatewayRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.IntentStatusNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.IntentStatusNotFound, fmt.Errorf("%w: http %d", domain.ErrGatewayRequest, resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.IntentStatusNotFound, fmt.Errorf("%w: decode: %v", domain.ErrGatewayRequest, err)
	}
	switch out.Status {
	case "succeeded":
		return model.IntentStatusSucceeded, nil
	case "pending", "waiting_for_capture":
		return model.IntentStatusPending, nil
	default: // canceled and anything unexpected
		return model.IntentStatusNotFound, nil
	}
}

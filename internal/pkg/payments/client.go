package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopfox/ShopFox/internal/pkg/env"
)

// ErrPaymentNotFound is returned when the provider has no payment for the
// requested id.
var ErrPaymentNotFound = errors.New("payment not found")

const defaultRequestTimeout = 10 * time.Second

// Client talks to the payment provider's REST API.
type Client interface {
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}

type httpClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

// NewClient creates a provider client against the given API base URL.
func NewClient(baseURL, accessToken string) Client {
	return &httpClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		http:        &http.Client{Timeout: defaultRequestTimeout},
	}
}

// NewClientFromEnv creates a provider client from PAYMENT_API_URL and
// PAYMENT_ACCESS_TOKEN.
func NewClientFromEnv() Client {
	return NewClient(
		env.GetEnv("PAYMENT_API_URL", "https://api.mercadopago.com"),
		env.GetEnv("PAYMENT_ACCESS_TOKEN", ""),
	)
}

// GetPayment fetches the authoritative payment resource by id.
func (c *httpClient) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.baseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch payment %s: provider returned %d: %s", paymentID, resp.StatusCode, body)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decode payment %s: %w", paymentID, err)
	}
	return &payment, nil
}

// CreatePreference registers a checkout preference with the provider and
// returns the redirect target for the buyer.
func (c *httpClient) CreatePreference(ctx context.Context, prefReq PreferenceRequest) (*Preference, error) {
	payload, err := json.Marshal(prefReq)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/checkout/preferences"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("create preference: provider returned %d: %s", resp.StatusCode, body)
	}

	var pref Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("decode preference: %w", err)
	}
	return &pref, nil
}

// PaymentFromPayload tries to recover the payment facts the processor needs
// from a stored webhook payload snapshot, so a provider round trip can be
// skipped. The second return value is false when the snapshot is not
// sufficient on its own.
func PaymentFromPayload(raw []byte) (*Payment, bool) {
	var notif struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		StatusDetail      string `json:"status_detail"`
		ExternalReference string `json:"external_reference"`
		Data              struct {
			ID                string `json:"id"`
			Status            string `json:"status"`
			StatusDetail      string `json:"status_detail"`
			ExternalReference string `json:"external_reference"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &notif); err != nil {
		return nil, false
	}

	payment := &Payment{
		ID:                notif.ID,
		Status:            notif.Status,
		StatusDetail:      notif.StatusDetail,
		ExternalReference: notif.ExternalReference,
	}
	if notif.Data.ID != "" {
		payment.ID = notif.Data.ID
	}
	if notif.Data.Status != "" {
		payment.Status = notif.Data.Status
	}
	if notif.Data.StatusDetail != "" {
		payment.StatusDetail = notif.Data.StatusDetail
	}
	if notif.Data.ExternalReference != "" {
		payment.ExternalReference = notif.Data.ExternalReference
	}

	if payment.Status == "" || payment.ExternalReference == "" {
		return nil, false
	}
	return payment, true
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"greenmart/internal/config"
)

// PayPalClient wraps the orders v2 API: client-credentials token, create
// order, capture. Tokens are cached until shortly before expiry.
type PayPalClient struct {
	cfg  config.PayPalConfig
	http *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalClient(cfg config.PayPalConfig) *PayPalClient {
	return &PayPalClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

// PayPalOrder is what the dispatch handler returns to the client.
type PayPalOrder struct {
	OrderID    string `json:"orderId"`
	Status     string `json:"status"`
	ApproveURL string `json:"approveUrl"`
}

// PayPalCapture is the settled capture extracted from a capture call.
type PayPalCapture struct {
	CaptureID string  `json:"captureId"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Raw       string  `json:"-"`
}

type paypalTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type paypalOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (p *PayPalClient) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.tokenExpiry) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("paypal token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request returned %d", resp.StatusCode)
	}

	var tok paypalTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", err
	}

	p.accessToken = tok.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn-60) * time.Second)
	return p.accessToken, nil
}

// CreateOrder opens a PayPal order for the given amount and returns the
// approval link the buyer must visit.
func (p *PayPalClient) CreateOrder(ctx context.Context, referenceID string, amount float64, currency string) (*PayPalOrder, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": referenceID,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         fmt.Sprintf("%.2f", amount),
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create order failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paypal create order returned %d", resp.StatusCode)
	}

	var gw paypalOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return nil, err
	}

	order := &PayPalOrder{OrderID: gw.ID, Status: gw.Status}
	for _, link := range gw.Links {
		if link.Rel == "approve" {
			order.ApproveURL = link.Href
			break
		}
	}
	return order, nil
}

// CaptureOrder settles an approved PayPal order and returns the capture.
func (p *PayPalClient) CaptureOrder(ctx context.Context, paypalOrderID string) (*PayPalCapture, error) {
	token, err := p.token(ctx)
	if err != nil {
		return nil, err
	}

	captureURL := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", p.cfg.BaseURL, paypalOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, captureURL, strings.NewReader("{}"))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal capture failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paypal capture returned %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	var gw paypalOrderResponse
	if err := json.NewDecoder(io.TeeReader(resp.Body, &buf)).Decode(&gw); err != nil {
		return nil, err
	}

	if gw.Status != "COMPLETED" {
		return nil, fmt.Errorf("paypal capture status %s", gw.Status)
	}

	for _, unit := range gw.PurchaseUnits {
		for _, capture := range unit.Payments.Captures {
			amount, _ := strconv.ParseFloat(capture.Amount.Value, 64)
			return &PayPalCapture{
				CaptureID: capture.ID,
				Status:    capture.Status,
				Amount:    amount,
				Currency:  capture.Amount.CurrencyCode,
				Raw:       buf.String(),
			}, nil
		}
	}

	return nil, fmt.Errorf("paypal capture response had no captures")
}

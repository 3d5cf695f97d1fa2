package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"greenmart/internal/config"
)

// MoMoClient shapes create-payment requests for the MoMo gateway and verifies
// IPN callbacks. Amounts are VND and sent as integers.
type MoMoClient struct {
	cfg  config.MoMoConfig
	http *http.Client
}

func NewMoMoClient(cfg config.MoMoConfig) *MoMoClient {
	return &MoMoClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	AccessKey   string `json:"accessKey"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	ExtraData   string `json:"extraData"`
	RequestType string `json:"requestType"`
	Signature   string `json:"signature"`
	Lang        string `json:"lang"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	Deeplink   string `json:"deeplink"`
	RequestID  string `json:"requestId"`
}

// MoMoPayment is the payload returned to the client for a momo checkout.
type MoMoPayment struct {
	PayURL    string `json:"payUrl"`
	Deeplink  string `json:"deeplink,omitempty"`
	RequestID string `json:"requestId"`
}

// MoMoIPN is the callback body MoMo posts after the buyer pays.
type MoMoIPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// CreatePayment asks the gateway for a redirect URL. orderID must be the
// unique order number, amount the authoritative total from the stored order.
func (m *MoMoClient) CreatePayment(ctx context.Context, orderID string, amount int64, orderInfo string) (*MoMoPayment, error) {
	requestID := uuid.NewString()
	req := momoCreateRequest{
		PartnerCode: m.cfg.PartnerCode,
		AccessKey:   m.cfg.AccessKey,
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderID,
		OrderInfo:   orderInfo,
		RedirectURL: m.cfg.RedirectURL,
		IPNURL:      m.cfg.IPNURL,
		ExtraData:   "",
		RequestType: "captureWallet",
		Lang:        "vi",
	}
	req.Signature = m.signCreate(req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint+"/v2/gateway/api/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("momo request failed: %w", err)
	}
	defer resp.Body.Close()

	var gw momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return nil, fmt.Errorf("momo response decode failed: %w", err)
	}
	if gw.ResultCode != 0 {
		return nil, fmt.Errorf("momo rejected payment: %d %s", gw.ResultCode, gw.Message)
	}

	return &MoMoPayment{
		PayURL:    gw.PayURL,
		Deeplink:  gw.Deeplink,
		RequestID: gw.RequestID,
	}, nil
}

// signCreate computes the HMAC-SHA256 signature over the gateway's fixed
// parameter ordering for create requests.
func (m *MoMoClient) signCreate(r momoCreateRequest) string {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		m.cfg.AccessKey, r.Amount, r.ExtraData, r.IPNURL, r.OrderID, r.OrderInfo,
		r.PartnerCode, r.RedirectURL, r.RequestID, r.RequestType,
	)
	return hmacSHA256(m.cfg.SecretKey, raw)
}

// SignIPN computes the expected signature for an IPN payload. The parameter
// ordering is fixed by the gateway and differs from the create ordering.
func (m *MoMoClient) SignIPN(ipn MoMoIPN) string {
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%d&resultCode=%d&transId=%d",
		m.cfg.AccessKey, ipn.Amount, ipn.ExtraData, ipn.Message, ipn.OrderID, ipn.OrderInfo,
		ipn.OrderType, ipn.PartnerCode, ipn.PayType, ipn.RequestID, ipn.ResponseTime,
		ipn.ResultCode, ipn.TransID,
	)
	return hmacSHA256(m.cfg.SecretKey, raw)
}

// VerifyIPN checks the callback signature in constant time. Callers must not
// touch any order or payment state when this returns false.
func (m *MoMoClient) VerifyIPN(ipn MoMoIPN) bool {
	expected := m.SignIPN(ipn)
	return hmac.Equal([]byte(expected), []byte(ipn.Signature))
}

func hmacSHA256(key, data string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

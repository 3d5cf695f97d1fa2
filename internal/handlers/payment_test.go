package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"greenmart/internal/config"
	"greenmart/internal/services"
)

func momoCallbackRouter(momo *services.MoMoClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// A nil database is safe here: the signature guard runs before any
	// order or payment access, and these tests must never get past it.
	r.POST("/api/payments/momo/callback", MoMoCallback(nil, momo, nil))
	return r
}

func signedTestIPN(momo *services.MoMoClient) services.MoMoIPN {
	ipn := services.MoMoIPN{
		PartnerCode:  "PARTNER",
		OrderID:      "GM-20250101-ABCDEF12",
		RequestID:    "req-1",
		Amount:       230000,
		OrderInfo:    "GreenMart order GM-20250101-ABCDEF12",
		OrderType:    "momo_wallet",
		TransID:      4088878653,
		ResultCode:   0,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1735689600000,
	}
	ipn.Signature = momo.SignIPN(ipn)
	return ipn
}

func postIPN(t *testing.T, r *gin.Engine, ipn services.MoMoIPN) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(ipn)
	if err != nil {
		t.Fatalf("marshal ipn: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/payments/momo/callback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMoMoCallbackRejectsForgedSignature(t *testing.T) {
	momo := services.NewMoMoClient(config.MoMoConfig{
		PartnerCode: "PARTNER",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
	})
	r := momoCallbackRouter(momo)

	ipn := signedTestIPN(momo)
	ipn.Signature = "deadbeef"

	w := postIPN(t, r, ipn)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for forged signature, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid signature") {
		t.Fatalf("expected invalid-signature message, got %s", w.Body.String())
	}
}

func TestMoMoCallbackRejectsTamperedAmount(t *testing.T) {
	momo := services.NewMoMoClient(config.MoMoConfig{
		PartnerCode: "PARTNER",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
	})
	r := momoCallbackRouter(momo)

	// Signed over 230,000, then lowered in flight.
	ipn := signedTestIPN(momo)
	ipn.Amount = 1000

	w := postIPN(t, r, ipn)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered amount, got %d", w.Code)
	}
}

func TestMoMoCallbackRejectsTamperedResultCode(t *testing.T) {
	momo := services.NewMoMoClient(config.MoMoConfig{
		PartnerCode: "PARTNER",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
	})
	r := momoCallbackRouter(momo)

	// A denied payment flipped to success must die at the guard.
	ipn := signedTestIPN(momo)
	ipn.ResultCode = 1006
	ipn.Message = "Transaction denied by user."
	ipn.Signature = momo.SignIPN(ipn)
	ipn.ResultCode = 0

	w := postIPN(t, r, ipn)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered result code, got %d", w.Code)
	}
}

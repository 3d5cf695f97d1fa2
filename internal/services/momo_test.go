package services

import (
	"testing"

	"greenmart/internal/config"
)

func testMoMoClient() *MoMoClient {
	return NewMoMoClient(config.MoMoConfig{
		PartnerCode: "PARTNER",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
	})
}

func testIPN() MoMoIPN {
	return MoMoIPN{
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
}

func TestVerifyIPNAcceptsValidSignature(t *testing.T) {
	m := testMoMoClient()
	ipn := testIPN()
	ipn.Signature = m.SignIPN(ipn)

	if !m.VerifyIPN(ipn) {
		t.Fatal("expected a self-signed IPN to verify")
	}
}

func TestVerifyIPNRejectsTamperedAmount(t *testing.T) {
	m := testMoMoClient()
	ipn := testIPN()
	ipn.Signature = m.SignIPN(ipn)

	ipn.Amount = 1000
	if m.VerifyIPN(ipn) {
		t.Fatal("tampered amount must fail verification")
	}
}

func TestVerifyIPNRejectsTamperedResultCode(t *testing.T) {
	m := testMoMoClient()
	ipn := testIPN()
	ipn.ResultCode = 1006
	ipn.Message = "Transaction denied by user."
	ipn.Signature = m.SignIPN(ipn)

	// Flipping a failed payment to success must not verify.
	ipn.ResultCode = 0
	if m.VerifyIPN(ipn) {
		t.Fatal("tampered payload must fail verification")
	}
}

func TestVerifyIPNRejectsForgedSignature(t *testing.T) {
	m := testMoMoClient()
	ipn := testIPN()
	ipn.Signature = "deadbeef"

	if m.VerifyIPN(ipn) {
		t.Fatal("forged signature must fail verification")
	}
}

func TestSignIPNStableForSamePayload(t *testing.T) {
	m := testMoMoClient()
	ipn := testIPN()

	if m.SignIPN(ipn) != m.SignIPN(ipn) {
		t.Fatal("signature must be deterministic")
	}

	other := testMoMoClient()
	other.cfg.SecretKey = "different"
	if m.SignIPN(ipn) == other.SignIPN(ipn) {
		t.Fatal("different secrets must produce different signatures")
	}
}

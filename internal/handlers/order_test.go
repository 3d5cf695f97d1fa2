package handlers

import (
	"strings"
	"testing"

	"greenmart/internal/models"
)

func TestNewOrderNumberFormat(t *testing.T) {
	n := newOrderNumber()

	parts := strings.Split(n, "-")
	if len(parts) != 3 || parts[0] != "GM" {
		t.Fatalf("unexpected order number shape: %s", n)
	}
	if len(parts[1]) != 8 {
		t.Fatalf("expected 8-digit date segment, got %s", parts[1])
	}
	if len(parts[2]) != 8 {
		t.Fatalf("expected 8-char suffix, got %s", parts[2])
	}
	if n != strings.ToUpper(n) {
		t.Fatalf("order number must be upper case: %s", n)
	}
}

func TestNewOrderNumberUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := newOrderNumber()
		if seen[n] {
			t.Fatalf("duplicate order number: %s", n)
		}
		seen[n] = true
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, method := range []string{
		models.PaymentMethodCOD,
		models.PaymentMethodMoMo,
		models.PaymentMethodBankTransfer,
		models.PaymentMethodPayPal,
	} {
		if !validPaymentMethod(method) {
			t.Fatalf("expected %s to be accepted", method)
		}
	}
	for _, method := range []string{"", "cash", "bitcoin", "COD"} {
		if validPaymentMethod(method) {
			t.Fatalf("expected %q to be rejected", method)
		}
	}
}

package models

import (
	"errors"
	"testing"
)

func TestVoucherHoldingsAddAndCount(t *testing.T) {
	h := VoucherHoldings{}

	h.Add("v1", 2)
	h.Add("v1", 1)
	if got := h.Count("v1"); got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}
	if got := h.Count("missing"); got != 0 {
		t.Fatalf("expected 0 for unheld voucher, got %d", got)
	}

	// Non-positive grants are ignored.
	h.Add("v1", 0)
	h.Add("v1", -5)
	if got := h.Count("v1"); got != 3 {
		t.Fatalf("expected count unchanged at 3, got %d", got)
	}
}

func TestVoucherHoldingsDecrementDeletesAtZero(t *testing.T) {
	h := VoucherHoldings{"v1": 2}

	if err := h.Decrement("v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.Count("v1"); got != 1 {
		t.Fatalf("expected count 1, got %d", got)
	}

	if err := h.Decrement("v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, exists := h["v1"]; exists {
		t.Fatal("key must be removed when the count reaches zero")
	}
}

func TestVoucherHoldingsDecrementNeverNegative(t *testing.T) {
	h := VoucherHoldings{}

	if err := h.Decrement("v1"); !errors.Is(err, ErrVoucherNotHeld) {
		t.Fatalf("expected ErrVoucherNotHeld, got %v", err)
	}

	h["v2"] = 0
	if err := h.Decrement("v2"); !errors.Is(err, ErrVoucherNotHeld) {
		t.Fatalf("expected ErrVoucherNotHeld for zero count, got %v", err)
	}
	if got := h["v2"]; got != 0 {
		t.Fatalf("count must never go negative, got %d", got)
	}
}

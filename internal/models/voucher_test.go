package models

import (
	"testing"
	"time"
)

func usableVoucher(now time.Time) Voucher {
	return Voucher{
		Code:      "GREEN10",
		Type:      VoucherTypePercent,
		Value:     10,
		StartAt:   now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
}

func TestVoucherUsable(t *testing.T) {
	now := time.Now()

	v := usableVoucher(now)
	if !v.Usable(now) {
		t.Fatal("expected voucher to be usable")
	}

	v = usableVoucher(now)
	v.IsActive = false
	if v.Usable(now) {
		t.Fatal("inactive voucher must not be usable")
	}

	v = usableVoucher(now)
	v.StartAt = now.Add(time.Minute)
	if v.Usable(now) {
		t.Fatal("voucher before its start must not be usable")
	}

	v = usableVoucher(now)
	v.ExpiresAt = now.Add(-time.Minute)
	if v.Usable(now) {
		t.Fatal("expired voucher must not be usable")
	}
}

func TestVoucherUsableUsageLimit(t *testing.T) {
	now := time.Now()

	v := usableVoucher(now)
	v.UsageLimit = 100
	v.UsedCount = 99
	if !v.Usable(now) {
		t.Fatal("voucher under its usage limit must be usable")
	}

	v.UsedCount = 100
	if v.Usable(now) {
		t.Fatal("exhausted voucher must not be usable")
	}

	// Zero limit means unlimited.
	v = usableVoucher(now)
	v.UsageLimit = 0
	v.UsedCount = 100000
	if !v.Usable(now) {
		t.Fatal("unlimited voucher must stay usable")
	}
}

package handlers

import (
	"testing"

	"greenmart/internal/models"
)

func TestCheckoutTotalStandardOrder(t *testing.T) {
	// Two items at 100,000 each stay under the free-ship threshold.
	p := checkoutPricing{
		Subtotal:    200000,
		DeliveryFee: deliveryFeeFor(200000, 500000, 30000),
	}

	if p.DeliveryFee != 30000 {
		t.Fatalf("expected delivery fee 30000, got %v", p.DeliveryFee)
	}
	if got := p.Total(); got != 230000 {
		t.Fatalf("expected total 230000, got %v", got)
	}
}

func TestCheckoutTotalFreeShipping(t *testing.T) {
	p := checkoutPricing{
		Subtotal:    600000,
		DeliveryFee: deliveryFeeFor(600000, 500000, 30000),
	}

	if p.DeliveryFee != 0 {
		t.Fatalf("expected free shipping, got fee %v", p.DeliveryFee)
	}
	if got := p.Total(); got != 600000 {
		t.Fatalf("expected total 600000, got %v", got)
	}
}

func TestClampVoucherDiscount(t *testing.T) {
	// Room left after the flash-sale discount: no change.
	if got := clampVoucherDiscount(20000, 100000, 30000); got != 20000 {
		t.Fatalf("expected 20000 untouched, got %v", got)
	}
	// Combined discounts would exceed the subtotal: cap to the remainder.
	if got := clampVoucherDiscount(80000, 100000, 30000); got != 70000 {
		t.Fatalf("expected cap at 70000, got %v", got)
	}
	// Flash-sale discount alone already consumes the subtotal.
	if got := clampVoucherDiscount(10000, 50000, 50000); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := clampVoucherDiscount(10000, 50000, 60000); got != 0 {
		t.Fatalf("clamp must never go negative, got %v", got)
	}
}

func TestCheckoutTotalNeverBelowFees(t *testing.T) {
	// The clamp keeps the discounts within the subtotal, so the stored
	// formula bottoms out at the fees.
	subtotal, flashDiscount := 50000.0, 20000.0
	p := checkoutPricing{
		Subtotal:          subtotal,
		FlashSaleDiscount: flashDiscount,
		VoucherDiscount:   clampVoucherDiscount(100000, subtotal, flashDiscount),
		DeliveryFee:       30000,
		ServiceFee:        5000,
	}
	if got := p.Total(); got != 35000 {
		t.Fatalf("expected total equal to fees 35000, got %v", got)
	}
}

func TestCheckoutTotalAllComponents(t *testing.T) {
	p := checkoutPricing{
		Subtotal:          300000,
		VoucherDiscount:   20000,
		FlashSaleDiscount: 50000,
		DeliveryFee:       30000,
		ServiceFee:        5000,
	}
	if got := p.Total(); got != 265000 {
		t.Fatalf("expected total 265000, got %v", got)
	}
}

func TestVoucherDiscountPercentWithCap(t *testing.T) {
	v := models.Voucher{
		Type:        models.VoucherTypePercent,
		Value:       10,
		MaxDiscount: 25000,
	}

	if got := voucherDiscountFor(v, 200000); got != 20000 {
		t.Fatalf("expected 20000 under cap, got %v", got)
	}
	if got := voucherDiscountFor(v, 500000); got != 25000 {
		t.Fatalf("expected capped 25000, got %v", got)
	}
}

func TestVoucherDiscountFixedCappedAtSubtotal(t *testing.T) {
	v := models.Voucher{
		Type:  models.VoucherTypeFixed,
		Value: 80000,
	}

	if got := voucherDiscountFor(v, 200000); got != 80000 {
		t.Fatalf("expected 80000, got %v", got)
	}
	if got := voucherDiscountFor(v, 50000); got != 50000 {
		t.Fatalf("fixed discount must not exceed subtotal, got %v", got)
	}
}

func TestVoucherDiscountUnknownType(t *testing.T) {
	v := models.Voucher{Type: "mystery", Value: 50}
	if got := voucherDiscountFor(v, 100000); got != 0 {
		t.Fatalf("unknown voucher type must discount nothing, got %v", got)
	}
}

func TestFlashSaleDiscount(t *testing.T) {
	if got := flashSaleDiscountFor(100000, 70000, 3); got != 90000 {
		t.Fatalf("expected 90000, got %v", got)
	}
	// A sale price at or above catalog grants nothing.
	if got := flashSaleDiscountFor(100000, 100000, 3); got != 0 {
		t.Fatalf("expected 0 for equal prices, got %v", got)
	}
	if got := flashSaleDiscountFor(100000, 70000, 0); got != 0 {
		t.Fatalf("expected 0 for zero quantity, got %v", got)
	}
}

func TestRoundAverage(t *testing.T) {
	cases := []struct {
		sum, count int
		want       float64
	}{
		{0, 0, 0},
		{5, 1, 5},
		{7, 2, 3.5},
		{13, 3, 4.3},
		{14, 3, 4.7},
	}
	for _, tc := range cases {
		if got := roundAverage(tc.sum, tc.count); got != tc.want {
			t.Fatalf("roundAverage(%d, %d) = %v, want %v", tc.sum, tc.count, got, tc.want)
		}
	}
}

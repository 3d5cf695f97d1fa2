package handlers

import (
	"github.com/shopspring/decimal"

	"greenmart/internal/models"
)

// checkoutPricing accumulates the money components of an order. Amounts are
// VND; the stored invariant is
// total = subtotal - voucherDiscount - flashSaleDiscount + deliveryFee + serviceFee.
type checkoutPricing struct {
	Subtotal          float64
	VoucherDiscount   float64
	FlashSaleDiscount float64
	DeliveryFee       float64
	ServiceFee        float64
}

// Total applies the stored formula verbatim. Checkout clamps the voucher
// discount with clampVoucherDiscount before calling this, so the combined
// discounts never exceed the subtotal and the result never drops below the
// fees.
func (p checkoutPricing) Total() float64 {
	total := decimal.NewFromFloat(p.Subtotal).
		Sub(decimal.NewFromFloat(p.VoucherDiscount)).
		Sub(decimal.NewFromFloat(p.FlashSaleDiscount)).
		Add(decimal.NewFromFloat(p.DeliveryFee)).
		Add(decimal.NewFromFloat(p.ServiceFee))
	result, _ := total.Round(2).Float64()
	return result
}

// clampVoucherDiscount caps a voucher discount so that, combined with the
// flash-sale discount, it never exceeds the subtotal. The stored order then
// satisfies the total formula without any clamping at read time.
func clampVoucherDiscount(discount, subtotal, flashSaleDiscount float64) float64 {
	max := decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(flashSaleDiscount))
	d := decimal.NewFromFloat(discount)
	if d.GreaterThan(max) {
		d = max
	}
	if d.IsNegative() {
		return 0
	}
	result, _ := d.Float64()
	return result
}

// deliveryFeeFor applies the static free-shipping threshold rule.
func deliveryFeeFor(subtotal, threshold, fee float64) float64 {
	if subtotal >= threshold {
		return 0
	}
	return fee
}

// voucherDiscountFor computes the discount a voucher grants on a subtotal.
// Percent vouchers cap at MaxDiscount when set; no voucher ever discounts
// more than the subtotal itself.
func voucherDiscountFor(v models.Voucher, subtotal float64) float64 {
	var discount decimal.Decimal
	switch v.Type {
	case models.VoucherTypePercent:
		discount = decimal.NewFromFloat(subtotal).
			Mul(decimal.NewFromFloat(v.Value)).
			Div(decimal.NewFromInt(100)).
			Round(2)
		if v.MaxDiscount > 0 {
			max := decimal.NewFromFloat(v.MaxDiscount)
			if discount.GreaterThan(max) {
				discount = max
			}
		}
	case models.VoucherTypeFixed:
		discount = decimal.NewFromFloat(v.Value)
	default:
		return 0
	}

	sub := decimal.NewFromFloat(subtotal)
	if discount.GreaterThan(sub) {
		discount = sub
	}
	if discount.IsNegative() {
		return 0
	}
	result, _ := discount.Float64()
	return result
}

// flashSaleDiscountFor is the per-line saving: (catalog - sale price) * qty.
func flashSaleDiscountFor(catalogPrice, salePrice float64, quantity int) float64 {
	if salePrice >= catalogPrice || quantity <= 0 {
		return 0
	}
	discount := decimal.NewFromFloat(catalogPrice).
		Sub(decimal.NewFromFloat(salePrice)).
		Mul(decimal.NewFromInt(int64(quantity)))
	result, _ := discount.Round(2).Float64()
	return result
}

// roundAverage rounds a rating mean to one decimal place.
func roundAverage(sum int, count int) float64 {
	if count == 0 {
		return 0
	}
	avg := decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(count))).
		Round(1)
	result, _ := avg.Float64()
	return result
}

package models

import "errors"

// ErrVoucherNotHeld is returned when a decrement targets a voucher the user
// does not hold (or holds at zero).
var ErrVoucherNotHeld = errors.New("voucher not held")

// VoucherHoldings maps voucher id (hex) to the remaining redemption count for
// a user. Counts are never negative; a count reaching zero removes the key so
// the stored document never accumulates dead entries.
type VoucherHoldings map[string]int

// Count returns the held quantity for a voucher, zero when absent.
func (h VoucherHoldings) Count(voucherID string) int {
	return h[voucherID]
}

// Add grants quantity more redemptions of a voucher.
func (h VoucherHoldings) Add(voucherID string, quantity int) {
	if quantity <= 0 {
		return
	}
	h[voucherID] += quantity
}

// Decrement consumes one redemption. The key is deleted when the count
// reaches zero, so holdings can never go negative.
func (h VoucherHoldings) Decrement(voucherID string) error {
	count, ok := h[voucherID]
	if !ok || count <= 0 {
		return ErrVoucherNotHeld
	}
	if count == 1 {
		delete(h, voucherID)
		return nil
	}
	h[voucherID] = count - 1
	return nil
}

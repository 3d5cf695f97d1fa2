package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VoucherTypePercent = "percent"
	VoucherTypeFixed   = "fixed"
)

// Voucher is a discount code. Percent vouchers cap at MaxDiscount when it is
// set; fixed vouchers discount the flat Value.
type Voucher struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"code" json:"code"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        string             `bson:"type" json:"type"`
	Value       float64            `bson:"value" json:"value"`
	MaxDiscount float64            `bson:"maxDiscount,omitempty" json:"maxDiscount,omitempty"`
	MinOrder    float64            `bson:"minOrder" json:"minOrder"`
	UsedCount   int                `bson:"usedCount" json:"usedCount"`
	UsageLimit  int                `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"`
	StartAt     time.Time          `bson:"startAt" json:"startAt"`
	ExpiresAt   time.Time          `bson:"expiresAt" json:"expiresAt"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Usable reports whether the voucher can be redeemed at the given time.
func (v Voucher) Usable(now time.Time) bool {
	if !v.IsActive {
		return false
	}
	if now.Before(v.StartAt) || now.After(v.ExpiresAt) {
		return false
	}
	if v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit {
		return false
	}
	return true
}

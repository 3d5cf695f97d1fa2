package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FlashSaleScheduled = "scheduled"
	FlashSaleActive    = "active"
	FlashSaleEnded     = "ended"
)

// FlashSaleItem allocates a discounted quantity of one product to a sale.
type FlashSaleItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	SalePrice float64            `bson:"salePrice" json:"salePrice"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Sold      int                `bson:"sold" json:"sold"`
}

// FlashSale is a time-boxed discount campaign. Status is denormalized and
// refreshed both on save and by the minute sweeper.
type FlashSale struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	StartTime time.Time          `bson:"startTime" json:"startTime"`
	EndTime   time.Time          `bson:"endTime" json:"endTime"`
	Status    string             `bson:"status" json:"status"`
	Items     []FlashSaleItem    `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ResolveStatus derives the status from the time window.
func (f FlashSale) ResolveStatus(now time.Time) string {
	switch {
	case now.Before(f.StartTime):
		return FlashSaleScheduled
	case now.After(f.EndTime):
		return FlashSaleEnded
	default:
		return FlashSaleActive
	}
}

// Running reports whether the sale is sellable right now. Both the wall
// clock and the denormalized status must agree.
func (f FlashSale) Running(now time.Time) bool {
	return f.Status == FlashSaleActive && f.ResolveStatus(now) == FlashSaleActive
}

// Item returns the sale entry for a product, or nil.
func (f FlashSale) Item(productID primitive.ObjectID) *FlashSaleItem {
	for i := range f.Items {
		if f.Items[i].ProductID == productID {
			return &f.Items[i]
		}
	}
	return nil
}

// Remaining returns how many units of a product the sale can still sell.
func (i FlashSaleItem) Remaining() int {
	left := i.Quantity - i.Sold
	if left < 0 {
		return 0
	}
	return left
}

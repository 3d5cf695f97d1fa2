package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is one entry in a user's cart. Flash-sale membership is part of
// the item key: the same product can sit in the cart twice, once at catalog
// price and once under a flash sale.
type CartItem struct {
	ProductID   primitive.ObjectID  `bson:"productId" json:"productId"`
	Name        string              `bson:"name" json:"name"`
	Price       float64             `bson:"price" json:"price"`
	Quantity    int                 `bson:"quantity" json:"quantity"`
	Unit        string              `bson:"unit,omitempty" json:"unit,omitempty"`
	ImageURL    string              `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	FlashSaleID *primitive.ObjectID `bson:"flashSaleId,omitempty" json:"flashSaleId,omitempty"`
}

// Cart holds the single server-side cart for an authenticated user. Totals
// are recomputed on every mutation before the document is written.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Items      []CartItem         `bson:"items" json:"items"`
	TotalItems int                `bson:"totalItems" json:"totalItems"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Recalculate refreshes the denormalized totals from the items.
func (c *Cart) Recalculate() {
	totalItems := 0
	totalPrice := 0.0
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice += item.Price * float64(item.Quantity)
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}

// FindItem returns the index of the item matching the (product, flash sale)
// key, or -1.
func (c *Cart) FindItem(productID primitive.ObjectID, flashSaleID *primitive.ObjectID) int {
	for i, item := range c.Items {
		if item.ProductID != productID {
			continue
		}
		if (item.FlashSaleID == nil) != (flashSaleID == nil) {
			continue
		}
		if item.FlashSaleID != nil && *item.FlashSaleID != *flashSaleID {
			continue
		}
		return i
	}
	return -1
}

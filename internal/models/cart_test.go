package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartRecalculate(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{Price: 100000, Quantity: 2},
		{Price: 45000, Quantity: 1},
	}}
	cart.Recalculate()

	if cart.TotalItems != 3 {
		t.Fatalf("expected 3 total items, got %d", cart.TotalItems)
	}
	if cart.TotalPrice != 245000 {
		t.Fatalf("expected total 245000, got %v", cart.TotalPrice)
	}

	cart.Items = nil
	cart.Recalculate()
	if cart.TotalItems != 0 || cart.TotalPrice != 0 {
		t.Fatalf("empty cart must zero its totals, got %d / %v", cart.TotalItems, cart.TotalPrice)
	}
}

func TestCartFindItemKeyedByFlashSale(t *testing.T) {
	productID := primitive.NewObjectID()
	saleID := primitive.NewObjectID()
	otherSaleID := primitive.NewObjectID()

	cart := Cart{Items: []CartItem{
		{ProductID: productID, Price: 100000},
		{ProductID: productID, Price: 70000, FlashSaleID: &saleID},
	}}

	if got := cart.FindItem(productID, nil); got != 0 {
		t.Fatalf("expected catalog line at index 0, got %d", got)
	}
	if got := cart.FindItem(productID, &saleID); got != 1 {
		t.Fatalf("expected flash-sale line at index 1, got %d", got)
	}
	if got := cart.FindItem(productID, &otherSaleID); got != -1 {
		t.Fatalf("different sale id must not match, got %d", got)
	}
	if got := cart.FindItem(primitive.NewObjectID(), nil); got != -1 {
		t.Fatalf("unknown product must not match, got %d", got)
	}
}

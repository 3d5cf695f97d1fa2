package handlers

import (
	"testing"

	"greenmart/internal/models"
)

func TestFlashSaleCapWithCartedQuantity(t *testing.T) {
	// 10 allocated, 4 sold: 6 sellable.
	item := models.FlashSaleItem{Quantity: 10, Sold: 4}

	if flashSaleCapExceeded(6, 0, item) {
		t.Fatal("requesting exactly the unsold allocation must be allowed")
	}
	if !flashSaleCapExceeded(7, 0, item) {
		t.Fatal("requesting past the unsold allocation must be rejected")
	}

	// 4 already in the cart leaves room for 2 more.
	if flashSaleCapExceeded(2, 4, item) {
		t.Fatal("request fitting alongside carted quantity must be allowed")
	}
	if !flashSaleCapExceeded(3, 4, item) {
		t.Fatal("request plus carted quantity past the allocation must be rejected")
	}
}

func TestFlashSaleCapSoldOutItem(t *testing.T) {
	item := models.FlashSaleItem{Quantity: 5, Sold: 5}
	if !flashSaleCapExceeded(1, 0, item) {
		t.Fatal("a sold-out item must reject any request")
	}

	// Oversold items report zero remaining, never negative.
	item.Sold = 8
	if !flashSaleCapExceeded(1, 0, item) {
		t.Fatal("an oversold item must reject any request")
	}
}

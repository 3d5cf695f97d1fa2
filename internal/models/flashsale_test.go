package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFlashSaleResolveStatus(t *testing.T) {
	now := time.Now()
	sale := FlashSale{
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}

	if got := sale.ResolveStatus(now); got != FlashSaleActive {
		t.Fatalf("expected active, got %s", got)
	}
	if got := sale.ResolveStatus(now.Add(-2 * time.Hour)); got != FlashSaleScheduled {
		t.Fatalf("expected scheduled, got %s", got)
	}
	if got := sale.ResolveStatus(now.Add(2 * time.Hour)); got != FlashSaleEnded {
		t.Fatalf("expected ended, got %s", got)
	}
}

func TestFlashSaleRunningRequiresStatusAndWindow(t *testing.T) {
	now := time.Now()
	sale := FlashSale{
		Status:    FlashSaleActive,
		StartTime: now.Add(-time.Hour),
		EndTime:   now.Add(time.Hour),
	}
	if !sale.Running(now) {
		t.Fatal("expected sale to be running")
	}

	// A stale active status outside the window does not sell.
	sale.EndTime = now.Add(-time.Minute)
	if sale.Running(now) {
		t.Fatal("sale past its end time must not run")
	}

	// An in-window sale not yet swept to active does not sell either.
	sale.EndTime = now.Add(time.Hour)
	sale.Status = FlashSaleScheduled
	if sale.Running(now) {
		t.Fatal("sale without active status must not run")
	}
}

func TestFlashSaleItemRemaining(t *testing.T) {
	item := FlashSaleItem{Quantity: 10, Sold: 7}
	if got := item.Remaining(); got != 3 {
		t.Fatalf("expected 3 remaining, got %d", got)
	}

	item.Sold = 12
	if got := item.Remaining(); got != 0 {
		t.Fatalf("oversold item must report 0 remaining, got %d", got)
	}
}

func TestFlashSaleItemLookup(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	sale := FlashSale{Items: []FlashSaleItem{
		{ProductID: p1, SalePrice: 50000, Quantity: 5},
	}}

	if item := sale.Item(p1); item == nil || item.SalePrice != 50000 {
		t.Fatalf("expected item for %s, got %+v", p1.Hex(), item)
	}
	if item := sale.Item(p2); item != nil {
		t.Fatal("expected nil for product not in sale")
	}
}

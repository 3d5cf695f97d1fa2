package handlers

import (
	"testing"

	"greenmart/internal/models"
)

func TestOrderStatusForwardFlow(t *testing.T) {
	steps := []struct{ from, to string }{
		{models.OrderStatusPending, models.OrderStatusConfirmed},
		{models.OrderStatusConfirmed, models.OrderStatusPreparing},
		{models.OrderStatusPreparing, models.OrderStatusShipping},
		{models.OrderStatusShipping, models.OrderStatusDelivered},
		{models.OrderStatusDelivered, models.OrderStatusCompleted},
	}
	for _, s := range steps {
		if !canTransition(s.from, s.to) {
			t.Fatalf("expected %s -> %s to be legal", s.from, s.to)
		}
	}
}

func TestOrderStatusNoBackwardMoves(t *testing.T) {
	if canTransition(models.OrderStatusDelivered, models.OrderStatusShipping) {
		t.Fatal("delivered must not move back to shipping")
	}
	if canTransition(models.OrderStatusConfirmed, models.OrderStatusPending) {
		t.Fatal("confirmed must not move back to pending")
	}
	if canTransition(models.OrderStatusPending, models.OrderStatusDelivered) {
		t.Fatal("pending must not skip ahead to delivered")
	}
}

func TestOrderStatusTerminalStates(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
		models.OrderStatusReturned,
	} {
		if !isTerminalStatus(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
		for _, target := range []string{
			models.OrderStatusPending,
			models.OrderStatusConfirmed,
			models.OrderStatusShipping,
		} {
			if canTransition(status, target) {
				t.Fatalf("terminal %s must not transition to %s", status, target)
			}
		}
	}
	if isTerminalStatus(models.OrderStatusShipping) {
		t.Fatal("shipping is not terminal")
	}
}

func TestOrderStatusCancellationWindow(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
	} {
		if !canTransition(status, models.OrderStatusCancelled) {
			t.Fatalf("expected %s to allow cancellation", status)
		}
	}
	if canTransition(models.OrderStatusShipping, models.OrderStatusCancelled) {
		t.Fatal("shipping orders are returned, not cancelled")
	}
}

func TestInferPaymentStatusCOD(t *testing.T) {
	status, ok := inferPaymentStatus(models.PaymentMethodCOD, models.OrderStatusDelivered)
	if !ok || status != models.PaymentStatusPaid {
		t.Fatalf("COD at delivered should infer paid, got %q ok=%v", status, ok)
	}
	if _, ok := inferPaymentStatus(models.PaymentMethodCOD, models.OrderStatusConfirmed); ok {
		t.Fatal("COD at confirmed must not infer settlement")
	}
}

func TestInferPaymentStatusOnlineMethods(t *testing.T) {
	for _, method := range []string{
		models.PaymentMethodMoMo,
		models.PaymentMethodPayPal,
		models.PaymentMethodBankTransfer,
	} {
		status, ok := inferPaymentStatus(method, models.OrderStatusConfirmed)
		if !ok || status != models.PaymentStatusPaid {
			t.Fatalf("%s at confirmed should infer paid, got %q ok=%v", method, status, ok)
		}
		if _, ok := inferPaymentStatus(method, models.OrderStatusDelivered); ok {
			t.Fatalf("%s at delivered must not infer anything new", method)
		}
	}
}

package handlers

import (
	"fmt"

	"greenmart/internal/models"
)

// orderStatusFlow fixes the legal next states per current state. Missing keys
// are terminal.
var orderStatusFlow = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusShipping, models.OrderStatusCancelled},
	models.OrderStatusShipping:  {models.OrderStatusDelivered, models.OrderStatusReturned},
	models.OrderStatusDelivered: {models.OrderStatusCompleted, models.OrderStatusReturned},
}

type invalidTransitionError struct {
	From string
	To   string
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func isTerminalStatus(status string) bool {
	return len(orderStatusFlow[status]) == 0
}

func canTransition(from, to string) bool {
	for _, next := range orderStatusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}

// inferPaymentStatus decides whether a status transition implies settlement:
// COD settles on delivery, gateway and bank-transfer methods on confirmation
// (confirmation presumes the transfer or capture already landed). The second
// return is false when the transition says nothing about payment.
func inferPaymentStatus(method, newStatus string) (string, bool) {
	switch method {
	case models.PaymentMethodCOD:
		if newStatus == models.OrderStatusDelivered {
			return models.PaymentStatusPaid, true
		}
	case models.PaymentMethodMoMo, models.PaymentMethodPayPal, models.PaymentMethodBankTransfer:
		if newStatus == models.OrderStatusConfirmed {
			return models.PaymentStatusPaid, true
		}
	}
	return "", false
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle statuses. Completed, cancelled and returned are terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusShipping  = "shipping"
	OrderStatusDelivered = "delivered"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD          = "cod"
	PaymentMethodMoMo         = "momo"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPayPal       = "paypal"
)

// Settlement state carried on the order itself.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// OrderItem is a line snapshot taken at checkout. Price is the catalog price
// at purchase time; flash-sale deltas live on the order totals, not here.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     float64            `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	FlashSale bool               `bson:"flashSale,omitempty" json:"flashSale,omitempty"`
}

// OrderCustomer captures the shipping contact as entered at checkout.
type OrderCustomer struct {
	Name    string `bson:"name" json:"name"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
	Note    string `bson:"note,omitempty" json:"note,omitempty"`
}

// Order defines the persisted order document.
type Order struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderNumber       string              `bson:"orderNumber" json:"orderNumber"`
	UserID            *primitive.ObjectID `bson:"userId" json:"userId"`
	Customer          OrderCustomer       `bson:"customer" json:"customer"`
	Items             []OrderItem         `bson:"items" json:"items"`
	Subtotal          float64             `bson:"subtotal" json:"subtotal"`
	DeliveryFee       float64             `bson:"deliveryFee" json:"deliveryFee"`
	ServiceFee        float64             `bson:"serviceFee" json:"serviceFee"`
	VoucherDiscount   float64             `bson:"voucherDiscount" json:"voucherDiscount"`
	VoucherCode       string              `bson:"voucherCode,omitempty" json:"voucherCode,omitempty"`
	FlashSaleDiscount float64             `bson:"flashSaleDiscount" json:"flashSaleDiscount"`
	Total             float64             `bson:"total" json:"total"`
	Status            string              `bson:"status" json:"status"`
	PaymentMethod     string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus     string              `bson:"paymentStatus" json:"paymentStatus"`
	DeliveredAt       *time.Time          `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsOfflinePayment reports whether the method settles outside a gateway
// round-trip (order-time notification instead of callback-time).
func IsOfflinePayment(method string) bool {
	return method == PaymentMethodCOD || method == PaymentMethodBankTransfer
}

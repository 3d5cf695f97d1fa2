package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment transaction record states. COD and bank transfer records start
// pending and are completed by an admin; gateway records are written only
// after the gateway confirms.
const (
	PaymentRecordPending   = "pending"
	PaymentRecordCompleted = "completed"
	PaymentRecordFailed    = "failed"
	PaymentRecordRefunded  = "refunded"
)

// Payment is one transaction attempt against an order.
type Payment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID         primitive.ObjectID `bson:"orderId" json:"orderId"`
	Method          string             `bson:"method" json:"method"`
	Amount          float64            `bson:"amount" json:"amount"`
	Status          string             `bson:"status" json:"status"`
	TransactionID   string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	GatewayResponse string             `bson:"gatewayResponse,omitempty" json:"gatewayResponse,omitempty"`
	AdminNote       string             `bson:"adminNote,omitempty" json:"adminNote,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

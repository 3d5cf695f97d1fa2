package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationOrder     = "order"
	NotificationPayment   = "payment"
	NotificationPromotion = "promotion"
	NotificationSystem    = "system"
)

// Notification is either addressed to one user (UserID set) or global with an
// optional target-role filter. Expired notifications are filtered at read time.
type Notification struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`
	Global     bool                `bson:"global" json:"global"`
	TargetRole string              `bson:"targetRole,omitempty" json:"targetRole,omitempty"`
	Type       string              `bson:"type" json:"type"`
	Title      string              `bson:"title" json:"title"`
	Message    string              `bson:"message" json:"message"`
	Read       bool                `bson:"read" json:"read"`
	ExpiresAt  *time.Time          `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
}

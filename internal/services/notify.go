package services

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"greenmart/internal/models"
)

// Notifier writes notification documents. All sends are best effort:
// failures are logged and swallowed so they never fail the operation that
// triggered them.
type Notifier struct {
	db *mongo.Database
}

func NewNotifier(db *mongo.Database) *Notifier {
	return &Notifier{db: db}
}

// NotifyUser sends a notification addressed to a single user.
func (n *Notifier) NotifyUser(userID primitive.ObjectID, kind, title, message string) {
	doc := models.Notification{
		UserID:    &userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	n.insert(doc)
}

// Broadcast sends a global notification, optionally filtered to one role and
// expiring at the given time.
func (n *Notifier) Broadcast(targetRole, kind, title, message string, expiresAt *time.Time) {
	doc := models.Notification{
		Global:     true,
		TargetRole: targetRole,
		Type:       kind,
		Title:      title,
		Message:    message,
		ExpiresAt:  expiresAt,
		CreatedAt:  time.Now(),
	}
	n.insert(doc)
}

func (n *Notifier) insert(doc models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := n.db.Collection("notifications").InsertOne(ctx, doc); err != nil {
		log.Println("[NOTIFY] [ERROR] notification insert failed:", err)
	}
}

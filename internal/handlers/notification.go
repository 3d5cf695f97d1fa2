package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greenmart/internal/models"
	"greenmart/internal/services"
)

type broadcastRequest struct {
	Type       string     `json:"type" binding:"required"`
	Title      string     `json:"title" binding:"required"`
	Message    string     `json:"message" binding:"required"`
	TargetRole string     `json:"targetRole"`
	UserID     string     `json:"userId"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

// GetMyNotifications returns the caller's own notifications plus unexpired
// global ones matching their role, newest first.
func GetMyNotifications(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/notifications"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)
		role, _ := c.Get("role")

		now := time.Now()
		filter := bson.M{
			"$or": []bson.M{
				{"userId": userID},
				{
					"global": true,
					"$and": []bson.M{
						{"$or": []bson.M{
							{"targetRole": bson.M{"$exists": false}},
							{"targetRole": ""},
							{"targetRole": role},
						}},
						{"$or": []bson.M{
							{"expiresAt": bson.M{"$exists": false}},
							{"expiresAt": nil},
							{"expiresAt": bson.M{"$gt": now}},
						}},
					},
				},
			},
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("notifications").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		notifications := make([]models.Notification, 0)
		if err := cursor.All(ctx, &notifications); err != nil {
			respondInternalError(c, route, err)
			return
		}

		unread := 0
		for _, n := range notifications {
			if !n.Read {
				unread++
			}
		}

		respondOK(c, gin.H{"notifications": notifications, "unreadCount": unread}, "")
	}
}

// MarkNotificationRead flips read on one of the caller's own notifications.
// Global notifications carry no per-user read state and are left alone.
func MarkNotificationRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/notifications/:id/read"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notifications").UpdateOne(ctx,
			bson.M{"_id": notificationID, "userId": userID},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "notification not found")
			return
		}

		respondOK(c, nil, "marked read")
	}
}

func MarkAllNotificationsRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/notifications/read-all"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("notifications").UpdateMany(ctx,
			bson.M{"userId": userID, "read": false},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, gin.H{"updated": res.ModifiedCount}, "all marked read")
	}
}

func DeleteNotification(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/notifications/:id"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("notifications").DeleteOne(ctx,
			bson.M{"_id": notificationID, "userId": userID})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "notification not found")
			return
		}

		respondOK(c, nil, "notification deleted")
	}
}

// CreateNotification is the admin entry point: userId set sends to one user,
// otherwise it becomes a global broadcast with an optional role filter.
func CreateNotification(db *mongo.Database, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/notifications"
		defer handlePanic(c, route)

		var req broadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		switch req.Type {
		case models.NotificationOrder, models.NotificationPayment,
			models.NotificationPromotion, models.NotificationSystem:
		default:
			respondError(c, http.StatusBadRequest, route, "invalid notification type")
			return
		}

		if raw := strings.TrimSpace(req.UserID); raw != "" {
			targetID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid userId")
				return
			}
			notifier.NotifyUser(targetID, req.Type, req.Title, req.Message)
			respondCreated(c, nil, "notification sent")
			return
		}

		notifier.Broadcast(strings.TrimSpace(req.TargetRole), req.Type, req.Title, req.Message, req.ExpiresAt)
		respondCreated(c, nil, "broadcast sent")
	}
}

func GetAllNotifications(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/notifications"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("notifications").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		cursor, err := db.Collection("notifications").Find(ctx, bson.M{},
			options.Find().
				SetSkip((page-1)*limit).
				SetLimit(limit).
				SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		notifications := make([]models.Notification, 0)
		if err := cursor.All(ctx, &notifications); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, gin.H{
			"notifications": notifications,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		}, "")
	}
}

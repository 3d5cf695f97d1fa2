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
)

type commentRequest struct {
	Content  string `json:"content" binding:"required,min=1,max=2000"`
	ParentID string `json:"parentId"`
}

func GetProductComments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id/comments"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("comments").Find(ctx,
			bson.M{"productId": productID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		comments := make([]models.Comment, 0)
		if err := cursor.All(ctx, &comments); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, comments, "")
	}
}

func CreateComment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/comments"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req commentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{
			"_id":       productID,
			"isDeleted": bson.M{"$ne": true},
		})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if count == 0 {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}

		var parentID *primitive.ObjectID
		if raw := strings.TrimSpace(req.ParentID); raw != "" {
			pid, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid parentId")
				return
			}
			parentCount, err := db.Collection("comments").CountDocuments(ctx, bson.M{
				"_id":       pid,
				"productId": productID,
			})
			if err != nil {
				respondInternalError(c, route, err)
				return
			}
			if parentCount == 0 {
				respondError(c, http.StatusBadRequest, route, "parent comment not found")
				return
			}
			parentID = &pid
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondInternalError(c, route, err)
			return
		}

		now := time.Now()
		comment := models.Comment{
			ProductID: productID,
			UserID:    userID,
			UserName:  user.Name,
			Content:   strings.TrimSpace(req.Content),
			ParentID:  parentID,
			CreatedAt: now,
			UpdatedAt: now,
		}

		res, err := db.Collection("comments").InsertOne(ctx, comment)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		comment.ID, _ = res.InsertedID.(primitive.ObjectID)

		respondCreated(c, comment, "comment posted")
	}
}

func UpdateComment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/comments/:id"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req commentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var comment models.Comment
		err = db.Collection("comments").FindOneAndUpdate(ctx,
			bson.M{"_id": commentID, "userId": userID},
			bson.M{"$set": bson.M{
				"content":   strings.TrimSpace(req.Content),
				"updatedAt": time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&comment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "comment not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, comment, "comment updated")
	}
}

// DeleteComment removes the caller's own comment; admins can remove any.
func DeleteComment(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/comments/:id"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)
		role, _ := c.Get("role")

		commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		filter := bson.M{"_id": commentID}
		if role != models.RoleAdmin && role != models.RoleStaff {
			filter["userId"] = userID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("comments").DeleteOne(ctx, filter)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "comment not found")
			return
		}

		// Replies to a removed comment stay, parent link dangling. Clients
		// render them as top-level.
		respondOK(c, nil, "comment deleted")
	}
}

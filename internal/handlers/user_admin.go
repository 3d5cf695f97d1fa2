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

type updateUserRequest struct {
	Role   string `json:"role"`
	Status string `json:"status"`
}

func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if role := strings.TrimSpace(c.Query("role")); role != "" {
			filter["role"] = role
		}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"email": bson.M{"$regex": search, "$options": "i"}},
				{"phone": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("users").CountDocuments(ctx, filter)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		cursor, err := db.Collection("users").Find(ctx, filter,
			options.Find().
				SetSkip((page-1)*limit).
				SetLimit(limit).
				SetSort(bson.D{{Key: "createdAt", Value: -1}}).
				SetProjection(bson.M{"passwordHash": 0}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, gin.H{
			"users": users,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		}, "")
	}
}

// UpdateUser changes role or status. The caller cannot demote or suspend
// themselves, which keeps at least one working admin account.
func UpdateUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/users/:id"
		defer handlePanic(c, route)

		callerID := c.MustGet("userId").(primitive.ObjectID)

		targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{"updatedAt": time.Now()}

		if role := strings.TrimSpace(req.Role); role != "" {
			switch role {
			case models.RoleAdmin, models.RoleStaff, models.RoleUser:
				set["role"] = role
			default:
				respondError(c, http.StatusBadRequest, route, "invalid role")
				return
			}
		}
		if status := strings.TrimSpace(req.Status); status != "" {
			switch status {
			case models.UserStatusActive, models.UserStatusInactive, models.UserStatusSuspended:
				set["status"] = status
			default:
				respondError(c, http.StatusBadRequest, route, "invalid status")
				return
			}
		}
		if len(set) == 1 {
			respondError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		if targetID == callerID {
			respondError(c, http.StatusBadRequest, route, "cannot change your own role or status")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		err = db.Collection("users").FindOneAndUpdate(ctx,
			bson.M{"_id": targetID},
			bson.M{"$set": set},
			options.FindOneAndUpdate().
				SetReturnDocument(options.After).
				SetProjection(bson.M{"passwordHash": 0}),
		).Decode(&user)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "user not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, user, "user updated")
	}
}

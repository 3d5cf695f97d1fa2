package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greenmart/internal/models"
)

type ratingRequest struct {
	Stars  int    `json:"stars" binding:"required,min=1,max=5"`
	Review string `json:"review"`
}

func GetProductRatings(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id/ratings"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("ratings").Find(ctx,
			bson.M{"productId": productID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		ratings := make([]models.Rating, 0)
		if err := cursor.All(ctx, &ratings); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, ratings, "")
	}
}

// UpsertRating creates or replaces the caller's rating for a product. One
// rating per user per product, enforced by the unique index.
func UpsertRating(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/ratings"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req ratingRequest
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

		now := time.Now()
		var rating models.Rating
		err = db.Collection("ratings").FindOneAndUpdate(ctx,
			bson.M{"productId": productID, "userId": userID},
			bson.M{
				"$set": bson.M{
					"stars":     req.Stars,
					"review":    req.Review,
					"updatedAt": now,
				},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&rating)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		if err := recomputeProductRating(ctx, db, productID); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, rating, "rating saved")
	}
}

func DeleteRating(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/products/:id/ratings"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("ratings").DeleteOne(ctx, bson.M{
			"productId": productID,
			"userId":    userID,
		})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "rating not found")
			return
		}

		if err := recomputeProductRating(ctx, db, productID); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, nil, "rating removed")
	}
}

// recomputeProductRating reloads every rating for the product and rewrites
// the denormalized summary from scratch. A full scan per write keeps the
// aggregate exact regardless of past drift.
func recomputeProductRating(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) error {
	cursor, err := db.Collection("ratings").Find(ctx, bson.M{"productId": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var summary models.RatingSummary
	sum := 0
	for cursor.Next(ctx) {
		var r models.Rating
		if err := cursor.Decode(&r); err != nil {
			return err
		}
		if r.Stars < 1 || r.Stars > 5 {
			continue
		}
		summary.Histogram[r.Stars-1]++
		summary.Total++
		sum += r.Stars
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	summary.Average = roundAverage(sum, summary.Total)

	_, err = db.Collection("products").UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"rating": summary, "updatedAt": time.Now()}},
	)
	return err
}

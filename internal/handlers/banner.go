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

type bannerRequest struct {
	Title    string     `json:"title" binding:"required"`
	ImageURL string     `json:"imageUrl" binding:"required"`
	LinkURL  string     `json:"linkUrl"`
	Position int        `json:"position"`
	StartAt  *time.Time `json:"startAt"`
	EndAt    *time.Time `json:"endAt"`
	IsActive *bool      `json:"isActive"`
}

// GetBanners lists active banners currently inside their display window.
func GetBanners(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/banners"
		defer handlePanic(c, route)

		now := time.Now()
		filter := bson.M{
			"isActive": true,
			"$and": []bson.M{
				{"$or": []bson.M{{"startAt": nil}, {"startAt": bson.M{"$lte": now}}}},
				{"$or": []bson.M{{"endAt": nil}, {"endAt": bson.M{"$gte": now}}}},
			},
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("banners").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "position", Value: 1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		banners := make([]models.Banner, 0)
		if err := cursor.All(ctx, &banners); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, banners, "")
	}
}

func CreateBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/banners"
		defer handlePanic(c, route)

		var req bannerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		banner := models.Banner{
			Title:     strings.TrimSpace(req.Title),
			ImageURL:  strings.TrimSpace(req.ImageURL),
			LinkURL:   strings.TrimSpace(req.LinkURL),
			Position:  req.Position,
			StartAt:   req.StartAt,
			EndAt:     req.EndAt,
			IsActive:  isActive,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("banners").InsertOne(ctx, banner)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		banner.ID, _ = res.InsertedID.(primitive.ObjectID)
		respondCreated(c, banner, "banner created")
	}
}

func UpdateBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/banners/:id"
		defer handlePanic(c, route)

		bannerID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req bannerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{
			"title":    strings.TrimSpace(req.Title),
			"imageUrl": strings.TrimSpace(req.ImageURL),
			"linkUrl":  strings.TrimSpace(req.LinkURL),
			"position": req.Position,
			"startAt":  req.StartAt,
			"endAt":    req.EndAt,
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("banners").UpdateByID(ctx, bannerID, bson.M{"$set": set})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "banner not found")
			return
		}

		respondOK(c, nil, "banner updated")
	}
}

func DeleteBanner(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/banners/:id"
		defer handlePanic(c, route)

		bannerID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("banners").DeleteOne(ctx, bson.M{"_id": bannerID})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "banner not found")
			return
		}

		respondOK(c, nil, "banner deleted")
	}
}

package handlers

import (
	"context"
	"log"
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

type productCreateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Unit        string  `json:"unit"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	ImageURL    string  `json:"imageUrl"`
	Stock       *int    `json:"stock" binding:"required"`
	IsActive    *bool   `json:"isActive"`
	IsFeatured  *bool   `json:"isFeatured"`
}

type productUpdateRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Unit        *string  `json:"unit"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	ImageURL    *string  `json:"imageUrl"`
	Stock       *int     `json:"stock"`
	IsActive    *bool    `json:"isActive"`
	IsFeatured  *bool    `json:"isFeatured"`
}

// GetAllProducts is the admin listing: includes inactive, paginates always.
func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{"isDeleted": bson.M{"$ne": true}}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"brand": bson.M{"$regex": search, "$options": "i"}},
				{"description": bson.M{"$regex": search, "$options": "i"}},
			}
		}
		if isActive := strings.TrimSpace(c.Query("isActive")); isActive != "" {
			filter["isActive"] = strings.EqualFold(isActive, "true")
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, gin.H{
			"products": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		}, "")
	}
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if *req.Stock < 0 {
			respondError(c, http.StatusBadRequest, route, "stock must be zero or greater")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		category := strings.TrimSpace(req.Category)
		if err := db.Collection("categories").FindOne(ctx, bson.M{"name": category}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, "unknown category")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}
		isFeatured := false
		if req.IsFeatured != nil {
			isFeatured = *req.IsFeatured
		}

		now := time.Now()
		product := models.Product{
			Name:        strings.TrimSpace(req.Name),
			Price:       req.Price,
			Unit:        strings.TrimSpace(req.Unit),
			Category:    category,
			Description: strings.TrimSpace(req.Description),
			Brand:       strings.TrimSpace(req.Brand),
			ImageURL:    strings.TrimSpace(req.ImageURL),
			Stock:       *req.Stock,
			IsActive:    isActive,
			IsFeatured:  isFeatured,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		product.ID, _ = res.InsertedID.(primitive.ObjectID)
		product.InStock = product.Stock > 0
		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		respondCreated(c, product, "product created")
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Name != nil {
			set["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				respondError(c, http.StatusBadRequest, route, "invalid price")
				return
			}
			set["price"] = *req.Price
		}
		if req.Unit != nil {
			set["unit"] = strings.TrimSpace(*req.Unit)
		}
		if req.Category != nil {
			set["category"] = strings.TrimSpace(*req.Category)
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Brand != nil {
			set["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.ImageURL != nil {
			set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondError(c, http.StatusBadRequest, route, "stock must be zero or greater")
				return
			}
			set["stock"] = *req.Stock
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}
		if req.IsFeatured != nil {
			set["isFeatured"] = *req.IsFeatured
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res := db.Collection("products").FindOneAndUpdate(
			ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)

		var product models.Product
		if err := res.Decode(&product); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "product not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		product.InStock = product.Stock > 0
		respondOK(c, product, "product updated")
	}
}

// DeleteProduct soft-deletes so existing order lines keep resolving.
func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"_id": productID, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{
				"isDeleted": true,
				"isActive":  false,
				"deletedAt": now,
				"updatedAt": now,
			}},
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}

		log.Println("[PRODUCT] [INFO] product deleted:", productID.Hex())
		respondOK(c, nil, "product deleted")
	}
}

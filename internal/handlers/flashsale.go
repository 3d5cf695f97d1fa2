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

type flashSaleItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	SalePrice float64 `json:"salePrice" binding:"required,gt=0"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
}

type flashSaleRequest struct {
	Name      string                 `json:"name" binding:"required"`
	StartTime time.Time              `json:"startTime" binding:"required"`
	EndTime   time.Time              `json:"endTime" binding:"required"`
	Items     []flashSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// GetCurrentFlashSales lists sales that are active right now.
func GetCurrentFlashSales(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/flash-sales"
		defer handlePanic(c, route)

		now := time.Now()
		filter := bson.M{
			"status":    models.FlashSaleActive,
			"startTime": bson.M{"$lte": now},
			"endTime":   bson.M{"$gte": now},
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("flashsales").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "endTime", Value: 1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		sales := make([]models.FlashSale, 0)
		if err := cursor.All(ctx, &sales); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, sales, "")
	}
}

func GetAllFlashSales(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/flash-sales"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("flashsales").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		sales := make([]models.FlashSale, 0)
		if err := cursor.All(ctx, &sales); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, sales, "")
	}
}

func CreateFlashSale(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/flash-sales"
		defer handlePanic(c, route)

		var req flashSaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !req.EndTime.After(req.StartTime) {
			respondError(c, http.StatusBadRequest, route, "endTime must be after startTime")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		items := make([]models.FlashSaleItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(item.ProductID)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid productId: "+item.ProductID)
				return
			}

			var product models.Product
			err = db.Collection("products").FindOne(ctx, bson.M{
				"_id":       productID,
				"isDeleted": bson.M{"$ne": true},
			}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusBadRequest, route, "product not found: "+item.ProductID)
				return
			}
			if err != nil {
				respondInternalError(c, route, err)
				return
			}

			if item.SalePrice >= product.Price {
				respondError(c, http.StatusBadRequest, route, "salePrice must be below catalog price for "+product.Name)
				return
			}

			items = append(items, models.FlashSaleItem{
				ProductID: productID,
				SalePrice: item.SalePrice,
				Quantity:  item.Quantity,
			})
		}

		now := time.Now()
		sale := models.FlashSale{
			Name:      req.Name,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Items:     items,
			CreatedAt: now,
			UpdatedAt: now,
		}
		sale.Status = sale.ResolveStatus(now)

		res, err := db.Collection("flashsales").InsertOne(ctx, sale)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		sale.ID, _ = res.InsertedID.(primitive.ObjectID)
		respondCreated(c, sale, "flash sale created")
	}
}

func UpdateFlashSale(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/flash-sales/:id"
		defer handlePanic(c, route)

		saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req flashSaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !req.EndTime.After(req.StartTime) {
			respondError(c, http.StatusBadRequest, route, "endTime must be after startTime")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.FlashSale
		if err := db.Collection("flashsales").FindOne(ctx, bson.M{"_id": saleID}).Decode(&existing); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "flash sale not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		// Carry sold counters over for products that stay in the sale.
		soldByProduct := make(map[primitive.ObjectID]int, len(existing.Items))
		for _, item := range existing.Items {
			soldByProduct[item.ProductID] = item.Sold
		}

		items := make([]models.FlashSaleItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(item.ProductID)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid productId: "+item.ProductID)
				return
			}
			items = append(items, models.FlashSaleItem{
				ProductID: productID,
				SalePrice: item.SalePrice,
				Quantity:  item.Quantity,
				Sold:      soldByProduct[productID],
			})
		}

		now := time.Now()
		updated := models.FlashSale{
			Name:      req.Name,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Items:     items,
		}

		_, err = db.Collection("flashsales").UpdateByID(ctx, saleID, bson.M{
			"$set": bson.M{
				"name":      updated.Name,
				"startTime": updated.StartTime,
				"endTime":   updated.EndTime,
				"status":    updated.ResolveStatus(now),
				"items":     updated.Items,
				"updatedAt": now,
			},
		})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, nil, "flash sale updated")
	}
}

func DeleteFlashSale(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/flash-sales/:id"
		defer handlePanic(c, route)

		saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("flashsales").DeleteOne(ctx, bson.M{"_id": saleID})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "flash sale not found")
			return
		}

		respondOK(c, nil, "flash sale deleted")
	}
}

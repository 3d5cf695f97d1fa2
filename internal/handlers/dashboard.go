package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"greenmart/internal/models"
)

// GetDashboard aggregates the admin landing numbers: revenue over completed
// and delivered orders, order counts by status, low-stock products and the
// best sellers.
func GetDashboard(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		revenue, err := totalRevenue(ctx, db)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		byStatus, err := ordersByStatus(ctx, db)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		topProducts, err := topSellingProducts(ctx, db, 10)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		userCount, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		productCount, err := db.Collection("products").CountDocuments(ctx,
			bson.M{"isDeleted": bson.M{"$ne": true}})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		lowStock, err := db.Collection("products").CountDocuments(ctx, bson.M{
			"isDeleted": bson.M{"$ne": true},
			"isActive":  true,
			"stock":     bson.M{"$lte": 5},
		})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, gin.H{
			"revenue":        revenue,
			"ordersByStatus": byStatus,
			"topProducts":    topProducts,
			"userCount":      userCount,
			"productCount":   productCount,
			"lowStockCount":  lowStock,
		}, "")
	}
}

func totalRevenue(ctx context.Context, db *mongo.Database) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status": bson.M{"$in": []string{
				models.OrderStatusDelivered,
				models.OrderStatusCompleted,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total"},
		}}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func ordersByStatus(ctx context.Context, db *mongo.Database) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	return byStatus, nil
}

type topProduct struct {
	ProductID string  `bson:"_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int64   `bson:"quantity" json:"quantity"`
	Revenue   float64 `bson:"revenue" json:"revenue"`
}

func topSellingProducts(ctx context.Context, db *mongo.Database, limit int) ([]topProduct, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status": bson.M{"$nin": []string{
				models.OrderStatusCancelled,
				models.OrderStatusReturned,
			}},
		}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.productId",
			"name":     bson.M{"$last": "$items.name"},
			"quantity": bson.M{"$sum": "$items.quantity"},
			"revenue": bson.M{"$sum": bson.M{
				"$multiply": bson.A{"$items.price", "$items.quantity"},
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"quantity": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := db.Collection("orders").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]topProduct, 0, limit)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"greenmart/internal/models"
)

// StartFlashSaleSweeper flips flash-sale statuses between scheduled, active
// and ended on a one-minute tick. Runs independently of request handling.
func StartFlashSaleSweeper(db *mongo.Database) *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("* * * * *", func() { sweepFlashSales(db) }); err != nil {
		log.Println("[FLASHSALE] [ERROR] sweeper schedule failed:", err)
		return c
	}
	c.Start()
	log.Println("[FLASHSALE] [INFO] status sweeper started")
	return c
}

func sweepFlashSales(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	updates := []struct {
		filter bson.M
		status string
	}{
		{
			filter: bson.M{
				"status":    bson.M{"$ne": models.FlashSaleScheduled},
				"startTime": bson.M{"$gt": now},
			},
			status: models.FlashSaleScheduled,
		},
		{
			filter: bson.M{
				"status":    bson.M{"$ne": models.FlashSaleActive},
				"startTime": bson.M{"$lte": now},
				"endTime":   bson.M{"$gte": now},
			},
			status: models.FlashSaleActive,
		},
		{
			filter: bson.M{
				"status":  bson.M{"$ne": models.FlashSaleEnded},
				"endTime": bson.M{"$lt": now},
			},
			status: models.FlashSaleEnded,
		},
	}

	for _, u := range updates {
		res, err := db.Collection("flashsales").UpdateMany(ctx, u.filter, bson.M{
			"$set": bson.M{"status": u.status, "updatedAt": now},
		})
		if err != nil {
			log.Println("[FLASHSALE] [ERROR] sweep update failed:", err)
			continue
		}
		if res.ModifiedCount > 0 {
			log.Printf("[FLASHSALE] [INFO] sweep moved %d sales to %s", res.ModifiedCount, u.status)
		}
	}
}

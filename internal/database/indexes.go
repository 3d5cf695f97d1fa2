package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := db.Collection("users").Indexes().CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
	}
	return err
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_index"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}},
			Options: options.Index().SetName("name_text"),
		},
	}

	log.Println("EnsureProductIndexes: creating category and name indexes")
	_, err := db.Collection("products").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureProductIndexes: index error:", err)
	}
	return err
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().
				SetName("orderNumber_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating orderNumber, userId and status indexes")
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: index error:", err)
	}
	return err
}

func EnsureVoucherIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	log.Println("EnsureVoucherIndexes: creating code_unique index")
	_, err := db.Collection("vouchers").Indexes().CreateOne(ctx, codeIndex)
	if err != nil {
		log.Println("EnsureVoucherIndexes: code index error:", err)
	}
	return err
}

func EnsureNotificationIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}},
		Options: options.Index().SetName("userId_read_index"),
	}

	log.Println("EnsureNotificationIndexes: creating userId_read index")
	_, err := db.Collection("notifications").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		log.Println("EnsureNotificationIndexes: index error:", err)
	}
	return err
}

func EnsureRatingIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	productUserIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "productId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("productId_userId_unique").
			SetUnique(true),
	}

	log.Println("EnsureRatingIndexes: creating productId_userId index")
	_, err := db.Collection("ratings").Indexes().CreateOne(ctx, productUserIndex)
	if err != nil {
		log.Println("EnsureRatingIndexes: index error:", err)
	}
	return err
}

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := indexContext()
	defer cancel()

	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_unique").
			SetUnique(true),
	}

	log.Println("EnsureCartIndexes: creating userId_unique index")
	_, err := db.Collection("carts").Indexes().CreateOne(ctx, userIndex)
	if err != nil {
		log.Println("EnsureCartIndexes: index error:", err)
	}
	return err
}

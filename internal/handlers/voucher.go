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

type voucherRequest struct {
	Code        string    `json:"code" binding:"required"`
	Description string    `json:"description"`
	Type        string    `json:"type" binding:"required,oneof=percent fixed"`
	Value       float64   `json:"value" binding:"required,gt=0"`
	MaxDiscount float64   `json:"maxDiscount"`
	MinOrder    float64   `json:"minOrder"`
	UsageLimit  int       `json:"usageLimit"`
	StartAt     time.Time `json:"startAt" binding:"required"`
	ExpiresAt   time.Time `json:"expiresAt" binding:"required"`
	IsActive    *bool     `json:"isActive"`
}

type collectVoucherRequest struct {
	Code string `json:"code" binding:"required"`
}

// GetVouchers lists vouchers currently collectable.
func GetVouchers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/vouchers"
		defer handlePanic(c, route)

		now := time.Now()
		filter := bson.M{
			"isActive":  true,
			"startAt":   bson.M{"$lte": now},
			"expiresAt": bson.M{"$gte": now},
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("vouchers").Find(ctx, filter,
			options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		vouchers := make([]models.Voucher, 0)
		if err := cursor.All(ctx, &vouchers); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, vouchers, "")
	}
}

// CollectVoucher adds one redemption of a voucher to the user's holdings.
func CollectVoucher(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/vouchers/collect"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req collectVoucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var voucher models.Voucher
		if err := db.Collection("vouchers").FindOne(ctx, bson.M{"code": code}).Decode(&voucher); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "voucher not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if !voucher.Usable(time.Now()) {
			respondError(c, http.StatusBadRequest, route, "voucher is not collectable")
			return
		}

		field := "vouchers." + voucher.ID.Hex()
		_, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$inc": bson.M{field: 1},
			"$set": bson.M{"updatedAt": time.Now()},
		})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[VOUCHER] [INFO] voucher collected:", code)
		respondOK(c, voucher, "voucher collected")
	}
}

// redeemVoucher consumes one holding and bumps the global counter. The
// holdings decrement is conditional on a positive count so concurrent
// checkouts cannot drive it negative; the key is unset at zero.
func redeemVoucher(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, voucher models.Voucher) error {
	field := "vouchers." + voucher.ID.Hex()

	res, err := db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID, field: bson.M{"$gte": 1}},
		bson.M{"$inc": bson.M{field: -1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrVoucherNotHeld
	}

	// Remove the key when it hit zero so holdings never hold dead entries.
	_, _ = db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID, field: bson.M{"$lte": 0}},
		bson.M{"$unset": bson.M{field: ""}},
	)

	_, err = db.Collection("vouchers").UpdateByID(ctx, voucher.ID, bson.M{
		"$inc": bson.M{"usedCount": 1},
	})
	return err
}

func GetAllVouchers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/vouchers"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("vouchers").Find(ctx, bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		vouchers := make([]models.Voucher, 0)
		if err := cursor.All(ctx, &vouchers); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, vouchers, "")
	}
}

func CreateVoucher(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/vouchers"
		defer handlePanic(c, route)

		var req voucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.Type == models.VoucherTypePercent && req.Value > 100 {
			respondError(c, http.StatusBadRequest, route, "percent value cannot exceed 100")
			return
		}
		if !req.ExpiresAt.After(req.StartAt) {
			respondError(c, http.StatusBadRequest, route, "expiresAt must be after startAt")
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("vouchers").CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if count > 0 {
			respondError(c, http.StatusConflict, route, "voucher code already exists")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		voucher := models.Voucher{
			Code:        code,
			Description: strings.TrimSpace(req.Description),
			Type:        req.Type,
			Value:       req.Value,
			MaxDiscount: req.MaxDiscount,
			MinOrder:    req.MinOrder,
			UsageLimit:  req.UsageLimit,
			StartAt:     req.StartAt,
			ExpiresAt:   req.ExpiresAt,
			IsActive:    isActive,
			CreatedAt:   time.Now(),
		}

		res, err := db.Collection("vouchers").InsertOne(ctx, voucher)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		voucher.ID, _ = res.InsertedID.(primitive.ObjectID)
		respondCreated(c, voucher, "voucher created")
	}
}

func UpdateVoucher(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/vouchers/:id"
		defer handlePanic(c, route)

		voucherID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req voucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		set := bson.M{
			"code":        strings.ToUpper(strings.TrimSpace(req.Code)),
			"description": strings.TrimSpace(req.Description),
			"type":        req.Type,
			"value":       req.Value,
			"maxDiscount": req.MaxDiscount,
			"minOrder":    req.MinOrder,
			"usageLimit":  req.UsageLimit,
			"startAt":     req.StartAt,
			"expiresAt":   req.ExpiresAt,
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("vouchers").UpdateByID(ctx, voucherID, bson.M{"$set": set})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusNotFound, route, "voucher not found")
			return
		}

		respondOK(c, nil, "voucher updated")
	}
}

func DeleteVoucher(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/vouchers/:id"
		defer handlePanic(c, route)

		voucherID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("vouchers").DeleteOne(ctx, bson.M{"_id": voucherID})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "voucher not found")
			return
		}

		respondOK(c, nil, "voucher deleted")
	}
}

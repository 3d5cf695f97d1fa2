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

	"greenmart/internal/models"
)

type cartAddRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	FlashSaleID string `json:"flashSaleId"`
}

type cartQuantityRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	FlashSaleID string `json:"flashSaleId"`
}

// loadCart fetches the user's cart, creating an empty one on first use.
func loadCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		now := time.Now()
		cart = models.Cart{
			UserID:    userID,
			Items:     []models.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		res, insertErr := db.Collection("carts").InsertOne(ctx, cart)
		if insertErr != nil {
			return nil, insertErr
		}
		cart.ID, _ = res.InsertedID.(primitive.ObjectID)
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// saveCart recomputes totals and writes the document. All cart mutations go
// through here so the stored totals can never drift from the items.
func saveCart(ctx context.Context, db *mongo.Database, cart *models.Cart) error {
	cart.Recalculate()
	cart.UpdatedAt = time.Now()
	_, err := db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
		"$set": bson.M{
			"items":      cart.Items,
			"totalItems": cart.TotalItems,
			"totalPrice": cart.TotalPrice,
			"updatedAt":  cart.UpdatedAt,
		},
	})
	return err
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, cart, "")
	}
}

// flashSaleCapExceeded decides whether an add would overdraw a sale item:
// the requested quantity plus whatever is already carted for this sale must
// fit the unsold allocation.
func flashSaleCapExceeded(requested, inCart int, item models.FlashSaleItem) bool {
	return requested+inCart > item.Remaining()
}

func AddCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/items"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req cartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isActive":  bson.M{"$ne": false},
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			respondError(c, http.StatusNotFound, route, "product not found")
			return
		}
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		price := product.Price
		var flashSaleID *primitive.ObjectID

		if raw := strings.TrimSpace(req.FlashSaleID); raw != "" {
			saleID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid flashSaleId")
				return
			}

			var sale models.FlashSale
			if err := db.Collection("flashsales").FindOne(ctx, bson.M{"_id": saleID}).Decode(&sale); err != nil {
				respondError(c, http.StatusNotFound, route, "flash sale not found")
				return
			}

			now := time.Now()
			if !sale.Running(now) {
				respondError(c, http.StatusBadRequest, route, "flash sale is not active")
				return
			}

			item := sale.Item(productID)
			if item == nil {
				respondError(c, http.StatusBadRequest, route, "product is not in this flash sale")
				return
			}

			inCart := 0
			if idx := cart.FindItem(productID, &saleID); idx >= 0 {
				inCart = cart.Items[idx].Quantity
			}
			if flashSaleCapExceeded(req.Quantity, inCart, *item) {
				respondError(c, http.StatusBadRequest, route, "flash sale quantity exceeded")
				return
			}

			price = item.SalePrice
			flashSaleID = &saleID
		}

		if product.Stock < req.Quantity {
			respondError(c, http.StatusBadRequest, route, "insufficient stock")
			return
		}

		if idx := cart.FindItem(productID, flashSaleID); idx >= 0 {
			cart.Items[idx].Quantity += req.Quantity
			cart.Items[idx].Price = price
		} else {
			cart.Items = append(cart.Items, models.CartItem{
				ProductID:   productID,
				Name:        product.Name,
				Price:       price,
				Quantity:    req.Quantity,
				Unit:        product.Unit,
				ImageURL:    product.ImageURL,
				FlashSaleID: flashSaleID,
			})
		}

		if err := saveCart(ctx, db, cart); err != nil {
			respondInternalError(c, route, err)
			return
		}

		log.Println("[CART] [INFO] item added:", productID.Hex())
		respondOK(c, cart, "item added")
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/items"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req cartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		var flashSaleID *primitive.ObjectID
		if raw := strings.TrimSpace(req.FlashSaleID); raw != "" {
			saleID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid flashSaleId")
				return
			}
			flashSaleID = &saleID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		idx := cart.FindItem(productID, flashSaleID)
		if idx < 0 {
			respondError(c, http.StatusNotFound, route, "item not in cart")
			return
		}

		if flashSaleID != nil {
			var sale models.FlashSale
			if err := db.Collection("flashsales").FindOne(ctx, bson.M{"_id": *flashSaleID}).Decode(&sale); err != nil {
				respondError(c, http.StatusNotFound, route, "flash sale not found")
				return
			}
			item := sale.Item(productID)
			if item == nil || !sale.Running(time.Now()) {
				respondError(c, http.StatusBadRequest, route, "flash sale is not active")
				return
			}
			if req.Quantity > item.Remaining() {
				respondError(c, http.StatusBadRequest, route, "flash sale quantity exceeded")
				return
			}
		}

		cart.Items[idx].Quantity = req.Quantity

		if err := saveCart(ctx, db, cart); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, cart, "quantity updated")
	}
}

func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/items/:productId"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid productId")
			return
		}

		var flashSaleID *primitive.ObjectID
		if raw := strings.TrimSpace(c.Query("flashSaleId")); raw != "" {
			saleID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondError(c, http.StatusBadRequest, route, "invalid flashSaleId")
				return
			}
			flashSaleID = &saleID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		idx := cart.FindItem(productID, flashSaleID)
		if idx < 0 {
			respondError(c, http.StatusNotFound, route, "item not in cart")
			return
		}

		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		if err := saveCart(ctx, db, cart); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, cart, "item removed")
	}
}

func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		cart.Items = []models.CartItem{}

		if err := saveCart(ctx, db, cart); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, cart, "cart cleared")
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greenmart/internal/config"
	"greenmart/internal/models"
	"greenmart/internal/services"
)

type checkoutItemRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
	FlashSaleID string `json:"flashSaleId"`
}

type checkoutCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
	Note    string `json:"note"`
}

type checkoutRequest struct {
	Items         []checkoutItemRequest   `json:"items" binding:"required,min=1,dive"`
	Customer      checkoutCustomerRequest `json:"customer" binding:"required"`
	PaymentMethod string                  `json:"paymentMethod" binding:"required"`
	VoucherCode   string                  `json:"voucherCode"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type checkoutRejectedError struct {
	Reason string
}

func (e checkoutRejectedError) Error() string {
	return e.Reason
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("GM-%s-%s", time.Now().Format("20060102"), suffix)
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.PaymentMethodCOD, models.PaymentMethodMoMo,
		models.PaymentMethodBankTransfer, models.PaymentMethodPayPal:
		return true
	}
	return false
}

// CreateOrder is the checkout entry point. Stock decrements, flash-sale sold
// increments and voucher redemption all run inside one session transaction
// with conditional filters, so a failing later item rolls back the earlier
// writes and concurrent buyers cannot oversell.
func CreateOrder(db *mongo.Database, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !validPaymentMethod(req.PaymentMethod) {
			respondError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer session.EndSession(ctx)

		var order models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			return nil, buildAndPersistOrder(sessCtx, db, userID, req, &order)
		})
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				log.Printf("[%s] rejected: insufficient stock for %s", route, stockErr.ProductID.Hex())
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success":   false,
					"message":   "insufficient stock",
					"productId": stockErr.ProductID.Hex(),
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			var notFoundErr productNotFoundError
			if errors.As(err, &notFoundErr) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success":   false,
					"message":   "product not found",
					"productId": notFoundErr.ProductID.Hex(),
				})
				return
			}
			var rejectedErr checkoutRejectedError
			if errors.As(err, &rejectedErr) {
				respondError(c, http.StatusBadRequest, route, rejectedErr.Reason)
				return
			}
			respondInternalError(c, route, err)
			return
		}

		// Offline methods record a pending payment immediately; gateway
		// methods write theirs only once the gateway confirms.
		if models.IsOfflinePayment(order.PaymentMethod) {
			now := time.Now()
			payment := models.Payment{
				OrderID:   order.ID,
				Method:    order.PaymentMethod,
				Amount:    order.Total,
				Status:    models.PaymentRecordPending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := db.Collection("payments").InsertOne(ctx, payment); err != nil {
				log.Println("[ORDER] [ERROR] pending payment insert failed:", err)
			}

			notifier.NotifyUser(userID, models.NotificationOrder,
				"Order placed",
				fmt.Sprintf("Order %s was placed and is awaiting confirmation.", order.OrderNumber))
		}

		clearPurchasedCartLines(ctx, db, userID, req.Items)

		log.Println("[ORDER] [INFO] order created:", order.OrderNumber)
		respondCreated(c, order, "order created")
	}
}

// clearPurchasedCartLines drops the bought lines from the server cart. Best
// effort: a stale cart is an annoyance, not a checkout failure.
func clearPurchasedCartLines(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, items []checkoutItemRequest) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Println("[ORDER] [ERROR] cart load after checkout failed:", err)
		}
		return
	}

	for _, item := range items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
		if err != nil {
			continue
		}
		var saleID *primitive.ObjectID
		if raw := strings.TrimSpace(item.FlashSaleID); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				continue
			}
			saleID = &id
		}
		if idx := cart.FindItem(productID, saleID); idx >= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		}
	}
	cart.Recalculate()

	_, err = db.Collection("carts").UpdateOne(ctx,
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{
			"items":      cart.Items,
			"totalItems": cart.TotalItems,
			"totalPrice": cart.TotalPrice,
			"updatedAt":  time.Now(),
		}},
	)
	if err != nil {
		log.Println("[ORDER] [ERROR] cart cleanup after checkout failed:", err)
	}
}

// buildAndPersistOrder runs the entire checkout inside the caller's session.
func buildAndPersistOrder(ctx mongo.SessionContext, db *mongo.Database, userID primitive.ObjectID, req checkoutRequest, out *models.Order) error {
	now := time.Now()
	pricing := checkoutPricing{
		ServiceFee: config.AppEnv.ServiceFee,
	}
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, reqItem := range req.Items {
		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(reqItem.ProductID))
		if err != nil {
			return checkoutRejectedError{Reason: "invalid productId"}
		}

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":       productID,
			"isActive":  bson.M{"$ne": false},
			"isDeleted": bson.M{"$ne": true},
		}).Decode(&product)
		if err == mongo.ErrNoDocuments {
			return productNotFoundError{ProductID: productID}
		}
		if err != nil {
			return err
		}

		if product.Stock < reqItem.Quantity {
			return outOfStockError{
				ProductID: productID,
				Available: product.Stock,
				Requested: reqItem.Quantity,
			}
		}

		isFlashSale := false
		if raw := strings.TrimSpace(reqItem.FlashSaleID); raw != "" {
			saleID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return checkoutRejectedError{Reason: "invalid flashSaleId"}
			}
			discount, err := applyFlashSale(ctx, db, saleID, productID, reqItem.Quantity, product.Price, now)
			if err != nil {
				return err
			}
			pricing.FlashSaleDiscount += discount
			isFlashSale = true
		}

		// Line price is the catalog price; the flash-sale delta is carried
		// on the order totals only.
		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  reqItem.Quantity,
			ImageURL:  product.ImageURL,
			FlashSale: isFlashSale,
		})
		pricing.Subtotal += product.Price * float64(reqItem.Quantity)

		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{
				"_id":       productID,
				"isDeleted": bson.M{"$ne": true},
				"stock":     bson.M{"$gte": reqItem.Quantity},
			},
			bson.M{"$inc": bson.M{"stock": -reqItem.Quantity}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return outOfStockError{
				ProductID: productID,
				Available: product.Stock,
				Requested: reqItem.Quantity,
			}
		}
	}

	voucherCode := strings.ToUpper(strings.TrimSpace(req.VoucherCode))
	if voucherCode != "" {
		var voucher models.Voucher
		err := db.Collection("vouchers").FindOne(ctx, bson.M{"code": voucherCode}).Decode(&voucher)
		if err == mongo.ErrNoDocuments {
			return checkoutRejectedError{Reason: "voucher not found"}
		}
		if err != nil {
			return err
		}
		if !voucher.Usable(now) {
			return checkoutRejectedError{Reason: "voucher is expired or inactive"}
		}
		if pricing.Subtotal < voucher.MinOrder {
			return checkoutRejectedError{Reason: fmt.Sprintf("order must reach %.0f to use this voucher", voucher.MinOrder)}
		}
		if err := redeemVoucher(ctx, db, userID, voucher); err != nil {
			if errors.Is(err, models.ErrVoucherNotHeld) {
				return checkoutRejectedError{Reason: "voucher not held"}
			}
			return err
		}
		pricing.VoucherDiscount = clampVoucherDiscount(
			voucherDiscountFor(voucher, pricing.Subtotal),
			pricing.Subtotal, pricing.FlashSaleDiscount)
	}

	pricing.DeliveryFee = deliveryFeeFor(pricing.Subtotal, config.AppEnv.FreeShipThreshold, config.AppEnv.DeliveryFee)

	order := models.Order{
		OrderNumber: newOrderNumber(),
		UserID:      &userID,
		Customer: models.OrderCustomer{
			Name:    strings.TrimSpace(req.Customer.Name),
			Email:   strings.ToLower(strings.TrimSpace(req.Customer.Email)),
			Phone:   strings.TrimSpace(req.Customer.Phone),
			Address: strings.TrimSpace(req.Customer.Address),
			Note:    strings.TrimSpace(req.Customer.Note),
		},
		Items:             items,
		Subtotal:          pricing.Subtotal,
		DeliveryFee:       pricing.DeliveryFee,
		ServiceFee:        pricing.ServiceFee,
		VoucherDiscount:   pricing.VoucherDiscount,
		VoucherCode:       voucherCode,
		FlashSaleDiscount: pricing.FlashSaleDiscount,
		Total:             pricing.Total(),
		Status:            models.OrderStatusPending,
		PaymentMethod:     req.PaymentMethod,
		PaymentStatus:     models.PaymentStatusUnpaid,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	res, err := db.Collection("orders").InsertOne(ctx, order)
	if err != nil {
		return err
	}
	order.ID, _ = res.InsertedID.(primitive.ObjectID)
	*out = order
	return nil
}

// applyFlashSale validates membership and bumps the sold counter with a
// conditional update so two buyers cannot both take the last units.
func applyFlashSale(ctx context.Context, db *mongo.Database, saleID, productID primitive.ObjectID, quantity int, catalogPrice float64, now time.Time) (float64, error) {
	var sale models.FlashSale
	err := db.Collection("flashsales").FindOne(ctx, bson.M{"_id": saleID}).Decode(&sale)
	if err == mongo.ErrNoDocuments {
		return 0, checkoutRejectedError{Reason: "flash sale not found"}
	}
	if err != nil {
		return 0, err
	}

	if !sale.Running(now) {
		return 0, checkoutRejectedError{Reason: "flash sale is not active"}
	}

	item := sale.Item(productID)
	if item == nil {
		return 0, checkoutRejectedError{Reason: "product is not in this flash sale"}
	}
	if quantity > item.Remaining() {
		return 0, checkoutRejectedError{Reason: "flash sale quantity exceeded"}
	}

	res, err := db.Collection("flashsales").UpdateOne(ctx,
		bson.M{
			"_id": saleID,
			"items": bson.M{"$elemMatch": bson.M{
				"productId": productID,
				"sold":      bson.M{"$lte": item.Quantity - quantity},
			}},
		},
		bson.M{"$inc": bson.M{"items.$.sold": quantity}},
	)
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, checkoutRejectedError{Reason: "flash sale quantity exceeded"}
	}

	return flashSaleDiscountFor(catalogPrice, item.SalePrice, quantity), nil
}

func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(ctx,
			bson.M{"userId": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, orders, "")
	}
}

// GetOrder returns one order to its owner, or to admin/staff.
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)
		role, _ := c.Get("role")

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		isStaff := role == models.RoleAdmin || role == models.RoleStaff
		if !isStaff && (order.UserID == nil || *order.UserID != userID) {
			respondError(c, http.StatusForbidden, route, "forbidden")
			return
		}

		respondOK(c, order, "")
	}
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}
		if method := strings.TrimSpace(c.Query("paymentMethod")); method != "" {
			filter["paymentMethod"] = method
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"orderNumber": bson.M{"$regex": search, "$options": "i"}},
				{"customer.name": bson.M{"$regex": search, "$options": "i"}},
				{"customer.phone": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}

		cursor, err := db.Collection("orders").Find(ctx, filter,
			options.Find().
				SetSkip((page-1)*limit).
				SetLimit(limit).
				SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, gin.H{
			"orders": orders,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages(total, limit),
			},
		}, "")
	}
}

// UpdateOrderStatus moves an order along the fixed adjacency list. Illegal
// targets are rejected with no state change. A successful transition stamps
// deliveredAt, infers payment settlement for the method, and fires a
// best-effort notification.
func UpdateOrderStatus(db *mongo.Database, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		target := strings.TrimSpace(req.Status)
		if !canTransition(order.Status, target) {
			err := invalidTransitionError{From: order.Status, To: target}
			respondError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		now := time.Now()
		set := bson.M{"status": target, "updatedAt": now}

		if target == models.OrderStatusDelivered {
			set["deliveredAt"] = now
		}
		if inferred, ok := inferPaymentStatus(order.PaymentMethod, target); ok && order.PaymentStatus == models.PaymentStatusUnpaid {
			set["paymentStatus"] = inferred
		}

		// Guard on the decoded status so a concurrent transition loses
		// instead of double-applying.
		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID, "status": order.Status},
			bson.M{"$set": set},
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if res.MatchedCount == 0 {
			respondError(c, http.StatusConflict, route, "order status changed concurrently")
			return
		}

		if order.UserID != nil {
			notifier.NotifyUser(*order.UserID, models.NotificationOrder,
				"Order "+target,
				fmt.Sprintf("Order %s is now %s.", order.OrderNumber, target))
		}

		log.Printf("[ORDER] [INFO] order %s moved %s -> %s", order.OrderNumber, order.Status, target)
		respondOK(c, gin.H{"status": target}, "status updated")
	}
}

// DeleteOrder is an admin-only hard cleanup; regular cancellation is a
// status transition, not a delete.
func DeleteOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/orders/:id"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": orderID})
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		if result.DeletedCount == 0 {
			respondError(c, http.StatusNotFound, route, "order not found")
			return
		}

		respondOK(c, nil, "order deleted")
	}
}

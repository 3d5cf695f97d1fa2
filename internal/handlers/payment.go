package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"greenmart/internal/config"
	"greenmart/internal/models"
	"greenmart/internal/services"
)

type createPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type paypalCaptureRequest struct {
	OrderID       string `json:"orderId" binding:"required"`
	PayPalOrderID string `json:"paypalOrderId" binding:"required"`
}

type confirmPaymentRequest struct {
	AdminNote string `json:"adminNote"`
}

// CreatePayment starts payment for an existing order. The amount always
// comes from the stored order, never from the request body. The response
// shape depends on the method: COD gets an acknowledgement, bank transfer
// gets the transfer details, momo and paypal get a gateway redirect.
func CreatePayment(db *mongo.Database, momo *services.MoMoClient, paypal *services.PayPalClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
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
		if order.UserID == nil || *order.UserID != userID {
			respondError(c, http.StatusForbidden, route, "forbidden")
			return
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			respondError(c, http.StatusBadRequest, route, "order is already paid")
			return
		}
		if isTerminalStatus(order.Status) && order.Status != models.OrderStatusCompleted {
			respondError(c, http.StatusBadRequest, route, "order can no longer be paid")
			return
		}

		switch order.PaymentMethod {
		case models.PaymentMethodCOD:
			respondOK(c, gin.H{
				"method": models.PaymentMethodCOD,
				"amount": order.Total,
			}, "pay the courier on delivery")

		case models.PaymentMethodBankTransfer:
			respondOK(c, gin.H{
				"method":        models.PaymentMethodBankTransfer,
				"amount":        order.Total,
				"bankName":      config.AppEnv.Bank.BankName,
				"accountName":   config.AppEnv.Bank.AccountName,
				"accountNumber": config.AppEnv.Bank.AccountNumber,
				"transferNote":  order.OrderNumber,
			}, "transfer with the order number as the note")

		case models.PaymentMethodMoMo:
			payment, err := momo.CreatePayment(ctx, order.OrderNumber, int64(order.Total),
				"GreenMart order "+order.OrderNumber)
			if err != nil {
				log.Println("[PAYMENT] [ERROR] momo create failed:", err)
				respondError(c, http.StatusBadGateway, route, "payment gateway unavailable")
				return
			}
			respondOK(c, payment, "")

		case models.PaymentMethodPayPal:
			ppOrder, err := paypal.CreateOrder(ctx, order.OrderNumber, order.Total, "USD")
			if err != nil {
				log.Println("[PAYMENT] [ERROR] paypal create failed:", err)
				respondError(c, http.StatusBadGateway, route, "payment gateway unavailable")
				return
			}
			respondOK(c, ppOrder, "")

		default:
			respondError(c, http.StatusBadRequest, route, "unsupported payment method")
		}
	}
}

// MoMoCallback handles the gateway IPN. The signature check runs before any
// lookup or write: a tampered payload is rejected with 400 and leaves every
// record untouched.
func MoMoCallback(db *mongo.Database, momo *services.MoMoClient, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/momo/callback"
		defer handlePanic(c, route)

		var ipn services.MoMoIPN
		if err := c.ShouldBindJSON(&ipn); err != nil {
			respondValidationError(c, err)
			return
		}

		if !momo.VerifyIPN(ipn) {
			log.Println("[PAYMENT] [WARN] momo IPN signature mismatch for order", ipn.OrderID)
			respondError(c, http.StatusBadRequest, route, "invalid signature")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		err := db.Collection("orders").FindOne(ctx, bson.M{"orderNumber": ipn.OrderID}).Decode(&order)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "order not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		if ipn.ResultCode != 0 {
			log.Printf("[PAYMENT] [WARN] momo payment failed for %s: %d %s", ipn.OrderID, ipn.ResultCode, ipn.Message)
			recordPayment(ctx, db, order.ID, models.PaymentMethodMoMo, float64(ipn.Amount),
				models.PaymentRecordFailed, fmt.Sprintf("%d", ipn.TransID), ipn.Message)
			respondOK(c, nil, "acknowledged")
			return
		}

		recordPayment(ctx, db, order.ID, models.PaymentMethodMoMo, float64(ipn.Amount),
			models.PaymentRecordCompleted, fmt.Sprintf("%d", ipn.TransID), ipn.Message)
		settleOrderPayment(ctx, db, notifier, order)

		respondOK(c, nil, "acknowledged")
	}
}

// PayPalCapture finishes a paypal checkout after the buyer approves. The
// capture call is the source of truth; the order is settled only when the
// gateway reports COMPLETED.
func PayPalCapture(db *mongo.Database, paypal *services.PayPalClient, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/payments/paypal/capture"
		defer handlePanic(c, route)

		userID := c.MustGet("userId").(primitive.ObjectID)

		var req paypalCaptureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OrderID))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
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
		if order.UserID == nil || *order.UserID != userID {
			respondError(c, http.StatusForbidden, route, "forbidden")
			return
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			respondError(c, http.StatusBadRequest, route, "order is already paid")
			return
		}

		capture, err := paypal.CaptureOrder(ctx, strings.TrimSpace(req.PayPalOrderID))
		if err != nil {
			log.Println("[PAYMENT] [ERROR] paypal capture failed:", err)
			respondError(c, http.StatusBadGateway, route, "payment capture failed")
			return
		}

		recordPayment(ctx, db, order.ID, models.PaymentMethodPayPal, order.Total,
			models.PaymentRecordCompleted, capture.CaptureID, capture.Raw)
		settleOrderPayment(ctx, db, notifier, order)

		respondOK(c, gin.H{"captureId": capture.CaptureID, "status": capture.Status}, "payment captured")
	}
}

// ConfirmPayment lets an admin settle a pending COD or bank transfer record
// once the money has actually arrived.
func ConfirmPayment(db *mongo.Database, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/payments/:id/confirm"
		defer handlePanic(c, route)

		paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req confirmPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var payment models.Payment
		err = db.Collection("payments").FindOneAndUpdate(ctx,
			bson.M{"_id": paymentID, "status": models.PaymentRecordPending},
			bson.M{"$set": bson.M{
				"status":    models.PaymentRecordCompleted,
				"adminNote": strings.TrimSpace(req.AdminNote),
				"updatedAt": time.Now(),
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&payment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				respondError(c, http.StatusNotFound, route, "pending payment not found")
				return
			}
			respondInternalError(c, route, err)
			return
		}

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": payment.OrderID}).Decode(&order); err == nil {
			settleOrderPayment(ctx, db, notifier, order)
		} else {
			log.Println("[PAYMENT] [ERROR] order lookup after confirm failed:", err)
		}

		respondOK(c, payment, "payment confirmed")
	}
}

func GetOrderPayments(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/:id/payments"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("payments").Find(ctx,
			bson.M{"orderId": orderID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			respondInternalError(c, route, err)
			return
		}
		defer cursor.Close(ctx)

		payments := make([]models.Payment, 0)
		if err := cursor.All(ctx, &payments); err != nil {
			respondInternalError(c, route, err)
			return
		}

		respondOK(c, payments, "")
	}
}

// recordPayment writes a transaction record. Failures are logged, not
// surfaced: the gateway already has its own record and losing ours must not
// fail the callback.
func recordPayment(ctx context.Context, db *mongo.Database, orderID primitive.ObjectID, method string, amount float64, status, transactionID, gatewayResponse string) {
	now := time.Now()
	payment := models.Payment{
		OrderID:         orderID,
		Method:          method,
		Amount:          amount,
		Status:          status,
		TransactionID:   transactionID,
		GatewayResponse: gatewayResponse,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := db.Collection("payments").InsertOne(ctx, payment); err != nil {
		log.Println("[PAYMENT] [ERROR] payment record insert failed:", err)
	}
}

// settleOrderPayment marks the order paid, moves a still-pending order to
// confirmed, and notifies the buyer. Safe to call twice: the filter skips
// already-paid orders.
func settleOrderPayment(ctx context.Context, db *mongo.Database, notifier *services.Notifier, order models.Order) {
	set := bson.M{
		"paymentStatus": models.PaymentStatusPaid,
		"updatedAt":     time.Now(),
	}
	if order.Status == models.OrderStatusPending {
		set["status"] = models.OrderStatusConfirmed
	}

	res, err := db.Collection("orders").UpdateOne(ctx,
		bson.M{"_id": order.ID, "paymentStatus": bson.M{"$ne": models.PaymentStatusPaid}},
		bson.M{"$set": set},
	)
	if err != nil {
		log.Println("[PAYMENT] [ERROR] order settle failed:", err)
		return
	}
	if res.MatchedCount == 0 {
		return
	}

	if order.UserID != nil {
		notifier.NotifyUser(*order.UserID, models.NotificationPayment,
			"Payment received",
			fmt.Sprintf("Payment for order %s was received.", order.OrderNumber))
	}
	log.Println("[PAYMENT] [INFO] order paid:", order.OrderNumber)
}

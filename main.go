package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"greenmart/internal/config"
	"greenmart/internal/database"
	"greenmart/internal/handlers"
	"greenmart/internal/middleware"
	"greenmart/internal/scheduler"
	"greenmart/internal/services"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	ensure := []struct {
		name string
		fn   func() error
	}{
		{"user", func() error { return database.EnsureUserIndexes(db) }},
		{"product", func() error { return database.EnsureProductIndexes(db) }},
		{"order", func() error { return database.EnsureOrderIndexes(db) }},
		{"voucher", func() error { return database.EnsureVoucherIndexes(db) }},
		{"notification", func() error { return database.EnsureNotificationIndexes(db) }},
		{"rating", func() error { return database.EnsureRatingIndexes(db) }},
		{"cart", func() error { return database.EnsureCartIndexes(db) }},
	}
	for _, e := range ensure {
		if err := e.fn(); err != nil {
			log.Printf("⚠️ %s index warning: %v", e.name, err)
		}
	}

	sweeper := scheduler.StartFlashSaleSweeper(db)
	defer sweeper.Stop()

	notifier := services.NewNotifier(db)
	momo := services.NewMoMoClient(config.AppEnv.MoMo)
	paypal := services.NewPayPalClient(config.AppEnv.PayPal)

	secret := config.AppEnv.JWTSecret
	accessTTL := config.AppEnv.AccessTokenTTL
	refreshTTL := config.AppEnv.RefreshTokenTTL

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, secret, accessTTL, refreshTTL))
		auth.POST("/login", handlers.Login(db, secret, accessTTL, refreshTTL))
		auth.POST("/refresh", handlers.Refresh(db, secret, accessTTL, refreshTTL))
		auth.POST("/logout", handlers.Logout(db))
		auth.GET("/me", middleware.UserAuth(secret), handlers.GetMe(db))
	}

	// Public catalog surface.
	api.GET("/products", handlers.GetProducts(db))
	api.GET("/products/:id", handlers.GetProduct(db))
	api.GET("/products/:id/stock", handlers.CheckProductStock(db))
	api.GET("/products/:id/ratings", handlers.GetProductRatings(db))
	api.GET("/products/:id/comments", handlers.GetProductComments(db))
	api.GET("/categories", handlers.GetCategories(db))
	api.GET("/banners", handlers.GetBanners(db))
	api.GET("/flash-sales", handlers.GetCurrentFlashSales(db))
	api.GET("/vouchers", handlers.GetVouchers(db))

	// Gateway callback, authenticated by signature instead of JWT.
	api.POST("/payments/momo/callback", handlers.MoMoCallback(db, momo, notifier))

	user := api.Group("")
	user.Use(middleware.UserAuth(secret))
	{
		user.GET("/cart", handlers.GetCart(db))
		user.POST("/cart/items", handlers.AddCartItem(db))
		user.PUT("/cart/items", handlers.UpdateCartItem(db))
		user.DELETE("/cart/items/:productId", handlers.RemoveCartItem(db))
		user.DELETE("/cart", handlers.ClearCart(db))

		user.POST("/orders", handlers.CreateOrder(db, notifier))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.GET("/orders/:id", handlers.GetOrder(db))

		user.POST("/payments", handlers.CreatePayment(db, momo, paypal))
		user.POST("/payments/paypal/capture", handlers.PayPalCapture(db, paypal, notifier))

		user.POST("/vouchers/collect", handlers.CollectVoucher(db))

		user.POST("/products/:id/ratings", handlers.UpsertRating(db))
		user.DELETE("/products/:id/ratings", handlers.DeleteRating(db))
		user.POST("/products/:id/comments", handlers.CreateComment(db))
		user.PUT("/comments/:id", handlers.UpdateComment(db))
		user.DELETE("/comments/:id", handlers.DeleteComment(db))

		user.GET("/notifications", handlers.GetMyNotifications(db))
		user.PUT("/notifications/read-all", handlers.MarkAllNotificationsRead(db))
		user.PUT("/notifications/:id/read", handlers.MarkNotificationRead(db))
		user.DELETE("/notifications/:id", handlers.DeleteNotification(db))

		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))

		user.GET("/wishlist", handlers.GetWishlist(db))
		user.POST("/wishlist", handlers.AddWishlistItem(db))
		user.DELETE("/wishlist/:productId", handlers.RemoveWishlistItem(db))
	}

	// Staff can read orders and move them along; everything else is admin.
	staff := api.Group("/admin")
	staff.Use(middleware.StaffAuth(secret))
	{
		staff.GET("/orders", handlers.GetAllOrders(db))
		staff.GET("/orders/:id/payments", handlers.GetOrderPayments(db))
		staff.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db, notifier))
		staff.PUT("/payments/:id/confirm", handlers.ConfirmPayment(db, notifier))
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(secret))
	{
		admin.GET("/dashboard", handlers.GetDashboard(db))

		admin.GET("/products", handlers.GetAllProducts(db))
		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.POST("/banners", handlers.CreateBanner(db))
		admin.PUT("/banners/:id", handlers.UpdateBanner(db))
		admin.DELETE("/banners/:id", handlers.DeleteBanner(db))

		admin.GET("/flash-sales", handlers.GetAllFlashSales(db))
		admin.POST("/flash-sales", handlers.CreateFlashSale(db))
		admin.PUT("/flash-sales/:id", handlers.UpdateFlashSale(db))
		admin.DELETE("/flash-sales/:id", handlers.DeleteFlashSale(db))

		admin.GET("/vouchers", handlers.GetAllVouchers(db))
		admin.POST("/vouchers", handlers.CreateVoucher(db))
		admin.PUT("/vouchers/:id", handlers.UpdateVoucher(db))
		admin.DELETE("/vouchers/:id", handlers.DeleteVoucher(db))

		admin.DELETE("/orders/:id", handlers.DeleteOrder(db))

		admin.GET("/notifications", handlers.GetAllNotifications(db))
		admin.POST("/notifications", handlers.CreateNotification(db, notifier))

		admin.GET("/users", handlers.GetAllUsers(db))
		admin.PUT("/users/:id", handlers.UpdateUser(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

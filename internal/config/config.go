package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type MoMoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
}

type PayPalConfig struct {
	ClientID string
	Secret   string
	BaseURL  string
}

type BankConfig struct {
	BankName      string
	AccountName   string
	AccountNumber string
}

type Config struct {
	MongoURI        string
	DBName          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Checkout fees, VND.
	DeliveryFee       float64
	FreeShipThreshold float64
	ServiceFee        float64

	MoMo   MoMoConfig
	PayPal PayPalConfig
	Bank   BankConfig

	Debug bool
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "greenmart"),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),

		DeliveryFee:       getFloatEnv("DELIVERY_FEE", 30000),
		FreeShipThreshold: getFloatEnv("FREE_SHIP_THRESHOLD", 500000),
		ServiceFee:        getFloatEnv("SERVICE_FEE", 0),

		MoMo: MoMoConfig{
			PartnerCode: getEnvOrDefault("MOMO_PARTNER_CODE", ""),
			AccessKey:   getEnvOrDefault("MOMO_ACCESS_KEY", ""),
			SecretKey:   getEnvOrDefault("MOMO_SECRET_KEY", ""),
			Endpoint:    getEnvOrDefault("MOMO_ENDPOINT", "https://test-payment.momo.vn"),
			RedirectURL: getEnvOrDefault("MOMO_REDIRECT_URL", ""),
			IPNURL:      getEnvOrDefault("MOMO_IPN_URL", ""),
		},
		PayPal: PayPalConfig{
			ClientID: getEnvOrDefault("PAYPAL_CLIENT_ID", ""),
			Secret:   getEnvOrDefault("PAYPAL_SECRET", ""),
			BaseURL:  getEnvOrDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		},
		Bank: BankConfig{
			BankName:      getEnvOrDefault("BANK_NAME", ""),
			AccountName:   getEnvOrDefault("BANK_ACCOUNT_NAME", ""),
			AccountNumber: getEnvOrDefault("BANK_ACCOUNT_NUMBER", ""),
		},

		Debug: !strings.EqualFold(getEnvOrDefault("APP_ENV", "development"), "production"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

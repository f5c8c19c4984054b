// internal/infra/config/config.go
package config

import (
	"os"
	"strings"
)

// Config holds environment-driven settings for the whole application.
type Config struct {
	Port                     string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	GCPCreds                 string

	FirebaseProjectID string

	// Product image uploads (console)
	ProductImageBucket string

	// External payment gateway (hosted checkout).
	// The public key may come from Secret Manager instead; see GatewayKeySecret.
	GatewayBaseURL   string
	GatewayPublicKey string
	GatewayKeySecret string
	ShowGateway      bool

	// Order records (PostgreSQL). Empty DSN disables order persistence.
	PostgresDSN string

	// Confirmation mail (SendGrid). Empty key disables mail.
	SendGridAPIKey string
	MailFrom       string

	// CORS
	AllowedOrigins []string
}

// Load reads the environment and returns a Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "barcart-dev")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		FirebaseProjectID: getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		ProductImageBucket: os.Getenv("PRODUCT_IMAGE_BUCKET"),

		GatewayBaseURL:   os.Getenv("GATEWAY_BASE_URL"),
		GatewayPublicKey: os.Getenv("GATEWAY_PUBLIC_KEY"),
		GatewayKeySecret: getenvDefault("GATEWAY_KEY_SECRET", "barcart-gateway-public-key"),
		ShowGateway:      getenvBool("SHOW_GATEWAY", false),

		PostgresDSN: os.Getenv("DATABASE_URL"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenvDefault("MAIL_FROM", "orders@barcart.example"),

		AllowedOrigins: splitCSV(getenvDefault("ALLOWED_ORIGINS", "*")),
	}

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

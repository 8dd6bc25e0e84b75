package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	CommerceBaseURL        string
	CommercePublishableKey string
	CommerceAdminToken     string
	CommerceCurrency       string
	CatalogSource          string

	CMSProjectID  string
	CMSDataset    string
	CMSAPIVersion string
	CMSToken      string

	UpstreamTimeout    time.Duration
	CartTTL            time.Duration
	CORSAllowedOrigins []string

	GCSBucket          string
	GCSCredentialsFile string
	UploadDir          string
	PublicBaseURL      string

	SendGridAPIKey string
	MailFrom       string
	StaffEmail     string

	AnalyticsURL   string
	AnalyticsToken string

	BankIBAN        string
	BankBeneficiary string
	BankName        string
}

// LoadConfig reads .env (if present) and the process environment. Every value
// has a fallback pointing at a local development setup.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "storvbox_db"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@storvbox.bg"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		CommerceBaseURL:        strings.TrimRight(getEnv("COMMERCE_BASE_URL", "http://localhost:9000"), "/"),
		CommercePublishableKey: os.Getenv("COMMERCE_PUBLISHABLE_KEY"),
		CommerceAdminToken:     os.Getenv("COMMERCE_ADMIN_TOKEN"),
		CommerceCurrency:       getEnv("COMMERCE_REGION_CURRENCY", "bgn"),
		CatalogSource:          getEnv("CATALOG_SOURCE", "store"),

		CMSProjectID:  os.Getenv("CMS_PROJECT_ID"),
		CMSDataset:    getEnv("CMS_DATASET", "production"),
		CMSAPIVersion: getEnv("CMS_API_VERSION", "2024-01-01"),
		CMSToken:      os.Getenv("CMS_TOKEN"),

		UpstreamTimeout:    getDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		CartTTL:            getDuration("CART_TTL", 30*24*time.Hour),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@storvbox.bg"),
		StaffEmail:     getEnv("STAFF_EMAIL", "office@storvbox.bg"),

		AnalyticsURL:   os.Getenv("ANALYTICS_URL"),
		AnalyticsToken: os.Getenv("ANALYTICS_TOKEN"),

		BankIBAN:        os.Getenv("BANK_IBAN"),
		BankBeneficiary: getEnv("BANK_BENEFICIARY", "STORVBOX"),
		BankName:        os.Getenv("BANK_NAME"),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

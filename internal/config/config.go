package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	Env           string
	Port          string
	PublicBaseURL string

	DBDriver string
	DSN      string

	LogLevel string
	LogFile  string

	RateURL      string
	RateCurrency string
	RateTimeout  time.Duration
	RateCacheTTL time.Duration

	ShippingRatePerKg float64
	StorageDir        string
	ListingTimeout    time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	c := Config{
		Env:           env("APP_ENV", "development"),
		Port:          env("PORT", "8080"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		DBDriver: strings.ToLower(env("DB_DRIVER", "postgres")),

		LogLevel: env("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		RateURL:      os.Getenv("RATE_URL"),
		RateCurrency: env("RATE_CURRENCY", "CNY"),
		RateTimeout:  duration("RATE_TIMEOUT", 5*time.Second),
		RateCacheTTL: duration("RATE_CACHE_TTL", 10*time.Minute),

		ShippingRatePerKg: cast.ToFloat64(os.Getenv("SHIPPING_RATE_PER_KG")),
		StorageDir:        env("STORAGE_DIR", "uploads"),
		ListingTimeout:    duration("LISTING_TIMEOUT", 20*time.Second),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    os.Getenv("CLOUDINARY_FOLDER"),
	}
	c.DSN = dsn(c.DBDriver)
	return c
}

func (c Config) Production() bool { return strings.EqualFold(c.Env, "production") }

func (c Config) HasDatabaseURL() bool {
	return strings.TrimSpace(os.Getenv("DATABASE_URL")) != "" || strings.TrimSpace(os.Getenv("DB_DSN")) != ""
}

// dsn prefers DATABASE_URL or DB_DSN and otherwise assembles one from the
// DB_* parts.
func dsn(driver string) string {
	for _, k := range []string{"DATABASE_URL", "DB_DSN"} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	host := env("DB_HOST", "localhost")
	user := env("DB_USER", env("POSTGRES_USER", "postgres"))
	pass := env("DB_PASSWORD", env("POSTGRES_PASSWORD", "postgres"))
	name := env("DB_NAME", env("POSTGRES_DB", "headstock"))
	if driver == "mysql" {
		port := env("DB_PORT", "3306")
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", user, pass, host, port, name)
	}
	port := env("DB_PORT", "5432")
	ssl := env("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// duration accepts Go durations ("90s") or plain seconds ("90").
func duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := cast.ToIntE(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

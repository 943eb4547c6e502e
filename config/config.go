package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fetch modes for the product listing.
const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	BaseURL             string
	UserAgent           string
	TestimonialsToken   string
	TestimonialsReferer string

	RateLimitMs       int
	RequestTimeoutSec int
	ProductPages      int
	TestimonialPages  int
	ReviewPages       int
	ReviewPageSize    int
	FetchMode         string
	ChromeBin         string

	SnapshotPath    string
	CSVEnabled      bool
	CSVOutputDir    string
	MetricsTextfile string

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	DashboardAddr         string
	DashboardYear         int
	DashboardDefaultMonth string

	SentimentAPIURL     string
	SentimentAPIToken   string
	SentimentBatchSize  int
	SentimentMaxRetries int

	LogLevel string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	base := strings.TrimRight(getEnv("BASE_URL", "https://web-scraping.dev"), "/")

	return &Config{
		BaseURL: base,
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		TestimonialsToken:   getEnv("TESTIMONIALS_TOKEN", "secret123"),
		TestimonialsReferer: getEnv("TESTIMONIALS_REFERER", base+"/testimonials"),

		RateLimitMs:       getEnvInt("RATE_LIMIT_MS", 200),
		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 30),
		ProductPages:      getEnvInt("PRODUCT_PAGES", 50),
		TestimonialPages:  getEnvInt("TESTIMONIAL_PAGES", 50),
		ReviewPages:       getEnvInt("REVIEW_PAGES", 50),
		ReviewPageSize:    getEnvInt("REVIEW_PAGE_SIZE", 20),
		FetchMode:         strings.ToLower(getEnv("FETCH_MODE", FetchModeHTTP)),
		ChromeBin:         getEnv("CHROME_BIN", ""),

		SnapshotPath:    getEnv("SNAPSHOT_PATH", "data.json"),
		CSVEnabled:      getEnvBool("CSV_ENABLED", true),
		CSVOutputDir:    getEnv("CSV_OUTPUT_DIR", "./output"),
		MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "reputation_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		DashboardAddr:         getEnv("DASHBOARD_ADDR", ":8501"),
		DashboardYear:         getEnvInt("DASHBOARD_YEAR", 2023),
		DashboardDefaultMonth: getEnv("DASHBOARD_DEFAULT_MONTH", "Mar 2023"),

		SentimentAPIURL: getEnv("SENTIMENT_API_URL",
			"https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"),
		SentimentAPIToken:   getEnv("SENTIMENT_API_TOKEN", ""),
		SentimentBatchSize:  getEnvInt("SENTIMENT_BATCH_SIZE", 16),
		SentimentMaxRetries: getEnvInt("SENTIMENT_MAX_RETRIES", 3),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// RateLimit is the fixed pause between page requests.
func (c *Config) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

// RequestTimeout bounds a single HTTP request.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is read once at startup and passed down explicitly.
type Config struct {
	Env      string
	Port     string
	BaseURL  string
	LogLevel string

	StoreBackend string // postgres | pebble
	DatabaseURL  string
	PebblePath   string

	AuthSecret string
	AuthIssuer string

	MaxCommentLength int
	MaxFieldLength   int
	MaxCountURLs     int

	CORSOrigins []string
}

const (
	BackendPostgres = "postgres"
	BackendPebble   = "pebble"
)

// Load 读取 .env 与环境变量，缺失时使用默认值
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	port := getEnv("PORT", "8080")
	cfg := Config{
		Env:              getEnv("APP_ENV", "production"),
		Port:             port,
		BaseURL:          strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:"+port+"/comments"), "/"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		StoreBackend:     strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:      getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=flamewars port=5432 sslmode=disable TimeZone=UTC"),
		PebblePath:       getEnv("PEBBLE_PATH", "./data/flamewars"),
		AuthSecret:       os.Getenv("AUTH_SECRET"),
		AuthIssuer:       os.Getenv("AUTH_ISSUER"),
		MaxCommentLength: getEnvInt("MAX_COMMENT_LENGTH", 5000),
		MaxFieldLength:   getEnvInt("MAX_FIELD_LENGTH", 100),
		MaxCountURLs:     getEnvInt("MAX_COUNT_URLS", 50),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

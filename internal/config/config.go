package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment
type Config struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string

	JWTSecret           string
	AdminUsername       string
	AdminPasswordHash   string // bcrypt
	AdminOrganizationID int64

	FormCacheTTL       time.Duration
	SubmitLockTTL      time.Duration
	CORSAllowedOrigins []string
	WorkerConcurrency  int

	Engine EngineConfig
}

// EngineConfig tunes scoring and recalculation. It is passed by value into
// the services that need it.
type EngineConfig struct {
	RecalcBatchSize int
}

// Load reads a .env file if present, then the environment
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] no .env file found, using environment")
	}

	return Config{
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "saasadmin"),
		RedisAddr:     redisAddr(getEnv("REDIS_ADDR", "localhost:6379")),
		Port:          getEnv("PORT", "8080"),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:   os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminOrganizationID: getEnvInt64("ADMIN_ORGANIZATION_ID", 1),

		FormCacheTTL:       getEnvDuration("FORM_CACHE_TTL", 10*time.Minute),
		SubmitLockTTL:      getEnvDuration("SUBMIT_LOCK_TTL", 10*time.Second),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		WorkerConcurrency:  int(getEnvInt64("WORKER_CONCURRENCY", 5)),

		Engine: EngineConfig{
			RecalcBatchSize: int(getEnvInt64("RECALC_BATCH_SIZE", 200)),
		},
	}
}

// redisAddr strips a redis:// scheme so the value can be used as a host:port
func redisAddr(v string) string {
	return strings.TrimPrefix(v, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("[Config] invalid %s=%q, using %d", key, val, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		log.Printf("[Config] invalid %s=%q, using %s", key, val, defaultVal)
		return defaultVal
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

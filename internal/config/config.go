package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/subosito/gotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort        string
	MySQLDSNs         []string
	DBConnectAttempts int
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	JWTSecret         string
	SwaggerHost       string
	PublicBaseURL     string
	CORSOrigins       []string
	Admin             AdminConfig
	LogLevel          string
	JSONLogging       bool
	LogSkipPaths      []string
}

// AdminConfig is the target state of the bootstrap administrator account.
type AdminConfig struct {
	Email    string
	Name     string
	Password string
}

// Load builds Config from environment with sensible defaults. Values from a
// .env file in the working directory are applied first without overriding
// variables already set in the environment.
func Load() *Config {
	_ = gotenv.Load()

	dsns := []string{getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=UTC")}
	if fallback := os.Getenv("MYSQL_FALLBACK_DSN"); fallback != "" {
		dsns = append(dsns, fallback)
	}

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		MySQLDSNs:         dsns,
		DBConnectAttempts: getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:       os.Getenv("SWAGGER_HOST"),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		CORSOrigins:       getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Name:     getEnv("ADMIN_NAME", "Super Admin"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		JSONLogging:  getEnvBool("JSON_LOGGING_ENABLED", false),
		LogSkipPaths: getEnvList("LOG_SKIP_PATHS", []string{"/healthz"}),
	}
}

// Validate reports configuration that would leave the service unable to start safely.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Admin.Email) == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}
	if c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if c.DBConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be positive, got %d", c.DBConnectAttempts)
	}
	if c.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

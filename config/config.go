package config

import (
	"crypto/rand"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is loaded once at startup and passed by reference to the
// components that need it.
type Config struct {
	Port    string
	GinMode string

	DBDriver      string
	DBSource      string
	MongoURI      string
	MongoDatabase string

	JWTSecret []byte
	JWTTTL    time.Duration

	UploadDir      string
	UploadMaxBytes int64

	RedisAddress    string
	RedisPassword   string
	IssueRateLimit  int
	IssueRateWindow time.Duration

	StrictTransitions bool
	CORSOrigins       []string

	ListMaxLimit   int
	PublicPageSize int
	AdminPageSize  int
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_SOURCE", "citycompass.db")
	v.SetDefault("MONGODB_URI", "")
	v.SetDefault("MONGODB_DATABASE", "citycompass")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("ISSUE_RATE_LIMIT", 0)
	v.SetDefault("ISSUE_RATE_WINDOW", 24*time.Hour)
	v.SetDefault("STRICT_TRANSITIONS", false)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LIST_MAX_LIMIT", 200)
	v.SetDefault("PUBLIC_PAGE_SIZE", 20)
	v.SetDefault("ADMIN_PAGE_SIZE", 50)
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		GinMode:           v.GetString("GIN_MODE"),
		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBSource:          v.GetString("DB_SOURCE"),
		MongoURI:          v.GetString("MONGODB_URI"),
		MongoDatabase:     v.GetString("MONGODB_DATABASE"),
		JWTSecret:         []byte(v.GetString("JWT_SECRET")),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		UploadDir:         v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:    v.GetInt64("UPLOAD_MAX_BYTES"),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		IssueRateLimit:    v.GetInt("ISSUE_RATE_LIMIT"),
		IssueRateWindow:   v.GetDuration("ISSUE_RATE_WINDOW"),
		StrictTransitions: v.GetBool("STRICT_TRANSITIONS"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		ListMaxLimit:      v.GetInt("LIST_MAX_LIMIT"),
		PublicPageSize:    v.GetInt("PUBLIC_PAGE_SIZE"),
		AdminPageSize:     v.GetInt("ADMIN_PAGE_SIZE"),
	}
	if len(cfg.JWTSecret) == 0 {
		slog.Warn("JWT_SECRET is not set; using a random key, tokens will not survive a restart")
		cfg.JWTSecret = make([]byte, 32)
		_, _ = rand.Read(cfg.JWTSecret)
	}
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	if cfg.ListMaxLimit <= 0 {
		cfg.ListMaxLimit = 200
	}
	if cfg.PublicPageSize <= 0 {
		cfg.PublicPageSize = 20
	}
	if cfg.AdminPageSize <= 0 {
		cfg.AdminPageSize = 50
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Firebase FirebaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Sync     SyncConfig
	Exports  ExportsConfig
}

// FirebaseConfig locates the service-account credentials and project resources.
type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	StorageBucket   string
	APIKey          string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig bounds the local persistence tier.
type CacheConfig struct {
	TTL          time.Duration
	MaxEntrySize int64
}

// SyncConfig governs the post-login cache warm-up and periodic refresh.
type SyncConfig struct {
	Enabled         bool
	RunTimeout      time.Duration
	RefreshSchedule string
}

// ExportsConfig controls roster/marksheet export generation.
type ExportsConfig struct {
	Enabled    bool
	PathPrefix string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Firebase = FirebaseConfig{
		CredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		ProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		StorageBucket:   v.GetString("FIREBASE_STORAGE_BUCKET"),
		APIKey:          v.GetString("FIREBASE_API_KEY"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxEntrySize := v.GetInt64("CACHE_MAX_ENTRY_SIZE")
	if maxEntrySize <= 0 {
		maxEntrySize = 1 << 20
	}
	cfg.Cache = CacheConfig{
		TTL:          parseDuration(v.GetString("CACHE_TTL"), 7*24*time.Hour),
		MaxEntrySize: maxEntrySize,
	}

	cfg.Sync = SyncConfig{
		Enabled:         v.GetBool("ENABLE_SYNC"),
		RunTimeout:      parseDuration(v.GetString("SYNC_RUN_TIMEOUT"), 2*time.Minute),
		RefreshSchedule: v.GetString("SYNC_REFRESH_SCHEDULE"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:    v.GetBool("ENABLE_EXPORTS"),
		PathPrefix: v.GetString("EXPORTS_PATH_PREFIX"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_STORAGE_BUCKET", "")
	v.SetDefault("FIREBASE_API_KEY", "")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "dept-portal-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_TTL", "168h")
	v.SetDefault("CACHE_MAX_ENTRY_SIZE", 1<<20)

	v.SetDefault("ENABLE_SYNC", true)
	v.SetDefault("SYNC_RUN_TIMEOUT", "2m")
	v.SetDefault("SYNC_REFRESH_SCHEDULE", "")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_PATH_PREFIX", "exports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

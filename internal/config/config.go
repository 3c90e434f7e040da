package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string
	Environment string
	CORSOrigin  string

	// Document store
	MongoURI     string
	MongoDB      string
	MongoTimeout time.Duration

	// Tokens
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration

	// Object storage
	S3 ObjectStoreConfig

	// Rate limiting
	RateLimitPerMinute int
}

// ObjectStoreConfig targets an S3-compatible bucket for media blobs.
type ObjectStoreConfig struct {
	Region        string
	Bucket        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from the environment. Only the token secrets are
// mandatory; everything else has a development default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_NAME", "videotube")
	v.SetDefault("MONGODB_TIMEOUT_SECONDS", 10)
	v.SetDefault("ACCESS_TOKEN_EXPIRY_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_EXPIRY_HOURS", 240)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "videotube-media")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Environment:        v.GetString("ENVIRONMENT"),
		CORSOrigin:         v.GetString("CORS_ORIGIN"),
		MongoURI:           v.GetString("MONGODB_URI"),
		MongoDB:            v.GetString("MONGODB_NAME"),
		MongoTimeout:       time.Duration(v.GetInt("MONGODB_TIMEOUT_SECONDS")) * time.Second,
		AccessTokenSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:  time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRY_MINUTES")) * time.Minute,
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry: time.Duration(v.GetInt("REFRESH_TOKEN_EXPIRY_HOURS")) * time.Hour,
		S3: ObjectStoreConfig{
			Region:        v.GetString("S3_REGION"),
			Bucket:        v.GetString("S3_BUCKET"),
			Endpoint:      v.GetString("S3_ENDPOINT"),
			PublicBaseURL: v.GetString("S3_PUBLIC_BASE_URL"),
		},
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
	}

	if cfg.AccessTokenSecret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET environment variable is required")
	}
	if cfg.RefreshTokenSecret == "" {
		return nil, fmt.Errorf("REFRESH_TOKEN_SECRET environment variable is required")
	}

	return cfg, nil
}

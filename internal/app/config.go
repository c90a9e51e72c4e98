package app

import (
	"time"

	"github.com/brown2020/ikigaifinder/internal/platform/envutil"
	"github.com/brown2020/ikigaifinder/internal/platform/logger"
)

type Config struct {
	JWTSecretKey  string
	IDTokenSecret string
	SessionTTL    time.Duration
	Port          string
	Environment   string
	Version       string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		JWTSecretKey:  envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		IDTokenSecret: envutil.String("ID_TOKEN_SECRET", "defaultsecret"),
		SessionTTL:    time.Duration(envutil.Int("SESSION_TTL", 7*86400)) * time.Second,
		Port:          envutil.String("PORT", "8080"),
		Environment:   envutil.String("ENVIRONMENT", "development"),
		Version:       envutil.String("SERVICE_VERSION", "dev"),
	}
	if cfg.JWTSecretKey == "defaultsecret" {
		log.Warn("JWT_SECRET_KEY not set; using insecure default")
	}
	return cfg
}

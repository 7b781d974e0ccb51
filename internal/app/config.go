package app

import (
	"strings"
	"time"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/utils"
)

type Config struct {
	ServiceName         string
	Environment         string
	JWTSecretKey        string
	AccessTokenTTL      time.Duration
	RedisAddr           string
	AllowOrigins        []string
	PriceSeedPath       string
	AnalysisConcurrency int
	AnalysisQueueSize   int
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 86400, log)
	origins := strings.Split(utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		ServiceName:         utils.GetEnv("SERVICE_NAME", "talent-market", log),
		Environment:         utils.GetEnv("ENVIRONMENT", "development", log),
		JWTSecretKey:        jwtSecretKey,
		AccessTokenTTL:      time.Duration(accessTokenTTLSeconds) * time.Second,
		RedisAddr:           utils.GetEnv("REDIS_ADDR", "", log),
		AllowOrigins:        origins,
		PriceSeedPath:       utils.GetEnv("PRICE_SEED_PATH", "config/prices.yaml", log),
		AnalysisConcurrency: utils.GetEnvAsInt("ANALYSIS_CONCURRENCY", 8, log),
		AnalysisQueueSize:   utils.GetEnvAsInt("ANALYSIS_QUEUE_SIZE", 64, log),
	}
}

package app

import (
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/envutil"
	"github.com/ssingh-rookie/LeafWise-API/internal/platform/logger"
)

// Config is the single immutable record spec §6.4 names: the options below
// are loaded once at boot by LoadConfig and passed by value from here on,
// using the teacher's utils.GetEnv idiom (a default value when a variable
// is unset). Providers, the rate limiter, storage, the database and
// observability read their own environment variables when they are built.
type Config struct {
	JWTSecretKey string

	HTTPAddr string

	LowConfidenceThreshold float64
	SemanticSearchThreshold float64
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		JWTSecretKey:            envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		HTTPAddr:                envutil.GetEnv("HTTP_ADDR", ":8080", log),
		LowConfidenceThreshold:  envutil.GetEnvAsFloat("LOW_CONFIDENCE_THRESHOLD", 0.70, log),
		SemanticSearchThreshold: envutil.GetEnvAsFloat("SEMANTIC_SEARCH_THRESHOLD", 0.70, log),
	}
}

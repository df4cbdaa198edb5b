package app

import (
	"github.com/inquiryos/inquiry-os/internal/clients/llm"
	"github.com/inquiryos/inquiry-os/internal/platform/envutil"
	"github.com/inquiryos/inquiry-os/internal/platform/logger"
)

// Config is the process's full ambient configuration, loaded once at
// startup from environment variables (SPEC_FULL.md §6).
type Config struct {
	APIPort      string
	LogMode      string
	RedisAddr    string
	RatePerSec   float64
	RateBurst    int
	LLM          llm.Config
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		APIPort:    envutil.String("API_PORT", "8000", log),
		LogMode:    envutil.String("LOG_MODE", "development", log),
		RedisAddr:  envutil.String("REDIS_ADDR", "", log),
		RatePerSec: 2.0,
		RateBurst:  4,
		LLM:        llm.LoadConfig(log),
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"quanthedge/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Exchange APIs
	BinanceAPIKey    string
	BinanceSecretKey string
	IsTestnet        bool
	HedgeVenue       string // venue used for costing hedge candidates

	// Hedging
	HedgeExpiry  string  // option expiry label for hedge candidates, empty scans all
	MaxHedgeCost float64 // premium cap for the dynamic hedge, zero disables

	// Portfolio Parameters
	Symbol       string  // primary underlying, e.g. BTCUSDT
	RiskFreeRate float64 // annualized, used for option pricing

	// Risk Watcher
	PollInterval   time.Duration
	DeltaThreshold float64

	// Correlation Engine
	CorrelationDays    int
	MinOverlap         int
	HighCorrThreshold  float64
	HedgeCorrThreshold float64

	// Hedge Optimizer Weights
	WeightEffectiveness float64
	WeightCost          float64
	WeightLiquidity     float64

	// Stress Testing
	ScenarioFile string // optional YAML with extra scenarios

	// Database
	DBPath string

	// Logging
	LogLevel   logger.LogLevel // Use the LogLevel type from the logger adapter
	LogBackend string          // "std" or "zap"

	// Metrics
	MetricsAddr string // empty disables the Prometheus endpoint

	// Connection Settings
	RequestsPerSecond float64
	RequestTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Exchange APIs. Keys are optional: only public endpoints are used.
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety
	cfg.HedgeVenue = getEnv("HEDGE_VENUE", "deribit")

	// Hedging
	cfg.HedgeExpiry = getEnv("HEDGE_EXPIRY", "")
	cfg.MaxHedgeCost = getEnvAsFloat("MAX_HEDGE_COST", 0)
	if cfg.MaxHedgeCost < 0 {
		errs = append(errs, "MAX_HEDGE_COST must not be negative")
	}

	// Portfolio Parameters
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	cfg.RiskFreeRate, err = getEnvAsFloatRequired("RISK_FREE_RATE", 0.05)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_FREE_RATE: %v", err))
	} else if cfg.RiskFreeRate < 0 || cfg.RiskFreeRate > 1 {
		errs = append(errs, "RISK_FREE_RATE must be between 0.0 and 1.0")
	}

	// Risk Watcher
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 20)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	cfg.DeltaThreshold, err = getEnvAsFloatRequired("DELTA_THRESHOLD", 5.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid DELTA_THRESHOLD: %v", err))
	} else if cfg.DeltaThreshold <= 0 {
		errs = append(errs, "DELTA_THRESHOLD must be positive")
	}

	// Correlation Engine
	cfg.CorrelationDays = getEnvAsInt("CORRELATION_DAYS", 30)
	if cfg.CorrelationDays <= 0 {
		errs = append(errs, "CORRELATION_DAYS must be positive")
	}
	cfg.MinOverlap = getEnvAsInt("MIN_OVERLAP", 10)
	if cfg.MinOverlap <= 0 {
		errs = append(errs, "MIN_OVERLAP must be positive")
	}
	cfg.HighCorrThreshold = getEnvAsFloat("HIGH_CORR_THRESHOLD", 0.8)
	cfg.HedgeCorrThreshold = getEnvAsFloat("HEDGE_CORR_THRESHOLD", -0.3)
	if cfg.HighCorrThreshold <= cfg.HedgeCorrThreshold {
		errs = append(errs, "HIGH_CORR_THRESHOLD must be greater than HEDGE_CORR_THRESHOLD")
	}

	// Hedge Optimizer Weights. They must sum to one; validated again by
	// the optimizer itself.
	cfg.WeightEffectiveness = getEnvAsFloat("WEIGHT_EFFECTIVENESS", 0.5)
	cfg.WeightCost = getEnvAsFloat("WEIGHT_COST", 0.3)
	cfg.WeightLiquidity = getEnvAsFloat("WEIGHT_LIQUIDITY", 0.2)

	// Stress Testing
	cfg.ScenarioFile = getEnv("SCENARIO_FILE", "")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/quanthedge.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogBackend = strings.ToLower(getEnv("LOG_BACKEND", "std"))
	if cfg.LogBackend != "std" && cfg.LogBackend != "zap" {
		errs = append(errs, "LOG_BACKEND must be 'std' or 'zap'")
	}

	// Metrics
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	// Connection Settings
	cfg.RequestsPerSecond = getEnvAsFloat("REQUESTS_PER_SECOND", 5)
	if cfg.RequestsPerSecond <= 0 {
		errs = append(errs, "REQUESTS_PER_SECOND must be positive")
	}
	timeoutSeconds := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10)
	if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

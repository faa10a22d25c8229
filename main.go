package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quanthedge/config"
	"quanthedge/internal/adapters/binanceclient"
	"quanthedge/internal/adapters/composite"
	"quanthedge/internal/adapters/deribit"
	"quanthedge/internal/adapters/logger"
	"quanthedge/internal/adapters/sqlite"
	"quanthedge/internal/app"
	"quanthedge/internal/hedge"
	"quanthedge/internal/ledger"
	"quanthedge/internal/metrics"
	"quanthedge/internal/ports"
	"quanthedge/internal/strategy"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	var appLogger ports.Logger
	if cfg.LogBackend == "zap" {
		zl, err := logger.NewZapLogger(cfg.LogLevel)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize zap logger: %v", err)
		}
		defer zl.Sync()
		appLogger = zl
	} else {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	}
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "backend": cfg.LogBackend})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Repository (Transaction Journal)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize transaction journal")
		log.Fatalf("FATAL: Failed to initialize transaction journal: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing transaction journal")
		}
	}()

	// 4. Initialize Exchange Clients (Binance for spot, Deribit for options)
	spotClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.BinanceAPIKey,
		SecretKey:         cfg.BinanceSecretKey,
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	optionClient, err := deribit.New(deribit.Config{
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Deribit client")
		log.Fatalf("FATAL: Failed to initialize Deribit client: %v", err)
	}
	market, err := composite.New(spotClient, optionClient)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize market data provider")
		log.Fatalf("FATAL: Failed to initialize market data provider: %v", err)
	}

	// 5. Initialize Portfolio Ledger
	book, err := ledger.New(appLogger, repo)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize ledger")
		log.Fatalf("FATAL: Failed to initialize ledger: %v", err)
	}

	// 6. Initialize Hedge Recommender
	optimizer, err := hedge.NewOptimizer(hedge.Weights{
		Effectiveness: cfg.WeightEffectiveness,
		Cost:          cfg.WeightCost,
		Liquidity:     cfg.WeightLiquidity,
	}, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Invalid hedge optimizer weights")
		log.Fatalf("FATAL: Invalid hedge optimizer weights: %v", err)
	}
	recommender := hedge.NewRecommender(strategy.NewBuilder(cfg.RiskFreeRate), optimizer, appLogger, cfg.HedgeVenue)

	// 7. Metrics endpoint (optional)
	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New(nil)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			appLogger.Info(ctx, "Metrics endpoint listening", map[string]interface{}{"addr": cfg.MetricsAddr})
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				appLogger.Error(ctx, err, "Metrics endpoint failed")
			}
		}()
	}

	// 8. Initialize and start the Risk Watcher
	watcher, err := app.New(app.Config{
		Symbol:         cfg.Symbol,
		PollInterval:   cfg.PollInterval,
		DeltaThreshold: cfg.DeltaThreshold,
		RiskFreeRate:   cfg.RiskFreeRate,
		HedgeExpiry:    cfg.HedgeExpiry,
		MaxHedgeCost:   cfg.MaxHedgeCost,
	}, book, market, appLogger, m, recommender)
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize risk watcher")
		log.Fatalf("FATAL: Failed to initialize risk watcher: %v", err)
	}

	if err := watcher.Start(ctx); err != nil && err != context.Canceled {
		appLogger.Error(ctx, err, "Risk watcher exited with error")
		log.Fatalf("FATAL: Risk watcher exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}

// Command report prints a one-shot console report: recent journaled
// transactions, the current book replayed from the journal with its
// risk, stress, and hedge views, a correlation matrix over the
// configured symbols, and the stress scenario catalog.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"quanthedge/config"
	"quanthedge/internal/adapters/binanceclient"
	"quanthedge/internal/adapters/composite"
	"quanthedge/internal/adapters/deribit"
	"quanthedge/internal/adapters/logger"
	"quanthedge/internal/adapters/notify"
	"quanthedge/internal/adapters/sqlite"
	"quanthedge/internal/correlation"
	"quanthedge/internal/domain"
	"quanthedge/internal/hedge"
	"quanthedge/internal/ledger"
	"quanthedge/internal/risk"
	"quanthedge/internal/strategy"
	"quanthedge/internal/stress"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	symbols := reportSymbols(cfg.Symbol)

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open transaction journal: %v", err)
	}
	defer repo.Close()

	spotClient, err := binanceclient.New(binanceclient.Config{
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	optionClient, err := deribit.New(deribit.Config{
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Deribit client: %v", err)
	}
	market, err := composite.New(spotClient, optionClient)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize market data provider: %v", err)
	}

	scenarios := stress.BuiltinScenarios()
	if cfg.ScenarioFile != "" {
		scenarios, err = stress.LoadScenarios(cfg.ScenarioFile)
		if err != nil {
			log.Fatalf("FATAL: Failed to load scenario file: %v", err)
		}
	}

	console := notify.NewConsole(os.Stdout)

	printTransactions(ctx, repo, appLogger, symbols)
	printBook(ctx, cfg, repo, market, appLogger, console, symbols, scenarios)

	// Correlation matrix over daily returns.
	if len(symbols) >= 2 {
		engine := correlation.NewEngine(spotClient, appLogger)
		engine.SetMinOverlap(cfg.MinOverlap)
		engine.SetThresholds(cfg.HighCorrThreshold, cfg.HedgeCorrThreshold)

		res, err := engine.Matrix(ctx, symbols, cfg.CorrelationDays)
		if err != nil {
			appLogger.Error(ctx, err, "correlation matrix failed")
		} else {
			console.Correlation(res)
		}
	}

	printScenarioCatalog(scenarios)
}

func printTransactions(ctx context.Context, repo *sqlite.Repository, appLogger *logger.StdLogger, symbols []string) {
	fmt.Println("\nRECENT TRANSACTIONS")
	table := tablewriter.NewTable(os.Stdout)
	table.Header("Time", "Symbol", "Kind", "Quantity", "Price", "Realized P&L")
	for _, sym := range symbols {
		txs, err := repo.RecentBySymbol(ctx, sym, 10)
		if err != nil {
			appLogger.Error(ctx, err, "failed to read journal", map[string]interface{}{"symbol": sym})
			continue
		}
		for _, tx := range txs {
			pnl := "-"
			if tx.RealizedPnL != nil {
				pnl = fmt.Sprintf("%.2f", *tx.RealizedPnL)
			}
			table.Append([]string{
				tx.Timestamp.Format("2006-01-02 15:04"),
				tx.Symbol,
				string(tx.TxKind),
				fmt.Sprintf("%.4f", tx.Quantity),
				fmt.Sprintf("%.2f", tx.Price),
				pnl,
			})
		}
	}
	table.Render()
}

// printBook replays the journal into a fresh ledger and renders the
// resulting positions with their risk, stress, and hedge views.
func printBook(ctx context.Context, cfg *config.Config, repo *sqlite.Repository, market *composite.MarketData, appLogger *logger.StdLogger, console *notify.Console, symbols []string, scenarios []stress.Scenario) {
	book, err := ledger.New(appLogger, nil)
	if err != nil {
		appLogger.Error(ctx, err, "failed to build report book")
		return
	}
	for _, sym := range symbols {
		txs, err := repo.History(ctx, sym)
		if err != nil {
			appLogger.Error(ctx, err, "failed to replay journal", map[string]interface{}{"symbol": sym})
			continue
		}
		for _, tx := range txs {
			if tx.Kind == domain.Option {
				// Journal rows carry no contract terms, so option
				// fills cannot be replayed into positions.
				continue
			}
			fill := ledger.Fill{
				Symbol:   tx.Symbol,
				Quantity: tx.Quantity,
				Price:    tx.Price,
				Kind:     tx.Kind,
				Venue:    tx.Venue,
			}
			if err := book.ApplyFill(ctx, fill); err != nil {
				appLogger.Error(ctx, err, "replaying transaction", map[string]interface{}{"id": tx.ID})
			}
		}
	}

	positions := book.Positions()
	if len(positions) == 0 {
		return
	}

	prices := make(map[string]float64, len(positions))
	vols := make(map[string]float64)
	for _, p := range positions {
		price, err := market.GetPrice(ctx, p.Symbol)
		if err != nil {
			appLogger.Error(ctx, err, "failed to mark position", map[string]interface{}{"symbol": p.Symbol})
			continue
		}
		prices[p.Symbol] = price
	}

	console.Positions(positions, prices)

	snapshot := risk.Evaluate(positions, prices, vols, cfg.RiskFreeRate, time.Now(), risk.Config{
		DeltaThreshold: cfg.DeltaThreshold,
	})
	console.Risk(snapshot)

	runner := stress.NewRunner(cfg.RiskFreeRate)
	console.Stress(runner.RunAll(positions, nil, prices, vols, scenarios))

	spot, ok := prices[cfg.Symbol]
	if !ok {
		return
	}
	chain, err := market.GetOptionChain(ctx, cfg.Symbol, cfg.HedgeExpiry)
	if err != nil {
		appLogger.Warn(ctx, "option chain unavailable for hedging", map[string]interface{}{"error": err.Error()})
		chain = nil
	}

	optimizer, err := hedge.NewOptimizer(hedge.Weights{
		Effectiveness: cfg.WeightEffectiveness,
		Cost:          cfg.WeightCost,
		Liquidity:     cfg.WeightLiquidity,
	}, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "invalid hedge optimizer weights")
		return
	}
	recommender := hedge.NewRecommender(strategy.NewBuilder(cfg.RiskFreeRate), optimizer, appLogger, cfg.HedgeVenue)

	ranked, err := recommender.Recommend(ctx, hedge.Request{
		Symbol:         cfg.Symbol,
		Spot:           spot,
		PortfolioDelta: snapshot.Exposure.Total,
		Chain:          chain,
		Expiry:         cfg.HedgeExpiry,
		MaxCost:        cfg.MaxHedgeCost,
	})
	if err != nil {
		appLogger.Warn(ctx, "no hedge candidates for the current book", map[string]interface{}{"error": err.Error()})
		return
	}
	console.Hedges(ranked)
}

func printScenarioCatalog(scenarios []stress.Scenario) {
	fmt.Println("\nSTRESS SCENARIO CATALOG")
	table := tablewriter.NewTable(os.Stdout)
	table.Header("Name", "Price Mult", "Vol Mult", "Description")
	for _, sc := range scenarios {
		table.Append([]string{
			sc.Name,
			fmt.Sprintf("%.2f", sc.PriceMult),
			fmt.Sprintf("%.2f", sc.VolMult),
			sc.Description,
		})
	}
	table.Render()
}

// reportSymbols reads REPORT_SYMBOLS as a comma-separated list,
// falling back to the primary symbol.
func reportSymbols(primary string) []string {
	raw := os.Getenv("REPORT_SYMBOLS")
	if raw == "" {
		return []string{primary}
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	if len(out) == 0 {
		return []string{primary}
	}
	return out
}

package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"golang.org/x/time/rate"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

// Client implements the market data ports against the Binance spot
// API using the go-binance library.
type Client struct {
	api     *binance.Client
	logger  ports.Logger
	limiter *rate.Limiter
}

// Config holds configuration specific to the Binance adapter. API
// keys are optional since only public endpoints are used.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
	// RequestsPerSecond throttles outbound calls. Zero or negative
	// applies a conservative default.
	RequestsPerSecond float64
}

// New creates a new Binance market data adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	binance.UseTestnet = cfg.UseTestnet
	api := binance.NewClient(cfg.APIKey, cfg.SecretKey)

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{
		"testnet":             cfg.UseTestnet,
		"requests_per_second": rps,
	})
	return &Client{
		api:     api,
		logger:  cfg.Logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// handleError translates common Binance API errors into standardized
// ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003:
			mappedErr = ports.ErrRateLimited
		case -1021:
			mappedErr = ports.ErrTimeout
		case -1121:
			mappedErr = ports.ErrSymbolUnknown
		default:
			mappedErr = ports.ErrExchangeUnavailable
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, operation+" failed with API error", fields)
		return finalErr
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "use of closed network connection"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, operation+" failed", fields)
	return finalErr
}

// GetPrice retrieves the last traded price for a symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetPrice"
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, c.handleError(ctx, err, op)
	}

	prices, err := c.api.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, c.handleError(ctx, err, op)
	}
	if len(prices) == 0 {
		err := fmt.Errorf("%w: no price data returned for %s", ports.ErrSymbolUnknown, symbol)
		return 0, c.handleError(ctx, err, op)
	}

	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		parseErr := fmt.Errorf("could not parse price '%s': %w", prices[0].Price, err)
		return 0, c.handleError(ctx, parseErr, op)
	}
	return price, nil
}

// GetOptionChain is unsupported on Binance spot; option quotes come
// from the Deribit adapter.
func (c *Client) GetOptionChain(ctx context.Context, underlying, expiry string) ([]domain.OptionQuote, error) {
	return nil, fmt.Errorf("GetOptionChain: %w: binance spot carries no option markets", ports.ErrExchangeUnavailable)
}

// GetSeries retrieves daily candles covering the last `days` days.
func (c *Client) GetSeries(ctx context.Context, symbol string, days int) ([]domain.Candle, error) {
	op := "GetSeries"
	if days <= 0 {
		return nil, fmt.Errorf("%w: days must be positive", ports.ErrValidation)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	klines, err := c.api.NewKlinesService().
		Symbol(symbol).
		Interval("1d").
		Limit(days + 1).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	candles := make([]domain.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := translateKline(k)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("translating kline: %w", err), op)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func translateKline(k *binance.Kline) (domain.Candle, error) {
	if k == nil {
		return domain.Candle{}, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing open price '%s': %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing high price '%s': %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing low price '%s': %w", k.Low, err)
	}
	cls, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing close price '%s': %w", k.Close, err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing volume '%s': %w", k.Volume, err)
	}

	return domain.Candle{
		Timestamp: time.UnixMilli(k.OpenTime),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     cls,
		Volume:    vol,
	}, nil
}

package deribit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"quanthedge/internal/domain"
	"quanthedge/internal/ports"
)

const (
	baseURLProduction = "https://www.deribit.com"
	baseURLTestnet    = "https://test.deribit.com"
)

// Client fetches option quotes from the Deribit public API. Only
// public endpoints are used, no credentials needed.
type Client struct {
	baseURL string
	http    *http.Client
	logger  ports.Logger
	limiter *rate.Limiter
}

// Config holds configuration for the Deribit adapter.
type Config struct {
	UseTestnet bool
	Logger     ports.Logger
	Timeout    time.Duration
	// RequestsPerSecond throttles outbound calls. Zero or negative
	// applies a conservative default.
	RequestsPerSecond float64
}

// New creates a new Deribit adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Deribit client")
	}
	baseURL := baseURLProduction
	if cfg.UseTestnet {
		baseURL = baseURLTestnet
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

type bookSummary struct {
	InstrumentName  string   `json:"instrument_name"`
	BidPrice        *float64 `json:"bid_price"`
	AskPrice        *float64 `json:"ask_price"`
	MarkIV          *float64 `json:"mark_iv"`
	OpenInterest    float64  `json:"open_interest"`
	UnderlyingPrice float64  `json:"underlying_price"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type summaryResponse struct {
	Result []bookSummary `json:"result"`
	Error  *rpcError     `json:"error"`
}

type indexResponse struct {
	Result struct {
		IndexPrice float64 `json:"index_price"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

// GetOptionChain returns the quoted options for an underlying
// currency, optionally restricted to one expiry label like "26DEC25".
func (c *Client) GetOptionChain(ctx context.Context, underlying, expiry string) ([]domain.OptionQuote, error) {
	op := "GetOptionChain"
	currency := baseCurrency(underlying)

	params := url.Values{}
	params.Set("currency", currency)
	params.Set("kind", "option")

	var resp summaryResponse
	if err := c.get(ctx, "/api/v2/public/get_book_summary_by_currency", params, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%s: %w: deribit error %d: %s", op, ports.ErrExchangeUnavailable, resp.Error.Code, resp.Error.Message)
	}

	var quotes []domain.OptionQuote
	skipped := 0
	for _, s := range resp.Result {
		q, err := translateSummary(s, underlying)
		if err != nil {
			skipped++
			continue
		}
		if expiry != "" && q.Expiry != expiry {
			continue
		}
		quotes = append(quotes, q)
	}
	if skipped > 0 {
		c.logger.Debug(ctx, "skipped unparseable instruments", map[string]interface{}{
			"currency": currency,
			"skipped":  skipped,
		})
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("%s: %w: no quotes for %s expiry %q", op, ports.ErrNotFound, underlying, expiry)
	}
	return quotes, nil
}

// GetPrice returns the Deribit index price for the underlying.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	op := "GetPrice"
	index := strings.ToLower(baseCurrency(symbol)) + "_usd"

	params := url.Values{}
	params.Set("index_name", index)

	var resp indexResponse
	if err := c.get(ctx, "/api/v2/public/get_index_price", params, &resp); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("%s: %w: deribit error %d: %s", op, ports.ErrSymbolUnknown, resp.Error.Code, resp.Error.Message)
	}
	if resp.Result.IndexPrice <= 0 {
		return 0, fmt.Errorf("%s: %w: empty index price for %s", op, ports.ErrSymbolUnknown, symbol)
	}
	return resp.Result.IndexPrice, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ports.ErrContextCanceled, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrConnectionFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: http 429", ports.ErrRateLimited)
	}
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: http %d: %s", ports.ErrExchangeUnavailable, res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// translateSummary parses an instrument name like BTC-26DEC25-100000-C
// into an option quote.
func translateSummary(s bookSummary, underlying string) (domain.OptionQuote, error) {
	parts := strings.Split(s.InstrumentName, "-")
	if len(parts) != 4 {
		return domain.OptionQuote{}, fmt.Errorf("unexpected instrument name %q", s.InstrumentName)
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return domain.OptionQuote{}, fmt.Errorf("parsing strike in %q: %w", s.InstrumentName, err)
	}

	var kind domain.OptionKind
	switch parts[3] {
	case "C":
		kind = domain.Call
	case "P":
		kind = domain.Put
	default:
		return domain.OptionQuote{}, fmt.Errorf("unknown option kind in %q", s.InstrumentName)
	}

	q := domain.OptionQuote{
		Symbol:       s.InstrumentName,
		Underlying:   underlying,
		Strike:       strike,
		Expiry:       parts[1],
		Kind:         kind,
		OpenInterest: s.OpenInterest,
	}
	if s.BidPrice != nil {
		q.Bid = *s.BidPrice
	}
	if s.AskPrice != nil {
		q.Ask = *s.AskPrice
	}
	if s.MarkIV != nil {
		// Deribit reports implied vol in percent.
		q.ImpliedVol = *s.MarkIV / 100
	}
	return q, nil
}

// baseCurrency strips a quote suffix from symbols like BTCUSDT.
func baseCurrency(symbol string) string {
	upper := strings.ToUpper(symbol)
	for _, suffix := range []string{"USDT", "USDC", "USD", "-PERPETUAL"} {
		upper = strings.TrimSuffix(upper, suffix)
	}
	if upper == "" {
		return strings.ToUpper(symbol)
	}
	return upper
}

package domain

import "time"

// Candle is a single daily OHLCV data point from the historical oracle.
type Candle struct {
	Timestamp time.Time // Start of the trading day (ascending in a series)
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

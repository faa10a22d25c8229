package risk

// MaxDrawdown reports the maximum peak-to-trough drawdown of an ordered
// equity curve as a fraction: at each point, drawdown = (peak - value)/peak
// against the running peak. Empty and single-point series have no drawdown.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	peak := equity[0]
	maxDD := 0.0
	for _, v := range equity[1:] {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

package risk

import (
	"fmt"
	"strings"
)

// Report renders a risk snapshot as deterministic text. The consuming chat
// layer displays this string verbatim: field order and rounding are part of
// the contract, so any change here is a breaking change for that layer.
func Report(s Snapshot) string {
	if s.NumPositions == 0 {
		return "No positions - no risk to report."
	}

	var b strings.Builder
	b.WriteString("=== PORTFOLIO RISK REPORT ===\n")
	fmt.Fprintf(&b, "Total Delta: %+.4f\n", s.Exposure.Total)
	fmt.Fprintf(&b, "Total Notional: $%.2f\n", s.TotalNotional)
	fmt.Fprintf(&b, "Unrealized P&L: $%+.2f\n", s.UnrealizedPnL)
	fmt.Fprintf(&b, "95%% VaR: $%.2f\n", s.VaR95)
	fmt.Fprintf(&b, "Number of Positions: %d\n", s.NumPositions)
	b.WriteString("\n")
	b.WriteString("Delta Exposure by Type:\n")
	fmt.Fprintf(&b, "  Spot: %+.4f\n", s.Exposure.Spot)
	fmt.Fprintf(&b, "  Perpetual: %+.4f\n", s.Exposure.Perpetual)
	fmt.Fprintf(&b, "  Options: %+.4f\n", s.Exposure.Option)
	if s.Exposure.Breached {
		b.WriteString("  !! delta threshold breached\n")
	}
	b.WriteString("\n")
	b.WriteString("Concentration Risk:\n")
	fmt.Fprintf(&b, "  Largest Position: %.1f%%\n", s.Concentration.LargestShare*100)
	fmt.Fprintf(&b, "  Top 3 Concentration: %.1f%%", s.Concentration.Top3Share*100)
	return b.String()
}

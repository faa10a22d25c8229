// Package notify renders portfolio state as console tables.
package notify

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"quanthedge/internal/correlation"
	"quanthedge/internal/domain"
	"quanthedge/internal/hedge"
	"quanthedge/internal/risk"
	"quanthedge/internal/stress"
)

// Console writes formatted tables to a writer, usually stdout.
type Console struct {
	w io.Writer
}

// NewConsole returns a renderer targeting the given writer.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Positions renders the open book with live marks.
func (c *Console) Positions(positions []*domain.Position, prices map[string]float64) {
	fmt.Fprintln(c.w, "\nOPEN POSITIONS")
	table := tablewriter.NewTable(c.w)
	table.Header("Symbol", "Kind", "Quantity", "Entry", "Mark", "Unrealized P&L")
	for _, p := range positions {
		mark, ok := prices[p.Symbol]
		markCell, pnlCell := "-", "-"
		if ok {
			markCell = formatFloat(mark, 2)
			pnlCell = formatFloat(p.UnrealizedPnL(mark), 2)
		}
		table.Append([]string{
			p.Symbol,
			string(p.Kind),
			formatFloat(p.Quantity, 4),
			formatFloat(p.EntryPrice, 2),
			markCell,
			pnlCell,
		})
	}
	table.Render()
}

// Risk renders the full risk report.
func (c *Console) Risk(s risk.Snapshot) {
	fmt.Fprintln(c.w, risk.Report(s))
}

// Correlation renders the matrix plus any insights.
func (c *Console) Correlation(res *correlation.Result) {
	fmt.Fprintln(c.w, "\nCORRELATION MATRIX")
	table := tablewriter.NewTable(c.w)

	header := make([]string, 0, len(res.Symbols)+1)
	header = append(header, "")
	header = append(header, res.Symbols...)
	table.Header(header)

	for i, sym := range res.Symbols {
		row := make([]string, 0, len(res.Symbols)+1)
		row = append(row, sym)
		for j := range res.Symbols {
			coef := res.Matrix[i][j]
			if math.IsNaN(coef) {
				row = append(row, "n/a")
			} else {
				row = append(row, formatFloat(coef, 2))
			}
		}
		table.Append(row)
	}
	table.Render()

	if res.Highest != nil {
		fmt.Fprintf(c.w, "Most correlated: %s / %s (%.2f), mean %.2f\n",
			res.Highest.SymbolA, res.Highest.SymbolB, res.Highest.Coefficient, res.Mean)
	}
	for _, in := range res.Insights {
		fmt.Fprintf(c.w, "  %s / %s (%.2f): %s\n", in.SymbolA, in.SymbolB, in.Coefficient, in.Note)
	}
}

// Stress renders scenario impacts side by side.
func (c *Console) Stress(impacts []stress.Impact) {
	fmt.Fprintln(c.w, "\nSTRESS SCENARIOS")
	table := tablewriter.NewTable(c.w)
	table.Header("Scenario", "P&L Before", "P&L After", "Change", "VaR After", "Delta After")
	for _, im := range impacts {
		table.Append([]string{
			im.Scenario.Name,
			formatFloat(im.Before.PnL, 2),
			formatFloat(im.After.PnL, 2),
			formatFloat(im.PnLChange(), 2),
			formatFloat(im.After.VaR, 2),
			formatFloat(im.After.Delta, 4),
		})
	}
	table.Render()
}

// Hedges renders ranked hedge recommendations.
func (c *Console) Hedges(ranked []hedge.Ranked) {
	fmt.Fprintln(c.w, "\nHEDGE RECOMMENDATIONS")
	table := tablewriter.NewTable(c.w)
	table.Header("Hedge", "Score", "Delta Before", "Delta After", "Cost")
	for _, r := range ranked {
		table.Append([]string{
			r.Candidate.Name,
			formatFloat(r.Score.Total, 3),
			formatFloat(r.Candidate.DeltaBefore, 4),
			formatFloat(r.Candidate.DeltaAfter, 4),
			formatFloat(r.Candidate.Cost.Total(), 2),
		})
	}
	table.Render()
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

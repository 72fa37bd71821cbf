package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// FormatSummary renders per-symbol summaries and the run total as a text table.
func FormatSummary(runID string, startedAt time.Time, parts []Summary, total Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Backtest %s | %s\n\n", runID, startedAt.UTC().Format("2006-01-02 15:04")))

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"Symbol", "Bars", "Trades", "Win %", "Net P&L", "PF", "Avg Ret", "Max DD", "Stops", "Faults"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range parts {
		table.Append(row(s.Symbol, s))
	}
	table.SetFooter(row("TOTAL", total))
	table.Render()

	if total.Trades == 0 {
		b.WriteString("\nno closed trades\n")
	}
	return b.String()
}

func row(label string, s Summary) []string {
	pf := "-"
	if s.ProfitFactor > 0 {
		pf = fmt.Sprintf("%.2f", s.ProfitFactor)
	}
	return []string{
		label,
		fmt.Sprintf("%d", s.Bars),
		fmt.Sprintf("%d", s.Trades),
		fmt.Sprintf("%.1f", s.WinRate*100),
		fmt.Sprintf("%+.2f", s.NetPnL),
		pf,
		fmt.Sprintf("%+.2f%%", s.MeanReturn*100),
		fmt.Sprintf("%.2f%%", s.MaxDrawdown*100),
		fmt.Sprintf("%d", s.StopExits),
		fmt.Sprintf("%d", s.Faults),
	}
}

package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText prints one line per report followed by the profile summary.
func WriteText(w io.Writer, b Backtest) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tPROFILE\tSTRATEGY %\tBUY&HOLD %\tALPHA\tTRADES\tWIN RATE\tAVG DAYS\tMAX DD %\t")
	for _, r := range b.Reports {
		open := ""
		if r.OpenPosition {
			open = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%+.2f\t%d%s\t%.0f%%\t%.1f\t%.2f\t\n",
			r.Symbol, r.Profile, r.StrategyReturnPct, r.BaselineReturnPct, r.Alpha,
			r.TotalTrades, open, r.WinRate*100, r.AvgHoldingDays, r.MaxDrawdownPct)
	}
	if len(b.Summaries) > 0 {
		fmt.Fprintln(tw, "\t\t\t\t\t\t\t\t\t")
		fmt.Fprintln(tw, "PROFILE\tSYMBOLS\tAVG ALPHA\tBEATING\t")
		for _, s := range b.Summaries {
			fmt.Fprintf(tw, "%s\t%d\t%+.2f\t%d/%d\t\n", s.Profile, s.Symbols, s.AvgAlpha, s.Beating, s.Symbols)
		}
	}
	return tw.Flush()
}

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"TazeAI/internal/domain/models"
)

// SummarySheet is the first sheet of the workbook.
const SummarySheet = "Resumo"

const maxSheetName = 31

var summaryHeader = []interface{}{
	"Symbol", "Profile", "From", "To", "Initial", "Final strategy", "Final baseline",
	"Strategy %", "Baseline %", "Alpha", "Trades", "Win rate", "Avg trade %",
	"Avg holding days", "Max drawdown %", "Open position", "Zero-filled features",
}

// Backtest is the content of one exported run.
type Backtest struct {
	GeneratedAt time.Time
	Reports     []*models.BacktestReport
	Summaries   []models.ProfileSummary
}

// WriteXLSX renders a summary sheet, the per-profile averages and one equity
// curve sheet per (symbol, profile) report.
func WriteXLSX(w io.Writer, b Backtest) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	if !b.GeneratedAt.IsZero() {
		if err := setRow(f, SummarySheet, row, "Generated at", b.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		row += 2
	}
	if err := setRow(f, SummarySheet, row, summaryHeader...); err != nil {
		return err
	}
	if err := styleRow(f, SummarySheet, row, len(summaryHeader), bold); err != nil {
		return err
	}
	for _, r := range b.Reports {
		row++
		if err := setRow(f, SummarySheet, row,
			r.Symbol, r.Profile, r.From.Format("2006-01-02"), r.To.Format("2006-01-02"),
			r.InitialCapital, r.FinalStrategyValue, r.FinalBaselineValue,
			r.StrategyReturnPct, r.BaselineReturnPct, r.Alpha, r.TotalTrades,
			r.WinRate, r.AvgTradeReturn*100, r.AvgHoldingDays, r.MaxDrawdownPct,
			r.OpenPosition, len(r.MissingFeatures),
		); err != nil {
			return err
		}
	}

	if len(b.Summaries) > 0 {
		row += 2
		if err := setRow(f, SummarySheet, row, "Profile", "Symbols", "Avg alpha", "Beating baseline"); err != nil {
			return err
		}
		if err := styleRow(f, SummarySheet, row, 4, bold); err != nil {
			return err
		}
		for _, s := range b.Summaries {
			row++
			if err := setRow(f, SummarySheet, row, s.Profile, s.Symbols, s.AvgAlpha, s.Beating); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "Q", 14); err != nil {
		return err
	}

	used := map[string]bool{SummarySheet: true}
	for _, r := range b.Reports {
		name := SheetName(r.Symbol, r.Profile, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
		if err := writeCurve(f, name, r, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// SaveXLSX writes the workbook to path, creating parent directories.
func SaveXLSX(path string, b Backtest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteXLSX(out, b); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeCurve(f *excelize.File, sheet string, r *models.BacktestReport, style int) error {
	if err := setRow(f, sheet, 1, "Date", "Score", "Strategy", "Baseline"); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 1, 4, style); err != nil {
		return err
	}
	for i, p := range r.Curve {
		if err := setRow(f, sheet, i+2, p.Date.Format("2006-01-02"), p.Score, p.Strategy, p.Baseline); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "D", 14)
}

func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// SheetName builds a unique, Excel-safe sheet name for a report.
func SheetName(symbol, profile string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, symbol+" "+profile)
	base = truncate(base, maxSheetName)
	name := base
	for i := 2; used[name]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[name] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

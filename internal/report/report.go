// Package report writes forecast series and position books to disk as
// JSON and CSV for spreadsheets and charts.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/deflationproof/wheelcast/internal/forecast"
	"github.com/deflationproof/wheelcast/internal/position"
)

// WriteForecastJSON writes the full result to forecast.json in outdir.
func WriteForecastJSON(res *forecast.Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "forecast.json"), b, 0644)
}

// WriteCombinedJSON writes a combined result to forecast_combined.json.
func WriteCombinedJSON(res *forecast.CombinedResult, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "forecast_combined.json"), b, 0644)
}

// WriteForecastCSV writes the monthly series to forecast.csv in outdir.
func WriteForecastCSV(series []forecast.MonthlyProjection, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "forecast.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"month", "date", "gross_income", "tax_reserve", "strategic_reserve",
		"net_income", "total_liquidity", "buying_power", "contracts", "year_tax_fund"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, m := range series {
		row := []string{
			fmt.Sprintf("%d", m.Month),
			m.Date.Format("2006-01"),
			fmt.Sprintf("%.2f", m.GrossIncome),
			fmt.Sprintf("%.2f", m.TaxReserve),
			fmt.Sprintf("%.2f", m.StrategicReserve),
			fmt.Sprintf("%.2f", m.NetIncome),
			fmt.Sprintf("%.2f", m.TotalLiquidity),
			fmt.Sprintf("%.2f", m.BuyingPower),
			fmt.Sprintf("%d", m.Contracts),
			fmt.Sprintf("%.2f", m.YearTaxFund),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WritePositionsCSV exports a position book with unrealized P/L columns.
// now stamps the export_date column so the output is reproducible.
func WritePositionsCSV(positions []position.Position, outdir string, now time.Time) error {
	f, err := os.Create(filepath.Join(outdir, fmt.Sprintf("positions_%s.csv", now.Format("2006-01-02_150405"))))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	headers := []string{"symbol", "position_type", "strike_price", "current_price", "quantity",
		"credit_received", "expiration_date", "current_option_price", "unrealized_pl", "pl_pct", "export_date"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, p := range positions {
		unrealized := (p.CreditReceived - p.CurrentOptionPrice) * float64(p.Quantity) * 100
		sideLabel := "Short Put"
		if p.Side.IsCall() {
			sideLabel = "Short Call"
		}
		row := []string{
			p.Symbol,
			sideLabel,
			fmt.Sprintf("%.2f", p.Strike),
			fmt.Sprintf("%.2f", p.UnderlyingPrice),
			fmt.Sprintf("%d", p.Quantity),
			fmt.Sprintf("%.2f", p.CreditReceived),
			p.Expiration.Format("2006-01-02"),
			fmt.Sprintf("%.2f", p.CurrentOptionPrice),
			fmt.Sprintf("%.2f", unrealized),
			fmt.Sprintf("%.2f%%", p.ProfitPct()),
			now.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

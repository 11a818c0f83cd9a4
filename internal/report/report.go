// Package report renders chart results as plain text for the terminal and chat.
package report

import (
	"fmt"
	"sort"
	"strings"

	"TigerChart/internal/model"
)

// DefaultRows is how many of the most recent rows the table shows.
const DefaultRows = 10

var columnLabels = map[string]string{
	model.ColumnMA:  "MA",
	model.ColumnRSI: "RSI",
	model.ColumnRMI: "RMI",
}

// Format renders the snapshot followed by the last rows of the table.
func Format(res *model.ChartResult, rows int) string {
	var b strings.Builder
	b.WriteString(FormatSnapshot(res.Symbol, res.Snapshot))
	if res.Table != nil {
		b.WriteString("\n")
		b.WriteString(FormatTable(res.Table, rows))
	}
	return b.String()
}

// FormatSnapshot formats the latest-bar summary.
func FormatSnapshot(symbol string, snap *model.Snapshot) string {
	if snap == nil {
		return fmt.Sprintf("%s: no snapshot\n", symbol)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 %s | %s\n\n", symbol, snap.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %s (prev %s)\n", snap.LatestClose.StringFixed(2), snap.PreviousClose.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Change: %s (%s%%)\n", signed(snap.ChangeAbs.StringFixed(2)), signed(snap.ChangePct.StringFixed(2))))

	parts := make([]string, 0, len(snap.Indicators))
	for _, name := range sortedColumns(snap.Indicators) {
		parts = append(parts, fmt.Sprintf("%s: %s", label(name), value(snap.Indicators[name])))
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Period range: %.2f ~ %.2f\n", snap.PeriodLow, snap.PeriodHigh))
	return b.String()
}

// FormatTable lists the last n rows, newest first.
func FormatTable(table *model.EnrichedTable, n int) string {
	if n <= 0 || n > table.Len() {
		n = table.Len()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %12s %12s %12s %12s %12s", "Date", "Open", "High", "Low", "Close", "Volume"))
	for _, name := range table.Order {
		b.WriteString(fmt.Sprintf(" %10s", label(name)))
	}
	b.WriteString("\n")

	for i := table.Len() - 1; i >= table.Len()-n; i-- {
		bar := table.Bars[i]
		b.WriteString(fmt.Sprintf("%-10s %12.2f %12.2f %12.2f %12.2f %12d",
			bar.Date.Format("2006-01-02"), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume))
		for _, name := range table.Order {
			b.WriteString(fmt.Sprintf(" %10s", value(table.Value(name, i))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func signed(s string) string {
	if strings.HasPrefix(s, "-") || strings.Trim(s, "0.") == "" {
		return s
	}
	return "+" + s
}

func label(name string) string {
	if l, ok := columnLabels[name]; ok {
		return l
	}
	return strings.ToUpper(name)
}

func value(v *float64) string {
	if v == nil {
		return "no data"
	}
	return fmt.Sprintf("%.2f", *v)
}

// sortedColumns orders snapshot indicators as ma, rsi, rmi, then any others by name.
func sortedColumns(ind map[string]*float64) []string {
	out := make([]string, 0, len(ind))
	for _, name := range []string{model.ColumnMA, model.ColumnRSI, model.ColumnRMI} {
		if _, ok := ind[name]; ok {
			out = append(out, name)
		}
	}
	var rest []string
	for name := range ind {
		if _, known := columnLabels[name]; !known {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

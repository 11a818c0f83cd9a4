package calculator

import (
	"fmt"

	"TigerChart/internal/model"
)

// Params configures the indicator columns computed by Enrich.
type Params struct {
	MAWindow     int
	RSIPeriod    int
	RMILag       int
	RMISmoothing int
	Flat         FlatPolicy
}

// DefaultParams returns the chart's standard indicator settings.
func DefaultParams() Params {
	return Params{
		MAWindow:     DefaultMAWindow,
		RSIPeriod:    DefaultRSIPeriod,
		RMILag:       DefaultRMILag,
		RMISmoothing: DefaultRMISmoothing,
		Flat:         FlatNeutral,
	}
}

// Enrich computes the moving average, RSI and RMI columns over the full series.
func Enrich(series model.PriceSeries, p Params) (*model.EnrichedTable, error) {
	closes := series.Closes()
	table := model.NewEnrichedTable(series)

	ma, err := MovingAverage(closes, p.MAWindow)
	if err != nil {
		return nil, fmt.Errorf("moving average: %w", err)
	}
	rsi, err := RSI(closes, p.RSIPeriod, p.Flat)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	rmi, err := RMI(closes, p.RMILag, p.RMISmoothing, p.Flat)
	if err != nil {
		return nil, fmt.Errorf("rmi: %w", err)
	}

	for _, col := range []struct {
		name   string
		values []float64
	}{
		{model.ColumnMA, ma},
		{model.ColumnRSI, rsi},
		{model.ColumnRMI, rmi},
	} {
		if err := table.AddColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

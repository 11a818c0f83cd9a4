package model

import (
	"errors"
	"fmt"
	"time"
)

// Bar represents a single daily candlestick.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries holds the daily bars of one instrument in ascending date order.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Validate checks that the series is non-empty with strictly increasing dates.
func (s PriceSeries) Validate() error {
	if len(s.Bars) == 0 {
		return errors.New("price series is empty")
	}
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("bar %d (%s) is not after bar %d (%s)",
				i, s.Bars[i].Date.Format("2006-01-02"), i-1, s.Bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Instrument is one entry of the instrument list.
type Instrument struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned for non-positive windows, periods or lags.
var ErrInvalidParameter = errors.New("invalid indicator parameter")

// DefaultMAWindow is the moving-average window shown on the chart.
const DefaultMAWindow = 20

// MovingAverage computes the trailing simple moving average of closes for every index.
// The first window-1 values are NaN.
func MovingAverage(closes []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: moving average window %d", ErrInvalidParameter, window)
	}
	out := make([]float64, len(closes))
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}

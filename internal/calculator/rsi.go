package calculator

import (
	"fmt"
	"math"
	"strings"
)

// Default oscillator parameters.
const (
	DefaultRSIPeriod    = 14
	DefaultRMILag       = 5
	DefaultRMISmoothing = 10
)

// FlatPolicy decides the oscillator value when average gain and average loss are both zero.
type FlatPolicy int

const (
	// FlatNeutral reports the midpoint 50.
	FlatNeutral FlatPolicy = iota
	// FlatUndefined reports NaN.
	FlatUndefined
)

// ParseFlatPolicy parses "neutral" or "undefined". Empty means neutral.
func ParseFlatPolicy(s string) (FlatPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "neutral":
		return FlatNeutral, nil
	case "undefined":
		return FlatUndefined, nil
	default:
		return FlatNeutral, fmt.Errorf("unknown flat policy %q", s)
	}
}

func (p FlatPolicy) String() string {
	if p == FlatUndefined {
		return "undefined"
	}
	return "neutral"
}

// RSI computes the Relative Strength Index over closes. It is RMI with a lag of one day.
func RSI(closes []float64, period int, policy FlatPolicy) ([]float64, error) {
	return RMI(closes, 1, period, policy)
}

// RMI computes the Relative Momentum Index: gains and losses of the lag-day price change,
// each smoothed by an unadjusted EWMA with alpha = 1/smoothing and seeded with the first value.
// The first lag values are NaN.
func RMI(closes []float64, lag, smoothing int, policy FlatPolicy) ([]float64, error) {
	if lag < 1 {
		return nil, fmt.Errorf("%w: momentum lag %d", ErrInvalidParameter, lag)
	}
	if smoothing < 1 {
		return nil, fmt.Errorf("%w: smoothing period %d", ErrInvalidParameter, smoothing)
	}

	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	// Rows without a lagged price contribute no gain or loss.
	for i := lag; i < n; i++ {
		change := closes[i] - closes[i-lag]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	alpha := 1.0 / float64(smoothing)
	avgGain := ewma(gains, alpha)
	avgLoss := ewma(losses, alpha)

	out := make([]float64, n)
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		out[i] = oscillator(avgGain[i], avgLoss[i], policy)
	}
	return out, nil
}

// ewma applies avg[t] = avg[t-1] + alpha*(x[t]-avg[t-1]) with avg[0] = x[0].
func ewma(xs []float64, alpha float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = out[i-1] + alpha*(xs[i]-out[i-1])
	}
	return out
}

func oscillator(avgGain, avgLoss float64, policy FlatPolicy) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			if policy == FlatUndefined {
				return math.NaN()
			}
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

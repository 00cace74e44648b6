package performance

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/muhtasib/backend/internal/session"
)

// DailyReturns buckets the equity series into fixed one-day windows measured
// from the first point's timestamp, not from midnight.
//
// The first point at or past the current window end closes the window: its
// return against the window-start equity is recorded when non-zero, the window
// advances by exactly one day and that point's equity becomes the new
// window-start equity. A gap spanning several days therefore yields a single
// return, and the following windows catch up one point at a time.
func DailyReturns(equities []session.Equity) ([]float64, error) {
	returns := make([]float64, 0)
	if len(equities) == 0 {
		return returns, nil
	}

	dayStart := equities[0].Time
	dayStartEquity := equities[0].Total.InexactFloat64()

	for _, e := range equities {
		if e.Time.Before(dayStart.Add(day)) {
			continue
		}

		if dayStartEquity == 0 {
			return nil, fmt.Errorf("%w: window starting %s", ErrZeroBaselineEquity, dayStart.Format(time.RFC3339))
		}

		current := e.Total.InexactFloat64()
		if r := (current - dayStartEquity) / dayStartEquity; r != 0 {
			returns = append(returns, r)
		}

		dayStart = dayStart.Add(day)
		dayStartEquity = current
	}

	return returns, nil
}

// MeanStdev returns the arithmetic mean and the population standard deviation
// (divide by N). Both are 0 for an empty slice; Compute rejects that case first.
func MeanStdev(values []float64) (mean, stdev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	if allEqual(values) {
		return values[0], 0
	}

	n := float64(len(values))
	mean = compensatedSum(values, func(v float64) float64 { return v }) / n

	variance := compensatedSum(values, func(v float64) float64 {
		d := v - mean
		return d * d
	}) / n

	return mean, math.Sqrt(variance)
}

// compensatedSum is Neumaier summation of f(v) over values
func compensatedSum(values []float64, f func(float64) float64) float64 {
	var sum, c float64
	for _, v := range values {
		x := f(v)
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			c += (sum - t) + x
		} else {
			c += (x - sum) + t
		}
		sum = t
	}
	return sum + c
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

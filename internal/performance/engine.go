package performance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/muhtasib/backend/internal/session"
)

// DaysPerYear is the annualization base. Calendar effects such as leap years are ignored.
const DaysPerYear = 365.0

const day = 24 * time.Hour

// Summary is the derived performance of one session.
// Built per request and never stored.
type Summary struct {
	Info                   session.Session `json:"info"`
	AnnualRateOfReturn     float64         `json:"annualRateOfReturn"`
	OperatingMargin        float64         `json:"operatingMargin"`
	AnnualTurnover         float64         `json:"annualTurnover"`
	DailyRateOfReturns     []float64       `json:"dailyRateOfReturns"`
	AvgDailyRateOfReturn   float64         `json:"avgDailyRateOfReturn"`
	StdevDailyRateOfReturn float64         `json:"stdevDailyRateOfReturn"`
}

// Engine computes session performance.
// ⭐ SSOT: 성과 지표 계산은 여기서만 (순수 계산기, I/O 없음)
type Engine struct{}

// NewEngine creates a new performance engine
func NewEngine() *Engine {
	return &Engine{}
}

// Compute derives a Summary from a loaded snapshot
func (e *Engine) Compute(snap *session.Snapshot) (*Summary, error) {
	return Compute(snap.Session, snap.Equities, snap.Orders)
}

// Compute derives a Summary from equities ordered by time ascending and orders in any order.
//
// The first equity point is the baseline and the last one the end of the span.
// Elapsed time is counted in whole days and a year is DaysPerYear days.
func Compute(info session.Session, equities []session.Equity, orders []session.Order) (*Summary, error) {
	if len(equities) == 0 {
		return nil, fmt.Errorf("%w: no equity points", ErrInsufficientData)
	}

	start := equities[0]
	end := equities[len(equities)-1]

	if start.Total.IsZero() {
		return nil, fmt.Errorf("%w: at %s", ErrZeroBaselineEquity, start.Time.Format(time.RFC3339))
	}
	if len(equities) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 equity points, got %d", ErrInsufficientData, len(equities))
	}

	days := ElapsedDays(start.Time, end.Time)
	if days <= 0 {
		return nil, fmt.Errorf("%w: %s to %s", ErrDegenerateTimeSpan,
			start.Time.Format(time.RFC3339), end.Time.Format(time.RFC3339))
	}
	years := float64(days) / DaysPerYear

	// decimal until here, one conversion per aggregate
	absoluteReturn := end.Total.Sub(start.Total).InexactFloat64()
	relativeReturn := absoluteReturn / start.Total.InexactFloat64()

	turnoverTotal := Turnover(orders)
	if turnoverTotal.IsZero() {
		return nil, fmt.Errorf("%w: %d orders", ErrNoTurnover, len(orders))
	}
	turnover := turnoverTotal.InexactFloat64()

	daily, err := DailyReturns(equities)
	if err != nil {
		return nil, err
	}
	if len(daily) == 0 {
		return nil, fmt.Errorf("%w: %d equity points over %d days", ErrInsufficientDailySamples, len(equities), days)
	}
	mean, stdev := MeanStdev(daily)

	return &Summary{
		Info:                   info,
		AnnualRateOfReturn:     relativeReturn / years,
		OperatingMargin:        absoluteReturn / turnover,
		AnnualTurnover:         turnover / years,
		DailyRateOfReturns:     daily,
		AvgDailyRateOfReturn:   mean,
		StdevDailyRateOfReturn: stdev,
	}, nil
}

// ElapsedDays counts whole days between from and to, truncating partial days
func ElapsedDays(from, to time.Time) int64 {
	return int64(to.Sub(from) / day)
}

// Turnover sums executedSize * executedPrice over orders that carry both.
// The sum stays exact; callers convert it once.
func Turnover(orders []session.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if notional, ok := o.Notional(); ok {
			total = total.Add(notional)
		}
	}
	return total
}

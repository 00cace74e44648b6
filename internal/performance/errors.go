package performance

import "errors"

// Each error means a statistic is undefined for the given input.
// None of them is ever replaced by 0, NaN or Inf.
var (
	ErrInsufficientData         = errors.New("insufficient equity data")
	ErrDegenerateTimeSpan       = errors.New("equity span shorter than one day")
	ErrNoTurnover               = errors.New("no executed orders, operating margin undefined")
	ErrZeroBaselineEquity       = errors.New("baseline equity is zero")
	ErrInsufficientDailySamples = errors.New("no non-zero daily returns")
)

var undefinedStatistics = []struct {
	err  error
	code string
}{
	{ErrInsufficientData, "insufficient_data"},
	{ErrDegenerateTimeSpan, "degenerate_time_span"},
	{ErrNoTurnover, "no_turnover"},
	{ErrZeroBaselineEquity, "zero_baseline_equity"},
	{ErrInsufficientDailySamples, "insufficient_daily_samples"},
}

// IsUndefinedStatistic reports whether err is one of the engine's domain errors
// as opposed to an infrastructure failure.
func IsUndefinedStatistic(err error) bool {
	return ErrorCode(err) != ""
}

// ErrorCode maps a domain error to a stable snake_case code, "" for anything else
func ErrorCode(err error) string {
	for _, u := range undefinedStatistics {
		if errors.Is(err, u.err) {
			return u.code
		}
	}
	return ""
}

package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
)

var (
	created = time.Date(2022, 3, 14, 8, 0, 0, 0, time.UTC)
	info    = session.Session{
		ID:          uuid.MustParse("5c0f6a1e-9d3b-4b7a-8e21-6f4d2c1b0a99"),
		Name:        "mm-eth",
		Exchange:    "binance",
		LiveTrading: true,
		CreateTime:  created,
	}
)

func TestPrinter_Sessions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).Sessions([]session.Session{info}))

	out := buf.String()
	assert.Contains(t, out, info.ID.String())
	assert.Contains(t, out, "mm-eth")
	assert.Contains(t, out, "binance")
	assert.Contains(t, out, "2022-03-14 08:00:00")
}

func TestPrinter_NoSessions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).Sessions(nil))
	assert.Equal(t, "No sessions\n", buf.String())
}

func TestPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	summary := &performance.Summary{
		Info:                   info,
		AnnualRateOfReturn:     0.25,
		OperatingMargin:        0.0125,
		AnnualTurnover:         18250,
		DailyRateOfReturns:     []float64{0.01, -0.005},
		AvgDailyRateOfReturn:   0.0025,
		StdevDailyRateOfReturn: 0.0075,
	}
	require.NoError(t, NewPrinter(&buf).Summary(summary))

	out := buf.String()
	assert.Contains(t, out, "25.0000%")
	assert.Contains(t, out, "18250.00")
	assert.Contains(t, out, "1.2500%")
	assert.Contains(t, out, "0.7500%")
}

func TestPrinter_Undefined(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := fmt.Errorf("%w: no executed orders", performance.ErrNoTurnover)
	require.NoError(t, p.Undefined(info, err))
	assert.Contains(t, buf.String(), "[no_turnover]")

	assert.Error(t, p.Undefined(info, assert.AnError))
}

func TestPrinter_Orders(t *testing.T) {
	executedAt := created.Add(time.Second)
	orders := []session.Order{
		{
			ID:            uuid.New(),
			Market:        "ETH-USDT",
			Side:          session.SideBuy,
			OrderedSize:   decimal.RequireFromString("0.75"),
			OrderedPrice:  decimal.RequireFromString("3012.5"),
			OrderedTime:   created,
			ExecutedSize:  decimal.NewNullDecimal(decimal.RequireFromString("0.75")),
			ExecutedPrice: decimal.NewNullDecimal(decimal.RequireFromString("3011.9")),
			ExecutedTime:  &executedAt,
		},
		{
			ID:           uuid.New(),
			Market:       "ETH-USDT",
			Side:         session.SideSell,
			OrderedSize:  decimal.RequireFromString("0.5"),
			OrderedPrice: decimal.RequireFromString("3100"),
			OrderedTime:  created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).Orders(orders))

	out := buf.String()
	assert.Contains(t, out, "3011.9")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "2022-03-14 08:00:01")
	assert.Contains(t, out, "-")
}

func TestPrinter_Equities(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).Equities([]session.Equity{
		{Total: decimal.RequireFromString("10000.50"), Time: created},
	}))
	assert.Contains(t, buf.String(), "10000.5")
}

package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session is one trading run, live or simulated.
// Rows are written by the trading engine and are immutable afterwards.
type Session struct {
	ID          uuid.UUID `json:"sessionId"`
	Name        string    `json:"name"`
	Exchange    string    `json:"exchange"`
	LiveTrading bool      `json:"liveTrading"`
	CreateTime  time.Time `json:"createTime"`
}

// Equity is the total account value at a point in time (UTC)
type Equity struct {
	Total decimal.Decimal `json:"total"`
	Time  time.Time       `json:"time"`
}

// Side is the direction of an order
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts the database and wire spellings of a side
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(s)) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	default:
		return "", fmt.Errorf("unknown order side %q", s)
	}
}

// Order is a requested trade and, once filled, its execution.
// Executed* fields are either all set or all absent.
type Order struct {
	ID            uuid.UUID           `json:"orderId"`
	Market        string              `json:"market"`
	Side          Side                `json:"side"`
	OrderedSize   decimal.Decimal     `json:"orderedSize"`
	OrderedPrice  decimal.Decimal     `json:"orderedPrice"`
	OrderedTime   time.Time           `json:"orderedTime"`
	ExecutedSize  decimal.NullDecimal `json:"executedSize"`
	ExecutedPrice decimal.NullDecimal `json:"executedPrice"`
	ExecutedTime  *time.Time          `json:"executedTime"`
}

// Executed reports whether the order carries both an executed size and price.
// ExecutedTime is not consulted: it plays no part in notional value.
func (o Order) Executed() bool {
	return o.ExecutedSize.Valid && o.ExecutedPrice.Valid
}

// Notional returns executedSize * executedPrice, or false when unexecuted
func (o Order) Notional() (decimal.Decimal, bool) {
	if !o.Executed() {
		return decimal.Zero, false
	}
	return o.ExecutedSize.Decimal.Mul(o.ExecutedPrice.Decimal), true
}

// Snapshot is everything loaded for one session, fully materialized
type Snapshot struct {
	Session  Session
	Equities []Equity
	Orders   []Order
}

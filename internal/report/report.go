// Package report renders sessions, series and performance summaries as terminal tables.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
)

const timeLayout = "2006-01-02 15:04:05"

// Printer writes tables to an output stream
// ⭐ SSOT: CLI 출력 포맷은 여기서만
type Printer struct {
	out io.Writer
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Sessions prints the session list
func (p *Printer) Sessions(sessions []session.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(p.out, "No sessions")
		return err
	}

	table := tablewriter.NewWriter(p.out)
	table.Header("Session", "Name", "Exchange", "Live", "Created")
	for _, s := range sessions {
		if err := table.Append(
			s.ID.String(),
			s.Name,
			s.Exchange,
			yesNo(s.LiveTrading),
			s.CreateTime.UTC().Format(timeLayout),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// Summary prints one session's performance
func (p *Printer) Summary(summary *performance.Summary) error {
	fmt.Fprintf(p.out, "\n%s (%s) on %s\n", summary.Info.Name, summary.Info.ID, summary.Info.Exchange)

	table := tablewriter.NewWriter(p.out)
	table.Header("Metric", "Value")
	rows := [][]string{
		{"Annual return", percent(summary.AnnualRateOfReturn)},
		{"Annual turnover", fmt.Sprintf("%.2f", summary.AnnualTurnover)},
		{"Operating margin", percent(summary.OperatingMargin)},
		{"Daily samples", fmt.Sprintf("%d", len(summary.DailyRateOfReturns))},
		{"Daily mean", percent(summary.AvgDailyRateOfReturn)},
		{"Daily stdev", percent(summary.StdevDailyRateOfReturn)},
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return err
		}
	}
	return table.Render()
}

// Undefined prints why a session has no summary yet
func (p *Printer) Undefined(info session.Session, err error) error {
	code := performance.ErrorCode(err)
	if code == "" {
		return errors.New("report: not an undefined statistic")
	}
	_, werr := fmt.Fprintf(p.out, "%s (%s): performance undefined [%s] %v\n", info.Name, info.ID, code, err)
	return werr
}

// Equities prints an equity page
func (p *Printer) Equities(equities []session.Equity) error {
	table := tablewriter.NewWriter(p.out)
	table.Header("Time", "Total")
	for _, e := range equities {
		if err := table.Append(e.Time.UTC().Format(timeLayout), e.Total.String()); err != nil {
			return err
		}
	}
	return table.Render()
}

// Orders prints an order page. Unexecuted fields are shown as "-".
func (p *Printer) Orders(orders []session.Order) error {
	table := tablewriter.NewWriter(p.out)
	table.Header("Ordered", "Market", "Side", "Size", "Price", "Exec Size", "Exec Price", "Executed")
	for _, o := range orders {
		execSize, execPrice, execTime := "-", "-", "-"
		if o.ExecutedSize.Valid {
			execSize = o.ExecutedSize.Decimal.String()
		}
		if o.ExecutedPrice.Valid {
			execPrice = o.ExecutedPrice.Decimal.String()
		}
		if o.ExecutedTime != nil {
			execTime = o.ExecutedTime.UTC().Format(timeLayout)
		}

		if err := table.Append(
			o.OrderedTime.UTC().Format(timeLayout),
			o.Market,
			string(o.Side),
			o.OrderedSize.String(),
			o.OrderedPrice.String(),
			execSize,
			execPrice,
			execTime,
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// Elapsed prints a footer line with command duration
func (p *Printer) Elapsed(started time.Time) {
	fmt.Fprintf(p.out, "\n(%.2fs)\n", time.Since(started).Seconds())
}

func percent(v float64) string {
	return fmt.Sprintf("%.4f%%", v*100)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

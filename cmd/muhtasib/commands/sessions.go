package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/report"
)

var (
	sessionsCmd = &cobra.Command{
		Use:   "sessions",
		Short: "세션 목록 조회",
		Args:  cobra.NoArgs,
		RunE:  runSessions,
	}

	reportCmd = &cobra.Command{
		Use:   "report [session_id]",
		Short: "세션 성과 리포트",
		Long: `세션의 연환산 수익률, 회전율, 영업이익률, 일간 수익률 통계를 계산합니다.

Example:
  go run ./cmd/muhtasib report 3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	equityCmd = &cobra.Command{
		Use:   "equity [session_id]",
		Short: "세션 자산 곡선 조회",
		Args:  cobra.ExactArgs(1),
		RunE:  runEquity,
	}

	ordersCmd = &cobra.Command{
		Use:   "orders [session_id]",
		Short: "세션 주문 내역 조회",
		Args:  cobra.ExactArgs(1),
		RunE:  runOrders,
	}

	pageStart int
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(equityCmd)
	rootCmd.AddCommand(ordersCmd)

	equityCmd.Flags().IntVar(&pageStart, "start", 0, "offset of the first row")
	ordersCmd.Flags().IntVar(&pageStart, "start", 0, "offset of the first row")
}

func runSessions(cmd *cobra.Command, args []string) error {
	started := time.Now()
	ctx := cmd.Context()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sessions, err := a.loader.Sessions(ctx)
	if err != nil {
		return err
	}

	p := report.NewPrinter(os.Stdout)
	if err := p.Sessions(sessions); err != nil {
		return err
	}
	p.Elapsed(started)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	started := time.Now()
	ctx := cmd.Context()

	id, err := parseSessionID(args[0])
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.loader.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	p := report.NewPrinter(os.Stdout)
	summary, err := a.engine.Compute(snap)
	if performance.IsUndefinedStatistic(err) {
		return p.Undefined(snap.Session, err)
	}
	if err != nil {
		return err
	}

	if err := p.Summary(summary); err != nil {
		return err
	}
	p.Elapsed(started)
	return nil
}

func runEquity(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseSessionID(args[0])
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	equities, err := a.loader.Equities(ctx, id, pageStart)
	if err != nil {
		return err
	}
	return report.NewPrinter(os.Stdout).Equities(equities)
}

func runOrders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseSessionID(args[0])
	if err != nil {
		return err
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	orders, err := a.loader.Orders(ctx, id, pageStart)
	if err != nil {
		return err
	}
	return report.NewPrinter(os.Stdout).Orders(orders)
}

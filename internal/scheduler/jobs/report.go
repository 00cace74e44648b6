package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
	"github.com/wonny/muhtasib/backend/pkg/logger"
)

// SessionSource lists sessions and loads their snapshots. *session.Loader satisfies it.
type SessionSource interface {
	Sessions(ctx context.Context) ([]session.Session, error)
	Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error)
}

// SummaryComputer derives performance from a snapshot
type SummaryComputer interface {
	Compute(snap *session.Snapshot) (*performance.Summary, error)
}

// SessionReportJob recomputes every session's performance and logs the headline numbers
// ⭐ SSOT: 정기 성과 리포트 작업
type SessionReportJob struct {
	source   SessionSource
	engine   SummaryComputer
	logger   *logger.Logger
	schedule string
	liveOnly bool
}

// NewSessionReportJob creates a new session report job
func NewSessionReportJob(source SessionSource, engine SummaryComputer, log *logger.Logger, schedule string, liveOnly bool) *SessionReportJob {
	return &SessionReportJob{
		source:   source,
		engine:   engine,
		logger:   log,
		schedule: schedule,
		liveOnly: liveOnly,
	}
}

// Name returns the job name
func (j *SessionReportJob) Name() string {
	return "session_report"
}

// Schedule returns the cron schedule
func (j *SessionReportJob) Schedule() string {
	return j.schedule
}

// Run executes the job.
// Sessions whose statistics are undefined are logged and skipped. Infrastructure failures are joined into the result.
func (j *SessionReportJob) Run(ctx context.Context) error {
	sessions, err := j.source.Sessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	var (
		errs      []error
		reported  int
		undefined int
	)
	for _, info := range sessions {
		if j.liveOnly && !info.LiveTrading {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		log := j.logger.WithSession(info.ID).WithField("name", info.Name)

		snap, err := j.source.Load(ctx, info.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("load session %s: %w", info.ID, err))
			continue
		}

		summary, err := j.engine.Compute(snap)
		if performance.IsUndefinedStatistic(err) {
			undefined++
			log.WithField("code", performance.ErrorCode(err)).Debug("Performance undefined")
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("compute session %s: %w", info.ID, err))
			continue
		}

		reported++
		log.WithFields(map[string]interface{}{
			"annual_return":    summary.AnnualRateOfReturn,
			"annual_turnover":  summary.AnnualTurnover,
			"operating_margin": summary.OperatingMargin,
			"daily_avg":        summary.AvgDailyRateOfReturn,
			"daily_stdev":      summary.StdevDailyRateOfReturn,
		}).Info("Session performance")
	}

	j.logger.WithFields(map[string]interface{}{
		"sessions":  len(sessions),
		"reported":  reported,
		"undefined": undefined,
		"failed":    len(errs),
	}).Info("Session report finished")

	return errors.Join(errs...)
}

package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
	"github.com/wonny/muhtasib/backend/pkg/config"
	"github.com/wonny/muhtasib/backend/pkg/logger"
)

var (
	goodID    = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	flatID    = uuid.MustParse("22222222-2222-4222-8222-222222222222")
	brokenID  = uuid.MustParse("33333333-3333-4333-8333-333333333333")
	paperID   = uuid.MustParse("44444444-4444-4444-8444-444444444444")
	startedAt = time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
)

type fakeSource struct {
	sessions []session.Session
	listErr  error
	loaded   []uuid.UUID
}

func (f *fakeSource) Sessions(ctx context.Context) ([]session.Session, error) {
	return f.sessions, f.listErr
}

func (f *fakeSource) Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error) {
	f.loaded = append(f.loaded, id)

	if id == brokenID {
		return nil, errors.New("connection reset")
	}

	size := decimal.NewNullDecimal(decimal.NewFromInt(1))
	price := decimal.NewNullDecimal(decimal.NewFromInt(100))
	snap := &session.Snapshot{
		Session: session.Session{ID: id},
		Equities: []session.Equity{
			{Total: decimal.NewFromInt(1000), Time: startedAt},
			{Total: decimal.NewFromInt(1100), Time: startedAt.Add(48 * time.Hour)},
		},
		Orders: []session.Order{{ID: uuid.New(), Side: session.SideSell, ExecutedSize: size, ExecutedPrice: price}},
	}
	if id == flatID {
		snap.Orders = nil
	}
	return snap, nil
}

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithWriter(&config.Config{LogLevel: "debug", Env: "development"}, buf)
}

func TestSessionReportJob_Run(t *testing.T) {
	source := &fakeSource{sessions: []session.Session{
		{ID: goodID, Name: "grid", LiveTrading: true},
		{ID: flatID, Name: "idle", LiveTrading: true},
	}}
	var buf bytes.Buffer
	job := NewSessionReportJob(source, performance.NewEngine(), testLogger(&buf), "@daily", false)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []uuid.UUID{goodID, flatID}, source.loaded)
	assert.Contains(t, buf.String(), "Session performance")
	assert.Contains(t, buf.String(), `"code":"no_turnover"`)
	assert.Contains(t, buf.String(), `"reported":1`)
	assert.Contains(t, buf.String(), `"undefined":1`)
}

func TestSessionReportJob_JoinsInfrastructureErrors(t *testing.T) {
	source := &fakeSource{sessions: []session.Session{
		{ID: brokenID, Name: "broken"},
		{ID: goodID, Name: "grid"},
	}}
	job := NewSessionReportJob(source, performance.NewEngine(), logger.Nop(), "@daily", false)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), brokenID.String())
	assert.Len(t, source.loaded, 2, "one failure must not stop the run")
}

func TestSessionReportJob_LiveOnly(t *testing.T) {
	source := &fakeSource{sessions: []session.Session{
		{ID: paperID, Name: "paper", LiveTrading: false},
		{ID: goodID, Name: "live", LiveTrading: true},
	}}
	job := NewSessionReportJob(source, performance.NewEngine(), logger.Nop(), "@hourly", true)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, []uuid.UUID{goodID}, source.loaded)
	assert.Equal(t, "session_report", job.Name())
	assert.Equal(t, "@hourly", job.Schedule())
}

func TestSessionReportJob_ListFailure(t *testing.T) {
	source := &fakeSource{listErr: errors.New("pool closed")}
	job := NewSessionReportJob(source, performance.NewEngine(), logger.Nop(), "@daily", false)

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list sessions")
}

func TestSessionReportJob_Canceled(t *testing.T) {
	source := &fakeSource{sessions: []session.Session{{ID: goodID}}}
	job := NewSessionReportJob(source, performance.NewEngine(), logger.Nop(), "@daily", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := job.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, source.loaded)
}

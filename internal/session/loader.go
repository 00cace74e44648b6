package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/muhtasib/backend/pkg/logger"
)

// Store is the read contract the loader needs. *Repository satisfies it.
type Store interface {
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	GetEquities(ctx context.Context, id uuid.UUID, offset int) ([]Equity, error)
	GetOrders(ctx context.Context, id uuid.UUID, offset int) ([]Order, error)
}

// MetadataCache caches immutable session metadata.
// found=false with a nil error is a miss.
type MetadataCache interface {
	GetSession(ctx context.Context, id uuid.UUID) (*Session, bool, error)
	SetSession(ctx context.Context, s *Session) error
}

// Loader materializes a Snapshot for one session
type Loader struct {
	store  Store
	cache  MetadataCache // optional
	logger *logger.Logger
}

// NewLoader creates a loader. cache may be nil.
func NewLoader(store Store, cache MetadataCache, log *logger.Logger) *Loader {
	return &Loader{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// Load fetches metadata, all equities and all orders concurrently and waits for all three.
// The first failure cancels the other reads and is returned as-is.
func (l *Loader) Load(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	var (
		info     *Session
		equities []Equity
		orders   []Order
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		info, err = l.Session(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		equities, err = l.store.GetEquities(gctx, id, 0)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = l.store.GetOrders(gctx, id, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.WithSession(id).WithFields(map[string]interface{}{
		"equities": len(equities),
		"orders":   len(orders),
	}).Debug("Session snapshot loaded")

	return &Snapshot{
		Session:  *info,
		Equities: equities,
		Orders:   orders,
	}, nil
}

// Session returns metadata for one session, consulting the cache first
func (l *Loader) Session(ctx context.Context, id uuid.UUID) (*Session, error) {
	if l.cache != nil {
		cached, found, err := l.cache.GetSession(ctx, id)
		if err != nil {
			// cache errors never fail a read
			l.logger.WithSession(id).WithError(err).Warn("Session cache lookup failed")
		} else if found {
			l.logger.Debugf("Session %s served from cache", id)
			return cached, nil
		}
	}

	s, err := l.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.SetSession(ctx, s); err != nil {
			l.logger.WithSession(id).WithError(err).Warn("Session cache store failed")
		}
	}

	return s, nil
}

// Sessions lists all sessions
func (l *Loader) Sessions(ctx context.Context) ([]Session, error) {
	sessions, err := l.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Equities returns one page of equities starting at offset
func (l *Loader) Equities(ctx context.Context, id uuid.UUID, offset int) ([]Equity, error) {
	return l.store.GetEquities(ctx, id, offset)
}

// Orders returns one page of orders starting at offset
func (l *Loader) Orders(ctx context.Context, id uuid.UUID, offset int) ([]Order, error) {
	return l.store.GetOrders(ctx, id, offset)
}

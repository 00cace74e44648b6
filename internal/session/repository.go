package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNegativeOffset  = errors.New("offset must not be negative")
)

// Repository reads sessions, equities and orders from PostgreSQL
// ⭐ SSOT: 세션 데이터 조회는 여기서만 (읽기 전용)
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new session repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const sessionColumns = `session_id, name, exchange, live_trading, create_time`

// ListSessions returns every session, newest first
func (r *Repository) ListSessions(ctx context.Context) ([]Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		ORDER BY create_time DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Name, &s.Exchange, &s.LiveTrading, &s.CreateTime); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// GetSession returns one session's metadata
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE session_id = $1
	`

	var s Session
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Exchange, &s.LiveTrading, &s.CreateTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &s, nil
}

// GetEquities returns a session's equity points ordered by time, skipping the first offset rows
func (r *Repository) GetEquities(ctx context.Context, id uuid.UUID, offset int) ([]Equity, error) {
	if offset < 0 {
		return nil, ErrNegativeOffset
	}

	query := `
		SELECT total, time
		FROM equities
		WHERE session_id = $1
		ORDER BY time ASC
		OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, id, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query equities: %w", err)
	}
	defer rows.Close()

	equities := make([]Equity, 0)
	for rows.Next() {
		var e Equity
		if err := rows.Scan(&e.Total, &e.Time); err != nil {
			return nil, fmt.Errorf("failed to scan equity: %w", err)
		}
		e.Time = e.Time.UTC()
		equities = append(equities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equities: %w", err)
	}

	return equities, nil
}

// GetOrders returns a session's orders ordered by ordered_time, skipping the first offset rows
func (r *Repository) GetOrders(ctx context.Context, id uuid.UUID, offset int) ([]Order, error) {
	if offset < 0 {
		return nil, ErrNegativeOffset
	}

	// side is a postgres enum; read it as text
	query := `
		SELECT
			order_id,
			market,
			side::text,
			ordered_size,
			ordered_price,
			ordered_time,
			executed_size,
			executed_price,
			executed_time
		FROM orders
		WHERE session_id = $1
		ORDER BY ordered_time ASC
		OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, id, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var (
			o    Order
			side string
		)
		err := rows.Scan(
			&o.ID, &o.Market, &side,
			&o.OrderedSize, &o.OrderedPrice, &o.OrderedTime,
			&o.ExecutedSize, &o.ExecutedPrice, &o.ExecutedTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		if o.Side, err = ParseSide(side); err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		o.OrderedTime = o.OrderedTime.UTC()
		if o.ExecutedTime != nil {
			t := o.ExecutedTime.UTC()
			o.ExecutedTime = &t
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

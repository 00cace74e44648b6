package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
	"github.com/wonny/muhtasib/backend/pkg/config"
	"github.com/wonny/muhtasib/backend/pkg/database"
	"github.com/wonny/muhtasib/backend/pkg/logger"
	"github.com/wonny/muhtasib/backend/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	loader *session.Loader
	engine *performance.Engine
}

// bootstrap wires config → logger → database → redis → loader
func bootstrap(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	missing, err := db.MissingTables(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("check tables: %w", err)
	}
	if len(missing) > 0 {
		log.Warnf("Reporting tables not found: %v", missing)
	}

	// 4. Connect to redis (no-op client when disabled)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Repository + metadata cache → loader
	repo := session.NewRepository(db.Pool)
	cache := session.NewRedisCache(rdb, cfg.Redis.SessionTTL)

	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		redis:  rdb,
		loader: session.NewLoader(repo, cache, log),
		engine: performance.NewEngine(),
	}, nil
}

// Close releases connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}

func parseSessionID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid session id %q: %w", arg, err)
	}
	return id, nil
}

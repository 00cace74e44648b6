package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/muhtasib/backend/internal/api/handlers"
	"github.com/wonny/muhtasib/backend/pkg/config"
	"github.com/wonny/muhtasib/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
// Paths match what the frontend requests, so there is no /api prefix.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	sessionHandler *handlers.SessionHandler,
	systemHandler *handlers.SystemHandler,
	limiter RateLimiter,
	cfg config.APIConfig,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	get := []string{http.MethodGet, http.MethodOptions}

	r.HandleFunc("/health", systemHandler.Health).Methods(get...)
	r.HandleFunc("/info", systemHandler.Info).Methods(get...)

	r.HandleFunc("/sessions", sessionHandler.ListSessions).Methods(get...)
	r.HandleFunc("/sessions/{id}/info", sessionHandler.GetInfo).Methods(get...)
	r.HandleFunc("/sessions/{id}/more", sessionHandler.GetSummary).Methods(get...)
	r.HandleFunc("/sessions/{id}/equity/{start:[0-9]+}", sessionHandler.GetEquities).Methods(get...)
	r.HandleFunc("/sessions/{id}/orders/{start:[0-9]+}", sessionHandler.GetOrders).Methods(get...)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods(http.MethodGet)
	}

	// Apply middleware (outermost first)
	r.Use(recoveryMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(rateLimitMiddleware(limiter))
	r.Use(timeoutMiddleware(cfg.RequestTimeout))

	return r
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
	"github.com/wonny/muhtasib/backend/pkg/logger"
)

// SessionReader is the read side the handlers depend on. *session.Loader satisfies it.
type SessionReader interface {
	Sessions(ctx context.Context) ([]session.Session, error)
	Session(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error)
	Equities(ctx context.Context, id uuid.UUID, offset int) ([]session.Equity, error)
	Orders(ctx context.Context, id uuid.UUID, offset int) ([]session.Order, error)
}

// SummaryComputer derives performance from a snapshot. *performance.Engine satisfies it.
type SummaryComputer interface {
	Compute(snap *session.Snapshot) (*performance.Summary, error)
}

// SessionHandler serves session metadata, series and performance summaries
// ⭐ SSOT: 세션 API 핸들러는 이 구조체에서만
type SessionHandler struct {
	reader SessionReader
	engine SummaryComputer
	logger *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(reader SessionReader, engine SummaryComputer, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		reader: reader,
		engine: engine,
		logger: log,
	}
}

// ListSessions returns every session, newest first
// GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.reader.Sessions(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sessions")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}

	respondJSON(w, http.StatusOK, sessions)
}

// GetInfo returns one session's metadata
// GET /sessions/{id}/info
func (h *SessionHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	info, err := h.reader.Session(r.Context(), id)
	if err != nil {
		h.fail(w, id, err, "Failed to retrieve session")
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// GetSummary returns session metadata together with derived performance
// GET /sessions/{id}/more
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	snap, err := h.reader.Load(r.Context(), id)
	if err != nil {
		h.fail(w, id, err, "Failed to load session")
		return
	}

	summary, err := h.engine.Compute(snap)
	if err != nil {
		h.fail(w, id, err, "Failed to compute performance")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetEquities returns equity points from offset {start}
// GET /sessions/{id}/equity/{start}
func (h *SessionHandler) GetEquities(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	offset, ok := startOffset(w, r)
	if !ok {
		return
	}

	equities, err := h.reader.Equities(r.Context(), id, offset)
	if err != nil {
		h.fail(w, id, err, "Failed to retrieve equities")
		return
	}

	respondJSON(w, http.StatusOK, equities)
}

// GetOrders returns orders from offset {start}
// GET /sessions/{id}/orders/{start}
func (h *SessionHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	offset, ok := startOffset(w, r)
	if !ok {
		return
	}

	orders, err := h.reader.Orders(r.Context(), id, offset)
	if err != nil {
		h.fail(w, id, err, "Failed to retrieve orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// fail maps domain and infrastructure errors onto status codes
func (h *SessionHandler) fail(w http.ResponseWriter, id uuid.UUID, err error, message string) {
	log := h.logger.WithSession(id).WithError(err)

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Session not found")
	case performance.IsUndefinedStatistic(err):
		// not enough history yet; the client decides how to render it
		log.Info("Performance undefined for session")
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Code:  performance.ErrorCode(err),
		})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(message)
		respondError(w, http.StatusGatewayTimeout, message)
	default:
		log.Error(message)
		respondError(w, http.StatusInternalServerError, message)
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func startOffset(w http.ResponseWriter, r *http.Request) (int, bool) {
	offset, err := strconv.Atoi(mux.Vars(r)["start"])
	if err != nil || offset < 0 {
		respondError(w, http.StatusBadRequest, "Invalid start offset (expected non-negative integer)")
		return 0, false
	}
	return offset, true
}

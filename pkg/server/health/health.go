package health

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
)

const PING_TIMEOUT = 2 * time.Second

func NewHandler(store Pinger, loggerLevel *slog.LevelVar) *Handler {
	return &Handler{
		store,
		loggerLevel,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/health", h.handleHealthGet)
	mux.HandleFunc("GET /v1/health/log-level", h.handleLogLevelGet)
	mux.HandleFunc("PUT /v1/health/log-level", h.handleLogLevelSet)
}

func (h *Handler) handleHealthGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handleHealthGet")

	ctx, cancel := context.WithTimeout(r.Context(), PING_TIMEOUT)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		utils.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) handleLogLevelGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handleLogLevelGet")

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{Level: h.loggerLevel.Level().String()})
}

// handleLogLevelSet changes the server log level from the "level" query parameter.
func (h *Handler) handleLogLevelSet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleLogLevelSet")
	defer slog.Debug("<<handleLogLevelSet")

	levelStr := r.URL.Query().Get("level")
	if levelStr == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing 'level' parameter", errors.New("missing level"))
		return
	}

	level, err := utils.ParseLogLevel(levelStr)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid 'level' parameter", err)
		return
	}

	h.loggerLevel.Set(level)
	slog.Info("log level changed", "level", level.String())

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{Level: level.String()})
}

package status

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	DEFAULT_STATUS_INTERVAL = 5 * time.Second
	HEARTBEAT_INTERVAL      = 30 * time.Second
)

func NewHandler(store StatusStore, originPatterns []string, interval time.Duration) *Handler {
	if interval <= 0 {
		interval = DEFAULT_STATUS_INTERVAL
	}

	h := Handler{
		store,
		originPatterns,
		interval,
	}

	return &h
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/status", h.handleStatusGet)
	mux.HandleFunc("/v1/status/ws", h.handleStatusWS)
}

func (h *Handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handleStatusGet")

	settings, err := h.store.GetOrCreateSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read the settings", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, databaseToSystemStatus(settings))
}

func (h *Handler) handleStatusWS(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleWS: new incoming connection")
	defer slog.Debug("<<handleWS")

	opts := &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("websocket accept error:", "error", err)
		return
	}

	defer c.Close(websocket.StatusInternalError, "Unexpected connection close")

	ctx := c.CloseRead(r.Context())

	h.monitorStatus(ctx, c)
}

// monitorStatus pushes the settings row to the client until it disconnects.
func (h *Handler) monitorStatus(ctx context.Context, c *websocket.Conn) {
	slog.Debug(">>monitorStatus")
	defer slog.Debug("<<monitorStatus")

	ticker := time.NewTicker(h.interval)
	heartbeatTicker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()
	defer heartbeatTicker.Stop()

	if err := h.writeStatus(ctx, c); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("monitorStatus: client disconnected")
			c.Close(websocket.StatusNormalClosure, "Connection closed")
			return

		case <-ticker.C:
			if err := h.writeStatus(ctx, c); err != nil {
				return
			}

		case <-heartbeatTicker.C:
			err := c.Ping(ctx)
			if err != nil {
				slog.Error("monitorStatus: error sending ping", "error", err)
				c.Close(websocket.StatusInternalError, "error sending ping")
				return
			}
		}
	}
}

func (h *Handler) writeStatus(ctx context.Context, c *websocket.Conn) error {
	settings, err := h.store.GetOrCreateSettings(ctx)
	if err != nil {
		slog.Error("monitorStatus: failed to read the settings", "error", err)
		c.Close(websocket.StatusInternalError, "error reading status")
		return err
	}

	err = wsjson.Write(ctx, c, databaseToSystemStatus(settings))
	if err != nil {
		slog.Error("monitorStatus: error writing to client", "error", err)
		c.Close(websocket.StatusInternalError, "error writing status")
		return err
	}

	return nil
}

func databaseToSystemStatus(db database.StateAndSetting) SystemStatus {
	return SystemStatus{
		AlarmEnabled:    db.AlarmEnabled,
		HeatingEnabled:  db.HeatingEnabled,
		CpuTemp:         db.CpuTemp,
		RamPerc:         db.RamPerc,
		FreeStorage:     db.FreeStorage,
		LastRoomTemp:    db.LastRoomTemp,
		LastHeatingTemp: db.LastHeatingTemp,
		LastUpdate:      db.LastUpdate,
	}
}

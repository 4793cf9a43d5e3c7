package toggles

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
)

const DASHBOARD_PATH = "/dashboard"

func NewHandler(store SettingsStore, events EventSink, m *metrics.Metrics, toggle Toggle) *Handler {
	return &Handler{
		store,
		events,
		m,
		toggle,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	base := fmt.Sprintf("/%s-config", h.toggle.Name)

	mux.HandleFunc("GET "+base+"/get", h.handleConfigGet)
	mux.HandleFunc("GET "+base+"/set", h.handleConfigSetFromDashboard)
	mux.HandleFunc("POST "+base+"/set", h.handleConfigSetFromDevice)
}

// handleConfigGet reports the flag as "{name}_enabled = True|False".
func (h *Handler) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleConfigGet", "toggle", h.toggle.Name)
	defer slog.Debug("<<handleConfigGet", "toggle", h.toggle.Name)

	settings, err := h.store.GetOrCreateSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read the settings", err)
		return
	}

	msg := fmt.Sprintf("%s_enabled = %s", h.toggle.Name, utils.FormatFlag(h.toggle.Get(settings)))
	utils.RespondWithText(w, http.StatusOK, msg)
}

// handleConfigSetFromDevice reads "enabled" from the form body.
func (h *Handler) handleConfigSetFromDevice(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleConfigSetFromDevice", "toggle", h.toggle.Name)
	defer slog.Debug("<<handleConfigSetFromDevice", "toggle", h.toggle.Name)

	if !h.setFlag(w, r, r.PostFormValue("enabled")) {
		return
	}

	utils.RespondWithText(w, http.StatusCreated, "success")
}

// handleConfigSetFromDashboard reads "enabled" from the query string and sends
// the browser back to the dashboard.
func (h *Handler) handleConfigSetFromDashboard(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleConfigSetFromDashboard", "toggle", h.toggle.Name)
	defer slog.Debug("<<handleConfigSetFromDashboard", "toggle", h.toggle.Name)

	if !h.setFlag(w, r, r.URL.Query().Get("enabled")) {
		return
	}

	utils.RespondWithRedirect(w, r, DASHBOARD_PATH)
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request, value string) bool {
	settings, err := h.store.GetOrCreateSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read the settings", err)
		return false
	}

	previous := settings
	enabled := utils.ParseFlag(value)
	h.toggle.Set(&settings, enabled)

	saved, err := h.store.SaveSettings(r.Context(), settings)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to save the settings", err)
		return false
	}

	slog.Info("configuration changed", "toggle", h.toggle.Name, "enabled", enabled)

	h.metrics.ObserveToggle(h.toggle.Name, enabled)
	if h.events != nil {
		h.events.SettingsChanged(previous, saved)
	}

	return true
}

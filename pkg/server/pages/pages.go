package pages

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

func NewHandler(store SettingsStore) *Handler {
	templates := template.Must(template.New("").Funcs(template.FuncMap{
		"flag": utils.FormatFlag,
	}).ParseFS(templateFS, "templates/*.html"))

	return &Handler{
		store,
		templates,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleHello)
	mux.HandleFunc("GET /dashboard", h.handleDashboard)
}

func (h *Handler) handleHello(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handleHello")

	h.render(w, "hello.html", nil)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleDashboard")
	defer slog.Debug("<<handleDashboard")

	settings, err := h.store.GetOrCreateSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read the settings", err)
		return
	}

	h.render(w, "dashboard.html", databaseToDashboardView(settings))
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to render page", err)
		return
	}

	utils.RespondWithString(w, "text/html; charset=utf-8", http.StatusOK, buf.String())
}

func databaseToDashboardView(db database.StateAndSetting) DashboardView {
	return DashboardView{
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

package telemetry

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
)

func NewHandler(store TelemetryStore, events EventSink, m *metrics.Metrics) *Handler {
	return &Handler{
		store,
		events,
		m,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /data-posting", h.handleDataPosting)
}

// handleDataPosting stores the device telemetry. All five fields are parsed
// before anything is written, so a bad post leaves the settings untouched.
func (h *Handler) handleDataPosting(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handleDataPosting")
	defer slog.Debug("<<handleDataPosting")

	reading, err := ParseReading(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "invalid telemetry", err)
		return
	}

	settings, err := h.store.GetOrCreateSettings(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read the settings", err)
		return
	}

	reading.Apply(&settings)

	result, err := h.store.PostTelemetry(r.Context(), settings)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to store the telemetry", err)
		return
	}

	h.metrics.ObserveTelemetry(result.Settings, result.Measurements)
	if h.events != nil {
		h.events.TelemetryRecorded(result)
	}

	utils.RespondWithText(w, http.StatusCreated, "success")
}

// ParseReading reads the telemetry form fields. Every field is required.
func ParseReading(r *http.Request) (Reading, error) {
	var reading Reading

	fields := []struct {
		name  string
		value *float64
	}{
		{"cpu_temp", &reading.CpuTemp},
		{"ram_perc", &reading.RamPerc},
		{"free_storage", &reading.FreeStorage},
		{"room_temp", &reading.RoomTemp},
		{"heating_temp", &reading.HeatingTemp},
	}

	for _, f := range fields {
		raw := r.PostFormValue(f.name)
		if raw == "" {
			return Reading{}, fmt.Errorf("missing field %s", f.name)
		}

		v, err := parseDecimal(raw)
		if err != nil {
			return Reading{}, fmt.Errorf("invalid field %s: %w", f.name, err)
		}

		*f.value = v
	}

	return reading, nil
}

// parseDecimal accepts a finite decimal number. NaN, infinities and hex floats
// are rejected since they cannot be stored and served back as JSON.
func parseDecimal(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if strings.ContainsAny(value, "xX_") {
		return 0, fmt.Errorf("not a decimal number: %q", value)
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", value)
	}

	return v, nil
}

func (reading Reading) Apply(settings *database.StateAndSetting) {
	settings.CpuTemp = reading.CpuTemp
	settings.RamPerc = reading.RamPerc
	settings.FreeStorage = reading.FreeStorage
	settings.LastRoomTemp = reading.RoomTemp
	settings.LastHeatingTemp = reading.HeatingTemp
}

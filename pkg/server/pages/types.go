package pages

import (
	"context"
	"html/template"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
)

type (
	// DashboardView carries every settings field to the dashboard template.
	DashboardView struct {
		AlarmEnabled    bool
		HeatingEnabled  bool
		CpuTemp         float64
		RamPerc         float64
		FreeStorage     float64
		LastRoomTemp    float64
		LastHeatingTemp float64
		LastUpdate      time.Time
	}

	SettingsStore interface {
		GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error)
	}

	Handler struct {
		store     SettingsStore
		templates *template.Template
	}
)

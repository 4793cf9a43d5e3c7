package status

import (
	"context"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
)

type (
	SystemStatus struct {
		AlarmEnabled    bool      `json:"alarm_enabled"`
		HeatingEnabled  bool      `json:"heating_enabled"`
		CpuTemp         float64   `json:"cpu_temp"`
		RamPerc         float64   `json:"ram_perc"`
		FreeStorage     float64   `json:"free_storage"`
		LastRoomTemp    float64   `json:"last_room_temp"`
		LastHeatingTemp float64   `json:"last_heating_temp"`
		LastUpdate      time.Time `json:"last_update"`
	}

	StatusStore interface {
		GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error)
	}

	Handler struct {
		store          StatusStore
		originPatterns []string
		interval       time.Duration
	}
)

package toggles

import (
	"context"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
)

type (
	// Toggle is one on/off flag of the settings row exposed under
	// /{name}-config/get and /{name}-config/set.
	Toggle struct {
		Name string
		Get  func(s database.StateAndSetting) bool
		Set  func(s *database.StateAndSetting, enabled bool)
	}

	SettingsStore interface {
		GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error)
		SaveSettings(ctx context.Context, settings database.StateAndSetting) (database.StateAndSetting, error)
	}

	EventSink interface {
		SettingsChanged(previous, current database.StateAndSetting)
	}

	Handler struct {
		store   SettingsStore
		events  EventSink
		metrics *metrics.Metrics
		toggle  Toggle
	}
)

var (
	ALARM = Toggle{
		Name: "alarm",
		Get:  func(s database.StateAndSetting) bool { return s.AlarmEnabled },
		Set:  func(s *database.StateAndSetting, enabled bool) { s.AlarmEnabled = enabled },
	}

	HEATING = Toggle{
		Name: "heating",
		Get:  func(s database.StateAndSetting) bool { return s.HeatingEnabled },
		Set:  func(s *database.StateAndSetting, enabled bool) { s.HeatingEnabled = enabled },
	}
)

package monitor

import (
	"context"
	"sync"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/store"
)

const EVENT_BUFFER_SIZE = 16

type (
	SettingsTask struct {
		Previous database.StateAndSetting
		Current  database.StateAndSetting
	}

	TelemetryTask struct {
		Result store.TelemetryResult
	}

	NotificationTask struct {
		Message string
	}

	SettingsPublisher interface {
		PublishSettings(ctx context.Context, settings database.StateAndSetting) error
	}

	MeasurementWriter interface {
		WriteMeasurements(ctx context.Context, measurements []database.TemperatureMeasurement) error
	}

	// Notifier is satisfied by *notify.Notify.
	Notifier interface {
		Send(ctx context.Context, subject, message string) error
	}

	// MonitorContext runs the background routines that push saved settings and
	// measurements to the optional sinks. A nil sink is skipped.
	MonitorContext struct {
		wg                *sync.WaitGroup
		ctx               context.Context
		monitorCancelFunc context.CancelFunc

		publisher SettingsPublisher
		writer    MeasurementWriter
		notifier  Notifier

		SettingsCh     chan SettingsTask
		TelemetryCh    chan TelemetryTask
		NotificationCh chan NotificationTask
	}
)

package telemetry

import (
	"context"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
	"github.com/KyleBrandon/rasp-home-server/internal/store"
)

type (
	// Reading is one parsed telemetry post.
	Reading struct {
		CpuTemp     float64
		RamPerc     float64
		FreeStorage float64
		RoomTemp    float64
		HeatingTemp float64
	}

	TelemetryStore interface {
		GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error)
		PostTelemetry(ctx context.Context, settings database.StateAndSetting) (store.TelemetryResult, error)
	}

	EventSink interface {
		TelemetryRecorded(result store.TelemetryResult)
	}

	Handler struct {
		store   TelemetryStore
		events  EventSink
		metrics *metrics.Metrics
	}
)

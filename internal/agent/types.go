package agent

import (
	"net/http"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/sensor"
	"github.com/cenkalti/backoff/v4"
)

type (
	Config struct {
		ServerURL   string
		Interval    time.Duration
		SystemPaths sensor.SystemPaths
	}

	// DesiredConfig is what the server currently asks the device to do.
	DesiredConfig struct {
		AlarmEnabled   bool
		HeatingEnabled bool
	}

	Agent struct {
		cfg        Config
		client     *http.Client
		sensors    sensor.Sensors
		readStats  func(paths sensor.SystemPaths) (sensor.SystemStats, error)
		newBackOff func() backoff.BackOff
	}
)

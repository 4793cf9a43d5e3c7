package config

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/broker"
	"github.com/KyleBrandon/rasp-home-server/internal/sensor"
	"github.com/KyleBrandon/rasp-home-server/internal/store"
	"github.com/KyleBrandon/rasp-home-server/internal/timeseries"
)

const (
	DefaultLogLevel              = slog.LevelInfo
	DEFAULT_STATUS_INTERVAL_SECS = 5
)

type Config struct {
	StateVersion          int                   `json:"state_version"`
	OriginPatterns        []string              `json:"origin_patterns"`
	MqttTopicPrefix       string                `json:"mqtt_topic_prefix"`
	InfluxMeasurement     string                `json:"influx_measurement"`
	StatusIntervalSeconds int                   `json:"status_interval_seconds"`
	Devices               []sensor.DeviceConfig `json:"devices"`
	SensorTimeoutSeconds  int                   `json:"sensor_timeout_seconds"`
}

func DefaultConfig() Config {
	return Config{
		StateVersion:          store.StateVersion,
		MqttTopicPrefix:       broker.DEFAULT_TOPIC_PREFIX,
		InfluxMeasurement:     timeseries.DEFAULT_MEASUREMENT,
		StatusIntervalSeconds: DEFAULT_STATUS_INTERVAL_SECS,
	}
}

// LoadConfigSettings reads the JSON config file over the defaults. A missing
// file is not an error.
func LoadConfigSettings(filename string) (Config, error) {
	config := DefaultConfig()

	file, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "file", filename)
		return config, nil
	}
	if err != nil {
		return config, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return config, err
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, err
	}

	config.applyDefaults()

	return config, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.StateVersion <= 0 {
		c.StateVersion = defaults.StateVersion
	}
	if len(c.MqttTopicPrefix) == 0 {
		c.MqttTopicPrefix = defaults.MqttTopicPrefix
	}
	if len(c.InfluxMeasurement) == 0 {
		c.InfluxMeasurement = defaults.InfluxMeasurement
	}
	if c.StatusIntervalSeconds <= 0 {
		c.StatusIntervalSeconds = defaults.StatusIntervalSeconds
	}
}

func (c Config) StatusInterval() time.Duration {
	return time.Duration(c.StatusIntervalSeconds) * time.Second
}

package timeseries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

const DEFAULT_MEASUREMENT = "temperature"

type (
	Config struct {
		URL         string
		Token       string
		Org         string
		Bucket      string
		Measurement string
	}

	// Writer copies temperature measurements into an InfluxDB bucket. The
	// relational log stays the record of truth; this is a mirror for graphing.
	Writer struct {
		client      influxdb2.Client
		writeAPI    api.WriteAPIBlocking
		measurement string
	}
)

func New(cfg Config) (*Writer, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("influx config incomplete")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	w := NewWriter(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), cfg.Measurement)
	w.client = client

	return w, nil
}

func NewWriter(writeAPI api.WriteAPIBlocking, measurement string) *Writer {
	if measurement == "" {
		measurement = DEFAULT_MEASUREMENT
	}

	return &Writer{
		writeAPI:    writeAPI,
		measurement: measurement,
	}
}

func (w *Writer) WriteMeasurements(ctx context.Context, measurements []database.TemperatureMeasurement) error {
	for _, m := range measurements {
		point := influxdb2.NewPoint(
			w.measurement,
			map[string]string{"place": m.Place},
			map[string]interface{}{"temperature": m.Temperature},
			m.MeasuredAt,
		)

		if err := w.writeAPI.WritePoint(ctx, point); err != nil {
			return fmt.Errorf("write %s measurement to influx: %w", m.Place, err)
		}

		slog.Debug("wrote measurement to influx", "place", m.Place, "temperature", m.Temperature)
	}

	return nil
}

func (w *Writer) Close() {
	if w.client != nil {
		w.client.Close()
	}
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/sensor"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
	"github.com/cenkalti/backoff/v4"
)

const (
	DEFAULT_INTERVAL = 60 * time.Second
	REQUEST_TIMEOUT  = 10 * time.Second
	POST_RETRIES     = 3
)

var ErrServerRejected = errors.New("server rejected the request")

func New(cfg Config, sensors sensor.Sensors) *Agent {
	if cfg.Interval <= 0 {
		cfg.Interval = DEFAULT_INTERVAL
	}

	cfg.ServerURL = strings.TrimSuffix(cfg.ServerURL, "/")

	return &Agent{
		cfg:       cfg,
		client:    &http.Client{Timeout: REQUEST_TIMEOUT},
		sensors:   sensors,
		readStats: sensor.ReadSystemStats,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Run reports on every interval until the context is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	slog.Info(">>Run", "server", a.cfg.ServerURL, "interval", a.cfg.Interval)
	defer slog.Info("<<Run")

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := a.Tick(ctx); err != nil {
			slog.Error("agent cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Tick posts one round of telemetry and then reads back the desired configuration.
func (a *Agent) Tick(ctx context.Context) error {
	slog.Debug(">>Tick")
	defer slog.Debug("<<Tick")

	form, err := a.readTelemetry()
	if err != nil {
		return err
	}

	if err := a.PostTelemetry(ctx, form); err != nil {
		return err
	}

	desired, err := a.FetchConfig(ctx)
	if err != nil {
		return err
	}

	slog.Info("desired configuration", "alarm_enabled", desired.AlarmEnabled, "heating_enabled", desired.HeatingEnabled)

	return nil
}

func (a *Agent) readTelemetry() (url.Values, error) {
	stats, err := a.readStats(a.cfg.SystemPaths)
	if err != nil {
		return nil, fmt.Errorf("read system stats: %w", err)
	}

	room, heating := a.sensors.ReadRoomAndHeatingTemperature()
	if room.Err != nil {
		return nil, fmt.Errorf("read room temperature: %w", room.Err)
	}
	if heating.Err != nil {
		return nil, fmt.Errorf("read heating temperature: %w", heating.Err)
	}

	form := url.Values{}
	form.Set("cpu_temp", formatFloat(stats.CpuTemp))
	form.Set("ram_perc", formatFloat(stats.RamPerc))
	form.Set("free_storage", formatFloat(stats.FreeStorage))
	form.Set("room_temp", formatFloat(room.TemperatureC))
	form.Set("heating_temp", formatFloat(heating.TemperatureC))

	return form, nil
}

// PostTelemetry sends the form to /data-posting, retrying server errors with
// exponential backoff.
func (a *Agent) PostTelemetry(ctx context.Context, form url.Values) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.ServerURL+"/data-posting", strings.NewReader(form.Encode()))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := a.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		io.Copy(io.Discard, resp.Body)

		switch {
		case resp.StatusCode == http.StatusCreated:
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", ErrServerRejected, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: status %d", ErrServerRejected, resp.StatusCode))
		}
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("telemetry post failed, retrying", "error", err, "wait", wait)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(a.newBackOff(), POST_RETRIES), ctx)

	return backoff.RetryNotify(operation, bo, notify)
}

func (a *Agent) FetchConfig(ctx context.Context) (DesiredConfig, error) {
	var desired DesiredConfig

	alarm, err := a.fetchFlag(ctx, "alarm")
	if err != nil {
		return desired, err
	}

	heating, err := a.fetchFlag(ctx, "heating")
	if err != nil {
		return desired, err
	}

	desired.AlarmEnabled = alarm
	desired.HeatingEnabled = heating

	return desired, nil
}

func (a *Agent) fetchFlag(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s-config/get", a.cfg.ServerURL, name), nil)
	if err != nil {
		return false, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", ErrServerRejected, resp.StatusCode)
	}

	return ParseConfigLine(string(body), name+"_enabled")
}

// ParseConfigLine reads a "name = True|False" reply.
func ParseConfigLine(body, name string) (bool, error) {
	key, value, found := strings.Cut(body, "=")
	if !found || strings.TrimSpace(key) != name {
		return false, fmt.Errorf("unexpected config reply %q", body)
	}

	return utils.ParseFlag(strings.TrimSpace(value)), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

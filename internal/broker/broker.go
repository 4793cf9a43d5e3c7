package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	DEFAULT_TOPIC_PREFIX = "home"
	DEFAULT_CLIENT_ID    = "rasp-home-server"

	publishTimeout = 5 * time.Second
	connectRetries = 5
)

type (
	Config struct {
		BrokerURL   string
		ClientID    string
		TopicPrefix string
	}

	// Publisher mirrors the settings row onto retained MQTT topics so a device can
	// subscribe instead of polling.
	Publisher struct {
		client mqtt.Client
		prefix string
	}

	TelemetryMessage struct {
		CpuTemp         float64   `json:"cpu_temp"`
		RamPerc         float64   `json:"ram_perc"`
		FreeStorage     float64   `json:"free_storage"`
		LastRoomTemp    float64   `json:"last_room_temp"`
		LastHeatingTemp float64   `json:"last_heating_temp"`
		LastUpdate      time.Time `json:"last_update"`
	}
)

// Connect dials the broker, retrying with exponential backoff.
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.ClientID == "" {
		cfg.ClientID = DEFAULT_CLIENT_ID
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			slog.Warn("failed to connect to MQTT broker", "broker", cfg.BrokerURL, "error", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, connectRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.BrokerURL, err)
	}

	slog.Info("Connected to MQTT broker", "broker", cfg.BrokerURL)

	return NewPublisher(client, cfg.TopicPrefix), nil
}

func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DEFAULT_TOPIC_PREFIX
	}

	return &Publisher{
		client: client,
		prefix: prefix,
	}
}

func (p *Publisher) Topic(name string) string {
	return p.prefix + "/" + name
}

// PublishSettings sends the desired configuration and the last telemetry snapshot
// as retained messages.
func (p *Publisher) PublishSettings(ctx context.Context, settings database.StateAndSetting) error {
	telemetry, err := json.Marshal(TelemetryMessage{
		CpuTemp:         settings.CpuTemp,
		RamPerc:         settings.RamPerc,
		FreeStorage:     settings.FreeStorage,
		LastRoomTemp:    settings.LastRoomTemp,
		LastHeatingTemp: settings.LastHeatingTemp,
		LastUpdate:      settings.LastUpdate,
	})
	if err != nil {
		return err
	}

	messages := []struct {
		topic   string
		payload []byte
	}{
		{p.Topic("alarm_enabled"), []byte(utils.FormatFlag(settings.AlarmEnabled))},
		{p.Topic("heating_enabled"), []byte(utils.FormatFlag(settings.HeatingEnabled))},
		{p.Topic("telemetry"), telemetry},
	}

	for _, m := range messages {
		if err := p.publish(ctx, m.topic, m.payload); err != nil {
			return err
		}
	}

	return nil
}

func (p *Publisher) publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, 1, true, payload)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	case <-time.After(publishTimeout):
		return fmt.Errorf("publish to %s timed out", topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	return nil
}

func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		slog.Info("MQTT client disconnected")
	}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/google/uuid"
)

// StateVersion selects the settings row. Bumping it starts a fresh row with
// defaults and leaves the rows of older versions untouched.
const StateVersion = 3

const (
	PLACE_ROOM    = "room"
	PLACE_HEATING = "heating"
)

type (
	// Store is the repository handed to every request handler.
	Store struct {
		db      *sql.DB
		queries *database.Queries
		key     string
		now     func() time.Time
	}

	TelemetryResult struct {
		Settings     database.StateAndSetting
		Measurements []database.TemperatureMeasurement
	}
)

// StateKey returns the primary key of the settings row for a schema version.
func StateKey(version int) string {
	return fmt.Sprintf("state_%d", version)
}

func New(db *sql.DB, version int) *Store {
	if version <= 0 {
		version = StateVersion
	}

	return &Store{
		db:      db,
		queries: database.New(db),
		key:     StateKey(version),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Key is the settings row key this store reads and writes.
func (s *Store) Key() string {
	return s.key
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetOrCreateSettings returns the settings row, inserting one with defaults first
// if it does not exist yet. The insert is a no-op when the row is already there,
// so concurrent first requests all end up reading the same row.
func (s *Store) GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error) {
	err := s.queries.CreateSettingsIfMissing(ctx, database.CreateSettingsIfMissingParams{
		Key:        s.key,
		LastUpdate: s.now(),
	})
	if err != nil {
		return database.StateAndSetting{}, fmt.Errorf("create settings %s: %w", s.key, err)
	}

	settings, err := s.queries.GetSettings(ctx, s.key)
	if err != nil {
		return database.StateAndSetting{}, fmt.Errorf("get settings %s: %w", s.key, err)
	}

	return settings, nil
}

// SaveSettings overwrites the whole settings row and stamps last_update with the
// current time.
func (s *Store) SaveSettings(ctx context.Context, settings database.StateAndSetting) (database.StateAndSetting, error) {
	return s.saveSettings(ctx, s.queries, settings, s.now())
}

// PostTelemetry appends the room and heating measurements and saves the settings
// row in a single transaction. Either all three writes land or none do.
func (s *Store) PostTelemetry(ctx context.Context, settings database.StateAndSetting) (TelemetryResult, error) {
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return TelemetryResult{}, fmt.Errorf("begin telemetry transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	readings := []struct {
		place       string
		temperature float64
	}{
		{PLACE_ROOM, settings.LastRoomTemp},
		{PLACE_HEATING, settings.LastHeatingTemp},
	}

	result := TelemetryResult{
		Measurements: make([]database.TemperatureMeasurement, 0, len(readings)),
	}

	for _, r := range readings {
		m, err := qtx.CreateTemperatureMeasurement(ctx, database.CreateTemperatureMeasurementParams{
			ID:          uuid.New(),
			CreatedAt:   now,
			MeasuredAt:  now,
			Place:       r.place,
			Temperature: r.temperature,
		})
		if err != nil {
			return TelemetryResult{}, fmt.Errorf("save %s measurement: %w", r.place, err)
		}

		result.Measurements = append(result.Measurements, m)
	}

	result.Settings, err = s.saveSettings(ctx, qtx, settings, now)
	if err != nil {
		return TelemetryResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return TelemetryResult{}, fmt.Errorf("commit telemetry transaction: %w", err)
	}

	return result, nil
}

func (s *Store) saveSettings(ctx context.Context, q *database.Queries, settings database.StateAndSetting, now time.Time) (database.StateAndSetting, error) {
	saved, err := q.SaveSettings(ctx, database.SaveSettingsParams{
		Key:             s.key,
		AlarmEnabled:    settings.AlarmEnabled,
		HeatingEnabled:  settings.HeatingEnabled,
		CpuTemp:         settings.CpuTemp,
		RamPerc:         settings.RamPerc,
		FreeStorage:     settings.FreeStorage,
		LastRoomTemp:    settings.LastRoomTemp,
		LastHeatingTemp: settings.LastHeatingTemp,
		LastUpdate:      now,
	})
	if err != nil {
		return database.StateAndSetting{}, fmt.Errorf("save settings %s: %w", s.key, err)
	}

	return saved, nil
}

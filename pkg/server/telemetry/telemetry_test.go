package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
	"github.com/KyleBrandon/rasp-home-server/internal/store"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func referenceForm() url.Values {
	return url.Values{
		"cpu_temp":     {"44.3"},
		"ram_perc":     {"10.0"},
		"free_storage": {"500.0"},
		"room_temp":    {"21.5"},
		"heating_temp": {"35.0"},
	}
}

func TestDataPosting(t *testing.T) {
	t.Run("should store the telemetry and two measurements", func(t *testing.T) {
		s := newMockTelemetryStore()
		events := mockEventSink{}
		m := metrics.New()
		h := NewHandler(s, &events, m)

		rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", referenceForm(), h.handleDataPosting)

		utils.TestExpectedStatus(t, rr, http.StatusCreated)
		if rr.Body.String() != "success" {
			t.Errorf("expected body %q, got %q", "success", rr.Body.String())
		}

		expected := database.StateAndSetting{
			CpuTemp:         44.3,
			RamPerc:         10.0,
			FreeStorage:     500.0,
			LastRoomTemp:    21.5,
			LastHeatingTemp: 35.0,
		}
		got := s.settings
		if got.CpuTemp != expected.CpuTemp || got.RamPerc != expected.RamPerc || got.FreeStorage != expected.FreeStorage ||
			got.LastRoomTemp != expected.LastRoomTemp || got.LastHeatingTemp != expected.LastHeatingTemp {
			t.Errorf("expected settings %+v, got %+v", expected, got)
		}

		if len(s.log) != 2 {
			t.Fatalf("expected 2 measurements, got %d", len(s.log))
		}

		room, heating := s.log[0], s.log[1]
		if room.Place != store.PLACE_ROOM || room.Temperature != 21.5 {
			t.Errorf("unexpected room measurement %+v", room)
		}
		if heating.Place != store.PLACE_HEATING || heating.Temperature != 35.0 {
			t.Errorf("unexpected heating measurement %+v", heating)
		}
		if !room.MeasuredAt.Equal(heating.MeasuredAt) {
			t.Errorf("expected both measurements at the same instant, got %v and %v", room.MeasuredAt, heating.MeasuredAt)
		}

		if len(events.results) != 1 {
			t.Errorf("expected 1 telemetry event, got %d", len(events.results))
		}
		if v := testutil.ToFloat64(m.TelemetryPosts); v != 1 {
			t.Errorf("expected 1 telemetry post metric, got %f", v)
		}
	})

	t.Run("should append to the log on every post", func(t *testing.T) {
		s := newMockTelemetryStore()
		h := NewHandler(s, nil, nil)

		utils.TestFormRequest(t, http.MethodPost, "/data-posting", referenceForm(), h.handleDataPosting)
		first := s.settings
		utils.TestFormRequest(t, http.MethodPost, "/data-posting", referenceForm(), h.handleDataPosting)
		second := s.settings

		if first.CpuTemp != second.CpuTemp || first.LastRoomTemp != second.LastRoomTemp ||
			first.LastHeatingTemp != second.LastHeatingTemp || first.AlarmEnabled != second.AlarmEnabled {
			t.Errorf("expected identical settings, got %+v and %+v", first, second)
		}

		if len(s.log) != 4 {
			t.Errorf("expected 4 measurements, got %d", len(s.log))
		}
	})

	t.Run("should keep the configuration flags", func(t *testing.T) {
		s := newMockTelemetryStore()
		s.settings.AlarmEnabled = true
		s.settings.HeatingEnabled = true
		h := NewHandler(s, nil, nil)

		utils.TestFormRequest(t, http.MethodPost, "/data-posting", referenceForm(), h.handleDataPosting)

		if !s.settings.AlarmEnabled || !s.settings.HeatingEnabled {
			t.Errorf("expected flags to be preserved, got %+v", s.settings)
		}
	})

	for _, field := range []string{"cpu_temp", "ram_perc", "free_storage", "room_temp", "heating_temp"} {
		t.Run("should reject a post missing "+field, func(t *testing.T) {
			s := newMockTelemetryStore()
			s.settings.CpuTemp = 1.0
			events := mockEventSink{}
			h := NewHandler(s, &events, nil)

			form := referenceForm()
			form.Del(field)
			rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", form, h.handleDataPosting)

			utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
			if s.settings.CpuTemp != 1.0 || s.saves != 0 {
				t.Errorf("expected settings untouched, got %+v", s.settings)
			}
			if len(s.log) != 0 {
				t.Errorf("expected no measurements, got %d", len(s.log))
			}
			if len(events.results) != 0 {
				t.Errorf("expected no telemetry events, got %d", len(events.results))
			}
		})
	}

	t.Run("should reject a malformed number", func(t *testing.T) {
		s := newMockTelemetryStore()
		h := NewHandler(s, nil, nil)

		form := referenceForm()
		form.Set("room_temp", "warm")
		rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", form, h.handleDataPosting)

		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
		utils.TestExpectedMessage(t, rr, "invalid telemetry")
		if s.saves != 0 || len(s.log) != 0 {
			t.Error("expected nothing to be written")
		}
	})

	for _, value := range []string{"nan", "NaN", "inf", "-Inf", "+infinity", "0x1p-2", "1_000", "1e400"} {
		t.Run("should reject the non-decimal value "+value, func(t *testing.T) {
			s := newMockTelemetryStore()
			h := NewHandler(s, nil, nil)

			form := referenceForm()
			form.Set("cpu_temp", value)
			rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", form, h.handleDataPosting)

			utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
			utils.TestExpectedMessage(t, rr, "invalid telemetry")
			if s.saves != 0 || len(s.log) != 0 {
				t.Error("expected nothing to be written")
			}
		})
	}

	t.Run("should fail when the store rejects the transaction", func(t *testing.T) {
		s := newMockTelemetryStore()
		s.postErr = errors.New("connection refused")
		h := NewHandler(s, nil, nil)

		rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", referenceForm(), h.handleDataPosting)

		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
		if len(s.log) != 0 || s.settings.CpuTemp != 0 {
			t.Error("expected nothing to be written")
		}
	})
}

func TestParseReading(t *testing.T) {
	t.Run("should accept negative and exponent forms", func(t *testing.T) {
		form := referenceForm()
		form.Set("room_temp", "-2.5")
		form.Set("free_storage", "5e2")

		rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", form, func(w http.ResponseWriter, r *http.Request) {
			reading, err := ParseReading(r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reading.RoomTemp != -2.5 || reading.FreeStorage != 500.0 {
				t.Errorf("unexpected reading %+v", reading)
			}
			w.WriteHeader(http.StatusOK)
		})

		utils.TestExpectedStatus(t, rr, http.StatusOK)
	})

	t.Run("should accept surrounding whitespace and integers", func(t *testing.T) {
		form := referenceForm()
		form.Set("cpu_temp", " 44 ")

		rr := utils.TestFormRequest(t, http.MethodPost, "/data-posting", form, func(w http.ResponseWriter, r *http.Request) {
			reading, err := ParseReading(r)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reading.CpuTemp != 44.0 {
				t.Errorf("expected cpu temp %f, got %f", 44.0, reading.CpuTemp)
			}
			w.WriteHeader(http.StatusOK)
		})

		utils.TestExpectedStatus(t, rr, http.StatusOK)
	})
}

// mockTelemetryStore commits the measurements and the settings together, or
// nothing at all.
type mockTelemetryStore struct {
	settings database.StateAndSetting
	log      []database.TemperatureMeasurement
	saves    int
	postErr  error
}

func newMockTelemetryStore() *mockTelemetryStore {
	return &mockTelemetryStore{
		settings: database.StateAndSetting{Key: "state_3"},
	}
}

func (m *mockTelemetryStore) GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error) {
	return m.settings, nil
}

func (m *mockTelemetryStore) PostTelemetry(ctx context.Context, settings database.StateAndSetting) (store.TelemetryResult, error) {
	if m.postErr != nil {
		return store.TelemetryResult{}, m.postErr
	}

	now := time.Now().UTC()
	measurements := []database.TemperatureMeasurement{
		{ID: uuid.New(), CreatedAt: now, MeasuredAt: now, Place: store.PLACE_ROOM, Temperature: settings.LastRoomTemp},
		{ID: uuid.New(), CreatedAt: now, MeasuredAt: now, Place: store.PLACE_HEATING, Temperature: settings.LastHeatingTemp},
	}

	settings.LastUpdate = now
	m.settings = settings
	m.log = append(m.log, measurements...)
	m.saves++

	return store.TelemetryResult{Settings: settings, Measurements: measurements}, nil
}

type mockEventSink struct {
	results []store.TelemetryResult
}

func (m *mockEventSink) TelemetryRecorded(result store.TelemetryResult) {
	m.results = append(m.results, result)
}

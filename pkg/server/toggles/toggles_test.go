package toggles

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/KyleBrandon/rasp-home-server/internal/database"
	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
)

func TestConfigGet(t *testing.T) {
	t.Run("should report the alarm flag in plain text", func(t *testing.T) {
		store := mockSettingsStore{}
		store.settings.AlarmEnabled = true
		store.exists = true
		h := NewHandler(&store, nil, nil, ALARM)

		rr := utils.TestRequest(t, http.MethodGet, "/alarm-config/get", nil, h.handleConfigGet)

		utils.TestExpectedStatus(t, rr, http.StatusOK)
		if rr.Body.String() != "alarm_enabled = True" {
			t.Errorf("expected body %q, got %q", "alarm_enabled = True", rr.Body.String())
		}
		if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain") {
			t.Errorf("expected text/plain, got %s", rr.Header().Get("Content-Type"))
		}
	})

	t.Run("should create the defaults on first access", func(t *testing.T) {
		store := mockSettingsStore{}
		h := NewHandler(&store, nil, nil, HEATING)

		rr := utils.TestRequest(t, http.MethodGet, "/heating-config/get", nil, h.handleConfigGet)

		utils.TestExpectedStatus(t, rr, http.StatusOK)
		if rr.Body.String() != "heating_enabled = False" {
			t.Errorf("expected body %q, got %q", "heating_enabled = False", rr.Body.String())
		}
		if !store.exists {
			t.Error("expected the settings row to be created")
		}
	})

	t.Run("should fail when the store is unavailable", func(t *testing.T) {
		store := mockSettingsStore{getErr: errors.New("connection refused")}
		h := NewHandler(&store, nil, nil, ALARM)

		rr := utils.TestRequest(t, http.MethodGet, "/alarm-config/get", nil, h.handleConfigGet)

		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
		utils.TestExpectedMessage(t, rr, "failed to read the settings")
	})
}

func TestConfigSetFromDevice(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		expected bool
	}{
		{"True enables", url.Values{"enabled": {"True"}}, true},
		{"lowercase true disables", url.Values{"enabled": {"true"}}, false},
		{"uppercase TRUE disables", url.Values{"enabled": {"TRUE"}}, false},
		{"1 disables", url.Values{"enabled": {"1"}}, false},
		{"empty value disables", url.Values{"enabled": {""}}, false},
		{"missing value disables", url.Values{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mockSettingsStore{}
			store.settings.AlarmEnabled = !tc.expected
			store.exists = true
			events := mockEventSink{}
			h := NewHandler(&store, &events, nil, ALARM)

			rr := utils.TestFormRequest(t, http.MethodPost, "/alarm-config/set", tc.form, h.handleConfigSetFromDevice)

			utils.TestExpectedStatus(t, rr, http.StatusCreated)
			if rr.Body.String() != "success" {
				t.Errorf("expected body %q, got %q", "success", rr.Body.String())
			}
			if store.settings.AlarmEnabled != tc.expected {
				t.Errorf("expected alarm_enabled %v, got %v", tc.expected, store.settings.AlarmEnabled)
			}
			if len(events.changes) != 1 {
				t.Errorf("expected 1 settings event, got %d", len(events.changes))
			}
		})
	}

	t.Run("should only change its own flag", func(t *testing.T) {
		store := mockSettingsStore{}
		store.settings.AlarmEnabled = true
		store.exists = true
		h := NewHandler(&store, nil, nil, HEATING)

		utils.TestFormRequest(t, http.MethodPost, "/heating-config/set", url.Values{"enabled": {"True"}}, h.handleConfigSetFromDevice)

		if !store.settings.AlarmEnabled || !store.settings.HeatingEnabled {
			t.Errorf("expected both flags enabled, got %+v", store.settings)
		}
	})

	t.Run("should fail when the settings cannot be saved", func(t *testing.T) {
		store := mockSettingsStore{saveErr: errors.New("connection refused")}
		events := mockEventSink{}
		h := NewHandler(&store, &events, nil, ALARM)

		rr := utils.TestFormRequest(t, http.MethodPost, "/alarm-config/set", url.Values{"enabled": {"True"}}, h.handleConfigSetFromDevice)

		utils.TestExpectedStatus(t, rr, http.StatusInternalServerError)
		if len(events.changes) != 0 {
			t.Errorf("expected no settings events, got %d", len(events.changes))
		}
	})
}

func TestConfigSetFromDashboard(t *testing.T) {
	t.Run("should set the flag and redirect to the dashboard", func(t *testing.T) {
		store := mockSettingsStore{}
		m := metrics.New()
		h := NewHandler(&store, nil, m, HEATING)

		rr := utils.TestRequest(t, http.MethodGet, "/heating-config/set?enabled=True", nil, h.handleConfigSetFromDashboard)

		utils.TestExpectedStatus(t, rr, http.StatusFound)
		if rr.Header().Get("Location") != DASHBOARD_PATH {
			t.Errorf("expected redirect to %s, got %s", DASHBOARD_PATH, rr.Header().Get("Location"))
		}
		if !store.settings.HeatingEnabled {
			t.Error("expected heating to be enabled")
		}
	})

	t.Run("should read the query string, not the body", func(t *testing.T) {
		store := mockSettingsStore{}
		h := NewHandler(&store, nil, nil, ALARM)

		rr := utils.TestFormRequest(t, http.MethodGet, "/alarm-config/set", url.Values{"enabled": {"True"}}, h.handleConfigSetFromDashboard)

		utils.TestExpectedStatus(t, rr, http.StatusFound)
		if store.settings.AlarmEnabled {
			t.Error("expected alarm to stay disabled")
		}
	})
}

func TestRoutes(t *testing.T) {
	store := mockSettingsStore{}
	mux := http.NewServeMux()
	NewHandler(&store, nil, nil, ALARM).RegisterRoutes(mux)
	NewHandler(&store, nil, nil, HEATING).RegisterRoutes(mux)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	t.Run("should report an alarm enabled by the device", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/alarm-config/set", strings.NewReader("enabled=True"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		utils.TestExpectedStatus(t, serve(req), http.StatusCreated)

		rr := serve(httptest.NewRequest(http.MethodGet, "/alarm-config/get", nil))
		if rr.Body.String() != "alarm_enabled = True" {
			t.Errorf("expected body %q, got %q", "alarm_enabled = True", rr.Body.String())
		}

		rr = serve(httptest.NewRequest(http.MethodGet, "/heating-config/get", nil))
		if rr.Body.String() != "heating_enabled = False" {
			t.Errorf("expected body %q, got %q", "heating_enabled = False", rr.Body.String())
		}
	})

	t.Run("should reject other methods", func(t *testing.T) {
		rr := serve(httptest.NewRequest(http.MethodPost, "/alarm-config/get", nil))
		utils.TestExpectedStatus(t, rr, http.StatusMethodNotAllowed)

		rr = serve(httptest.NewRequest(http.MethodDelete, "/heating-config/set", nil))
		utils.TestExpectedStatus(t, rr, http.StatusMethodNotAllowed)
	})
}

type mockSettingsStore struct {
	settings database.StateAndSetting
	exists   bool
	getErr   error
	saveErr  error
}

func (m *mockSettingsStore) GetOrCreateSettings(ctx context.Context) (database.StateAndSetting, error) {
	if m.getErr != nil {
		return database.StateAndSetting{}, m.getErr
	}

	if !m.exists {
		m.settings = database.StateAndSetting{Key: "state_3", LastUpdate: time.Now().UTC()}
		m.exists = true
	}

	return m.settings, nil
}

func (m *mockSettingsStore) SaveSettings(ctx context.Context, settings database.StateAndSetting) (database.StateAndSetting, error) {
	if m.saveErr != nil {
		return database.StateAndSetting{}, m.saveErr
	}

	settings.LastUpdate = time.Now().UTC()
	m.settings = settings
	m.exists = true

	return settings, nil
}

type mockEventSink struct {
	changes [][2]database.StateAndSetting
}

func (m *mockEventSink) SettingsChanged(previous, current database.StateAndSetting) {
	m.changes = append(m.changes, [2]database.StateAndSetting{previous, current})
}

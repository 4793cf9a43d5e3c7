package server

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KyleBrandon/rasp-home-server/config"
	"github.com/KyleBrandon/rasp-home-server/internal/broker"
	"github.com/KyleBrandon/rasp-home-server/internal/metrics"
	"github.com/KyleBrandon/rasp-home-server/internal/store"
	"github.com/KyleBrandon/rasp-home-server/internal/timeseries"
	"github.com/KyleBrandon/rasp-home-server/pkg/server/health"
	"github.com/KyleBrandon/rasp-home-server/pkg/server/monitor"
	"github.com/KyleBrandon/rasp-home-server/pkg/server/pages"
	"github.com/KyleBrandon/rasp-home-server/pkg/server/status"
	"github.com/KyleBrandon/rasp-home-server/pkg/server/telemetry"
	"github.com/KyleBrandon/rasp-home-server/pkg/server/toggles"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/twilio"
)

const (
	DEFAULT_SERVER_PORT          = "8080"
	DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"

	STARTUP_TIMEOUT  = 10 * time.Second
	SHUTDOWN_TIMEOUT = 10 * time.Second
)

// Used by "flag" to read command line argument
var (
	cmdLineFlagLogLevel   string
	cmdLineFlagConfigFile string
)

type ServerConfig struct {
	mux                *http.ServeMux
	mctx               *monitor.MonitorContext
	ServerPort         string
	DatabaseURL        string
	LogFileLocation    string
	ConfigFileLocation string
	Logger             *slog.Logger
	LoggerLevel        *slog.LevelVar
	LogFile            *os.File
	Notifier           *notify.Notify

	MqttConfig   broker.Config
	InfluxConfig timeseries.Config
	Publisher    *broker.Publisher
	Writer       *timeseries.Writer

	Config       config.Config
	Store        *store.Store
	DBConnection *sql.DB
	Metrics      *metrics.Metrics
}

// init will read and initialize the global command line variables
func init() {
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the server at")
	flag.StringVar(&cmdLineFlagConfigFile, "config", "", "Path to the JSON config file, overrides CONFIG_FILE_LOCATION")
}

// InitializeServer sets up the server and blocks until it is shut down.
func InitializeServer() error {
	slog.Debug(">>InitializeServer")
	defer slog.Debug("<<InitializeServer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := initializeServerConfig(ctx)
	if err != nil {
		return err
	}

	defer sc.close()

	sc.mux = http.NewServeMux()

	// only hand configured sinks to the monitor, a typed nil would not compare equal to nil
	var publisher monitor.SettingsPublisher
	if sc.Publisher != nil {
		publisher = sc.Publisher
	}

	var writer monitor.MeasurementWriter
	if sc.Writer != nil {
		writer = sc.Writer
	}

	var notifier monitor.Notifier
	if sc.Notifier != nil {
		notifier = sc.Notifier
	}

	sc.mctx = monitor.InitializeMonitorContext(publisher, writer, notifier)

	sc.registerHandlers()

	return sc.runServer(ctx)
}

func (sc *ServerConfig) registerHandlers() {
	pagesHandler := pages.NewHandler(sc.Store)
	pagesHandler.RegisterRoutes(sc.mux)

	alarmHandler := toggles.NewHandler(sc.Store, sc.mctx, sc.Metrics, toggles.ALARM)
	alarmHandler.RegisterRoutes(sc.mux)

	heatingHandler := toggles.NewHandler(sc.Store, sc.mctx, sc.Metrics, toggles.HEATING)
	heatingHandler.RegisterRoutes(sc.mux)

	telemetryHandler := telemetry.NewHandler(sc.Store, sc.mctx, sc.Metrics)
	telemetryHandler.RegisterRoutes(sc.mux)

	healthHandler := health.NewHandler(sc.Store, sc.LoggerLevel)
	healthHandler.RegisterRoutes(sc.mux)

	statusHandler := status.NewHandler(sc.Store, sc.Config.OriginPatterns, sc.Config.StatusInterval())
	statusHandler.RegisterRoutes(sc.mux)

	sc.mux.Handle("GET /metrics", sc.Metrics.Handler())
}

// runServer listens for connections until the context is cancelled.
func (sc *ServerConfig) runServer(ctx context.Context) error {
	slog.Info(">>runServer")
	defer slog.Info("<<runServer")

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", sc.ServerPort),
		Handler:           sc.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", sc.ServerPort)
		errCh <- server.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		} else {
			slog.Error("Server failed", "error", err)
		}

	case <-ctx.Done():
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()

		err = server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}

	sc.mctx.CancelAndWait()

	return err
}

func initializeServerConfig(ctx context.Context) (*ServerConfig, error) {
	slog.Info(">>initializeServerConfig")
	defer slog.Info("<<initializeServerConfig")

	sc := &ServerConfig{}

	// MUST BE FIRST
	if err := sc.readEnvironmentVariables(); err != nil {
		return nil, err
	}

	// configure slog
	if err := sc.configureLogger(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfigSettings(sc.ConfigFileLocation)
	if err != nil {
		slog.Error("failed to load config file", "error", err)
		return nil, err
	}

	sc.Config = cfg
	sc.MqttConfig.TopicPrefix = cfg.MqttTopicPrefix
	sc.InfluxConfig.Measurement = cfg.InfluxMeasurement
	sc.Metrics = metrics.New()

	if err := sc.openDatabase(ctx); err != nil {
		return nil, err
	}

	sc.connectSinks(ctx)

	return sc, nil
}

func (sc *ServerConfig) readEnvironmentVariables() error {
	slog.Info(">>readEnvironmentVariables")
	defer slog.Info("<<readEnvironmentVariables")

	// load the environment
	err := godotenv.Load()
	if err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	sc.DatabaseURL = os.Getenv("DATABASE_URL")
	if len(sc.DatabaseURL) == 0 {
		slog.Error("no database connection string is configured")
		return errors.New("DATABASE_URL is not set")
	}

	sc.ServerPort = os.Getenv("PORT")
	if len(sc.ServerPort) == 0 {
		sc.ServerPort = DEFAULT_SERVER_PORT
	}

	sc.LogFileLocation = os.Getenv("LOG_FILE_LOCATION")

	sc.ConfigFileLocation = cmdLineFlagConfigFile
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = os.Getenv("CONFIG_FILE_LOCATION")
	}
	if len(sc.ConfigFileLocation) == 0 {
		sc.ConfigFileLocation = DEFAULT_CONFIG_FILE_LOCATION
	}

	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	twilioAuthToken := os.Getenv("TWILIO_AUTH_TOKEN")
	twilioFromPhone := os.Getenv("TWILIO_FROM_PHONE_NO")
	twilioToPhone := os.Getenv("TWILIO_TO_PHONE_NO")
	if len(twilioAccountSID) != 0 {
		slog.Info("Twilio account information present, configuring Notifier")

		twilioService, err := twilio.New(twilioAccountSID, twilioAuthToken, twilioFromPhone)
		if err != nil {
			return fmt.Errorf("failed to initialize Twilio service: %w", err)
		}

		twilioService.AddReceivers(twilioToPhone)

		notifier := notify.New()
		notifier.UseServices(twilioService)
		sc.Notifier = notifier
	}

	sc.MqttConfig.BrokerURL = os.Getenv("MQTT_BROKER_URL")
	sc.MqttConfig.ClientID = os.Getenv("MQTT_CLIENT_ID")

	sc.InfluxConfig.URL = os.Getenv("INFLUX_URL")
	sc.InfluxConfig.Token = os.Getenv("INFLUX_TOKEN")
	sc.InfluxConfig.Org = os.Getenv("INFLUX_ORG")
	sc.InfluxConfig.Bucket = os.Getenv("INFLUX_BUCKET")

	return nil
}

// configureLogger will initialize the slog to stderr and save the log level so it can be set via API.
func (sc *ServerConfig) configureLogger() error {
	slog.Info(">>configureLogger")
	defer slog.Info("<<configureLogger")

	currentLevel := new(slog.LevelVar)

	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		slog.Error("Failed to parse the log level, setting to DefaultLogLevel", "error", err, "log_level", cmdLineFlagLogLevel)
		level = config.DefaultLogLevel
	}

	currentLevel.Set(level)

	// by default we will write to stderr
	logFile := os.Stderr
	if len(sc.LogFileLocation) != 0 {
		slog.Info("Save to log file", "file", sc.LogFileLocation)
		logFile, err = os.OpenFile(sc.LogFileLocation, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			slog.Error("Failed to open log file", "error", err)
			return err
		}
	}

	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: currentLevel})

	logger := slog.New(fileHandler)

	slog.SetDefault(logger)

	sc.Logger = logger
	sc.LoggerLevel = currentLevel
	sc.LogFile = logFile

	return nil
}

// openDatabase connects to Postgres and makes sure the settings row exists.
func (sc *ServerConfig) openDatabase(ctx context.Context) error {
	db, err := sql.Open("postgres", sc.DatabaseURL)
	if err != nil {
		slog.Error("failed to open database connection", "error", err)
		return err
	}

	sc.DBConnection = db
	sc.Store = store.New(db, sc.Config.StateVersion)

	ctx, cancel := context.WithTimeout(ctx, STARTUP_TIMEOUT)
	defer cancel()

	if _, err := sc.Store.GetOrCreateSettings(ctx); err != nil {
		slog.Error("failed to initialize the settings", "key", sc.Store.Key(), "error", err)
		return err
	}

	slog.Info("settings ready", "key", sc.Store.Key())

	return nil
}

// connectSinks sets up the optional MQTT and InfluxDB mirrors. A sink that is
// not configured or cannot be reached is left nil.
func (sc *ServerConfig) connectSinks(ctx context.Context) {
	if len(sc.MqttConfig.BrokerURL) != 0 {
		publisher, err := broker.Connect(ctx, sc.MqttConfig)
		if err != nil {
			slog.Warn("MQTT broker unavailable, settings will not be published", "error", err)
		} else {
			sc.Publisher = publisher
		}
	}

	if len(sc.InfluxConfig.URL) != 0 {
		writer, err := timeseries.New(sc.InfluxConfig)
		if err != nil {
			slog.Warn("InfluxDB mirror disabled", "error", err)
		} else {
			sc.Writer = writer
		}
	}
}

func (sc *ServerConfig) close() {
	if sc.Publisher != nil {
		sc.Publisher.Close()
	}

	if sc.Writer != nil {
		sc.Writer.Close()
	}

	if sc.DBConnection != nil {
		sc.DBConnection.Close()
	}

	if sc.LogFile != nil && sc.LogFile != os.Stderr {
		sc.LogFile.Close()
	}
}

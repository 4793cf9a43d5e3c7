package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/KyleBrandon/rasp-home-server/config"
	"github.com/KyleBrandon/rasp-home-server/internal/agent"
	"github.com/KyleBrandon/rasp-home-server/internal/sensor"
	"github.com/KyleBrandon/rasp-home-server/pkg/utils"
	"github.com/joho/godotenv"
)

const DEFAULT_CONFIG_FILE_LOCATION = "./config/config.json"

var (
	cmdLineFlagMockSensor bool
	cmdLineFlagLogLevel   string
	cmdLineFlagConfigFile string
)

func init() {
	flag.BoolVar(&cmdLineFlagMockSensor, "use_mock_sensor", false, "Indicate if we should use a mock sensor for the agent.")
	flag.StringVar(&cmdLineFlagLogLevel, "log_level", config.DefaultLogLevel.String(), "The log level to start the agent at")
	flag.StringVar(&cmdLineFlagConfigFile, "config", "", "Path to the JSON config file, overrides CONFIG_FILE_LOCATION")
}

func main() {
	flag.Parse()

	level, err := utils.ParseLogLevel(cmdLineFlagLogLevel)
	if err != nil {
		level = config.DefaultLogLevel
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := godotenv.Load(); err != nil {
		slog.Warn("could not load .env file", "error", err)
	}

	serverURL := os.Getenv("HOME_SERVER_URL")
	if len(serverURL) == 0 {
		slog.Error("HOME_SERVER_URL is not set")
		os.Exit(1)
	}

	interval := agent.DEFAULT_INTERVAL
	if v := os.Getenv("AGENT_INTERVAL_SECONDS"); len(v) != 0 {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			slog.Error("invalid AGENT_INTERVAL_SECONDS", "value", v)
			os.Exit(1)
		}
		interval = time.Duration(secs) * time.Second
	}

	configFile := cmdLineFlagConfigFile
	if len(configFile) == 0 {
		configFile = os.Getenv("CONFIG_FILE_LOCATION")
	}
	if len(configFile) == 0 {
		configFile = DEFAULT_CONFIG_FILE_LOCATION
	}

	cfg, err := config.LoadConfigSettings(configFile)
	if err != nil {
		slog.Error("failed to load config file", "error", err)
		os.Exit(1)
	}

	sensors := sensor.NewSensorConfig(cfg.SensorTimeoutSeconds, cfg.Devices, cmdLineFlagMockSensor)

	a := agent.New(agent.Config{
		ServerURL:   serverURL,
		Interval:    interval,
		SystemPaths: sensor.DefaultSystemPaths,
	}, sensors)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		slog.Error("agent stopped", "error", err)
		os.Exit(1)
	}
}

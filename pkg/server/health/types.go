package health

import (
	"context"
	"log/slog"
)

type (
	Pinger interface {
		Ping(ctx context.Context) error
	}

	HealthResponse struct {
		Status string `json:"status"`
	}

	LogLevelResponse struct {
		Level string `json:"level"`
	}

	Handler struct {
		store       Pinger
		loggerLevel *slog.LevelVar
	}
)

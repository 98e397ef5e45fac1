// Package tasks implements the scheduled housekeeping tasks of recbot.
package tasks

import (
	"log/slog"

	"github.com/edgard/recbot/internal/archive"
	"github.com/edgard/recbot/internal/config"
)

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  archive.Store
	Config *config.Config
}

package app

import (
	"log/slog"
	"path/filepath"

	"launchpad/internal/settings"
	"launchpad/internal/utils"
)

// DefaultSettingsPath returns settings.json under the app data config
// directory, or next to the working directory when that is unavailable.
func DefaultSettingsPath() string {
	configDir, err := utils.GetConfigDir()
	if err != nil {
		slog.Warn("failed to get config dir, using working directory", "error", err)
		return settings.FileName
	}
	return filepath.Join(configDir, settings.FileName)
}

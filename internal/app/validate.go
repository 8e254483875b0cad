package app

import (
	"context"
	"fmt"

	"gazettebot/internal/config"
	"gazettebot/internal/schedule"
)

// validateConfig rejects a config before it is committed, both at startup
// and on hot reload.
func validateConfig(_ context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := mapSourceConfig(cfg); err != nil {
		return err
	}
	if _, err := mapSummarizerConfig(cfg); err != nil {
		return err
	}
	if _, err := mapTelegramConfig(cfg); err != nil {
		return err
	}
	if _, err := mapNotifierConfig(cfg); err != nil {
		return err
	}
	if _, err := mapOrchestratorConfig(cfg); err != nil {
		return err
	}
	if _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	if _, err := mapRunTimeout(cfg); err != nil {
		return err
	}
	if cfg.Scheduler.Enabled {
		if _, err := schedule.Parse(cfg.Scheduler.Schedule); err != nil {
			return fmt.Errorf("scheduler.schedule: %w", err)
		}
	}
	if _, err := config.ParseLocation("scheduler.timezone", cfg.Scheduler.Timezone); err != nil {
		return err
	}
	return nil
}

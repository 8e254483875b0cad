package app

import (
	"fmt"
	"strings"
	"time"

	"gazettebot/internal/config"
	"gazettebot/internal/gazette"
	"gazettebot/internal/notifier"
	"gazettebot/internal/orchestrator"
	"gazettebot/internal/source"
	"gazettebot/internal/storage"
	"gazettebot/internal/summarizer"
	"gazettebot/internal/transport/telegram"
	logx "gazettebot/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		JSON:    cfg.Logging.JSON,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapStorageConfig(cfg *config.Config) (storage.Config, error) {
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "", "file":
		if path == "" {
			path = config.DefaultSeenPath
		}
		return storage.Config{Driver: "file", Path: path}, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := config.ParseDurationOrDefault("storage.busy_timeout", sc.BusyTimeout, time.Second)
		if err != nil {
			return storage.Config{}, err
		}
		return storage.Config{Driver: "sqlite", Path: path, BusyTimeout: busy}, nil
	case "mongo", "mongodb":
		if strings.TrimSpace(sc.URI) == "" {
			return storage.Config{}, fmt.Errorf("storage.uri is required when storage.driver=mongo")
		}
		return storage.Config{Driver: "mongo", URI: sc.URI, Database: sc.Database, Collection: sc.Collection}, nil
	default:
		return storage.Config{}, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}

func mapSourceConfig(cfg *config.Config) (source.Config, error) {
	sc := cfg.Source
	if strings.TrimSpace(sc.URL) == "" {
		return source.Config{}, fmt.Errorf("source.url is required")
	}
	timeout, err := config.ParseDurationOrDefault("source.timeout", sc.Timeout, 30*time.Second)
	if err != nil {
		return source.Config{}, err
	}
	if sc.MaxPDFBytes < 0 {
		return source.Config{}, fmt.Errorf("source.max_pdf_bytes must be >= 0")
	}
	return source.Config{
		URL:           strings.TrimSpace(sc.URL),
		BaseURL:       strings.TrimSpace(sc.BaseURL),
		UserAgent:     sc.UserAgent,
		Timeout:       timeout,
		MaxPDFBytes:   sc.MaxPDFBytes,
		RespectRobots: sc.RespectRobots,
	}, nil
}

func mapSummarizerConfig(cfg *config.Config) (summarizer.Config, error) {
	sc := cfg.Summarizer
	if sc.CharBudget < 0 || sc.BatchCharBudget < 0 {
		return summarizer.Config{}, fmt.Errorf("summarizer char budgets must be >= 0")
	}
	if sc.RetryAttempts < 0 {
		return summarizer.Config{}, fmt.Errorf("summarizer.retry_attempts must be >= 0")
	}
	if sc.RetryMultiplier != 0 && sc.RetryMultiplier < 1 {
		return summarizer.Config{}, fmt.Errorf("summarizer.retry_multiplier must be >= 1")
	}
	initial, err := config.ParseDurationOrDefault("summarizer.retry_initial", sc.RetryInitial, 4*time.Second)
	if err != nil {
		return summarizer.Config{}, err
	}
	maxDelay, err := config.ParseDurationOrDefault("summarizer.retry_max_delay", sc.RetryMaxDelay, 30*time.Second)
	if err != nil {
		return summarizer.Config{}, err
	}
	model := strings.TrimSpace(sc.Model)
	if model == "" {
		model = summarizer.DefaultModel
	}
	return summarizer.Config{
		Model:           model,
		CharBudget:      sc.CharBudget,
		BatchCharBudget: sc.BatchCharBudget,
		Retry: summarizer.RetryPolicy{
			Attempts:   sc.RetryAttempts,
			Initial:    initial,
			MaxDelay:   maxDelay,
			Multiplier: sc.RetryMultiplier,
		},
	}, nil
}

func mapTelegramConfig(cfg *config.Config) (telegram.Config, error) {
	timeout, err := config.ParseDurationOrDefault("telegram.timeout", cfg.Telegram.Timeout, 15*time.Second)
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{
		Token:   strings.TrimSpace(cfg.Telegram.Token),
		APIURL:  strings.TrimSpace(cfg.Telegram.APIURL),
		Timeout: timeout,
	}, nil
}

func mapNotifierConfig(cfg *config.Config) (notifier.Config, error) {
	nc := cfg.Notifier
	minInterval, err := config.ParseDurationField("notifier.min_interval", nc.MinInterval)
	if err != nil {
		return notifier.Config{}, err
	}
	base, err := config.ParseDurationOrDefault("notifier.retry_base", nc.RetryBase, time.Second)
	if err != nil {
		return notifier.Config{}, err
	}
	maxDelay, err := config.ParseDurationOrDefault("notifier.retry_max_delay", nc.RetryMaxDelay, 10*time.Second)
	if err != nil {
		return notifier.Config{}, err
	}
	if nc.RetryMax < 0 {
		return notifier.Config{}, fmt.Errorf("notifier.retry_max must be >= 0")
	}
	if nc.ChunkLimit < 0 || nc.ChunkLimit > 4096 {
		return notifier.Config{}, fmt.Errorf("notifier.chunk_limit must be between 0 and 4096")
	}
	chunk := nc.ChunkLimit
	if chunk == 0 {
		chunk = telegram.TextLimit
	}
	return notifier.Config{
		MinInterval:   minInterval,
		RetryMax:      nc.RetryMax,
		RetryBase:     base,
		RetryMaxDelay: maxDelay,
		ChunkLimit:    chunk,
	}, nil
}

func mapOrchestratorConfig(cfg *config.Config) (orchestrator.Config, error) {
	window, err := config.ParseDurationOrDefault("filter.recency_window", cfg.Filter.RecencyWindow, gazette.DefaultRecencyWindow)
	if err != nil {
		return orchestrator.Config{}, err
	}
	loc, err := config.ParseLocation("filter.timezone", cfg.Filter.Timezone)
	if err != nil {
		return orchestrator.Config{}, err
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Orchestrator.Mode))
	switch mode {
	case "", orchestrator.ModeDigest, orchestrator.ModePerItem:
	default:
		return orchestrator.Config{}, fmt.Errorf("orchestrator.mode: unknown mode %q (use digest or per_item)", cfg.Orchestrator.Mode)
	}
	if cfg.PDF.SpecialPages < 0 || cfg.PDF.GeneralPages < 0 {
		return orchestrator.Config{}, fmt.Errorf("pdf page budgets must be >= 0")
	}
	if cfg.Storage.SeenLimit < 0 {
		return orchestrator.Config{}, fmt.Errorf("storage.seen_limit must be >= 0")
	}

	cats := make([]gazette.Category, 0, len(cfg.Summarizer.Categories))
	for _, raw := range cfg.Summarizer.Categories {
		c, ok := gazette.ParseCategoryName(raw)
		if !ok {
			return orchestrator.Config{}, fmt.Errorf("summarizer.categories: unknown category %q", raw)
		}
		cats = append(cats, c)
	}

	return orchestrator.Config{
		Mode:         mode,
		Window:       window,
		Location:     loc,
		SeenLimit:    cfg.Storage.SeenLimit,
		SpecialPages: cfg.PDF.SpecialPages,
		GeneralPages: cfg.PDF.GeneralPages,
		AICategories: cats,
	}, nil
}

func mapRunTimeout(cfg *config.Config) (time.Duration, error) {
	return config.ParseDurationField("run_timeout", cfg.RunTimeout)
}

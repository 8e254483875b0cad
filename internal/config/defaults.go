package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	DefaultSourceURL = "https://www.gazette.vic.gov.au/gazette_bin/gazette_archives.cfm?bct=home|recentgazettes|gazettearchives"
	DefaultBaseURL   = "https://www.gazette.vic.gov.au"
	DefaultModel     = "gemini-2.0-flash-lite"
	DefaultSeenPath  = "./seen_gazettes.txt"
)

// Default returns a config that works with environment-provided secrets only.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:     DefaultSourceURL,
			BaseURL: DefaultBaseURL,
			Timeout: "30s",
		},
		Filter: FilterConfig{RecencyWindow: "168h"},
		PDF:    PDFConfig{SpecialPages: 2, GeneralPages: 3},
		Summarizer: SummarizerConfig{
			Model:           DefaultModel,
			Categories:      []string{"special"},
			CharBudget:      6000,
			BatchCharBudget: 2000,
			RetryAttempts:   3,
			RetryInitial:    "4s",
			RetryMaxDelay:   "30s",
			RetryMultiplier: 2,
		},
		Telegram: TelegramConfig{Timeout: "15s"},
		Notifier: NotifierConfig{
			MinInterval:   "1500ms",
			RetryMax:      2,
			RetryBase:     "1s",
			RetryMaxDelay: "10s",
		},
		Orchestrator: OrchestratorConfig{Mode: "digest"},
		Storage: StorageConfig{
			Driver:    "file",
			Path:      DefaultSeenPath,
			SeenLimit: 50,
		},
		Logging:    LoggingConfig{Level: "info", Console: true},
		Scheduler:  SchedulerConfig{Schedule: "1h"},
		RunTimeout: "10m",
	}
}

// Environment variable names for secrets and per-deployment overrides.
const (
	EnvGeminiKey      = "GEMINI_API_KEY"
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
	EnvTelegramThread = "TELEGRAM_THREAD_ID"
	EnvSeenPath       = "GAZETTE_SEEN_PATH"
)

// ApplyEnv overlays non-empty environment values onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if cfg == nil {
		return
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(k string) string {
		v, ok := lookup(k)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}
	if v := get(EnvGeminiKey); v != "" {
		cfg.Summarizer.APIKey = v
	}
	if v := get(EnvTelegramToken); v != "" {
		cfg.Telegram.Token = v
	}
	if v := get(EnvTelegramChatID); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := get(EnvTelegramThread); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Telegram.ThreadID = n
		}
	}
	if v := get(EnvSeenPath); v != "" {
		cfg.Storage.Path = v
	}
}

// MissingCredentials lists the settings required to deliver anything.
// The generation API key is not required: without it, links are still sent.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if strings.TrimSpace(c.Telegram.Token) == "" {
		missing = append(missing, "telegram.token ("+EnvTelegramToken+")")
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		missing = append(missing, "telegram.chat_id ("+EnvTelegramChatID+")")
	}
	return missing
}

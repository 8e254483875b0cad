package config

// Config is the on-disk (JSON or YAML) configuration.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
// Secrets may be left empty in the file and provided through the
// environment instead (see ApplyEnv).
type Config struct {
	Source       SourceConfig       `json:"source"`
	Filter       FilterConfig       `json:"filter"`
	PDF          PDFConfig          `json:"pdf"`
	Summarizer   SummarizerConfig   `json:"summarizer"`
	Telegram     TelegramConfig     `json:"telegram"`
	Notifier     NotifierConfig     `json:"notifier"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Storage      StorageConfig      `json:"storage"`
	Logging      LoggingConfig      `json:"logging"`
	Scheduler    SchedulerConfig    `json:"scheduler"`

	// RunTimeout bounds one whole check (listing, PDFs, AI calls, delivery).
	// "0s" disables the deadline.
	RunTimeout string `json:"run_timeout,omitempty"`
}

// SourceConfig points at the gazette listing page.
//
// BaseURL is optional; when set, relative PDF links are resolved against it
// instead of the page URL.
type SourceConfig struct {
	URL           string `json:"url"`
	BaseURL       string `json:"base_url,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	Timeout       string `json:"timeout,omitempty"`
	MaxPDFBytes   int64  `json:"max_pdf_bytes,omitempty"`
	RespectRobots bool   `json:"respect_robots,omitempty"`
}

type FilterConfig struct {
	// RecencyWindow is how far back a publication date may lie and still be
	// reported (default "168h").
	RecencyWindow string `json:"recency_window,omitempty"`
	// Timezone used to interpret gazette dates (default: local).
	Timezone string `json:"timezone,omitempty"`
}

// PDFConfig sets page budgets per category. Specials are published more
// often, so they read fewer pages to conserve generation quota.
type PDFConfig struct {
	SpecialPages int `json:"special_pages,omitempty"`
	GeneralPages int `json:"general_pages,omitempty"`
}

type SummarizerConfig struct {
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`

	// Categories receiving an AI call ("special", "general").
	Categories []string `json:"categories,omitempty"`

	CharBudget      int `json:"char_budget,omitempty"`
	BatchCharBudget int `json:"batch_char_budget,omitempty"`

	RetryAttempts   int     `json:"retry_attempts,omitempty"`
	RetryInitial    string  `json:"retry_initial,omitempty"`
	RetryMaxDelay   string  `json:"retry_max_delay,omitempty"`
	RetryMultiplier float64 `json:"retry_multiplier,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token,omitempty"`
	// ChatID is a numeric chat id or an "@channelname".
	ChatID   string `json:"chat_id,omitempty"`
	ThreadID int    `json:"thread_id,omitempty"`
	// APIURL overrides the Bot API endpoint (self-hosted bot API servers).
	APIURL  string `json:"api_url,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// NotifierConfig controls delivery pacing and retry.
type NotifierConfig struct {
	MinInterval   string `json:"min_interval,omitempty"`
	RetryMax      int    `json:"retry_max,omitempty"`
	RetryBase     string `json:"retry_base,omitempty"`
	RetryMaxDelay string `json:"retry_max_delay,omitempty"`
	ChunkLimit    int    `json:"chunk_limit,omitempty"`
}

type OrchestratorConfig struct {
	// Mode is "digest" (one message per run) or "per_item".
	Mode string `json:"mode,omitempty"`
}

// StorageConfig controls where the seen-set lives.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./seen_gazettes.txt", "seen_limit": 50 }
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only
	SeenLimit   int    `json:"seen_limit,omitempty"`

	// Mongo driver settings.
	URI        string `json:"uri,omitempty"`
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	JSON    bool        `json:"json,omitempty"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// SchedulerConfig enables daemon mode. When disabled the binary runs one
// check and exits (suited to an external cron or CI workflow).
type SchedulerConfig struct {
	Enabled bool `json:"enabled"`
	// Schedule accepts cron ("0 */2 * * *"), "@every 1h", a Go duration
	// ("55m") or an HH:MM interval ("02:30").
	Schedule string `json:"schedule,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	// RunOnStart triggers a check immediately after the daemon starts.
	RunOnStart bool `json:"run_on_start,omitempty"`
}

// Package app wires configuration, storage and the run pipeline, and hosts
// the optional scheduling daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gazettebot/internal/config"
	"gazettebot/internal/notifier"
	"gazettebot/internal/orchestrator"
	"gazettebot/internal/pdftext"
	"gazettebot/internal/source"
	"gazettebot/internal/storage"
	"gazettebot/internal/summarizer"
	kit "gazettebot/internal/transport"
	"gazettebot/internal/transport/telegram"
	logx "gazettebot/pkg/logx"
)

// ErrMissingCredentials is returned by RunOnce and Serve when delivery
// settings are absent. Callers treat it as a clean exit.
var ErrMissingCredentials = errors.New("missing credentials")

type App struct {
	cfgm *config.ConfigManager
	logs *logx.Service
	log  logx.Logger

	store    storage.Store
	storeCfg storage.Config

	// runMu serialises checks started by the daemon and RunOnce.
	runMu sync.Mutex

	// overridable in tests
	geminiBaseURL string
}

type Option func(*App)

// WithLookupEnv replaces the environment lookup used for secrets.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(a *App) { a.cfgm.SetLookupEnv(fn) }
}

// NewApp loads and validates the config, starts logging and opens the
// seen-set store. An empty cfgPath means defaults plus environment.
func NewApp(cfgPath string, opts ...Option) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	a := &App{cfgm: cfgm}
	for _, opt := range opts {
		opt(a)
	}
	cfgm.SetValidator(validateConfig)

	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logs, log := logx.New(mapLoggingConfig(cfg))
	a.logs = logs
	a.log = log
	cfgm.SetLogger(log.With(logx.Comp("config")))

	storeCfg, err := mapStorageConfig(cfg)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	a.storeCfg = storeCfg

	openCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	store, err := storage.Open(openCtx, storeCfg, log.With(logx.Comp("storage")))
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("open seen-set store: %w", err)
	}
	a.store = store

	log.Info("app initialized",
		logx.String("config", cfgm.Path()),
		logx.String("storage", storeCfg.Driver),
		logx.String("mode", cfg.Orchestrator.Mode),
		logx.Bool("ai", strings.TrimSpace(cfg.Summarizer.APIKey) != ""),
	)
	return a, nil
}

// Logger returns the application logger.
func (a *App) Logger() logx.Logger { return a.log }

// Config returns the committed config.
func (a *App) Config() *config.Config { return a.cfgm.Get() }

// MissingCredentials lists delivery settings that are not configured.
func (a *App) MissingCredentials() []string { return a.cfgm.Get().MissingCredentials() }

// RunOnce performs one complete check with the current config.
func (a *App) RunOnce(ctx context.Context) (orchestrator.Report, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	cfg := a.cfgm.Get()
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		return orchestrator.Report{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	timeout, err := mapRunTimeout(cfg)
	if err != nil {
		return orchestrator.Report{}, err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	orch, err := a.buildOrchestrator(ctx, cfg)
	if err != nil {
		return orchestrator.Report{}, err
	}
	return orch.Run(ctx)
}

// buildOrchestrator assembles a pipeline from cfg. It runs per check so
// reloaded settings take effect on the next run.
func (a *App) buildOrchestrator(ctx context.Context, cfg *config.Config) (*orchestrator.Orchestrator, error) {
	srcCfg, err := mapSourceConfig(cfg)
	if err != nil {
		return nil, err
	}
	lister, err := source.NewLister(srcCfg, a.log.With(logx.Comp("source")))
	if err != nil {
		return nil, err
	}

	tgCfg, err := mapTelegramConfig(cfg)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(tgCfg, a.log.With(logx.Comp("telegram")))
	if err != nil {
		return nil, err
	}
	nCfg, err := mapNotifierConfig(cfg)
	if err != nil {
		return nil, err
	}
	target := kit.ChatTarget{Chat: strings.TrimSpace(cfg.Telegram.ChatID), ThreadID: cfg.Telegram.ThreadID}
	notif := notifier.New(nCfg, adapter, target, a.log.With(logx.Comp("notifier")))

	oCfg, err := mapOrchestratorConfig(cfg)
	if err != nil {
		return nil, err
	}
	deps := orchestrator.Deps{
		Lister:   lister,
		Extract:  pdftext.Extract,
		Notifier: notif,
		Store:    a.store,
	}

	if key := strings.TrimSpace(cfg.Summarizer.APIKey); key != "" && len(oCfg.AICategories) > 0 {
		sCfg, err := mapSummarizerConfig(cfg)
		if err != nil {
			return nil, err
		}
		gen, err := summarizer.NewGemini(ctx, summarizer.GeminiConfig{APIKey: key, BaseURL: a.geminiBaseURL})
		if err != nil {
			return nil, err
		}
		deps.Summarizer = summarizer.New(gen, sCfg, a.log.With(logx.Comp("summarizer")))
		deps.Fetcher = source.NewFetcher(srcCfg, a.log.With(logx.Comp("fetch")))
	} else if key == "" {
		a.log.Warn("summaries disabled: no generation api key", logx.String("env", config.EnvGeminiKey))
	}

	return orchestrator.New(oCfg, deps, a.log.With(logx.Comp("orchestrator")))
}

// Close releases the store and flushes logs.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if a.logs != nil {
		if err := a.logs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close logs: %w", err))
		}
	}
	return errors.Join(errs...)
}

package config

import (
	"reflect"
	"sort"
	"strings"

	logx "gazettebot/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections and safe
// structured attrs for logging (never includes tokens or API keys).
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 16)

	if !reflect.DeepEqual(oldCfg.Source, newCfg.Source) {
		changed = append(changed, "source")
		attrs = append(attrs,
			logx.String("source.url", strings.TrimSpace(newCfg.Source.URL)),
			logx.Bool("source.respect_robots", newCfg.Source.RespectRobots),
		)
	}
	if !reflect.DeepEqual(oldCfg.Filter, newCfg.Filter) {
		changed = append(changed, "filter")
		attrs = append(attrs,
			logx.String("filter.recency_window", strings.TrimSpace(newCfg.Filter.RecencyWindow)),
			logx.String("filter.timezone", strings.TrimSpace(newCfg.Filter.Timezone)),
		)
	}
	if oldCfg.PDF != newCfg.PDF {
		changed = append(changed, "pdf")
	}

	// Summarizer (never log api key)
	oS, nS := oldCfg.Summarizer, newCfg.Summarizer
	keyChanged := (strings.TrimSpace(oS.APIKey) != "") != (strings.TrimSpace(nS.APIKey) != "")
	oS.APIKey, nS.APIKey = "", ""
	if keyChanged || !reflect.DeepEqual(oS, nS) {
		changed = append(changed, "summarizer")
		attrs = append(attrs,
			logx.String("summarizer.model", nS.Model),
			logx.Strings("summarizer.categories", nS.Categories),
			logx.Bool("summarizer.api_key_set", strings.TrimSpace(newCfg.Summarizer.APIKey) != ""),
		)
	}

	// Telegram (never log token)
	oT, nT := oldCfg.Telegram, newCfg.Telegram
	tokenChanged := strings.TrimSpace(oT.Token) != strings.TrimSpace(nT.Token)
	oT.Token, nT.Token = "", ""
	if tokenChanged || oT != nT {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.chat_set", strings.TrimSpace(nT.ChatID) != ""),
			logx.Int("telegram.thread_id", nT.ThreadID),
			logx.Bool("telegram.token_changed", tokenChanged),
		)
	}

	if oldCfg.Notifier != newCfg.Notifier {
		changed = append(changed, "notifier")
		attrs = append(attrs,
			logx.String("notifier.min_interval", strings.TrimSpace(newCfg.Notifier.MinInterval)),
			logx.Int("notifier.retry_max", newCfg.Notifier.RetryMax),
		)
	}
	if oldCfg.Orchestrator != newCfg.Orchestrator {
		changed = append(changed, "orchestrator")
		attrs = append(attrs, logx.String("orchestrator.mode", newCfg.Orchestrator.Mode))
	}

	// Storage; the mongo URI may embed credentials, so only report whether it is set.
	oSt, nSt := oldCfg.Storage, newCfg.Storage
	if oSt != nSt {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(nSt.Driver)),
			logx.Bool("storage.path_set", strings.TrimSpace(nSt.Path) != ""),
			logx.Bool("storage.uri_set", strings.TrimSpace(nSt.URI) != ""),
			logx.Int("storage.seen_limit", nSt.SeenLimit),
		)
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if oldCfg.Scheduler != newCfg.Scheduler {
		changed = append(changed, "scheduler")
		attrs = append(attrs,
			logx.Bool("scheduler.enabled", newCfg.Scheduler.Enabled),
			logx.String("scheduler.schedule", strings.TrimSpace(newCfg.Scheduler.Schedule)),
			logx.String("scheduler.timezone", strings.TrimSpace(newCfg.Scheduler.Timezone)),
		)
	}
	if strings.TrimSpace(oldCfg.RunTimeout) != strings.TrimSpace(newCfg.RunTimeout) {
		changed = append(changed, "run_timeout")
		attrs = append(attrs, logx.String("run_timeout", strings.TrimSpace(newCfg.RunTimeout)))
	}

	sort.Strings(changed)
	return changed, attrs
}

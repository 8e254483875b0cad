package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gazettebot/internal/config"
	"gazettebot/internal/gazette"
	"gazettebot/internal/schedule"
	"gazettebot/internal/transport/telegram"
)

func noEnv(string) (string, bool) { return "", false }

type fakeUpstream struct {
	mu    sync.Mutex
	sent  []string
	chats []string
}

func newFakeUpstream(t *testing.T, listing string) (*httptest.Server, *fakeUpstream) {
	t.Helper()
	up := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listing)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			http.NotFound(w, r)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		up.mu.Lock()
		up.sent = append(up.sent, fmt.Sprint(body["text"]))
		up.chats = append(up.chats, fmt.Sprint(body["chat_id"]))
		up.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":1710400000,"chat":{"id":-1001,"type":"channel"},"text":"ok"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, up
}

func writeConfig(t *testing.T, dir string, cfg map[string]any) string {
	t.Helper()
	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func baseConfig(srvURL, seenPath string) map[string]any {
	return map[string]any{
		"source":   map[string]any{"url": srvURL + "/list", "base_url": ""},
		"filter":   map[string]any{"timezone": "UTC"},
		"telegram": map[string]any{"token": "123:abc", "chat_id": "@gazette_alerts", "api_url": srvURL},
		"notifier": map[string]any{"min_interval": "0s", "retry_max": 0},
		"storage":  map[string]any{"driver": "file", "path": seenPath},
		"logging":  map[string]any{"level": "error", "console": true},
	}
}

func TestRunOnceDeliversLinksAndCommits(t *testing.T) {
	now := time.Now().UTC()
	listing := fmt.Sprintf(`<html><body>
<a href="/g/s301.pdf">Victoria Government Gazette S 301 Dated %d %s %d</a>
<a href="/g/g12.pdf">Victoria Government Gazette G 12 Dated %d %s %d</a>
<a href="/about.html">About</a>
</body></html>`, now.Day(), now.Month(), now.Year(), now.Day(), now.Month(), now.Year())
	srv, up := newFakeUpstream(t, listing)

	dir := t.TempDir()
	seenPath := filepath.Join(dir, "seen.txt")
	path := writeConfig(t, dir, baseConfig(srv.URL, seenPath))

	a, err := NewApp(path, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	rep, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.New != 2 || rep.Committed != 2 {
		t.Fatalf("unexpected report %+v", rep)
	}

	up.mu.Lock()
	if len(up.sent) != 1 {
		up.mu.Unlock()
		t.Fatalf("expected one digest message, got %d", len(up.sent))
	}
	msg := up.sent[0]
	chat := up.chats[0]
	up.mu.Unlock()
	if chat != "@gazette_alerts" {
		t.Fatalf("unexpected chat %q", chat)
	}
	if !strings.Contains(msg, srv.URL+"/g/s301.pdf") || !strings.Contains(msg, srv.URL+"/g/g12.pdf") {
		t.Fatalf("digest missing links: %s", msg)
	}

	b, err := os.ReadFile(seenPath)
	if err != nil {
		t.Fatalf("read seen file: %v", err)
	}
	if got := strings.Count(string(b), ".pdf"); got != 2 {
		t.Fatalf("expected 2 committed ids, got file %q", b)
	}

	rep, err = a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if rep.New != 0 {
		t.Fatalf("second run should find nothing new, got %+v", rep)
	}
	up.mu.Lock()
	defer up.mu.Unlock()
	if len(up.sent) != 1 {
		t.Fatalf("second run must not send, got %d messages", len(up.sent))
	}
}

func TestRunOnceMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, map[string]any{
		"storage": map[string]any{"driver": "file", "path": filepath.Join(dir, "seen.txt")},
		"logging": map[string]any{"level": "error", "console": true},
	})
	a, err := NewApp(path, WithLookupEnv(noEnv))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if got := a.MissingCredentials(); len(got) != 2 {
		t.Fatalf("expected token and chat id missing, got %v", got)
	}
	if _, err := a.RunOnce(context.Background()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if err := a.Serve(context.Background()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("serve: expected ErrMissingCredentials, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "unknown driver", mutate: func(c *config.Config) { c.Storage.Driver = "redis" }, want: "storage.driver"},
		{name: "sqlite needs path", mutate: func(c *config.Config) { c.Storage.Driver = "sqlite"; c.Storage.Path = "" }, want: "storage.path"},
		{name: "mongo needs uri", mutate: func(c *config.Config) { c.Storage.Driver = "mongo" }, want: "storage.uri"},
		{name: "unknown mode", mutate: func(c *config.Config) { c.Orchestrator.Mode = "weekly" }, want: "orchestrator.mode"},
		{name: "unknown category", mutate: func(c *config.Config) { c.Summarizer.Categories = []string{"urgent"} }, want: "summarizer.categories"},
		{name: "bad window", mutate: func(c *config.Config) { c.Filter.RecencyWindow = "a week" }, want: "filter.recency_window"},
		{name: "bad timezone", mutate: func(c *config.Config) { c.Filter.Timezone = "Mars/Olympus" }, want: "filter.timezone"},
		{name: "bad multiplier", mutate: func(c *config.Config) { c.Summarizer.RetryMultiplier = 0.5 }, want: "retry_multiplier"},
		{name: "chunk limit", mutate: func(c *config.Config) { c.Notifier.ChunkLimit = 5000 }, want: "chunk_limit"},
		{name: "missing url", mutate: func(c *config.Config) { c.Source.URL = " " }, want: "source.url"},
		{name: "bad schedule", mutate: func(c *config.Config) { c.Scheduler.Enabled = true; c.Scheduler.Schedule = "10s" }, want: "scheduler.schedule"},
		{name: "schedule ignored when disabled", mutate: func(c *config.Config) { c.Scheduler.Schedule = "10s" }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(cfg)
			err := validateConfig(context.Background(), cfg)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMapOrchestratorConfigCategories(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	oc, err := mapOrchestratorConfig(cfg)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if len(oc.AICategories) != 1 || oc.AICategories[0] != gazette.Special {
		t.Fatalf("unexpected default categories %v", oc.AICategories)
	}

	cfg.Summarizer.Categories = []string{}
	oc, err = mapOrchestratorConfig(cfg)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if oc.AICategories == nil || len(oc.AICategories) != 0 {
		t.Fatalf("explicit empty list must disable AI, got %#v", oc.AICategories)
	}
}

func TestMapStorageConfig(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Storage.Driver = "SQLite3"
	cfg.Storage.Path = "/var/lib/gazettebot/seen.db"
	sc, err := mapStorageConfig(cfg)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if sc.Driver != "sqlite" || sc.BusyTimeout != time.Second {
		t.Fatalf("unexpected storage config %+v", sc)
	}

	cfg.Storage.Driver = ""
	cfg.Storage.Path = ""
	sc, err = mapStorageConfig(cfg)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if sc.Driver != "file" || sc.Path != config.DefaultSeenPath {
		t.Fatalf("unexpected storage config %+v", sc)
	}
}

func TestMapNotifierConfigChunkLimit(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	nc, err := mapNotifierConfig(cfg)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if nc.ChunkLimit != telegram.TextLimit {
		t.Fatalf("default chunk limit = %d, want %d", nc.ChunkLimit, telegram.TextLimit)
	}
	cfg.Notifier.ChunkLimit = 1000
	if nc, err = mapNotifierConfig(cfg); err != nil || nc.ChunkLimit != 1000 {
		t.Fatalf("explicit chunk limit: %d %v", nc.ChunkLimit, err)
	}
}

func TestRescheduleNeeded(t *testing.T) {
	t.Parallel()
	cur, err := schedule.Parse("1h")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := config.Default()
	cfg.Scheduler.Schedule = "60m"
	if _, changed := rescheduleNeeded(cur, cfg); changed {
		t.Fatal("equivalent schedule must not reschedule")
	}
	cfg.Scheduler.Schedule = "0 */2 * * *"
	s, changed := rescheduleNeeded(cur, cfg)
	if !changed || s.Kind != schedule.Cron {
		t.Fatalf("expected cron reschedule, got %+v %v", s, changed)
	}
	cfg.Scheduler.Schedule = "not a schedule"
	if _, changed := rescheduleNeeded(cur, cfg); changed {
		t.Fatal("invalid schedule must keep the current one")
	}
}

func TestDrainLatest(t *testing.T) {
	t.Parallel()
	ch := make(chan *config.Config, 3)
	a, b, c := config.Default(), config.Default(), config.Default()
	ch <- b
	ch <- c
	if got := drainLatest(ch, a); got != c {
		t.Fatal("expected the newest config")
	}
}

func TestKVFields(t *testing.T) {
	t.Parallel()
	if got := kvFields([]interface{}{"entry", 1, "next", time.Time{}, "dangling"}); len(got) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(got))
	}
}

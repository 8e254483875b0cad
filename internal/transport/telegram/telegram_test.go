package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	kit "gazettebot/internal/transport"
	logx "gazettebot/pkg/logx"
)

type botAPI struct {
	mu    sync.Mutex
	paths []string
	body  map[string]any
	fail  bool
}

func (b *botAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.paths = append(b.paths, r.URL.Path)
	b.body = map[string]any{}
	_ = json.Unmarshal(raw, &b.body)
	fail := b.fail
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if fail {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
		return
	}
	fmt.Fprint(w, `{"ok":true,"result":{"message_id":42,"date":1710400000,"chat":{"id":-1001,"type":"channel"},"text":"hi"}}`)
}

func TestSendTextPostsSendMessage(t *testing.T) {
	t.Parallel()
	api := &botAPI{}
	srv := httptest.NewServer(api)
	defer srv.Close()

	a, err := New(Config{Token: "123:abc", APIURL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ref, err := a.SendText(context.Background(), kit.ChatTarget{Chat: "@gazette_alerts", ThreadID: 7}, "<b>hi</b>", &kit.SendOptions{ParseMode: "HTML", DisablePreview: true})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if ref.MessageID != 42 {
		t.Fatalf("unexpected message id %d", ref.MessageID)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.paths) != 1 || !strings.HasSuffix(api.paths[0], "/bot123:abc/sendMessage") {
		t.Fatalf("unexpected request paths %v", api.paths)
	}
	if api.body["chat_id"] != "@gazette_alerts" {
		t.Fatalf("unexpected chat_id %v", api.body["chat_id"])
	}
	if api.body["parse_mode"] != "HTML" {
		t.Fatalf("unexpected parse_mode %v", api.body["parse_mode"])
	}
	if api.body["text"] != "<b>hi</b>" {
		t.Fatalf("unexpected text %v", api.body["text"])
	}
}

func TestSendTextReportsAPIError(t *testing.T) {
	t.Parallel()
	api := &botAPI{fail: true}
	srv := httptest.NewServer(api)
	defer srv.Close()

	a, err := New(Config{Token: "123:abc", APIURL: srv.URL}, logx.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := a.SendText(context.Background(), kit.ChatTarget{Chat: "-1001"}, "hi", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSendTextRequiresChat(t *testing.T) {
	t.Parallel()
	a, err := New(Config{Token: "123:abc", APIURL: "http://127.0.0.1:1"}, logx.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := a.SendText(context.Background(), kit.ChatTarget{}, "hi", nil); err == nil {
		t.Fatal("expected error for empty chat")
	}
}

package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"gazettebot/internal/gazette"
	kit "gazettebot/internal/transport"
	logx "gazettebot/pkg/logx"
)

type fakeAdapter struct {
	sent  []string
	fails int
	err   error
	calls int
}

func (f *fakeAdapter) SendText(_ context.Context, _ kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	f.calls++
	if f.calls <= f.fails {
		return kit.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	return kit.MessageRef{MessageID: f.calls}, nil
}

func newTestService(a kit.Adapter, retryMax int) *Service {
	s := New(Config{RetryMax: retryMax, RetryBase: time.Millisecond, RetryMaxDelay: time.Millisecond}, a, kit.ChatTarget{Chat: "-100"}, logx.Nop())
	s.sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func TestSplitTelegramTextShortIsSingleChunk(t *testing.T) {
	t.Parallel()
	got := splitTelegramText("hello", 10, "")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestSplitTelegramTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	line := strings.Repeat("a", 30)
	text := strings.Join([]string{line, line, line, line}, "\n")
	got := splitTelegramText(text, 70, "")
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(got), got)
	}
	for _, c := range got {
		if utf8.RuneCountInString(c) > 70 {
			t.Fatalf("chunk too long: %d", utf8.RuneCountInString(c))
		}
		if strings.HasPrefix(c, "\n") || strings.HasSuffix(c, "\n") {
			t.Fatalf("chunk has dangling newline: %q", c)
		}
	}
	if strings.Join(got, "\n") != text {
		t.Fatal("chunks do not reassemble to the original text")
	}
}

func TestSplitTelegramTextAvoidsTagsAndEntities(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 18) + `<a href="u">y</a>`
	got := splitTelegramText(text, 20, "HTML")
	if len(got) < 2 || got[0] != strings.Repeat("x", 18) {
		t.Fatalf("tag was split: %q", got)
	}

	text = strings.Repeat("x", 17) + "&amp;rest"
	got = splitTelegramText(text, 20, "HTML")
	if got[0] != strings.Repeat("x", 17) || !strings.HasPrefix(got[1], "&amp;") {
		t.Fatalf("entity was split: %q", got)
	}
}

func TestSplitTelegramTextHardCutsLongRuns(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("é", 25)
	got := splitTelegramText(text, 10, "")
	if len(got) != 3 || utf8.RuneCountInString(got[2]) != 5 {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestDeliverSplitsInOrder(t *testing.T) {
	t.Parallel()
	a := &fakeAdapter{}
	s := newTestService(a, 0)
	s.cfg.ChunkLimit = 10

	if err := s.Deliver(context.Background(), Message{Text: "one two\nthree four\nfive"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if strings.Join(a.sent, "|") != "one two|three four|five" {
		t.Fatalf("unexpected sends %q", a.sent)
	}
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	a := &fakeAdapter{fails: 2, err: errors.New("429 too many requests")}
	s := newTestService(a, 2)
	if err := s.Deliver(context.Background(), Message{Text: "hi"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if a.calls != 3 || len(a.sent) != 1 {
		t.Fatalf("calls=%d sent=%d", a.calls, len(a.sent))
	}
}

func TestDeliverReportsFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("chat not found")
	a := &fakeAdapter{fails: 10, err: boom}
	s := newTestService(a, 1)
	err := s.Deliver(context.Background(), Message{Text: "hi"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected chat not found, got %v", err)
	}
	if a.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", a.calls)
	}
}

func TestDeliverRejectsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestService(&fakeAdapter{}, 0)
	if err := s.Deliver(context.Background(), Message{}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestRetryDelayBounded(t *testing.T) {
	t.Parallel()
	cfg := Config{RetryBase: time.Second, RetryMaxDelay: 10 * time.Second}
	for attempt := 1; attempt <= 6; attempt++ {
		d := retryDelay(cfg, attempt)
		if d <= 0 || d > 10*time.Second {
			t.Fatalf("attempt %d: delay %v out of bounds", attempt, d)
		}
	}
	if d := retryDelay(cfg, 1); d < 700*time.Millisecond || d > 1300*time.Millisecond {
		t.Fatalf("first delay %v outside jitter window", d)
	}
}

func testDoc(name, url string, cat gazette.Category, summary string) gazette.Document {
	return gazette.Document{
		ID:        url,
		Name:      name,
		Published: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Category:  cat,
		Summary:   summary,
	}
}

func TestFormatItemEscapes(t *testing.T) {
	t.Parallel()
	m := FormatItem(testDoc("Gazette S 1 <draft> & co", "https://g.example/a.pdf?x=1&y=2", gazette.Special, "- Roads & <bridges>"))
	if m.Options.ParseMode != "HTML" || !m.Options.DisablePreview {
		t.Fatalf("unexpected options %+v", m.Options)
	}
	for _, want := range []string{
		"Gazette S 1 &lt;draft&gt; &amp; co",
		"- Roads &amp; &lt;bridges&gt;",
		`href="https://g.example/a.pdf?x=1&amp;y=2"`,
		"14 Mar 2024 · Special",
	} {
		if !strings.Contains(m.Text, want) {
			t.Fatalf("missing %q in:\n%s", want, m.Text)
		}
	}
}

func TestFormatItemWithoutSummary(t *testing.T) {
	t.Parallel()
	m := FormatItem(testDoc("Gazette G 1", "https://g.example/g.pdf", gazette.General, ""))
	if strings.Contains(m.Text, "Key Highlights") {
		t.Fatalf("unexpected highlights section:\n%s", m.Text)
	}
}

func TestFormatDigestGroupsAndDedupesSummaries(t *testing.T) {
	t.Parallel()
	docs := []gazette.Document{
		testDoc("Gazette G 11", "https://g.example/g11.pdf", gazette.General, ""),
		testDoc("Gazette S 1", "https://g.example/s1.pdf", gazette.Special, "shared summary"),
		testDoc("Gazette S 2", "https://g.example/s2.pdf", gazette.Special, "shared summary"),
	}
	m := FormatDigest(docs)
	if !strings.Contains(m.Text, "3 New Gazettes Found!") {
		t.Fatalf("missing title:\n%s", m.Text)
	}
	if strings.Count(m.Text, "shared summary") != 1 {
		t.Fatalf("summary not deduplicated:\n%s", m.Text)
	}
	special := strings.Index(m.Text, "<b>Special</b>")
	general := strings.Index(m.Text, "<b>General</b>")
	if special < 0 || general < 0 || special > general {
		t.Fatalf("unexpected section order:\n%s", m.Text)
	}
}

func TestFormatDigestPrintsBatchSummaryOnceAcrossCategories(t *testing.T) {
	t.Parallel()
	docs := []gazette.Document{
		testDoc("Gazette S 1", "https://g.example/s1.pdf", gazette.Special, "batch summary"),
		testDoc("Gazette G 11", "https://g.example/g11.pdf", gazette.General, "batch summary"),
	}
	m := FormatDigest(docs)
	if got := strings.Count(m.Text, "batch summary"); got != 1 {
		t.Fatalf("expected one copy of the batch summary, got %d:\n%s", got, m.Text)
	}
	if got := strings.Count(m.Text, "Key Highlights:"); got != 1 {
		t.Fatalf("expected one highlights block, got %d:\n%s", got, m.Text)
	}
}

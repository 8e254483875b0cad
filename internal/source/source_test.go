package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logx "gazettebot/pkg/logx"

	"github.com/PuerkitoBio/goquery"
)

const listingHTML = `<!doctype html>
<html><body>
<ul>
  <li><a href="/gazette/Gazettes2024/GG2024S123.pdf">
      Victoria Government Gazette  S 123
      Dated 14 March 2024</a></li>
  <li><a href="/gazette/Gazettes2024/GG2024G011.PDF#page=1">Victoria Government Gazette G 11 Dated 14 March 2024</a></li>
  <li><a href="/about.html">About</a></li>
  <li><a href="/notice.pdf?download=1">Notice form</a></li>
  <li><a href="">Empty</a></li>
</ul>
</body></html>`

func newListingServer(t *testing.T, robots string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/archives", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listingHTML)
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		if robots == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, robots)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestListerCollectsPDFLinksInPageOrder(t *testing.T) {
	t.Parallel()
	srv := newListingServer(t, "")
	l, err := NewLister(Config{URL: srv.URL + "/archives"}, logx.Nop())
	if err != nil {
		t.Fatalf("new lister: %v", err)
	}
	links, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(links) != 3 {
		t.Fatalf("expected 3 pdf links, got %d: %+v", len(links), links)
	}
	if links[0].URL != srv.URL+"/gazette/Gazettes2024/GG2024S123.pdf" {
		t.Fatalf("unexpected first url: %s", links[0].URL)
	}
	if links[0].Name != "Victoria Government Gazette S 123 Dated 14 March 2024" {
		t.Fatalf("name not normalised: %q", links[0].Name)
	}
	if links[1].URL != srv.URL+"/gazette/Gazettes2024/GG2024G011.PDF" {
		t.Fatalf("fragment not stripped or case-sensitive match: %s", links[1].URL)
	}
	if links[2].URL != srv.URL+"/notice.pdf?download=1" {
		t.Fatalf("query url lost: %s", links[2].URL)
	}
}

func TestListerResolvesAgainstBaseURL(t *testing.T) {
	t.Parallel()
	srv := newListingServer(t, "")
	l, err := NewLister(Config{URL: srv.URL + "/archives", BaseURL: "https://www.gazette.example"}, logx.Nop())
	if err != nil {
		t.Fatalf("new lister: %v", err)
	}
	links, err := l.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(links) == 0 || links[0].URL != "https://www.gazette.example/gazette/Gazettes2024/GG2024S123.pdf" {
		t.Fatalf("unexpected links: %+v", links)
	}
}

func TestListerFailsOnUnreachablePage(t *testing.T) {
	t.Parallel()
	srv := newListingServer(t, "")
	l, err := NewLister(Config{URL: srv.URL + "/missing"}, logx.Nop())
	if err != nil {
		t.Fatalf("new lister: %v", err)
	}
	if _, err := l.List(context.Background()); err == nil {
		t.Fatal("expected error for 404 listing")
	}
}

func TestListerHonoursRobots(t *testing.T) {
	t.Parallel()
	srv := newListingServer(t, "User-agent: *\nDisallow: /archives\n")
	l, err := NewLister(Config{URL: srv.URL + "/archives", RespectRobots: true}, logx.Nop())
	if err != nil {
		t.Fatalf("new lister: %v", err)
	}
	if _, err := l.List(context.Background()); !errors.Is(err, ErrRobotsDisallowed) {
		t.Fatalf("expected ErrRobotsDisallowed, got %v", err)
	}
}

func TestNewListerValidatesURLs(t *testing.T) {
	t.Parallel()
	if _, err := NewLister(Config{}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewLister(Config{URL: "https://a.example", BaseURL: "/relative"}, logx.Nop()); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestFetcher(t *testing.T) {
	t.Parallel()
	payload := bytes.Repeat([]byte("%PDF"), 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write(payload)
		default:
			http.Error(w, "gone", http.StatusGone)
		}
	}))
	defer srv.Close()

	f := NewFetcher(Config{}, logx.Nop())
	got, err := f.Fetch(context.Background(), srv.URL+"/ok.pdf")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: %d bytes", len(got))
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/gone.pdf"); err == nil {
		t.Fatal("expected status error")
	}

	small := NewFetcher(Config{MaxPDFBytes: 16}, logx.Nop())
	_, err = small.Fetch(context.Background(), srv.URL+"/ok.pdf")
	var tooLarge *ErrTooLarge
	if !errors.As(err, &tooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestAnchorTextFallsBackToTitle(t *testing.T) {
	t.Parallel()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<a id="a" href="/x.pdf">
  Gazette   S 1 </a><a id="b" href="/y.pdf" title="Gazette G 2 Dated 1 May 2024"><img src="pdf.png"></a>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := anchorText(doc.Find("#a")); got != "Gazette S 1" {
		t.Fatalf("text: got %q", got)
	}
	if got := anchorText(doc.Find("#b")); got != "Gazette G 2 Dated 1 May 2024" {
		t.Fatalf("title fallback: got %q", got)
	}
}

package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"gazettebot/internal/gazette"
	logx "gazettebot/pkg/logx"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

const DefaultUserAgent = "gazettebot/1.0 (+https://github.com/gazettebot)"

var ErrRobotsDisallowed = errors.New("source page disallowed by robots.txt")

// Config configures the lister and fetcher.
type Config struct {
	URL string
	// BaseURL resolves relative hrefs; empty means the page URL.
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	MaxPDFBytes   int64
	RespectRobots bool
}

func (c Config) userAgent() string {
	if ua := strings.TrimSpace(c.UserAgent); ua != "" {
		return ua
	}
	return DefaultUserAgent
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// Lister turns the listing page into an ordered list of PDF links.
type Lister struct {
	cfg    Config
	base   *url.URL
	robots *Robots
	log    logx.Logger
}

func NewLister(cfg Config, log logx.Logger) (*Lister, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("source url is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("source url: %w", err)
	}
	var base *url.URL
	if raw := strings.TrimSpace(cfg.BaseURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("source base_url must be absolute: %q", raw)
		}
		base = u
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	l := &Lister{cfg: cfg, base: base, log: log.With(logx.Comp("source"))}
	if cfg.RespectRobots {
		l.robots = NewRobots(cfg.userAgent(), cfg.timeout())
	}
	return l, nil
}

// List fetches the page and returns every anchor whose URL path ends in
// ".pdf", in page order. Names are whitespace-normalised anchor text.
// Failure to fetch or parse the page is returned as an error.
func (l *Lister) List(ctx context.Context) ([]gazette.Link, error) {
	if l.robots != nil {
		ok, err := l.robots.Allowed(ctx, l.cfg.URL)
		if err != nil {
			l.log.Warn("robots.txt check failed; continuing", logx.Err(err))
		} else if !ok {
			return nil, ErrRobotsDisallowed
		}
	}

	c := colly.NewCollector(
		colly.UserAgent(l.cfg.userAgent()),
	)
	c.SetRequestTimeout(l.cfg.timeout())

	var links []gazette.Link
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := strings.TrimSpace(e.Attr("href"))
		abs := l.resolve(e, href)
		if abs == "" || !isPDF(abs) {
			return
		}
		links = append(links, gazette.Link{
			Name: anchorText(e.DOM),
			URL:  abs,
		})
	})

	start := time.Now()
	if err := c.Visit(l.cfg.URL); err != nil {
		return nil, fmt.Errorf("list %s: %w", l.cfg.URL, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.log.Debug("listing scraped",
		logx.String("url", l.cfg.URL),
		logx.Int("links", len(links)),
		logx.Duration("took", time.Since(start)),
	)
	return links, nil
}

// anchorText is the visible link text, falling back to the title attribute
// for icon-only anchors.
func anchorText(sel *goquery.Selection) string {
	if name := gazette.NormalizeName(sel.Text()); name != "" {
		return name
	}
	title, _ := sel.Attr("title")
	return gazette.NormalizeName(title)
}

func (l *Lister) resolve(e *colly.HTMLElement, href string) string {
	if href == "" {
		return ""
	}
	if l.base == nil {
		return e.Request.AbsoluteURL(href)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	u := l.base.ResolveReference(ref)
	u.Fragment = ""
	return u.String()
}

func isPDF(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".pdf")
}

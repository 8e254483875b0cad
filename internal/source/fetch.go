package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	logx "gazettebot/pkg/logx"
)

// DefaultMaxPDFBytes caps a single download.
const DefaultMaxPDFBytes int64 = 50 << 20

// ErrTooLarge is returned when a PDF exceeds the configured cap.
type ErrTooLarge struct {
	URL   string
	Limit int64
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("pdf %s exceeds %d bytes", e.URL, e.Limit)
}

// Fetcher downloads PDF payloads.
type Fetcher struct {
	client *http.Client
	agent  string
	limit  int64
	log    logx.Logger
}

func NewFetcher(cfg Config, log logx.Logger) *Fetcher {
	limit := cfg.MaxPDFBytes
	if limit <= 0 {
		limit = DefaultMaxPDFBytes
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: cfg.timeout()},
		agent:  cfg.userAgent(),
		limit:  limit,
		log:    log.With(logx.Comp("fetch")),
	}
}

// Fetch downloads one document. Non-2xx responses are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.agent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.limit+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if int64(len(data)) > f.limit {
		return nil, &ErrTooLarge{URL: rawURL, Limit: f.limit}
	}
	f.log.Debug("pdf downloaded",
		logx.String("url", rawURL),
		logx.Int("bytes", len(data)),
		logx.Duration("took", time.Since(start)),
	)
	return data, nil
}

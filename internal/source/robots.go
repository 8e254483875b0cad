package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Robots checks a page URL against its host's robots.txt.
type Robots struct {
	agent  string
	client *http.Client
}

func NewRobots(agent string, timeout time.Duration) *Robots {
	return &Robots{agent: agent, client: &http.Client{Timeout: timeout}}
}

// Allowed fetches robots.txt for the page host and tests the page path.
// A missing robots.txt allows everything.
func (r *Robots) Allowed(ctx context.Context, page string) (bool, error) {
	u, err := url.Parse(page)
	if err != nil {
		return false, err
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", r.agent)
	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return false, err
	}
	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return data.TestAgent(target, r.agent), nil
}

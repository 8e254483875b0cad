package gazette

import (
	"sort"
	"strings"
	"time"
)

// DefaultRecencyWindow is how far back a publication may be dated and still
// be reported when discovered late.
const DefaultRecencyWindow = 7 * 24 * time.Hour

// Seen reports whether an identifier was already notified.
type Seen interface {
	Contains(id string) bool
}

// FilterOptions tunes Filter.
type FilterOptions struct {
	Now      time.Time
	Window   time.Duration
	Location *time.Location
}

// Filter returns the candidates that carry a parsable publication date inside
// the recency window and are not in seen, oldest first.
//
// Links without a date are skipped silently: the listing page carries many
// unrelated PDF anchors. Duplicate URLs keep their first dated occurrence. Equal
// dates keep reverse page order because the page lists newest first.
func Filter(links []Link, seen Seen, opt FilterOptions) []Document {
	loc := opt.Location
	if loc == nil {
		loc = time.Local
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	window := opt.Window
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	cutoff := startOfDay(now.Add(-window), loc)

	type indexed struct {
		doc Document
		pos int
	}
	out := make([]indexed, 0, len(links))
	dup := make(map[string]struct{}, len(links))
	for i, l := range links {
		id := strings.TrimSpace(l.URL)
		if id == "" {
			continue
		}
		if _, ok := dup[id]; ok {
			continue
		}

		name := NormalizeName(l.Name)
		published, ok := ParsePublished(name, loc)
		if !ok {
			// Icon or "PDF" anchors often precede the dated one for the
			// same URL; they must not claim it.
			continue
		}
		dup[id] = struct{}{}
		if published.Before(cutoff) {
			continue
		}
		if seen != nil && seen.Contains(id) {
			continue
		}
		out = append(out, indexed{
			doc: Document{
				ID:        id,
				Name:      name,
				Published: published,
				Category:  ParseCategory(name),
			},
			pos: i,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].doc.Published.Equal(out[b].doc.Published) {
			return out[a].doc.Published.Before(out[b].doc.Published)
		}
		return out[a].pos > out[b].pos
	})

	docs := make([]Document, len(out))
	for i := range out {
		docs[i] = out[i].doc
	}
	return docs
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

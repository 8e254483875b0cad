package orchestrator

import (
	"context"
	"strings"
	"time"

	"gazettebot/internal/gazette"
	"gazettebot/internal/notifier"
	"gazettebot/internal/seen"
	"gazettebot/internal/summarizer"
)

const (
	ModeDigest  = "digest"
	ModePerItem = "per_item"
)

type Lister interface {
	List(ctx context.Context) ([]gazette.Link, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ExtractFunc returns the text of the first pages of a PDF.
type ExtractFunc func(data []byte, pages int) (string, error)

type Summarizer interface {
	Summarize(ctx context.Context, text string, cat gazette.Category) (string, error)
	SummarizeBatch(ctx context.Context, items []summarizer.Item) (string, error)
}

type Notifier interface {
	Deliver(ctx context.Context, msg notifier.Message) error
}

// Deps are the collaborators of a run. Summarizer may be nil, in which case
// no PDF is fetched and notices carry links only.
type Deps struct {
	Lister     Lister
	Fetcher    Fetcher
	Extract    ExtractFunc
	Summarizer Summarizer
	Notifier   Notifier
	Store      seen.Backend
}

type Config struct {
	Mode         string
	Window       time.Duration
	Location     *time.Location
	SeenLimit    int
	SpecialPages int
	GeneralPages int
	// AICategories lists the categories whose PDFs are read and summarized.
	AICategories []gazette.Category
	// SaveTimeout bounds the final seen-set write, which runs even after the
	// run context expired.
	SaveTimeout time.Duration
}

func (c Config) withDefaults() Config {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode == "" {
		c.Mode = ModeDigest
	}
	if c.Window <= 0 {
		c.Window = gazette.DefaultRecencyWindow
	}
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.SeenLimit <= 0 {
		c.SeenLimit = seen.DefaultLimit
	}
	if c.SpecialPages <= 0 {
		c.SpecialPages = 2
	}
	if c.GeneralPages <= 0 {
		c.GeneralPages = 3
	}
	if c.AICategories == nil {
		c.AICategories = []gazette.Category{gazette.Special}
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 30 * time.Second
	}
	return c
}

func (c Config) pages(cat gazette.Category) int {
	if cat == gazette.Special {
		return c.SpecialPages
	}
	return c.GeneralPages
}

func (c Config) wantsAI(cat gazette.Category) bool {
	for _, x := range c.AICategories {
		if x == cat {
			return true
		}
	}
	return false
}

// Report summarises one run.
type Report struct {
	RunID      string
	Candidates int
	New        int
	// Skipped counts documents whose PDF could not be read.
	Skipped   int
	Notified  int
	Failed    int
	Committed int
	Took      time.Duration
}

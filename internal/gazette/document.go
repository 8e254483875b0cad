// Package gazette models published gazette documents and decides which of
// the scraped candidates are new enough and not yet reported.
package gazette

import (
	"strings"
	"time"
)

// Category is the publication stream a gazette belongs to.
type Category int

const (
	// General covers the weekly General issues and Periodical issues.
	General Category = iota
	// Special issues are urgent, published at any time, and get AI summaries.
	Special
)

func (c Category) String() string {
	switch c {
	case Special:
		return "special"
	default:
		return "general"
	}
}

// Label is the human form used in messages and prompts.
func (c Category) Label() string {
	switch c {
	case Special:
		return "Special"
	default:
		return "General"
	}
}

// ParseCategoryName maps a config value ("special", "general") to a Category.
func ParseCategoryName(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "special", "s":
		return Special, true
	case "general", "weekly", "periodical", "g", "p":
		return General, true
	default:
		return General, false
	}
}

// Link is one PDF anchor scraped from the listing page.
type Link struct {
	Name string
	URL  string
}

// Document is a gazette selected for processing.
type Document struct {
	// ID is the absolute retrieval URL and the seen-set key.
	ID        string
	Name      string
	Published time.Time
	Category  Category

	// Text is the extracted text of the first pages; empty when the
	// document's category gets no AI treatment.
	Text string
	// Summary is set once summarization ran (possibly to the sentinel).
	Summary string
}

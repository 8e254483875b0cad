// Package summarizer turns extracted gazette text into short AI summaries.
//
// Generation failures never block delivery: rate-limit errors are retried
// with backoff and, once attempts run out, Summarize returns Unavailable.
package summarizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"gazettebot/internal/gazette"
	logx "gazettebot/pkg/logx"
	"gazettebot/pkg/tgui"
)

// Unavailable is shown in place of a summary when the generation service
// could not produce one.
const Unavailable = "⚠️ AI summary unavailable right now (quota or service limit). The gazette is available at the link below."

const (
	DefaultCharBudget      = 6000
	DefaultBatchCharBudget = 2000
)

// Generator is the generation service.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

type Config struct {
	Model           string
	CharBudget      int
	BatchCharBudget int
	Retry           RetryPolicy
}

// Item is one document in a batch request.
type Item struct {
	Name     string
	Text     string
	Category gazette.Category
}

type Summarizer struct {
	gen Generator
	cfg Config
	log logx.Logger
}

func New(gen Generator, cfg Config, log logx.Logger) *Summarizer {
	if cfg.CharBudget <= 0 {
		cfg.CharBudget = DefaultCharBudget
	}
	if cfg.BatchCharBudget <= 0 {
		cfg.BatchCharBudget = DefaultBatchCharBudget
	}
	cfg.Retry = cfg.Retry.normalize()
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Summarizer{gen: gen, cfg: cfg, log: log.With(logx.Comp("summarizer"))}
}

// Summarize summarizes one document's text.
//
// Rate-limited failures are retried; when attempts run out the result is
// Unavailable with a nil error. Other generation errors are returned
// unretried. Context cancellation is returned as is.
func (s *Summarizer) Summarize(ctx context.Context, text string, cat gazette.Category) (string, error) {
	prompt := buildPrompt(tgui.HeadRunes(strings.TrimSpace(text), s.cfg.CharBudget), cat)
	return s.generate(ctx, prompt, logx.String("category", cat.String()))
}

// SummarizeBatch summarizes several documents in one generation call.
func (s *Summarizer) SummarizeBatch(ctx context.Context, items []Item) (string, error) {
	switch len(items) {
	case 0:
		return "", nil
	case 1:
		return s.Summarize(ctx, items[0].Text, items[0].Category)
	}
	prompt := buildBatchPrompt(items, s.cfg.BatchCharBudget)
	return s.generate(ctx, prompt, logx.Int("batch", len(items)))
}

func (s *Summarizer) generate(ctx context.Context, prompt string, fields ...logx.Field) (string, error) {
	start := time.Now()
	attempts := 0
	var out string
	err := s.cfg.Retry.do(ctx, s.log, func() error {
		attempts++
		text, err := s.gen.Generate(ctx, s.cfg.Model, prompt)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return ErrEmptyResponse
		}
		out = text
		return nil
	})

	fields = append(fields,
		logx.Int("attempts", attempts),
		logx.Int("prompt_chars", len(prompt)),
		logx.Duration("took", time.Since(start)),
	)
	switch {
	case err == nil:
		s.log.Debug("summary generated", fields...)
		return out, nil
	case ctx.Err() != nil:
		return "", ctx.Err()
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return "", err
	case IsRetryable(err):
		s.log.Warn("generation attempts exhausted; using fallback", append(fields, logx.Err(err))...)
		return Unavailable, nil
	default:
		s.log.Warn("generation failed", append(fields, logx.Err(err))...)
		return "", err
	}
}

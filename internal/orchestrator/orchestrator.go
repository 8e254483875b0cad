// Package orchestrator runs one check: discover new gazettes, summarize and
// notify, then commit delivered identifiers to the seen-set.
//
// Only a confirmed delivery commits an identifier. A document whose PDF
// could not be read, or whose message was not delivered, stays unseen and
// is retried on the next run. Runs must not overlap: two concurrent runs
// against the same store would overwrite each other's seen-set.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gazettebot/internal/gazette"
	"gazettebot/internal/notifier"
	"gazettebot/internal/pdftext"
	"gazettebot/internal/seen"
	"gazettebot/internal/summarizer"
	logx "gazettebot/pkg/logx"

	"github.com/google/uuid"
)

type Orchestrator struct {
	cfg  Config
	deps Deps
	log  logx.Logger
	now  func() time.Time
}

func New(cfg Config, deps Deps, log logx.Logger) (*Orchestrator, error) {
	if deps.Lister == nil {
		return nil, errors.New("orchestrator: lister is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("orchestrator: notifier is required")
	}
	if deps.Store == nil {
		return nil, errors.New("orchestrator: seen store is required")
	}
	if deps.Summarizer != nil && deps.Fetcher == nil {
		return nil, errors.New("orchestrator: fetcher is required when summaries are enabled")
	}
	if deps.Extract == nil {
		deps.Extract = pdftext.Extract
	}
	cfg = cfg.withDefaults()
	switch cfg.Mode {
	case ModeDigest, ModePerItem:
	default:
		return nil, fmt.Errorf("orchestrator: unknown mode %q", cfg.Mode)
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Orchestrator{cfg: cfg, deps: deps, log: log.With(logx.Comp("orchestrator")), now: time.Now}, nil
}

// Run performs one check. The returned error is non-nil only for fatal
// conditions: the seen-set could not be loaded or saved, or the listing
// could not be fetched.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	start := o.now()
	rep := Report{RunID: uuid.NewString()}
	log := o.log.With(logx.String("run_id", rep.RunID))

	// Discover.
	set, err := seen.Load(ctx, o.deps.Store)
	if err != nil {
		return rep, err
	}
	links, err := o.deps.Lister.List(ctx)
	if err != nil {
		return rep, fmt.Errorf("list candidates: %w", err)
	}
	rep.Candidates = len(links)

	docs := gazette.Filter(links, set, gazette.FilterOptions{
		Now:      start,
		Window:   o.cfg.Window,
		Location: o.cfg.Location,
	})
	rep.New = len(docs)
	if len(docs) == 0 {
		log.Info("no new gazettes", logx.Int("candidates", rep.Candidates), logx.Int("seen", set.Len()))
		rep.Took = time.Since(start)
		return rep, nil
	}
	log.Info("new gazettes found", logx.Int("candidates", rep.Candidates), logx.Int("new", rep.New))

	// Summarize & notify.
	ready := o.prepare(ctx, log, docs, &rep)
	var delivered []gazette.Document
	switch o.cfg.Mode {
	case ModePerItem:
		delivered = o.notifyEach(ctx, log, ready, &rep)
	default:
		delivered = o.notifyDigest(ctx, log, ready, &rep)
	}

	// Commit.
	for _, d := range delivered {
		if set.Add(d.ID) {
			rep.Committed++
		}
	}
	if set.Dirty() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.SaveTimeout)
		defer cancel()
		if err := set.Save(sctx, o.deps.Store, o.cfg.SeenLimit); err != nil {
			return rep, err
		}
	}

	rep.Took = time.Since(start)
	log.Info("run finished",
		logx.Int("new", rep.New),
		logx.Int("skipped", rep.Skipped),
		logx.Int("notified", rep.Notified),
		logx.Int("failed", rep.Failed),
		logx.Int("committed", rep.Committed),
		logx.Duration("took", rep.Took),
	)
	return rep, nil
}

// prepare reads the PDF text of every document that gets an AI summary.
// Documents whose PDF cannot be fetched or parsed are dropped.
func (o *Orchestrator) prepare(ctx context.Context, log logx.Logger, docs []gazette.Document, rep *Report) []gazette.Document {
	if o.deps.Summarizer == nil {
		return docs
	}
	out := make([]gazette.Document, 0, len(docs))
	for _, d := range docs {
		if !o.cfg.wantsAI(d.Category) {
			out = append(out, d)
			continue
		}
		dl := log.With(logx.String("doc", d.Name), logx.String("url", d.ID))
		data, err := o.deps.Fetcher.Fetch(ctx, d.ID)
		if err != nil {
			rep.Skipped++
			dl.Warn("pdf fetch failed; will retry next run", logx.Err(err))
			continue
		}
		text, err := o.deps.Extract(data, o.cfg.pages(d.Category))
		if err != nil {
			rep.Skipped++
			dl.Warn("pdf unreadable; will retry next run", logx.Err(err))
			continue
		}
		d.Text = text
		if text == "" {
			dl.Info("pdf has no extractable text; sending link only")
		}
		out = append(out, d)
	}
	return out
}

func (o *Orchestrator) summarize(ctx context.Context, log logx.Logger, d gazette.Document) string {
	s, err := o.deps.Summarizer.Summarize(ctx, d.Text, d.Category)
	if err != nil {
		log.Warn("summary failed; using fallback", logx.String("doc", d.Name), logx.Err(err))
		return summarizer.Unavailable
	}
	return s
}

func (o *Orchestrator) notifyEach(ctx context.Context, log logx.Logger, docs []gazette.Document, rep *Report) []gazette.Document {
	delivered := make([]gazette.Document, 0, len(docs))
	for _, d := range docs {
		if d.Text != "" {
			d.Summary = o.summarize(ctx, log, d)
		}
		if err := o.deps.Notifier.Deliver(ctx, notifier.FormatItem(d)); err != nil {
			rep.Failed++
			log.Error("notification failed; not committing", logx.String("doc", d.Name), logx.Err(err))
			continue
		}
		rep.Notified++
		delivered = append(delivered, d)
	}
	return delivered
}

func (o *Orchestrator) notifyDigest(ctx context.Context, log logx.Logger, docs []gazette.Document, rep *Report) []gazette.Document {
	if len(docs) == 0 {
		return nil
	}

	var idx []int
	var items []summarizer.Item
	for i, d := range docs {
		if d.Text == "" {
			continue
		}
		idx = append(idx, i)
		items = append(items, summarizer.Item{Name: d.Name, Text: d.Text, Category: d.Category})
	}
	if len(items) > 0 {
		combined, err := o.deps.Summarizer.SummarizeBatch(ctx, items)
		if err != nil {
			log.Warn("batch summary failed; using fallback", logx.Int("batch", len(items)), logx.Err(err))
			combined = summarizer.Unavailable
		}
		for _, i := range idx {
			docs[i].Summary = combined
		}
	}

	if err := o.deps.Notifier.Deliver(ctx, notifier.FormatDigest(docs)); err != nil {
		rep.Failed += len(docs)
		log.Error("digest notification failed; not committing", logx.Int("docs", len(docs)), logx.Err(err))
		return nil
	}
	rep.Notified += len(docs)
	return docs
}

package notifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	kit "gazettebot/internal/transport"
	logx "gazettebot/pkg/logx"

	"golang.org/x/time/rate"
)

var ErrEmptyMessage = errors.New("notifier: empty message")

// Service delivers messages synchronously through an adapter.
//
// It is not safe for concurrent use; a run owns one Service.
type Service struct {
	log     logx.Logger
	adapter kit.Adapter
	target  kit.ChatTarget
	cfg     Config
	limiter *rate.Limiter

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config, adapter kit.Adapter, target kit.ChatTarget, log logx.Logger) *Service {
	cfg = cfg.withDefaults()
	if log.IsZero() {
		log = logx.Nop()
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.MinInterval > 0 {
		lim = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return &Service{
		log:     log.With(logx.Comp("notifier")),
		adapter: adapter,
		target:  target,
		cfg:     cfg,
		limiter: lim,
		sleep:   sleepCtx,
	}
}

// Deliver sends msg to the configured chat. It returns nil only when every
// chunk was accepted. A partial delivery is reported as an error.
func (s *Service) Deliver(ctx context.Context, msg Message) error {
	if s.adapter == nil {
		return errors.New("notifier: no adapter")
	}
	if msg.Text == "" {
		return ErrEmptyMessage
	}
	chunks := splitTelegramText(msg.Text, s.cfg.ChunkLimit, msg.Options.ParseMode)

	opt := msg.Options
	for i, chunk := range chunks {
		if err := s.sendWithRetry(ctx, chunk, &opt); err != nil {
			return fmt.Errorf("deliver chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	s.log.Debug("message delivered", logx.Int("chunks", len(chunks)))
	return nil
}

func (s *Service) sendWithRetry(ctx context.Context, text string, opt *kit.SendOptions) error {
	maxAttempts := 1 + s.cfg.RetryMax

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
		_, err := s.adapter.SendText(callCtx, s.target, text, opt)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("send failed", logx.Err(err), logx.Int("attempt", attempt), logx.Int("max", maxAttempts))

		if attempt >= maxAttempts {
			break
		}
		if err := s.sleep(ctx, retryDelay(s.cfg, attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func retryDelay(cfg Config, attempt int) time.Duration {
	// attempt starts at 1 (first attempt), delay is for the NEXT attempt.
	base := cfg.RetryBase
	maxD := cfg.RetryMaxDelay
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxD {
			d = maxD
			break
		}
	}
	// Jitter 0.7..1.3
	j := 0.7 + rand.Float64()*0.6
	d = time.Duration(float64(d) * j)
	if d < 0 {
		return 0
	}
	if d > maxD {
		d = maxD
	}
	return d
}

package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"gazettebot/internal/config"
	"gazettebot/internal/orchestrator"
	"gazettebot/internal/runtime/supervisor"
	"gazettebot/internal/schedule"
	logx "gazettebot/pkg/logx"
)

// stopGrace bounds how long Serve waits for an in-flight check on shutdown.
const stopGrace = 30 * time.Second

// Serve runs checks on the configured schedule until ctx is done. Config
// file changes are applied live; storage changes need a restart.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.cfgm.Get()
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	spec, err := schedule.Parse(cfg.Scheduler.Schedule)
	if err != nil {
		return fmt.Errorf("scheduler.schedule: %w", err)
	}
	loc, err := config.ParseLocation("scheduler.timezone", cfg.Scheduler.Timezone)
	if err != nil {
		return err
	}

	log := a.log.With(logx.Comp("scheduler"))
	cl := cronLogger{log: log}
	c := cron.New(cron.WithLocation(loc), cron.WithLogger(cl))

	// Run-on-start and scheduled ticks share one wrapped job so overlap
	// skipping covers both.
	job := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() { a.tick(ctx) }))

	sched, err := cronSchedule(spec)
	if err != nil {
		return err
	}
	entry := c.Schedule(sched, job)
	c.Start()
	log.Info("scheduler started",
		logx.String("schedule", spec.String()),
		logx.String("timezone", loc.String()),
		logx.Time("next", c.Entry(entry).Next),
	)

	sup := supervisor.New(ctx, supervisor.WithLogger(log))
	if cfg.Scheduler.RunOnStart {
		sup.Go("run_on_start", func(context.Context) error {
			job.Run()
			return nil
		})
	}
	sup.GoRestart("config.watch", a.cfgm.Watch, time.Second, time.Minute)
	sup.Go("systemd.watchdog", func(ctx context.Context) error {
		watchdog(ctx, log)
		return nil
	})

	sub := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(sub)

	sdNotify(log, daemon.SdNotifyReady)

	current := cfg
	currentSpec := spec
	for {
		select {
		case <-ctx.Done():
			sdNotify(log, daemon.SdNotifyStopping)
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-time.After(stopGrace):
				log.Warn("check still running at shutdown", logx.Duration("grace", stopGrace))
			}
			if err := sup.Wait(stopGrace); err != nil {
				log.Warn("background tasks did not stop in time", logx.Err(err))
			}
			if err := sup.Err(); err != nil {
				log.Warn("background task failed", logx.Err(err))
			}
			log.Info("scheduler stopped")
			return nil
		case next, ok := <-sub:
			if !ok {
				return errors.New("config subscription closed")
			}
			next = drainLatest(sub, next)
			a.applyConfig(current, next)
			if s, changed := rescheduleNeeded(currentSpec, next); changed {
				sched, err := cronSchedule(s)
				if err != nil {
					log.Warn("schedule update rejected", logx.String("schedule", s.String()), logx.Err(err))
				} else {
					c.Remove(entry)
					entry = c.Schedule(sched, job)
					currentSpec = s
					log.Info("schedule updated", logx.String("schedule", s.String()), logx.Time("next", c.Entry(entry).Next))
				}
			}
			current = next
		}
	}
}

func (a *App) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	rep, err := a.RunOnce(ctx)
	if err != nil {
		a.log.Error("check failed", logx.String("run_id", rep.RunID), logx.Err(err))
		return
	}
	logReport(a.log, rep)
}

// applyConfig logs what changed and applies the settings that can change
// without a restart.
func (a *App) applyConfig(prev, next *config.Config) {
	changed, attrs := config.SummarizeConfigChange(prev, next)
	if len(changed) == 0 {
		return
	}
	fields := append([]logx.Field{logx.Strings("sections", changed)}, attrs...)
	a.log.Info("config reloaded", fields...)

	if !reflect.DeepEqual(prev.Logging, next.Logging) {
		a.logs.Apply(mapLoggingConfig(next))
	}
	if sc, err := mapStorageConfig(next); err == nil && sc != a.storeCfg {
		a.log.Warn("storage settings changed; restart required to apply", logx.String("driver", sc.Driver))
	}
	if strings.TrimSpace(prev.Scheduler.Timezone) != strings.TrimSpace(next.Scheduler.Timezone) {
		a.log.Warn("scheduler timezone changed; restart required to apply")
	}
}

// rescheduleNeeded reports the new spec when the schedule string changed.
func rescheduleNeeded(cur schedule.Spec, next *config.Config) (schedule.Spec, bool) {
	s, err := schedule.Parse(next.Scheduler.Schedule)
	if err != nil || s.CronSpec() == cur.CronSpec() {
		return cur, false
	}
	return s, true
}

func drainLatest(ch <-chan *config.Config, cur *config.Config) *config.Config {
	for {
		select {
		case next, ok := <-ch:
			if !ok {
				return cur
			}
			cur = next
		default:
			return cur
		}
	}
}

func cronSchedule(s schedule.Spec) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(s.CronSpec())
	if err != nil {
		return nil, fmt.Errorf("schedule %q: %w", s.CronSpec(), err)
	}
	return sched, nil
}

func logReport(log logx.Logger, rep orchestrator.Report) {
	log.Info("check complete",
		logx.String("run_id", rep.RunID),
		logx.Int("candidates", rep.Candidates),
		logx.Int("new", rep.New),
		logx.Int("skipped", rep.Skipped),
		logx.Int("notified", rep.Notified),
		logx.Int("failed", rep.Failed),
		logx.Int("committed", rep.Committed),
		logx.Duration("took", rep.Took),
	)
}

// LogReport writes a run summary line.
func (a *App) LogReport(rep orchestrator.Report) { logReport(a.log, rep) }

func sdNotify(log logx.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Warn("systemd notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		log.Debug("systemd notified", logx.String("state", state))
	}
}

// watchdog pings systemd at half the configured WatchdogSec. It returns at
// once when the unit has no watchdog.
func watchdog(ctx context.Context, log logx.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		log.Warn("systemd watchdog check failed", logx.Err(err))
		return
	}
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct {
	log logx.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}

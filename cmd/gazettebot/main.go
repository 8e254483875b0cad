package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gazettebot/internal/app"
	logx "gazettebot/pkg/logx"
)

func main() {
	var (
		cfgPath string
		once    bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config json/yaml (empty: defaults + environment)")
	flag.BoolVar(&once, "once", false, "run a single check and exit, even when the scheduler is enabled")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	os.Exit(run(ctx, a, once))
}

func run(ctx context.Context, a *app.App, once bool) int {
	defer func() { _ = a.Close() }()
	log := a.Logger()

	if missing := a.MissingCredentials(); len(missing) > 0 {
		log.Error("missing credentials; nothing to do",
			logx.String("missing", strings.Join(missing, ", ")),
		)
		return 0
	}

	if a.Config().Scheduler.Enabled && !once {
		if err := a.Serve(ctx); err != nil {
			log.Error("daemon stopped", logx.Err(err))
			return 1
		}
		return 0
	}

	rep, err := a.RunOnce(ctx)
	if err != nil {
		if errors.Is(err, app.ErrMissingCredentials) {
			log.Error("missing credentials; nothing to do", logx.Err(err))
			return 0
		}
		log.Error("check failed", logx.String("run_id", rep.RunID), logx.Err(err))
		return 1
	}
	a.LogReport(rep)
	return 0
}

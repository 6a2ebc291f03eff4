package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"mprobe"
	"mprobe/internal/config"
	"mprobe/internal/logging"
	"mprobe/internal/match"
	"mprobe/procstats"
	"mprobe/reporter/console"
)

// Runtime defines runtime inputs required to start the probe agent.
// Params: ConfigPath points to the TOML configuration file; Reload triggers predicate reapplication.
// Returns: Runtime value used by Run.
type Runtime struct {
	ConfigPath string
	Reload     <-chan struct{}
}

// runDeps groups injectable dependencies for tests.
type runDeps struct {
	loadConfig  func(string) (*config.Config, error)
	newLogger   func(config.LogConfig) (*slog.Logger, func(), error)
	setReporter func(*config.Config) error
	startPprof  func(context.Context, config.PprofConfig, *slog.Logger) (func(), error)
	newPushers  func(config.ProcstatsConfig) ([]procstats.Pusher, error)
}

// Run loads configuration, wires the reporter and stat sources, and applies
// the activation predicate; Runtime.Reload reapplies the predicate from a
// freshly loaded config. The reporter's AtExit hook fires once on stop.
// Params: ctx controls lifecycle; rt provides runtime inputs.
// Returns: error on startup failure, nil on graceful stop.
func Run(ctx context.Context, rt Runtime) error {
	return runWithDeps(ctx, rt, defaultRunDeps())
}

// defaultRunDeps provides production runtime dependencies.
// Params: none.
// Returns: dependency set used by Run.
func defaultRunDeps() runDeps {
	return runDeps{
		loadConfig: config.Load,
		newLogger:  logging.New,
		setReporter: func(cfg *config.Config) error {
			switch cfg.Report.Sink {
			case "console":
				mprobe.SetReporter(console.New(os.Stdout))
			case "none":
				mprobe.SetReporter(nil)
			default:
				return fmt.Errorf("unsupported report sink %q", cfg.Report.Sink)
			}
			return nil
		},
		startPprof: startPprofServer,
		newPushers: buildPushers,
	}
}

// runWithDeps executes the agent lifecycle using injectable dependencies.
// Params: ctx controls lifecycle; rt runtime inputs; deps dependency set.
// Returns: runtime error or nil on graceful stop.
func runWithDeps(ctx context.Context, rt Runtime, deps runDeps) error {
	if strings.TrimSpace(rt.ConfigPath) == "" {
		return fmt.Errorf("config path is required")
	}

	cfg, err := deps.loadConfig(rt.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLogger, err := deps.newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLogger()

	if err := deps.setReporter(cfg); err != nil {
		return fmt.Errorf("install reporter: %w", err)
	}
	defer mprobe.Shutdown()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopPprof, err := deps.startPprof(runCtx, cfg.Pprof, logger)
	if err != nil {
		return fmt.Errorf("start pprof: %w", err)
	}
	defer stopPprof()

	pushers, err := deps.newPushers(cfg.Procstats)
	if err != nil {
		return fmt.Errorf("build stat sources: %w", err)
	}

	ApplyPredicate(cfg.Metrics, logger)

	var collectWG sync.WaitGroup
	if len(pushers) > 0 {
		collectWG.Add(1)
		go func() {
			defer collectWG.Done()
			_ = procstats.Collect(runCtx, cfg.Procstats.Scrape.Duration, logger, pushers...)
		}()
	}

	logger.Info("probe agent started",
		slog.String("sink", cfg.Report.Sink),
		slog.Int("sources", len(mprobe.Sources())),
	)

	reloadCh := rt.Reload
	for {
		select {
		case <-ctx.Done():
			cancel()
			collectWG.Wait()
			logger.Info("probe agent stopped", slog.String("reason", ctx.Err().Error()))
			return nil
		case _, ok := <-reloadCh:
			if !ok {
				reloadCh = nil
				continue
			}

			nextCfg, reloadErr := deps.loadConfig(rt.ConfigPath)
			if reloadErr != nil {
				logger.Error("config reload rejected", slog.String("error", reloadErr.Error()))
				continue
			}
			ApplyPredicate(nextCfg.Metrics, logger)
			logger.Info("activation predicate reloaded")
		}
	}
}

// buildPushers declares the configured GC/process stat sources.
// Params: cfg procstats settings.
// Returns: stat producers or error opening a configured process.
func buildPushers(cfg config.ProcstatsConfig) ([]procstats.Pusher, error) {
	if !cfg.On() {
		return nil, nil
	}

	pushers := []procstats.Pusher{procstats.NewGC()}

	if cfg.WatchSelf() {
		self, err := procstats.Self()
		if err != nil {
			return nil, err
		}
		pushers = append(pushers, self)
	}
	for _, pid := range cfg.PIDs {
		proc, err := procstats.NewProc(pid)
		if err != nil {
			return nil, err
		}
		pushers = append(pushers, proc)
	}

	return pushers, nil
}

// ApplyPredicate translates config into predicate operations. Patterns with
// '*' wildcards are expanded against the tag domains of registered sources;
// exact names are enabled directly, so patterns cover later-declared sources
// only when their tags match an already-enabled name.
// Params: cfg activation settings; logger decision sink.
// Returns: none.
func ApplyPredicate(cfg config.MetricsConfig, logger *slog.Logger) {
	mprobe.DisableAll()

	if cfg.EnableAll {
		mprobe.EnableAll()
		logger.Info("all sources enabled")
		return
	}

	for _, raw := range cfg.EnableTags {
		pattern := strings.TrimSpace(raw)
		if !strings.Contains(pattern, "*") {
			mprobe.EnableTag(pattern)
			continue
		}

		compiled, ok := match.CompileWildcard(pattern)
		if !ok {
			continue
		}
		for _, name := range registeredTagNames() {
			if compiled.Match(name) {
				mprobe.EnableTag(name)
			}
		}
	}

	logger.Info("enabled tags applied", slog.Int("tags", len(mprobe.Default().EnabledTags())))
}

// registeredTagNames collects the union of all source tag domains.
// Params: none.
// Returns: union of declared tag names, first-seen order.
func registeredTagNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, src := range mprobe.Sources() {
		for _, name := range src.Domain() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

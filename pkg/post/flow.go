// Package post implements the post-job hook of the compiler cache
// action: report stats, optionally evict entries unused during the job,
// and persist the cache directory when there is something to save.
//
// The flow never fails its caller. Whatever goes wrong inside it is
// recovered into a single warning, because a missed cache save must not
// break a green build.
package post

import (
	"context"
	"fmt"
	"time"

	"github.com/nektos/cachepost/pkg/cachestore"
	"github.com/nektos/cachepost/pkg/cachetool"
	"github.com/nektos/cachepost/pkg/common"
	"github.com/nektos/cachepost/pkg/jobstate"
	"github.com/nektos/cachepost/pkg/workflowcmd"
)

// Tool is the subset of the cache tool surface the flow drives.
type Tool interface {
	CacheDir() string
	SupportsVerboseStats(ctx context.Context) (bool, error)
	SupportsEviction(ctx context.Context) bool
	PrintStats(ctx context.Context, verbosity string) error
	IsEmpty(ctx context.Context, verboseSupported bool) (bool, error)
	EvictOlderThan(ctx context.Context, age int64) error
}

// Config carries everything the flow needs. Zero fields fall back to
// the process environment, so a bare Config{State: ...} behaves like
// the hook run by the runner.
type Config struct {
	State   jobstate.State
	Verbose string // the "verbose" input; empty means "0"

	Tool    Tool                  // nil: resolved from State.Variant
	Uptime  cachetool.UptimeProbe // nil: platform default
	Saver   cachestore.Saver      // nil: selected from environment
	Emitter *workflowcmd.Emitter  // nil: from environment
	Now     func() time.Time      // nil: time.Now
}

// Run executes the save flow. It never returns an error; failures are
// reported through the Result after being logged as a warning.
func Run(ctx context.Context, cfg Config) Result {
	emitter := cfg.Emitter
	if emitter == nil {
		emitter = workflowcmd.New()
	}

	if !cfg.State.Complete() {
		emitter.Notice(ctx, "cache setup never completed, nothing to save")
		return Result{Outcome: OutcomeSkippedNoState, Done: true}
	}

	outcome, err := run(ctx, cfg, emitter)
	if err != nil {
		emitter.Warning(ctx, "saving cache failed: %v", err)
		return Result{Outcome: OutcomeRecovered, Err: err, Done: true}
	}
	return Result{Outcome: outcome, Done: true}
}

func run(ctx context.Context, cfg Config, emitter *workflowcmd.Emitter) (Outcome, error) {
	st := cfg.State

	tool := cfg.Tool
	if tool == nil {
		t, err := cachetool.New(st.Variant)
		if err != nil {
			return 0, err
		}
		tool = t
	}

	verboseSupported, err := tool.SupportsVerboseStats(ctx)
	if err != nil {
		return 0, err
	}
	verbosity := ""
	if verboseSupported {
		level := cfg.Verbose
		if level == "" {
			level = "0"
		}
		verbosity = cachetool.ResolveVerbosity(ctx, level)
	}

	stats := func(ctx context.Context) error {
		return tool.PrintStats(ctx, verbosity)
	}

	cleanGroup := common.NewConditionalExecutor(cleanRequested(st),
		emitter.InGroup("Cleaning unused cache entries", common.NewPipelineExecutor(
			stats,
			evictByJobUptime(cfg, tool),
			stats,
		)), nil)

	if err := common.NewPipelineExecutor(
		cleanGroup,
		emitter.InGroup(fmt.Sprintf("%s stats", st.Variant), stats),
	)(ctx); err != nil {
		return 0, err
	}

	if !st.SaveEnabled() {
		return OutcomeSkippedDisabled, common.NewInfoExecutor("cache save disabled, skipping")(ctx)
	}

	empty, err := tool.IsEmpty(ctx, verboseSupported)
	if err != nil {
		return 0, err
	}
	if empty {
		return OutcomeSkippedEmptyCache, common.NewInfoExecutor("not saving empty cache")(ctx)
	}

	saver := cfg.Saver
	if saver == nil {
		s, err := cachestore.FromEnvironment()
		if err != nil {
			return 0, err
		}
		saver = s
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	key := cachestore.SaveKey(st.PrimaryKey, st.TimestampEnabled(), now())

	if err := saver.Save(ctx, key, []string{tool.CacheDir()}); err != nil {
		return 0, err
	}
	return OutcomeSaved, nil
}

func cleanRequested(st jobstate.State) common.Conditional {
	return func(_ context.Context) bool {
		return st.CleanEnabled()
	}
}

// evictByJobUptime drops everything not touched since the job host
// booted. CI runners boot per job, so entries older than the uptime
// were never used by this job. Returning a Warning lets the pipeline
// log it and still print the after-clean stats.
func evictByJobUptime(cfg Config, tool Tool) common.Executor {
	return func(ctx context.Context) error {
		if !tool.SupportsEviction(ctx) {
			return common.Warning{Message: fmt.Sprintf("%s does not support eviction by age, skipping clean", cfg.State.Variant)}
		}
		probe := cfg.Uptime
		if probe == nil {
			probe = cachetool.NewUptimeProbe()
		}
		uptime, err := probe.Uptime(ctx)
		if err != nil {
			return err
		}
		return tool.EvictOlderThan(ctx, uptime)
	}
}

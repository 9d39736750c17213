// internal/core/usecases/orchestrator.go
package usecases

import (
	"context"
	"sync"
	"time"

	"subsweep/internal/core/domain"
	"subsweep/internal/core/ports"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/logx"
)

// SourceTask pairs a source with its per-task time budget.
type SourceTask struct {
	Source ports.Source

	// Timeout bounds this source's run. Zero means the orchestrator default.
	Timeout time.Duration
}

// SkippedSource names a source that never ran and why.
type SkippedSource struct {
	Name   string
	Reason string
}

// Orchestrator fans the enumeration out across all sources with bounded
// concurrency and collects results through a shared aggregator. A failing
// source only loses its own contribution.
type Orchestrator struct {
	tasks   []SourceTask
	skipped []SkippedSource
	logger  logx.Logger

	maxWorkers     int
	defaultTimeout time.Duration
	maxTime        time.Duration
}

// OrchestratorOptions configures the orchestrator.
type OrchestratorOptions struct {
	Tasks   []SourceTask
	Skipped []SkippedSource
	Logger  logx.Logger

	// MaxWorkers bounds how many sources run at once. Default: 10.
	MaxWorkers int

	// DefaultTimeout is the per-source budget when a task has none. Default: 30s.
	DefaultTimeout time.Duration

	// MaxTime is the global budget for the whole run. Zero means no global
	// deadline beyond the caller's context.
	MaxTime time.Duration
}

// NewOrchestrator creates a new orchestrator instance.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 10
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}

	return &Orchestrator{
		tasks:          opts.Tasks,
		skipped:        opts.Skipped,
		logger:         opts.Logger.With("component", "orchestrator"),
		maxWorkers:     opts.MaxWorkers,
		defaultTimeout: opts.DefaultTimeout,
		maxTime:        opts.MaxTime,
	}
}

// Run enumerates target across all tasks and returns the consolidated
// summary. Partial results survive per-source failures and the global
// deadline; only target validation or an empty task list fail the run.
func (o *Orchestrator) Run(ctx context.Context, target domain.Target) (*domain.RunSummary, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	if len(o.tasks) == 0 {
		return nil, domain.ErrNoSourcesAvailable
	}

	runCtx := ctx
	if o.maxTime > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.maxTime)
		defer cancel()
	}

	o.logger.Info("starting enumeration",
		"target", target.Root,
		"sources", len(o.tasks),
		"workers", o.maxWorkers,
	)

	start := time.Now()
	agg := NewAggregator(target)
	reports := o.executeTasks(runCtx, target, agg)

	hostnames := agg.Drain()

	// Skipped sources are reported alongside the ones that ran.
	for _, sk := range o.skipped {
		reports = append(reports, domain.SourceReport{
			Source:  sk.Name,
			Outcome: domain.OutcomeSkippedMissingCredential,
			Detail:  sk.Reason,
		})
	}

	summary := &domain.RunSummary{
		Domain:      target.Root,
		Hostnames:   hostnames,
		Reports:     reports,
		Invalid:     agg.InvalidCount(),
		Elapsed:     time.Since(start),
		DeadlineHit: runCtx.Err() == context.DeadlineExceeded,
	}

	o.logger.Info("enumeration completed",
		"target", target.Root,
		"hostnames", len(hostnames),
		"invalid", summary.Invalid,
		"deadline_hit", summary.DeadlineHit,
		"duration_ms", summary.Elapsed.Milliseconds(),
	)

	return summary, nil
}

// executeTasks runs all tasks with bounded concurrency.
func (o *Orchestrator) executeTasks(ctx context.Context, target domain.Target, agg *Aggregator) []domain.SourceReport {
	sem := make(chan struct{}, o.maxWorkers)
	var wg sync.WaitGroup
	reports := make([]domain.SourceReport, 0, len(o.tasks))
	reportsMu := sync.Mutex{}

	for _, task := range o.tasks {
		wg.Add(1)
		go func(t SourceTask) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			report := o.executeTask(ctx, t, target, agg)

			reportsMu.Lock()
			reports = append(reports, report)
			reportsMu.Unlock()
		}(task)
	}

	wg.Wait()
	return reports
}

// executeTask runs a single source under its own deadline and converts the
// result into a report. A panicking source is contained here.
func (o *Orchestrator) executeTask(ctx context.Context, task SourceTask, target domain.Target, agg *Aggregator) (report domain.SourceReport) {
	name := task.Source.Name()

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = o.defaultTimeout
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Err(errors.Errorf("source %s panicked: %v", name, r), "source", name)
			report = o.finishReport(agg, name, domain.OutcomeTransportError, "panic during run", time.Time{})
		}
	}()

	o.logger.Debug("executing source", "source", name)
	start := time.Now()
	err := task.Source.Run(taskCtx, target, agg.SinkFor(name))

	outcome, detail := classifyOutcome(ctx, taskCtx, err)
	if err != nil && outcome != domain.OutcomeCompleted {
		o.logger.Warn("source did not complete",
			"source", name,
			"outcome", string(outcome),
			"error", err.Error(),
		)
	}

	return o.finishReport(agg, name, outcome, detail, start)
}

func (o *Orchestrator) finishReport(agg *Aggregator, name string, outcome domain.Outcome, detail string, start time.Time) domain.SourceReport {
	submitted, contributed := agg.Stats(name)
	var elapsed time.Duration
	if !start.IsZero() {
		elapsed = time.Since(start)
	}

	o.logger.Debug("source finished",
		"source", name,
		"outcome", string(outcome),
		"submitted", submitted,
		"contributed", contributed,
		"duration_ms", elapsed.Milliseconds(),
	)

	return domain.SourceReport{
		Source:      name,
		Outcome:     outcome,
		Submitted:   submitted,
		Contributed: contributed,
		Duration:    elapsed,
		Detail:      detail,
	}
}

// classifyOutcome maps a source error onto the outcome taxonomy. Context
// state distinguishes a per-source timeout from a run-wide cancellation.
func classifyOutcome(runCtx, taskCtx context.Context, err error) (domain.Outcome, string) {
	if err == nil {
		return domain.OutcomeCompleted, ""
	}

	switch {
	case errors.IsMissingCredential(err):
		return domain.OutcomeSkippedMissingCredential, err.Error()
	case errors.IsRateLimit(err):
		return domain.OutcomeRateLimited, err.Error()
	case errors.IsInvalidResponse(err):
		return domain.OutcomeParseError, err.Error()
	}

	if runCtx.Err() != nil {
		return domain.OutcomeCancelled, err.Error()
	}
	if errors.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) || taskCtx.Err() == context.DeadlineExceeded {
		return domain.OutcomeTimeout, err.Error()
	}

	return domain.OutcomeTransportError, err.Error()
}

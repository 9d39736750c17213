// cmd/subsweep/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subsweep/internal/adapters/output"
	"subsweep/internal/core/domain"
	"subsweep/internal/core/usecases"
	"subsweep/internal/platform/config"
	"subsweep/internal/platform/errors"
	"subsweep/internal/platform/httpclient"
	"subsweep/internal/platform/keystore"
	"subsweep/internal/platform/logx"
	"subsweep/internal/platform/registry"
	"subsweep/internal/platform/ui"

	// Import sources for auto-registration via init()
	_ "subsweep/internal/sources/alienvault"
	_ "subsweep/internal/sources/anubis"
	_ "subsweep/internal/sources/bufferover"
	_ "subsweep/internal/sources/censys"
	_ "subsweep/internal/sources/certspotter"
	_ "subsweep/internal/sources/chaos"
	_ "subsweep/internal/sources/commoncrawl"
	_ "subsweep/internal/sources/crtsh"
	_ "subsweep/internal/sources/dnsdb"
	_ "subsweep/internal/sources/dnsdumpster"
	_ "subsweep/internal/sources/github"
	_ "subsweep/internal/sources/hackertarget"
	_ "subsweep/internal/sources/rapiddns"
	_ "subsweep/internal/sources/riddler"
	_ "subsweep/internal/sources/threatcrowd"
	_ "subsweep/internal/sources/virustotal"
	_ "subsweep/internal/sources/webarchive"
)

var (
	// Set via -ldflags at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: subsweep [flags] <domain>")
		fmt.Fprintln(os.Stderr, "Try: subsweep -h for help")
		return 2
	}

	if cfg.PrintVersion {
		fmt.Printf("subsweep %s (commit %s, built %s)\n", version, commit, date)
		return 0
	}

	logger := logx.New()
	if cfg.Verbose {
		logger.SetLevel(logx.LevelDebug)
	}

	logger.Info("subsweep starting",
		"version", version,
		"domain", cfg.Domain,
		"workers", cfg.Workers,
		"timeout_s", cfg.TimeoutS,
		"max_time_m", cfg.MaxTimeM,
	)

	target := domain.NewTarget(cfg.Domain)
	if err := target.Validate(); err != nil {
		logger.Err(err, "phase", "validation")
		return 2
	}

	// Credential store. A broken keys file only disables authenticated
	// sources, it never aborts the run.
	store := keystore.Empty()
	if cfg.KeysFile != "" {
		loaded, err := keystore.Load(cfg.KeysFile)
		if err != nil {
			logger.Warn("keys file not usable, continuing without credentials",
				"path", cfg.KeysFile,
				"error", err.Error(),
			)
		} else {
			store = loaded
			logger.Debug("credentials loaded", "path", cfg.KeysFile, "entries", store.Len())
		}
	}
	for name, sc := range cfg.Sources {
		if cred, ok := store.Get(name); ok {
			sc.Credential = cred
			cfg.Sources[name] = sc
		}
	}

	// One pooled client shared by every source.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.SourceTimeout()
	if cfg.ProxySpec != "" {
		proxyURL, err := cfg.ProxyURL()
		if err != nil {
			logger.Err(err, "phase", "proxy")
			return 2
		}
		clientCfg.ProxyURL = proxyURL
	}
	client := httpclient.New(clientCfg, logger)

	ctx, cancel := rootContextWithSignals()
	defer cancel()

	if clientCfg.ProxyURL != nil {
		if _, err := client.VerifyProxy(ctx, httpclient.VerifyProxyOptions{}); err != nil {
			logger.Err(err, "phase", "proxy-verify")
			return 2
		}
	}

	built, skipped, err := registry.Global().Build(cfg.Sources, client, logger)
	if err != nil {
		logger.Err(err, "phase", "source-build")
		return 2
	}

	tasks := make([]usecases.SourceTask, 0, len(built))
	for _, b := range built {
		tasks = append(tasks, usecases.SourceTask{
			Source:  b.Source,
			Timeout: b.Config.Timeout,
		})
	}
	skippedSources := make([]usecases.SkippedSource, 0, len(skipped))
	for _, s := range skipped {
		skippedSources = append(skippedSources, usecases.SkippedSource{
			Name:   s.Name,
			Reason: s.Reason,
		})
		logger.Debug("source skipped", "source", s.Name, "reason", s.Reason)
	}

	presenter := ui.NewPresenter(cfg.Verbose)
	presenter.Banner(ui.RunInfo{
		Domain:         target.Root,
		Sources:        len(tasks),
		Workers:        cfg.Workers,
		TimeoutSeconds: cfg.TimeoutS,
		MaxTimeMinutes: cfg.MaxTimeM,
		Proxy:          cfg.ProxySpec,
	})

	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Tasks:          tasks,
		Skipped:        skippedSources,
		Logger:         logger,
		MaxWorkers:     cfg.Workers,
		DefaultTimeout: cfg.SourceTimeout(),
		MaxTime:        cfg.MaxTime(),
	})

	start := time.Now()
	summary, runErr := orch.Run(ctx, target)
	elapsed := time.Since(start)

	if runErr != nil {
		logger.Err(runErr, "phase", "run", "elapsed_ms", elapsed.Milliseconds())
		if summary == nil || errors.IsFatal(runErr) {
			return 1
		}
	}

	presenter.Summary(summary)

	if err := output.WriteHostnames(os.Stdout, summary); err != nil {
		logger.Err(err, "phase", "output")
		return 1
	}

	logger.Info("subsweep finished",
		"hostnames", len(summary.Hostnames),
		"sources", len(summary.Reports),
		"elapsed", domain.FormatElapsed(summary.Elapsed),
	)
	return 0
}

// rootContextWithSignals returns a context cancelled on SIGINT or SIGTERM.
// The global run budget lives in the orchestrator, not here.
func rootContextWithSignals() (context.Context, context.CancelFunc) {
	base, baseCancel := context.WithCancel(context.Background())

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			baseCancel()
		case <-base.Done():
		}
	}()

	cleanup := func() {
		signal.Stop(ch)
		baseCancel()
	}
	return base, cleanup
}

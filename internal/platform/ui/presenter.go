// internal/platform/ui/presenter.go
//
// Package ui renders run progress and the final per-source summary. All
// output goes to stderr so stdout stays a clean hostname list.
package ui

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"subsweep/internal/core/domain"
)

// RunInfo describes a run for the banner.
type RunInfo struct {
	Domain         string
	Sources        int
	Workers        int
	TimeoutSeconds int
	MaxTimeMinutes int
	Proxy          string
}

// Presenter renders run diagnostics.
type Presenter interface {
	// Banner prints the run header before enumeration starts.
	Banner(info RunInfo)

	// Summary prints the per-source outcome table and totals.
	Summary(summary *domain.RunSummary)
}

// NewPresenter returns the pterm presenter when verbose is on, otherwise a
// no-op.
func NewPresenter(verbose bool) Presenter {
	if verbose {
		return NewPTermPresenter()
	}
	return NoopPresenter{}
}

// NoopPresenter renders nothing.
type NoopPresenter struct{}

func (NoopPresenter) Banner(RunInfo)             {}
func (NoopPresenter) Summary(*domain.RunSummary) {}

// PTermPresenter renders with pterm to stderr.
type PTermPresenter struct {
	writer *os.File
}

func NewPTermPresenter() *PTermPresenter {
	return &PTermPresenter{writer: os.Stderr}
}

func (p *PTermPresenter) Banner(info RunInfo) {
	pterm.DefaultHeader.
		WithWriter(p.writer).
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("subsweep - passive subdomain enumeration")

	text := fmt.Sprintf("Target:  %s\n", pterm.Cyan(info.Domain))
	text += fmt.Sprintf("Sources: %d\n", info.Sources)
	text += fmt.Sprintf("Workers: %d\n", info.Workers)
	text += fmt.Sprintf("Timeout: %ds per source, %dm total", info.TimeoutSeconds, info.MaxTimeMinutes)
	if info.Proxy != "" {
		text += fmt.Sprintf("\nProxy:   %s", info.Proxy)
	}

	pterm.DefaultBox.
		WithWriter(p.writer).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Println(text)
}

func (p *PTermPresenter) Summary(summary *domain.RunSummary) {
	rows := pterm.TableData{
		{"Source", "Outcome", "Found", "New", "Duration"},
	}
	for _, r := range summary.Reports {
		duration := ""
		if r.Outcome.Ran() {
			duration = domain.FormatElapsed(r.Duration)
		}
		rows = append(rows, []string{
			r.Source,
			p.colorOutcome(r.Outcome),
			fmt.Sprintf("%d", r.Submitted),
			fmt.Sprintf("%d", r.Contributed),
			duration,
		})
	}

	if err := pterm.DefaultTable.
		WithWriter(p.writer).
		WithHasHeader().
		WithData(rows).
		Render(); err != nil {
		fmt.Fprintf(p.writer, "summary render failed: %v\n", err)
	}

	totals := fmt.Sprintf("%s unique subdomains for %s in %s (%d out-of-scope candidates dropped)",
		pterm.Green(fmt.Sprintf("%d", len(summary.Hostnames))),
		summary.Domain,
		domain.FormatElapsed(summary.Elapsed),
		summary.Invalid,
	)
	fmt.Fprintln(p.writer, totals)

	if summary.DeadlineHit {
		pterm.Warning.WithWriter(p.writer).Println("global time budget reached, results are partial")
	}
}

func (p *PTermPresenter) colorOutcome(o domain.Outcome) string {
	switch o {
	case domain.OutcomeCompleted:
		return pterm.Green(o.String())
	case domain.OutcomeSkippedMissingCredential:
		return pterm.Gray(o.String())
	case domain.OutcomeTimeout, domain.OutcomeCancelled:
		return pterm.Yellow(o.String())
	default:
		return pterm.Red(o.String())
	}
}

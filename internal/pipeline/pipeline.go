// Package pipeline sequences the batch stages: discover, probe, partition,
// then per chunk remediate, validate and aggregate, and finally render
// reports. Stages are strictly sequential; parallelism lives only inside a
// chunk's worker pool.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/aggregate"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/config"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/discovery"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/partition"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/pdfix"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/probe"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/report"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/runner"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/verapdf"
)

// Phase ids recorded in the run log and shown on the dashboard.
const (
	PhaseRemediate = "pdfix-make-accessible"
	PhaseValidate  = "validation-report"
	PhaseReport    = "report-summary"
)

// Pipeline owns the collaborators for one batch run.
type Pipeline struct {
	cfg       *config.Config
	prober    *probe.Prober
	engine    pdfix.Engine
	validator verapdf.Validator
}

// New creates a pipeline over the given collaborators. Engine and validator
// are interfaces so the opaque tools can be swapped without touching the
// orchestration.
func New(cfg *config.Config, engine pdfix.Engine, validator verapdf.Validator) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		prober:    probe.NewProber(),
		engine:    engine,
		validator: validator,
	}
}

// Fix remediates every PDF in the folder, re-validates the remediated
// output, and writes the full set of report artifacts.
func (p *Pipeline) Fix(ctx context.Context, folder string) error {
	chunks, total, err := p.prepare(ctx, folder)
	if err != nil {
		return err
	}

	summaryDir, err := p.summaryDir(folder)
	if err != nil {
		return err
	}
	logPath := filepath.Join(summaryDir, report.RunLogName)

	acc := aggregate.NewAccumulator()
	var allOutcomes []verapdf.Outcome

	fixStart := time.Now()
	var validateTotal time.Duration
	for _, chunk := range chunks {
		if err := p.remediateChunk(ctx, chunk); err != nil {
			return err
		}

		validateStart := time.Now()
		outcomes, err := p.validateChunk(ctx, chunk, true)
		if err != nil {
			return err
		}
		validateTotal += time.Since(validateStart)

		// Single-threaded reduction after the pool has joined
		acc.Add(outcomes)
		allOutcomes = append(allOutcomes, outcomes...)
	}
	fixTotal := time.Since(fixStart) - validateTotal

	now := time.Now()
	if err := report.AppendRunLog(logPath, PhaseRemediate, total, fixTotal, now); err != nil {
		return err
	}
	if err := report.AppendRunLog(logPath, PhaseValidate, total, validateTotal, now); err != nil {
		return err
	}

	return p.writeArtifacts(acc, allOutcomes, folder, summaryDir)
}

// Validate runs the validator over the folder's input files without
// remediating them, and writes the full set of report artifacts.
func (p *Pipeline) Validate(ctx context.Context, folder string) error {
	chunks, total, err := p.prepare(ctx, folder)
	if err != nil {
		return err
	}

	summaryDir, err := p.summaryDir(folder)
	if err != nil {
		return err
	}
	logPath := filepath.Join(summaryDir, report.RunLogName)

	acc := aggregate.NewAccumulator()
	var allOutcomes []verapdf.Outcome

	start := time.Now()
	for _, chunk := range chunks {
		outcomes, err := p.validateChunk(ctx, chunk, false)
		if err != nil {
			return err
		}
		acc.Add(outcomes)
		allOutcomes = append(allOutcomes, outcomes...)
	}

	if err := report.AppendRunLog(logPath, PhaseValidate, total, time.Since(start), time.Now()); err != nil {
		return err
	}

	return p.writeArtifacts(acc, allOutcomes, folder, summaryDir)
}

// Report rebuilds the summary artifacts and dashboard from previously
// persisted validator XML, without re-running remediation or validation.
func (p *Pipeline) Report(ctx context.Context, folder string) error {
	xmlDir := filepath.Join(p.cfg.ReportsRoot, folder)
	if _, err := os.Stat(xmlDir); os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist. Run validate first", xmlDir)
	}

	start := time.Now()
	acc, parsed, err := aggregate.LoadReportDir(xmlDir, p.cfg.Workers)
	if err != nil {
		return err
	}
	if parsed == 0 {
		return fmt.Errorf("no XML files found in %s. Run validate first", xmlDir)
	}

	summaryDir, err := p.summaryDir(folder)
	if err != nil {
		return err
	}

	logPath := filepath.Join(summaryDir, report.RunLogName)
	if err := report.AppendRunLog(logPath, PhaseReport, parsed, time.Since(start), time.Now()); err != nil {
		return err
	}

	return p.writeArtifacts(acc, nil, folder, summaryDir)
}

// prepare discovers, probes and partitions the folder's files. Zero files is
// a terminal condition surfaced as a one-line error.
func (p *Pipeline) prepare(ctx context.Context, folder string) ([]partition.Chunk, int, error) {
	jobs, err := discovery.Discover(p.cfg, folder)
	if err != nil {
		return nil, 0, err
	}
	if len(jobs) == 0 {
		return nil, 0, fmt.Errorf("no PDF files found under %s. Add input files and retry",
			filepath.Join(p.cfg.InputRoot, folder))
	}
	log.Printf("Found %d PDF files.", len(jobs))

	jobs = p.prober.ProbeAll(ctx, jobs, p.cfg.Workers)
	log.Printf("With %d total pages.", probe.TotalPages(jobs))

	chunks := partition.NewPartitioner(nil, p.cfg.ChunkSize).Partition(jobs)
	return chunks, len(jobs), nil
}

// remediateChunk runs the engine over one chunk. Engine failures are logged
// and coerced; validation of the missing output later surfaces them as
// errors in the compliance counts.
func (p *Pipeline) remediateChunk(ctx context.Context, chunk partition.Chunk) error {
	bar := newBar(len(chunk.Jobs), "remediate "+chunk.Label)
	defer finishBar(bar)

	op := func(ctx context.Context, job discovery.FileJob) (struct{}, error) {
		defer barAdd(bar)
		return struct{}{}, p.engine.Fix(ctx, job.InputPath, job.OutputPath)
	}

	results, err := runner.Run(ctx, chunk.Jobs, op, runner.Options{
		Workers: p.cfg.Workers,
		Timeout: p.cfg.JobTimeout,
		Policy:  runner.Coerce,
	})
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Status != runner.Ok {
			log.Printf("remediation %s: %s: %v", r.Status, r.Job.Name(), r.Err)
		}
	}
	return nil
}

// validateChunk validates one chunk in input order. With remediated=true the
// engine's output path is validated instead of the original input.
func (p *Pipeline) validateChunk(ctx context.Context, chunk partition.Chunk, remediated bool) ([]verapdf.Outcome, error) {
	bar := newBar(len(chunk.Jobs), "validate "+chunk.Label)
	defer finishBar(bar)

	op := func(ctx context.Context, job discovery.FileJob) (verapdf.Outcome, error) {
		defer barAdd(bar)
		target := job.InputPath
		if remediated {
			target = job.OutputPath
		}
		return p.validator.Validate(ctx, target, job.ReportDir), nil
	}

	results, err := runner.Run(ctx, chunk.Jobs, op, runner.Options{
		Workers: p.cfg.Workers,
		Timeout: p.cfg.JobTimeout,
		Policy:  runner.Coerce,
	})
	if err != nil {
		return nil, err
	}

	// Results align with input order; timeouts and panics become Error
	// verdicts so no file is omitted from the final counts.
	outcomes := make([]verapdf.Outcome, len(results))
	for i, r := range results {
		if r.Status == runner.Ok {
			outcomes[i] = r.Value
			continue
		}
		log.Printf("validation %s: %s: %v", r.Status, r.Job.Name(), r.Err)
		outcomes[i] = verapdf.Outcome{Filename: r.Job.Name(), Verdict: verapdf.Error}
	}
	return outcomes, nil
}

// writeArtifacts renders all durable outputs for one run.
func (p *Pipeline) writeArtifacts(acc *aggregate.Accumulator, outcomes []verapdf.Outcome, folder, summaryDir string) error {
	summary := acc.Summary()
	log.Printf("Passed: %d, Failed: %d, Errors: %d",
		summary.CompliantCount, summary.NonCompliantCount, summary.ErrorCount)

	if err := report.WriteComplianceReport(summary, filepath.Join(summaryDir, report.ComplianceReportName)); err != nil {
		return err
	}
	if err := report.WriteClauseSummary(acc.ClauseStats(), filepath.Join(summaryDir, report.ClauseSummaryName)); err != nil {
		return err
	}
	if err := report.WriteFileSummary(acc, filepath.Join(summaryDir, report.FileSummaryName)); err != nil {
		return err
	}

	now := time.Now()
	if len(outcomes) > 0 {
		reportDir := filepath.Join(p.cfg.ReportsRoot, folder)
		resultsPath, err := report.WriteValidationResults(outcomes, reportDir, folder, now)
		if err != nil {
			return err
		}
		log.Printf("Detailed results saved to %s", resultsPath)

		rulesPath, err := report.WriteFailedRules(outcomes, reportDir, folder, now)
		if err != nil {
			return err
		}
		if rulesPath != "" {
			log.Printf("Failed rules saved to %s", rulesPath)
		}
	}

	htmlPath, err := report.WriteHTML(summaryDir, p.cfg.State, p.cfg.Company, now)
	if err != nil {
		return err
	}
	log.Printf("Generated HTML: %s", htmlPath)
	return nil
}

func (p *Pipeline) summaryDir(folder string) (string, error) {
	dir := filepath.Join(p.cfg.ReportsRoot, folder, "summary")
	if err := os.MkdirAll(dir, config.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("cannot create summary directory %s: %w", dir, err)
	}
	return dir, nil
}

// Progress bars are cosmetic; every helper tolerates a nil bar so tests can
// run the pipeline headless.

func newBar(n int, label string) *progressbar.ProgressBar {
	if n == 0 {
		return nil
	}
	return progressbar.Default(int64(n), label)
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

func finishBar(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}

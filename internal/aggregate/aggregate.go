// Package aggregate reduces per-file validation outcomes into the compliance
// summary and clause statistics the report writers consume. The accumulator
// is explicit state passed through the chunk loop; it is only ever touched
// by the single-threaded driver after a chunk's worker pool has joined.
package aggregate

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/verapdf"
)

// ComplianceSummary is the derived, recomputable aggregate for one run.
type ComplianceSummary struct {
	CompliantCount    int
	NonCompliantCount int
	ErrorCount        int
	CompliantFiles    []string // sorted
	NonCompliantFiles []string // sorted
	ErrorFiles        []string // sorted
}

// ClauseStat counts the distinct files violating one clause.
type ClauseStat struct {
	Clause      string
	Description string
	FileCount   int
}

// Accumulator accumulates running statistics across sequentially processed
// chunks. Never shared across goroutines.
type Accumulator struct {
	compliant    map[string]struct{}
	nonCompliant map[string][]verapdf.Violation // deduplicated per file
	errored      map[string]struct{}
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		compliant:    make(map[string]struct{}),
		nonCompliant: make(map[string][]verapdf.Violation),
		errored:      make(map[string]struct{}),
	}
}

// Add folds one chunk's ordered validation outcomes into the running totals.
func (a *Accumulator) Add(outcomes []verapdf.Outcome) {
	for _, o := range outcomes {
		switch o.Verdict {
		case verapdf.Compliant:
			a.compliant[o.Filename] = struct{}{}
		case verapdf.NonCompliant:
			a.nonCompliant[o.Filename] = Dedup(append(a.nonCompliant[o.Filename], o.Violations...))
		case verapdf.Error:
			a.errored[o.Filename] = struct{}{}
		}
	}
}

// AddReport folds one parsed validator report: a file with zero issues is
// compliant, anything else is non-compliant.
func (a *Accumulator) AddReport(filename string, violations []verapdf.Violation) {
	if len(violations) == 0 {
		a.compliant[filename] = struct{}{}
		return
	}
	a.nonCompliant[filename] = Dedup(append(a.nonCompliant[filename], violations...))
}

// Summary derives the compliance summary from the accumulated outcomes.
func (a *Accumulator) Summary() ComplianceSummary {
	return ComplianceSummary{
		CompliantCount:    len(a.compliant),
		NonCompliantCount: len(a.nonCompliant),
		ErrorCount:        len(a.errored),
		CompliantFiles:    sortedKeys(a.compliant),
		NonCompliantFiles: sortedViolationKeys(a.nonCompliant),
		ErrorFiles:        sortedKeys(a.errored),
	}
}

// Violations returns one file's deduplicated violation list.
func (a *Accumulator) Violations(filename string) []verapdf.Violation {
	return a.nonCompliant[filename]
}

// ClauseStats builds the clause -> distinct-file-count table by scanning
// each file's deduplicated violation list once. Multiple violations of the
// same clause within one file count as one toward that clause. Results are
// sorted by clause id ascending.
func (a *Accumulator) ClauseStats() []ClauseStat {
	stats := make(map[string]*ClauseStat)
	for _, violations := range a.nonCompliant {
		for _, v := range violations {
			s, ok := stats[v.Clause]
			if !ok {
				stats[v.Clause] = &ClauseStat{Clause: v.Clause, Description: v.Description, FileCount: 1}
				continue
			}
			s.FileCount++
			if s.Description == "" && v.Description != "" {
				s.Description = v.Description
			}
		}
	}

	out := make([]ClauseStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Clause < out[j].Clause })
	return out
}

// AllClauses returns the sorted set of clause ids seen across all files.
func (a *Accumulator) AllClauses() []string {
	seen := make(map[string]struct{})
	for _, violations := range a.nonCompliant {
		for _, v := range violations {
			seen[v.Clause] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Dedup collapses repeated clauses: at most one violation per distinct
// clause, first match wins, except that a non-empty description replaces an
// earlier empty one. The result is sorted by clause.
func Dedup(violations []verapdf.Violation) []verapdf.Violation {
	index := make(map[string]int)
	var out []verapdf.Violation
	for _, v := range violations {
		if i, ok := index[v.Clause]; ok {
			if out[i].Description == "" && v.Description != "" {
				out[i].Description = v.Description
			}
			continue
		}
		index[v.Clause] = len(out)
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Clause < out[j].Clause })
	return out
}

// LoadReportDir rebuilds an accumulator from previously persisted validator
// XML, parsing reports with a bounded worker pool. A malformed XML report is
// fatal and carries the offending file path; the operator must fix it, not
// skip it.
func LoadReportDir(dir string, workers int) (*Accumulator, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot read report directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".xml") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	if workers < 1 {
		workers = 1
	}

	type parsed struct {
		filename   string
		violations []verapdf.Violation
		err        error
	}

	results := make([]parsed, len(paths))
	indexCh := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				name, violations, err := verapdf.ParseReportFile(paths[i])
				results[i] = parsed{filename: filepath.Base(name), violations: violations, err: err}
			}
		}()
	}
	for i := range paths {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	acc := NewAccumulator()
	for _, r := range results {
		if r.err != nil {
			return nil, 0, r.err
		}
		acc.AddReport(r.filename, r.violations)
	}
	return acc, len(paths), nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedViolationKeys(m map[string][]verapdf.Violation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package report renders aggregated results into the durable artifacts that
// form the system of record across runs: a compliance summary, a
// clause-frequency table, a per-file clause-presence matrix and an HTML
// dashboard.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/aggregate"
	"github.com/ivanbueno-jcc/pdf-remediation/internal/verapdf"
)

// Canonical artifact names, shared by the writer and the HTML generator.
const (
	ComplianceReportName = "verapdf-compliance-report.txt"
	ClauseSummaryName    = "verapdf-clause-summary.csv"
	FileSummaryName      = "verapdf-file-summary.csv"
	RunLogName           = "output.txt"
)

// WriteComplianceReport writes the plaintext compliance summary. Rebuilding
// it twice from the same outcome set yields byte-identical output.
func WriteComplianceReport(summary aggregate.ComplianceSummary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create compliance report: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "Compliant File Count: %d\n", summary.CompliantCount)
	fmt.Fprintf(f, "Non-Compliant File Count: %d\n\n", summary.NonCompliantCount)

	fmt.Fprintln(f, "Compliant Files:")
	for _, name := range summary.CompliantFiles {
		fmt.Fprintln(f, filepath.Base(name))
	}
	fmt.Fprintln(f)

	fmt.Fprintln(f, "Non-Compliant Files:")
	for _, name := range summary.NonCompliantFiles {
		fmt.Fprintln(f, filepath.Base(name))
	}

	return nil
}

// WriteClauseSummary writes the clause-frequency CSV, one row per distinct
// clause sorted ascending; Count is the number of distinct files exhibiting
// that clause.
func WriteClauseSummary(stats []aggregate.ClauseStat, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create clause summary: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Clause", "Count", "Description"}); err != nil {
		return fmt.Errorf("cannot write clause summary header: %w", err)
	}
	for _, s := range stats {
		if err := w.Write([]string{s.Clause, strconv.Itoa(s.FileCount), s.Description}); err != nil {
			return fmt.Errorf("cannot write clause summary row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteFileSummary writes the file-by-clause presence matrix: clause columns
// sorted ascending, one row per non-compliant or compliant file sorted by
// name, "O" marking a violated clause.
func WriteFileSummary(acc *aggregate.Accumulator, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create file summary: %w", err)
	}
	defer f.Close()

	clauses := acc.AllClauses()
	header := append([]string{"file"}, clauses...)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write file summary header: %w", err)
	}

	summary := acc.Summary()
	files := make([]string, 0, len(summary.CompliantFiles)+len(summary.NonCompliantFiles))
	files = append(files, summary.CompliantFiles...)
	files = append(files, summary.NonCompliantFiles...)
	sort.Strings(files)

	for _, file := range files {
		present := make(map[string]struct{})
		for _, v := range acc.Violations(file) {
			present[v.Clause] = struct{}{}
		}

		row := make([]string, 0, len(header))
		row = append(row, filepath.Base(file))
		for _, clause := range clauses {
			if _, ok := present[clause]; ok {
				row = append(row, "O")
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("cannot write file summary row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteValidationResults writes the timestamped per-file verdict CSV kept
// alongside the summaries after a validation pass.
func WriteValidationResults(outcomes []verapdf.Outcome, dir, folder string, now time.Time) (string, error) {
	stamp := now.Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("%s_vera_validation_results_%s.csv", folder, stamp))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create validation results: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Filename", "Validation Result"}); err != nil {
		return "", fmt.Errorf("cannot write validation results header: %w", err)
	}
	for _, o := range outcomes {
		if err := w.Write([]string{o.Filename, verdictToken(o.Verdict)}); err != nil {
			return "", fmt.Errorf("cannot write validation results row: %w", err)
		}
	}
	w.Flush()
	return path, w.Error()
}

// WriteFailedRules writes the timestamped raw rule-violation CSV. Nothing is
// written when no violations were recorded; the empty string return signals
// that.
func WriteFailedRules(outcomes []verapdf.Outcome, dir, folder string, now time.Time) (string, error) {
	var rows [][]string
	for _, o := range outcomes {
		for _, v := range o.Violations {
			rows = append(rows, []string{o.Filename, v.Specification, v.Clause, v.Tags, v.Description})
		}
	}
	if len(rows) == 0 {
		return "", nil
	}

	stamp := now.Format("2006-01-02_15-04-05")
	path := filepath.Join(dir, fmt.Sprintf("%s_failed_rules_%s.csv", folder, stamp))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create failed rules report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Filename", "Specification", "Clause", "Tags", "Description"}); err != nil {
		return "", fmt.Errorf("cannot write failed rules header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("cannot write failed rules row: %w", err)
		}
	}
	w.Flush()
	return path, w.Error()
}

// verdictToken preserves the historical CSV vocabulary
func verdictToken(v verapdf.Verdict) string {
	switch v {
	case verapdf.Compliant:
		return "True"
	case verapdf.NonCompliant:
		return "False"
	default:
		return "Error"
	}
}

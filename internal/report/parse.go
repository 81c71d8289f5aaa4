package report

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/aggregate"
)

// The standalone HTML step regenerates the dashboard from previously written
// artifacts without touching PDFs or validator output. Parsers here are
// deliberately lenient: a missing or malformed artifact reads as "no data",
// never as a fatal error.

// ParseComplianceReport reads the counts and file lists back out of the
// plaintext compliance report.
func ParseComplianceReport(path string) aggregate.ComplianceSummary {
	var summary aggregate.ComplianceSummary

	data, err := os.ReadFile(path)
	if err != nil {
		return summary
	}

	mode := ""
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "Compliant File Count:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				summary.CompliantCount = n
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "Non-Compliant File Count:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
				summary.NonCompliantCount = n
			}
			continue
		}
		if strings.HasPrefix(line, "Non-Compliant Files") {
			mode = "non-compliant"
			continue
		}
		if strings.HasPrefix(line, "Compliant Files") {
			mode = "compliant"
			continue
		}

		switch mode {
		case "compliant":
			summary.CompliantFiles = append(summary.CompliantFiles, line)
		case "non-compliant":
			summary.NonCompliantFiles = append(summary.NonCompliantFiles, line)
		}
	}
	return summary
}

// ParseClauseSummary reads the clause-frequency CSV back into clause stats.
func ParseClauseSummary(path string) []aggregate.ClauseStat {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var stats []aggregate.ClauseStat
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats
		}

		var s aggregate.ClauseStat
		if i, ok := col["Clause"]; ok && i < len(row) {
			s.Clause = row[i]
		}
		if i, ok := col["Description"]; ok && i < len(row) {
			s.Description = row[i]
		}
		if i, ok := col["Count"]; ok && i < len(row) {
			if n, err := strconv.Atoi(row[i]); err == nil {
				s.FileCount = n
			}
		}
		stats = append(stats, s)
	}
	return stats
}

// ParseFileSummaryCount returns the number of distinct files listed in the
// file-by-clause matrix.
func ParseFileSummaryCount(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		return 0
	}

	names := make(map[string]struct{})
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if len(row) > 0 {
			if name := strings.TrimSpace(row[0]); name != "" {
				names[name] = struct{}{}
			}
		}
	}
	return len(names)
}

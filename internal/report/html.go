package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/aggregate"
)

// topClauseLimit caps the clause-frequency table on the dashboard.
const topClauseLimit = 100

var operationLabels = map[string]string{
	"font-fix-callas":       "Font Fix (Callas)",
	"pdfix-make-accessible": "PDFix - Make Accessible",
	"validation-report":     "veraPDF Validation",
	"report-summary":        "veraPDF Summary",
}

type stepView struct {
	Label        string
	Operation    string
	FilesText    string
	DurationText string
}

type clauseView struct {
	Clause      string
	Description string
	FileCount   int
}

type dashboardData struct {
	Company          string
	State            string
	GeneratedAt      string
	TotalFilesText   string
	CompliantCount   int
	NonCompliantText string
	NonCompliantCnt  int
	CompliantPct     string
	NonCompliantPct  string
	Steps            []stepView
	TotalRuntime     string
	TopClauses       []clauseView
	FileSummaryCount int
}

// WriteHTML regenerates the dashboard from the three prior artifacts plus
// the run log in dir. It needs neither the original PDFs nor the validator
// XML, so reports can be re-themed or re-run after the fact.
func WriteHTML(dir, state, company string, now time.Time) (string, error) {
	summary := ParseComplianceReport(filepath.Join(dir, ComplianceReportName))
	clauses := ParseClauseSummary(filepath.Join(dir, ClauseSummaryName))
	fileCount := ParseFileSummaryCount(filepath.Join(dir, FileSummaryName))
	steps := ParseRunLog(filepath.Join(dir, RunLogName))

	data := buildDashboard(summary, clauses, fileCount, steps, state, company, now)

	var sb strings.Builder
	if err := dashboardTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("cannot render dashboard: %w", err)
	}

	slug := strings.ReplaceAll(strings.ToLower(state), " ", "-")
	path := filepath.Join(dir, slug+"-report.html")
	if err := os.WriteFile(path, []byte(sb.String()), 0o640); err != nil {
		return "", fmt.Errorf("cannot write dashboard: %w", err)
	}
	return path, nil
}

// buildDashboard derives every displayed field up front so the template has
// no arithmetic to get wrong. The all-zero-files case renders "N/A" and
// "0.0%" instead of dividing by zero.
func buildDashboard(
	summary aggregate.ComplianceSummary,
	clauses []aggregate.ClauseStat,
	fileCount int,
	steps []Step,
	state, company string,
	now time.Time,
) dashboardData {
	total := summary.CompliantCount + summary.NonCompliantCount

	totalText := "N/A"
	compliantRatio := 0.0
	nonCompliantRatio := 0.0
	if total > 0 {
		totalText = fmt.Sprintf("%d", total)
		compliantRatio = float64(summary.CompliantCount) / float64(total)
		nonCompliantRatio = 1.0 - compliantRatio
	}

	top := make([]clauseView, 0, len(clauses))
	for _, c := range clauses {
		top = append(top, clauseView{Clause: c.Clause, Description: c.Description, FileCount: c.FileCount})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].FileCount > top[j].FileCount })
	if len(top) > topClauseLimit {
		top = top[:topClauseLimit]
	}

	var (
		stepViews    []stepView
		totalRuntime float64
	)
	for _, s := range steps {
		label := operationLabels[s.Operation]
		if label == "" {
			label = s.Operation
		}
		filesText := "N/A"
		if s.FoundFiles >= 0 {
			filesText = fmt.Sprintf("%d", s.FoundFiles)
		}
		durationText := "N/A"
		if s.Duration >= 0 {
			durationText = fmt.Sprintf("%.2f s", s.Duration)
			totalRuntime += s.Duration
		}
		stepViews = append(stepViews, stepView{
			Label:        label,
			Operation:    s.Operation,
			FilesText:    filesText,
			DurationText: durationText,
		})
	}

	return dashboardData{
		Company:          company,
		State:            state,
		GeneratedAt:      now.Format("2006-01-02 15:04"),
		TotalFilesText:   totalText,
		CompliantCount:   summary.CompliantCount,
		NonCompliantCnt:  summary.NonCompliantCount,
		CompliantPct:     fmt.Sprintf("%.1f%%", compliantRatio*100),
		NonCompliantPct:  fmt.Sprintf("%.1f%%", nonCompliantRatio*100),
		Steps:            stepViews,
		TotalRuntime:     fmt.Sprintf("%.1f s", totalRuntime),
		TopClauses:       top,
		FileSummaryCount: fileCount,
	}
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Company}} – PDF/UA Report – {{.State}}</title>
  <style>
    body { font-family: system-ui, -apple-system, 'Segoe UI', sans-serif; margin: 0; background: #f5f7fb; color: #111; }
    .page { max-width: 1200px; margin: 0 auto; padding: 24px 32px 40px; }
    .header { display: flex; align-items: center; justify-content: space-between; margin-bottom: 24px; }
    h1 { font-size: 24px; margin: 0 0 4px; }
    .meta { font-size: 13px; color: #4b5563; }
    .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(180px, 1fr)); gap: 16px; margin-bottom: 24px; }
    .card { background: #fff; border-radius: 12px; padding: 16px 18px; border: 1px solid #e5e7eb; }
    .card-label { font-size: 11px; text-transform: uppercase; letter-spacing: 0.08em; color: #6b7280; margin-bottom: 4px; }
    .card-value { font-size: 22px; font-weight: 600; margin-bottom: 2px; }
    .card-note { font-size: 12px; color: #6b7280; }
    h2 { font-size: 18px; margin: 24px 0 8px; }
    table { border-collapse: collapse; width: 100%; font-size: 13px; }
    th, td { border: 1px solid #e5e7eb; padding: 6px 8px; text-align: left; vertical-align: top; }
    th { background: #f3f4f6; font-weight: 600; }
    tbody tr:nth-child(even) { background: #f9fafb; }
    .pill-ok { display: inline-block; padding: 2px 8px; border-radius: 999px; background: #dcfce7; color: #166534; font-size: 11px; }
    .pill-bad { display: inline-block; padding: 2px 8px; border-radius: 999px; background: #fee2e2; color: #b91c1c; font-size: 11px; }
    .muted { color: #6b7280; font-size: 12px; }
    .section { margin-bottom: 28px; }
  </style>
</head>
<body>
  <div class="page">
    <header class="header">
      <div>
        <h1>{{.Company}} – PDF/UA Report</h1>
        <div class="meta">State: <strong>{{.State}}</strong></div>
        <div class="meta">Generated at: {{.GeneratedAt}}</div>
      </div>
    </header>
    <section class="section">
      <div class="cards">
        <div class="card">
          <div class="card-label">Total PDFs Validated</div>
          <div class="card-value">{{.TotalFilesText}}</div>
          <div class="card-note">Based on veraPDF compliance report.</div>
        </div>
        <div class="card">
          <div class="card-label">Compliant</div>
          <div class="card-value">{{.CompliantCount}}</div>
          <div class="card-note"><span class="pill-ok">PDF/UA-1 Pass</span> <span class="muted">{{.CompliantPct}} of files</span></div>
        </div>
        <div class="card">
          <div class="card-label">Non-Compliant</div>
          <div class="card-value">{{.NonCompliantCnt}}</div>
          <div class="card-note"><span class="pill-bad">Requires Fixes</span> <span class="muted">{{.NonCompliantPct}} of files</span></div>
        </div>
{{if .Steps}}        <div class="card">
          <div class="card-label">Batch Runtime</div>
          <div class="card-value">{{.TotalRuntime}}</div>
          <div class="card-note">Sum of all processing steps.</div>
        </div>
{{end}}      </div>
    </section>
    <section class="section">
      <h2>Processing Steps Overview</h2>
{{if not .Steps}}      <p class="muted">No processing steps could be parsed from the log.</p>
{{else}}      <table>
        <thead><tr><th>Step</th><th>Operation ID</th><th>Files</th><th>Duration</th></tr></thead>
        <tbody>
{{range .Steps}}          <tr><td>{{.Label}}</td><td><code>{{.Operation}}</code></td><td>{{.FilesText}}</td><td>{{.DurationText}}</td></tr>
{{end}}        </tbody>
      </table>
{{end}}    </section>
    <section class="section">
      <h2>Top Clauses Across All Files</h2>
{{if not .TopClauses}}      <p class="muted">No clause statistics available.</p>
{{else}}      <table>
        <thead><tr><th>Clause</th><th>Description</th><th>Files Affected</th></tr></thead>
        <tbody>
{{range .TopClauses}}          <tr><td><code>{{.Clause}}</code></td><td>{{.Description}}</td><td>{{.FileCount}}</td></tr>
{{end}}        </tbody>
      </table>
{{if .FileSummaryCount}}      <p class="muted">File-level details per clause are available for {{.FileSummaryCount}} files (see the CSV summary generated alongside this report).</p>
{{end}}{{end}}    </section>
    <footer class="section">
      <p class="muted">Generated by the batch reporting pipeline.</p>
    </footer>
  </div>
</body>
</html>
`))

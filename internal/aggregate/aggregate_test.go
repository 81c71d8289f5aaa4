package aggregate

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/verapdf"
)

func TestDedup_CollapsesRepeatedClauses(t *testing.T) {
	violations := []verapdf.Violation{
		{Clause: "7.1", Description: "Content is not tagged"},
		{Clause: "7.18.1", Description: "Annotation lacks alternative"},
		{Clause: "7.1", Description: "Content is not tagged"},
		{Clause: "7.1", Description: "Content is not tagged"},
	}

	got := Dedup(violations)
	require.Len(t, got, 2)
	assert.Equal(t, "7.1", got[0].Clause)
	assert.Equal(t, "7.18.1", got[1].Clause)
}

func TestDedup_PrefersNonEmptyDescription(t *testing.T) {
	violations := []verapdf.Violation{
		{Clause: "7.2", Description: ""},
		{Clause: "7.2", Description: "Text cannot be mapped to Unicode"},
		{Clause: "7.2", Description: "a later different description"},
	}

	got := Dedup(violations)
	require.Len(t, got, 1)
	// First non-empty description sticks; later ones never replace it
	assert.Equal(t, "Text cannot be mapped to Unicode", got[0].Description)
}

func TestDedup_SortedByClause(t *testing.T) {
	violations := []verapdf.Violation{
		{Clause: "7.21.4"},
		{Clause: "5"},
		{Clause: "7.1"},
	}
	got := Dedup(violations)
	require.Len(t, got, 3)
	assert.Equal(t, "5", got[0].Clause)
	assert.Equal(t, "7.1", got[1].Clause)
	assert.Equal(t, "7.21.4", got[2].Clause)
}

func TestAccumulator_AddPartitionsByVerdict(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]verapdf.Outcome{
		{Filename: "b.pdf", Verdict: verapdf.Compliant},
		{Filename: "a.pdf", Verdict: verapdf.Compliant},
		{Filename: "c.pdf", Verdict: verapdf.NonCompliant, Violations: []verapdf.Violation{{Clause: "7.1"}}},
		{Filename: "d.pdf", Verdict: verapdf.Error},
	})

	s := acc.Summary()
	assert.Equal(t, 2, s.CompliantCount)
	assert.Equal(t, 1, s.NonCompliantCount)
	assert.Equal(t, 1, s.ErrorCount)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, s.CompliantFiles)
	assert.Equal(t, []string{"c.pdf"}, s.NonCompliantFiles)
	assert.Equal(t, []string{"d.pdf"}, s.ErrorFiles)
}

func TestAccumulator_AddReportZeroIssuesIsCompliant(t *testing.T) {
	acc := NewAccumulator()
	acc.AddReport("clean.pdf", nil)
	acc.AddReport("dirty.pdf", []verapdf.Violation{{Clause: "7.1"}})

	s := acc.Summary()
	assert.Equal(t, []string{"clean.pdf"}, s.CompliantFiles)
	assert.Equal(t, []string{"dirty.pdf"}, s.NonCompliantFiles)
}

func TestAccumulator_ClauseStatsCountDistinctFiles(t *testing.T) {
	acc := NewAccumulator()
	// Same clause repeated within one file counts once for that file
	acc.AddReport("a.pdf", []verapdf.Violation{
		{Clause: "7.1", Description: "Content is not tagged"},
		{Clause: "7.1", Description: "Content is not tagged"},
		{Clause: "7.2", Description: ""},
	})
	acc.AddReport("b.pdf", []verapdf.Violation{
		{Clause: "7.1", Description: "Content is not tagged"},
	})

	stats := acc.ClauseStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "7.1", stats[0].Clause)
	assert.Equal(t, 2, stats[0].FileCount)
	assert.Equal(t, "7.2", stats[1].Clause)
	assert.Equal(t, 1, stats[1].FileCount)
}

func TestAccumulator_ClauseStatsBackfillDescription(t *testing.T) {
	acc := NewAccumulator()
	acc.AddReport("a.pdf", []verapdf.Violation{{Clause: "7.3", Description: ""}})
	acc.AddReport("b.pdf", []verapdf.Violation{{Clause: "7.3", Description: "Figure lacks alternative text"}})

	stats := acc.ClauseStats()
	require.Len(t, stats, 1)
	assert.Equal(t, "Figure lacks alternative text", stats[0].Description)
}

func TestAccumulator_AllClauses(t *testing.T) {
	acc := NewAccumulator()
	acc.AddReport("a.pdf", []verapdf.Violation{{Clause: "7.2"}, {Clause: "7.1"}})
	acc.AddReport("b.pdf", []verapdf.Violation{{Clause: "7.1"}, {Clause: "5"}})

	assert.Equal(t, []string{"5", "7.1", "7.2"}, acc.AllClauses())
}

const reportWithViolations = `<?xml version="1.0" encoding="utf-8"?>
<report>
  <jobs>
    <job>
      <item size="1234">
        <name>%s</name>
      </item>
      <validationReport>
        <details>
          <rule specification="ISO 14289-1:2014" clause="7.1" status="failed" tags="structure">
            <description>Content is not tagged</description>
          </rule>
          <rule specification="ISO 14289-1:2014" clause="7.1" status="failed" tags="structure">
            <description>Content is not tagged</description>
          </rule>
          <rule specification="ISO 14289-1:2014" clause="7.21.4.1" status="failed" tags="fonts">
            <description>Font is not embedded</description>
          </rule>
        </details>
      </validationReport>
    </job>
  </jobs>
</report>
`

const reportClean = `<?xml version="1.0" encoding="utf-8"?>
<report>
  <jobs>
    <job>
      <item size="99">
        <name>%s</name>
      </item>
      <validationReport>
        <details>
          <rule specification="ISO 14289-1:2014" clause="7.1" status="passed" tags="structure">
            <description>Content is not tagged</description>
          </rule>
        </details>
      </validationReport>
    </job>
  </jobs>
</report>
`

func writeReport(t *testing.T, dir, name, tpl, pdfName string) {
	t.Helper()
	content := []byte(fmt.Sprintf(tpl, pdfName))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o640))
}

func TestLoadReportDir_RebuildsAccumulator(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "alpha.xml", reportWithViolations, "/in/alpha.pdf")
	writeReport(t, dir, "beta.xml", reportClean, "/in/beta.pdf")
	// Non-XML files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o640))

	acc, parsed, err := LoadReportDir(dir, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, parsed)

	s := acc.Summary()
	assert.Equal(t, []string{"beta.pdf"}, s.CompliantFiles)
	assert.Equal(t, []string{"alpha.pdf"}, s.NonCompliantFiles)

	// The duplicate 7.1 rule collapses into one violation
	violations := acc.Violations("alpha.pdf")
	require.Len(t, violations, 2)
	assert.Equal(t, "7.1", violations[0].Clause)
	assert.Equal(t, "7.21.4.1", violations[1].Clause)
}

func TestLoadReportDir_MalformedReportIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "good.xml", reportClean, "/in/good.pdf")
	badPath := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(badPath, []byte("<report><jobs>"), 0o640))

	_, _, err := LoadReportDir(dir, 2)
	require.Error(t, err)
	// The error must carry the offending file path
	assert.Contains(t, err.Error(), badPath)
}

func TestLoadReportDir_MissingDirectory(t *testing.T) {
	_, _, err := LoadReportDir(filepath.Join(t.TempDir(), "nope"), 2)
	assert.Error(t, err)
}

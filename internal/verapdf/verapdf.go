// Package verapdf adapts the external Java-based PDF/UA validator. The tool
// is opaque: it gets a PDF path and returns an exit code plus a
// machine-readable XML report on stdout.
package verapdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Verdict is the tri-state validation outcome.
type Verdict int

const (
	Compliant Verdict = iota
	NonCompliant
	Error
)

// String returns a human-readable verdict name
func (v Verdict) String() string {
	switch v {
	case Compliant:
		return "compliant"
	case NonCompliant:
		return "non-compliant"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Violation is one failed rule from the validator's report.
type Violation struct {
	Clause        string
	Specification string
	Tags          string
	Description   string
}

// Outcome is the result of validating one file.
type Outcome struct {
	Filename   string
	Verdict    Verdict
	Violations []Violation // empty unless NonCompliant
}

// Validator validates one PDF against the configured accessibility standard.
type Validator interface {
	Validate(ctx context.Context, pdfPath, reportDir string) Outcome
}

// ExecValidator invokes the veraPDF greenfield jar as a subprocess.
type ExecValidator struct {
	jarPath string
	flavour string // "ua1" or "ua2"
}

// NewExecValidator creates a validator adapter around the given jar
func NewExecValidator(jarPath, flavour string) *ExecValidator {
	return &ExecValidator{jarPath: jarPath, flavour: flavour}
}

// Validate runs the validator and classifies its exit code: 0 is Compliant,
// 1 is NonCompliant with violations parsed from the XML output, anything
// else (including a failed launch) is Error. On exit code <= 1 the raw XML
// is persisted under reportDir using the input file's stem as name.
func (v *ExecValidator) Validate(ctx context.Context, pdfPath, reportDir string) Outcome {
	outcome := Outcome{Filename: filepath.Base(pdfPath)}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "java", "-jar", v.jarPath,
		"--flavour", v.flavour, "--format", "xml", pdfPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := exitCode(err)
	if code > 1 || code < 0 {
		outcome.Verdict = Error
		return outcome
	}

	// Persist the raw report for the standalone report stage. Best effort:
	// the in-memory result still counts if the write fails.
	_ = v.persistReport(pdfPath, reportDir, stdout.Bytes())

	if code == 0 {
		outcome.Verdict = Compliant
		return outcome
	}

	outcome.Verdict = NonCompliant
	_, violations, parseErr := ParseReport(bytes.NewReader(stdout.Bytes()))
	if parseErr == nil {
		outcome.Violations = violations
	}
	return outcome
}

// persistReport writes the raw XML next to the other reports, named after
// the input file's stem.
func (v *ExecValidator) persistReport(pdfPath, reportDir string, report []byte) error {
	if reportDir == "" {
		return nil
	}
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	// Strip any secondary extension the stem may still carry
	if i := strings.Index(stem, "."); i > 0 {
		stem = stem[:i]
	}
	target := filepath.Join(reportDir, stem+".xml")
	if err := os.WriteFile(target, report, 0o640); err != nil {
		return fmt.Errorf("cannot persist validator report %s: %w", target, err)
	}
	return nil
}

// exitCode maps a cmd.Run error to the tool's exit code: 0 on success,
// -1 when the process could not be launched at all.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

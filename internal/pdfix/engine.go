// Package pdfix adapts the licensed remediation engine behind a narrow
// interface so the orchestration never depends on a particular vendor.
package pdfix

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Engine applies a fixed remediation profile to one PDF at a time.
type Engine interface {
	// Fix remediates inputPath and writes the result to outputPath,
	// creating parent directories as needed.
	Fix(ctx context.Context, inputPath, outputPath string) error
}

// ExecEngine drives the vendor CLI. Each call opens, remediates and saves a
// single document end to end; there is no parallelism within one file.
type ExecEngine struct {
	binary  string
	profile string // JSON parameter document, e.g. make-accessible.json
}

// NewExecEngine creates an engine adapter around the vendor binary
func NewExecEngine(binary, profile string) *ExecEngine {
	return &ExecEngine{binary: binary, profile: profile}
}

// Fix runs the engine's make-accessible command on one document. Engine
// failures are returned to the caller, which logs them; a failed job leaves
// its output file absent or partial and is surfaced later by validation.
func (e *ExecEngine) Fix(ctx context.Context, inputPath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary,
		"make-accessible",
		"--config", e.profile,
		"-i", inputPath,
		"-o", outputPath,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			log.Printf("engine error for %s: %s", filepath.Base(inputPath), msg)
		}
		return fmt.Errorf("remediation of %s failed: %w", filepath.Base(inputPath), err)
	}
	return nil
}

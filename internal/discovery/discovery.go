package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/config"
)

// FileJob is one unit of remediation/validation work. It is created here,
// enriched with PageCount by the prober, and never mutated after partitioning.
type FileJob struct {
	ID         string
	InputPath  string
	OutputPath string
	ReportDir  string
	PageCount  int // -1 until probed, and for files the probe could not open
}

// Name returns the base name of the input file
func (j FileJob) Name() string {
	return filepath.Base(j.InputPath)
}

// Discover enumerates PDF files under <input-root>/<folder> recursively and
// maps each to an output path mirroring its subdirectory under
// <output-root>/<folder>, plus a shared report directory. Output and report
// directories are created as a side effect.
func Discover(cfg *config.Config, folder string) ([]FileJob, error) {
	if folder == "" {
		return nil, fmt.Errorf("folder cannot be empty")
	}

	inputDir := filepath.Join(cfg.InputRoot, folder)
	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("input folder does not exist: %s", inputDir)
	} else if err != nil {
		return nil, fmt.Errorf("cannot access input folder: %w", err)
	}

	outputDir := filepath.Join(cfg.OutputRoot, folder)
	reportDir := filepath.Join(cfg.ReportsRoot, folder)
	for _, dir := range []string{outputDir, reportDir} {
		if err := os.MkdirAll(dir, config.DefaultDirPerm); err != nil {
			return nil, fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}

	var jobs []FileJob
	err := filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Continue despite errors on individual entries
		}
		if d.IsDir() {
			return nil
		}
		if !isPDFFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return nil //nolint:nilerr // Skip entries that escape the input folder
		}

		jobs = append(jobs, FileJob{
			ID:         uuid.NewString(),
			InputPath:  path,
			OutputPath: filepath.Join(outputDir, rel),
			ReportDir:  reportDir,
			PageCount:  -1,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking input folder: %w", err)
	}

	return jobs, nil
}

// isPDFFile checks if a file has a PDF extension
func isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

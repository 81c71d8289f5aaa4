package report

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Step is one logical pipeline phase parsed from the run log.
type Step struct {
	Operation  string
	FoundFiles int     // -1 when absent
	Duration   float64 // seconds, -1 when absent
}

// AppendRunLog appends one phase entry to output.txt. The HTML generator
// parses these markers to populate the processing-steps table.
func AppendRunLog(path, operation string, foundFiles int, duration time.Duration, now time.Time) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("cannot open run log: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, now.Format("2006-01-02-150405"))
	fmt.Fprintf(f, "Namespace(operation='%s')\n", operation)
	fmt.Fprintf(f, "Found %d file(s).\n", foundFiles)
	fmt.Fprintf(f, "[TIME] processed in %.2f seconds\n", duration.Seconds())
	return nil
}

var (
	opRe    = regexp.MustCompile(`operation='([^']+)'`)
	foundRe = regexp.MustCompile(`Found\s+(\d+)\s+file\(s\)\.`)
	timeRe  = regexp.MustCompile(`(?i)\[TIME\]\s+processed in\s+([0-9.]+)\s+seconds`)
)

// ParseRunLog reads the processing steps back out of a run log. A missing or
// malformed log yields an empty step list, never an error.
func ParseRunLog(path string) []Step {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var (
		steps   []Step
		current *Step
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if m := opRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				steps = append(steps, *current)
			}
			current = &Step{Operation: m[1], FoundFiles: -1, Duration: -1}
			continue
		}
		if current == nil {
			continue
		}
		if m := foundRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				current.FoundFiles = n
			}
			continue
		}
		if m := timeRe.FindStringSubmatch(line); m != nil {
			if d, err := strconv.ParseFloat(m[1], 64); err == nil {
				current.Duration = d
			}
		}
	}
	if current != nil {
		steps = append(steps, *current)
	}
	return steps
}

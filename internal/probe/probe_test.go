package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/discovery"
)

func TestProbe_UnopenableFile(t *testing.T) {
	p := NewProber()

	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o640); err != nil {
		t.Fatal(err)
	}

	if count := p.Probe(path); count != UnknownPageCount {
		t.Errorf("Probe(garbage) = %d, want %d", count, UnknownPageCount)
	}
}

func TestProbe_MissingFile(t *testing.T) {
	p := NewProber()
	if count := p.Probe(filepath.Join(t.TempDir(), "absent.pdf")); count != UnknownPageCount {
		t.Errorf("Probe(missing) = %d, want %d", count, UnknownPageCount)
	}
}

func TestProbeAll_FillsEveryJob(t *testing.T) {
	dir := t.TempDir()
	jobs := make([]discovery.FileJob, 8)
	for i := range jobs {
		path := filepath.Join(dir, fmt.Sprintf("f%d.pdf", i))
		if err := os.WriteFile(path, []byte("junk"), 0o640); err != nil {
			t.Fatal(err)
		}
		jobs[i] = discovery.FileJob{ID: fmt.Sprintf("j%d", i), InputPath: path, PageCount: 0}
	}

	p := NewProber()
	probed := p.ProbeAll(context.Background(), jobs, 4)

	if len(probed) != len(jobs) {
		t.Fatalf("got %d jobs back, want %d", len(probed), len(jobs))
	}
	for i, j := range probed {
		if j.ID != jobs[i].ID {
			t.Errorf("job %d reordered: %s", i, j.ID)
		}
		// Junk files cannot be opened by either parser
		if j.PageCount != UnknownPageCount {
			t.Errorf("job %d PageCount = %d, want %d", i, j.PageCount, UnknownPageCount)
		}
	}

	// The input slice is never mutated
	for i, j := range jobs {
		if j.PageCount != 0 {
			t.Errorf("input job %d mutated: PageCount = %d", i, j.PageCount)
		}
	}
}

func TestProbeAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []discovery.FileJob{
		{ID: "a", InputPath: "/nope/a.pdf", PageCount: -1},
		{ID: "b", InputPath: "/nope/b.pdf", PageCount: -1},
	}

	p := NewProber()
	probed := p.ProbeAll(ctx, jobs, 2)
	if len(probed) != len(jobs) {
		t.Fatalf("got %d jobs back, want %d even when cancelled", len(probed), len(jobs))
	}
}

func TestTotalPages(t *testing.T) {
	jobs := []discovery.FileJob{
		{PageCount: 10},
		{PageCount: -1},
		{PageCount: 5},
		{PageCount: 0},
	}
	if got := TotalPages(jobs); got != 15 {
		t.Errorf("TotalPages = %d, want 15 (unknowns excluded)", got)
	}
}

package partition

import (
	"fmt"
	"testing"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/discovery"
)

func makeJobs(pageCounts ...int) []discovery.FileJob {
	jobs := make([]discovery.FileJob, len(pageCounts))
	for i, pc := range pageCounts {
		jobs[i] = discovery.FileJob{
			ID:        fmt.Sprintf("job-%d", i),
			InputPath: fmt.Sprintf("/in/file-%d.pdf", i),
			PageCount: pc,
		}
	}
	return jobs
}

func TestPartitioner_BucketLabel(t *testing.T) {
	p := NewPartitioner(nil, DefaultChunkSize)

	tests := []struct {
		pageCount int
		expected  string
	}{
		{-1, UnknownLabel},
		{0, "1"},
		{1, "1"},
		{2, "2-5"},
		{5, "2-5"},
		{6, "6-10"},
		{10, "6-10"},
		{11, "11-50"},
		{50, "11-50"},
		{51, "51-100"},
		{100, "51-100"},
		{101, "101-200"},
		{200, "101-200"},
		{201, "201-500"},
		{500, "201-500"},
		{501, "501-1000"},
		{1000, "501-1000"},
		{1001, "1001-3000"},
		{3000, "1001-3000"},
		{3001, "3001+"},
		{1000000, "3001+"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := p.BucketLabel(tt.pageCount); got != tt.expected {
				t.Errorf("BucketLabel(%d) = %q, want %q", tt.pageCount, got, tt.expected)
			}
		})
	}
}

func TestPartitioner_SingleItemChunks(t *testing.T) {
	p := NewPartitioner(nil, DefaultChunkSize)

	chunks := p.Partition(makeJobs(3, 75, 1500))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	expected := map[string]bool{"2-5": false, "51-100": false, "1001-3000": false}
	for _, c := range chunks {
		if len(c.Jobs) != 1 {
			t.Errorf("chunk %q has %d jobs, want 1", c.Label, len(c.Jobs))
		}
		if _, ok := expected[c.Label]; !ok {
			t.Errorf("unexpected chunk label %q", c.Label)
		}
		expected[c.Label] = true
	}
	for label, seen := range expected {
		if !seen {
			t.Errorf("missing chunk %q", label)
		}
	}
}

func TestPartitioner_OversizedBucketSplitting(t *testing.T) {
	p := NewPartitioner(nil, 500)

	pageCounts := make([]int, 1200)
	for i := range pageCounts {
		pageCounts[i] = 5
	}

	chunks := p.Partition(makeJobs(pageCounts...))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	expected := []struct {
		label string
		size  int
	}{
		{"2-5 - part 1 of 3", 500},
		{"2-5 - part 2 of 3", 500},
		{"2-5 - part 3 of 3", 200},
	}
	for i, want := range expected {
		if chunks[i].Label != want.label {
			t.Errorf("chunk %d label = %q, want %q", i, chunks[i].Label, want.label)
		}
		if len(chunks[i].Jobs) != want.size {
			t.Errorf("chunk %d size = %d, want %d", i, len(chunks[i].Jobs), want.size)
		}
	}
}

func TestPartitioner_Completeness(t *testing.T) {
	// A skewed mix: tiny files, an oversized bucket and unopenable files
	pageCounts := []int{-1, 1, 3, 7, 42, 99, 150, 450, 800, 2500, 5000, -1}
	for i := 0; i < 1100; i++ {
		pageCounts = append(pageCounts, 25)
	}

	p := NewPartitioner(nil, 500)
	jobs := makeJobs(pageCounts...)
	chunks := p.Partition(jobs)

	seen := make(map[string]int)
	for _, c := range chunks {
		if len(c.Jobs) > 500 {
			t.Errorf("chunk %q exceeds size bound: %d", c.Label, len(c.Jobs))
		}
		for _, j := range c.Jobs {
			seen[j.ID]++
		}
	}

	if len(seen) != len(jobs) {
		t.Fatalf("expected %d distinct jobs across chunks, got %d", len(jobs), len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("job %s appears %d times, want exactly once", id, n)
		}
	}
}

func TestPartitioner_UnopenableFilesGetOwnChunk(t *testing.T) {
	p := NewPartitioner(nil, DefaultChunkSize)

	chunks := p.Partition(makeJobs(-1, 10, -1))

	var unknown *Chunk
	for i := range chunks {
		if chunks[i].Label == UnknownLabel {
			unknown = &chunks[i]
		}
	}
	if unknown == nil {
		t.Fatal("no chunk for unopenable files")
	}
	if len(unknown.Jobs) != 2 {
		t.Errorf("unknown chunk has %d jobs, want 2", len(unknown.Jobs))
	}
}

func TestPartitioner_EmptyInput(t *testing.T) {
	p := NewPartitioner(nil, DefaultChunkSize)
	if chunks := p.Partition(nil); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestPartitioner_CustomBuckets(t *testing.T) {
	buckets := []Bucket{
		{Upper: 10, Label: "small"},
		{Upper: -1, Label: "large"},
	}
	p := NewPartitioner(buckets, 100)

	chunks := p.Partition(makeJobs(5, 500))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Label != "small" || chunks[1].Label != "large" {
		t.Errorf("unexpected labels: %q, %q", chunks[0].Label, chunks[1].Label)
	}
}

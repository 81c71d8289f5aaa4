package partition

import (
	"fmt"
	"math"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/discovery"
)

// DefaultChunkSize bounds how many jobs a single chunk may carry.
const DefaultChunkSize = 500

// UnknownLabel is the bucket for files whose page count could not be probed.
// They are never dropped; downstream validation surfaces them as errors.
const UnknownLabel = "unknown"

// Bucket is one row of the page-count range table: a file belongs to the
// first bucket whose Upper bound is >= its page count.
type Bucket struct {
	Upper int // inclusive upper bound, -1 means unbounded
	Label string
}

// DefaultBuckets is the canonical page-count range table. Remediation cost
// scales with page count, so same-cost work is grouped to keep the worker
// pool free of stragglers. Boundaries are a tuning knob, not a correctness
// requirement; the low end is deliberately fine-grained because most library
// corpora skew toward very short documents.
func DefaultBuckets() []Bucket {
	return []Bucket{
		{Upper: 1, Label: "1"},
		{Upper: 5, Label: "2-5"},
		{Upper: 10, Label: "6-10"},
		{Upper: 50, Label: "11-50"},
		{Upper: 100, Label: "51-100"},
		{Upper: 200, Label: "101-200"},
		{Upper: 500, Label: "201-500"},
		{Upper: 1000, Label: "501-1000"},
		{Upper: 3000, Label: "1001-3000"},
		{Upper: -1, Label: "3001+"},
	}
}

// Chunk is an ordered collection of jobs sharing a page-count bucket, or a
// contiguous sub-range of one when the bucket exceeds the chunk size.
type Chunk struct {
	Label string
	Jobs  []discovery.FileJob
}

// Partitioner buckets jobs by page count and splits oversized buckets.
type Partitioner struct {
	buckets   []Bucket
	chunkSize int
}

// NewPartitioner creates a partitioner over the given bucket table.
// A nil table selects DefaultBuckets; chunkSize < 1 selects DefaultChunkSize.
func NewPartitioner(buckets []Bucket, chunkSize int) *Partitioner {
	if buckets == nil {
		buckets = DefaultBuckets()
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Partitioner{buckets: buckets, chunkSize: chunkSize}
}

// BucketLabel returns the label for a page count. Unopenable files
// (pageCount < 0) get their own bucket so they are processed together and
// never silently dropped.
func (p *Partitioner) BucketLabel(pageCount int) string {
	if pageCount < 0 {
		return UnknownLabel
	}
	for _, b := range p.buckets {
		if b.Upper < 0 || pageCount <= b.Upper {
			return b.Label
		}
	}
	// Unreachable with a well-formed table ending in an unbounded bucket
	return p.buckets[len(p.buckets)-1].Label
}

// Partition groups jobs into chunks. Every input job lands in exactly one
// chunk and no chunk exceeds the configured size. Chunk order follows the
// bucket table; order within a chunk follows input order.
func (p *Partitioner) Partition(jobs []discovery.FileJob) []Chunk {
	buckets := make(map[string][]discovery.FileJob)
	for _, j := range jobs {
		label := p.BucketLabel(j.PageCount)
		buckets[label] = append(buckets[label], j)
	}

	labels := make([]string, 0, len(p.buckets)+1)
	for _, b := range p.buckets {
		labels = append(labels, b.Label)
	}
	labels = append(labels, UnknownLabel)

	var chunks []Chunk
	for _, label := range labels {
		bucket, ok := buckets[label]
		if !ok {
			continue
		}
		chunks = append(chunks, p.split(label, bucket)...)
	}
	return chunks
}

// split cuts an oversized bucket into contiguous sub-chunks labeled with
// their position; buckets at or under the limit stay a single chunk.
func (p *Partitioner) split(label string, jobs []discovery.FileJob) []Chunk {
	if len(jobs) <= p.chunkSize {
		return []Chunk{{Label: label, Jobs: jobs}}
	}

	parts := int(math.Ceil(float64(len(jobs)) / float64(p.chunkSize)))
	chunks := make([]Chunk, 0, parts)
	for i := 0; i < parts; i++ {
		start := i * p.chunkSize
		end := start + p.chunkSize
		if end > len(jobs) {
			end = len(jobs)
		}
		chunks = append(chunks, Chunk{
			Label: fmt.Sprintf("%s - part %d of %d", label, i+1, parts),
			Jobs:  jobs[start:end],
		})
	}
	return chunks
}

package probe

import (
	"context"
	"sync"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ivanbueno-jcc/pdf-remediation/internal/discovery"
)

// UnknownPageCount is the sentinel recorded for files the probe cannot open.
const UnknownPageCount = -1

// Prober reads page counts from PDF files without keeping documents open.
type Prober struct{}

// NewProber creates a new page-count prober
func NewProber() *Prober {
	return &Prober{}
}

// Probe opens the document read-only, reads its page count and closes it.
// It returns UnknownPageCount rather than an error so a single corrupt file
// cannot abort a probing pass.
func (p *Prober) Probe(path string) int {
	if count := p.probePDFCPU(path); count != UnknownPageCount {
		return count
	}
	return p.probeLedongthuc(path)
}

func (p *Prober) probePDFCPU(path string) (count int) {
	defer func() {
		if recover() != nil {
			count = UnknownPageCount
		}
	}()

	count, err := api.PageCountFile(path)
	if err != nil || count < 1 {
		return UnknownPageCount
	}
	return count
}

// probeLedongthuc is the fallback for documents pdfcpu refuses; the
// ledongthuc parser is more permissive about malformed xref tables.
func (p *Prober) probeLedongthuc(path string) (count int) {
	count = UnknownPageCount
	defer func() {
		if recover() != nil {
			count = UnknownPageCount
		}
	}()

	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return UnknownPageCount
	}
	defer f.Close()

	if n := r.NumPage(); n >= 1 {
		count = n
	}
	return count
}

// ProbeAll fills in PageCount for every job using a bounded worker pool.
// A crashed probe for one file must not lose page counts for the rest, so
// each probe call recovers its own panics and records the sentinel.
func (p *Prober) ProbeAll(ctx context.Context, jobs []discovery.FileJob, workers int) []discovery.FileJob {
	if workers < 1 {
		workers = 1
	}

	probed := make([]discovery.FileJob, len(jobs))
	copy(probed, jobs)

	indexCh := make(chan int, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexCh {
				probed[i].PageCount = p.Probe(probed[i].InputPath)
			}
		}()
	}

	for i := range probed {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			// Remaining jobs keep the sentinel; the partitioner buckets them
			// deterministically either way.
			close(indexCh)
			wg.Wait()
			return probed
		}
	}
	close(indexCh)
	wg.Wait()

	return probed
}

// TotalPages sums the known page counts across probed jobs
func TotalPages(jobs []discovery.FileJob) int {
	total := 0
	for _, j := range jobs {
		if j.PageCount > 0 {
			total += j.PageCount
		}
	}
	return total
}

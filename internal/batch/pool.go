package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scraper-bots/receipt-data/constants"
	"github.com/scraper-bots/receipt-data/internal/record"
)

// Summary aggregates per-document outcomes for the run report. Nothing in
// it feeds back into control flow.
type Summary struct {
	Documents int
	Succeeded int
	Fallbacks int
	Failed    int
	Rows      int
}

// Pool fans documents out to a bounded set of workers. Documents are
// independent; within one document the pipeline stays single-threaded, and
// a document's rows keep their source order in the output.
type Pool struct {
	proc    *Processor
	workers int
	timeout time.Duration
	log     *slog.Logger
}

type PoolOption func(*Pool)

func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithDocTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(proc *Processor, logger *slog.Logger, opts ...PoolOption) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{proc: proc, workers: 5, timeout: 3 * time.Minute, log: logger}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run processes every document and returns all rows plus the run summary.
// Results accumulate in memory and are handed back in one batch; output
// order across documents follows input order, which keeps runs comparable.
func (p *Pool) Run(ctx context.Context, docs []Document) ([]record.Record, Summary) {
	type result struct {
		recs   []record.Record
		status constants.DocStatus
	}

	results := make([]result, len(docs))
	jobs := make(chan int)
	var progress atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				doc := docs[i]
				dctx, cancel := context.WithTimeout(ctx, p.timeout)
				recs, status := p.proc.Process(dctx, doc)
				cancel()

				results[i] = result{recs: recs, status: status}
				done := progress.Add(1)
				p.log.Info("batch.progress",
					"worker", workerID,
					"source_id", doc.SourceID,
					"status", string(status),
					"rows", len(recs),
					"done", done,
					"total", len(docs),
				)
			}
		}(w + 1)
	}

	for i := range docs {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	var out []record.Record
	sum := Summary{Documents: len(docs)}
	for _, r := range results {
		out = append(out, r.recs...)
		sum.Rows += len(r.recs)
		switch r.status {
		case constants.DocStatusOK:
			sum.Succeeded++
		case constants.DocStatusFallback:
			sum.Fallbacks++
		default:
			sum.Failed++
		}
	}
	return out, sum
}

package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
)

// Analyzer runs one symbol's analysis
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*models.ForensicReport, error)
}

// Outcome is the result of one symbol
type Outcome struct {
	Symbol string
	Report *models.ForensicReport
	Err    error
}

// WorkerPool analyzes many symbols with a bounded number of workers
type WorkerPool struct {
	analyzer   Analyzer
	logger     arbor.ILogger
	numWorkers int
}

func NewWorkerPool(analyzer Analyzer, logger arbor.ILogger, numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		analyzer:   analyzer,
		logger:     logger,
		numWorkers: numWorkers,
	}
}

// Run analyzes symbols with the settings of template and returns one outcome
// per symbol in input order. Cancelling ctx stops new symbols from starting;
// symbols never started carry the context error.
func (wp *WorkerPool) Run(ctx context.Context, symbols []string, template analysis.Request) []Outcome {
	outcomes := make([]Outcome, len(symbols))
	for i, s := range symbols {
		outcomes[i].Symbol = s
	}

	workers := wp.numWorkers
	if workers > len(symbols) {
		workers = len(symbols)
	}

	wp.logger.Info().
		Int("num_workers", workers).
		Int("symbols", len(symbols)).
		Msg("Starting analysis workers")

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		common.SafeGo(wp.logger, fmt.Sprintf("analysis-worker-%d", w), func() {
			defer wg.Done()
			wp.worker(ctx, w, jobs, outcomes, template)
		})
	}

feed:
	for i := range symbols {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for i := range outcomes {
		if outcomes[i].Report == nil && outcomes[i].Err == nil {
			outcomes[i].Err = ctx.Err()
		}
		if outcomes[i].Err != nil {
			failed++
		}
	}

	wp.logger.Info().
		Int("symbols", len(symbols)).
		Int("failed", failed).
		Msg("Analysis workers finished")
	return outcomes
}

// worker drains jobs until the channel closes
func (wp *WorkerPool) worker(ctx context.Context, workerID int, jobs <-chan int, outcomes []Outcome, template analysis.Request) {
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}

		req := template
		req.Symbol = outcomes[i].Symbol

		wp.logger.Debug().
			Int("worker_id", workerID).
			Str("symbol", req.Symbol).
			Msg("Analyzing symbol")

		report, err := wp.analyzer.Analyze(ctx, req)
		if err != nil {
			wp.logger.Error().
				Err(err).
				Str("symbol", req.Symbol).
				Msg("Analysis failed")
			outcomes[i].Err = err
			continue
		}
		outcomes[i].Report = report
	}
}

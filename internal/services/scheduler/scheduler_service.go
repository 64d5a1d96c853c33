package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/worker"
)

// ErrAlreadyRunning is returned when a watchlist run is still in progress.
var ErrAlreadyRunning = errors.New("watchlist run already in progress")

// Runner analyzes a batch of symbols
type Runner interface {
	Run(ctx context.Context, symbols []string, template analysis.Request) []worker.Outcome
}

// Status is a snapshot of the scheduler for the status endpoint
type Status struct {
	Running      bool       `json:"running"`
	Processing   bool       `json:"processing"`
	Schedule     string     `json:"schedule"`
	Watchlist    []string   `json:"watchlist"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
	LastAnalyzed int        `json:"last_analyzed"`
	LastFailed   int        `json:"last_failed"`
}

// Service re-analyzes a watchlist on a cron schedule
type Service struct {
	runner    Runner
	cron      *cron.Cron
	schedule  string
	watchlist []string
	template  analysis.Request
	logger    arbor.ILogger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex // protects the fields below
	running      bool
	isProcessing bool
	entryID      cron.EntryID
	lastRun      *time.Time
	lastAnalyzed int
	lastFailed   int
}

// NewService creates a scheduler. Nothing runs until Start.
func NewService(runner Runner, schedule string, watchlist []string, template analysis.Request, logger arbor.ILogger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		runner:    runner,
		cron:      cron.New(),
		schedule:  schedule,
		watchlist: append([]string(nil), watchlist...),
		template:  template,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers the watchlist job and starts the cron loop
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if len(s.watchlist) == 0 {
		return fmt.Errorf("scheduler watchlist is empty")
	}

	id, err := s.cron.AddFunc(s.schedule, s.runScheduled)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Int("symbols", len(s.watchlist)).
		Msg("Scheduler started")
	return nil
}

// Stop cancels any in-flight run and waits for the cron loop to exit
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// RunNow analyzes the watchlist immediately. Runs never overlap.
func (s *Service) RunNow(ctx context.Context) ([]worker.Outcome, error) {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.isProcessing = true
	s.mu.Unlock()

	start := time.Now()
	outcomes := s.runner.Run(ctx, s.watchlist, s.template)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}

	s.mu.Lock()
	s.isProcessing = false
	s.lastRun = &start
	s.lastAnalyzed = len(outcomes) - failed
	s.lastFailed = failed
	s.mu.Unlock()

	s.logger.Info().
		Int("analyzed", len(outcomes)-failed).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Watchlist run complete")
	return outcomes, nil
}

func (s *Service) runScheduled() {
	if _, err := s.RunNow(s.ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Skipping scheduled watchlist run")
	}
}

// Status reports the scheduler state
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:      s.running,
		Processing:   s.isProcessing,
		Schedule:     s.schedule,
		Watchlist:    append([]string(nil), s.watchlist...),
		LastRun:      s.lastRun,
		LastAnalyzed: s.lastAnalyzed,
		LastFailed:   s.lastFailed,
	}
	if s.running {
		if next := s.cron.Entry(s.entryID).Next; !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}

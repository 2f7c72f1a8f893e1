package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/simbacrm/backend/internal/infrastructure/config"
)

var (
	// ErrSchedulerNotRunning is returned when stopping a scheduler that never started
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrInvalidConfig is returned when scheduler configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)

// QuoteExpirer expires quotes whose validity window has passed
type QuoteExpirer interface {
	ExpireStale(ctx context.Context, now time.Time, limit int) (int, error)
}

// InvoiceOverdueMarker marks unsettled invoices past their due date
type InvoiceOverdueMarker interface {
	MarkOverdueInvoices(ctx context.Context, now time.Time, limit int) (int, error)
}

// BillingScheduler periodically sweeps the billing tables: stale quotes are
// expired and past-due invoices are marked overdue. Both transitions are
// explicit status changes, reads never mutate documents, so a missed sweep
// only delays the visible status.
type BillingScheduler struct {
	quotes   QuoteExpirer
	invoices InvoiceOverdueMarker
	interval time.Duration
	batch    int
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBillingScheduler creates a new billing scheduler
func NewBillingScheduler(
	cfg config.SchedulerConfig,
	quotes QuoteExpirer,
	invoices InvoiceOverdueMarker,
	logger *zap.Logger,
) (*BillingScheduler, error) {
	if cfg.SweepInterval <= 0 || cfg.BatchSize <= 0 {
		return nil, ErrInvalidConfig
	}
	return &BillingScheduler{
		quotes:   quotes,
		invoices: invoices,
		interval: cfg.SweepInterval,
		batch:    cfg.BatchSize,
		logger:   logger,
	}, nil
}

// Start launches the sweep loop. Calling Start on a running scheduler is a no-op.
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("billing scheduler started",
		zap.Duration("sweep_interval", s.interval),
		zap.Int("batch_size", s.batch),
	)

	return nil
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("billing scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *BillingScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Sweep once at startup so restarts do not delay overdue statuses
	s.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass over stale quotes and past-due invoices
func (s *BillingScheduler) Sweep(ctx context.Context) {
	now := time.Now()

	expired, err := s.quotes.ExpireStale(ctx, now, s.batch)
	if err != nil {
		s.logger.Error("quote expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		s.logger.Info("expired stale quotes", zap.Int("count", expired))
	}

	marked, err := s.invoices.MarkOverdueInvoices(ctx, now, s.batch)
	if err != nil {
		s.logger.Error("invoice overdue sweep failed", zap.Error(err))
	} else if marked > 0 {
		s.logger.Info("marked overdue invoices", zap.Int("count", marked))
	}
}

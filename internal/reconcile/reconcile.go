package reconcile

//go:generate mockgen -source=reconcile.go -destination=mock_reconcile.go -package=reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/stackmeter/internal/config"
	"github.com/GlebRadaev/stackmeter/internal/domain"
)

const (
	auditPageSize = 1000
	auditWorkers  = 10
)

type LedgerRepo interface {
	RecentlyUpdatedAccounts(ctx context.Context, since time.Time, after string, limit int) ([]string, error)
	AuditAccount(ctx context.Context, accountID string) (*domain.AuditMismatch, error)
}

type EventRepo interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Report summarises one reconciliation pass.
type Report struct {
	Pruned     int64
	Audited    int
	Skipped    int
	Mismatches []domain.AuditMismatch
}

// Service periodically drops expired idempotency markers and checks that the
// transaction log of recently touched accounts still sums to their balance.
// It never writes to balances.
type Service struct {
	ledgerRepo LedgerRepo
	eventRepo  EventRepo
	workerPool WorkerPoolI
	pageSize   int
	interval   time.Duration
	retention  time.Duration
	now        func() time.Time

	inFlight sync.Map
	mu       sync.Mutex
	since    time.Time
}

func New(cfg *config.Config, ledgerRepo LedgerRepo, eventRepo EventRepo) *Service {
	return &Service{
		ledgerRepo: ledgerRepo,
		eventRepo:  eventRepo,
		workerPool: NewWorkerPool(auditWorkers),
		pageSize:   auditPageSize,
		interval:   cfg.ReconcileInterval,
		retention:  cfg.EventRetention,
		now:        time.Now,
	}
}

// Start runs a pass every interval until ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	if s.interval <= 0 {
		zap.L().Info("reconciler disabled")
		return
	}
	zap.L().Info("reconciler started", zap.Duration("interval", s.interval), zap.Duration("retention", s.retention))
	defer s.workerPool.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("context canceled, stopping reconciler")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zap.L().Error("reconciliation pass failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) RunOnce(ctx context.Context) (*Report, error) {
	started := s.now()
	report := &Report{}

	var errs []error
	if s.retention > 0 {
		pruned, err := s.eventRepo.PruneBefore(ctx, started.Add(-s.retention))
		if err != nil {
			errs = append(errs, fmt.Errorf("prune processed events: %w", err))
		} else {
			report.Pruned = pruned
			if pruned > 0 {
				zap.L().Info("pruned processed events", zap.Int64("count", pruned))
			}
		}
	}

	if err := s.audit(ctx, started, report); err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}

// audit walks every account touched since the last successful pass, one page
// at a time, and fans the checks out to the worker pool.
func (s *Service) audit(ctx context.Context, started time.Time, report *Report) error {
	s.mu.Lock()
	since := s.since
	if since.IsZero() {
		since = started.Add(-s.interval)
	}
	s.mu.Unlock()

	var (
		mu    sync.Mutex
		done  sync.WaitGroup
		g     errgroup.Group
		after string
		err   error
	)
	for {
		var page []string
		page, err = s.ledgerRepo.RecentlyUpdatedAccounts(ctx, since, after, s.pageSize)
		if err != nil {
			err = fmt.Errorf("list recently updated accounts: %w", err)
			break
		}
		for _, accountID := range page {
			s.schedule(ctx, accountID, report, &mu, &done, &g)
		}
		if len(page) < s.pageSize {
			break
		}
		after = page[len(page)-1]
	}

	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}
	done.Wait()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.since = started
	s.mu.Unlock()
	return nil
}

func (s *Service) schedule(ctx context.Context, accountID string, report *Report, mu *sync.Mutex, done *sync.WaitGroup, g *errgroup.Group) {
	if _, loaded := s.inFlight.LoadOrStore(accountID, struct{}{}); loaded {
		mu.Lock()
		report.Skipped++
		mu.Unlock()
		return
	}

	done.Add(1)
	g.Go(func() error {
		err := s.workerPool.AddTask(ctx, func() error {
			defer done.Done()
			defer s.inFlight.Delete(accountID)

			mismatch, err := s.ledgerRepo.AuditAccount(ctx, accountID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				return fmt.Errorf("audit account %s: %w", accountID, err)
			}
			report.Audited++
			if mismatch != nil {
				zap.L().Error("ledger mismatch", zap.String("accountID", mismatch.AccountID),
					zap.Int64("stacks", mismatch.Stacks), zap.Int64("deltaSum", mismatch.DeltaSum))
				report.Mismatches = append(report.Mismatches, *mismatch)
			}
			return nil
		})
		if err != nil {
			done.Done()
			s.inFlight.Delete(accountID)
			return err
		}
		return nil
	})
}

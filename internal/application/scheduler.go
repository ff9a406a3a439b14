package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
)

// ShopSyncer runs a sync for a shop from its stored credentials
type ShopSyncer interface {
	SyncShop(ctx context.Context, shop string, trigger string) (*domain.SyncReport, error)
}

// CredentialsLister lists every shop with stored credentials
type CredentialsLister interface {
	ListCredentials(ctx context.Context) ([]*domain.APICredentials, error)
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:  false,
		Interval: 10 * time.Minute,
	}
}

// TickSummary describes what one scheduler tick did
type TickSummary struct {
	Shops   int
	Synced  []string
	Skipped []string
	Failed  map[string]error
}

// SyncScheduler periodically syncs every shop that opted into auto sync
type SyncScheduler struct {
	config      SchedulerConfig
	syncer      ShopSyncer
	credentials CredentialsLister
	logger      zerolog.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new scheduler instance
func NewSyncScheduler(config SchedulerConfig, syncer ShopSyncer, credentials CredentialsLister, logger zerolog.Logger) *SyncScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	return &SyncScheduler{
		config:      config,
		syncer:      syncer,
		credentials: credentials,
		logger:      logger,
	}
}

// Start starts the ticker loop. It is a no-op when disabled or already running.
func (s *SyncScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info().Msg("Sync scheduler is disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info().Dur("interval", s.config.Interval).Msg("Sync scheduler started")
	return nil
}

// Stop cancels the loop and waits for the running tick, bounded by ctx
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *SyncScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single tick. Errors for one shop never stop the others.
func (s *SyncScheduler) RunOnce(ctx context.Context) TickSummary {
	summary := TickSummary{Failed: map[string]error{}}

	all, err := s.credentials.ListCredentials(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list credentials for scheduled sync")
		return summary
	}
	summary.Shops = len(all)

	for _, creds := range all {
		if ctx.Err() != nil {
			break
		}
		if !creds.CanAutoSync() {
			s.logger.Debug().Str("shop", creds.Shop).Msg("Auto sync not enabled, skipping shop")
			summary.Skipped = append(summary.Skipped, creds.Shop)
			continue
		}

		report, err := s.syncer.SyncShop(ctx, creds.Shop, TriggerSchedule)
		switch {
		case err == nil, errors.Is(err, domain.ErrNoArticles):
			summary.Synced = append(summary.Synced, creds.Shop)
		case errors.Is(err, domain.ErrSyncInProgress):
			s.logger.Info().Str("shop", creds.Shop).Msg("Sync already running, skipping shop")
			summary.Skipped = append(summary.Skipped, creds.Shop)
		default:
			ev := s.logger.Error().Err(err).Str("shop", creds.Shop)
			if report != nil {
				ev = ev.Str("runId", report.ID)
			}
			ev.Msg("Scheduled sync failed")
			summary.Failed[creds.Shop] = err
		}
	}

	s.logger.Info().
		Int("shops", summary.Shops).
		Int("synced", len(summary.Synced)).
		Int("skipped", len(summary.Skipped)).
		Int("failed", len(summary.Failed)).
		Msg("Scheduled sync tick finished")
	return summary
}

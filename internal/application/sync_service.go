package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sync triggers recorded on reports
const (
	TriggerHTTP     = "http"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)

const (
	defaultConcurrency  = 8
	defaultLockTTL      = 15 * time.Minute
	defaultHistoryLimit = 20
)

// SyncRequest carries everything one sync pass needs
type SyncRequest struct {
	Shop        string `json:"shop"`
	AccessToken string `json:"accessToken"`
	APIURL      string `json:"apiUrl"`
	APIID       string `json:"apiId"`
	APIKey      string `json:"apiKey"`
	Trigger     string `json:"-"`
}

// Validate checks the request fields
func (r SyncRequest) Validate() error {
	required := []struct{ field, value string }{
		{"shop", r.Shop},
		{"accessToken", r.AccessToken},
		{"apiUrl", r.APIURL},
		{"apiId", r.APIID},
		{"apiKey", r.APIKey},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return domain.NewValidationError(f.field, f.field+" is required")
		}
	}
	return domain.ValidateAPIURL(r.APIURL)
}

// SyncOptions configures the orchestrator. Nil collaborators are skipped.
type SyncOptions struct {
	Concurrency  int
	LockTTL      time.Duration
	HistoryLimit int

	Runs    ports.SyncRunRepository
	Locker  ports.SyncLocker
	Ledger  ports.PublishLedger
	Events  ports.SyncEventPublisher
	Metrics ports.SyncMetrics
}

type credentialsSource interface {
	GetCredentials(ctx context.Context, shop string) (*domain.APICredentials, error)
}

// SyncService copies the inventory catalog of a shop into Shopify
type SyncService struct {
	inventory   ports.InventoryClient
	publisher   ports.ProductPublisher
	credentials credentialsSource
	opts        SyncOptions
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSyncService creates a new sync service
func NewSyncService(
	inventory ports.InventoryClient,
	publisher ports.ProductPublisher,
	credentials credentialsSource,
	opts SyncOptions,
	logger zerolog.Logger,
) *SyncService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	return &SyncService{
		inventory:   inventory,
		publisher:   publisher,
		credentials: credentials,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// Sync runs one pass for the shop in req. The returned report is non-nil
// whenever the pass started, including failed and empty passes.
func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (*domain.SyncReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.APIURL = strings.TrimRight(strings.TrimSpace(req.APIURL), "/")
	if req.Trigger == "" {
		req.Trigger = TriggerHTTP
	}

	if s.opts.Locker != nil {
		release, err := s.opts.Locker.Acquire(ctx, req.Shop, s.opts.LockTTL)
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", req.Shop).Msg("Sync lock not acquired")
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn().Err(err).Str("shop", req.Shop).Msg("Failed to release sync lock")
			}
		}()
	}

	report := domain.NewSyncReport(uuid.NewString(), req.Shop, req.Trigger, s.now())
	log := s.logger.With().Str("shop", req.Shop).Str("runId", report.ID).Logger()
	log.Info().Str("trigger", req.Trigger).Msg("Sync started")
	s.emit(&domain.SyncEvent{Type: domain.SyncEventStarted, RunID: report.ID, Shop: req.Shop, At: report.StartedAt})

	err := s.run(ctx, req, report)
	report.Finish(s.now(), err)

	s.persist(ctx, report)
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveRun(report)
	}
	s.emit(&domain.SyncEvent{Type: domain.SyncEventFinished, RunID: report.ID, Shop: req.Shop, Report: report, At: report.FinishedAt})

	event := log.Info()
	if report.State == domain.SyncStateFailed {
		event = log.Error().Err(err)
	}
	event.
		Str("state", string(report.State)).
		Int("articles", report.Articles).
		Int("published", report.Published).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("duration", report.Duration()).
		Msg("Sync finished")

	return report, err
}

// SyncShop runs a pass with the credentials and access token stored for shop
func (s *SyncService) SyncShop(ctx context.Context, shop string, trigger string) (*domain.SyncReport, error) {
	if s.credentials == nil {
		return nil, fmt.Errorf("sync %s: no credentials source configured", shop)
	}
	creds, err := s.credentials.GetCredentials(ctx, shop)
	if err != nil {
		return nil, err
	}
	if creds.AccessToken == "" {
		return nil, domain.NewValidationError("accessToken", "no access token stored for shop")
	}
	return s.Sync(ctx, SyncRequest{
		Shop:        creds.Shop,
		AccessToken: creds.AccessToken,
		APIURL:      creds.APIURL,
		APIID:       creds.APIID,
		APIKey:      creds.APIKey,
		Trigger:     trigger,
	})
}

// ListRuns returns the most recent reports of a shop, newest first
func (s *SyncService) ListRuns(ctx context.Context, shop string) ([]*domain.SyncReport, error) {
	if s.opts.Runs == nil {
		return []*domain.SyncReport{}, nil
	}
	runs, err := s.opts.Runs.ListByShop(ctx, shop, s.opts.HistoryLimit)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list sync runs", Err: err}
	}
	return runs, nil
}

func (s *SyncService) run(ctx context.Context, req SyncRequest, report *domain.SyncReport) error {
	token, err := s.inventory.GetToken(ctx, req.APIURL, req.APIID, req.APIKey)
	if err != nil {
		return domain.NewStageError(req.Shop, domain.StageAuthenticating, "", err)
	}

	report.State = domain.SyncStateListing
	articles, err := s.inventory.GetArticles(ctx, req.APIURL, token)
	if err != nil {
		return domain.NewStageError(req.Shop, domain.StageListing, "", err)
	}
	report.Articles = len(articles)
	if len(articles) == 0 {
		return fmt.Errorf("shop %s: %w", req.Shop, domain.ErrNoArticles)
	}

	report.State = domain.SyncStatePublishing
	outcomes := make([]domain.ArticleOutcome, len(articles))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, article := range articles {
		g.Go(func() error {
			outcomes[i] = s.processArticle(ctx, req, token, article)
			s.emit(&domain.SyncEvent{
				Type:    domain.SyncEventArticle,
				RunID:   report.ID,
				Shop:    req.Shop,
				Outcome: &outcomes[i],
				At:      s.now(),
			})
			return nil
		})
	}
	_ = g.Wait()
	report.Outcomes = outcomes

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sync %s aborted: %w", req.Shop, err)
	}
	return nil
}

// processArticle never returns an error; failures are recorded on the outcome
func (s *SyncService) processArticle(ctx context.Context, req SyncRequest, token string, article domain.Article) domain.ArticleOutcome {
	outcome := domain.ArticleOutcome{ArticleID: article.ID.String(), Title: article.Name}
	fail := func(stage domain.SyncStage, err error) domain.ArticleOutcome {
		outcome.Status = domain.OutcomeFailed
		outcome.Stage = stage
		outcome.Error = err.Error()
		s.logger.Warn().
			Err(err).
			Str("shop", req.Shop).
			Str("articleId", outcome.ArticleID).
			Str("stage", string(stage)).
			Msg("Article not synced")
		return outcome
	}

	if err := ctx.Err(); err != nil {
		return fail(domain.StagePrice, err)
	}

	if s.opts.Ledger != nil {
		published, err := s.opts.Ledger.IsPublished(ctx, req.Shop, article.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", req.Shop).Str("articleId", outcome.ArticleID).Msg("Failed to read publish ledger")
		} else if published {
			outcome.Status = domain.OutcomeSkipped
			outcome.Stage = domain.StageDedup
			return outcome
		}
	}

	price, err := s.inventory.GetPrice(ctx, req.APIURL, token, article.ID)
	if err != nil {
		return fail(domain.StagePrice, err)
	}
	outcome.Price = price.String()

	draft := domain.NewProductDraft(req.APIURL, article, price)
	product, err := s.publisher.CreateProduct(ctx, req.Shop, req.AccessToken, draft)
	if err != nil {
		return fail(domain.StagePublish, err)
	}
	outcome.Status = domain.OutcomePublished
	if product != nil {
		outcome.ProductID = product.Id
	}

	if s.opts.Ledger != nil {
		if err := s.opts.Ledger.MarkPublished(ctx, req.Shop, article.ID, outcome.ProductID); err != nil {
			s.logger.Warn().Err(err).Str("shop", req.Shop).Str("articleId", outcome.ArticleID).Msg("Failed to record published article")
		}
	}
	return outcome
}

func (s *SyncService) persist(ctx context.Context, report *domain.SyncReport) {
	if s.opts.Runs == nil {
		return
	}
	if err := s.opts.Runs.Save(context.WithoutCancel(ctx), report); err != nil {
		s.logger.Error().Err(err).Str("shop", report.Shop).Str("runId", report.ID).Msg("Failed to save sync run")
	}
}

func (s *SyncService) emit(event *domain.SyncEvent) {
	if s.opts.Events != nil {
		s.opts.Events.Publish(event)
	}
}

package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"catalog-sync-shopify-layer/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"
)

type fakeCredentialsRepo struct {
	mu      sync.Mutex
	records map[string]*domain.APICredentials
	upserts int
	err     error
}

func newFakeCredentialsRepo() *fakeCredentialsRepo {
	return &fakeCredentialsRepo{records: map[string]*domain.APICredentials{}}
}

func (r *fakeCredentialsRepo) GetByShop(_ context.Context, shop string) (*domain.APICredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.records[shop]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

func (r *fakeCredentialsRepo) Upsert(_ context.Context, creds *domain.APICredentials) (*domain.APICredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.upserts++
	now := time.Now()
	rec, ok := r.records[creds.Shop]
	if !ok {
		rec = &domain.APICredentials{ID: "id-" + creds.Shop, Shop: creds.Shop, CreatedAt: now}
		r.records[creds.Shop] = rec
	}
	rec.APIURL = creds.APIURL
	rec.APIID = creds.APIID
	rec.APIKey = creds.APIKey
	rec.UpdatedAt = now
	out := *rec
	return &out, nil
}

func (r *fakeCredentialsRepo) SetAutoSync(_ context.Context, shop string, enabled bool, accessToken string) (*domain.APICredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[shop]
	if !ok {
		return nil, nil
	}
	rec.AutoSync = enabled
	rec.AccessToken = accessToken
	out := *rec
	return &out, nil
}

func (r *fakeCredentialsRepo) List(_ context.Context) ([]*domain.APICredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.APICredentials, 0, len(r.records))
	for _, rec := range r.records {
		c := *rec
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Shop < out[j].Shop })
	return out, nil
}

func (r *fakeCredentialsRepo) Delete(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[shop]; !ok {
		return domain.ErrCredentialsNotFound
	}
	delete(r.records, shop)
	return nil
}

// prefixEncryption marks stored secrets so tests can see they were encrypted
type prefixEncryption struct{}

func (prefixEncryption) Encrypt(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return "enc:" + s, nil
}

func (prefixEncryption) Decrypt(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if !strings.HasPrefix(s, "enc:") {
		return "", errors.New("not encrypted")
	}
	return strings.TrimPrefix(s, "enc:"), nil
}

type fakeInventory struct {
	mu          sync.Mutex
	token       string
	tokenErr    error
	articles    []domain.Article
	articlesErr error
	prices      map[domain.ArticleID]decimal.Decimal
	priceErrs   map[domain.ArticleID]error
	priceCalls  int
	block       chan struct{}
}

func (f *fakeInventory) GetToken(_ context.Context, _, _, _ string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeInventory) GetArticles(_ context.Context, _, token string) ([]domain.Article, error) {
	if f.articlesErr != nil {
		return nil, f.articlesErr
	}
	if token != f.token {
		return nil, &domain.StatusError{Op: "get articles", StatusCode: 401}
	}
	return f.articles, nil
}

func (f *fakeInventory) GetPrice(ctx context.Context, _, _ string, id domain.ArticleID) (decimal.Decimal, error) {
	f.mu.Lock()
	f.priceCalls++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return decimal.Zero, &domain.TransportError{Op: "get price", Err: ctx.Err()}
		}
	}
	if err, ok := f.priceErrs[id]; ok {
		return decimal.Zero, err
	}
	return f.prices[id], nil
}

func (f *fakeInventory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.priceCalls
}

type fakePublisher struct {
	mu     sync.Mutex
	drafts []domain.ProductDraft
	shops  []string
	fail   map[string]error
	nextID uint64
}

func (p *fakePublisher) CreateProduct(_ context.Context, shop, _ string, draft domain.ProductDraft) (*goshopify.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.fail[draft.Title]; ok {
		return nil, err
	}
	p.nextID++
	p.drafts = append(p.drafts, draft)
	p.shops = append(p.shops, shop)
	return &goshopify.Product{Id: 1000 + p.nextID, Title: draft.Title}, nil
}

func (p *fakePublisher) published() []domain.ProductDraft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ProductDraft(nil), p.drafts...)
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, shop string, _ time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[shop] {
		return nil, domain.ErrSyncInProgress
	}
	l.held[shop] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, shop)
		l.released++
		return nil
	}, nil
}

type fakeLedger struct {
	mu        sync.Mutex
	published map[string]uint64
}

func (l *fakeLedger) IsPublished(_ context.Context, shop string, id domain.ArticleID) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.published[shop+"/"+id.String()]
	return ok, nil
}

func (l *fakeLedger) MarkPublished(_ context.Context, shop string, id domain.ArticleID, productID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.published == nil {
		l.published = map[string]uint64{}
	}
	l.published[shop+"/"+id.String()] = productID
	return nil
}

type fakeRuns struct {
	mu    sync.Mutex
	saved []*domain.SyncReport
}

func (r *fakeRuns) Save(_ context.Context, report *domain.SyncReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, report)
	return nil
}

func (r *fakeRuns) ListByShop(_ context.Context, shop string, limit int) ([]*domain.SyncReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.SyncReport{}
	for i := len(r.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if r.saved[i].Shop == shop {
			out = append(out, r.saved[i])
		}
	}
	return out, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []*domain.SyncEvent
}

func (e *fakeEvents) Publish(event *domain.SyncEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *fakeEvents) types() []domain.SyncEventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.SyncEventType, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeMetrics struct {
	mu      sync.Mutex
	reports []*domain.SyncReport
}

func (m *fakeMetrics) ObserveRun(report *domain.SyncReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
}

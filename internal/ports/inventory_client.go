package ports

import (
	"context"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/shopspring/decimal"
)

// InventoryClient defines the operations used against the third-party inventory API
type InventoryClient interface {
	// GetToken exchanges the API id/key for a session token
	GetToken(ctx context.Context, apiURL, apiID, apiKey string) (string, error)

	// GetArticles lists the articles of the configured marketplace.
	// An empty inventory returns an empty slice and no error.
	GetArticles(ctx context.Context, apiURL, token string) ([]domain.Article, error)

	// GetPrice returns the price of the first tariff of an article
	GetPrice(ctx context.Context, apiURL, token string, articleID domain.ArticleID) (decimal.Decimal, error)
}

package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	tokenPath    = "/api/developer/getToken"
	articlesPath = "/api/articles"

	// DefaultArticleLimit is the page size requested from the inventory API.
	// Articles beyond it are not fetched.
	DefaultArticleLimit = 10000
	// DefaultMarketPlace is the targetMarketPlace filter
	DefaultMarketPlace = "4"

	maxErrorBody = 512
)

// Options configures the inventory client
type Options struct {
	Timeout      time.Duration
	ArticleLimit int
	MarketPlace  string
}

// DefaultOptions returns the values the inventory API is used with
func DefaultOptions() Options {
	return Options{
		Timeout:      30 * time.Second,
		ArticleLimit: DefaultArticleLimit,
		MarketPlace:  DefaultMarketPlace,
	}
}

type client struct {
	http         *resty.Client
	articleLimit int
	marketPlace  string
	logger       zerolog.Logger
}

// NewClient creates an inventory API client
func NewClient(opts Options, logger zerolog.Logger) ports.InventoryClient {
	return NewClientWithHTTP(resty.New(), opts, logger)
}

// NewClientWithHTTP creates a client on top of an existing resty client
func NewClientWithHTTP(rc *resty.Client, opts Options, logger zerolog.Logger) ports.InventoryClient {
	if opts.ArticleLimit <= 0 {
		opts.ArticleLimit = DefaultArticleLimit
	}
	if opts.MarketPlace == "" {
		opts.MarketPlace = DefaultMarketPlace
	}
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	rc.SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &client{
		http:         rc,
		articleLimit: opts.ArticleLimit,
		marketPlace:  opts.MarketPlace,
		logger:       logger,
	}
}

type tokenRequest struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *client) GetToken(ctx context.Context, apiURL, apiID, apiKey string) (string, error) {
	const op = "get token"

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(tokenRequest{ID: apiID, Key: apiKey}).
		Post(endpoint(apiURL, tokenPath))
	if err != nil {
		return "", &domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", statusError(op, resp)
	}

	var body tokenResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	if strings.TrimSpace(body.Token) == "" {
		return "", domain.NewValidationError("token", "token missing from response")
	}

	c.logger.Debug().Str("apiUrl", apiURL).Msg("Obtained inventory API token")
	return body.Token, nil
}

func (c *client) GetArticles(ctx context.Context, apiURL, token string) ([]domain.Article, error) {
	const op = "get articles"

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", token).
		SetQueryParams(map[string]string{
			"_limit":            strconv.Itoa(c.articleLimit),
			"targetMarketPlace": c.marketPlace,
		}).
		Get(endpoint(apiURL, articlesPath))
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError(op, resp)
	}

	var articles []domain.Article
	if err := json.Unmarshal(resp.Body(), &articles); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	if len(articles) == 0 {
		c.logger.Info().Str("apiUrl", apiURL).Msg("No articles found")
		return []domain.Article{}, nil
	}
	if len(articles) >= c.articleLimit {
		c.logger.Warn().
			Str("apiUrl", apiURL).
			Int("limit", c.articleLimit).
			Msg("Article list reached the page limit, remaining articles are not fetched")
	}
	return articles, nil
}

func (c *client) GetPrice(ctx context.Context, apiURL, token string, articleID domain.ArticleID) (decimal.Decimal, error) {
	const op = "get price"

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", token).
		Get(endpoint(apiURL, articlesPath+"/"+url.PathEscape(articleID.String())+"/tariffs"))
	if err != nil {
		return decimal.Zero, &domain.TransportError{Op: op, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, statusError(op, resp)
	}

	var tariffs []domain.Tariff
	if err := json.Unmarshal(resp.Body(), &tariffs); err != nil {
		return decimal.Zero, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	if len(tariffs) == 0 {
		return decimal.Zero, domain.ErrNoTariff
	}
	if !tariffs[0].Price.Valid {
		return decimal.Zero, domain.NewValidationError("price", "first tariff has no price")
	}
	return tariffs[0].Price.Decimal, nil
}

func endpoint(apiURL, path string) string {
	return strings.TrimRight(apiURL, "/") + path
}

func statusError(op string, resp *resty.Response) error {
	body := string(resp.Body())
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &domain.StatusError{Op: op, StatusCode: resp.StatusCode(), Body: body}
}

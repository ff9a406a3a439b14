package shopify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultAPIVersion is the Admin API version requested when none is configured
const DefaultAPIVersion = "2024-10"

// RetryConfig controls go-shopify's built-in retry on 429/503 responses
type RetryConfig struct {
	MaxRetries int
}

// DefaultRetryConfig returns the retry budget used for product creation
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxRetries: 3}
}

// productsPath is the REST resource products are created on, relative to the versioned admin prefix
const productsPath = "products.json"

type publisher struct {
	app         goshopify.App
	apiVersion  string
	httpClient  *http.Client
	rateLimiter *RateLimiter
	retryConfig RetryConfig
	logger      zerolog.Logger
}

// NewPublisher creates a product publisher backed by go-shopify
func NewPublisher(apiVersion string, rateLimiter *RateLimiter, retryConfig RetryConfig, logger zerolog.Logger) ports.ProductPublisher {
	return NewPublisherWithHTTPClient(nil, apiVersion, rateLimiter, retryConfig, logger)
}

// NewPublisherWithHTTPClient is NewPublisher with the HTTP client go-shopify sends requests through.
// A nil client keeps go-shopify's default.
func NewPublisherWithHTTPClient(httpClient *http.Client, apiVersion string, rateLimiter *RateLimiter, retryConfig RetryConfig, logger zerolog.Logger) ports.ProductPublisher {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &publisher{
		app:         goshopify.App{},
		apiVersion:  apiVersion,
		httpClient:  httpClient,
		rateLimiter: rateLimiter,
		retryConfig: retryConfig,
		logger:      logger,
	}
}

// createClient is a helper to create a goshopify client for one shop
func (p *publisher) createClient(shop string, accessToken string) (*goshopify.Client, error) {
	opts := []goshopify.Option{goshopify.WithVersion(p.apiVersion)}
	if p.retryConfig.MaxRetries > 0 {
		opts = append(opts, goshopify.WithRetry(p.retryConfig.MaxRetries))
	}
	if p.httpClient != nil {
		opts = append(opts, goshopify.WithHTTPClient(p.httpClient))
	}
	client, err := goshopify.NewClient(p.app, ShopName(shop), accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (p *publisher) CreateProduct(ctx context.Context, shop string, accessToken string, draft domain.ProductDraft) (*goshopify.Product, error) {
	if shop == "" {
		return nil, domain.NewValidationError("shop", "shop is required")
	}
	if accessToken == "" {
		return nil, domain.NewValidationError("accessToken", "accessToken is required")
	}
	request, err := NewProductRequest(draft)
	if err != nil {
		return nil, err
	}

	client, err := p.createClient(shop, accessToken)
	if err != nil {
		return nil, err
	}

	if p.rateLimiter != nil {
		if err := p.rateLimiter.Wait(ctx, shop); err != nil {
			return nil, err
		}
	}

	resource := new(goshopify.ProductResource)
	if err := client.Post(ctx, productsPath, request, resource); err != nil {
		p.logger.Error().Err(err).Str("shop", shop).Str("title", draft.Title).Msg("Failed to create product")
		return nil, classifyError(err)
	}

	created := resource.Product
	if created == nil {
		return nil, fmt.Errorf("failed to create product: empty response for %q", draft.Title)
	}

	p.logger.Info().
		Str("shop", shop).
		Uint64("productId", created.Id).
		Str("title", created.Title).
		Msg("Product created")
	return created, nil
}

// ProductRequest is the body of a product-creation call.
// It carries only the draft's fields; Shopify defaults everything else.
type ProductRequest struct {
	Product domain.ProductDraft `json:"product"`
}

// NewProductRequest validates the draft and canonicalizes its variant prices
func NewProductRequest(draft domain.ProductDraft) (ProductRequest, error) {
	if err := draft.Validate(); err != nil {
		return ProductRequest{}, err
	}

	product := domain.ProductDraft{
		Title:    draft.Title,
		BodyHTML: draft.BodyHTML,
		Images:   make([]domain.ProductImage, 0, len(draft.Images)),
		Variants: make([]domain.ProductVariant, 0, len(draft.Variants)),
	}
	product.Images = append(product.Images, draft.Images...)
	for _, v := range draft.Variants {
		variant := domain.ProductVariant{}
		if v.Price != "" {
			price, err := decimal.NewFromString(v.Price)
			if err != nil {
				return ProductRequest{}, domain.NewValidationError("variants.price", "price must be a decimal number")
			}
			variant.Price = price.String()
		}
		product.Variants = append(product.Variants, variant)
	}
	return ProductRequest{Product: product}, nil
}

// classifyError maps go-shopify failures onto the domain error taxonomy
func classifyError(err error) error {
	var responseErr goshopify.ResponseError
	if errors.As(err, &responseErr) {
		return &domain.StatusError{
			Op:         "create product",
			StatusCode: responseErr.GetStatus(),
			Body:       responseErr.GetMessage(),
		}
	}
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.StatusError{
			Op:         "create product",
			StatusCode: rateErr.GetStatus(),
			Body:       rateErr.GetMessage(),
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.TransportError{Op: "create product", Err: err}
	}
	return fmt.Errorf("failed to create product: %w", err)
}

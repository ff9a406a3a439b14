package application

import (
	"context"
	"fmt"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// ProductService publishes single products to a Shopify store
type ProductService struct {
	publisher ports.ProductPublisher
	logger    zerolog.Logger
}

// NewProductService creates a new product service
func NewProductService(publisher ports.ProductPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		publisher: publisher,
		logger:    logger,
	}
}

// CreateProduct creates one product from a draft and returns Shopify's product
func (s *ProductService) CreateProduct(ctx context.Context, shop string, accessToken string, draft domain.ProductDraft) (*goshopify.Product, error) {
	if shop == "" {
		return nil, domain.NewValidationError("shop", "shop is required")
	}
	if accessToken == "" {
		return nil, domain.NewValidationError("accessToken", "accessToken is required")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	product, err := s.publisher.CreateProduct(ctx, shop, accessToken, draft)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Str("title", draft.Title).Msg("Failed to add product")
		return nil, fmt.Errorf("failed to add product: %w", err)
	}
	return product, nil
}

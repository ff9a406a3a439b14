package ports

import (
	"context"

	"catalog-sync-shopify-layer/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

// ProductPublisher creates products in a Shopify store
type ProductPublisher interface {
	CreateProduct(ctx context.Context, shop string, accessToken string, draft domain.ProductDraft) (*goshopify.Product, error)
}

package application

import (
	"context"
	"testing"

	"catalog-sync-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_CreateProduct(t *testing.T) {
	pub := &fakePublisher{fail: map[string]error{
		"Rejected": &domain.StatusError{Op: "create product", StatusCode: 422},
	}}
	svc := NewProductService(pub, zerolog.Nop())
	ctx := context.Background()
	draft := domain.ProductDraft{Title: "Widget", Variants: []domain.ProductVariant{{Price: "9.99"}}}

	product, err := svc.CreateProduct(ctx, "acme", "shpat_1", draft)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Title)
	assert.Len(t, pub.published(), 1)

	_, err = svc.CreateProduct(ctx, "acme", "shpat_1", domain.ProductDraft{Title: "Rejected"})
	var statusErr *domain.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Contains(t, err.Error(), "failed to add product")

	tests := []struct {
		name        string
		shop, token string
		draft       domain.ProductDraft
		field       string
	}{
		{"missing shop", "", "tok", draft, "shop"},
		{"missing token", "acme", "", draft, "accessToken"},
		{"missing title", "acme", "tok", domain.ProductDraft{}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.shop, tt.token, tt.draft)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
	assert.Len(t, pub.published(), 1)
}

package ports

import (
	"context"

	"catalog-sync-shopify-layer/internal/domain"
)

// CredentialsRepository defines the interface for per-shop credentials persistence.
// Secrets are passed in their stored (encrypted) form.
type CredentialsRepository interface {
	// GetByShop returns nil, nil when the shop has no record
	GetByShop(ctx context.Context, shop string) (*domain.APICredentials, error)

	// Upsert creates the record on first save and updates apiUrl/apiId/apiKey afterwards
	Upsert(ctx context.Context, creds *domain.APICredentials) (*domain.APICredentials, error)

	// SetAutoSync stores the scheduler toggle and the shop's access token
	SetAutoSync(ctx context.Context, shop string, enabled bool, accessToken string) (*domain.APICredentials, error)

	List(ctx context.Context) ([]*domain.APICredentials, error)
	Delete(ctx context.Context, shop string) error
}

// EncryptionService encrypts secrets before they are stored
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

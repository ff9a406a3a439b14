package application

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync-shopify-layer/internal/domain"
	"catalog-sync-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// CredentialsService handles inventory API credentials per shop.
// Secrets are encrypted before they reach the repository and decrypted on the
// way out, so callers always see plaintext values.
type CredentialsService struct {
	repo          ports.CredentialsRepository
	encryptionSvc ports.EncryptionService
	logger        zerolog.Logger
}

// NewCredentialsService creates a new credentials service
func NewCredentialsService(
	repo ports.CredentialsRepository,
	encryptionService ports.EncryptionService,
	logger zerolog.Logger,
) *CredentialsService {
	return &CredentialsService{
		repo:          repo,
		encryptionSvc: encryptionService,
		logger:        logger,
	}
}

// SaveCredentialsInput represents the input for saving credentials
type SaveCredentialsInput struct {
	Shop   string `json:"shop"`
	APIURL string `json:"apiUrl"`
	APIID  string `json:"apiId"`
	APIKey string `json:"apiKey"`
}

// SaveCredentials creates the shop's record on first save and updates it afterwards
func (s *CredentialsService) SaveCredentials(ctx context.Context, input SaveCredentialsInput) (*domain.APICredentials, error) {
	creds, err := domain.NewAPICredentials(input.Shop, input.APIURL, input.APIID, input.APIKey)
	if err != nil {
		return nil, err
	}

	encryptedKey, err := s.encryptionSvc.Encrypt(creds.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt API key: %w", err)
	}
	stored := *creds
	stored.APIKey = encryptedKey

	existing, err := s.repo.GetByShop(ctx, creds.Shop)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", creds.Shop).Msg("Failed to look up API credentials")
		return nil, &domain.PersistenceError{Op: "save credentials", Err: err}
	}

	saved, err := s.repo.Upsert(ctx, &stored)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", creds.Shop).Msg("Failed to save API credentials")
		return nil, &domain.PersistenceError{Op: "save credentials", Err: err}
	}

	s.logger.Info().
		Str("shop", creds.Shop).
		Bool("created", existing == nil).
		Msg("API credentials saved successfully")

	return s.decrypt(saved)
}

// GetCredentials retrieves the credentials of a shop
func (s *CredentialsService) GetCredentials(ctx context.Context, shop string) (*domain.APICredentials, error) {
	if shop == "" {
		return nil, domain.NewValidationError("shop", "shop is required")
	}
	creds, err := s.repo.GetByShop(ctx, shop)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get credentials", Err: err}
	}
	if creds == nil {
		return nil, fmt.Errorf("shop %s: %w", shop, domain.ErrCredentialsNotFound)
	}
	return s.decrypt(creds)
}

// ListCredentials returns every stored record, decrypted
func (s *CredentialsService) ListCredentials(ctx context.Context) ([]*domain.APICredentials, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list credentials", Err: err}
	}

	out := make([]*domain.APICredentials, 0, len(stored))
	for _, creds := range stored {
		plain, err := s.decrypt(creds)
		if err != nil {
			s.logger.Warn().Err(err).Str("shop", creds.Shop).Msg("Failed to decrypt API credentials for shop")
			continue
		}
		out = append(out, plain)
	}
	return out, nil
}

// SetAutoSync toggles scheduled syncing for a shop. Enabling requires an
// access token, either passed now or stored earlier.
func (s *CredentialsService) SetAutoSync(ctx context.Context, shop string, enabled bool, accessToken string) (*domain.APICredentials, error) {
	current, err := s.GetCredentials(ctx, shop)
	if err != nil {
		return nil, err
	}
	if accessToken == "" {
		accessToken = current.AccessToken
	}
	if enabled && accessToken == "" {
		return nil, domain.NewValidationError("accessToken", "accessToken is required to enable auto sync")
	}

	encryptedToken, err := s.encryptionSvc.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	updated, err := s.repo.SetAutoSync(ctx, shop, enabled, encryptedToken)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "set auto sync", Err: err}
	}
	if updated == nil {
		return nil, fmt.Errorf("shop %s: %w", shop, domain.ErrCredentialsNotFound)
	}

	s.logger.Info().Str("shop", shop).Bool("autoSync", enabled).Msg("Auto sync updated")
	return s.decrypt(updated)
}

// DeleteCredentials removes a shop's credentials
func (s *CredentialsService) DeleteCredentials(ctx context.Context, shop string) error {
	if err := s.repo.Delete(ctx, shop); err != nil {
		if errors.Is(err, domain.ErrCredentialsNotFound) {
			return fmt.Errorf("shop %s: %w", shop, err)
		}
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to delete API credentials")
		return &domain.PersistenceError{Op: "delete credentials", Err: err}
	}

	s.logger.Info().Str("shop", shop).Msg("API credentials deleted")
	return nil
}

func (s *CredentialsService) decrypt(stored *domain.APICredentials) (*domain.APICredentials, error) {
	out := *stored
	key, err := s.encryptionSvc.Decrypt(stored.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt API key: %w", err)
	}
	token, err := s.encryptionSvc.Decrypt(stored.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	out.APIKey = key
	out.AccessToken = token
	return &out, nil
}

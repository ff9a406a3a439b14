package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCredentialsNotFound is returned when no credentials are stored for a shop
	ErrCredentialsNotFound = errors.New("api credentials not found")

	// ErrSyncInProgress is returned when another sync already holds the shop lock
	ErrSyncInProgress = errors.New("sync already in progress for shop")

	// ErrNoArticles marks an inventory that returned an empty article list
	ErrNoArticles = &ValidationError{Field: "articles", Message: "no articles fetched"}

	// ErrNoTariff marks an article whose tariff list was empty
	ErrNoTariff = &ValidationError{Field: "tariffs", Message: "article has no tariff"}
)

// TransportError wraps a network level failure (dial, timeout, TLS, reset)
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a response that arrived with an unexpected status code
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API request failed with status %d", e.Op, e.StatusCode)
}

// ValidationError is missing or malformed data, either from a caller or from
// an upstream response (no token, no articles)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError wraps a store read/write failure
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StageError attaches sync context (shop, stage, article) to an underlying error
type StageError struct {
	Shop      string
	Stage     SyncStage
	ArticleID string
	Err       error
}

func (e *StageError) Error() string {
	if e.ArticleID != "" {
		return fmt.Sprintf("sync %s: %s article %s: %v", e.Shop, e.Stage, e.ArticleID, e.Err)
	}
	return fmt.Sprintf("sync %s: %s: %v", e.Shop, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with sync context
func NewStageError(shop string, stage SyncStage, articleID string, err error) *StageError {
	return &StageError{Shop: shop, Stage: stage, ArticleID: articleID, Err: err}
}

// IsUpstream reports whether err originated from the inventory API or Shopify
func IsUpstream(err error) bool {
	var transportErr *TransportError
	var statusErr *StatusError
	return errors.As(err, &transportErr) || errors.As(err, &statusErr)
}

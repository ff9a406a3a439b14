package domain

import (
	"net/url"
	"strings"
	"time"
)

// APICredentials holds the inventory API credentials stored for one shop.
// Shop is the unique key; at most one record exists per shop.
type APICredentials struct {
	ID          string    `json:"id"`
	Shop        string    `json:"shop"`
	APIURL      string    `json:"apiUrl"`
	APIID       string    `json:"apiId"`
	APIKey      string    `json:"apiKey"`
	AccessToken string    `json:"accessToken,omitempty"` // Shopify access token used by scheduled syncs
	AutoSync    bool      `json:"autoSync"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewAPICredentials validates and builds a credentials value
func NewAPICredentials(shop, apiURL, apiID, apiKey string) (*APICredentials, error) {
	creds := &APICredentials{
		Shop:   strings.TrimSpace(shop),
		APIURL: strings.TrimRight(strings.TrimSpace(apiURL), "/"),
		APIID:  strings.TrimSpace(apiID),
		APIKey: apiKey,
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// Validate checks the required fields
func (c *APICredentials) Validate() error {
	if c.Shop == "" {
		return NewValidationError("shop", "shop is required")
	}
	if err := ValidateAPIURL(c.APIURL); err != nil {
		return err
	}
	if c.APIID == "" {
		return NewValidationError("apiId", "apiId is required")
	}
	if c.APIKey == "" {
		return NewValidationError("apiKey", "apiKey is required")
	}
	return nil
}

// CanAutoSync reports whether the scheduler may sync this shop unattended
func (c *APICredentials) CanAutoSync() bool {
	return c.AutoSync && c.AccessToken != ""
}

// Redacted returns a copy safe to send back to a client
func (c *APICredentials) Redacted() *APICredentials {
	out := *c
	out.APIKey = maskSecret(c.APIKey)
	out.AccessToken = ""
	return &out
}

// ValidateAPIURL requires an absolute http(s) URL
func ValidateAPIURL(raw string) error {
	if raw == "" {
		return NewValidationError("apiUrl", "apiUrl is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return NewValidationError("apiUrl", "apiUrl must be an absolute http(s) URL")
	}
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

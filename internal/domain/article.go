package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ArticleID is the inventory identifier of an article. The inventory API
// returns it either as a JSON number or a string.
type ArticleID string

// UnmarshalJSON accepts numbers and strings
func (id *ArticleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ArticleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid article id %s: %w", string(data), err)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("invalid article id %s: %w", string(data), err)
	}
	// 1, 1.0 and 1e0 name the same article
	if d.Equal(d.Truncate(0)) {
		d = d.Truncate(0)
	}
	*id = ArticleID(d.String())
	return nil
}

func (id ArticleID) String() string { return string(id) }

// Article is a catalog item read from the inventory API
type Article struct {
	ID    ArticleID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image,omitempty"`
}

// UnmarshalJSON keeps image only when the API sends it as a string.
// Any other image value is treated as no image.
func (a *Article) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    ArticleID       `json:"id"`
		Name  string          `json:"name"`
		Image json.RawMessage `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Article{ID: raw.ID, Name: raw.Name}
	if len(raw.Image) > 0 && raw.Image[0] == '"' {
		if err := json.Unmarshal(raw.Image, &a.Image); err != nil {
			return err
		}
	}
	return nil
}

// ImageURL resolves the article image against the inventory base URL.
// Absolute image URLs are kept as they are.
func (a Article) ImageURL(apiURL string) string {
	img := strings.TrimSpace(a.Image)
	if img == "" {
		return ""
	}
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}
	return strings.TrimRight(apiURL, "/") + "/" + strings.TrimLeft(img, "/")
}

// Tariff is a pricing entry of an article
type Tariff struct {
	Price decimal.NullDecimal `json:"price"`
}

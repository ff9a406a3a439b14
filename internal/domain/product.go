package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductDraft is the payload submitted to the Shopify product-creation API
type ProductDraft struct {
	Title    string           `json:"title"`
	BodyHTML string           `json:"body_html"`
	Images   []ProductImage   `json:"images"`
	Variants []ProductVariant `json:"variants"`
}

// ProductImage references an image by URL
type ProductImage struct {
	Src string `json:"src"`
}

// ProductVariant carries the variant price as a decimal string
type ProductVariant struct {
	Price string `json:"price"`
}

// NewProductDraft maps an inventory article and its price onto a draft
func NewProductDraft(apiURL string, article Article, price decimal.Decimal) ProductDraft {
	images := []ProductImage{}
	if src := article.ImageURL(apiURL); src != "" {
		images = append(images, ProductImage{Src: src})
	}
	return ProductDraft{
		Title:    article.Name,
		BodyHTML: "",
		Images:   images,
		Variants: []ProductVariant{{Price: price.String()}},
	}
}

// Validate checks the draft before it is sent to Shopify
func (d ProductDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return NewValidationError("title", "title is required")
	}
	for _, v := range d.Variants {
		if v.Price == "" {
			continue
		}
		if _, err := decimal.NewFromString(v.Price); err != nil {
			return NewValidationError("variants.price", "price must be a decimal number")
		}
	}
	return nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxGalleryImages is the maximum number of images a product may carry.
	MaxGalleryImages = 4

	// DefaultProductImage is used when a product has no gallery.
	DefaultProductImage = "/uploads/products/default-product.png"
)

// Product is a catalog item. Category holds the denormalized category name
// alongside the CategoryID reference.
type Product struct {
	ID             uuid.UUID      `json:"id"`
	ManagementID   *int64         `json:"managementId,omitempty"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"`
	OriginalPrice  *float64       `json:"originalPrice,omitempty"`
	Category       string         `json:"category"`
	CategoryID     uuid.UUID      `json:"categoryId"`
	Image          string         `json:"image"`
	Gallery        []string       `json:"gallery"`
	InStock        bool           `json:"inStock"`
	StockCount     int            `json:"stockCount"`
	Rating         float64        `json:"rating"`
	Reviews        int            `json:"reviews"`
	Featured       bool           `json:"featured"`
	Tags           []string       `json:"tags"`
	Specifications map[string]any `json:"specifications"`
	Discount       *int           `json:"discount,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Normalize applies the derived-field rules that hold for every stored
// product: stock flag follows the stock count, and the main image is the
// first gallery entry (or the default image when the gallery is empty).
// Galleries longer than MaxGalleryImages are truncated.
func (p *Product) Normalize() {
	p.InStock = p.StockCount > 0
	if len(p.Gallery) > MaxGalleryImages {
		p.Gallery = p.Gallery[:MaxGalleryImages]
	}
	if len(p.Gallery) == 0 {
		p.Gallery = []string{DefaultProductImage}
	}
	p.Image = p.Gallery[0]
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = map[string]any{}
	}
}

// CalculatedDiscount returns the percentage saved relative to OriginalPrice,
// or 0 when there is no higher original price.
func (p *Product) CalculatedDiscount() int {
	if p.OriginalPrice == nil || *p.OriginalPrice <= p.Price || *p.OriginalPrice == 0 {
		return 0
	}
	return int(math.Round((*p.OriginalPrice - p.Price) / *p.OriginalPrice * 100))
}

// ProductFilter holds the structured (non-text) filters for product listings.
type ProductFilter struct {
	Category   string
	CategoryID *uuid.UUID
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	Featured   bool
	Tags       []string
}

// ProductSort selects the ordering for unranked product listings.
type ProductSort struct {
	Field string // one of the columns accepted by the store
	Desc  bool
}

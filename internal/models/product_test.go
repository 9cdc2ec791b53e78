// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

func TestProductNormalize(t *testing.T) {
	t.Run("empty gallery falls back to default image", func(t *testing.T) {
		p := &Product{StockCount: 0}
		p.Normalize()

		if p.InStock {
			t.Error("InStock should be false when StockCount is 0")
		}
		if p.Image != DefaultProductImage {
			t.Errorf("Image: got %q, want %q", p.Image, DefaultProductImage)
		}
		if len(p.Gallery) != 1 || p.Gallery[0] != DefaultProductImage {
			t.Errorf("Gallery: got %v", p.Gallery)
		}
		if p.Tags == nil || p.Specifications == nil {
			t.Error("Tags and Specifications should be initialized")
		}
	})

	t.Run("first gallery image becomes the main image", func(t *testing.T) {
		p := &Product{StockCount: 3, Gallery: []string{"/a.png", "/b.png"}}
		p.Normalize()

		if !p.InStock {
			t.Error("InStock should be true when StockCount > 0")
		}
		if p.Image != "/a.png" {
			t.Errorf("Image: got %q, want /a.png", p.Image)
		}
	})

	t.Run("gallery is capped", func(t *testing.T) {
		p := &Product{Gallery: []string{"/1", "/2", "/3", "/4", "/5", "/6"}}
		p.Normalize()

		if len(p.Gallery) != MaxGalleryImages {
			t.Errorf("Gallery length: got %d, want %d", len(p.Gallery), MaxGalleryImages)
		}
		if p.Image != "/1" {
			t.Errorf("Image: got %q, want /1", p.Image)
		}
	})
}

func TestProductCalculatedDiscount(t *testing.T) {
	price := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		price    float64
		original *float64
		want     int
	}{
		{"no original price", 10, nil, 0},
		{"original lower than price", 10, price(8), 0},
		{"original equal to price", 10, price(10), 0},
		{"quarter off", 75, price(100), 25},
		{"rounds to nearest", 66, price(99), 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: tt.price, OriginalPrice: tt.original}
			if got := p.CalculatedDiscount(); got != tt.want {
				t.Errorf("CalculatedDiscount() = %d, want %d", got, tt.want)
			}
		})
	}
}

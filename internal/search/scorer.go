// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search ranks catalog products against a free-text query. Scores
// combine exact and partial name/description matches, category and tag
// matches, multi-word coverage, and stock/featured bonuses.
package search

import (
	"math"
	"slices"
	"strings"

	"storefront/internal/models"
)

// Fixed bonuses added on top of the weighted match signals.
const (
	wordCoverageBonus = 30
	inStockBonus      = 5
	featuredBonus     = 10
)

// Weights sets the contribution of each match signal.
type Weights struct {
	ExactMatch    float64 `json:"exactMatch"`
	PartialMatch  float64 `json:"partialMatch"`
	TagMatch      float64 `json:"tagMatch"`
	CategoryMatch float64 `json:"categoryMatch"`
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{
		ExactMatch:    100,
		PartialMatch:  50,
		TagMatch:      75,
		CategoryMatch: 25,
	}
}

// Result pairs a product with its relevance score.
type Result struct {
	Product models.Product
	Score   int
}

// Scorer computes relevance scores with a fixed set of weights.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer using w.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Weights returns the weights the scorer applies.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the relevance of p for term. It is never negative.
func (s *Scorer) Score(p *models.Product, term string) int {
	return score(p, term, s.weights)
}

// Rank scores every product and returns them ordered by descending score.
// Equal scores keep their input order.
func (s *Scorer) Rank(products []models.Product, term string) []Result {
	results := make([]Result, len(products))
	for i := range products {
		results[i] = Result{Product: products[i], Score: score(&products[i], term, s.weights)}
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		return b.Score - a.Score
	})
	return results
}

// Score returns the relevance of p for term under w.
func Score(p *models.Product, term string, w Weights) int {
	return score(p, term, w)
}

// Rank orders products by relevance to term using the default weights.
func Rank(products []models.Product, term string) []Result {
	return NewScorer(DefaultWeights()).Rank(products, term)
}

func score(p *models.Product, term string, w Weights) int {
	var total float64
	if p.InStock {
		total += inStockBonus
	}
	if p.Featured {
		total += featuredBonus
	}

	normSearch := Normalize(term)
	if normSearch == "" {
		return clampRound(total)
	}

	normName := Normalize(p.Name)
	normDesc := Normalize(p.Description)
	normCategory := Normalize(p.Category)

	// Only the highest-priority name/description signal counts.
	id, numeric := numericTerm(term)
	switch {
	case numeric && p.ManagementID != nil && *p.ManagementID == id:
		total += w.ExactMatch * 1.5
	case normName == normSearch:
		total += w.ExactMatch
	case normDesc == normSearch:
		total += w.ExactMatch * 0.8
	case strings.Contains(normName, normSearch):
		total += w.PartialMatch
	case strings.Contains(normDesc, normSearch):
		total += w.PartialMatch * 0.6
	}

	if strings.Contains(normCategory, normSearch) {
		total += w.CategoryMatch
	}

	for _, tag := range p.Tags {
		if strings.Contains(Normalize(tag), normSearch) {
			total += w.TagMatch
			break
		}
	}

	if words := strings.Fields(normSearch); len(words) > 1 {
		matching := 0
		for _, word := range words {
			if strings.Contains(normName, word) ||
				strings.Contains(normDesc, word) ||
				strings.Contains(normCategory, word) {
				matching++
			}
		}
		total += float64(matching) / float64(len(words)) * wordCoverageBonus
	}

	return clampRound(total)
}

func clampRound(v float64) int {
	r := math.Round(v)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return int(r)
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"regexp"
	"strings"

	"storefront/internal/models"
)

// Matcher decides whether a product is a search candidate at all: its
// management id equals a numeric term, or any word of the term appears in
// its name, description, category or tags.
type Matcher struct {
	empty   bool
	pattern *regexp.Regexp
	id      int64
	numeric bool
}

// NewMatcher compiles the candidate filter for term. An empty term matches
// every product.
func NewMatcher(term string) *Matcher {
	m := &Matcher{}
	m.id, m.numeric = numericTerm(term)

	words := ExtractWords(term)
	if len(words) == 0 {
		m.empty = true
		return m
	}
	// Words are already escaped, so the alternation is literal.
	m.pattern = regexp.MustCompile(strings.Join(words, "|"))
	return m
}

// Match reports whether p is a candidate.
func (m *Matcher) Match(p *models.Product) bool {
	if m.empty {
		return true
	}
	if m.numeric && p.ManagementID != nil && *p.ManagementID == m.id {
		return true
	}
	if m.pattern.MatchString(Normalize(p.Name)) ||
		m.pattern.MatchString(Normalize(p.Description)) ||
		m.pattern.MatchString(Normalize(p.Category)) {
		return true
	}
	for _, tag := range p.Tags {
		if m.pattern.MatchString(Normalize(tag)) {
			return true
		}
	}
	return false
}

// Filter returns the products that match term, preserving order.
func Filter(products []models.Product, term string) []models.Product {
	m := NewMatcher(term)
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if m.Match(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

// Matches reports whether p is a candidate for term. Use NewMatcher when
// testing many products against the same term.
func Matches(p *models.Product, term string) bool {
	return NewMatcher(term).Match(p)
}

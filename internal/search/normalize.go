// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// digitsOnly matches a search term that is a plain non-negative integer.
var digitsOnly = regexp.MustCompile(`^\d+$`)

// Normalize folds text for comparison: lowercase, accents stripped via
// canonical decomposition, whitespace runs collapsed, ends trimmed.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Transformers carry state, so build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// ExtractWords normalizes a search term and returns its words, each escaped
// for literal use inside a regular expression.
func ExtractWords(term string) []string {
	fields := strings.Fields(Normalize(term))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		words = append(words, regexp.QuoteMeta(f))
	}
	return words
}

// numericTerm returns the integer value of a purely numeric term.
func numericTerm(term string) (int64, bool) {
	trimmed := strings.TrimSpace(term)
	if !digitsOnly.MatchString(trimmed) {
		return 0, false
	}
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Package textnorm builds the normalized token "soup" for the features table.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s (Unicode-aware), composes it to NFC and collapses
// every whitespace run into one space. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// A Caser keeps state between calls and is not safe for concurrent use.
	lower := cases.Lower(language.Und)
	s = norm.NFC.String(lower.String(norm.NFC.String(s)))
	return strings.Join(strings.Fields(s), " ")
}

// Soup joins genres, directors and cast into one normalized string. genres
// is comma-separated; directors and cast are "|"-separated.
func Soup(genres, directors, cast string) string {
	parts := []string{
		strings.ReplaceAll(genres, ",", " "),
		strings.ReplaceAll(directors, "|", " "),
		strings.ReplaceAll(cast, "|", " "),
	}
	return Normalize(strings.Join(parts, " "))
}

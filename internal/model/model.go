// Package model holds the records flowing between catalog stages and the two
// output rows they produce.
package model

import (
	"strconv"

	"moviecatalog/internal/parser/ints"
)

// TitleRecord is one row of the titles dump.
type TitleRecord struct {
	Key         string
	Kind        string
	PrimaryName string
	// Adult is true unless the source flag is exactly "0"; a missing flag
	// counts as adult.
	Adult     bool
	StartYear ints.Null
	Runtime   ints.Null
	Genres    string // raw, comma-joined; `\N` when absent
}

// Candidate is a title that passed the title filter.
type Candidate struct {
	Key     string
	Title   string
	Year    int
	Runtime int
	Genres  string
}

// RatingRecord is one row of the ratings dump.
type RatingRecord struct {
	Key   string
	Score float32
	Votes int
}

// Rated is a candidate joined with its rating.
type Rated struct {
	Candidate
	Score float32
	Votes int
}

// CrewRecord lists the directors of a title in source order.
type CrewRecord struct {
	Key       string
	Directors []string
}

// RoleKind classifies a principal credit.
type RoleKind uint8

const (
	RoleOther RoleKind = iota
	RoleActor
	RoleActress
)

// ParseRoleKind maps a dump category onto a RoleKind.
func ParseRoleKind(s string) RoleKind {
	switch s {
	case "actor":
		return RoleActor
	case "actress":
		return RoleActress
	default:
		return RoleOther
	}
}

// IsCast reports whether the role counts toward the cast list.
func (k RoleKind) IsCast() bool { return k == RoleActor || k == RoleActress }

// CastRole is one principal credit.
type CastRole struct {
	Key      string
	Position int // 1-based billing order
	PersonID string
	Kind     RoleKind
}

// PersonRecord maps a person id to a display name.
type PersonRecord struct {
	ID   string
	Name string
}

// Output column headers.
var (
	CatalogHeader = []string{
		"tconst", "primaryTitle", "startYear", "runtimeMinutes", "genres",
		"averageRating", "numVotes", "director_names", "cast_names_top5",
	}
	FeatureHeader = []string{"tconst", "soup"}
)

// CatalogEntry is one flat row of the catalog output.
type CatalogEntry struct {
	Key       string
	Title     string
	Year      int
	Runtime   int
	Genres    string
	Score     float32
	Votes     int
	Directors string // "|"-joined, crew order
	Cast      string // "|"-joined, billing order
}

// Row renders the entry for a text table, in CatalogHeader order.
func (e CatalogEntry) Row() []string {
	return []string{
		e.Key,
		e.Title,
		strconv.Itoa(e.Year),
		strconv.Itoa(e.Runtime),
		e.Genres,
		FormatScore(e.Score),
		strconv.Itoa(e.Votes),
		e.Directors,
		e.Cast,
	}
}

// Values renders the entry for a database load, in CatalogHeader order.
func (e CatalogEntry) Values() []any {
	return []any{e.Key, e.Title, e.Year, e.Runtime, e.Genres, float64(e.Score), e.Votes, e.Directors, e.Cast}
}

// FeatureEntry is one row of the features output.
type FeatureEntry struct {
	Key  string
	Soup string
}

func (e FeatureEntry) Row() []string { return []string{e.Key, e.Soup} }

func (e FeatureEntry) Values() []any { return []any{e.Key, e.Soup} }

// FormatScore prints a score with the shortest float32 representation, so
// "7.3" stays "7.3".
func FormatScore(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

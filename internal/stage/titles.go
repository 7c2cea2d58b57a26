package stage

import (
	"context"
	"errors"
	"strings"
	"time"

	"moviecatalog/internal/datasource"
	"moviecatalog/internal/keyset"
	"moviecatalog/internal/model"
	"moviecatalog/internal/parser/ints"
	"moviecatalog/internal/parser/tsv"
)

// TitleColumns are the titles dump columns the filter reads.
var TitleColumns = []string{"tconst", "titleType", "primaryTitle", "isAdult", "startYear", "runtimeMinutes", "genres"}

var errEmptyKey = errors.New("empty key")

// TitleResult is the output of FilterTitles.
type TitleResult struct {
	// Candidates are in scan order, one per key.
	Candidates []model.Candidate
	Keys       keyset.Set
	Duplicates int64
	Stats      tsv.Stats
}

// DecodeTitle decodes a row projected onto TitleColumns.
func DecodeTitle(f []string) (model.TitleRecord, error) {
	if f[0] == "" {
		return model.TitleRecord{}, errEmptyKey
	}
	year, err := ints.ParseNull(f[4])
	if err != nil {
		return model.TitleRecord{}, err
	}
	runtime, err := ints.ParseNull(f[5])
	if err != nil {
		return model.TitleRecord{}, err
	}
	return model.TitleRecord{
		Key:         f[0],
		Kind:        f[1],
		PrimaryName: f[2],
		Adult:       f[3] != "0",
		StartYear:   year,
		Runtime:     runtime,
		Genres:      f[6],
	}, nil
}

// TitlePredicate returns the title filter. Conditions are checked in order:
// kind, adult flag, name, year, runtime, genres.
func TitlePredicate(f Filter) func(model.TitleRecord) bool {
	return func(t model.TitleRecord) bool {
		switch {
		case t.Kind != "movie":
			return false
		case t.Adult:
			return false
		case strings.TrimSpace(t.PrimaryName) == "":
			return false
		case !t.StartYear.Valid || t.StartYear.Int < f.MinYear:
			return false
		case !t.Runtime.Valid || t.Runtime.Int < f.RuntimeMin || t.Runtime.Int > f.RuntimeMax:
			return false
		case !tsv.Present(t.Genres):
			return false
		}
		return true
	}
}

// FilterTitles scans the titles dump and keeps the first occurrence of every
// title passing TitlePredicate.
func FilterTitles(ctx context.Context, src datasource.Source, cfg Config) (_ *TitleResult, err error) {
	started := time.Now()
	res := &TitleResult{}
	defer func() { finish(cfg, "titles", started, err, res.Keys.Len()) }()

	s := newScanner(src, cfg, "titles", cfg.Batches.Titles, TitleColumns, DecodeTitle, TitlePredicate(cfg.Filter))
	b := keyset.NewBuilder()
	for batch, err := range s.Batches(ctx) {
		if err != nil {
			return nil, err
		}
		for _, t := range batch {
			if !b.Add(t.Key) {
				res.Duplicates++
				continue
			}
			res.Candidates = append(res.Candidates, model.Candidate{
				Key:     t.Key,
				Title:   t.PrimaryName,
				Year:    t.StartYear.Int,
				Runtime: t.Runtime.Int,
				Genres:  t.Genres,
			})
		}
	}
	res.Keys = b.Freeze()
	res.Stats = s.Stats()
	return res, nil
}

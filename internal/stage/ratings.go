package stage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"moviecatalog/internal/datasource"
	"moviecatalog/internal/keyset"
	"moviecatalog/internal/model"
	"moviecatalog/internal/parser/ints"
	"moviecatalog/internal/parser/tsv"
)

// RatingColumns are the ratings dump columns the join reads.
var RatingColumns = []string{"tconst", "averageRating", "numVotes"}

// RatingResult is the output of JoinRatings.
type RatingResult struct {
	// Rated follows candidate order.
	Rated []model.Rated
	Keys  keyset.Set
	Stats tsv.Stats
}

// DecodeRating decodes a row projected onto RatingColumns. Absent scores or
// vote counts are malformed: such a row cannot take part in the join.
func DecodeRating(f []string) (model.RatingRecord, error) {
	if f[0] == "" {
		return model.RatingRecord{}, errEmptyKey
	}
	score, err := strconv.ParseFloat(f[1], 32)
	if err != nil {
		return model.RatingRecord{}, fmt.Errorf("averageRating %q: %w", f[1], ints.ErrMalformed)
	}
	votes, err := ints.ParseNull(f[2])
	if err != nil || !votes.Valid {
		return model.RatingRecord{}, fmt.Errorf("numVotes %q: %w", f[2], ints.ErrMalformed)
	}
	return model.RatingRecord{Key: f[0], Score: float32(score), Votes: votes.Int}, nil
}

// JoinRatings inner-joins the candidates with their ratings, keeping titles
// with at least Filter.MinVotes votes. Output order is candidate order.
func JoinRatings(ctx context.Context, src datasource.Source, titles *TitleResult, cfg Config) (_ *RatingResult, err error) {
	started := time.Now()
	res := &RatingResult{}
	defer func() { finish(cfg, "ratings", started, err, res.Keys.Len()) }()

	minVotes := cfg.Filter.MinVotes
	keep := func(r model.RatingRecord) bool {
		return r.Votes >= minVotes && titles.Keys.Has(r.Key)
	}

	s := newScanner(src, cfg, "ratings", cfg.Batches.Ratings, RatingColumns, DecodeRating, keep)
	byKey := make(map[string]model.RatingRecord, titles.Keys.Len())
	for batch, err := range s.Batches(ctx) {
		if err != nil {
			return nil, err
		}
		for _, r := range batch {
			if _, dup := byKey[r.Key]; !dup {
				byKey[r.Key] = r
			}
		}
	}

	b := keyset.NewBuilder()
	res.Rated = make([]model.Rated, 0, len(byKey))
	for _, c := range titles.Candidates {
		r, ok := byKey[c.Key]
		if !ok {
			continue
		}
		b.Add(c.Key)
		res.Rated = append(res.Rated, model.Rated{Candidate: c, Score: r.Score, Votes: r.Votes})
	}
	res.Keys = b.Freeze()
	res.Stats = s.Stats()
	return res, nil
}

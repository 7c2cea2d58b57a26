package stage

import (
	"strings"
	"time"

	"moviecatalog/internal/metrics"
	"moviecatalog/internal/model"
	"moviecatalog/internal/textnorm"
)

// AssembleStats counts references dropped during assembly.
type AssembleStats struct {
	UnresolvedDirectors int
	UnresolvedCast      int
	EmptySoup           int
}

// Assembly is the output of Assemble. Catalog and Features share key order.
type Assembly struct {
	Catalog  []model.CatalogEntry
	Features []model.FeatureEntry
	Stats    AssembleStats
}

// Assemble builds one catalog row and one feature row per rated title.
// Unresolved ids are skipped; titles without credits get empty name lists.
func Assemble(rated []model.Rated, crew *CrewResult, cast *CastResult, names Names, cfg Config) *Assembly {
	started := time.Now()
	a := &Assembly{
		Catalog:  make([]model.CatalogEntry, 0, len(rated)),
		Features: make([]model.FeatureEntry, 0, len(rated)),
	}

	for _, r := range rated {
		directors, miss := resolve(crew.Directors[r.Key], names, 0)
		a.Stats.UnresolvedDirectors += miss
		actors, miss := resolve(cast.Cast[r.Key], names, cfg.Filter.CastTopN)
		a.Stats.UnresolvedCast += miss

		e := model.CatalogEntry{
			Key:       r.Key,
			Title:     r.Title,
			Year:      r.Year,
			Runtime:   r.Runtime,
			Genres:    r.Genres,
			Score:     r.Score,
			Votes:     r.Votes,
			Directors: strings.Join(directors, "|"),
			Cast:      strings.Join(actors, "|"),
		}
		soup := textnorm.Soup(e.Genres, e.Directors, e.Cast)
		if soup == "" {
			a.Stats.EmptySoup++
		}
		a.Catalog = append(a.Catalog, e)
		a.Features = append(a.Features, model.FeatureEntry{Key: e.Key, Soup: soup})
	}

	metrics.RecordRow(cfg.Job, "unresolved_directors", int64(a.Stats.UnresolvedDirectors))
	metrics.RecordRow(cfg.Job, "unresolved_cast", int64(a.Stats.UnresolvedCast))
	metrics.RecordRow(cfg.Job, "empty_soup", int64(a.Stats.EmptySoup))
	finish(cfg, "assemble", started, nil, len(a.Catalog))
	return a
}

// resolve maps ids to names in order, skipping unresolved ones. limit > 0
// caps the result length.
func resolve(ids []string, names Names, limit int) (out []string, missing int) {
	for _, id := range ids {
		if limit > 0 && len(out) == limit {
			break
		}
		n, ok := names.Lookup(id)
		if !ok {
			missing++
			continue
		}
		out = append(out, n)
	}
	return out, missing
}

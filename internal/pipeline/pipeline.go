// Package pipeline runs one catalog build end to end: it checks the inputs,
// drives the join stages in order, writes both tables atomically, writes the
// run manifest and optionally exports the tables to a database.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"moviecatalog/internal/config"
	"moviecatalog/internal/datasource"
	"moviecatalog/internal/datasource/file"
	"moviecatalog/internal/model"
	"moviecatalog/internal/output"
	"moviecatalog/internal/parser/tsv"
	"moviecatalog/internal/stage"
	"moviecatalog/internal/storage"
)

const totalSteps = 6

// Result describes a finished run.
type Result struct {
	Manifest *output.Manifest
	Catalog  output.FileEntry
	Features output.FileEntry

	// Export is set when a database export ran.
	Export *storage.ExportResult
}

// newSource opens an input path; tests replace it.
var newSource = func(path string) datasource.Source { return file.NewLocal(path) }

// StageConfig projects the pipeline config onto the stage configuration.
func StageConfig(p config.Pipeline, verbose bool) stage.Config {
	return stage.Config{
		Job: p.Job,
		Filter: stage.Filter{
			MinYear:    p.Filter.MinYear,
			MinVotes:   p.Filter.MinVotes,
			RuntimeMin: p.Filter.RuntimeMin,
			RuntimeMax: p.Filter.RuntimeMax,
			CastTopN:   p.Filter.CastTopN,
		},
		Batches: stage.BatchSizes{
			Titles:     p.Runtime.BatchSizes.Titles,
			Ratings:    p.Runtime.BatchSizes.Ratings,
			Crew:       p.Runtime.BatchSizes.Crew,
			Principals: p.Runtime.BatchSizes.Principals,
			Names:      p.Runtime.BatchSizes.Names,
		},
		Workers: p.Runtime.Workers,
		Verbose: verbose,
	}
}

func step(i int, what string) {
	log.Printf("=== Step %d/%d: %s ===", i, totalSteps, what)
}

// Run executes the build described by p. Nothing is written unless every
// stage succeeds; the two tables are renamed into place together.
func Run(ctx context.Context, p config.Pipeline, verbose bool) (*Result, error) {
	started := time.Now()
	cfg := StageConfig(p, verbose)

	step(1, "checking inputs")
	paths := p.Sources.Paths()
	if err := file.CheckInputs(paths...); err != nil {
		return nil, err
	}
	src := stage.Sources{
		Titles:     newSource(paths[0]),
		Ratings:    newSource(paths[1]),
		Crew:       newSource(paths[2]),
		Principals: newSource(paths[3]),
		Names:      newSource(paths[4]),
	}

	step(2, "filtering titles")
	titles, err := stage.FilterTitles(ctx, src.Titles, cfg)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}

	step(3, "joining ratings")
	ratings, err := stage.JoinRatings(ctx, src.Ratings, titles, cfg)
	if err != nil {
		return nil, fmt.Errorf("ratings: %w", err)
	}

	step(4, "resolving crew and cast")
	crew, cast, err := stage.ResolveCredits(ctx, src, ratings.Keys, cfg)
	if err != nil {
		return nil, fmt.Errorf("credits: %w", err)
	}
	needed := stage.CollectNeeded(crew, cast)

	step(5, "resolving names")
	names, err := stage.ResolveNames(ctx, src.Names, needed, cfg)
	if err != nil {
		return nil, fmt.Errorf("names: %w", err)
	}

	step(6, "assembling and writing outputs")
	asm := stage.Assemble(ratings.Rated, crew, cast, names.Names, cfg)
	catalogW, featuresW, err := writeOutputs(p.Output, asm)
	if err != nil {
		return nil, err
	}

	m := &output.Manifest{
		Job:       p.Job,
		StartedAt: started.UTC(),
		Sources: map[string]output.StageCounts{
			"titles":     counts(titles.Stats),
			"ratings":    counts(ratings.Stats),
			"crew":       counts(crew.Stats),
			"principals": counts(cast.Stats),
			"names":      counts(names.Stats),
		},
		Keysets: map[string]int{
			"titles":  titles.Keys.Len(),
			"ratings": ratings.Keys.Len(),
			"crew":    len(crew.Directors),
			"cast":    len(cast.Cast),
			"catalog": len(asm.Catalog),
		},
		Needed:    names.Needed,
		Resolved:  names.Names.Len(),
		EmptySoup: asm.Stats.EmptySoup,
		Outputs:   []output.FileEntry{catalogW, featuresW},
	}
	m.FinishedAt = time.Now().UTC()
	// Both tables are already in place; a missing manifest does not undo them.
	if path := p.Output.ManifestPath(); path != "" {
		if err := output.WriteManifest(path, m); err != nil {
			log.Printf("WARNING: manifest not written: %v", err)
		}
	}

	res := &Result{Manifest: m, Catalog: catalogW, Features: featuresW}
	logSummary(map[string]tsv.Stats{
		"titles":     titles.Stats,
		"ratings":    ratings.Stats,
		"crew":       crew.Stats,
		"principals": cast.Stats,
		"names":      names.Stats,
	}, asm)

	if p.Storage.Kind != "" {
		er, err := storage.Export(ctx, storage.ExportConfig{
			Kind:          p.Storage.Kind,
			DSN:           p.Storage.DB.DSN,
			CatalogTable:  p.Storage.DB.CatalogTable,
			FeaturesTable: p.Storage.DB.FeaturesTable,
			AutoCreate:    p.Storage.DB.AutoCreateTable,
			BatchSize:     p.Storage.DB.BatchSize,
		}, asm.Catalog, asm.Features)
		if err != nil {
			return res, fmt.Errorf("export %s: %w", p.Storage.Kind, err)
		}
		res.Export = &er
	}

	log.Printf("pipeline: done rows=%s elapsed=%s",
		humanize.Comma(int64(len(asm.Catalog))), time.Since(started).Round(time.Millisecond))
	return res, nil
}

// writeOutputs writes both tables to temp files, checks their budgets and
// commits them together. A failure at any point leaves the previous tables
// untouched.
func writeOutputs(o config.Output, asm *stage.Assembly) (catalog, features output.FileEntry, err error) {
	budget := output.Budget{Limit: o.BudgetBytes(), Policy: o.SizePolicy}

	cw, err := output.WriteTemp(o.CatalogPath(), model.CatalogHeader, asm.Catalog)
	if err != nil {
		return catalog, features, err
	}
	defer cw.Discard()
	fw, err := output.WriteTemp(o.FeaturesPath(), model.FeatureHeader, asm.Features)
	if err != nil {
		return catalog, features, err
	}
	defer fw.Discard()

	catalogOver, cerr := budget.Check(cw)
	featuresOver, ferr := budget.Check(fw)
	if err := errors.Join(cerr, ferr); err != nil {
		return catalog, features, err
	}

	if err := output.CommitAll(cw, fw); err != nil {
		return catalog, features, err
	}
	for _, w := range []*output.Written{cw, fw} {
		log.Printf("output: wrote %s rows=%s size=%s", w.Path, humanize.Comma(int64(w.Rows)), humanize.Bytes(uint64(w.Bytes)))
	}
	return output.Entry(cw, budget, catalogOver), output.Entry(fw, budget, featuresOver), nil
}

func counts(s tsv.Stats) output.StageCounts {
	return output.StageCounts{Scanned: s.Scanned, Kept: s.Kept, Malformed: s.Malformed, Batches: s.Batches}
}

var summaryOrder = []string{"titles", "ratings", "crew", "principals", "names"}

func logSummary(stats map[string]tsv.Stats, asm *stage.Assembly) {
	for _, name := range summaryOrder {
		s := stats[name]
		log.Printf("summary: %s scanned=%s kept=%s malformed=%s batches=%d",
			name, humanize.Comma(s.Scanned), humanize.Comma(s.Kept), humanize.Comma(s.Malformed), s.Batches)
		if s.Malformed > 0 {
			log.Printf("%s malformed rows: %d (showing first %d)", name, s.Malformed, len(s.Samples))
			for i, sample := range s.Samples {
				log.Printf("  #%03d: %s", i+1, sample)
			}
		}
	}
	log.Printf("summary: catalog=%s unresolved_directors=%d unresolved_cast=%d empty_soup=%d",
		humanize.Comma(int64(len(asm.Catalog))),
		asm.Stats.UnresolvedDirectors, asm.Stats.UnresolvedCast, asm.Stats.EmptySoup)
}

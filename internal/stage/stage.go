// Package stage implements the catalog's join stages.
//
// Stages run in a fixed order and each one narrows the key set it receives:
//
//	FilterTitles → JoinRatings → {ResolveCrew, ResolveCast} → CollectNeeded
//	  → ResolveNames → Assemble
//
// Every key set handed from one stage to the next is a frozen keyset.Set and
// is never mutated afterwards.
package stage

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"moviecatalog/internal/datasource"
	"moviecatalog/internal/metrics"
	"moviecatalog/internal/parser/tsv"
)

// Filter holds the title and rating thresholds.
type Filter struct {
	MinYear    int
	MinVotes   int
	RuntimeMin int
	RuntimeMax int
	CastTopN   int
}

// BatchSizes are per-source scanner batch sizes.
type BatchSizes struct {
	Titles     int
	Ratings    int
	Crew       int
	Principals int
	Names      int
}

// Config is the per-run configuration shared by every stage.
type Config struct {
	Job     string
	Filter  Filter
	Batches BatchSizes
	Workers int
	Verbose bool
}

// Sources bundles the five inputs.
type Sources struct {
	Titles     datasource.Source
	Ratings    datasource.Source
	Crew       datasource.Source
	Principals datasource.Source
	Names      datasource.Source
}

func newScanner[T any](src datasource.Source, cfg Config, name string, batch int, cols []string, dec tsv.DecodeFunc[T], keep func(T) bool) *tsv.Scanner[T] {
	return tsv.New(src, tsv.Options{
		Name:      name,
		Job:       cfg.Job,
		BatchSize: batch,
		Workers:   cfg.Workers,
		Columns:   cols,
		Verbose:   cfg.Verbose,
	}, dec, keep)
}

// finish records the stage outcome and the size of the key set it produced.
func finish(cfg Config, name string, started time.Time, err error, keys int) {
	metrics.RecordStep(cfg.Job, name, err, time.Since(started))
	if err != nil {
		return
	}
	metrics.RecordKeyset(cfg.Job, name, keys)
	log.Printf("%s: keys=%s elapsed=%s", name, humanize.Comma(int64(keys)), time.Since(started).Round(time.Millisecond))
}

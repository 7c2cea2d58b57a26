// Command probe samples the head of each input dump named by a catalog config
// and reports its columns, inferred types and absent-value density. It exits
// non-zero when a dump lacks a column the catalog build reads.
//
//	probe -config configs/catalog.json -rows 5000
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"moviecatalog/internal/config"
	"moviecatalog/internal/datasource/file"
	"moviecatalog/internal/probe"
	"moviecatalog/internal/stage"
)

// requiredColumns lists, in stage order, the columns each dump must carry.
var requiredColumns = [][]string{
	stage.TitleColumns,
	stage.RatingColumns,
	stage.CrewColumns,
	stage.PrincipalColumns,
	stage.NameColumns,
}

var sourceNames = []string{"titles", "ratings", "crew", "principals", "names"}

func probeAll(ctx context.Context, p config.Pipeline, rows int) ([]*probe.Report, error) {
	paths := p.Sources.Paths()
	if err := file.CheckInputs(paths...); err != nil {
		return nil, err
	}
	reports := make([]*probe.Report, 0, len(paths))
	for i, path := range paths {
		r, err := probe.Probe(ctx, sourceNames[i], file.NewLocal(path), probe.Options{
			MaxRows:  rows,
			Required: requiredColumns[i],
		})
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func render(w io.Writer, reports []*probe.Report, asJSON bool) error {
	if asJSON {
		return probe.RenderJSON(w, reports)
	}
	for _, r := range reports {
		if err := r.Render(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

func main() {
	var (
		flagConfig = flag.String("config", "", "catalog config JSON path (defaults apply when empty)")
		flagRows   = flag.Int("rows", probe.DefaultMaxRows, "data lines to sample per dump")
		flagJSON   = flag.Bool("json", false, "emit JSON instead of text tables")
	)
	flag.Parse()

	p, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	reports, err := probeAll(ctx, p, *flagRows)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := render(os.Stdout, reports, *flagJSON); err != nil {
		log.Fatalf("render: %v", err)
	}
	for _, r := range reports {
		if !r.OK() {
			os.Exit(1)
		}
	}
}

package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

// Valuer renders one row for a database load.
type Valuer interface {
	Values() []any
}

// ExportConfig configures Export.
type ExportConfig struct {
	Kind          string
	DSN           string
	CatalogTable  string
	FeaturesTable string
	AutoCreate    bool
	BatchSize     int
}

// ExportResult reports rows loaded per table.
type ExportResult struct {
	Catalog  int64
	Features int64
}

const defaultExportBatch = 10_000

// newRepositoryFn is a test seam over New.
var newRepositoryFn = New

// Export replaces the contents of the catalog and features tables with the
// given rows. Tables are created first when AutoCreate is set.
func Export[C, F Valuer](ctx context.Context, cfg ExportConfig, catalog []C, features []F) (ExportResult, error) {
	var res ExportResult

	d, err := DialectFor(cfg.Kind)
	if err != nil {
		return res, err
	}
	repo, err := newRepositoryFn(ctx, Config{Kind: cfg.Kind, DSN: cfg.DSN})
	if err != nil {
		return res, fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultExportBatch
	}

	res.Catalog, err = replaceTable(ctx, repo, d, CatalogTable(cfg.CatalogTable), catalog, batch, cfg.AutoCreate)
	if err != nil {
		return res, err
	}
	res.Features, err = replaceTable(ctx, repo, d, FeaturesTable(cfg.FeaturesTable), features, batch, cfg.AutoCreate)
	if err != nil {
		return res, err
	}
	return res, nil
}

func replaceTable[R Valuer](ctx context.Context, repo Repository, d Dialect, td TableDef, rows []R, batch int, create bool) (int64, error) {
	if create {
		stmt, err := d.CreateTable(td)
		if err != nil {
			return 0, fmt.Errorf("ddl %s: %w", td.Name, err)
		}
		if err := repo.Exec(ctx, stmt); err != nil {
			return 0, fmt.Errorf("create %s: %w", td.Name, err)
		}
		log.Printf("export: table ensured: %s", td.Name)
	}
	if err := repo.Exec(ctx, d.ClearTable(td.Name)); err != nil {
		return 0, fmt.Errorf("clear %s: %w", td.Name, err)
	}

	in := make(chan []any, batch)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(in)
		for _, r := range rows {
			select {
			case in <- r.Values():
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var n int64
	g.Go(func() error {
		var err error
		n, err = LoadBatches(gctx, td.ColumnNames(), in, batch, func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
			return repo.CopyFrom(ctx, td.Name, cols, rows)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return n, fmt.Errorf("load %s: %w", td.Name, err)
	}
	log.Printf("export: %s rows=%s", td.Name, humanize.Comma(n))
	return n, nil
}

// Package config defines the JSON-serializable configuration of a catalog
// build.
//
// A run is described by one Pipeline. Default carries the standard filter
// thresholds and batch sizes, a JSON file overlays it, and a few environment
// variables override deployment-specific values (12-factor style).
//
// Example (trimmed):
//
//	{
//	  "job": "catalog",
//	  "sources": { "dir": "data/data_raw" },
//	  "filter":  { "min_year": 1980, "min_votes": 1000 },
//	  "output":  { "dir": "data/data_processed", "size_policy": "fail" },
//	  "storage": { "kind": "postgres", "db": { "dsn": "postgresql://..." } }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Pipeline is the top-level object decoded from a config file.
type Pipeline struct {
	// Job labels metrics and the run manifest.
	Job string `json:"job"`

	Sources Sources       `json:"sources"`
	Filter  Filter        `json:"filter"`
	Runtime RuntimeConfig `json:"runtime"`
	Output  Output        `json:"output"`

	// Storage optionally exports the tables to a database. An empty kind
	// disables the export.
	Storage Storage `json:"storage"`
	Metrics Metrics `json:"metrics"`
}

// Sources names the five input dumps. Relative paths are resolved against
// Dir.
type Sources struct {
	Dir        string `json:"dir"`
	Titles     string `json:"titles"`
	Ratings    string `json:"ratings"`
	Crew       string `json:"crew"`
	Principals string `json:"principals"`
	Names      string `json:"names"`
}

// Filter holds the title and rating thresholds.
type Filter struct {
	MinYear    int `json:"min_year"`
	MinVotes   int `json:"min_votes"`
	RuntimeMin int `json:"runtime_min"`
	RuntimeMax int `json:"runtime_max"`
	CastTopN   int `json:"cast_top_n"`
}

// RuntimeConfig controls concurrency and batching.
type RuntimeConfig struct {
	// Workers is the number of batches decoded concurrently per scan. A scan
	// holds up to Workers × batch size raw lines at once, and the crew and
	// principals scans run side by side, so raising Workers should come with
	// smaller batches. The defaults keep about 2M lines in flight per scan.
	Workers    int        `json:"workers"`
	BatchSizes BatchSizes `json:"batch_sizes"`
}

// BatchSizes are per-source scanner batch sizes, in rows.
type BatchSizes struct {
	Titles     int `json:"titles"`
	Ratings    int `json:"ratings"`
	Crew       int `json:"crew"`
	Principals int `json:"principals"`
	Names      int `json:"names"`
}

// Output configures the written tables.
type Output struct {
	Dir      string `json:"dir"`
	Catalog  string `json:"catalog"`
	Features string `json:"features"`
	Manifest string `json:"manifest"`

	// SizeBudgetMB is the per-table ceiling on compressed size; 0 disables it.
	SizeBudgetMB int `json:"size_budget_mb"`

	// SizePolicy is "warn" or "fail".
	SizePolicy string `json:"size_policy"`
}

// Storage selects the optional database export.
type Storage struct {
	// Kind is one of postgres, sqlite, mssql, mysql, or empty.
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

// DBConfig configures the database export.
type DBConfig struct {
	DSN           string `json:"dsn"`
	CatalogTable  string `json:"catalog_table"`
	FeaturesTable string `json:"features_table"`

	// AutoCreateTable issues CREATE TABLE IF NOT EXISTS before loading.
	AutoCreateTable bool `json:"auto_create_table"`

	// BatchSize is the number of rows per CopyFrom call.
	BatchSize int `json:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is one of pushgateway, datadog, none.
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	DatadogAddr    string `json:"datadog_addr"`
}

// Default returns the standard configuration.
func Default() Pipeline {
	return Pipeline{
		Job: "catalog",
		Sources: Sources{
			Dir:        filepath.Join("data", "data_raw"),
			Titles:     "title.basics.tsv.gz",
			Ratings:    "title.ratings.tsv.gz",
			Crew:       "title.crew.tsv.gz",
			Principals: "title.principals.tsv.gz",
			Names:      "name.basics.tsv.gz",
		},
		Filter: Filter{
			MinYear:    1980,
			MinVotes:   1000,
			RuntimeMin: 60,
			RuntimeMax: 240,
			CastTopN:   5,
		},
		Runtime: RuntimeConfig{
			Workers: 4,
			BatchSizes: BatchSizes{
				Titles:     125_000,
				Ratings:    250_000,
				Crew:       250_000,
				Principals: 500_000,
				Names:      250_000,
			},
		},
		Output: Output{
			Dir:          filepath.Join("data", "data_processed"),
			Catalog:      "movies_local.csv.gz",
			Features:     "movies_features.csv.gz",
			Manifest:     "manifest.json",
			SizeBudgetMB: 100,
			SizePolicy:   "warn",
		},
		Storage: Storage{
			DB: DBConfig{
				CatalogTable:  "movies_local",
				FeaturesTable: "movies_features",
				BatchSize:     10_000,
			},
		},
		Metrics: Metrics{Backend: "none"},
	}
}

// Load reads a JSON config file over Default and applies environment
// overrides. Unknown fields are rejected. An empty path yields the defaults
// plus environment.
func Load(path string) (Pipeline, error) {
	p := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("read config: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	ApplyEnv(&p, os.Getenv)
	return p, nil
}

// ApplyEnv overrides p from the environment:
//
//	CATALOG_WORKERS   runtime.workers
//	CATALOG_DSN       storage.db.dsn
//	METRICS_BACKEND   metrics.backend
//	PUSHGATEWAY_URL   metrics.pushgateway_url
//	DD_AGENT_ADDR     metrics.datadog_addr
//
// Invalid numbers are ignored.
func ApplyEnv(p *Pipeline, getenv func(string) string) {
	if s := getenv("CATALOG_WORKERS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Runtime.Workers = n
		}
	}
	if s := getenv("CATALOG_DSN"); s != "" {
		p.Storage.DB.DSN = s
	}
	if s := getenv("METRICS_BACKEND"); s != "" {
		p.Metrics.Backend = s
	}
	if s := getenv("PUSHGATEWAY_URL"); s != "" {
		p.Metrics.PushgatewayURL = s
	}
	if s := getenv("DD_AGENT_ADDR"); s != "" {
		p.Metrics.DatadogAddr = s
	}
}

func resolve(dir, name string) string {
	if name == "" || filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// Paths returns the five input paths in stage order: titles, ratings, crew,
// principals, names.
func (s Sources) Paths() []string {
	return []string{
		resolve(s.Dir, s.Titles),
		resolve(s.Dir, s.Ratings),
		resolve(s.Dir, s.Crew),
		resolve(s.Dir, s.Principals),
		resolve(s.Dir, s.Names),
	}
}

// CatalogPath is the resolved catalog table path.
func (o Output) CatalogPath() string { return resolve(o.Dir, o.Catalog) }

// FeaturesPath is the resolved features table path.
func (o Output) FeaturesPath() string { return resolve(o.Dir, o.Features) }

// ManifestPath is the resolved manifest path; empty disables the manifest.
func (o Output) ManifestPath() string { return resolve(o.Dir, o.Manifest) }

// BudgetBytes converts SizeBudgetMB to bytes.
func (o Output) BudgetBytes() int64 { return int64(o.SizeBudgetMB) << 20 }

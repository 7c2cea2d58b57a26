package config

// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "runtime.batch_sizes.names"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not
// mutate the pipeline; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and the run manifest",
		})
	}
	issues = append(issues, validateSources(p.Sources)...)
	issues = append(issues, validateFilter(p.Filter)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateOutput(p.Output)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSources(s Sources) []Issue {
	var issues []Issue
	for _, f := range []struct{ path, val string }{
		{"sources.titles", s.Titles},
		{"sources.ratings", s.Ratings},
		{"sources.crew", s.Crew},
		{"sources.principals", s.Principals},
		{"sources.names", s.Names},
	} {
		if strings.TrimSpace(f.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  "source path must not be empty",
			})
		}
	}
	return issues
}

func validateFilter(f Filter) []Issue {
	var issues []Issue

	if f.MinVotes < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "filter.min_votes",
			Message:  "min_votes must not be negative",
		})
	}
	if f.RuntimeMin < 0 || f.RuntimeMax < f.RuntimeMin {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "filter.runtime_max",
			Message:  fmt.Sprintf("runtime range [%d, %d] is empty or negative", f.RuntimeMin, f.RuntimeMax),
		})
	}
	if f.CastTopN < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "filter.cast_top_n",
			Message:  "cast_top_n must be at least 1",
		})
	}
	if f.MinYear < 1870 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "filter.min_year",
			Message:  fmt.Sprintf("min_year=%d admits every title; the year filter is effectively off", f.MinYear),
		})
	}
	return issues
}

// maxInFlightLines is the per-scan raw line count above which the runtime
// section draws a memory warning.
const maxInFlightLines = 4_000_000

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	for _, b := range []struct {
		path string
		n    int
	}{
		{"runtime.batch_sizes.titles", r.BatchSizes.Titles},
		{"runtime.batch_sizes.ratings", r.BatchSizes.Ratings},
		{"runtime.batch_sizes.crew", r.BatchSizes.Crew},
		{"runtime.batch_sizes.principals", r.BatchSizes.Principals},
		{"runtime.batch_sizes.names", r.BatchSizes.Names},
	} {
		if b.n <= 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     b.path,
				Message:  fmt.Sprintf("batch size %d; the scanner default will be used", b.n),
			})
			continue
		}
		if inFlight := max(r.Workers, 1) * b.n; inFlight > maxInFlightLines {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     b.path,
				Message: fmt.Sprintf("workers × batch size = %d lines held per scan (over %d); lower one of them if memory is tight",
					inFlight, maxInFlightLines),
			})
		}
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue

	if strings.TrimSpace(o.Catalog) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.catalog",
			Message:  "catalog output path must not be empty",
		})
	}
	if strings.TrimSpace(o.Features) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.features",
			Message:  "features output path must not be empty",
		})
	}
	if o.Catalog != "" && o.CatalogPath() == o.FeaturesPath() {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.features",
			Message:  "catalog and features must be written to different files",
		})
	}
	if o.SizeBudgetMB < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.size_budget_mb",
			Message:  "size_budget_mb must not be negative",
		})
	}
	switch o.SizePolicy {
	case "", "warn", "fail":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.size_policy",
			Message:  fmt.Sprintf("unknown size policy %q; use warn or fail", o.SizePolicy),
		})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return nil // export disabled
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	db := s.DB
	if strings.TrimSpace(db.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(db.CatalogTable) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.catalog_table",
			Message:  "storage.db.catalog_table must not be empty",
		})
	}
	if strings.TrimSpace(db.FeaturesTable) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.features_table",
			Message:  "storage.db.features_table must not be empty",
		})
	}
	if db.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; non-positive batch sizes fall back to the loader default", db.BatchSize),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none", "pushgateway", "datadog":
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", m.Backend),
		}}
	}
}

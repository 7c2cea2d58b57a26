// Package tsv implements the chunked scanner used by every catalog stage.
//
// A Scanner reads one tab-delimited, header-bearing source and yields its
// rows in batches of a fixed size. Rows are decoded and filtered by a small
// worker pool; each worker handles a whole raw batch into a private result,
// and results are yielded in source order. Memory is bounded by
// BatchSize × Workers raw lines plus the decoded rows of one window.
//
// Fields are split on '\t' with no quoting or escaping. A row whose field
// count differs from the header, or whose decoder rejects it, is dropped and
// counted as malformed; it never aborts the scan.
package tsv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"moviecatalog/internal/datasource"
	"moviecatalog/internal/metrics"
)

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 100_000

// sampleLimit caps the malformed-row messages kept for the end-of-run summary.
const sampleLimit = 3

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures a Scanner.
type Options struct {
	// Name identifies the source in logs and metric kinds ("titles", "names", ...).
	Name string

	// Job labels emitted metrics.
	Job string

	// BatchSize is the number of raw lines read per batch.
	BatchSize int

	// Workers is the number of batches decoded concurrently. Values below 1
	// mean 1.
	Workers int

	// Columns are the header names handed to the decoder, in this order.
	// Every column must appear in the header; extra source columns are ignored.
	Columns []string

	// Verbose enables a progress line per yielded batch.
	Verbose bool
}

// DecodeFunc turns the projected fields of one row into a record. A non-nil
// error marks the row as malformed. The fields slice is reused between rows
// and must not be retained.
type DecodeFunc[T any] func(fields []string) (T, error)

// Stats are the progress counters of a scan. Scanned counts data lines
// (header excluded); Scanned == Kept + Malformed + rows rejected by the
// predicate.
type Stats struct {
	Scanned   int64
	Kept      int64
	Malformed int64
	Batches   int64
	Samples   []string
}

// HeaderError reports a required column missing from a source header.
type HeaderError struct {
	Source  string
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%s: header is missing column(s) %s", e.Source, strings.Join(e.Missing, ", "))
}

// Scanner streams one source. A Scanner is meant for a single pass; Stats
// may be read concurrently with the scan.
type Scanner[T any] struct {
	src    datasource.Source
	opt    Options
	decode DecodeFunc[T]
	keep   func(T) bool

	scanned   atomic.Int64
	kept      atomic.Int64
	malformed atomic.Int64
	batches   atomic.Int64
	samples   *sampler
}

// New returns a Scanner over src. keep is the retention predicate, evaluated
// per decoded row before the row is retained; nil keeps every row.
func New[T any](src datasource.Source, opt Options, decode DecodeFunc[T], keep func(T) bool) *Scanner[T] {
	if opt.BatchSize <= 0 {
		opt.BatchSize = DefaultBatchSize
	}
	if opt.Workers < 1 {
		opt.Workers = 1
	}
	return &Scanner[T]{
		src:     src,
		opt:     opt,
		decode:  decode,
		keep:    keep,
		samples: newSampler(sampleLimit),
	}
}

// Stats returns a snapshot of the progress counters.
func (s *Scanner[T]) Stats() Stats {
	return Stats{
		Scanned:   s.scanned.Load(),
		Kept:      s.kept.Load(),
		Malformed: s.malformed.Load(),
		Batches:   s.batches.Load(),
		Samples:   s.samples.snapshot(),
	}
}

type rawBatch struct {
	firstLine int // 1-based source line of lines[0]
	lines     []string
}

type batchResult[T any] struct {
	rows      []T
	kept      int64
	malformed int64
	samples   []string
}

// Batches returns the lazy sequence of kept-row batches in source order.
//
// The source is opened when iteration starts and closed when it ends,
// including when the consumer stops early. A fatal error (open, header,
// read, cancellation) is yielded once as the final element. Batches whose
// rows were all filtered out are not yielded.
func (s *Scanner[T]) Batches(ctx context.Context) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		rc, err := s.src.Open(ctx)
		if err != nil {
			yield(nil, fmt.Errorf("%s: %w", s.opt.Name, err))
			return
		}
		defer rc.Close()

		br := bufio.NewReaderSize(rc, 1<<20)
		idx, err := s.readHeader(br)
		if err != nil {
			yield(nil, err)
			return
		}

		line := 1
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			window, eof, err := s.readWindow(br, &line)
			if err != nil {
				yield(nil, fmt.Errorf("%s: read: %w", s.opt.Name, err))
				return
			}

			results := make([]batchResult[T], len(window))
			var g errgroup.Group
			for i := range window {
				g.Go(func() error {
					results[i] = s.process(window[i], idx, len(idx.header))
					return nil
				})
			}
			_ = g.Wait()

			for i, r := range results {
				s.merge(int64(len(window[i].lines)), r)
				if len(r.rows) == 0 {
					continue
				}
				if !yield(r.rows, nil) {
					return
				}
			}
			if eof {
				s.logDone()
				return
			}
		}
	}
}

type columnIndex struct {
	header []string
	pos    []int // pos[i] is the header position of Options.Columns[i]
}

func (s *Scanner[T]) readHeader(br *bufio.Reader) (columnIndex, error) {
	raw, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return columnIndex{}, fmt.Errorf("%s: read header: %w", s.opt.Name, err)
	}
	if raw == "" {
		return columnIndex{}, fmt.Errorf("%s: empty source (no header)", s.opt.Name)
	}

	header := strings.Split(trimEOL(raw), "\t")
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	at := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := at[h]; !dup {
			at[h] = i
		}
	}

	idx := columnIndex{header: header, pos: make([]int, len(s.opt.Columns))}
	var missing []string
	for i, c := range s.opt.Columns {
		p, ok := at[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		idx.pos[i] = p
	}
	if len(missing) > 0 {
		return columnIndex{}, &HeaderError{Source: s.opt.Name, Missing: missing}
	}
	return idx, nil
}

// readWindow reads up to Workers raw batches. eof reports that the source is
// exhausted; the returned window may still hold lines.
func (s *Scanner[T]) readWindow(br *bufio.Reader, line *int) ([]rawBatch, bool, error) {
	window := make([]rawBatch, 0, s.opt.Workers)
	for len(window) < s.opt.Workers {
		rb := rawBatch{firstLine: *line + 1, lines: make([]string, 0, min(s.opt.BatchSize, 4096))}
		for len(rb.lines) < s.opt.BatchSize {
			raw, err := br.ReadString('\n')
			if raw != "" {
				*line++
				rb.lines = append(rb.lines, trimEOL(raw))
			}
			if errors.Is(err, io.EOF) {
				if len(rb.lines) > 0 {
					window = append(window, rb)
				}
				return window, true, nil
			}
			if err != nil {
				return nil, false, err
			}
		}
		window = append(window, rb)
	}
	return window, false, nil
}

func (s *Scanner[T]) process(rb rawBatch, idx columnIndex, width int) batchResult[T] {
	var r batchResult[T]
	fields := make([]string, len(idx.pos))
	for i, raw := range rb.lines {
		cols := strings.Split(raw, "\t")
		if len(cols) != width {
			r.malformed++
			if len(r.samples) < sampleLimit {
				r.samples = append(r.samples, fmt.Sprintf("line %d: expected %d fields, got %d", rb.firstLine+i, width, len(cols)))
			}
			continue
		}
		for j, p := range idx.pos {
			fields[j] = cols[p]
		}
		rec, err := s.decode(fields)
		if err != nil {
			r.malformed++
			if len(r.samples) < sampleLimit {
				r.samples = append(r.samples, fmt.Sprintf("line %d: %v", rb.firstLine+i, err))
			}
			continue
		}
		if s.keep != nil && !s.keep(rec) {
			continue
		}
		r.rows = append(r.rows, rec)
	}
	r.kept = int64(len(r.rows))
	return r
}

// merge folds one batch result into the scanner counters; it runs on the
// iterating goroutine, once per batch, in source order.
func (s *Scanner[T]) merge(scanned int64, r batchResult[T]) {
	s.scanned.Add(scanned)
	s.kept.Add(r.kept)
	s.malformed.Add(r.malformed)
	n := s.batches.Add(1)
	for _, m := range r.samples {
		s.samples.add(m)
	}

	metrics.RecordRow(s.opt.Job, s.opt.Name+"_scanned", scanned)
	metrics.RecordRow(s.opt.Job, s.opt.Name+"_kept", r.kept)
	metrics.RecordRow(s.opt.Job, s.opt.Name+"_malformed", r.malformed)
	metrics.RecordBatches(s.opt.Job, s.opt.Name, 1)

	if s.opt.Verbose {
		log.Printf("[%s] batch=%d scanned=%s kept=%s malformed=%s",
			s.opt.Name, n,
			humanize.Comma(s.scanned.Load()),
			humanize.Comma(s.kept.Load()),
			humanize.Comma(s.malformed.Load()))
	}
}

func (s *Scanner[T]) logDone() {
	st := s.Stats()
	log.Printf("[%s] done: scanned=%s kept=%s malformed=%s batches=%d",
		s.opt.Name,
		humanize.Comma(st.Scanned),
		humanize.Comma(st.Kept),
		humanize.Comma(st.Malformed),
		st.Batches)
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

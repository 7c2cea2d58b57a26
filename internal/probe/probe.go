// Package probe samples the head of a dump and reports its shape: the header,
// required columns that are missing, an inferred type per column and how
// often each column holds the absent marker. It reads at most MaxRows data
// lines, so probing a multi-gigabyte dump is cheap.
package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"moviecatalog/internal/datasource"
)

const (
	// DefaultMaxRows is the sample size used when Options.MaxRows is zero.
	DefaultMaxRows = 1000
	sampleValues   = 3
	absentMarker   = `\N`
)

// Inferred column types.
const (
	TypeInteger = "integer"
	TypeReal    = "real"
	TypeBoolean = "boolean"
	TypeList    = "list"
	TypeText    = "text"
	TypeEmpty   = "empty"
)

// Options control sampling.
type Options struct {
	MaxRows  int
	Required []string
}

// Column describes one sampled column.
type Column struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Absent  int      `json:"absent"`
	Samples []string `json:"samples,omitempty"`
}

// Report is the result of probing one source.
type Report struct {
	Source  string   `json:"source"`
	Header  []string `json:"header"`
	Missing []string `json:"missing,omitempty"`
	Columns []Column `json:"columns"`
	Rows    int      `json:"rows"`
	// Ragged counts sampled lines whose field count differs from the header.
	Ragged int `json:"ragged"`
}

// OK reports whether every required column is present.
func (r *Report) OK() bool { return len(r.Missing) == 0 }

// Probe reads the header and up to opt.MaxRows lines of src.
func Probe(ctx context.Context, name string, src datasource.Source, opt Options) (*Report, error) {
	limit := opt.MaxRows
	if limit <= 0 {
		limit = DefaultMaxRows
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", name, err)
	}
	defer rc.Close()

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("probe %s: read header: %w", name, err)
		}
		return nil, fmt.Errorf("probe %s: %w", name, io.ErrUnexpectedEOF)
	}
	header := strings.Split(strings.TrimPrefix(strings.TrimRight(sc.Text(), "\r"), "\uFEFF"), "\t")

	r := &Report{Source: name, Header: header}
	for _, c := range opt.Required {
		if !slices.Contains(header, c) {
			r.Missing = append(r.Missing, c)
		}
	}

	cols := make([][]string, len(header))
	for r.Rows < limit && sc.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		r.Rows++
		if len(fields) != len(header) {
			r.Ragged++
			continue
		}
		for i, f := range fields {
			cols[i] = append(cols[i], f)
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return nil, fmt.Errorf("probe %s: read: %w", name, err)
	}

	r.Columns = make([]Column, len(header))
	for i, h := range header {
		r.Columns[i] = describe(h, cols[i])
	}
	return r, nil
}

func describe(name string, values []string) Column {
	c := Column{Name: name}
	present := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || v == absentMarker {
			c.Absent++
			continue
		}
		present = append(present, v)
		if len(c.Samples) < sampleValues && !slices.Contains(c.Samples, v) {
			c.Samples = append(c.Samples, v)
		}
	}
	c.Type = inferType(present)
	return c
}

// inferType picks the narrowest type every present value satisfies.
func inferType(values []string) string {
	switch {
	case len(values) == 0:
		return TypeEmpty
	case allMatch(values, isInt):
		return TypeInteger
	case allMatch(values, isFloat):
		return TypeReal
	case allMatch(values, isBool):
		return TypeBoolean
	case allMatch(values, isList):
		return TypeList
	default:
		return TypeText
	}
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat rejects integers so integer columns stay integer.
func isFloat(s string) bool {
	if isInt(s) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

// isList matches comma-separated tokens without spaces, e.g. "Drama,Romance"
// or "nm0000001,nm0000002".
func isList(s string) bool {
	return strings.Contains(s, ",") && !strings.ContainsAny(s, " \t")
}

// Package output writes the catalog and features tables.
//
// Tables are written as gzip-compressed CSV to a temporary file next to the
// destination and renamed into place only by Commit, so a failed run never
// leaves a partial table behind and an earlier table is replaced atomically.
package output

import (
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/xxh3"
)

// Row is anything that renders as one CSV record.
type Row interface {
	Row() []string
}

// Written describes a table in its temporary location.
type Written struct {
	Path   string // final destination
	Rows   int
	Bytes  int64  // compressed size
	Digest string // xxh3-128 of the compressed bytes, hex
	tmp    string
}

// countingWriter counts bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTemp writes header and rows as a gzip CSV into a temporary file in the
// directory of path. The caller must Commit or Discard the result.
func WriteTemp[R Row](path string, header []string, rows []R) (_ *Written, err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("output: mkdir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("output: create temp for %s: %w", path, err)
	}
	w := &Written{Path: path, tmp: f.Name()}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(w.tmp)
		}
	}()

	h := xxh3.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	zw, err := gzip.NewWriterLevel(cw, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("output: gzip writer: %w", err)
	}
	csvw := csv.NewWriter(zw)

	if err := csvw.Write(header); err != nil {
		return nil, fmt.Errorf("output: write header %s: %w", path, err)
	}
	for _, r := range rows {
		if err := csvw.Write(r.Row()); err != nil {
			return nil, fmt.Errorf("output: write row %s: %w", path, err)
		}
	}
	csvw.Flush()
	if err := csvw.Error(); err != nil {
		return nil, fmt.Errorf("output: flush %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("output: gzip close %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("output: close %s: %w", path, err)
	}

	sum := h.Sum128().Bytes()
	w.Rows = len(rows)
	w.Bytes = cw.n
	w.Digest = hex.EncodeToString(sum[:])
	return w, nil
}

// Commit renames the temporary file onto the destination path.
func (w *Written) Commit() error {
	if err := os.Rename(w.tmp, w.Path); err != nil {
		return fmt.Errorf("output: commit %s: %w", w.Path, err)
	}
	w.tmp = ""
	return nil
}

// Discard removes the temporary file. It is a no-op after Commit.
func (w *Written) Discard() {
	if w == nil || w.tmp == "" {
		return
	}
	_ = os.Remove(w.tmp)
	w.tmp = ""
}

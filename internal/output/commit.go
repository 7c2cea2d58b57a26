package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// CommitAll renames every temporary file onto its destination as one unit.
// Existing destinations are moved aside first; if any step fails, tables
// already committed are removed and the previous files are restored, so the
// destinations end up either all new or all as they were. A destination that
// is a directory fails the whole set before anything is touched.
func CommitAll(ws ...*Written) (err error) {
	for _, w := range ws {
		fi, err := os.Lstat(w.Path)
		if err == nil && fi.IsDir() {
			return fmt.Errorf("output: commit %s: destination is a directory", w.Path)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("output: commit %s: %w", w.Path, err)
		}
	}

	backups := make([]string, len(ws))
	committed := make([]bool, len(ws))
	defer func() {
		if err == nil {
			return
		}
		for i, w := range ws {
			if committed[i] {
				_ = os.Remove(w.Path)
			}
			if backups[i] != "" {
				_ = os.Rename(backups[i], w.Path)
			}
		}
	}()

	for i, w := range ws {
		bak := w.tmp + ".prev"
		switch err := os.Rename(w.Path, bak); {
		case err == nil:
			backups[i] = bak
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("output: move aside %s: %w", w.Path, err)
		}
	}
	for i, w := range ws {
		if err := w.Commit(); err != nil {
			return err
		}
		committed[i] = true
	}
	for _, bak := range backups {
		if bak != "" {
			_ = os.Remove(bak)
		}
	}
	return nil
}

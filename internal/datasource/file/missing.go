package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// MissingInputError lists every required input that could not be found or
// read. It is returned once, before any stage starts.
type MissingInputError struct {
	Paths []string
}

func (e *MissingInputError) Error() string {
	return "missing required input file(s):\n- " + strings.Join(e.Paths, "\n- ")
}

// CheckInputs stats every path and reports all failures together instead of
// stopping at the first one. Directories count as missing.
func CheckInputs(paths ...string) error {
	var missing []string
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			missing = append(missing, "<empty path>")
			continue
		}
		fi, err := os.Stat(p)
		switch {
		case err == nil && fi.IsDir():
			missing = append(missing, p+" (is a directory)")
		case errors.Is(err, fs.ErrNotExist):
			missing = append(missing, p)
		case err != nil:
			missing = append(missing, fmt.Sprintf("%s (%v)", p, err))
		}
	}
	if len(missing) > 0 {
		return &MissingInputError{Paths: missing}
	}
	return nil
}

package file

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckInputs_AllPresent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.tsv.gz", "b.tsv.gz"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		paths = append(paths, p)
	}
	if err := CheckInputs(paths...); err != nil {
		t.Fatalf("CheckInputs() = %v, want nil", err)
	}
}

// TestCheckInputs_ListsEveryMissingPath verifies the fail-together contract:
// all missing inputs are reported in one error.
func TestCheckInputs_ListsEveryMissingPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "present.tsv.gz")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	missA := filepath.Join(dir, "title.ratings.tsv.gz")
	missB := filepath.Join(dir, "name.basics.tsv.gz")

	err := CheckInputs(missA, present, missB, dir)

	var mie *MissingInputError
	if !errors.As(err, &mie) {
		t.Fatalf("CheckInputs() error = %v, want *MissingInputError", err)
	}
	if len(mie.Paths) != 3 {
		t.Fatalf("Paths = %v, want 3 entries", mie.Paths)
	}
	msg := err.Error()
	for _, want := range []string{missA, missB, "is a directory"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
	if strings.Contains(msg, present) {
		t.Errorf("error %q should not mention present file", msg)
	}
}

func TestCheckInputs_EmptyPath(t *testing.T) {
	t.Parallel()

	var mie *MissingInputError
	if err := CheckInputs(""); !errors.As(err, &mie) {
		t.Fatalf("expected MissingInputError for empty path, got %v", err)
	}
}

package mysql

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"moviecatalog/internal/storage"
)

func TestDialect_CreateTable(t *testing.T) {
	t.Parallel()

	got, err := Dialect{}.CreateTable(storage.FeaturesTable("movies_features"))
	if err != nil {
		t.Fatalf("CreateTable error = %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS `movies_features` (\n" +
		"  `tconst` VARCHAR(32) NOT NULL,\n" +
		"  `soup` TEXT,\n" +
		"  PRIMARY KEY (`tconst`)\n" +
		")"
	if got != want {
		t.Fatalf("CreateTable =\n%s\nwant\n%s", got, want)
	}
	if c := (Dialect{}).ClearTable("db.movies_features"); c != "DELETE FROM `db`.`movies_features`" {
		t.Errorf("ClearTable = %q", c)
	}
}

func TestInsertStmt(t *testing.T) {
	t.Parallel()

	stmt, args, err := insertStmt("movies_features", []string{"tconst", "soup"}, [][]any{
		{"tt1", "drama"},
		{"tt2", "comedy"},
	})
	if err != nil {
		t.Fatalf("insertStmt error = %v", err)
	}
	wantStmt := "INSERT INTO `movies_features` (`tconst`, `soup`) VALUES (?, ?), (?, ?)"
	if stmt != wantStmt {
		t.Errorf("stmt = %q, want %q", stmt, wantStmt)
	}
	if diff := cmp.Diff([]any{"tt1", "drama", "tt2", "comedy"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertStmt_RowWidth(t *testing.T) {
	t.Parallel()

	_, _, err := insertStmt("t", []string{"a", "b"}, [][]any{{"x"}})
	if err == nil || !strings.Contains(err.Error(), "row 0") {
		t.Fatalf("err = %v, want row width error", err)
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(context.Background(), "not a dsn"); err == nil {
		t.Fatalf("want DSN parse error")
	}
}

package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCatalogEntry_Row(t *testing.T) {
	t.Parallel()

	e := CatalogEntry{
		Key: "tt1", Title: "Heat", Year: 1995, Runtime: 170, Genres: "Action,Crime",
		Score: 8.3, Votes: 700000, Directors: "Michael Mann", Cast: "Al Pacino|Robert De Niro",
	}
	want := []string{"tt1", "Heat", "1995", "170", "Action,Crime", "8.3", "700000", "Michael Mann", "Al Pacino|Robert De Niro"}
	if diff := cmp.Diff(want, e.Row()); diff != "" {
		t.Fatalf("Row mismatch (-want +got):\n%s", diff)
	}
	if len(e.Values()) != len(CatalogHeader) {
		t.Fatalf("Values width = %d, want %d", len(e.Values()), len(CatalogHeader))
	}
}

func TestFormatScore(t *testing.T) {
	t.Parallel()

	tests := map[float32]string{7.3: "7.3", 10: "10", 6.05: "6.05", 0: "0"}
	for in, want := range tests {
		if got := FormatScore(in); got != want {
			t.Errorf("FormatScore(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRoleKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   RoleKind
		isCast bool
	}{
		{"actor", RoleActor, true},
		{"actress", RoleActress, true},
		{"director", RoleOther, false},
		{"self", RoleOther, false},
		{"", RoleOther, false},
	}
	for _, tc := range tests {
		got := ParseRoleKind(tc.in)
		if got != tc.want || got.IsCast() != tc.isCast {
			t.Errorf("ParseRoleKind(%q) = %v (cast=%v), want %v (cast=%v)", tc.in, got, got.IsCast(), tc.want, tc.isCast)
		}
	}
}

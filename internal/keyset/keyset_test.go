package keyset

import (
	"fmt"
	"sync"
	"testing"
)

func TestBuilder_AddReportsFirstOccurrence(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	if !b.Add("tt0000001") {
		t.Fatalf("first Add should report new key")
	}
	if b.Add("tt0000001") {
		t.Fatalf("second Add of same key should report duplicate")
	}
	if !b.Add("custom-key") {
		t.Fatalf("non-id key should be accepted")
	}
	if b.Add("custom-key") {
		t.Fatalf("duplicate non-id key should be rejected")
	}
	if got := b.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestSet_Has(t *testing.T) {
	t.Parallel()

	s := Of("tt0000001", "tt10872600", "nm0000001", "weird")

	for _, k := range []string{"tt0000001", "tt10872600", "nm0000001", "weird"} {
		if !s.Has(k) {
			t.Errorf("Has(%q) = false, want true", k)
		}
	}
	for _, k := range []string{"tt0000002", "nm10872600", "tt001", "", "WEIRD"} {
		if s.Has(k) {
			t.Errorf("Has(%q) = true, want false", k)
		}
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
}

func TestSet_ZeroValueIsEmpty(t *testing.T) {
	t.Parallel()

	var s Set
	if s.Has("tt0000001") || s.Len() != 0 {
		t.Fatalf("zero Set should be empty")
	}
	if !s.SubsetOf(Of("tt0000001")) {
		t.Fatalf("empty set is a subset of everything")
	}
}

func TestSet_SubsetOf(t *testing.T) {
	t.Parallel()

	big := Of("tt0000001", "tt0000002", "tt0000003", "x")
	tests := []struct {
		name string
		s    Set
		want bool
	}{
		{name: "proper subset", s: Of("tt0000001", "x"), want: true},
		{name: "equal", s: big, want: true},
		{name: "extra id", s: Of("tt0000001", "tt0000009"), want: false},
		{name: "other namespace", s: Of("nm0000001"), want: false},
		{name: "extra fallback key", s: Of("y"), want: false},
	}
	for _, tt := range tests {
		if got := tt.s.SubsetOf(big); got != tt.want {
			t.Errorf("%s: SubsetOf = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBuilder_FreezeDetaches(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.Add("tt0000001")
	s := b.Freeze()

	b.Add("tt0000002")
	if s.Has("tt0000002") {
		t.Fatalf("frozen set must not observe later builder writes")
	}
	if b.Len() != 1 {
		t.Fatalf("builder should restart after Freeze, Len() = %d", b.Len())
	}
}

func TestBuilder_Merge(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.Add("nm0000001")
	b.Merge(Of("nm0000001", "nm0000002", "odd"))
	if b.Len() != 3 {
		t.Fatalf("Len() after merge = %d, want 3", b.Len())
	}
	u := b.Freeze()
	for _, k := range []string{"nm0000001", "nm0000002", "odd"} {
		if !u.Has(k) {
			t.Fatalf("merged set missing %q", k)
		}
	}
}

// TestSet_ConcurrentReaders exercises the read-only contract handed to
// batch workers.
func TestSet_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	for i := 0; i < 1000; i++ {
		b.Add(fmt.Sprintf("tt%07d", i))
	}
	s := b.Freeze()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if !s.Has(fmt.Sprintf("tt%07d", i)) {
					t.Errorf("missing tt%07d", i)
					return
				}
			}
		}()
	}
	wg.Wait()
}

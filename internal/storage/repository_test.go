package storage

import (
	"context"
	"slices"
	"sync"
	"testing"
)

// fakeRepo records every call so Export tests can assert on order.
type fakeRepo struct {
	mu     sync.Mutex
	execs  []string
	copies map[string][][]any
	closed bool
	failOn string
}

func (f *fakeRepo) CopyFrom(_ context.Context, table string, _ []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copies == nil {
		f.copies = map[string][][]any{}
	}
	f.copies[table] = append(f.copies[table], rows...)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sql string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.failOn != "" && sql == f.failOn {
		return errExecFailed
	}
	return nil
}

func (f *fakeRepo) Close() { f.closed = true }

func TestRegisterAndNew_Success(t *testing.T) {
	t.Parallel()

	kind := "fake-success"
	var gotDSN string
	Register(kind, func(_ context.Context, cfg Config) (Repository, error) {
		gotDSN = cfg.DSN
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: kind, DSN: "mem://x"})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}
	if gotDSN != "mem://x" {
		t.Fatalf("factory saw DSN %q", gotDSN)
	}
	if kinds := ListKinds(); !slices.Contains(kinds, kind) {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, kinds)
	}
}

func TestNew_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

func TestRegister_Override(t *testing.T) {
	t.Parallel()

	kind := "fake-override"
	var first, second int
	Register(kind, func(context.Context, Config) (Repository, error) {
		first++
		return &fakeRepo{}, nil
	})
	Register(kind, func(context.Context, Config) (Repository, error) {
		second++
		return &fakeRepo{}, nil
	})

	if _, err := New(context.Background(), Config{Kind: kind}); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if first != 0 || second != 1 {
		t.Fatalf("calls first=%d second=%d, want 0 and 1", first, second)
	}
}

func TestListKinds_Sorted(t *testing.T) {
	t.Parallel()

	Register("fake-zz", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })
	Register("fake-aa", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })

	if kinds := ListKinds(); !slices.IsSorted(kinds) {
		t.Fatalf("ListKinds not sorted: %v", kinds)
	}
}

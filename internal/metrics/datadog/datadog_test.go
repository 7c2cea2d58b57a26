package datadog

import (
	"reflect"
	"testing"

	"moviecatalog/internal/metrics"
)

type sent struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type fakeClient struct {
	calls  []sent
	closed bool
}

func (f *fakeClient) Count(name string, value int64, tags []string, _ float64) error {
	f.calls = append(f.calls, sent{"count", name, float64(value), tags})
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, _ float64) error {
	f.calls = append(f.calls, sent{"histogram", name, value, tags})
	return nil
}

func (f *fakeClient) Gauge(name string, value float64, tags []string, _ float64) error {
	f.calls = append(f.calls, sent{"gauge", name, value, tags})
	return nil
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("NewBackend(Config{}) error = nil, want non-nil")
	}
}

func TestBackend_ForwardsWithTags(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.RowsTotal, 3.9, metrics.Labels{"kind": "titles_kept", "job": "build"})
	b.ObserveHistogram(metrics.StageDuration, 1.5, metrics.Labels{"stage": "names"})
	b.SetGauge(metrics.KeysetSize, 10, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush error = %v", err)
	}

	want := []sent{
		{"count", metrics.RowsTotal, 3, []string{"job:build", "kind:titles_kept"}},
		{"histogram", metrics.StageDuration, 1.5, []string{"stage:names"}},
		{"gauge", metrics.KeysetSize, 10, nil},
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Fatalf("calls = %#v\nwant %#v", fc.calls, want)
	}
	if !fc.closed {
		t.Fatalf("Flush should close the client")
	}
}

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moviecatalog/internal/config"
	"moviecatalog/internal/metrics/datadog"
	"moviecatalog/internal/metrics/prompush"
)

func TestParseFlags_Apply(t *testing.T) {
	t.Parallel()

	o, err := parseFlags([]string{
		"-config", "c.json", "-v", "-workers", "8", "-out", "/tmp/out",
		"-metrics-backend", "pushgateway", "-pushgateway-url", "http://gw:9091",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags error = %v", err)
	}
	if o.cfgPath != "c.json" || !o.verbose || o.validate {
		t.Fatalf("options = %+v", o)
	}

	p := config.Default()
	o.apply(&p)
	if p.Runtime.Workers != 8 || p.Output.Dir != "/tmp/out" {
		t.Errorf("runtime/output not applied: %+v %+v", p.Runtime, p.Output)
	}
	if p.Metrics.Backend != "pushgateway" || p.Metrics.PushgatewayURL != "http://gw:9091" {
		t.Errorf("metrics not applied: %+v", p.Metrics)
	}
}

func TestParseFlags_ZeroValuesKeepConfig(t *testing.T) {
	t.Parallel()

	o, err := parseFlags(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseFlags error = %v", err)
	}
	p := config.Default()
	o.apply(&p)
	if p.Runtime.Workers != config.Default().Runtime.Workers || p.Metrics.Backend != "none" {
		t.Fatalf("defaults changed: %+v", p)
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := parseFlags([]string{"-nope"}, io.Discard); err == nil {
		t.Fatalf("want error for unknown flag")
	}
}

func TestNewMetricsBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: "none"},
		{backend: ""},
		{backend: "pushgateway", want: "prompush"},
		{backend: "datadog", want: "datadog"},
		{backend: "graphite", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			t.Parallel()
			p := config.Default()
			p.Metrics.Backend = tt.backend

			b, err := newMetricsBackend(p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			switch tt.want {
			case "":
				if b != nil {
					t.Fatalf("backend = %T, want nil", b)
				}
			case "prompush":
				if _, ok := b.(*prompush.Backend); !ok {
					t.Fatalf("backend = %T", b)
				}
			case "datadog":
				db, ok := b.(*datadog.Backend)
				if !ok {
					t.Fatalf("backend = %T", b)
				}
				_ = db.Flush()
			}
		})
	}
}

func TestRun_ValidateOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"job":"nightly","filter":{"min_year":1990}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), []string{"-validate", "-config", good}); err != nil {
		t.Fatalf("run -validate error = %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"job":""}`), 0o644); err != nil {
		t.Fatal(err)
	}
	err := run(context.Background(), []string{"-validate", "-config", bad})
	if err == nil || !strings.Contains(err.Error(), "invalid") {
		t.Fatalf("run -validate bad config err = %v", err)
	}
}

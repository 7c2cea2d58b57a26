// Command catalog builds the movie catalog and feature tables from the five
// title dumps.
//
//	catalog -config configs/catalog.json -v
//	catalog -validate -config configs/catalog.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moviecatalog/internal/config"
	"moviecatalog/internal/metrics"
	"moviecatalog/internal/metrics/datadog"
	"moviecatalog/internal/metrics/prompush"
	"moviecatalog/internal/pipeline"

	// register all backends with the storage factory; the config picks one.
	_ "moviecatalog/internal/storage/all"
)

// options are the parsed command-line flags. Empty values leave the config
// untouched.
type options struct {
	cfgPath        string
	validate       bool
	verbose        bool
	metricsBackend string
	pushGatewayURL string
	datadogAddr    string
	workers        int
	outDir         string
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var o options
	set := flag.NewFlagSet("catalog", flag.ContinueOnError)
	set.SetOutput(errOut)
	set.StringVar(&o.cfgPath, "config", "", "pipeline config JSON path (defaults apply when empty)")
	set.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	set.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	set.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog, none (overrides config and METRICS_BACKEND)")
	set.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	set.StringVar(&o.datadogAddr, "datadog-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	set.IntVar(&o.workers, "workers", 0, "batches decoded concurrently per source (overrides CATALOG_WORKERS)")
	set.StringVar(&o.outDir, "out", "", "output directory")
	if err := set.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

// apply layers the flags over p.
func (o options) apply(p *config.Pipeline) {
	if o.metricsBackend != "" {
		p.Metrics.Backend = o.metricsBackend
	}
	if o.pushGatewayURL != "" {
		p.Metrics.PushgatewayURL = o.pushGatewayURL
	}
	if o.datadogAddr != "" {
		p.Metrics.DatadogAddr = o.datadogAddr
	}
	if o.workers > 0 {
		p.Runtime.Workers = o.workers
	}
	if o.outDir != "" {
		p.Output.Dir = o.outDir
	}
}

// newMetricsBackend returns the configured backend, or nil when metrics are
// disabled.
func newMetricsBackend(p config.Pipeline) (metrics.Backend, error) {
	switch p.Metrics.Backend {
	case "pushgateway":
		gwURL := p.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(p.Job, gwURL)
		if err != nil {
			return nil, err
		}
		log.Printf("metrics: url=%v, backend=pushgateway, job_name=%v", gwURL, p.Job)
		return b, nil

	case "datadog":
		addr := p.Metrics.DatadogAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       addr,
			Namespace:  "moviecatalog.",
			GlobalTags: []string{"job:" + p.Job},
		})
		if err != nil {
			return nil, err
		}
		log.Printf("metrics: addr=%v, backend=datadog, job_name=%v", addr, p.Job)
		return b, nil

	case "", "none":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown metrics backend %q", p.Metrics.Backend)
	}
}

func run(ctx context.Context, args []string) error {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("env: %v", err)
	}

	p, err := config.Load(o.cfgPath)
	if err != nil {
		return err
	}
	o.apply(&p)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid: %v", o.cfgPath)
	}
	if o.validate {
		log.Printf("Configuration is valid: %v", o.cfgPath)
		return nil
	}

	b, err := newMetricsBackend(p)
	if err != nil {
		log.Printf("metrics: %v; metrics disabled", err)
	} else if b != nil {
		metrics.SetBackend(b)
		defer func() {
			if err := metrics.Flush(); err != nil {
				log.Printf("metrics: flush error: %v", err)
			}
		}()
	} else if o.verbose {
		log.Printf("metrics: disabled (backend=%q)", p.Metrics.Backend)
	}

	if o.verbose {
		log.Printf("pipeline: job=%s sources=%s out=%s workers=%d storage=%q",
			p.Job, p.Sources.Dir, p.Output.Dir, p.Runtime.Workers, p.Storage.Kind)
	}

	start := time.Now()
	if _, err := pipeline.Run(ctx, p, o.verbose); err != nil {
		return err
	}
	if o.verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		stop()
		os.Exit(1)
	}
}

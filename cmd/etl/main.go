// Command etl runs the sales data pipeline: extract the retail entities from
// their sources, normalize them, and load the star schema into the Postgres
// warehouse.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"salesetl/internal/config"
	"salesetl/internal/metrics"
	"salesetl/internal/metrics/datadog"
	"salesetl/internal/metrics/prompush"
)

func main() {
	var (
		cfgPath           string
		only              string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validateOnly      bool
	)

	flag.StringVar(&cfgPath, "config", "configs/etl.yaml", "pipeline config YAML path")
	flag.StringVar(&only, "only", "", "comma-separated subset of entities to run (users,cards,stores,products,dates,orders)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend (pushgateway, datadog, none); overrides config")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL; overrides config")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if validateOnly {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	entities, err := selectEntities(only)
	if err != nil {
		log.Fatalf("%v", err)
	}

	setupMetrics(cfg, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if err := run(ctx, cfg, entities, *verbose); err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("pipeline completed in %s", time.Since(start).Truncate(time.Millisecond))
}

// selectEntities parses the -only flag into an ordered entity list. Dimension
// tables always run before the orders fact table so its foreign keys have
// targets to reference.
func selectEntities(only string) ([]string, error) {
	if only == "" {
		return append([]string(nil), allEntities...), nil
	}

	want := map[string]bool{}
	for _, name := range strings.Split(only, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !isEntity(name) {
			return nil, &unknownEntityError{name: name}
		}
		want[name] = true
	}

	var out []string
	for _, name := range allEntities {
		if want[name] {
			out = append(out, name)
		}
	}
	return out, nil
}

type unknownEntityError struct{ name string }

func (e *unknownEntityError) Error() string {
	return "unknown entity " + e.name + " (want one of " + strings.Join(allEntities, ", ") + ")"
}

// setupMetrics installs the metrics backend. Precedence: flag, then config.
func setupMetrics(cfg *config.Config, backendFlg, gwURLFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = cfg.Metrics.Backend
	}

	switch backendName {
	case "pushgateway":
		gwURL := gwURLFlg
		if gwURL == "" {
			gwURL = cfg.Metrics.PushgatewayURL
		}
		b, err := prompush.NewBackend(cfg.Metrics.JobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%v", gwURL)
		metrics.SetBackend(b)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: cfg.Metrics.DatadogAddr})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=datadog addr=%v", cfg.Metrics.DatadogAddr)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

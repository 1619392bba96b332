package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nordreg/domainscout/internal/analyzer"
	"github.com/nordreg/domainscout/internal/brreg"
	"github.com/nordreg/domainscout/internal/candidates"
	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/discovery"
	"github.com/nordreg/domainscout/internal/metrics"
	"github.com/nordreg/domainscout/internal/output"
	"github.com/nordreg/domainscout/internal/prober"
	"github.com/nordreg/domainscout/internal/ratelimit"
	"github.com/nordreg/domainscout/internal/verify"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domainscout",
		Short: "Discover and verify domains for Norwegian registry businesses",
		Long: "domainscout enriches Enhetsregisteret business records with revenue\n" +
			"estimates and a verified set of internet domains guessed from each\n" +
			"business name.",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.Int("max-companies", 1000, "maximum number of companies to process")
	flags.Int("min-employees", 10, "minimum employee count filter")
	flags.String("output-format", "json", "output format: json or csv")
	flags.String("output-file", "norwegian_companies_domains.json", "output file name")
	flags.Duration("probe-timeout", 0, "per-probe timeout (0 = config default)")
	flags.Duration("rate-interval", 0, "minimum spacing between outbound requests")
	flags.Int("candidate-concurrency", 0, "concurrent probes per business")
	flags.Int("business-concurrency", 0, "businesses processed in parallel")
	flags.Duration("deadline", 0, "global run deadline (0 = none)")
	flags.String("metrics-addr", "", "listen address for the prometheus endpoint")

	bind := map[string]string{
		"registry.maxcompanies":          "max-companies",
		"registry.minemployees":          "min-employees",
		"output.format":                  "output-format",
		"output.file":                    "output-file",
		"probe.timeout":                  "probe-timeout",
		"discovery.rateinterval":         "rate-interval",
		"discovery.candidateconcurrency": "candidate-concurrency",
		"discovery.businessconcurrency":  "business-concurrency",
		"discovery.deadline":             "deadline",
		"metrics.addr":                   "metrics-addr",
	}
	for key, flag := range bind {
		if f := flags.Lookup(flag); f != nil {
			viper.BindPFlag(key, f)
		}
	}

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Discovery.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Discovery.Deadline)
		defer cancel()
	}

	gate := ratelimit.NewGate(cfg.Discovery.RateInterval, cfg.Discovery.RateBurst)
	collector := metrics.NewCollector()

	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("starting discovery run",
		zap.Int("max_companies", cfg.Registry.MaxCompanies),
		zap.Int("min_employees", cfg.Registry.MinEmployees),
		zap.String("output_format", cfg.Output.Format),
	)

	client := brreg.NewClient(cfg.Registry, gate, collector, logger)

	// Fetch a wider slice than requested so the revenue ranking has
	// businesses to choose among before the top-N cut.
	fetchCap := cfg.Registry.MaxCompanies * 3
	records, errc := client.Stream(ctx, cfg.Registry.MinEmployees, fetchCap)

	var fetched []core.BusinessRecord
	for rec := range records {
		fetched = append(fetched, rec)
	}
	if err := <-errc; err != nil {
		return err
	}
	if len(fetched) == 0 {
		return fmt.Errorf("no businesses matched the registry filters")
	}

	logger.Info("registry fetch complete", zap.Int("businesses", len(fetched)))

	top := analyzer.TopByRevenue(fetched, cfg.Registry.MaxCompanies)

	gen := candidates.New(cfg.Generator)
	prb := prober.New(cfg.Probe, gate, logger)
	coord := verify.NewCoordinator(prb, cfg.Discovery.CandidateConcurrency, collector, logger)
	orch := discovery.NewOrchestrator(gen, coord, cfg.Discovery, cfg.Registry.MaxCompanies, collector, logger)

	stream := make(chan core.BusinessRecord)
	go func() {
		defer close(stream)
		for _, rec := range top {
			select {
			case stream <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	results, summary, err := orch.Run(ctx, stream)
	if err != nil {
		return err
	}

	if err := writeResults(cfg.Output, results); err != nil {
		return err
	}

	logger.Info("results written",
		zap.String("file", outputPath(cfg.Output)),
		zap.Int("companies", summary.Processed),
		zap.Int("domains_confirmed", summary.DomainsConfirmed),
	)
	return nil
}

func writeResults(cfg config.OutputConfig, results []core.EnrichedCompany) error {
	f, err := os.Create(outputPath(cfg))
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if cfg.Format == "csv" {
		return output.WriteCSV(f, results)
	}
	return output.WriteJSON(f, results)
}

func outputPath(cfg config.OutputConfig) string {
	if cfg.Format == "csv" && strings.HasSuffix(cfg.File, ".json") {
		return strings.TrimSuffix(cfg.File, ".json") + ".csv"
	}
	return cfg.File
}

package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nordreg/domainscout/internal/analyzer"
	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/metrics"
)

// Generator turns a business name into ordered domain candidates.
type Generator interface {
	Generate(name string) []core.DomainCandidate
}

// Verifier probes candidates and returns the confirmed set.
type Verifier interface {
	Verify(ctx context.Context, orgNumber string, cands []core.DomainCandidate) core.DomainResult
}

// Summary aggregates run-level counts for the end-of-run report.
type Summary struct {
	Processed        int
	WithDomains      int
	DomainsConfirmed int
	BusinessErrors   int
	FailuresByKind   map[core.ErrorKind]int
	Elapsed          time.Duration
}

// Orchestrator drives discovery across many businesses with bounded
// parallelism, independent of the per-business candidate pool. Results
// are reassembled positionally so output order always follows input
// order. One business's failure never aborts the run.
type Orchestrator struct {
	gen         Generator
	verifier    Verifier
	concurrency int
	maxCount    int
	metrics     *metrics.Collector
	logger      *zap.Logger
}

func NewOrchestrator(gen Generator, verifier Verifier, cfg config.DiscoveryConfig, maxCount int, collector *metrics.Collector, logger *zap.Logger) *Orchestrator {
	concurrency := cfg.BusinessConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		gen:         gen,
		verifier:    verifier,
		concurrency: concurrency,
		maxCount:    maxCount,
		metrics:     collector,
		logger:      logger,
	}
}

// Run consumes the record stream incrementally and returns one
// enriched company per input record, in input order. It stops
// dispatching when the stream ends, the max-business cap is hit, or
// the context is done; in-flight businesses finish naturally.
func (o *Orchestrator) Run(ctx context.Context, records <-chan core.BusinessRecord) ([]core.EnrichedCompany, Summary, error) {
	start := time.Now()
	summary := Summary{FailuresByKind: make(map[core.ErrorKind]int)}

	var mu sync.Mutex
	var results []core.EnrichedCompany

	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)

	dispatched := 0
	for rec := range records {
		if o.maxCount > 0 && dispatched >= o.maxCount {
			break
		}
		if ctx.Err() != nil {
			break
		}

		idx := dispatched
		dispatched++
		rec := rec

		mu.Lock()
		results = append(results, core.EnrichedCompany{})
		mu.Unlock()

		g.Go(func() error {
			enriched, dr := o.processOne(ctx, rec)

			mu.Lock()
			results[idx] = enriched
			summary.Processed++
			if len(dr.Domains) > 0 {
				summary.WithDomains++
			}
			summary.DomainsConfirmed += len(dr.Domains)
			if dr.Err != "" {
				summary.BusinessErrors++
			}
			for _, v := range dr.Verdicts {
				if v.ErrorKind != "" {
					summary.FailuresByKind[v.ErrorKind]++
				}
			}
			processed := summary.Processed
			mu.Unlock()

			o.metrics.RecordBusiness(dr)

			if processed%25 == 0 {
				o.logger.Info("discovery progress",
					zap.Int("processed", processed),
					zap.Duration("elapsed", time.Since(start)),
				)
			}
			return nil
		})
	}

	g.Wait()
	summary.Elapsed = time.Since(start)

	o.logger.Info("discovery run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("with_domains", summary.WithDomains),
		zap.Int("domains_confirmed", summary.DomainsConfirmed),
		zap.Int("business_errors", summary.BusinessErrors),
		zap.Any("failures_by_kind", summary.FailuresByKind),
		zap.Duration("elapsed", summary.Elapsed),
	)

	return results, summary, nil
}

// processOne runs discovery for a single business. Panics are caught
// at this boundary and recorded as an empty result with an error
// annotation, per the isolation rule that one bad business never
// destabilizes the batch.
func (o *Orchestrator) processOne(ctx context.Context, rec core.BusinessRecord) (enriched core.EnrichedCompany, dr core.DomainResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("business processing failed",
				zap.String("org_number", rec.OrgNumber),
				zap.String("name", rec.Name),
				zap.Any("panic", r),
			)
			dr = core.DomainResult{
				OrgNumber: rec.OrgNumber,
				Domains:   []string{},
				Err:       fmt.Sprintf("processing failed: %v", r),
			}
			enriched = o.merge(rec, dr)
		}
	}()

	cands := o.gen.Generate(rec.Name)
	if len(cands) == 0 {
		o.logger.Debug("no candidates generated",
			zap.String("org_number", rec.OrgNumber),
			zap.String("name", rec.Name),
		)
		dr = core.DomainResult{OrgNumber: rec.OrgNumber, Domains: []string{}}
	} else {
		dr = o.verifier.Verify(ctx, rec.OrgNumber, cands)
	}

	o.logger.Debug("business processed",
		zap.String("org_number", rec.OrgNumber),
		zap.String("name", rec.Name),
		zap.Int("candidates", len(cands)),
		zap.Strings("domains", dr.Domains),
	)

	return o.merge(rec, dr), dr
}

func (o *Orchestrator) merge(rec core.BusinessRecord, dr core.DomainResult) core.EnrichedCompany {
	domains := dr.Domains
	if domains == nil {
		domains = []string{}
	}
	return core.EnrichedCompany{
		OrgNumber:        rec.OrgNumber,
		Name:             rec.Name,
		Domains:          domains,
		DomainCount:      len(domains),
		EstimatedRevenue: analyzer.EstimateRevenue(rec.Employees),
		Employees:        rec.Employees,
		Industry:         analyzer.IndustryCategory(rec.NACECode),
		SizeCategory:     analyzer.SizeCategory(rec.Employees),
		Municipality:     rec.Municipality,
		Founded:          rec.Founded,
		NACECode:         rec.NACECode,
		Error:            dr.Err,
	}
}

package verify

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/metrics"
)

// CandidateProber probes one candidate and always returns a verdict.
type CandidateProber interface {
	Probe(ctx context.Context, cand core.DomainCandidate) core.VerificationVerdict
}

// Coordinator fans candidate probes for one business across a
// fixed-size worker pool, then deduplicates and ranks the verdicts.
// It holds no state between businesses; the prober's rate gate is the
// only shared resource.
type Coordinator struct {
	prober  CandidateProber
	workers int
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewCoordinator(prober CandidateProber, workers int, collector *metrics.Collector, logger *zap.Logger) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{
		prober:  prober,
		workers: workers,
		metrics: collector,
		logger:  logger,
	}
}

// Verify probes every unique candidate host and returns the business's
// confirmed domain set, ordered by generation rank with latency as the
// tie-break. An empty set is a valid outcome and is logged, never
// dropped.
func (c *Coordinator) Verify(ctx context.Context, orgNumber string, cands []core.DomainCandidate) core.DomainResult {
	result := core.DomainResult{OrgNumber: orgNumber, Domains: []string{}}
	if len(cands) == 0 {
		return result
	}

	// Dedupe by host before dispatch so no host is ever probed twice
	// for the same business.
	seen := make(map[string]struct{}, len(cands))
	queue := make(chan core.DomainCandidate, len(cands))
	unique := 0
	for _, cand := range cands {
		if _, dup := seen[cand.Host]; dup {
			continue
		}
		seen[cand.Host] = struct{}{}
		queue <- cand
		unique++
	}
	close(queue)

	workers := c.workers
	if workers > unique {
		workers = unique
	}

	verdicts := make(chan core.VerificationVerdict, unique)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range queue {
				verdicts <- c.prober.Probe(ctx, cand)
			}
		}()
	}
	wg.Wait()
	close(verdicts)

	collected := make([]core.VerificationVerdict, 0, unique)
	for v := range verdicts {
		c.metrics.RecordVerdict(v)
		collected = append(collected, v)
	}

	// Collection order is arbitrary; final ranking re-sorts so output
	// is deterministic for fixed inputs and network behavior.
	sort.Slice(collected, func(i, j int) bool {
		if collected[i].Rank != collected[j].Rank {
			return collected[i].Rank < collected[j].Rank
		}
		return collected[i].Latency < collected[j].Latency
	})

	confirmed := make(map[string]struct{}, len(collected))
	for _, v := range collected {
		if !v.Reachable {
			continue
		}
		if _, dup := confirmed[v.Host]; dup {
			continue
		}
		confirmed[v.Host] = struct{}{}
		result.Domains = append(result.Domains, v.Host)
	}
	result.Verdicts = collected

	if len(result.Domains) == 0 {
		c.logger.Debug("no domains confirmed",
			zap.String("org_number", orgNumber),
			zap.Int("candidates", unique),
		)
	}

	return result
}

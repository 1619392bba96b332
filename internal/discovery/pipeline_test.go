package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordreg/domainscout/internal/candidates"
	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/metrics"
	"github.com/nordreg/domainscout/internal/verify"
)

// reachableHosts probes without any I/O: listed hosts resolve and
// respond over HTTPS, everything else is NXDOMAIN.
type reachableHosts map[string]time.Duration

func (r reachableHosts) Probe(ctx context.Context, cand core.DomainCandidate) core.VerificationVerdict {
	v := core.VerificationVerdict{Host: cand.Host, Rank: cand.Rank, Rule: cand.Rule}
	if latency, ok := r[cand.Host]; ok {
		v.Resolvable = true
		v.Reachable = true
		v.Scheme = "https"
		v.StatusCode = 200
		v.Latency = latency
	}
	return v
}

func generatorConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		TLDs:             []string{".no", ".com", ".org", ".net"},
		LegalSuffixes:    []string{"as", "asa", "ans", "ba", "da", "iks", "ks", "nuf", "sa", "sf"},
		Transliterations: map[string]string{"æ": "ae", "ø": "o", "å": "a"},
		MaxCandidates:    20,
		MinSlugLength:    3,
	}
}

func TestPipeline_SingleConfirmedDomain(t *testing.T) {
	gen := candidates.New(generatorConfig())
	coord := verify.NewCoordinator(reachableHosts{
		"eksempel.no": 30 * time.Millisecond,
	}, 5, metrics.NewCollector(), zap.NewNop())

	employees := 40
	rec := core.BusinessRecord{
		OrgNumber: "971234567",
		Name:      "Eksempel AS",
		Employees: &employees,
		NACECode:  "62.010",
	}

	orch := NewOrchestrator(gen, coord, config.DiscoveryConfig{BusinessConcurrency: 2}, 0, metrics.NewCollector(), zap.NewNop())
	results, summary, err := orch.Run(context.Background(), streamOf(rec))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"eksempel.no"}, results[0].Domains)
	assert.Equal(t, 1, results[0].DomainCount)
	assert.Equal(t, 1, summary.DomainsConfirmed)
}

func TestPipeline_EmptyNameProbesNothing(t *testing.T) {
	gen := candidates.New(generatorConfig())

	probed := false
	coord := verify.NewCoordinator(probeSpy{called: &probed}, 5, metrics.NewCollector(), zap.NewNop())

	rec := core.BusinessRecord{OrgNumber: "970000001", Name: "!!!"}
	orch := NewOrchestrator(gen, coord, config.DiscoveryConfig{BusinessConcurrency: 1}, 0, metrics.NewCollector(), zap.NewNop())

	results, _, err := orch.Run(context.Background(), streamOf(rec))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Domains)
	assert.Empty(t, results[0].Error)
	assert.False(t, probed, "no probe should run for an empty candidate list")
}

func TestPipeline_GenerationRankWinsOverTLDOrder(t *testing.T) {
	gen := candidates.New(generatorConfig())
	coord := verify.NewCoordinator(reachableHosts{
		"eksempel.no":  10 * time.Millisecond,
		"eksempel.com": 5 * time.Millisecond,
	}, 5, metrics.NewCollector(), zap.NewNop())

	rec := core.BusinessRecord{OrgNumber: "971234567", Name: "Eksempel AS"}
	orch := NewOrchestrator(gen, coord, config.DiscoveryConfig{BusinessConcurrency: 1}, 0, metrics.NewCollector(), zap.NewNop())

	results, _, err := orch.Run(context.Background(), streamOf(rec))

	require.NoError(t, err)
	require.Len(t, results, 1)
	// .no is generated before .com, so it leads despite the slower probe.
	assert.Equal(t, []string{"eksempel.no", "eksempel.com"}, results[0].Domains)
}

type probeSpy struct {
	called *bool
}

func (p probeSpy) Probe(ctx context.Context, cand core.DomainCandidate) core.VerificationVerdict {
	*p.called = true
	return core.VerificationVerdict{Host: cand.Host}
}

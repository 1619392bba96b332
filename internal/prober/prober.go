package prober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/nordreg/domainscout/internal/config"
	"github.com/nordreg/domainscout/internal/core"
	"github.com/nordreg/domainscout/internal/ratelimit"
)

// Resolver answers whether a host has an address record. A nil error
// with found=false means an authoritative negative (NXDOMAIN or an
// empty answer); a non-nil error means the query itself failed.
type Resolver interface {
	LookupA(ctx context.Context, host string) (found bool, err error)
}

type dnsResolver struct {
	client *dns.Client
	addr   string
}

func (r *dnsResolver) LookupA(ctx context.Context, host string) (bool, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), dns.TypeA)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.addr)
	if err != nil {
		return false, fmt.Errorf("dns query failed: %w", err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return false, nil
	}
	for _, ans := range resp.Answer {
		switch ans.(type) {
		case *dns.A, *dns.CNAME:
			return true, nil
		}
	}
	return false, nil
}

// Prober checks a single candidate: DNS existence first, then an
// HTTPS probe with HTTP fallback. Every probe returns a verdict
// within the configured timeout; failures become data, never errors.
type Prober struct {
	resolver        Resolver
	client          *http.Client
	gate            *ratelimit.Gate
	timeout         time.Duration
	retryDNSTimeout bool
	userAgent       string
	schemes         []string
	logger          *zap.Logger
}

func New(cfg config.ProbeConfig, gate *ratelimit.Gate, logger *zap.Logger) *Prober {
	return &Prober{
		resolver: &dnsResolver{
			client: &dns.Client{Timeout: cfg.Timeout},
			addr:   cfg.ResolverAddr,
		},
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		gate:            gate,
		timeout:         cfg.Timeout,
		retryDNSTimeout: cfg.RetryDNSTimeout,
		userAgent:       "domainscout/1.0",
		schemes:         []string{"https", "http"},
		logger:          logger,
	}
}

// Probe resolves and probes one candidate. DNS failure short-circuits
// the HTTP phase; an unresolvable or unreachable host is a normal
// verdict, not an error.
func (p *Prober) Probe(ctx context.Context, cand core.DomainCandidate) core.VerificationVerdict {
	verdict := core.VerificationVerdict{Host: cand.Host, Rank: cand.Rank, Rule: cand.Rule}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	found, err := p.lookup(ctx, cand.Host)
	if err != nil {
		verdict.ErrorKind = classify(err)
		p.logger.Debug("dns lookup failed",
			zap.String("host", cand.Host),
			zap.String("error_kind", string(verdict.ErrorKind)),
			zap.Error(err),
		)
		return verdict
	}
	if !found {
		return verdict
	}
	verdict.Resolvable = true

	for _, scheme := range p.schemes {
		if err := p.gate.Wait(ctx); err != nil {
			verdict.ErrorKind = core.ErrorKindTimeout
			return verdict
		}

		start := time.Now()
		code, err := p.fetch(ctx, scheme, cand.Host)
		if err != nil {
			verdict.ErrorKind = classify(err)
			p.logger.Debug("probe failed",
				zap.String("host", cand.Host),
				zap.String("scheme", scheme),
				zap.String("error_kind", string(verdict.ErrorKind)),
			)
			continue
		}

		verdict.Reachable = true
		verdict.Scheme = scheme
		verdict.StatusCode = code
		verdict.Latency = time.Since(start)
		verdict.ErrorKind = ""
		break
	}

	return verdict
}

func (p *Prober) lookup(ctx context.Context, host string) (bool, error) {
	if err := p.gate.Wait(ctx); err != nil {
		return false, err
	}

	found, err := p.resolver.LookupA(ctx, host)
	if err != nil && p.retryDNSTimeout && classify(err) == core.ErrorKindTimeout && ctx.Err() == nil {
		// Bounded retry policy: one extra attempt, DNS timeouts only.
		if werr := p.gate.Wait(ctx); werr != nil {
			return false, werr
		}
		found, err = p.resolver.LookupA(ctx, host)
	}
	return found, err
}

func (p *Prober) fetch(ctx context.Context, scheme, host string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain a bounded amount so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return resp.StatusCode, nil
}

func classify(err error) core.ErrorKind {
	if err == nil {
		return ""
	}

	var nerr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.ErrorKindTimeout
	case errors.As(err, &nerr) && nerr.Timeout():
		return core.ErrorKindTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		return core.ErrorKindRefused
	}

	var recordErr tls.RecordHeaderError
	var certErr *tls.CertificateVerificationError
	var authorityErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) ||
		errors.As(err, &authorityErr) || errors.As(err, &hostnameErr) {
		return core.ErrorKindTLS
	}

	return core.ErrorKindOther
}

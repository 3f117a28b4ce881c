// Package verify runs the authenticity checks for a parsed payload and folds
// them into an auth status.
package verify

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"twigascan/internal/scan/metrics"
	"twigascan/internal/scan/payload"
	"twigascan/internal/scan/providers"
)

var tracer = otel.Tracer("twigascan/scan/verify")

// ProviderLookup is the read-only registry surface the orchestrator needs.
type ProviderLookup interface {
	LookupAddress(address string) (providers.ProviderRecord, bool)
	LookupInvoice(invoice string) (providers.ProviderRecord, bool)
	LookupDomain(hostOrURL string) (providers.ProviderRecord, bool)
}

// Orchestrator runs the per-type checks for one payload.
type Orchestrator struct {
	providers ProviderLookup
	domains   DomainChecker
	crypto    map[payload.ContentType]CryptoVerifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCryptoVerifier replaces the verifier for one content type. A nil
// verifier removes it, leaving crypto_valid false for that type.
func WithCryptoVerifier(ct payload.ContentType, v CryptoVerifier) Option {
	return func(o *Orchestrator) {
		if v == nil {
			delete(o.crypto, ct)
			return
		}
		o.crypto[ct] = v
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator creates an orchestrator over an immutable provider lookup
// and a domain checker.
func NewOrchestrator(lookup ProviderLookup, domains DomainChecker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		providers: lookup,
		domains:   domains,
		crypto:    DefaultCryptoVerifiers(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// Verify never fails: a format error short-circuits to Invalid, and network
// or verifier failures collapse to false.
func (o *Orchestrator) Verify(ctx context.Context, p payload.Payload) payload.VerificationResult {
	if p == nil {
		return payload.VerificationResult{
			Warnings:   []string{fmt.Sprintf("Unknown content type: %s", payload.ContentTypeUnknown)},
			AuthStatus: payload.AuthStatusInvalid,
		}
	}

	ctx, span := tracer.Start(ctx, "verify.payload")
	defer span.End()
	ct := p.ContentType()
	span.SetAttributes(attribute.String("scan.content_type", ct.String()))

	if payload.HasFormatError(p) {
		o.metrics.RecordCheck("format", false)
		return payload.VerificationResult{
			Warnings:   []string{fmt.Sprintf("Format error: %s", p.FormatError())},
			AuthStatus: payload.AuthStatusInvalid,
		}
	}
	o.metrics.RecordCheck("format", true)

	var res payload.VerificationResult
	res.FormatValid = true

	switch v := p.(type) {
	case *payload.BitcoinPayment:
		o.verifyBIP21(ctx, v, &res)
	case *payload.LightningInvoice:
		o.verifyBOLT11(ctx, v, &res)
	case *payload.LnurlRequest:
		o.verifyEndpoint(ctx, v, v.Endpoint(), &res)
	case *payload.LightningAddress:
		o.verifyEndpoint(ctx, v, v.LnurlURL, &res)
	default:
		res.Warnings = append(res.Warnings, fmt.Sprintf("Unknown content type: %s", ct))
	}

	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	res.AuthStatus = DetermineAuthStatus(ct, res.Checks)
	span.SetAttributes(attribute.String("scan.auth_status", string(res.AuthStatus)))
	return res
}

func (o *Orchestrator) verifyBIP21(ctx context.Context, p *payload.BitcoinPayment, res *payload.VerificationResult) {
	var domain DomainVerdict
	checkDomain := p.PaymentRequestURL != ""

	g := new(errgroup.Group)
	g.Go(func() error {
		res.CryptoValid = o.runCrypto(ctx, p)
		return nil
	})
	if checkDomain {
		g.Go(func() error {
			domain = o.domains.Check(ctx, p.PaymentRequestURL)
			return nil
		})
	}
	rec, known := o.providers.LookupAddress(p.Address)
	_ = g.Wait()

	o.applyProvider(rec, known, res)
	if checkDomain {
		res.DomainValid = domain.Valid
		o.metrics.RecordCheck("domain", domain.Valid)
		if !domain.Valid {
			res.Warnings = append(res.Warnings, "Invalid payment request domain")
		}
		o.applyPhishing(p.PaymentRequestURL, res)
	}
}

func (o *Orchestrator) verifyBOLT11(ctx context.Context, p *payload.LightningInvoice, res *payload.VerificationResult) {
	res.CryptoValid = o.runCrypto(ctx, p)
	if !res.CryptoValid {
		res.Warnings = append(res.Warnings, "Invalid Lightning invoice signature")
	}
	rec, known := o.providers.LookupInvoice(p.Invoice)
	o.applyProvider(rec, known, res)
}

// verifyEndpoint covers LNURL and Lightning Address. A bech32 LNURL has no
// endpoint, so only crypto applies.
func (o *Orchestrator) verifyEndpoint(ctx context.Context, p payload.Payload, endpoint string, res *payload.VerificationResult) {
	var domain DomainVerdict

	g := new(errgroup.Group)
	g.Go(func() error {
		res.CryptoValid = o.runCrypto(ctx, p)
		return nil
	})
	if endpoint != "" {
		g.Go(func() error {
			domain = o.domains.Check(ctx, endpoint)
			return nil
		})
	}
	_ = g.Wait()

	if endpoint == "" {
		return
	}
	res.DomainValid = domain.Valid
	o.metrics.RecordCheck("domain", domain.Valid)
	if !domain.Valid {
		res.Warnings = append(res.Warnings, "Invalid LNURL domain")
	}
	rec, known := o.providers.LookupDomain(endpoint)
	o.applyProvider(rec, known, res)
	o.applyPhishing(endpoint, res)
}

func (o *Orchestrator) runCrypto(ctx context.Context, p payload.Payload) bool {
	v, ok := o.crypto[p.ContentType()]
	if !ok {
		return false
	}
	valid, err := v.Verify(ctx, p)
	if err != nil {
		o.logger.DebugContext(ctx, "crypto verifier failed",
			"content_type", p.ContentType(),
			"error", err,
		)
		valid = false
	}
	o.metrics.RecordCheck("crypto", valid)
	return valid
}

func (o *Orchestrator) applyProvider(rec providers.ProviderRecord, known bool, res *payload.VerificationResult) {
	o.metrics.RecordCheck("provider", known)
	if !known {
		return
	}
	res.ProviderKnown = true
	res.Provider = rec.Name
	res.Warnings = append(res.Warnings, fmt.Sprintf("Known provider: %s", rec.Name))
}

func (o *Orchestrator) applyPhishing(rawURL string, res *payload.VerificationResult) {
	if host := providers.HostOf(rawURL); host != "" && SuspiciousDomain(host) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Suspicious domain pattern: %s", host))
	}
}

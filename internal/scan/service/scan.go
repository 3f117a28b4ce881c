package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"twigascan/internal/scan/duplicate"
	"twigascan/internal/scan/events"
	"twigascan/internal/scan/history"
	"twigascan/internal/scan/payload"
	dErrors "twigascan/pkg/domain-errors"
	"twigascan/pkg/platform/sentinel"
	"twigascan/pkg/requestcontext"
)

// ScanRequest is one submitted QR payload.
type ScanRequest struct {
	Content  string
	DeviceID string
}

// ParseAndVerify parses content, verifies it, records it and returns the
// outcome. Only guardrail violations, timeouts and storage failures are
// errors; a payload that fails to parse yields an Invalid outcome.
func (s *Service) ParseAndVerify(ctx context.Context, req ScanRequest) (*payload.ScanOutcome, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "scan.parse_and_verify")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.scanTimeout)
	defer cancel()

	p, err := s.router.Route(req.Content)
	if err != nil {
		span.SetStatus(codes.Error, "guardrail")
		return nil, err
	}
	ct := p.ContentType()
	span.SetAttributes(attribute.String("scan.content_type", ct.String()))

	now := requestcontext.Now(ctx).UTC()
	scanID := uuid.New()
	identifier, hasIdentifier := duplicate.Normalize(ct, p)

	release := func() {}
	if hasIdentifier {
		lockStart := time.Now()
		release, err = s.locker.Lock(ctx, identifier)
		s.metrics.ObserveLockWait(time.Since(lockStart))
		if err != nil {
			span.SetStatus(codes.Error, "lock")
			return nil, s.translateContextErr(err, "failed to acquire identifier lock")
		}
		release = sync.OnceFunc(release)
		defer release()
	}

	var (
		verification payload.VerificationResult
		dup          = duplicate.FirstSighting(identifier, now)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		verification = s.verifier.Verify(gctx, p)
		return nil
	})
	if hasIdentifier {
		g.Go(func() error {
			r, err := s.detector.Detect(gctx, identifier, now)
			if err != nil {
				return err
			}
			dup = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, "duplicate detection")
		return nil, s.translateContextErr(err, "failed to check scan history")
	}

	outcome := &payload.ScanOutcome{
		ScanID:               scanID,
		Timestamp:            now,
		ContentType:          ct,
		ParsedData:           p,
		AuthStatus:           verification.AuthStatus,
		Verification:         verification,
		Warnings:             duplicate.PrependWarnings(dup, verification.Warnings),
		IsDuplicate:          dup.IsDuplicate,
		UsageCount:           dup.UsageCount,
		FirstSeen:            dup.FirstSeen,
		NormalizedIdentifier: identifier,
	}

	record, err := s.newRecord(ctx, req, outcome)
	if err != nil {
		return nil, err
	}
	if err := s.store.Append(ctx, record); err != nil {
		span.SetStatus(codes.Error, "append")
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "scan already recorded")
		}
		return nil, s.translateContextErr(err, "failed to record scan")
	}
	release()

	s.publish(ctx, outcome, record)

	duration := time.Since(start)
	s.metrics.IncrementScan(string(ct), string(outcome.AuthStatus))
	if dup.IsDuplicate {
		s.metrics.IncrementDuplicate(string(ct), dup.HighFrequency())
	}
	s.metrics.ObserveScanLatency(duration)
	span.SetAttributes(
		attribute.String("scan.auth_status", string(outcome.AuthStatus)),
		attribute.Bool("scan.is_duplicate", outcome.IsDuplicate),
	)

	s.logger.InfoContext(ctx, "scan processed",
		"request_id", requestcontext.RequestID(ctx),
		"scan_id", scanID,
		"content_type", ct,
		"auth_status", outcome.AuthStatus,
		"is_duplicate", outcome.IsDuplicate,
		"usage_count", outcome.UsageCount,
		"identifier_hash", identifierHash(identifier),
		"duration_ms", duration.Milliseconds(),
	)
	return outcome, nil
}

func (s *Service) newRecord(ctx context.Context, req ScanRequest, o *payload.ScanOutcome) (*history.Record, error) {
	parsed, err := json.Marshal(o.ParsedData)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode parsed data")
	}
	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = requestcontext.DeviceID(ctx)
	}
	return &history.Record{
		ScanID:               o.ScanID,
		Timestamp:            o.Timestamp,
		RawContent:           o.ParsedData.Raw(),
		ContentType:          o.ContentType,
		ParsedData:           parsed,
		Provider:             o.Verification.Provider,
		AuthStatus:           o.AuthStatus,
		Verification:         o.Verification,
		Warnings:             o.Warnings,
		NormalizedIdentifier: o.NormalizedIdentifier,
		FirstSeen:            o.FirstSeen,
		UsageCount:           o.UsageCount,
		Device: history.NewDevice(deviceID,
			requestcontext.ClientIP(ctx),
			requestcontext.UserAgent(ctx),
		),
	}, nil
}

func (s *Service) publish(ctx context.Context, o *payload.ScanOutcome, r *history.Record) {
	e := events.ScanRecorded{
		ScanID:               o.ScanID,
		Timestamp:            o.Timestamp,
		ContentType:          o.ContentType,
		AuthStatus:           o.AuthStatus,
		Provider:             o.Verification.Provider,
		NormalizedIdentifier: o.NormalizedIdentifier,
		IsDuplicate:          o.IsDuplicate,
		UsageCount:           o.UsageCount,
		Warnings:             o.Warnings,
		DeviceID:             r.Device.DeviceID,
	}
	if err := s.publisher.PublishScan(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to publish scan event",
			"request_id", requestcontext.RequestID(ctx),
			"scan_id", o.ScanID,
			"error", err,
		)
	}
}

func (s *Service) translateContextErr(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "scan timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

// identifierHash is a short, stable tag for logs. The identifier itself is
// never logged.
func identifierHash(identifier string) string {
	if identifier == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:6])
}

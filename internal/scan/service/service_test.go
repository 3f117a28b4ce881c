package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"twigascan/internal/scan/events"
	"twigascan/internal/scan/history"
	"twigascan/internal/scan/parser"
	"twigascan/internal/scan/payload"
	"twigascan/internal/scan/providers"
	"twigascan/internal/scan/service/mocks"
	"twigascan/internal/scan/verify"
	dErrors "twigascan/pkg/domain-errors"
	"twigascan/pkg/platform/sentinel"
	"twigascan/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Verifier,Store,Locker,Publisher,ProviderCatalog

const devFundAddress = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    *history.InMemoryStore
	recorder *events.RecordingPublisher
	service  *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = history.NewInMemoryStore()
	s.recorder = events.NewRecordingPublisher(64)
	registry := providers.Default()
	orchestrator := verify.NewOrchestrator(registry, verify.StaticDomainChecker{Valid: true})
	s.service = New(orchestrator, s.store,
		WithPublisher(s.recorder),
		WithProviderCatalog(registry),
		WithLogger(discardLogger()),
	)
}

func (s *ServiceSuite) scan(content string) *payload.ScanOutcome {
	s.T().Helper()
	out, err := s.service.ParseAndVerify(s.ctx, ScanRequest{Content: content})
	s.Require().NoError(err)
	return out
}

func (s *ServiceSuite) TestFirstScanOfKnownAddress() {
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	s.ctx = requestcontext.WithTime(s.ctx, at)

	out := s.scan("bitcoin:" + devFundAddress + "?amount=0.001")

	s.Equal(payload.ContentTypeBIP21, out.ContentType)
	s.Equal(payload.AuthStatusVerified, out.AuthStatus)
	s.False(out.IsDuplicate)
	s.Equal(1, out.UsageCount)
	s.True(at.Equal(out.FirstSeen))
	s.True(at.Equal(out.Timestamp))
	s.Equal(devFundAddress, out.NormalizedIdentifier)
	s.Equal([]string{"Known provider: Bitcoin Core Development Fund"}, out.Warnings)

	bip21, ok := out.ParsedData.(*payload.BitcoinPayment)
	s.Require().True(ok)
	s.Require().NotNil(bip21.AmountSatoshis)
	s.Equal(int64(100000), *bip21.AmountSatoshis)

	stored, err := s.store.Get(s.ctx, out.ScanID)
	s.Require().NoError(err)
	s.Equal("bitcoin:"+devFundAddress+"?amount=0.001", stored.RawContent)
	s.Equal("Bitcoin Core Development Fund", stored.Provider)
	s.Contains(string(stored.ParsedData), `"address_type"`)
}

func (s *ServiceSuite) TestRepeatScansAreFlagged() {
	t0 := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	var outs []*payload.ScanOutcome
	for i := 0; i < 4; i++ {
		s.ctx = requestcontext.WithTime(context.Background(), t0.Add(time.Duration(i)*time.Minute))
		outs = append(outs, s.scan(devFundAddress))
	}

	second := outs[1]
	s.True(second.IsDuplicate)
	s.Equal(2, second.UsageCount)
	s.True(t0.Equal(second.FirstSeen))
	s.Equal([]string{
		"⚠️ This address has been scanned 1 time(s) before. First seen: 2026-02-03T04:05:06Z",
		"Known provider: Bitcoin Core Development Fund",
	}, second.Warnings)

	fourth := outs[3]
	s.Equal(4, fourth.UsageCount)
	s.Require().Len(fourth.Warnings, 3)
	s.True(strings.HasPrefix(fourth.Warnings[0], "🚨 HIGH FREQUENCY"))
	s.Contains(fourth.Warnings[1], "scanned 3 time(s) before")
}

func (s *ServiceSuite) TestDuplicateDetectionIgnoresCase() {
	first := s.scan("alice@strike.me")
	second := s.scan("ALICE@Strike.ME")

	s.False(first.IsDuplicate)
	s.True(second.IsDuplicate)
	s.Equal(first.NormalizedIdentifier, second.NormalizedIdentifier)
}

func (s *ServiceSuite) TestDistinctIdentifiersDoNotInterfere() {
	s.scan("alice@strike.me")
	other := s.scan("bob@strike.me")
	s.False(other.IsDuplicate)
	s.Equal(1, other.UsageCount)
}

func (s *ServiceSuite) TestGuardrailsRejectBeforeRecording() {
	_, err := s.service.ParseAndVerify(s.ctx, ScanRequest{Content: "   "})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.ErrorIs(err, parser.ErrEmptyContent)

	_, err = s.service.ParseAndVerify(s.ctx, ScanRequest{Content: strings.Repeat("a", parser.MaxContentLength+1)})
	s.ErrorIs(err, parser.ErrContentTooLarge)

	_, total, err := s.store.List(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Zero(total)
}

func (s *ServiceSuite) TestUnrecognisedContentIsRecordedAsInvalid() {
	out := s.scan("hello world")
	s.Equal(payload.ContentTypeUnknown, out.ContentType)
	s.Equal(payload.AuthStatusInvalid, out.AuthStatus)
	s.Empty(out.NormalizedIdentifier)
	s.Equal([]string{"Format error: Unrecognized payment format"}, out.Warnings)

	again := s.scan("hello world")
	s.False(again.IsDuplicate)
	s.Equal(1, again.UsageCount)
}

func (s *ServiceSuite) TestFormatErrorIsNotDuplicateTracked() {
	first := s.scan("bitcoin:nope")
	second := s.scan("bitcoin:nope")
	s.Equal(payload.AuthStatusInvalid, first.AuthStatus)
	s.False(second.IsDuplicate)
}

func (s *ServiceSuite) TestEventPublishedAfterRecording() {
	s.ctx = requestcontext.WithDeviceID(s.ctx, "phone-1")
	out := s.scan("alice@strike.me")

	select {
	case e := <-s.recorder.Events():
		s.Equal(out.ScanID, e.ScanID)
		s.Equal("alice@strike.me", e.Key())
		s.Equal(payload.ContentTypeLightningAddress, e.ContentType)
		s.Equal("phone-1", e.DeviceID)
	default:
		s.Fail("expected a scan.recorded event")
	}
}

func (s *ServiceSuite) TestDeviceMetadataIsStored() {
	ctx := requestcontext.WithClientMetadata(s.ctx, "203.0.113.7", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	out, err := s.service.ParseAndVerify(ctx, ScanRequest{Content: devFundAddress, DeviceID: "kiosk-7"})
	s.Require().NoError(err)

	stored, err := s.store.Get(s.ctx, out.ScanID)
	s.Require().NoError(err)
	s.Equal("kiosk-7", stored.Device.DeviceID)
	s.Equal("203.0.113.7", stored.Device.IPAddress)
	s.Equal("Chrome", stored.Device.Browser)
	s.False(stored.Device.Mobile)
}

func (s *ServiceSuite) TestProviders() {
	s.Len(s.service.Providers(), providers.Default().Len())
	s.Empty(New(nil, s.store).Providers())
}

func (s *ServiceSuite) TestGet() {
	out := s.scan(devFundAddress)
	r, err := s.service.Get(s.ctx, out.ScanID)
	s.Require().NoError(err)
	s.Equal(out.ScanID, r.ScanID)

	_, err = s.service.Get(s.ctx, uuid.New())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestHistory() {
	for i := 0; i < 12; i++ {
		s.ctx = requestcontext.WithTime(context.Background(), time.Unix(int64(1_700_000_000+i), 0))
		s.scan(devFundAddress)
	}

	page, err := s.service.History(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Equal(DefaultHistoryLimit, page.Limit)
	s.Equal(12, page.Total)
	s.Len(page.Scans, 10)
	s.Equal(12, page.Scans[0].UsageCount)

	page, err = s.service.History(s.ctx, 5, 10)
	s.Require().NoError(err)
	s.Len(page.Scans, 2)

	for _, bad := range [][2]int{{101, 0}, {-1, 0}, {10, -1}} {
		_, err := s.service.History(s.ctx, bad[0], bad[1])
		s.True(dErrors.HasCode(err, dErrors.CodeValidation), "limit=%d offset=%d", bad[0], bad[1])
	}
}

func (s *ServiceSuite) TestRecordAction() {
	out := s.scan(devFundAddress)

	r, err := s.service.RecordAction(s.ctx, out.ScanID, " Reported ", " looked fake ")
	s.Require().NoError(err)
	s.Equal(history.UserActionReported, r.UserAction)
	s.Equal("looked fake", r.Outcome)

	_, err = s.service.RecordAction(s.ctx, out.ScanID, "paid", "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.RecordAction(s.ctx, out.ScanID, history.UserActionApproved, strings.Repeat("x", 501))
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.RecordAction(s.ctx, uuid.New(), history.UserActionApproved, "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestConcurrentScansOfOneIdentifierCountExactly(t *testing.T) {
	store := history.NewInMemoryStore()
	svc := New(
		verify.NewOrchestrator(providers.Default(), verify.StaticDomainChecker{}),
		store,
		WithLogger(discardLogger()),
	)

	const scans = 25
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts []int
	)
	for i := 0; i < scans; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := devFundAddress
			if i%2 == 0 {
				content = "bitcoin:" + devFundAddress
			}
			out, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: content})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			counts = append(counts, out.UsageCount)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	sort.Ints(counts)
	want := make([]int, scans)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, counts)
}

func newMockedService(t *testing.T) (*Service, *mocks.MockVerifier, *mocks.MockStore, *mocks.MockLocker, *mocks.MockPublisher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	store := mocks.NewMockStore(ctrl)
	locker := mocks.NewMockLocker(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)
	svc := New(verifier, store,
		WithLocker(locker),
		WithPublisher(publisher),
		WithLogger(discardLogger()),
	)
	return svc, verifier, store, locker, publisher
}

func invalidVerdict() payload.VerificationResult {
	return payload.VerificationResult{Warnings: []string{}, AuthStatus: payload.AuthStatusSuspicious}
}

func TestParseAndVerifyReleasesLockOnce(t *testing.T) {
	svc, verifier, store, locker, publisher := newMockedService(t)
	releases := 0

	locker.EXPECT().Lock(gomock.Any(), devFundAddress).Return(func() { releases++ }, nil)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(invalidVerdict())
	store.EXPECT().FindEarliest(gomock.Any(), devFundAddress).Return(nil, sentinel.ErrNotFound)
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().PublishScan(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	out, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: devFundAddress})
	require.NoError(t, err, "publish failures never fail the scan")
	assert.Equal(t, 1, out.UsageCount)
	assert.Equal(t, 1, releases)
}

func TestParseAndVerifyLockTimeout(t *testing.T) {
	svc, verifier, _, locker, _ := newMockedService(t)
	locker.EXPECT().Lock(gomock.Any(), devFundAddress).Return(nil, context.DeadlineExceeded)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: devFundAddress})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestParseAndVerifyStoreFailures(t *testing.T) {
	t.Run("history lookup", func(t *testing.T) {
		svc, verifier, store, locker, _ := newMockedService(t)
		locker.EXPECT().Lock(gomock.Any(), gomock.Any()).Return(func() {}, nil)
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(invalidVerdict()).AnyTimes()
		store.EXPECT().FindEarliest(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: devFundAddress})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("append conflict", func(t *testing.T) {
		svc, verifier, store, locker, _ := newMockedService(t)
		locker.EXPECT().Lock(gomock.Any(), gomock.Any()).Return(func() {}, nil)
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(invalidVerdict())
		store.EXPECT().FindEarliest(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: devFundAddress})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("append failure", func(t *testing.T) {
		svc, verifier, store, locker, _ := newMockedService(t)
		locker.EXPECT().Lock(gomock.Any(), gomock.Any()).Return(func() {}, nil)
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(invalidVerdict())
		store.EXPECT().FindEarliest(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: devFundAddress})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.Equal(t, "failed to record scan", dErrors.MessageOf(err))
	})
}

func TestParseAndVerifySkipsLockWithoutIdentifier(t *testing.T) {
	svc, verifier, store, _, publisher := newMockedService(t)
	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(payload.VerificationResult{
		Warnings:   []string{"Format error: Unrecognized payment format"},
		AuthStatus: payload.AuthStatusInvalid,
	})
	store.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *history.Record) error {
		assert.Empty(t, r.NormalizedIdentifier)
		assert.Equal(t, payload.ContentTypeUnknown, r.ContentType)
		return nil
	})
	publisher.EXPECT().PublishScan(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e events.ScanRecorded) error {
		assert.Equal(t, e.ScanID.String(), e.Key())
		return nil
	})

	out, err := svc.ParseAndVerify(context.Background(), ScanRequest{Content: "not a payment"})
	require.NoError(t, err)
	assert.Equal(t, payload.AuthStatusInvalid, out.AuthStatus)
}

func TestHistoryStoreFailure(t *testing.T) {
	svc, _, store, _, _ := newMockedService(t)
	store.EXPECT().List(gomock.Any(), 10, 0).Return(nil, 0, errors.New("timeout"))

	_, err := svc.History(context.Background(), 10, 0)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

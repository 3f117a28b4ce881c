package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"twigascan/internal/scan/handler/mocks"
	"twigascan/internal/scan/history"
	"twigascan/internal/scan/payload"
	"twigascan/internal/scan/providers"
	"twigascan/internal/scan/service"
	dErrors "twigascan/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type ScanHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestScanHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScanHandlerSuite))
}

func (s *ScanHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(s.service, logger).Register(r)
	s.router = r
}

func (s *ScanHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ScanHandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *ScanHandlerSuite) TestScan() {
	s.Run("returns the outcome", func() {
		scanID := uuid.New()
		s.service.EXPECT().ParseAndVerify(gomock.Any(), service.ScanRequest{
			Content:  "user@strike.me",
			DeviceID: "device-1",
		}).Return(&payload.ScanOutcome{
			ScanID:      scanID,
			Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			ContentType: payload.ContentTypeLightningAddress,
			AuthStatus:  payload.AuthStatusVerified,
			Warnings:    []string{"Known provider: Strike"},
			UsageCount:  1,
		}, nil)

		rec := s.do(http.MethodPost, "/api/scan", `{"content":"user@strike.me","device_id":" device-1 "}`)

		s.Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal(scanID.String(), body["scan_id"])
		s.Equal("LIGHTNING_ADDRESS", body["content_type"])
		s.Equal("Verified", body["auth_status"])
		s.Equal(false, body["is_duplicate"])
		s.Equal([]any{"Known provider: Strike"}, body["warnings"])
	})

	s.Run("validation error from service is 400", func() {
		s.service.EXPECT().ParseAndVerify(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "content is required"))

		rec := s.do(http.MethodPost, "/api/scan", `{"content":"   "}`)

		s.Equal(http.StatusBadRequest, rec.Code)
		body := s.decode(rec)
		s.Equal("validation_error", body["error"])
		s.Equal("content is required", body["error_description"])
	})

	s.Run("timeout is 504", func() {
		s.service.EXPECT().ParseAndVerify(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeTimeout, "scan timed out"))

		rec := s.do(http.MethodPost, "/api/scan", `{"content":"lnbc1"}`)
		s.Equal(http.StatusGatewayTimeout, rec.Code)
	})

	s.Run("internal error hides detail", func() {
		s.service.EXPECT().ParseAndVerify(gomock.Any(), gomock.Any()).
			Return(nil, errors.New("postgres exploded"))

		rec := s.do(http.MethodPost, "/api/scan", `{"content":"lnbc1"}`)
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "postgres")
	})

	s.Run("malformed JSON never reaches the service", func() {
		rec := s.do(http.MethodPost, "/api/scan", `{"content":`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("invalid JSON in request body", s.decode(rec)["error_description"])
	})

	s.Run("empty body", func() {
		rec := s.do(http.MethodPost, "/api/scan", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("request body is required", s.decode(rec)["error_description"])
	})

	s.Run("oversized device id", func() {
		rec := s.do(http.MethodPost, "/api/scan", `{"content":"x","device_id":"`+strings.Repeat("d", 129)+`"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ScanHandlerSuite) TestGetScan() {
	s.Run("found", func() {
		scanID := uuid.New()
		s.service.EXPECT().Get(gomock.Any(), scanID).Return(&history.Record{
			ScanID:     scanID,
			RawContent: "user@strike.me",
			AuthStatus: payload.AuthStatusVerified,
			UsageCount: 2,
		}, nil)

		rec := s.do(http.MethodGet, "/api/scan/"+scanID.String(), "")

		s.Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal("user@strike.me", body["raw_content"])
		s.Equal(float64(2), body["usage_count"])
	})

	s.Run("not found", func() {
		scanID := uuid.New()
		s.service.EXPECT().Get(gomock.Any(), scanID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "scan not found"))

		rec := s.do(http.MethodGet, "/api/scan/"+scanID.String(), "")
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("bad id", func() {
		rec := s.do(http.MethodGet, "/api/scan/not-a-uuid", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("scan_id must be a UUID", s.decode(rec)["error_description"])
	})
}

func (s *ScanHandlerSuite) TestHistory() {
	s.Run("defaults", func() {
		s.service.EXPECT().History(gomock.Any(), service.DefaultHistoryLimit, 0).
			Return(&service.HistoryPage{Scans: []*history.Record{}, Total: 0, Limit: service.DefaultHistoryLimit}, nil)

		rec := s.do(http.MethodGet, "/api/scan", "")

		s.Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal(float64(0), body["total"])
		s.Equal([]any{}, body["scans"])
	})

	s.Run("paging params forwarded", func() {
		s.service.EXPECT().History(gomock.Any(), 5, 20).
			Return(&service.HistoryPage{Scans: []*history.Record{}, Total: 42, Limit: 5, Offset: 20}, nil)

		rec := s.do(http.MethodGet, "/api/scan?limit=5&offset=20", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(float64(42), s.decode(rec)["total"])
	})

	s.Run("non-numeric limit", func() {
		rec := s.do(http.MethodGet, "/api/scan?limit=ten", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("limit must be an integer", s.decode(rec)["error_description"])
	})

	s.Run("service rejects range", func() {
		s.service.EXPECT().History(gomock.Any(), 1000, 0).
			Return(nil, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 100"))

		rec := s.do(http.MethodGet, "/api/scan?limit=1000", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ScanHandlerSuite) TestAction() {
	s.Run("records action", func() {
		scanID := uuid.New()
		s.service.EXPECT().RecordAction(gomock.Any(), scanID, history.UserActionAborted, "looked phishy").
			Return(&history.Record{ScanID: scanID, UserAction: history.UserActionAborted, Outcome: "looked phishy"}, nil)

		rec := s.do(http.MethodPut, "/api/scan/"+scanID.String()+"/action", `{"action":" Aborted ","outcome":"looked phishy"}`)

		s.Equal(http.StatusOK, rec.Code)
		body := s.decode(rec)
		s.Equal(scanID.String(), body["scan_id"])
		s.Equal("aborted", body["user_action"])
	})

	s.Run("unknown action", func() {
		rec := s.do(http.MethodPut, "/api/scan/"+uuid.NewString()+"/action", `{"action":"paid"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing action", func() {
		rec := s.do(http.MethodPut, "/api/scan/"+uuid.NewString()+"/action", `{}`)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("action is required", s.decode(rec)["error_description"])
	})

	s.Run("scan not found", func() {
		scanID := uuid.New()
		s.service.EXPECT().RecordAction(gomock.Any(), scanID, history.UserActionApproved, "").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "scan not found"))

		rec := s.do(http.MethodPut, "/api/scan/"+scanID.String()+"/action", `{"action":"approved"}`)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}

func (s *ScanHandlerSuite) TestProviders() {
	s.service.EXPECT().Providers().Return([]providers.ProviderRecord{
		{KeyKind: providers.KeyKindDomain, Key: "strike.me", Name: "Strike", Type: providers.ProviderTypeLightningProvider},
	})

	rec := s.do(http.MethodGet, "/api/providers", "")

	s.Equal(http.StatusOK, rec.Code)
	var resp ProvidersResponse
	s.Require().NoError(json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp))
	s.Equal(1, resp.Count)
	s.Equal("Strike", resp.Providers[0].Name)
}

func (s *ScanHandlerSuite) TestRequestValidation() {
	var nilScan *ScanRequest
	s.Error(nilScan.Validate())

	var nilAction *ActionRequest
	s.Error(nilAction.Validate())

	req := &ActionRequest{Action: "REPORTED", Outcome: "  sent to support  "}
	s.Require().NoError(req.Validate())
	s.Equal(history.UserActionReported, req.ParsedAction())
	s.Equal("sent to support", req.Outcome)
}

// Package handler exposes the scan service over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"twigascan/internal/scan/history"
	"twigascan/internal/scan/payload"
	"twigascan/internal/scan/providers"
	"twigascan/internal/scan/service"
	dErrors "twigascan/pkg/domain-errors"
	"twigascan/pkg/platform/httputil"
	"twigascan/pkg/requestcontext"
)

// Service defines the interface for scan operations.
type Service interface {
	ParseAndVerify(ctx context.Context, req service.ScanRequest) (*payload.ScanOutcome, error)
	Get(ctx context.Context, scanID uuid.UUID) (*history.Record, error)
	History(ctx context.Context, limit, offset int) (*service.HistoryPage, error)
	RecordAction(ctx context.Context, scanID uuid.UUID, action history.UserAction, outcome string) (*history.Record, error)
	Providers() []providers.ProviderRecord
}

// Handler wires scan endpoints to the scan service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a scan handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts scan endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/scan", h.HandleScan)
	r.Get("/api/scan", h.HandleHistory)
	r.Get("/api/scan/{scan_id}", h.HandleGetScan)
	r.Put("/api/scan/{scan_id}/action", h.HandleAction)
	r.Get("/api/providers", h.HandleProviders)
}

// HandleScan handles POST /api/scan requests.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ScanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.ParseAndVerify(ctx, service.ScanRequest{
		Content:  req.Content,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		h.logFailure(ctx, "scan failed", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "scan handled",
		"request_id", requestID,
		"scan_id", outcome.ScanID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleGetScan handles GET /api/scan/{scan_id} requests.
func (h *Handler) HandleGetScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scanID, ok := h.scanID(w, r)
	if !ok {
		return
	}

	record, err := h.service.Get(ctx, scanID)
	if err != nil {
		h.logFailure(ctx, "get scan failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// HandleHistory handles GET /api/scan?limit=&offset= requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := queryInt(r, "limit", service.DefaultHistoryLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.History(ctx, limit, offset)
	if err != nil {
		h.logFailure(ctx, "list scans failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// HandleAction handles PUT /api/scan/{scan_id}/action requests.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	scanID, ok := h.scanID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ActionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.RecordAction(ctx, scanID, req.ParsedAction(), req.Outcome)
	if err != nil {
		h.logFailure(ctx, "record action failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleProviders handles GET /api/providers requests.
func (h *Handler) HandleProviders(w http.ResponseWriter, _ *http.Request) {
	records := h.service.Providers()
	httputil.WriteJSON(w, http.StatusOK, ProvidersResponse{Providers: records, Count: len(records)})
}

func (h *Handler) scanID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	scanID, err := uuid.Parse(chi.URLParam(r, "scan_id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "scan_id must be a UUID"))
		return uuid.Nil, false
	}
	return scanID, true
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	level := slog.LevelError
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal && code != dErrors.CodeTimeout {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeValidation, key+" must be an integer")
	}
	return n, nil
}

// Package api exposes the publisher over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/publish"
	"github.com/your-org/crosspost/internal/target"
	"github.com/your-org/crosspost/pkg/storage/objectstore"
)

// Publisher runs a validated publish request.
type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*publish.Result, error)
}

// TargetSource lists and resolves publish targets.
type TargetSource interface {
	List(ctx context.Context) ([]target.Target, error)
	Resolve(ctx context.Context, ids []string) ([]target.Target, error)
}

type Params struct {
	Publisher      Publisher
	Targets        TargetSource
	Store          objectstore.Client
	Logger         *zap.Logger
	MaxSizeBytes   int64
	FormMemBytes   int64
	RequestTimeout time.Duration
}

// HTTPHandler exposes REST endpoints for the publisher.
type HTTPHandler struct {
	publisher      Publisher
	targets        TargetSource
	store          objectstore.Client
	logger         *zap.Logger
	validate       *validator.Validate
	maxSizeBytes   int64
	formMemBytes   int64
	requestTimeout time.Duration
	router         chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(p Params) *HTTPHandler {
	logr := p.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	h := &HTTPHandler{
		publisher:      p.Publisher,
		targets:        p.Targets,
		store:          p.Store,
		logger:         logr,
		validate:       newValidator(),
		maxSizeBytes:   p.MaxSizeBytes,
		formMemBytes:   p.FormMemBytes,
		requestTimeout: p.RequestTimeout,
	}
	if h.formMemBytes <= 0 {
		h.formMemBytes = 32 << 20
	}
	if h.requestTimeout <= 0 {
		h.requestTimeout = 11 * time.Minute
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.requestTimeout))

	r.Get("/healthz", h.handleHealth)
	r.Get("/uploads/{name}", h.handleServeUpload)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/targets", h.handleListTargets)
		r.Post("/publish", h.handlePublish)
		r.Get("/uploads", h.handleListUploads)
		r.Post("/uploads/cleanup", h.handleCleanupUploads)
	})

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (h *HTTPHandler) handleListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.targets.List(r.Context())
	if err != nil {
		h.logger.Error("list targets failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "target listings unavailable")
		return
	}

	labels := map[string]struct{}{}
	for _, t := range targets {
		labels[t.GroupLabel()] = struct{}{}
	}
	categories := make([]string, 0, len(labels))
	for l := range labels {
		categories = append(categories, l)
	}
	sort.Strings(categories)

	writeJSON(w, http.StatusOK, map[string]any{
		"targets":    targets,
		"categories": categories,
	})
}

func (h *HTTPHandler) handlePublish(w http.ResponseWriter, r *http.Request) {
	logr := h.logger.With(zap.String("http_request_id", middleware.GetReqID(r.Context())))

	if h.maxSizeBytes > 0 {
		if r.ContentLength > h.maxSizeBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeBytes)
	}

	req, err := h.decodePublish(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		var unknown *target.UnknownTargetsError
		var formErr *formError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		case errors.As(err, &formErr), errors.As(err, &unknown):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			logr.Error("resolve targets failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "target listings unavailable")
		}
		return
	}

	result, err := h.publisher.Publish(r.Context(), req)
	if err != nil {
		var verr *publish.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		logr.Error("publish failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "publish failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

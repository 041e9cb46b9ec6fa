// Package handler exposes the criteria module over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"merx/internal/criteria"
	"merx/pkg/domain"
	dErrors "merx/pkg/domain-errors"
	"merx/pkg/platform/httputil"
	"merx/pkg/requestcontext"
)

// Service defines the interface for criteria operations.
type Service interface {
	Registry() *criteria.Registry
	CriteriaForOwner(ctx context.Context, owner domain.OwnerRef) ([]criteria.Criterion, error)
	SaveCriteria(ctx context.Context, owner domain.OwnerRef, items []criteria.Criterion) error
	DeleteCriteria(ctx context.Context, owner domain.OwnerRef) error
	EvaluateOwner(ctx context.Context, owner domain.OwnerRef, subject *domain.ProductID) (*criteria.Decision, error)
}

// Handler wires criteria endpoints to the criteria service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a criteria handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts criteria endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/criteria/types", h.HandleListTypes)
	r.Route("/owners/{kind}/{id}", func(r chi.Router) {
		r.Get("/criteria", h.HandleGetCriteria)
		r.With(h.requireUser).Put("/criteria", h.HandlePutCriteria)
		r.With(h.requireUser).Delete("/criteria", h.HandleDeleteCriteria)
		r.Post("/evaluate", h.HandleEvaluate)
	})
}

// requireUser rejects anonymous callers. Managing criteria is a
// merchant operation; evaluation stays open to shoppers.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestcontext.UserID(r.Context()).IsNil() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleListTypes handles GET /criteria/types requests.
func (h *Handler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	types := h.service.Registry().List()
	httputil.WriteJSON(w, http.StatusOK, FromTypeList(types))
}

func ownerFromURL(r *http.Request) (domain.OwnerRef, error) {
	return domain.ParseOwnerRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
}

// HandleGetCriteria handles GET /owners/{kind}/{id}/criteria requests.
func (h *Handler) HandleGetCriteria(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := ownerFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.service.CriteriaForOwner(ctx, owner)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load criteria",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromCriteria(owner, items))
}

// HandlePutCriteria handles PUT /owners/{kind}/{id}/criteria requests.
// The submitted list replaces the owner's whole criteria set; order
// in the list is evaluation order.
func (h *Handler) HandlePutCriteria(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	owner, err := ownerFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[PutCriteriaRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	items := make([]criteria.Criterion, 0, len(req.Criteria))
	for i, raw := range req.Criteria {
		c, err := h.service.Registry().Create(raw.ContentType, raw.RawValue())
		if err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput,
				"criterion %d: %s", i, dErrors.MessageOf(err)))
			return
		}
		items = append(items, c)
	}

	if err := h.service.SaveCriteria(ctx, owner, items); err != nil {
		h.logger.ErrorContext(ctx, "failed to save criteria",
			"request_id", requestID,
			"owner", owner.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "criteria replaced",
		"request_id", requestID,
		"owner", owner.String(),
		"count", len(items),
	)

	stored, err := h.service.CriteriaForOwner(ctx, owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCriteria(owner, stored))
}

// HandleDeleteCriteria handles DELETE /owners/{kind}/{id}/criteria requests.
func (h *Handler) HandleDeleteCriteria(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := ownerFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteCriteria(ctx, owner); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete criteria",
			"request_id", requestcontext.RequestID(ctx),
			"owner", owner.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvaluate handles POST /owners/{kind}/{id}/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	owner, err := ownerFromURL(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var subject *domain.ProductID
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		subject = req.ParsedProductID()
	}

	decision, err := h.service.EvaluateOwner(ctx, owner, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "criteria evaluation failed",
			"request_id", requestID,
			"owner", owner.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "criteria evaluated",
		"request_id", requestID,
		"owner", owner.String(),
		"valid", decision.Valid,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromDecision(decision))
}
